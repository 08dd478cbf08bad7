package script

import (
	"context"
	"fmt"
)

const requiredMsg = "This field is required."

// Output collects the log lines produced by a script run
type Output struct {
	Lines []string
}

// Logf appends a formatted line to the run output
func (o *Output) Logf(format string, args ...interface{}) {
	o.Lines = append(o.Lines, fmt.Sprintf(format, args...))
}

// Script is a named operation with a declared set of typed input variables.
// Input is bound and validated with AsForm before Run is invoked.
type Script struct {
	Name        string
	Description string
	Vars        []Variable
	Run         func(ctx context.Context, data map[string]interface{}, out *Output) error
}

// AsForm binds raw input against the script's variables. Every variable is
// cleaned independently so the caller gets the complete set of per-field
// errors in one pass. Missing optional values fall back to the variable's
// default; missing booleans bind as false.
func (s *Script) AsForm(data map[string]interface{}, files map[string]*File) *Form {
	form := &Form{
		CleanedData: make(map[string]interface{}),
		Errors:      make(FieldErrors),
	}

	for _, v := range s.Vars {
		name := v.VarName()

		var raw interface{}
		var present bool
		if _, isFile := v.(*FileVar); isFile {
			var f *File
			f, present = files[name]
			if present {
				raw = f
			}
		} else {
			raw, present = data[name]
			if present && raw == nil {
				present = false
			}
			if s, ok := raw.(string); ok && s == "" {
				present = false
			}
		}

		if !present {
			if _, isBool := v.(*BooleanVar); isBool {
				form.CleanedData[name] = false
				continue
			}
			if d := defaultOf(v); d != nil {
				form.CleanedData[name] = d
				continue
			}
			if v.IsRequired() {
				form.Errors.Add(name, requiredMsg)
			}
			continue
		}

		cleaned, err := v.Clean(raw)
		if err != nil {
			form.Errors.Add(name, err.Error())
			continue
		}
		form.CleanedData[name] = cleaned
	}

	return form
}

func defaultOf(v Variable) interface{} {
	type defaulter interface{ defaultValue() interface{} }
	if d, ok := v.(defaulter); ok {
		return d.defaultValue()
	}
	return nil
}

func (v *BaseVar) defaultValue() interface{} { return v.Default }

// FieldSpec describes one input field for rendering a form
type FieldSpec struct {
	Name        string   `json:"name"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Choices     []Choice `json:"choices,omitempty"`
	MinLength   int      `json:"min_length,omitempty"`
	MaxLength   int      `json:"max_length,omitempty"`
	MinValue    *int     `json:"min_value,omitempty"`
	MaxValue    *int     `json:"max_value,omitempty"`
}

// FieldSpecs returns the render-ready description of the script's inputs,
// in declaration order.
func (s *Script) FieldSpecs() []FieldSpec {
	specs := make([]FieldSpec, 0, len(s.Vars))
	for _, v := range s.Vars {
		spec := FieldSpec{
			Name:        v.VarName(),
			Label:       v.VarLabel(),
			Description: v.VarDescription(),
			Type:        v.FieldType(),
			Required:    v.IsRequired(),
			Default:     defaultOf(v),
		}
		switch x := v.(type) {
		case *StringVar:
			spec.MinLength = x.MinLength
			spec.MaxLength = x.MaxLength
		case *IntegerVar:
			spec.MinValue = x.MinValue
			spec.MaxValue = x.MaxValue
		case *ChoiceVar:
			spec.Choices = x.Choices
		case *MultiChoiceVar:
			spec.Choices = x.Choices
		}
		specs = append(specs, spec)
	}
	return specs
}
