package script

import (
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// Variable is a single typed, validated script input. Concrete types embed
// BaseVar and implement Clean, which converts raw input (as decoded from
// JSON or a query string) into the variable's native Go value.
type Variable interface {
	VarName() string
	VarLabel() string
	VarDescription() string
	IsRequired() bool
	FieldType() string
	Clean(raw interface{}) (interface{}, error)
}

// BaseVar carries the attributes shared by every variable kind. Variables
// are required unless Optional is set, matching form-field conventions.
type BaseVar struct {
	Name        string
	Label       string
	Description string
	Optional    bool
	Default     interface{}
}

func (v *BaseVar) VarName() string        { return v.Name }
func (v *BaseVar) VarLabel() string       { return v.Label }
func (v *BaseVar) VarDescription() string { return v.Description }
func (v *BaseVar) IsRequired() bool       { return !v.Optional }

// StringVar is a single-line string with optional length and pattern checks
type StringVar struct {
	BaseVar
	MinLength int
	MaxLength int
	Regex     *regexp.Regexp
}

func (v *StringVar) FieldType() string { return "string" }

func (v *StringVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	n := len([]rune(s))
	if v.MinLength > 0 && n < v.MinLength {
		return nil, fmt.Errorf("ensure this value has at least %d characters (it has %d)", v.MinLength, n)
	}
	if v.MaxLength > 0 && n > v.MaxLength {
		return nil, fmt.Errorf("ensure this value has at most %d characters (it has %d)", v.MaxLength, n)
	}
	if v.Regex != nil && !v.Regex.MatchString(s) {
		return nil, fmt.Errorf("enter a valid value")
	}
	return s, nil
}

// TextVar is a free-form multi-line string
type TextVar struct {
	BaseVar
}

func (v *TextVar) FieldType() string { return "text" }

func (v *TextVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	return s, nil
}

// IntegerVar is an integer with optional bounds. Nil bounds are unchecked,
// so zero remains a usable limit.
type IntegerVar struct {
	BaseVar
	MinValue *int
	MaxValue *int
}

func (v *IntegerVar) FieldType() string { return "integer" }

func (v *IntegerVar) Clean(raw interface{}) (interface{}, error) {
	n, err := toInt(raw)
	if err != nil {
		return nil, err
	}
	if v.MinValue != nil && n < *v.MinValue {
		return nil, fmt.Errorf("ensure this value is greater than or equal to %d", *v.MinValue)
	}
	if v.MaxValue != nil && n > *v.MaxValue {
		return nil, fmt.Errorf("ensure this value is less than or equal to %d", *v.MaxValue)
	}
	return n, nil
}

func toInt(raw interface{}) (int, error) {
	switch x := raw.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, fmt.Errorf("enter a whole number")
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("enter a whole number")
		}
		return n, nil
	}
	return 0, fmt.Errorf("enter a whole number")
}

// BooleanVar is a checkbox-style flag. Boolean inputs are never required:
// an absent value binds as false.
type BooleanVar struct {
	BaseVar
}

func (v *BooleanVar) FieldType() string { return "boolean" }

func (v *BooleanVar) IsRequired() bool { return false }

func (v *BooleanVar) Clean(raw interface{}) (interface{}, error) {
	switch x := raw.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return nil, fmt.Errorf("enter true or false")
		}
		return b, nil
	}
	return nil, fmt.Errorf("enter true or false")
}

// Choice is a selectable value with a human-readable label
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ChoiceVar selects exactly one value from a fixed set
type ChoiceVar struct {
	BaseVar
	Choices []Choice
}

func (v *ChoiceVar) FieldType() string { return "choice" }

func (v *ChoiceVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	for _, c := range v.Choices {
		if c.Value == s {
			return s, nil
		}
	}
	return nil, fmt.Errorf("select a valid choice: %q is not one of the available choices", s)
}

// MultiChoiceVar selects any number of values from a fixed set
type MultiChoiceVar struct {
	BaseVar
	Choices []Choice
}

func (v *MultiChoiceVar) FieldType() string { return "multichoice" }

func (v *MultiChoiceVar) Clean(raw interface{}) (interface{}, error) {
	values, err := toStringSlice(raw)
	if err != nil {
		return nil, err
	}
	for _, s := range values {
		found := false
		for _, c := range v.Choices {
			if c.Value == s {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("select a valid choice: %q is not one of the available choices", s)
		}
	}
	return values, nil
}

func toStringSlice(raw interface{}) ([]string, error) {
	switch x := raw.(type) {
	case []string:
		return x, nil
	case []interface{}:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("expected a list of strings")
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{x}, nil
	}
	return nil, fmt.Errorf("expected a list of strings")
}

// ObjectVar resolves an object ID against a data source. Resolve returns
// the object, or an error when the ID does not exist.
type ObjectVar struct {
	BaseVar
	Resolve func(id string) (interface{}, error)
}

func (v *ObjectVar) FieldType() string { return "object" }

func (v *ObjectVar) Clean(raw interface{}) (interface{}, error) {
	id, ok := rawID(raw)
	if !ok {
		return nil, fmt.Errorf("expected an object ID")
	}
	obj, err := v.Resolve(id)
	if err != nil {
		return nil, fmt.Errorf("select a valid choice: object %q does not exist", id)
	}
	return obj, nil
}

// MultiObjectVar resolves a list of object IDs against a data source
type MultiObjectVar struct {
	BaseVar
	Resolve func(id string) (interface{}, error)
}

func (v *MultiObjectVar) FieldType() string { return "multiobject" }

func (v *MultiObjectVar) Clean(raw interface{}) (interface{}, error) {
	var ids []string
	switch x := raw.(type) {
	case []interface{}:
		for _, e := range x {
			id, ok := rawID(e)
			if !ok {
				return nil, fmt.Errorf("expected a list of object IDs")
			}
			ids = append(ids, id)
		}
	case []string:
		ids = x
	default:
		return nil, fmt.Errorf("expected a list of object IDs")
	}

	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		obj, err := v.Resolve(id)
		if err != nil {
			return nil, fmt.Errorf("select a valid choice: object %q does not exist", id)
		}
		out = append(out, obj)
	}
	return out, nil
}

func rawID(raw interface{}) (string, bool) {
	switch x := raw.(type) {
	case string:
		return x, x != ""
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10), true
		}
	case int:
		return strconv.Itoa(x), true
	}
	return "", false
}

// FileVar binds an uploaded file
type FileVar struct {
	BaseVar
}

func (v *FileVar) FieldType() string { return "file" }

func (v *FileVar) Clean(raw interface{}) (interface{}, error) {
	f, ok := raw.(*File)
	if !ok || f == nil {
		return nil, fmt.Errorf("expected a file")
	}
	return f, nil
}

// IPAddressVar is a bare host address without a mask, e.g. "192.0.2.1"
type IPAddressVar struct {
	BaseVar
}

func (v *IPAddressVar) FieldType() string { return "ipaddress" }

func (v *IPAddressVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	if strings.Contains(s, "/") {
		return nil, fmt.Errorf("enter an IP address without a mask")
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("enter a valid IP address")
	}
	return addr, nil
}

// IPAddressWithMaskVar is a host address with its mask, e.g. "192.0.2.1/24"
type IPAddressWithMaskVar struct {
	BaseVar
}

func (v *IPAddressWithMaskVar) FieldType() string { return "ipaddresswithmask" }

func (v *IPAddressWithMaskVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return nil, fmt.Errorf("enter a valid IP address with mask (CIDR notation)")
	}
	return p, nil
}

// IPNetworkVar is a network in CIDR notation with the host bits zero,
// optionally bounded by mask length.
type IPNetworkVar struct {
	BaseVar
	MinPrefixLength *int
	MaxPrefixLength *int
}

func (v *IPNetworkVar) FieldType() string { return "ipnetwork" }

func (v *IPNetworkVar) Clean(raw interface{}) (interface{}, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("expected a string")
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return nil, fmt.Errorf("enter a valid network (CIDR notation)")
	}
	if p.Masked() != p {
		return nil, fmt.Errorf("%s is not a network address (host bits set)", s)
	}
	if v.MinPrefixLength != nil && p.Bits() < *v.MinPrefixLength {
		return nil, fmt.Errorf("the mask length must be at least /%d", *v.MinPrefixLength)
	}
	if v.MaxPrefixLength != nil && p.Bits() > *v.MaxPrefixLength {
		return nil, fmt.Errorf("the mask length must be at most /%d", *v.MaxPrefixLength)
	}
	return p, nil
}
