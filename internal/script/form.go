package script

// FieldErrors collects validation messages keyed by field name. A request
// with bad input yields the full set of per-field problems rather than
// failing on the first one.
type FieldErrors map[string][]string

// Add appends a message to the named field's error list
func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether the named field has any errors
func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

// Form holds the result of binding raw input against a script's variables
type Form struct {
	CleanedData map[string]interface{}
	Errors      FieldErrors
}

// IsValid reports whether the bound input passed every field's validation
func (f *Form) IsValid() bool {
	return len(f.Errors) == 0
}

// File is an uploaded file bound to a FileVar
type File struct {
	Name    string
	Content []byte
}
