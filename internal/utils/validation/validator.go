// Package validation checks request fields before they reach a service.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")
)

// FieldError is one rejected request field, rendered in 422 responses.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validator collects field errors for one request.
type Validator struct {
	Errors []FieldError
}

func New() *Validator {
	return &Validator{}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.Errors = append(v.Errors, FieldError{Field: field, Message: message})
	}
}

// Contact checks an optional buyer contact and returns it normalized. An
// empty value is allowed and returned as is.
func (v *Validator) Contact(field, value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	contact, ok := NormalizeContact(value)
	v.Check(ok, field, "must be an email or phone number")
	return contact
}

// NormalizeContact accepts an email address or an international phone
// number. Emails are lower-cased; phone numbers lose their separators, so
// "+229 97-00-00-00" becomes "+22997000000".
func NormalizeContact(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		if !emailRegex.MatchString(s) {
			return "", false
		}
		return strings.ToLower(s), true
	}

	phone := phoneSeparators.Replace(s)
	if !phoneRegex.MatchString(phone) {
		return "", false
	}
	return phone, true
}
