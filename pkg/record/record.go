package record

import (
	"errors"
	"fmt"
	"strings"
)

// Field names an editable field of a Record.
type Field string

// Editable fields.
const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

// Fields lists the editable fields in display order.
var Fields = []Field{FieldName, FieldEmail}

// ErrUnknownField is returned when a field name is not editable.
var ErrUnknownField = errors.New("unknown field")

// ParseField converts a field name to a Field. Matching is case-insensitive.
func ParseField(s string) (Field, error) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldName:
		return FieldName, nil
	case FieldEmail:
		return FieldEmail, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
}

// Record is a user entry in the remote /Users collection.
type Record struct {
	ID    ID     `json:"id" yaml:"id,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// With returns a copy of r with exactly the given field replaced.
func (r Record) With(field Field, value string) (Record, error) {
	switch field {
	case FieldName:
		r.Name = value
	case FieldEmail:
		r.Email = value
	default:
		return r, fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
	return r, nil
}

// Value returns the current value of a field.
func (r Record) Value(field Field) (string, error) {
	switch field {
	case FieldName:
		return r.Name, nil
	case FieldEmail:
		return r.Email, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}
}

// IsNew reports whether the record has not been saved to the remote store.
func (r Record) IsNew() bool {
	return r.ID.IsZero()
}

// Validate reports fields an operator must fill in before saving.
// The remote store remains the authority on what it accepts.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: FieldName, Message: "name is required"}
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		return &ValidationError{Field: FieldEmail, Message: "email must contain @"}
	}
	return nil
}

// CreateBody is the wire body of a create request: no identifier.
type CreateBody struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateBody returns the create request body for r.
func (r Record) CreateBody() CreateBody {
	return CreateBody{Name: r.Name, Email: r.Email}
}

// ValidationError describes a field that failed a local check.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
}
