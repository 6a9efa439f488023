package record

import "fmt"

// MappingError is implemented by every per-row mapping failure. Reason returns
// the compact machine-readable form reported in batch results, e.g.
// "MissingRequiredField:id".
type MappingError interface {
	error
	Reason() string
}

type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

func (e *MissingRequiredFieldError) Reason() string {
	return "MissingRequiredField:" + e.Field
}

type FieldTypeError struct {
	Field string
	Value string
}

func (e *FieldTypeError) Error() string {
	return fmt.Sprintf("field %q has malformed value %q", e.Field, e.Value)
}

func (e *FieldTypeError) Reason() string {
	return fmt.Sprintf("FieldTypeError:%s:%s", e.Field, e.Value)
}

type SelfEdgeError struct {
	Role string
}

func (e *SelfEdgeError) Error() string {
	return fmt.Sprintf("adjacency between role %q and itself is not allowed", e.Role)
}

func (e *SelfEdgeError) Reason() string {
	return "SelfEdgeRejected"
}

type ValidityWindowError struct {
	From string
	To   string
}

func (e *ValidityWindowError) Error() string {
	return fmt.Sprintf("validFrom %q is after validTo %q", e.From, e.To)
}

func (e *ValidityWindowError) Reason() string {
	return fmt.Sprintf("InvalidValidityWindow:%s>%s", e.From, e.To)
}
