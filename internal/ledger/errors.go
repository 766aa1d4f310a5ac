package ledger

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is
var (
	ErrValidation = errors.New("dữ liệu không hợp lệ")
	ErrReference  = errors.New("không tìm thấy đối tượng tham chiếu")
	ErrSchema     = errors.New("file không đúng định dạng SmartDebt")
)

// ValidationError is returned when caller input violates a field constraint.
// Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// ReferenceError is returned when an operation names an entity that does not exist
type ReferenceError struct {
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("không tìm thấy %s: %s", e.Entity, e.ID)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// SchemaError is returned when an import candidate does not have the expected top-level shape
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSchema.Error(), e.Reason)
}

func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
