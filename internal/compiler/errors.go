package compiler

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrMissingName is reported for a column without a name.
	ErrMissingName = errors.New("column has no name")
	// ErrMissingType is reported for a column without a native type.
	ErrMissingType = errors.New("column has no type")
)

// ColumnError is a column left out of its migration because it could not be
// introspected. Processing of the remaining columns continues.
type ColumnError struct {
	Table  string
	Column string
	Err    error
}

func (e ColumnError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Err)
}

func (e ColumnError) Unwrap() error { return e.Err }

// DroppedColumn is a column whose native type has no Blueprint equivalent.
type DroppedColumn struct {
	Table  string
	Column string
	Type   string
}

// UnresolvedForeignKey is a foreign key whose referenced table is not part
// of the compiled schema.
type UnresolvedForeignKey struct {
	Table           string
	Column          string
	ReferencedTable string
}

type droppedTypeError struct {
	tag string
}

func (e *droppedTypeError) Error() string {
	return fmt.Sprintf("type %s has no migration equivalent", e.tag)
}

func asDropped(err error, target **droppedTypeError) bool {
	return errors.As(err, target)
}
