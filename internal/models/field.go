package models

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Field is a connection statement value that is either a single scalar or a
// parallel list. The zero Field is unset.
type Field[T any] struct {
	values []T
	list   bool
}

// Scalar returns a Field holding one value.
func Scalar[T any](v T) Field[T] {
	return Field[T]{values: []T{v}}
}

// List returns a Field holding a parallel list.
func List[T any](vs ...T) Field[T] {
	return Field[T]{values: append([]T(nil), vs...), list: true}
}

// IsSet reports whether the field carries any value, scalar or list.
func (f Field[T]) IsSet() bool {
	return f.list || len(f.values) > 0
}

// IsList reports whether the field was given as a list.
func (f Field[T]) IsList() bool {
	return f.list
}

// Len returns the number of entries (1 for a scalar, 0 when unset).
func (f Field[T]) Len() int {
	return len(f.values)
}

// At returns entry i. Scalars and single-entry lists return their only
// value for every i.
func (f Field[T]) At(i int) T {
	if len(f.values) == 1 {
		return f.values[0]
	}
	return f.values[i]
}

// Values returns a copy of the underlying entries.
func (f Field[T]) Values() []T {
	return append([]T(nil), f.values...)
}

// UnmarshalYAML decodes a sequence node as a list and anything else as a scalar.
func (f *Field[T]) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		var vs []T
		if err := value.Decode(&vs); err != nil {
			return err
		}
		*f = Field[T]{values: vs, list: true}
		return nil
	}
	var v T
	if err := value.Decode(&v); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*f = Scalar(v)
	return nil
}
