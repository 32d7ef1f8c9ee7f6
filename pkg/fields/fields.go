// Package fields models the ordered field sets the engine matches.
//
// A FieldSet keeps the first-seen key order of the record it was built from.
// That order is part of the contract: ties between equally scored source
// fields go to the one that comes first.
package fields

import (
	"fmt"

	"github.com/agentstation/fieldmatch/pkg/errors"
	"github.com/agentstation/fieldmatch/pkg/typeclass"
)

// Field is a named attribute with one representative sample value.
type Field struct {
	Name   string `json:"name" yaml:"name"`
	Sample string `json:"sample" yaml:"sample"`
}

// Type classifies the field's sample.
func (f Field) Type() typeclass.TypeClass {
	return typeclass.Classify(f.Sample)
}

// String returns "name: sample", the text embedded for retrieval.
func (f Field) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Sample)
}

// FieldSet is an immutable, ordered set of uniquely named fields.
type FieldSet struct {
	system string
	fields []Field
	index  map[string]int
}

// New builds a field set for system ("source", "target", or a file name).
// It fails with a MalformedInputError when fields is empty or a name repeats.
func New(system string, fields ...Field) (*FieldSet, error) {
	if len(fields) == 0 {
		return nil, errors.NewMalformedInputError(system, "", "no fields")
	}

	fs := &FieldSet{
		system: system,
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, errors.NewMalformedInputError(system, "", "empty field name")
		}
		if _, dup := fs.index[f.Name]; dup {
			return nil, errors.NewMalformedInputError(system, f.Name, "duplicate field name")
		}
		fs.index[f.Name] = len(fs.fields)
		fs.fields = append(fs.fields, f)
	}
	return fs, nil
}

// MustNew is New for fixtures; it panics on error.
func MustNew(system string, fields ...Field) *FieldSet {
	fs, err := New(system, fields...)
	if err != nil {
		panic(err)
	}
	return fs
}

// FromPairs builds a set from alternating name, sample arguments.
func FromPairs(system string, pairs ...string) (*FieldSet, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.NewMalformedInputError(system, pairs[len(pairs)-1], "field has no sample")
	}
	fields := make([]Field, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		fields = append(fields, Field{Name: pairs[i], Sample: pairs[i+1]})
	}
	return New(system, fields...)
}

// System names where the set came from.
func (fs *FieldSet) System() string {
	return fs.system
}

// Len returns the number of fields.
func (fs *FieldSet) Len() int {
	return len(fs.fields)
}

// At returns the i-th field in order.
func (fs *FieldSet) At(i int) Field {
	return fs.fields[i]
}

// Fields returns a copy of the fields in order.
func (fs *FieldSet) Fields() []Field {
	out := make([]Field, len(fs.fields))
	copy(out, fs.fields)
	return out
}

// Names returns the field names in order.
func (fs *FieldSet) Names() []string {
	names := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the named field.
func (fs *FieldSet) Get(name string) (Field, bool) {
	i, ok := fs.index[name]
	if !ok {
		return Field{}, false
	}
	return fs.fields[i], true
}

// Has reports whether the set contains name.
func (fs *FieldSet) Has(name string) bool {
	_, ok := fs.index[name]
	return ok
}

// IndexOf returns the position of name, or -1.
func (fs *FieldSet) IndexOf(name string) int {
	if i, ok := fs.index[name]; ok {
		return i
	}
	return -1
}

// Types classifies every field, keyed by name.
func (fs *FieldSet) Types() map[string]typeclass.TypeClass {
	types := make(map[string]typeclass.TypeClass, len(fs.fields))
	for _, f := range fs.fields {
		types[f.Name] = f.Type()
	}
	return types
}
