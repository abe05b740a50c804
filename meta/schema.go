// Package meta implements composite objects: a fixed, ordered schema of
// named descriptor slots, each holding a sub-object of any registered
// kind, with an aggregate distance over the per-slot distances.
//
// One ordered schema serves both the positional (array) and the named
// (map) view of a composite; the slot order fixes the text data-section
// order and the binary layout alike.
package meta

import (
	"fmt"
)

// Slot names one descriptor position and pins the kind stored there.
type Slot struct {
	Name string
	Kind string
}

// Schema is the fixed slot layout of a composite kind. The mapping from
// descriptor name to slot index never changes after construction.
type Schema struct {
	slots []Slot
	index map[string]int
}

// NewSchema builds a schema from the given slots in order. Slot names
// must be unique and must not contain the ';' record separator.
func NewSchema(slots ...Slot) (*Schema, error) {
	s := &Schema{
		slots: slots,
		index: make(map[string]int, len(slots)),
	}
	for i, slot := range slots {
		if slot.Name == "" {
			return nil, fmt.Errorf("slot %d has an empty name", i)
		}
		for _, r := range slot.Name {
			if r == ';' {
				return nil, fmt.Errorf("slot name %q contains ';'", slot.Name)
			}
		}
		if _, dup := s.index[slot.Name]; dup {
			return nil, fmt.Errorf("duplicate slot name %q", slot.Name)
		}
		s.index[slot.Name] = i
	}
	return s, nil
}

// MustSchema is NewSchema panicking on error, for package-level schema
// declarations.
func MustSchema(slots ...Slot) *Schema {
	s, err := NewSchema(slots...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of slots.
func (s *Schema) Len() int { return len(s.slots) }

// Slot returns the i-th slot.
func (s *Schema) Slot(i int) Slot { return s.slots[i] }

// Index returns the slot index of the named descriptor.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}
