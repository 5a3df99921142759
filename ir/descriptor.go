package ir

import (
	"slices"
)

// ClassDescriptor describes one discovered type.
type ClassDescriptor struct {
	// Name uniquely identifies the type within a generation run.
	Name QualifiedName

	// Fields are the declared fields in source order. Order is significant:
	// it becomes constructor parameter and accessor order.
	Fields []FieldDescriptor

	// SuperTypes are the types this one directly extends or implements.
	// Normalize sorts and de-duplicates them.
	SuperTypes []QualifiedName

	// Abstract is true if the type declares only unimplemented members.
	Abstract bool

	// Sealed is true if the type takes part in a closed extension point,
	// either as its base or as one of its variants.
	Sealed bool

	Doc    Documentation
	Source Source
}

// FieldDescriptor is a single declared field.
type FieldDescriptor struct {
	// Name is the field name as it should appear in generated code.
	Name string

	// Type is the declared type.
	Type TypeExpr

	// Nullable is true if the field may be absent.
	Nullable bool

	Doc Documentation
}

// Normalize sorts and de-duplicates SuperTypes in place.
func (d *ClassDescriptor) Normalize() {
	slices.SortFunc(d.SuperTypes, compareNames)
	d.SuperTypes = slices.Compact(d.SuperTypes)
}

// Field returns the field with the given name.
func (d *ClassDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// HasSuperType reports whether name is a direct supertype of d.
func (d *ClassDescriptor) HasSuperType(name QualifiedName) bool {
	return slices.Contains(d.SuperTypes, name)
}

// SameShape reports whether d and other describe the same declaration.
// Documentation and source location are not compared, so the same type
// reported twice by a catalog collapses into one descriptor.
func (d *ClassDescriptor) SameShape(other *ClassDescriptor) bool {
	if d.Name != other.Name || d.Abstract != other.Abstract || d.Sealed != other.Sealed {
		return false
	}
	if !slices.Equal(d.SuperTypes, other.SuperTypes) || len(d.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range d.Fields {
		g := other.Fields[i]
		if f.Name != g.Name || f.Nullable != g.Nullable || !EqualExpr(f.Type, g.Type) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of d. Type expressions are immutable and shared.
func (d *ClassDescriptor) Clone() *ClassDescriptor {
	c := *d
	c.Fields = slices.Clone(d.Fields)
	c.SuperTypes = slices.Clone(d.SuperTypes)
	return &c
}

func compareNames(a, b QualifiedName) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

// SortNames sorts names lexicographically by canonical form.
func SortNames(names []QualifiedName) {
	slices.SortFunc(names, compareNames)
}
