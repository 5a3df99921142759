package ir

import (
	"strconv"
)

// ExprKind identifies the shape of a field type expression.
type ExprKind int

const (
	KindPrimitive   ExprKind = iota // Built-in primitive type
	KindArray                       // Ordered collection
	KindMap                         // Key-value mapping
	KindReference                   // Reference to a named type
	KindUnsupported                 // Source type with no portable meaning
)

// String returns the string representation of the expression kind.
func (k ExprKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindReference:
		return "Reference"
	case KindUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// TypeExpr is the declared type of a field.
// The set of implementations is closed; renderers switch on the concrete type.
type TypeExpr interface {
	// Kind returns the expression kind for type switching.
	Kind() ExprKind

	// String returns a readable rendering used in error messages.
	String() string

	sealed()
}

type exprBase struct{}

func (exprBase) sealed() {}

// PrimitiveKind identifies the category of a primitive type.
type PrimitiveKind int

const (
	PrimitiveBool  PrimitiveKind = iota
	PrimitiveInt                 // Signed integer (see BitSize)
	PrimitiveUint                // Unsigned integer (see BitSize)
	PrimitiveFloat               // Floating point (see BitSize)
	PrimitiveString
	PrimitiveBytes    // Opaque byte sequence
	PrimitiveTime     // Instant in time
	PrimitiveDuration // Elapsed time
	PrimitiveAny      // Untyped value
)

// String returns the string representation of the primitive kind.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBool:
		return "Bool"
	case PrimitiveInt:
		return "Int"
	case PrimitiveUint:
		return "Uint"
	case PrimitiveFloat:
		return "Float"
	case PrimitiveString:
		return "String"
	case PrimitiveBytes:
		return "Bytes"
	case PrimitiveTime:
		return "Time"
	case PrimitiveDuration:
		return "Duration"
	case PrimitiveAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// Primitive is a built-in primitive type.
type Primitive struct {
	exprBase
	PrimitiveKind PrimitiveKind

	// BitSize is the width of numeric kinds: 0 (platform/unspecified), 8, 16,
	// 32 or 64. Ignored for non-numeric kinds.
	BitSize int
}

// Kind returns KindPrimitive.
func (p *Primitive) Kind() ExprKind { return KindPrimitive }

func (p *Primitive) String() string {
	switch p.PrimitiveKind {
	case PrimitiveInt, PrimitiveUint, PrimitiveFloat:
		if p.BitSize > 0 {
			return p.PrimitiveKind.String() + strconv.Itoa(p.BitSize)
		}
	}
	return p.PrimitiveKind.String()
}

// Bool returns a Primitive for booleans.
func Bool() *Primitive { return &Primitive{PrimitiveKind: PrimitiveBool} }

// String returns a Primitive for strings.
func String() *Primitive { return &Primitive{PrimitiveKind: PrimitiveString} }

// Int returns a Primitive for a signed integer of the given bit size.
func Int(bitSize int) *Primitive { return &Primitive{PrimitiveKind: PrimitiveInt, BitSize: bitSize} }

// Uint returns a Primitive for an unsigned integer of the given bit size.
func Uint(bitSize int) *Primitive { return &Primitive{PrimitiveKind: PrimitiveUint, BitSize: bitSize} }

// Float returns a Primitive for a floating point number of the given bit size.
func Float(bitSize int) *Primitive {
	return &Primitive{PrimitiveKind: PrimitiveFloat, BitSize: bitSize}
}

// Bytes returns a Primitive for byte sequences.
func Bytes() *Primitive { return &Primitive{PrimitiveKind: PrimitiveBytes} }

// Time returns a Primitive for instants.
func Time() *Primitive { return &Primitive{PrimitiveKind: PrimitiveTime} }

// Duration returns a Primitive for durations.
func Duration() *Primitive { return &Primitive{PrimitiveKind: PrimitiveDuration} }

// Any returns a Primitive for untyped values.
func Any() *Primitive { return &Primitive{PrimitiveKind: PrimitiveAny} }

// Array is an ordered collection.
type Array struct {
	exprBase
	Element TypeExpr
}

// Kind returns KindArray.
func (a *Array) Kind() ExprKind { return KindArray }

func (a *Array) String() string { return "[]" + exprString(a.Element) }

// ArrayOf returns an Array of element.
func ArrayOf(element TypeExpr) *Array { return &Array{Element: element} }

// Map is a key-value mapping.
type Map struct {
	exprBase
	Key   TypeExpr
	Value TypeExpr
}

// Kind returns KindMap.
func (m *Map) Kind() ExprKind { return KindMap }

func (m *Map) String() string {
	return "map[" + exprString(m.Key) + "]" + exprString(m.Value)
}

// MapOf returns a Map from key to value.
func MapOf(key, value TypeExpr) *Map { return &Map{Key: key, Value: value} }

// Reference points at another named type.
type Reference struct {
	exprBase
	Target QualifiedName
}

// Kind returns KindReference.
func (r *Reference) Kind() ExprKind { return KindReference }

func (r *Reference) String() string { return r.Target.String() }

// Ref returns a Reference to the type name in pkg.
func Ref(pkg, name string) *Reference {
	return &Reference{Target: QualifiedName{Package: pkg, Name: name}}
}

// Unsupported records a source type that has no language-independent
// meaning, such as a channel or function. Rendering it always fails.
type Unsupported struct {
	exprBase
	Raw string
}

// Kind returns KindUnsupported.
func (u *Unsupported) Kind() ExprKind { return KindUnsupported }

func (u *Unsupported) String() string { return u.Raw }

func exprString(e TypeExpr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// References returns every named type reachable from e, in walk order.
func References(e TypeExpr) []QualifiedName {
	var out []QualifiedName
	var walk func(TypeExpr)
	walk = func(e TypeExpr) {
		switch x := e.(type) {
		case *Reference:
			out = append(out, x.Target)
		case *Array:
			walk(x.Element)
		case *Map:
			walk(x.Key)
			walk(x.Value)
		}
	}
	walk(e)
	return out
}

// EqualExpr reports whether two expressions describe the same type.
func EqualExpr(a, b TypeExpr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case *Primitive:
		y := b.(*Primitive)
		return x.PrimitiveKind == y.PrimitiveKind && x.BitSize == y.BitSize
	case *Array:
		return EqualExpr(x.Element, b.(*Array).Element)
	case *Map:
		y := b.(*Map)
		return EqualExpr(x.Key, y.Key) && EqualExpr(x.Value, y.Value)
	case *Reference:
		return x.Target == b.(*Reference).Target
	case *Unsupported:
		return x.Raw == b.(*Unsupported).Raw
	}
	return false
}
