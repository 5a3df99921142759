// Package ir defines the intermediate representation shared by every stage of
// the generator. Descriptors are language-agnostic: catalogs produce them from
// Go source, Java source or manifests, and renderers turn them into
// target-language source text.
package ir

import (
	"strings"
)

// QualifiedName identifies a type by its package and simple name.
// Two descriptors with the same QualifiedName describe the same type.
type QualifiedName struct {
	// Package is the dotted (Java, Scala) or slashed (Go) package path.
	// Empty for types in the default package.
	Package string

	// Name is the simple type name, e.g. "Activity".
	Name string
}

// ParseQualifiedName splits s at its last dot. "org.example.Follow" becomes
// {Package: "org.example", Name: "Follow"}; a name without dots has an empty
// package.
func ParseQualifiedName(s string) QualifiedName {
	i := strings.LastIndex(s, ".")
	if i < 0 || i < strings.LastIndex(s, "/") {
		return QualifiedName{Name: s}
	}
	return QualifiedName{Package: s[:i], Name: s[i+1:]}
}

// String returns the canonical "package.Name" form.
func (q QualifiedName) String() string {
	if q.Package == "" {
		return q.Name
	}
	return q.Package + "." + q.Name
}

// IsZero returns true if the name is empty.
func (q QualifiedName) IsZero() bool {
	return q.Name == "" && q.Package == ""
}

// Less orders names lexicographically by their canonical form.
func (q QualifiedName) Less(other QualifiedName) bool {
	return q.String() < other.String()
}

// Documentation holds documentation comments extracted from the source type.
type Documentation struct {
	// Summary is the first sentence, suitable for single-line comments.
	Summary string

	// Body is the complete documentation text, including the summary.
	Body string

	// Deprecated is non-nil if the type is marked deprecated.
	Deprecated *string
}

// IsZero returns true if the documentation is empty.
func (d Documentation) IsZero() bool {
	return d.Summary == "" && d.Body == "" && d.Deprecated == nil
}

// Source represents source code location information.
type Source struct {
	File   string
	Line   int
	Column int
}

// IsZero returns true if the source location is empty.
func (s Source) IsZero() bool {
	return s.File == "" && s.Line == 0 && s.Column == 0
}

// Warning represents a non-fatal issue encountered during generation.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// Source is the location that triggered the warning, if applicable.
	Source *Source

	// TypeName is the type that triggered the warning, if applicable.
	TypeName string
}
