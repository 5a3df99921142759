// Package render turns classified descriptors into target-language source.
//
// A Renderer produces the text of one file per descriptor. The shared
// Context resolves everything a renderer needs to know about the rest of the
// vocabulary: the category of referenced types, their generated package,
// user supplied type mappings, and the fields a concrete type inherits.
package render

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/broady/vocabgen/classify"
	"github.com/broady/vocabgen/ir"
)

// Header is the first line of every generated file.
const Header = "// Code generated by vocabgen. DO NOT EDIT."

// Renderer produces source text for one target language.
type Renderer interface {
	// Language returns the renderer's identifier (e.g., "scala").
	Language() string

	// FileExtension returns the extension of generated files, including the dot.
	FileExtension() string

	// Render returns the complete file content for d rendered as category c.
	Render(ctx *Context, d *ir.ClassDescriptor, c ir.Category) ([]byte, error)
}

// Context gives renderers read-only access to the run's configuration and
// to the classified vocabulary. It is safe for concurrent use.
type Context struct {
	targetPackage string
	mappings      map[string]string
	partition     *classify.Partition
	comments      bool
}

// ContextOptions configures a Context.
type ContextOptions struct {
	// TypeMappings maps a qualified source type name to a literal target
	// type. Mappings take precedence over descriptors in the set.
	TypeMappings map[string]string

	// Comments copies descriptor documentation into the output.
	Comments bool
}

// NewContext creates a render context for the classified partition.
func NewContext(targetPackage string, p *classify.Partition, opts ContextOptions) *Context {
	mappings := make(map[string]string, len(opts.TypeMappings))
	for k, v := range opts.TypeMappings {
		mappings[k] = v
	}
	return &Context{
		targetPackage: targetPackage,
		mappings:      mappings,
		partition:     p,
		comments:      opts.Comments,
	}
}

// TargetPackage returns the root package of generated code.
func (c *Context) TargetPackage() string { return c.targetPackage }

// Comments reports whether documentation should be emitted.
func (c *Context) Comments() bool { return c.comments }

// Category returns the category of a descriptor in the vocabulary.
func (c *Context) Category(name ir.QualifiedName) (ir.Category, bool) {
	return c.partition.Category(name)
}

// Lookup returns a descriptor in the vocabulary.
func (c *Context) Lookup(name ir.QualifiedName) (*ir.ClassDescriptor, bool) {
	return c.partition.Set().Get(name)
}

// Mapping returns the user supplied target type for name.
func (c *Context) Mapping(name ir.QualifiedName) (string, bool) {
	t, ok := c.mappings[name.String()]
	return t, ok
}

// Package returns the generated package of category cat.
func (c *Context) Package(cat ir.Category) string {
	if c.targetPackage == "" {
		return cat.Subdir()
	}
	return c.targetPackage + "." + cat.Subdir()
}

// RelativePath returns the slash-separated output path of a descriptor:
// <target package as path>/<category subdir>/<simple name><ext>.
func RelativePath(targetPackage string, cat ir.Category, name, ext string) string {
	return path.Join(strings.ReplaceAll(targetPackage, ".", "/"), cat.Subdir(), name+ext)
}

// Extends returns the Trait supertypes of d. Concrete supertypes cannot be
// extended by generated value types, so they are replaced by their own
// nearest Trait ancestors. The result is sorted and free of duplicates.
func (c *Context) Extends(d *ir.ClassDescriptor) []ir.QualifiedName {
	seen := make(map[ir.QualifiedName]bool)
	var out []ir.QualifiedName
	var visit func(names []ir.QualifiedName)
	visit = func(names []ir.QualifiedName) {
		for _, name := range names {
			if seen[name] || name == d.Name {
				continue
			}
			seen[name] = true
			cat, ok := c.Category(name)
			if !ok {
				continue
			}
			if cat == ir.CategoryTrait {
				out = append(out, name)
				continue
			}
			if sup, ok := c.Lookup(name); ok {
				visit(sup.SuperTypes)
			}
		}
	}
	visit(d.SuperTypes)
	ir.SortNames(out)
	return out
}

// Param is one constructor parameter of a concrete type.
type Param struct {
	ir.FieldDescriptor

	// Inherited is set when the field is declared by an ancestor only.
	Inherited bool

	// Override is set when a Trait ancestor declares an accessor with the
	// same name, so the parameter implements it.
	Override bool
}

// Params returns the constructor parameters of a concrete type: its own
// fields in declaration order, then every field declared by an ancestor
// and not by d, in ancestor order. Names are unique.
func (c *Context) Params(d *ir.ClassDescriptor) []Param {
	ancestors := c.partition.Set().Ancestors(d.Name)

	abstract := make(map[string]bool)
	for _, name := range ancestors {
		if cat, _ := c.Category(name); cat != ir.CategoryTrait {
			continue
		}
		if a, ok := c.Lookup(name); ok {
			for _, f := range a.Fields {
				abstract[f.Name] = true
			}
		}
	}

	seen := make(map[string]bool, len(d.Fields))
	params := make([]Param, 0, len(d.Fields))
	for _, f := range d.Fields {
		seen[f.Name] = true
		params = append(params, Param{FieldDescriptor: f, Override: abstract[f.Name]})
	}
	for _, name := range ancestors {
		a, ok := c.Lookup(name)
		if !ok {
			continue
		}
		for _, f := range a.Fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			params = append(params, Param{FieldDescriptor: f, Inherited: true, Override: abstract[f.Name]})
		}
	}
	return params
}

// TypeNamer spells type expressions in one target language.
type TypeNamer interface {
	// Primitive returns the spelling of p, or false if the language has none.
	Primitive(p *ir.Primitive) (string, bool)
	Array(elem string) string
	Map(key, value string) string
	// Reference spells a descriptor of the vocabulary.
	Reference(name ir.QualifiedName, cat ir.Category) string
}

// ErrUnmapped is returned by TypeName when a type has no target spelling.
var ErrUnmapped = errors.New("no target-language mapping")

// TypeName spells e with n. Mapped references use their mapping verbatim.
func (c *Context) TypeName(n TypeNamer, e ir.TypeExpr) (string, error) {
	switch t := e.(type) {
	case *ir.Primitive:
		if s, ok := n.Primitive(t); ok {
			return s, nil
		}
		return "", fmt.Errorf("%w for primitive %s", ErrUnmapped, t)
	case *ir.Array:
		elem, err := c.TypeName(n, t.Element)
		if err != nil {
			return "", err
		}
		return n.Array(elem), nil
	case *ir.Map:
		key, err := c.TypeName(n, t.Key)
		if err != nil {
			return "", err
		}
		value, err := c.TypeName(n, t.Value)
		if err != nil {
			return "", err
		}
		return n.Map(key, value), nil
	case *ir.Reference:
		if s, ok := c.Mapping(t.Target); ok {
			return s, nil
		}
		if cat, ok := c.Category(t.Target); ok {
			return n.Reference(t.Target, cat), nil
		}
		return "", fmt.Errorf("%w for %s", ErrUnmapped, t.Target)
	case *ir.Unsupported:
		return "", fmt.Errorf("%w for unsupported type %q", ErrUnmapped, t.Raw)
	default:
		return "", fmt.Errorf("%w for %v", ErrUnmapped, e)
	}
}

// Imports returns the vocabulary descriptors that rendering d as cat
// refers to, excluding d itself and mapped types, sorted by name.
func (c *Context) Imports(d *ir.ClassDescriptor, cat ir.Category) []ir.QualifiedName {
	seen := map[ir.QualifiedName]bool{d.Name: true}
	var out []ir.QualifiedName
	add := func(name ir.QualifiedName) {
		if seen[name] {
			return
		}
		seen[name] = true
		if _, mapped := c.Mapping(name); mapped {
			return
		}
		if _, ok := c.Category(name); ok {
			out = append(out, name)
		}
	}
	for _, name := range c.Extends(d) {
		add(name)
	}
	fields := d.Fields
	if cat != ir.CategoryTrait {
		fields = nil
		for _, p := range c.Params(d) {
			fields = append(fields, p.FieldDescriptor)
		}
	}
	for _, f := range fields {
		for _, name := range ir.References(f.Type) {
			add(name)
		}
	}
	ir.SortNames(out)
	return out
}

// FieldError reports a field that cannot be rendered.
func FieldError(d *ir.ClassDescriptor, f ir.FieldDescriptor, err error) error {
	return ir.Wrap(ir.CodeRender, err, fmt.Sprintf("%s.%s", d.Name, f.Name)).
		WithDetails(map[string]any{"descriptor": d.Name.String(), "field": f.Name})
}

// CheckReserved fails with a render error when a parameter of d, spelled
// with spell, is one of the members the renderer generates itself.
func CheckReserved(d *ir.ClassDescriptor, params []Param, spell func(string) string, members ...string) error {
	for _, p := range params {
		name := spell(p.Name)
		for _, m := range members {
			if name == m {
				return ReservedError(d, p.FieldDescriptor, m)
			}
		}
	}
	return nil
}

// ReservedError reports a field that collides with a generated member.
func ReservedError(d *ir.ClassDescriptor, f ir.FieldDescriptor, member string) error {
	return ir.Errorf(ir.CodeRender, "%s.%s: field collides with generated member %q", d.Name, f.Name, member).
		WithDetails(map[string]any{"descriptor": d.Name.String(), "field": f.Name, "member": member})
}

// CategoryError reports a category a renderer does not know.
func CategoryError(d *ir.ClassDescriptor, c ir.Category) error {
	return ir.Errorf(ir.CodeRender, "%s: unknown category %d", d.Name, int(c)).
		WithDetail("descriptor", d.Name.String())
}
