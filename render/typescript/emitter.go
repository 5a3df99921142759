// Package typescript renders vocabulary descriptors as TypeScript modules.
//
// Traits become interfaces, object types become classes with readonly
// constructor parameters and an equals method, and verbs become classes
// carrying a literal kind discriminant.
package typescript

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/render"
)

// Config contains TypeScript-specific options.
type Config struct {
	// ReadonlyArrays uses 'readonly T[]' instead of 'T[]'.
	ReadonlyArrays bool

	// UnknownType specifies the type for untyped values.
	// SHOULD be one of: "unknown", "any"
	UnknownType string
}

// Renderer emits one TypeScript module per descriptor.
type Renderer struct {
	config Config
	indent string
}

// New returns a TypeScript renderer.
func New(config Config) *Renderer {
	if config.UnknownType == "" {
		config.UnknownType = "unknown"
	}
	return &Renderer{config: config, indent: "  "}
}

func (*Renderer) Language() string      { return "typescript" }
func (*Renderer) FileExtension() string { return ".ts" }

// Render implements render.Renderer.
func (r *Renderer) Render(ctx *render.Context, d *ir.ClassDescriptor, c ir.Category) ([]byte, error) {
	var body bytes.Buffer
	var err error
	switch c {
	case ir.CategoryTrait:
		err = r.emitInterface(&body, ctx, d)
	case ir.CategoryObjectType:
		err = r.emitClass(&body, ctx, d, false)
	case ir.CategoryVerb:
		err = r.emitClass(&body, ctx, d, true)
	default:
		return nil, render.CategoryError(d, c)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(render.Header)
	buf.WriteString("\n\n")
	if imports := ctx.Imports(d, c); len(imports) > 0 {
		for _, name := range imports {
			cat, _ := ctx.Category(name)
			fmt.Fprintf(&buf, "import type { %s } from %s;\n", ident(name.Name), strconv.Quote(importPath(c, cat, name.Name)))
		}
		buf.WriteString("\n")
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

// importPath returns the module specifier of name as seen from a file in
// category from.
func importPath(from, to ir.Category, name string) string {
	if from == to {
		return "./" + name
	}
	return "../" + to.Subdir() + "/" + name
}

// emitInterface emits a trait as an interface with readonly properties.
func (r *Renderer) emitInterface(buf *bytes.Buffer, ctx *render.Context, d *ir.ClassDescriptor) error {
	if ctx.Comments() {
		render.WriteDoc(buf, "", d.Doc)
	}
	buf.WriteString("export interface ")
	buf.WriteString(ident(d.Name.Name))
	buf.WriteString(" ")

	if supers := ctx.Extends(d); len(supers) > 0 {
		buf.WriteString("extends ")
		for i, s := range supers {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(ident(s.Name))
		}
		buf.WriteString(" ")
	}

	if len(d.Fields) == 0 {
		buf.WriteString("{}\n")
		return nil
	}
	buf.WriteString("{\n")
	for _, f := range d.Fields {
		typ, err := r.fieldType(ctx, f)
		if err != nil {
			return render.FieldError(d, f, err)
		}
		if ctx.Comments() {
			render.WriteDoc(buf, r.indent, f.Doc)
		}
		fmt.Fprintf(buf, "%sreadonly %s: %s;\n", r.indent, ident(f.Name), typ)
	}
	buf.WriteString("}\n")
	return nil
}

// emitClass emits an object type or verb as a class.
func (r *Renderer) emitClass(buf *bytes.Buffer, ctx *render.Context, d *ir.ClassDescriptor, verb bool) error {
	params := ctx.Params(d)
	name := ident(d.Name.Name)
	in := r.indent

	reserved := []string{"equals"}
	if verb {
		reserved = append(reserved, "kind")
	}
	if err := render.CheckReserved(d, params, ident, reserved...); err != nil {
		return err
	}

	if ctx.Comments() {
		render.WriteDoc(buf, "", d.Doc)
	}
	buf.WriteString("export class ")
	buf.WriteString(name)
	if supers := ctx.Extends(d); len(supers) > 0 {
		buf.WriteString(" implements ")
		for i, s := range supers {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(ident(s.Name))
		}
	}
	buf.WriteString(" {\n")

	if verb {
		fmt.Fprintf(buf, "%sstatic readonly KIND = %s;\n", in, strconv.Quote(d.Name.Name))
		fmt.Fprintf(buf, "%sreadonly kind = %s.KIND;\n", in, name)
	}

	if len(params) > 0 {
		if verb {
			buf.WriteString("\n")
		}
		fmt.Fprintf(buf, "%sconstructor(\n", in)
		for _, p := range params {
			typ, err := r.fieldType(ctx, p.FieldDescriptor)
			if err != nil {
				return render.FieldError(d, p.FieldDescriptor, err)
			}
			fmt.Fprintf(buf, "%s%sreadonly %s: %s", in, in, ident(p.Name), typ)
			if p.Nullable {
				buf.WriteString(" = null")
			}
			buf.WriteString(",\n")
		}
		fmt.Fprintf(buf, "%s) {}\n", in)
	}
	if verb || len(params) > 0 {
		buf.WriteString("\n")
	}

	structural := false
	fmt.Fprintf(buf, "%sequals(other: unknown): boolean {\n", in)
	if len(params) == 0 {
		fmt.Fprintf(buf, "%s%sreturn other instanceof %s;\n", in, in, name)
	} else {
		fmt.Fprintf(buf, "%s%sreturn (\n", in, in)
		fmt.Fprintf(buf, "%s%s%sother instanceof %s", in, in, in, name)
		for _, p := range params {
			field := ident(p.Name)
			buf.WriteString(" &&\n")
			buf.WriteString(in + in + in)
			if comparesByIdentity(p.Type) {
				fmt.Fprintf(buf, "this.%s === other.%s", field, field)
			} else {
				structural = true
				fmt.Fprintf(buf, "valueEquals(this.%s, other.%s)", field, field)
			}
		}
		buf.WriteString("\n")
		fmt.Fprintf(buf, "%s%s);\n", in, in)
	}
	fmt.Fprintf(buf, "%s}\n", in)
	buf.WriteString("}\n")
	if structural {
		buf.WriteString("\n")
		buf.WriteString(valueEquals)
	}
	return nil
}

// valueEquals compares arrays, records and generated classes by content.
// Records compare independently of key insertion order.
const valueEquals = `function valueEquals(a: unknown, b: unknown): boolean {
  if (a === b) {
    return true;
  }
  if (typeof a !== "object" || typeof b !== "object" || a === null || b === null) {
    return false;
  }
  if (Object.getPrototypeOf(a) !== Object.getPrototypeOf(b)) {
    return false;
  }
  if (Array.isArray(a) && Array.isArray(b)) {
    return a.length === b.length && a.every((v, i) => valueEquals(v, b[i]));
  }
  const x = a as Record<string, unknown>;
  const y = b as Record<string, unknown>;
  const keys = Object.keys(x);
  return (
    keys.length === Object.keys(y).length &&
    keys.every((k) => Object.prototype.hasOwnProperty.call(y, k) && valueEquals(x[k], y[k]))
  );
}
`

// comparesByIdentity reports whether values of e are JavaScript primitives.
func comparesByIdentity(e ir.TypeExpr) bool {
	p, ok := e.(*ir.Primitive)
	return ok && p.PrimitiveKind != ir.PrimitiveAny
}

func (r *Renderer) fieldType(ctx *render.Context, f ir.FieldDescriptor) (string, error) {
	typ, err := ctx.TypeName(namer{config: r.config}, f.Type)
	if err != nil {
		return "", err
	}
	if f.Nullable {
		return typ + " | null", nil
	}
	return typ, nil
}

type namer struct {
	config Config
}

func (n namer) Primitive(p *ir.Primitive) (string, bool) {
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		return "boolean", true
	case ir.PrimitiveInt, ir.PrimitiveUint, ir.PrimitiveFloat:
		return "number", true
	case ir.PrimitiveString:
		return "string", true
	case ir.PrimitiveBytes:
		return "string", true // base64
	case ir.PrimitiveTime:
		return "string", true // RFC 3339
	case ir.PrimitiveDuration:
		return "number", true // milliseconds
	case ir.PrimitiveAny:
		return n.config.UnknownType, true
	}
	return "", false
}

func (n namer) Array(elem string) string {
	if strings.Contains(elem, " | ") || strings.HasPrefix(elem, "readonly ") {
		elem = "(" + elem + ")"
	}
	if n.config.ReadonlyArrays {
		return "readonly " + elem + "[]"
	}
	return elem + "[]"
}

// Map keys serialize as strings in JSON.
func (namer) Map(_, value string) string {
	return fmt.Sprintf("Record<string, %s>", value)
}

func (namer) Reference(name ir.QualifiedName, _ ir.Category) string {
	return ident(name.Name)
}
