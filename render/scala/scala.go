// Package scala renders vocabulary descriptors as Scala source.
//
// Traits become traits with abstract accessors, object types become case
// classes, and verbs become case classes that carry their discriminant in
// a companion object.
package scala

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/render"
)

// Renderer renders Scala 2.13 / Scala 3 compatible source.
type Renderer struct{}

// New returns a Scala renderer.
func New() *Renderer { return &Renderer{} }

func (*Renderer) Language() string      { return "scala" }
func (*Renderer) FileExtension() string { return ".scala" }

// Render implements render.Renderer.
func (r *Renderer) Render(ctx *render.Context, d *ir.ClassDescriptor, c ir.Category) ([]byte, error) {
	var body bytes.Buffer
	var err error
	switch c {
	case ir.CategoryTrait:
		err = r.renderTrait(&body, ctx, d)
	case ir.CategoryObjectType:
		err = r.renderClass(&body, ctx, d, false)
	case ir.CategoryVerb:
		err = r.renderClass(&body, ctx, d, true)
	default:
		return nil, render.CategoryError(d, c)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(render.Header)
	buf.WriteString("\n\npackage ")
	buf.WriteString(packageName(ctx.Package(c)))
	buf.WriteString("\n\n")
	if imports := r.imports(ctx, d, c); len(imports) > 0 {
		for _, imp := range imports {
			buf.WriteString("import ")
			buf.WriteString(imp)
			buf.WriteString("\n")
		}
		buf.WriteString("\n")
	}
	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

func (r *Renderer) imports(ctx *render.Context, d *ir.ClassDescriptor, c ir.Category) []string {
	own := ctx.Package(c)
	var out []string
	for _, name := range ctx.Imports(d, c) {
		cat, _ := ctx.Category(name)
		pkg := ctx.Package(cat)
		if pkg == own {
			continue
		}
		out = append(out, packageName(pkg)+"."+ident(name.Name))
	}
	return out
}

func (r *Renderer) renderTrait(buf *bytes.Buffer, ctx *render.Context, d *ir.ClassDescriptor) error {
	if ctx.Comments() {
		render.WriteDoc(buf, "", d.Doc)
	}
	buf.WriteString("trait ")
	buf.WriteString(ident(d.Name.Name))
	writeExtends(buf, ctx.Extends(d))

	if len(d.Fields) == 0 {
		buf.WriteString("\n")
		return nil
	}
	buf.WriteString(" {\n")
	for _, f := range d.Fields {
		typ, err := r.fieldType(ctx, f)
		if err != nil {
			return render.FieldError(d, f, err)
		}
		if ctx.Comments() {
			render.WriteDoc(buf, "  ", f.Doc)
		}
		fmt.Fprintf(buf, "  def %s: %s\n", ident(f.Name), typ)
	}
	buf.WriteString("}\n")
	return nil
}

func (r *Renderer) renderClass(buf *bytes.Buffer, ctx *render.Context, d *ir.ClassDescriptor, verb bool) error {
	params := ctx.Params(d)
	name := ident(d.Name.Name)
	if verb {
		if err := render.CheckReserved(d, params, ident, "kind"); err != nil {
			return err
		}
	}

	if ctx.Comments() {
		render.WriteDoc(buf, "", d.Doc)
	}
	buf.WriteString("final case class ")
	buf.WriteString(name)
	if len(params) == 0 {
		buf.WriteString("()")
	} else {
		buf.WriteString("(\n")
		for i, p := range params {
			typ, err := r.fieldType(ctx, p.FieldDescriptor)
			if err != nil {
				return render.FieldError(d, p.FieldDescriptor, err)
			}
			buf.WriteString("  ")
			if p.Override {
				buf.WriteString("override val ")
			}
			buf.WriteString(ident(p.Name))
			buf.WriteString(": ")
			buf.WriteString(typ)
			if p.Nullable {
				buf.WriteString(" = None")
			}
			if i < len(params)-1 {
				buf.WriteString(",")
			}
			buf.WriteString("\n")
		}
		buf.WriteString(")")
	}
	writeExtends(buf, ctx.Extends(d))

	if !verb {
		buf.WriteString("\n")
		return nil
	}
	buf.WriteString(" {\n")
	fmt.Fprintf(buf, "  val kind: String = %s.Kind\n", name)
	buf.WriteString("}\n\n")
	fmt.Fprintf(buf, "object %s {\n", name)
	fmt.Fprintf(buf, "  val Kind: String = %s\n", strconv.Quote(d.Name.Name))
	buf.WriteString("}\n")
	return nil
}

func writeExtends(buf *bytes.Buffer, supers []ir.QualifiedName) {
	for i, s := range supers {
		if i == 0 {
			buf.WriteString(" extends ")
		} else {
			buf.WriteString(" with ")
		}
		buf.WriteString(ident(s.Name))
	}
}

// fieldType spells the declared type of f, wrapped in Option when nullable.
func (r *Renderer) fieldType(ctx *render.Context, f ir.FieldDescriptor) (string, error) {
	typ, err := ctx.TypeName(namer{}, f.Type)
	if err != nil {
		return "", err
	}
	if f.Nullable {
		return "Option[" + typ + "]", nil
	}
	return typ, nil
}

func packageName(pkg string) string {
	parts := strings.Split(pkg, ".")
	for i, p := range parts {
		parts[i] = ident(p)
	}
	return strings.Join(parts, ".")
}

type namer struct{}

func (namer) Primitive(p *ir.Primitive) (string, bool) {
	switch p.PrimitiveKind {
	case ir.PrimitiveBool:
		return "Boolean", true
	case ir.PrimitiveInt:
		switch p.BitSize {
		case 8:
			return "Byte", true
		case 16:
			return "Short", true
		case 32:
			return "Int", true
		}
		return "Long", true
	case ir.PrimitiveUint:
		switch p.BitSize {
		case 8, 16:
			return "Int", true
		case 32:
			return "Long", true
		}
		return "BigInt", true
	case ir.PrimitiveFloat:
		if p.BitSize == 32 {
			return "Float", true
		}
		return "Double", true
	case ir.PrimitiveString:
		return "String", true
	case ir.PrimitiveBytes:
		return "Seq[Byte]", true
	case ir.PrimitiveTime:
		return "java.time.Instant", true
	case ir.PrimitiveDuration:
		return "scala.concurrent.duration.Duration", true
	case ir.PrimitiveAny:
		return "Any", true
	}
	return "", false
}

func (namer) Array(elem string) string     { return "Seq[" + elem + "]" }
func (namer) Map(key, value string) string { return "Map[" + key + ", " + value + "]" }
func (namer) Reference(name ir.QualifiedName, _ ir.Category) string {
	return ident(name.Name)
}
