package render

import (
	"bytes"
	"testing"

	"github.com/broady/vocabgen/classify"
	"github.com/broady/vocabgen/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func name(n string) ir.QualifiedName { return ir.QualifiedName{Package: "v", Name: n} }

// newContext builds Named (trait) <- Place (concrete) <- City (concrete).
func newContext(t *testing.T) *Context {
	t.Helper()
	set := ir.NewDescriptorSet(
		&ir.ClassDescriptor{Name: name("Named"), Abstract: true, Fields: []ir.FieldDescriptor{{Name: "name", Type: ir.String()}}},
		&ir.ClassDescriptor{Name: name("Place"), SuperTypes: []ir.QualifiedName{name("Named")}, Fields: []ir.FieldDescriptor{
			{Name: "lat", Type: ir.Float(64)},
			{Name: "name", Type: ir.String()},
		}},
		&ir.ClassDescriptor{Name: name("City"), SuperTypes: []ir.QualifiedName{name("Place")}, Fields: []ir.FieldDescriptor{
			{Name: "population", Type: ir.Int(64), Nullable: true},
			{Name: "mayor", Type: ir.Ref("v", "Person")},
			{Name: "twin", Type: ir.Ref("v", "City"), Nullable: true},
		}},
		&ir.ClassDescriptor{Name: name("Person")},
	)
	p, err := classify.ClassifyAll(set)
	require.NoError(t, err)
	return NewContext("org.example.geo", p, ContextOptions{TypeMappings: map[string]string{"v.Person": "People.Person"}})
}

func TestContext_Extends(t *testing.T) {
	ctx := newContext(t)
	city, _ := ctx.Lookup(name("City"))
	assert.Equal(t, []ir.QualifiedName{name("Named")}, ctx.Extends(city))

	person, _ := ctx.Lookup(name("Person"))
	assert.Empty(t, ctx.Extends(person))
}

func TestContext_Params(t *testing.T) {
	ctx := newContext(t)
	city, _ := ctx.Lookup(name("City"))

	var got []string
	for _, p := range ctx.Params(city) {
		got = append(got, p.Name)
	}
	assert.Equal(t, []string{"population", "mayor", "twin", "name", "lat"}, got)

	params := ctx.Params(city)
	assert.False(t, params[0].Inherited)
	assert.True(t, params[3].Inherited)
	assert.True(t, params[3].Override, "name implements the Named accessor")
	assert.False(t, params[4].Override)
}

func TestContext_Imports(t *testing.T) {
	ctx := newContext(t)
	city, _ := ctx.Lookup(name("City"))
	// Person is mapped and City is self.
	assert.Equal(t, []ir.QualifiedName{name("Named")}, ctx.Imports(city, ir.CategoryObjectType))
}

type testNamer struct{}

func (testNamer) Primitive(p *ir.Primitive) (string, bool) {
	if p.PrimitiveKind == ir.PrimitiveBytes {
		return "", false
	}
	return p.String(), true
}
func (testNamer) Array(elem string) string     { return "list<" + elem + ">" }
func (testNamer) Map(key, value string) string { return "map<" + key + "," + value + ">" }
func (testNamer) Reference(n ir.QualifiedName, c ir.Category) string {
	return c.Subdir() + "." + n.Name
}

func TestContext_TypeName(t *testing.T) {
	ctx := newContext(t)
	tests := []struct {
		expr    ir.TypeExpr
		want    string
		wantErr bool
	}{
		{expr: ir.ArrayOf(ir.Ref("v", "City")), want: "list<objectTypes.City>"},
		{expr: ir.MapOf(ir.String(), ir.Ref("v", "Person")), want: "map<string,People.Person>"},
		{expr: ir.Ref("v", "Named"), want: "traits.Named"},
		{expr: ir.Ref("w", "Missing"), wantErr: true},
		{expr: ir.Bytes(), wantErr: true},
		{expr: &ir.Unsupported{Raw: "func()"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.expr.String(), func(t *testing.T) {
			got, err := ctx.TypeName(testNamer{}, tt.expr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnmapped)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "org/example/verbs/Like.scala", RelativePath("org.example", ir.CategoryVerb, "Like", ".scala"))
	assert.Equal(t, "traits/Base.ts", RelativePath("", ir.CategoryTrait, "Base", ".ts"))
}

func TestContext_Package(t *testing.T) {
	ctx := newContext(t)
	assert.Equal(t, "org.example.geo.objectTypes", ctx.Package(ir.CategoryObjectType))
}

func TestWriteDoc(t *testing.T) {
	dep := "use Other"
	tests := []struct {
		name string
		doc  ir.Documentation
		want string
	}{
		{"empty", ir.Documentation{}, ""},
		{"single", ir.Documentation{Summary: "One line."}, "  /** One line. */\n"},
		{"comment close", ir.Documentation{Body: "a */ b"}, "  /** a *\\/ b */\n"},
		{"body only", ir.Documentation{Body: "Old."}, "  /** Old. */\n"},
		{"deprecated tag", ir.Documentation{Body: "Old.", Deprecated: &dep}, "  /**\n   * Old.\n   * @deprecated use Other\n   */\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteDoc(&buf, "  ", tt.doc)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
