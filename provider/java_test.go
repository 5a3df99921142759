package provider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/broady/vocabgen/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const javaPkg = "org.example.vocab"

func loadJava(t *testing.T) (*JavaCatalog, map[string]*ir.ClassDescriptor) {
	t.Helper()
	c, err := NewJavaCatalog("testdata/java")
	require.NoError(t, err)
	pts, err := c.ListTypesInPackages(context.Background(), []string{javaPkg})
	require.NoError(t, err)
	require.Len(t, pts, 1)

	byName := make(map[string]*ir.ClassDescriptor)
	for _, d := range pts[0].Types {
		byName[d.Name.Name] = d
	}
	return c, byName
}

func jname(name string) ir.QualifiedName {
	return ir.QualifiedName{Package: javaPkg, Name: name}
}

func TestJavaCatalog_Types(t *testing.T) {
	c, types := loadJava(t)
	assert.ElementsMatch(t, []string{"Activity", "ActivityObject", "Follow", "Like", "Note"}, keys(types))

	require.NotEmpty(t, c.Warnings())
	assert.Equal(t, "NON_CLASS_TYPE", c.Warnings()[0].Code)
	assert.Equal(t, "Kind", c.Warnings()[0].TypeName)
}

func TestJavaCatalog_Interface(t *testing.T) {
	_, types := loadJava(t)

	obj := types["ActivityObject"]
	assert.True(t, obj.Abstract)
	assert.False(t, obj.Sealed)
	assert.Equal(t, "Root of the vocabulary.", obj.Doc.Summary)

	var names []string
	for _, f := range obj.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"id", "displayName", "published", "public"}, names)
	published, _ := obj.Field("published")
	assert.True(t, ir.EqualExpr(ir.Time(), published.Type))
	public, _ := obj.Field("public")
	assert.False(t, public.Nullable)
}

func TestJavaCatalog_SealedHierarchy(t *testing.T) {
	_, types := loadJava(t)

	activity := types["Activity"]
	assert.True(t, activity.Abstract)
	assert.True(t, activity.Sealed)
	assert.Equal(t, []ir.QualifiedName{jname("ActivityObject")}, activity.SuperTypes)
	require.NotNil(t, activity.Doc.Deprecated)
	assert.Equal(t, "use the verbs directly", *activity.Doc.Deprecated)

	actor, ok := activity.Field("actor")
	require.True(t, ok, "@JsonProperty renames the field")
	assert.True(t, ir.EqualExpr(&ir.Reference{Target: jname("ActivityObject")}, actor.Type))
	to, _ := activity.Field("to")
	assert.True(t, ir.EqualExpr(ir.ArrayOf(ir.String()), to.Type))

	like := types["Like"]
	assert.False(t, like.Abstract)
	assert.True(t, like.Sealed, "final subclass of a sealed class is a variant")
	assert.Equal(t, []ir.QualifiedName{jname("Activity")}, like.SuperTypes)

	follow := types["Follow"]
	assert.True(t, follow.Sealed)
	weight, _ := follow.Field("weight")
	assert.False(t, weight.Nullable)
	assert.True(t, ir.EqualExpr(ir.Int(32), weight.Type))
}

func TestJavaCatalog_Fields(t *testing.T) {
	_, types := loadJava(t)

	note := types["Note"]
	assert.False(t, note.Sealed)
	assert.Equal(t, []ir.QualifiedName{
		{Package: "java.io", Name: "Serializable"},
		jname("ActivityObject"),
	}, note.SuperTypes)

	var names []string
	for _, f := range note.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"content", "extras", "data", "likes"}, names)

	content, _ := note.Field("content")
	assert.False(t, content.Nullable)
	extras, _ := note.Field("extras")
	assert.True(t, extras.Nullable)
	assert.True(t, ir.EqualExpr(ir.MapOf(ir.String(), ir.Any()), extras.Type))
	data, _ := note.Field("data")
	assert.True(t, ir.EqualExpr(ir.Bytes(), data.Type))
	likes, _ := note.Field("likes")
	assert.True(t, ir.EqualExpr(ir.ArrayOf(&ir.Reference{Target: jname("Like")}), likes.Type))
}

func TestJavaCatalog_SealedKeyword(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "org", "example", "shapes")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	files := map[string]string{
		"Shape.java":     "package org.example.shapes;\n\npublic sealed interface Shape permits Circle {}\n",
		"Circle.java":    "package org.example.shapes;\n\npublic final class Circle implements Shape {}\n",
		"Plain.java":     "package org.example.shapes;\n\n@Doc(\"non sealed \")\npublic class Plain {}\n",
		"Permits.java":   "package org.example.shapes;\n\n@Doc(value = \"permits\")\npublic abstract class Permits {}\n",
		"Commented.java": "package org.example.shapes;\n\npublic /* sealed */ class Commented {}\n",
	}
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}

	c, err := NewJavaCatalog(root)
	require.NoError(t, err)
	pts, err := c.ListTypesInPackages(context.Background(), []string{"org.example.shapes"})
	require.NoError(t, err)
	require.Len(t, pts, 1)

	sealed := make(map[string]bool)
	for _, d := range pts[0].Types {
		sealed[d.Name.Name] = d.Sealed
	}
	assert.Equal(t, map[string]bool{
		"Shape":     true,
		"Circle":    true,
		"Plain":     false,
		"Permits":   false,
		"Commented": false,
	}, sealed)
}

func TestJavaCatalog_Lookup(t *testing.T) {
	c, err := NewJavaCatalog("testdata/java")
	require.NoError(t, err)
	ctx := context.Background()

	d, err := c.Lookup(ctx, jname("Follow"))
	require.NoError(t, err)
	assert.Equal(t, "Follow", d.Name.Name)

	_, err = c.Lookup(ctx, ir.QualifiedName{Package: "java.io", Name: "Serializable"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestNewJavaCatalog_Errors(t *testing.T) {
	_, err := NewJavaCatalog()
	assert.Error(t, err)
	_, err = NewJavaCatalog("testdata/does-not-exist")
	assert.Error(t, err)
}
