package provider

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/broady/vocabgen/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestCatalog(t *testing.T) {
	c, err := NewManifestCatalog("testdata/manifests/**/*.{yaml,json,toml}")
	require.NoError(t, err)
	assert.Len(t, c.Files(), 3)

	ctx := context.Background()
	pts, err := c.ListTypesInPackages(ctx, []string{"org.example.vocab", "org.example.missing"})
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Len(t, pts[0].Types, 4)
	assert.Empty(t, pts[1].Types)

	person, err := c.Lookup(ctx, ir.QualifiedName{Package: "org.example.people", Name: "Person"})
	require.NoError(t, err)
	assert.Equal(t, []ir.QualifiedName{
		{Package: "org.example.base", Name: "Serializable"},
		{Package: "org.example.vocab", Name: "Object"},
	}, person.SuperTypes)

	base, err := c.Lookup(ctx, ir.QualifiedName{Package: "org.example.base", Name: "Serializable"})
	require.NoError(t, err)
	assert.True(t, base.Abstract)

	_, err = c.Lookup(ctx, ir.QualifiedName{Package: "org.example.vocab", Name: "Nope"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManifestCatalog_Descriptors(t *testing.T) {
	m, err := ReadManifestFile("testdata/manifests/vocab.yaml")
	require.NoError(t, err)
	ds, err := m.Descriptors()
	require.NoError(t, err)
	require.Len(t, ds, 4)

	activity := ds[1]
	assert.Equal(t, "Activity", activity.Name.Name)
	assert.True(t, activity.Abstract && activity.Sealed)
	assert.Equal(t, []ir.QualifiedName{{Package: "org.example.vocab", Name: "Object"}}, activity.SuperTypes)

	note := ds[3]
	counts, ok := note.Field("counts")
	require.True(t, ok)
	assert.True(t, ir.EqualExpr(ir.MapOf(ir.String(), ir.ArrayOf(ir.Int(64))), counts.Type))
	assert.Equal(t, "Object is the root type.", ds[0].Doc.Summary)
}

func TestNewManifestCatalog_NoMatch(t *testing.T) {
	_, err := NewManifestCatalog("testdata/manifests/*.nothing")
	assert.Error(t, err)
	_, err = NewManifestCatalog()
	assert.Error(t, err)
}

func TestManifestCatalog_Conflict(t *testing.T) {
	dir := t.TempDir()
	a := "packages:\n  - package: p\n    types:\n      - name: A\n"
	b := "packages:\n  - package: p\n    types:\n      - name: A\n        abstract: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(a), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(b), 0o644))

	c, err := NewManifestCatalog(filepath.Join(dir, "*.yaml"))
	require.NoError(t, err)
	_, err = c.ListTypesInPackages(context.Background(), []string{"p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conflicting declarations of p.A")
}

func TestManifestCatalog_Requires(t *testing.T) {
	dir := t.TempDir()
	m := "requires: \">= 1.2, < 2\"\npackages:\n  - package: p\n    types:\n      - name: A\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(m), 0o644))

	tests := []struct {
		version string
		wantErr string
	}{
		{version: "1.4.0"},
		{version: "dev"},
		{version: "", wantErr: ""},
		{version: "1.1.9", wantErr: "requires vocabgen >= 1.2, < 2"},
		{version: "2.0.0", wantErr: "requires vocabgen"},
		{version: "banana", wantErr: "invalid generator version"},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			c, err := NewManifestCatalog(filepath.Join(dir, "*.yaml"))
			require.NoError(t, err)
			c.Version = tt.version
			_, err = c.ListTypesInPackages(context.Background(), []string{"p"})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTypeExpr(t *testing.T) {
	tests := []struct {
		in      string
		want    ir.TypeExpr
		wantErr bool
	}{
		{in: "string", want: ir.String()},
		{in: "int32", want: ir.Int(32)},
		{in: "[]time", want: ir.ArrayOf(ir.Time())},
		{in: "map[string]map[string]bool", want: ir.MapOf(ir.String(), ir.MapOf(ir.String(), ir.Bool()))},
		{in: "Link", want: ir.Ref("org.v", "Link")},
		{in: "String", want: ir.Ref("org.v", "String")},
		{in: "org.joda.time.DateTime", want: ir.Ref("org.joda.time", "DateTime")},
		{in: "unsupported(chan int)", want: &ir.Unsupported{Raw: "chan int"}},
		{in: "", wantErr: true},
		{in: "map[string", wantErr: true},
		{in: "List<String>x y", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTypeExpr(tt.in, "org.v")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, ir.EqualExpr(tt.want, got), "got %v", got)
			assert.Equal(t, tt.in, FormatTypeExpr(got, "org.v"))
		})
	}
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	m, err := ReadManifestFile("testdata/manifests/vocab.yaml")
	require.NoError(t, err)
	want, err := m.Descriptors()
	require.NoError(t, err)

	for _, format := range []string{"yaml", "json", "toml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteManifest(&buf, format, want))

			decoded, err := DecodeManifest(buf.Bytes(), format)
			require.NoError(t, err)
			got, err := decoded.Descriptors()
			require.NoError(t, err)
			require.Len(t, got, len(want))

			byName := make(map[ir.QualifiedName]*ir.ClassDescriptor)
			for _, d := range got {
				byName[d.Name] = d
			}
			for _, d := range want {
				assert.True(t, d.SameShape(byName[d.Name]), "%s changed shape", d.Name)
			}
		})
	}
}
