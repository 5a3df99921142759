package vocabgen

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validOptions(dir string) Options {
	return Options{
		SourcePackages:  []string{"org.apache.streams.pojo.json"},
		TargetPackage:   "org.apache.streams.scala",
		TargetDirectory: dir,
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig(validOptions("out"))
	require.NoError(t, err)

	assert.Equal(t, "scala", cfg.Language())
	assert.Equal(t, provider.KindSource, cfg.CatalogKind())
	assert.Equal(t, 1, cfg.Parallelism())
	assert.True(t, cfg.Comments())
	assert.Contains(t, cfg.IgnoreSupertypes(), ir.QualifiedName{Package: "java.io", Name: "Serializable"})
	assert.Equal(t, "org/apache/streams/scala", cfg.OutputBase())
}

func TestNewConfig_Immutable(t *testing.T) {
	opts := validOptions("out")
	opts.TypeMappings = map[string]string{"a.B": "C"}
	cfg, err := NewConfig(opts)
	require.NoError(t, err)

	opts.SourcePackages[0] = "changed"
	opts.TypeMappings["a.B"] = "D"
	assert.Equal(t, []string{"org.apache.streams.pojo.json"}, cfg.SourcePackages())
	assert.Equal(t, "C", cfg.TypeMappings()["a.B"])

	got := cfg.SourcePackages()
	got[0] = "mutated"
	assert.Equal(t, "org.apache.streams.pojo.json", cfg.SourcePackages()[0])
	assert.Empty(t, opts.Language, "defaults are applied to a copy")
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		field  string
	}{
		{"nil source packages", func(o *Options) { o.SourcePackages = nil }, "sourcePackages"},
		{"empty source packages", func(o *Options) { o.SourcePackages = []string{} }, "sourcePackages"},
		{"duplicate source packages", func(o *Options) { o.SourcePackages = []string{"a", "a"} }, "sourcePackages"},
		{"bad source package", func(o *Options) { o.SourcePackages = []string{"a b"} }, "sourcePackages[0]"},
		{"missing target package", func(o *Options) { o.TargetPackage = "" }, "targetPackage"},
		{"bad target package", func(o *Options) { o.TargetPackage = "org..scala" }, "targetPackage"},
		{"slashed target package", func(o *Options) { o.TargetPackage = "org/scala" }, "targetPackage"},
		{"missing target directory", func(o *Options) { o.TargetDirectory = "" }, "targetDirectory"},
		{"unknown language", func(o *Options) { o.Language = "cobol" }, "language"},
		{"unknown catalog", func(o *Options) { o.Catalog = "ldap" }, "catalog"},
		{"java without roots", func(o *Options) { o.Catalog = "java" }, "sourceRoots"},
		{"manifest without files", func(o *Options) { o.Catalog = "manifest" }, "manifests"},
		{"negative parallelism", func(o *Options) { o.Parallelism = -1 }, "parallelism"},
		{"unknown type", func(o *Options) { o.UnknownType = "never" }, "unknownType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions("out")
			tt.modify(&opts)
			_, err := NewConfig(opts)
			require.Error(t, err)
			assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Contains(t, e.Details, tt.field)
		})
	}
}

func TestNewConfig_GoImportPaths(t *testing.T) {
	opts := validOptions("out")
	opts.SourcePackages = []string{"github.com/example/vocab/v2", "example.com/x_y/z-w"}
	_, err := NewConfig(opts)
	assert.NoError(t, err)
}

func TestZeroConfigRejected(t *testing.T) {
	_, err := Generate(t.Context(), Config{}, provider.NewMemoryCatalog())
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))
}

func TestLoadOptionsFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"vocabgen.yaml": "sourcePackages: [a.b]\ntargetPackage: x.y\ntargetDirectory: out\nlanguage: typescript\ntypeMappings:\n  org.joda.time.DateTime: java.time.Instant\n",
		"vocabgen.json": `{"sourcePackages": ["a.b"], "targetPackage": "x.y", "targetDirectory": "out", "language": "typescript", "typeMappings": {"org.joda.time.DateTime": "java.time.Instant"}}`,
		"vocabgen.toml": "sourcePackages = [\"a.b\"]\ntargetPackage = \"x.y\"\ntargetDirectory = \"out\"\nlanguage = \"typescript\"\n[typeMappings]\n\"org.joda.time.DateTime\" = \"java.time.Instant\"\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			opts, err := LoadOptionsFile(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"a.b"}, opts.SourcePackages)
			assert.Equal(t, "x.y", opts.TargetPackage)
			assert.Equal(t, "typescript", opts.Language)
			assert.Equal(t, "java.time.Instant", opts.TypeMappings["org.joda.time.DateTime"])
		})
	}
}

func TestLoadOptionsFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
		return p
	}
	for _, path := range []string{
		write("unknown.yaml", "sourcePackage: [a]\n"),
		write("unknown.json", `{"sourcePackage": ["a"]}`),
		write("unknown.toml", "sourcePackage = [\"a\"]\n"),
		write("config.ini", "x=1"),
		filepath.Join(dir, "missing.yaml"),
	} {
		_, err := LoadOptionsFile(path)
		assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err), path)
	}
}

func TestDecodeOverrides(t *testing.T) {
	opts := validOptions("out")
	values, err := ParseOverrides([]string{
		"targetPackage=com.example.gen",
		"sourcePackages=a",
		"sourcePackages=b",
		"parallelism=4",
		"prune=true",
		"typeMappings.x.Y=Z",
	})
	require.NoError(t, err)
	require.NoError(t, DecodeOverrides(&opts, values))

	assert.Equal(t, "com.example.gen", opts.TargetPackage)
	assert.Equal(t, []string{"a", "b"}, opts.SourcePackages)
	assert.Equal(t, 4, opts.Parallelism)
	assert.True(t, opts.Prune)
	assert.Equal(t, "Z", opts.TypeMappings["x.Y"])
	assert.Equal(t, "out", opts.TargetDirectory, "untouched fields are kept")

	err = DecodeOverrides(&opts, url.Values{"nope": {"1"}})
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))

	_, err = ParseOverrides([]string{"novalue"})
	assert.Error(t, err)
}

func TestCheckTarget(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfig(validOptions(filepath.Join(dir, "not", "yet", "there")))
	require.NoError(t, err)
	require.NoError(t, cfg.checkTarget())
	assert.NoDirExists(t, filepath.Join(dir, "not"), "probing creates nothing")

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	cfg, err = NewConfig(validOptions(filepath.Join(file, "out")))
	require.NoError(t, err)
	err = cfg.checkTarget()
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))
}
