package flags

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/broady/vocabgen/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "vocab.yaml")
	content := "sourcePackages: [org.example.a]\ntargetPackage: org.example.gen\ntargetDirectory: out\nlanguage: scala\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	c := &Config{
		File:     file,
		Package:  "org.example.flag",
		Language: "typescript",
		Set:      []string{"targetPackage=org.example.set", "typeMappings.java.util.UUID=String"},
	}
	opts, err := c.Options()
	require.NoError(t, err)

	assert.Equal(t, []string{"org.example.a"}, opts.SourcePackages)
	assert.Equal(t, "org.example.set", opts.TargetPackage)
	assert.Equal(t, "out", opts.TargetDirectory)
	assert.Equal(t, "typescript", opts.Language)
	assert.Equal(t, map[string]string{"java.util.UUID": "String"}, opts.TypeMappings)
}

func TestConfig_FlagsOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	c := &Config{
		Source:      []string{"org.example.a", "org.example.b"},
		Package:     "org.example.gen",
		Out:         filepath.Join(t.TempDir(), "out"),
		Parallelism: 4,
		Prune:       true,
	}
	cfg, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"org.example.a", "org.example.b"}, cfg.SourcePackages())
	assert.Equal(t, 4, cfg.Parallelism())
	assert.True(t, cfg.Prune())
	assert.Empty(t, c.ConfigFile())
}

func TestConfig_DefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := `{"sourcePackages": ["a"], "targetPackage": "b", "targetDirectory": "c"}`
	require.NoError(t, os.WriteFile("vocabgen.json", []byte(content), 0o644))

	c := &Config{}
	assert.Equal(t, "vocabgen.json", c.ConfigFile())
	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, "b", opts.TargetPackage)
}

func TestConfig_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := (&Config{Set: []string{"nokey"}}).Options()
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))

	_, err = (&Config{Set: []string{"bogus=1"}}).Options()
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))

	_, err = (&Config{File: "missing.yaml"}).Options()
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))

	_, err = (&Config{Package: "org.example"}).Load()
	assert.Equal(t, ir.CodeConfiguration, ir.CodeOf(err))
}
