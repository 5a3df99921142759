package gen

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchOptions(t *testing.T) {
	out := t.TempDir()
	tests := []struct {
		name  string
		opts  vocabgen.Options
		roots []string
		ext   string
	}{
		{
			name:  "source",
			opts:  vocabgen.Options{Dir: "./api"},
			roots: []string{"./api"},
			ext:   ".go",
		},
		{
			name:  "source default dir",
			roots: []string{"."},
			ext:   ".go",
		},
		{
			name:  "java",
			opts:  vocabgen.Options{Catalog: "java", SourceRoots: []string{"src/main/java", "gen/java"}},
			roots: []string{"src/main/java", "gen/java"},
			ext:   ".java",
		},
		{
			name:  "manifest",
			opts:  vocabgen.Options{Catalog: "manifest", Manifests: []string{"schemas/**/*.yaml", "extra.toml"}},
			roots: []string{"schemas", "."},
			ext:   ".toml",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.SourcePackages = []string{"org.example"}
			opts.TargetPackage = "org.example.gen"
			opts.TargetDirectory = out
			cfg, err := vocabgen.NewConfig(opts)
			require.NoError(t, err)

			w := WatchOptions(cfg, time.Second, &flags.Env{})
			assert.Equal(t, tt.roots, w.Roots)
			assert.Contains(t, w.Extensions, tt.ext)
			assert.Equal(t, []string{out}, w.Exclude)
			assert.Equal(t, time.Second, w.Debounce)
		})
	}
}

func TestWatchOptions_ManifestBase(t *testing.T) {
	cfg, err := vocabgen.NewConfig(vocabgen.Options{
		SourcePackages:  []string{"p"},
		TargetPackage:   "q",
		TargetDirectory: t.TempDir(),
		Catalog:         "manifest",
		Manifests:       []string{filepath.Join("a", "b", "*.json")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join("a", "b")}, WatchOptions(cfg, 0, &flags.Env{}).Roots)
}
