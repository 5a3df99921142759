package gen

import (
	"context"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/flags"
	"github.com/broady/vocabgen/internal/watch"
	"github.com/broady/vocabgen/provider"
	"github.com/pterm/pterm"
)

type Cmd struct {
	flags.Config `embed:""`

	Watch    bool          `help:"Watch the sources and regenerate on change. Config changes need a restart." short:"w"`
	Debounce time.Duration `help:"Quiet period before regenerating in watch mode." default:"200ms"`
}

func (c *Cmd) Run(ctx context.Context, env *flags.Env) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}

	err = generate(ctx, cfg, env)
	if !c.Watch {
		return err
	}
	if err != nil {
		env.Printer.Error(err)
	}

	w, err := watch.New(WatchOptions(cfg, c.Debounce, env))
	if err != nil {
		return err
	}
	defer w.Close()

	pterm.Info.WithWriter(env.Stdout).Println("watching for changes, press Ctrl+C to stop")
	return w.Run(ctx, func(ctx context.Context, changed []string) {
		env.Logger.InfoContext(ctx, "regenerating", "changed", len(changed))
		if err := generate(ctx, cfg, env); err != nil {
			env.Printer.Error(err)
		}
	})
}

func generate(ctx context.Context, cfg vocabgen.Config, env *flags.Env) error {
	result, err := vocabgen.Generate(ctx, cfg, nil, env.RunOptions()...)
	if result != nil {
		env.Printer.Warnings(result.Warnings)
	}
	if err != nil {
		return err
	}
	return env.Printer.Summary(result)
}

// WatchOptions returns the roots and file extensions the configured
// catalog reads from. The output tree is never watched.
func WatchOptions(cfg vocabgen.Config, debounce time.Duration, env *flags.Env) watch.Options {
	opts := watch.Options{
		Exclude:  []string{cfg.TargetDirectory()},
		Debounce: debounce,
		Logger:   env.Logger,
	}
	catalog := cfg.CatalogOptions()
	switch cfg.CatalogKind() {
	case provider.KindJava:
		opts.Roots = catalog.SourceRoots
		opts.Extensions = []string{".java"}
	case provider.KindManifest:
		for _, pattern := range catalog.Manifests {
			base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
			opts.Roots = append(opts.Roots, filepath.FromSlash(base))
		}
		opts.Extensions = []string{".yaml", ".yml", ".json", ".toml"}
	default:
		dir := catalog.Dir
		if dir == "" {
			dir = "."
		}
		opts.Roots = []string{dir}
		opts.Extensions = []string{".go"}
	}
	return opts
}
