package manifest

import (
	"context"
	"io"
	"os"

	"github.com/broady/vocabgen/cmd/vocabgen/internal/flags"
	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/loader"
	"github.com/broady/vocabgen/provider"
	"github.com/pterm/pterm"
)

type Cmd struct {
	flags.Config `embed:""`

	Format string `help:"Manifest format." enum:"yaml,json,toml" default:"yaml" short:"f"`
	Output string `help:"Write the manifest to this file instead of stdout." short:"O" type:"path"`
}

// Run discovers the configured packages and their supertypes and exports
// them as a manifest that the manifest catalog can read back.
func (c *Cmd) Run(ctx context.Context, env *flags.Env) error {
	opts, err := c.Options()
	if err != nil {
		return err
	}

	catalog, err := provider.Open(provider.Kind(opts.Catalog), provider.Options{
		Dir:              opts.Dir,
		BuildFlags:       opts.BuildFlags,
		SourceRoots:      opts.SourceRoots,
		Manifests:        opts.Manifests,
		GeneratorVersion: env.Version,
	})
	if err != nil {
		return ir.Wrap(ir.CodeConfiguration, err, "open catalog").WithDetail("field", "catalog")
	}

	ignore := opts.IgnoreSupertypes
	if ignore == nil {
		ignore = loader.DefaultIgnoreSupertypes
	}
	set, err := loader.Load(ctx, catalog, loader.Options{
		Packages:         opts.SourcePackages,
		IgnoreSupertypes: loader.ParseNames(ignore),
	})
	if err != nil {
		return err
	}

	if c.Output == "" {
		return write(env.Stdout, c.Format, set)
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return ir.Wrap(ir.CodeInternal, err, "create manifest")
	}
	if err := write(f, c.Format, set); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return ir.Wrap(ir.CodeInternal, err, "write manifest")
	}
	pterm.Success.WithWriter(env.Stdout).Printfln("wrote %d types to %s", set.Len(), c.Output)
	return nil
}

func write(w io.Writer, format string, set *ir.DescriptorSet) error {
	if err := provider.WriteManifest(w, format, set.All()); err != nil {
		return ir.Wrap(ir.CodeInternal, err, "write manifest")
	}
	return nil
}
