package check

import (
	"context"

	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/flags"
)

type Cmd struct {
	flags.Config `embed:""`
}

func (c *Cmd) Run(ctx context.Context, env *flags.Env) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}

	// Check never writes, so the summary is only the diff.
	result, err := vocabgen.Check(ctx, cfg, nil, env.RunOptions()...)
	if result != nil {
		env.Printer.Warnings(result.Warnings)
		if result.Diff != nil {
			env.Printer.Diff(result.Diff)
		}
	}
	return err
}
