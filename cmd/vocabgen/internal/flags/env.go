package flags

import (
	"io"
	"log/slog"

	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/report"
	"github.com/broady/vocabgen/middleware"
)

// Env is bound to every command's Run method.
type Env struct {
	Stdout  io.Writer
	Logger  *slog.Logger
	Printer *report.Printer

	// Version is the generator version in semver form, or "dev".
	Version string

	// Verbose logs every pipeline stage.
	Verbose bool
}

// RunOptions returns the vocabgen options shared by every command.
func (e *Env) RunOptions() []vocabgen.Option {
	opts := []vocabgen.Option{
		vocabgen.WithLogger(e.Logger),
		vocabgen.WithVersion(e.Version),
	}
	if e.Verbose {
		opts = append(opts, vocabgen.WithInterceptors(middleware.LoggingInterceptor(e.Logger)))
	}
	return opts
}
