package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/check"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/flags"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/gen"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/manifest"
	"github.com/broady/vocabgen/cmd/vocabgen/internal/report"
	"github.com/joho/godotenv"
)

type CLI struct {
	Verbose   bool   `help:"Log every pipeline stage." short:"v" env:"VOCABGEN_VERBOSE"`
	LogFormat string `help:"Log format." enum:"text,json" default:"text" env:"VOCABGEN_LOG_FORMAT"`

	Version  VersionCmd   `cmd:"" help:"Print version information."`
	Gen      gen.Cmd      `cmd:"" help:"Generate the vocabulary tree."`
	Check    check.Cmd    `cmd:"" help:"Verify the generated tree is up to date without writing."`
	Manifest manifest.Cmd `cmd:"" help:"Export the discovered types as a YAML, JSON or TOML manifest."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run(env *flags.Env) error {
	fmt.Fprintln(env.Stdout, currentVersion())
	return nil
}

func (c *CLI) logger(w io.Writer) *slog.Logger {
	level := slog.LevelError
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("vocabgen"),
		kong.Description("Generate Scala or TypeScript vocabulary types from Go, Java or manifest sources."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "vocabgen: error: %v\n", err)
		return 2
	}

	printer := report.New(stdout, stderr)
	env := &flags.Env{
		Stdout:  stdout,
		Logger:  cli.logger(stderr),
		Printer: printer,
		Version: currentVersion().Semver(),
		Verbose: cli.Verbose,
	}
	if err := kctx.Run(env); err != nil {
		printer.Error(err)
		return report.ExitCode(err)
	}
	return 0
}
