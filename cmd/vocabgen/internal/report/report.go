// Package report prints run summaries and errors to the terminal.
package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/sink"
	"github.com/pterm/pterm"
)

// Printer writes human readable output.
type Printer struct {
	out, errOut io.Writer
}

// New returns a printer writing summaries to out and errors to errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// Summary prints the per-category file counts of a finished run.
func (p *Printer) Summary(result *vocabgen.Result) error {
	data := pterm.TableData{{"Category", "Directory", "Files"}}
	total := 0
	for _, c := range ir.Categories() {
		n := result.Counts[c]
		total += n
		data = append(data, []string{c.String(), c.Subdir(), strconv.Itoa(n)})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(p.out).WithData(data).Render(); err != nil {
		return err
	}
	pterm.Success.WithWriter(p.out).Printfln("%d files: %d written, %d unchanged, %d removed (%s)",
		total, len(result.Written), len(result.Unchanged), len(result.Removed),
		result.Duration.Round(time.Millisecond))
	return nil
}

// Warnings prints catalog warnings.
func (p *Printer) Warnings(warnings []ir.Warning) {
	w := pterm.Warning.WithWriter(p.errOut)
	for _, warn := range warnings {
		if warn.TypeName != "" {
			w.Printfln("%s: %s", warn.TypeName, warn.Message)
		} else {
			w.Println(warn.Message)
		}
	}
}

// Diff prints the differences found by check.
func (p *Printer) Diff(diff *sink.DiffResult) {
	if diff.Clean() {
		pterm.Success.WithWriter(p.out).Println("generated files are up to date")
		return
	}
	w := pterm.Warning.WithWriter(p.errOut)
	for _, path := range diff.Changed {
		w.Printfln("changed: %s", path)
	}
	for _, path := range diff.Missing {
		w.Printfln("missing: %s", path)
	}
	for _, path := range diff.Stale {
		w.Printfln("stale:   %s", path)
	}
}

// Error prints every coded error in err with its details.
func (p *Printer) Error(err error) {
	e := pterm.Error.WithWriter(p.errOut)
	coded := ir.Flatten(err)
	if len(coded) == 0 {
		e.Println(err.Error())
		return
	}
	for _, ce := range coded {
		e.Println(ce.Error())
		for _, k := range slices.Sorted(maps.Keys(ce.Details)) {
			fmt.Fprintf(p.errOut, "    %s: %v\n", k, ce.Details[k])
		}
	}
	if n := len(coded); n > 1 {
		e.Printfln("%d errors", n)
	}
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	return ir.CodeOf(err).ExitCode()
}
