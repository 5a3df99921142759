package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/broady/vocabgen"
	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/sink"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func init() {
	pterm.DisableStyling()
}

func TestPrinter_Summary(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)
	err := p.Summary(&vocabgen.Result{
		Counts:    map[ir.Category]int{ir.CategoryTrait: 4, ir.CategoryObjectType: 43, ir.CategoryVerb: 89},
		Written:   []string{"a", "b"},
		Unchanged: make([]string, 134),
	})
	assert.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "objectTypes")
	assert.Contains(t, s, "89")
	assert.Contains(t, s, "136 files: 2 written, 134 unchanged, 0 removed")
}

func TestPrinter_Error(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)
	err := errors.Join(
		ir.NewError(ir.CodeRender, "no mapping for field").WithDetails(map[string]any{"descriptor": "v.A", "field": "ch"}),
		ir.NewError(ir.CodeRender, "no mapping for field").WithDetails(map[string]any{"descriptor": "v.B", "field": "ext"}),
	)
	p.Error(err)

	s := out.String()
	assert.Contains(t, s, "render: no mapping for field")
	assert.Contains(t, s, "descriptor: v.A")
	assert.Contains(t, s, "field: ext")
	assert.Contains(t, s, "2 errors")

	out.Reset()
	p.Error(fmt.Errorf("plain"))
	assert.Contains(t, out.String(), "plain")
}

func TestPrinter_Diff(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, &out)
	p.Diff(&sink.DiffResult{})
	assert.Contains(t, out.String(), "up to date")

	out.Reset()
	p.Diff(&sink.DiffResult{Changed: []string{"a/B.scala"}, Stale: []string{"a/C.scala"}})
	assert.Contains(t, out.String(), "changed: a/B.scala")
	assert.Contains(t, out.String(), "a/C.scala")
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{ir.NewError(ir.CodeConfiguration, "x"), 2},
		{ir.NewError(ir.CodeCollision, "x"), 6},
		{ir.NewError(ir.CodeOutOfDate, "x"), 1},
		{fmt.Errorf("wrapped: %w", ir.NewError(ir.CodeDiscovery, "x")), 3},
		{context.Canceled, 130},
		{errors.New("boom"), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
