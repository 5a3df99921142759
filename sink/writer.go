package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/broady/vocabgen/ir"
)

// Layout describes where a run's files live inside a sink.
type Layout struct {
	// Base is the slash-separated directory of the target package,
	// e.g. "org/example/vocab". Empty means the sink root.
	Base string

	// Extension is the renderer's file extension, including the dot.
	Extension string
}

// Dir returns the directory of category c.
func (l Layout) Dir(c ir.Category) string {
	if l.Base == "" {
		return c.Subdir()
	}
	return path.Join(l.Base, c.Subdir())
}

// owns reports whether name is a file this layout's renderer produces.
func (l Layout) owns(name string) bool {
	return strings.HasSuffix(name, l.Extension) && !strings.HasPrefix(name, ".")
}

// WriteOptions configures Write.
type WriteOptions struct {
	// Prune deletes files with the layout's extension in the category
	// directories that the current output set does not contain.
	Prune bool
}

// Report lists what Write did, by relative path.
type Report struct {
	Written   []string
	Unchanged []string
	Removed   []string
}

// CheckPaths validates every path and rejects collisions. Two paths
// collide when they are equal or differ only in letter case, since the
// output must be portable to case-insensitive filesystems. Every problem
// is reported.
func CheckPaths(files []ir.GeneratedFile) error {
	var errs []error
	exact := make(map[string]ir.GeneratedFile, len(files))
	folded := make(map[string]ir.GeneratedFile, len(files))
	for _, f := range files {
		if err := ValidatePath(f.RelativePath); err != nil {
			errs = append(errs, ir.Wrap(ir.CodeRender, err, "invalid output path "+f.RelativePath).
				WithDetails(map[string]any{"path": f.RelativePath, "descriptor": f.Descriptor.String()}))
			continue
		}
		if prev, ok := exact[f.RelativePath]; ok {
			errs = append(errs, collision(f.RelativePath, prev, f))
			continue
		}
		key := strings.ToLower(f.RelativePath)
		if prev, ok := folded[key]; ok {
			errs = append(errs, collision(f.RelativePath, prev, f).
				WithDetail("other_path", prev.RelativePath))
			continue
		}
		exact[f.RelativePath] = f
		folded[key] = f
	}
	return errors.Join(errs...)
}

func collision(p string, a, b ir.GeneratedFile) *ir.Error {
	return ir.Errorf(ir.CodeCollision, "%s and %s both generate %s", a.Descriptor, b.Descriptor, p).
		WithDetails(map[string]any{
			"path":       p,
			"descriptor": b.Descriptor.String(),
			"other":      a.Descriptor.String(),
		})
}

// Write materializes files in s. Nothing is touched unless every path is
// valid and collision free. The category directories are created even when
// empty, and files whose content is unchanged are not rewritten.
func Write(ctx context.Context, s OutputSink, layout Layout, files []ir.GeneratedFile, opts WriteOptions) (*Report, error) {
	if err := CheckPaths(files); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, c := range ir.Categories() {
		if err := s.MkdirAll(ctx, layout.Dir(c)); err != nil {
			return nil, ioError(err, layout.Dir(c))
		}
	}

	report := &Report{}
	for _, f := range files {
		existing, err := s.ReadFile(ctx, f.RelativePath)
		switch {
		case err == nil && bytes.Equal(existing, f.Content):
			report.Unchanged = append(report.Unchanged, f.RelativePath)
			continue
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return report, ioError(err, f.RelativePath)
		}
		if err := s.WriteFile(ctx, f.RelativePath, f.Content); err != nil {
			return report, ioError(err, f.RelativePath)
		}
		report.Written = append(report.Written, f.RelativePath)
	}

	if opts.Prune {
		stale, err := staleFiles(ctx, s, layout, files)
		if err != nil {
			return report, err
		}
		for _, p := range stale {
			if err := s.Remove(ctx, p); err != nil {
				return report, ioError(err, p)
			}
			report.Removed = append(report.Removed, p)
		}
	}
	return report, nil
}

// staleFiles lists owned files in the category directories that are not
// part of files.
func staleFiles(ctx context.Context, s OutputSink, layout Layout, files []ir.GeneratedFile) ([]string, error) {
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		keep[f.RelativePath] = true
	}
	var stale []string
	for _, c := range ir.Categories() {
		dir := layout.Dir(c)
		names, err := s.List(ctx, dir)
		if err != nil {
			return nil, ioError(err, dir)
		}
		for _, name := range names {
			p := path.Join(dir, name)
			if layout.owns(name) && !keep[p] {
				stale = append(stale, p)
			}
		}
	}
	return stale, nil
}

// DiffResult compares an output set with the content of a sink.
type DiffResult struct {
	// Changed files exist with different content.
	Changed []string
	// Missing files do not exist.
	Missing []string
	// Stale files exist but are not part of the output set.
	Stale []string
}

// Clean reports whether the sink matches the output set exactly.
func (d *DiffResult) Clean() bool {
	return len(d.Changed) == 0 && len(d.Missing) == 0 && len(d.Stale) == 0
}

// Err returns an out-of-date error describing d, or nil if d is clean.
func (d *DiffResult) Err() error {
	if d.Clean() {
		return nil
	}
	return ir.Errorf(ir.CodeOutOfDate, "generated files are out of date: %d changed, %d missing, %d stale",
		len(d.Changed), len(d.Missing), len(d.Stale)).
		WithDetails(map[string]any{"changed": d.Changed, "missing": d.Missing, "stale": d.Stale})
}

// Diff compares files with what s holds, without modifying s.
func Diff(ctx context.Context, s OutputSink, layout Layout, files []ir.GeneratedFile) (*DiffResult, error) {
	if err := CheckPaths(files); err != nil {
		return nil, err
	}
	result := &DiffResult{}
	for _, f := range files {
		existing, err := s.ReadFile(ctx, f.RelativePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			result.Missing = append(result.Missing, f.RelativePath)
		case err != nil:
			return nil, ioError(err, f.RelativePath)
		case !bytes.Equal(existing, f.Content):
			result.Changed = append(result.Changed, f.RelativePath)
		}
	}
	stale, err := staleFiles(ctx, s, layout, files)
	if err != nil {
		return nil, err
	}
	result.Stale = stale
	return result, nil
}

// ioError codes a sink failure. Cancellation passes through unchanged.
func ioError(err error, p string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return ir.Wrap(ir.CodeInternal, err, fmt.Sprintf("write %s", p)).WithDetail("path", p)
}
