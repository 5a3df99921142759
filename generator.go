package vocabgen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/broady/vocabgen/classify"
	"github.com/broady/vocabgen/ir"
	"github.com/broady/vocabgen/loader"
	"github.com/broady/vocabgen/provider"
	"github.com/broady/vocabgen/render"
	"github.com/broady/vocabgen/render/scala"
	"github.com/broady/vocabgen/render/typescript"
	"github.com/broady/vocabgen/sink"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Option customizes a single Generate or Check call.
type Option func(*runOptions)

type runOptions struct {
	logger       *slog.Logger
	interceptors []StageInterceptor
	sink         sink.OutputSink
	renderer     render.Renderer
	version      string
}

// WithLogger sets the logger for warnings and the run summary.
// The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) { o.logger = logger }
}

// WithInterceptors wraps every stage with the given interceptors, the
// first being the outer-most.
func WithInterceptors(interceptors ...StageInterceptor) Option {
	return func(o *runOptions) { o.interceptors = append(o.interceptors, interceptors...) }
}

// WithSink replaces the filesystem sink rooted at the target directory.
func WithSink(s sink.OutputSink) Option {
	return func(o *runOptions) { o.sink = s }
}

// WithRenderer replaces the renderer selected by the config's language.
func WithRenderer(r render.Renderer) Option {
	return func(o *runOptions) { o.renderer = r }
}

// WithVersion sets the generator version checked against manifest
// constraints when the catalog is opened from the config.
func WithVersion(version string) Option {
	return func(o *runOptions) { o.version = version }
}

// Result describes a generation run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// Files are the rendered files in descriptor order.
	Files []ir.GeneratedFile

	// Counts holds the number of files per category.
	Counts map[ir.Category]int

	// Written, Unchanged and Removed are relative paths, set by Generate.
	Written   []string
	Unchanged []string
	Removed   []string

	// Diff is set by Check.
	Diff *sink.DiffResult

	// Warnings are non-fatal issues reported by the catalog.
	Warnings []ir.Warning

	Duration time.Duration
}

// NewRenderer returns the renderer for a language name.
func NewRenderer(cfg Config) (render.Renderer, error) {
	switch cfg.Language() {
	case "scala", "":
		return scala.New(), nil
	case "typescript":
		return typescript.New(typescript.Config{
			ReadonlyArrays: cfg.opts.ReadonlyArrays,
			UnknownType:    cfg.opts.UnknownType,
		}), nil
	default:
		return nil, ir.Errorf(ir.CodeConfiguration, "unknown language %q", cfg.Language()).WithDetail("field", "language")
	}
}

// OpenCatalog opens the catalog the config selects.
func OpenCatalog(cfg Config, version string) (provider.TypeCatalog, error) {
	opts := cfg.CatalogOptions()
	opts.GeneratorVersion = version
	c, err := provider.Open(cfg.CatalogKind(), opts)
	if err != nil {
		return nil, ir.Wrap(ir.CodeConfiguration, err, "open catalog").WithDetail("field", "catalog")
	}
	return c, nil
}

// Generate runs the whole pipeline and writes the output tree. A nil
// catalog is opened from cfg. Nothing is written unless every descriptor
// loads, classifies and renders, and the output paths are collision free.
func Generate(ctx context.Context, cfg Config, catalog provider.TypeCatalog, opts ...Option) (*Result, error) {
	r, err := newRun(ctx, cfg, catalog, opts)
	if err != nil {
		return nil, err
	}
	if err := r.build(); err != nil {
		return r.finish(err)
	}

	layout := r.layout()
	err = r.stage(StageWrite, func(ctx context.Context) (int, error) {
		report, err := sink.Write(ctx, r.sink, layout, r.result.Files, sink.WriteOptions{Prune: cfg.Prune()})
		if report == nil {
			return 0, err
		}
		r.result.Written = report.Written
		r.result.Unchanged = report.Unchanged
		r.result.Removed = report.Removed
		return len(report.Written), err
	})
	return r.finish(err)
}

// Check runs the pipeline without writing and compares the result with the
// output tree. An out-of-date tree is reported as an ir.CodeOutOfDate
// error; Result.Diff lists the differences.
func Check(ctx context.Context, cfg Config, catalog provider.TypeCatalog, opts ...Option) (*Result, error) {
	r, err := newRun(ctx, cfg, catalog, opts)
	if err != nil {
		return nil, err
	}
	if err := r.build(); err != nil {
		return r.finish(err)
	}

	err = r.stage(StageCheck, func(ctx context.Context) (int, error) {
		diff, err := sink.Diff(ctx, r.sink, r.layout(), r.result.Files)
		if err != nil {
			return 0, err
		}
		r.result.Diff = diff
		return len(diff.Changed) + len(diff.Missing) + len(diff.Stale), diff.Err()
	})
	return r.finish(err)
}

// run holds the state of one pipeline execution.
type run struct {
	ctx       context.Context
	cfg       Config
	catalog   provider.TypeCatalog
	logger    *slog.Logger
	intercept StageInterceptor
	sink      sink.OutputSink
	renderer  render.Renderer
	start     time.Time

	set       *ir.DescriptorSet
	partition *classify.Partition
	result    *Result
}

// newRun validates everything that can be checked before any work begins.
func newRun(ctx context.Context, cfg Config, catalog provider.TypeCatalog, opts []Option) (*run, error) {
	if !cfg.valid {
		return nil, ir.NewError(ir.CodeConfiguration, "config was not created with NewConfig")
	}
	o := runOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.renderer == nil {
		var err error
		if o.renderer, err = NewRenderer(cfg); err != nil {
			return nil, err
		}
	}
	if o.sink == nil {
		if err := cfg.checkTarget(); err != nil {
			return nil, err
		}
		o.sink = sink.NewFilesystemSink(cfg.TargetDirectory())
	}
	if catalog == nil {
		var err error
		if catalog, err = OpenCatalog(cfg, o.version); err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	return &run{
		ctx:       withRunID(ctx, id),
		cfg:       cfg,
		catalog:   catalog,
		logger:    o.logger.With(slog.String("run", id)),
		intercept: chainInterceptors(o.interceptors),
		sink:      o.sink,
		renderer:  o.renderer,
		start:     time.Now(),
		result:    &Result{RunID: id, Counts: make(map[ir.Category]int)},
	}, nil
}

func (r *run) layout() sink.Layout {
	return sink.Layout{Base: r.cfg.OutputBase(), Extension: r.renderer.FileExtension()}
}

// stage runs fn through the interceptor chain.
func (r *run) stage(s Stage, fn StageFunc) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	var err error
	if r.intercept != nil {
		_, err = r.intercept(r.ctx, s, fn)
	} else {
		_, err = fn(r.ctx)
	}
	return err
}

// build loads, classifies and renders.
func (r *run) build() error {
	err := r.stage(StageLoad, func(ctx context.Context) (int, error) {
		set, err := loader.Load(ctx, r.catalog, loader.Options{
			Packages:         r.cfg.SourcePackages(),
			IgnoreSupertypes: r.cfg.IgnoreSupertypes(),
		})
		if wr, ok := r.catalog.(provider.WarningReporter); ok {
			r.result.Warnings = wr.Warnings()
		}
		if err != nil {
			return 0, err
		}
		r.set = set
		return set.Len(), nil
	})
	if err != nil {
		return err
	}

	err = r.stage(StageClassify, func(ctx context.Context) (int, error) {
		p, err := classify.ClassifyAll(r.set)
		if err != nil {
			return 0, err
		}
		r.partition = p
		for c, n := range p.Counts() {
			r.result.Counts[c] = n
		}
		return p.Set().Len(), nil
	})
	if err != nil {
		return err
	}

	return r.stage(StageRender, func(ctx context.Context) (int, error) {
		files, err := r.renderAll(ctx)
		if err != nil {
			return 0, err
		}
		r.result.Files = files
		return len(files), nil
	})
}

// renderAll renders every descriptor on a pool of cfg.Parallelism workers.
// Files come back in descriptor order and every render error is reported.
func (r *run) renderAll(ctx context.Context) ([]ir.GeneratedFile, error) {
	rctx := render.NewContext(r.cfg.TargetPackage(), r.partition, render.ContextOptions{
		TypeMappings: r.cfg.TypeMappings(),
		Comments:     r.cfg.Comments(),
	})
	descriptors := r.set.All()
	files := make([]ir.GeneratedFile, len(descriptors))
	errs := make([]error, len(descriptors))
	ext := r.renderer.FileExtension()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Parallelism(), 1))
	for i, d := range descriptors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cat, ok := r.partition.Category(d.Name)
			if !ok {
				errs[i] = ir.Errorf(ir.CodeInternal, "%s was not classified", d.Name)
				return nil
			}
			content, err := r.renderer.Render(rctx, d, cat)
			if err != nil {
				errs[i] = err
				return nil
			}
			files[i] = ir.GeneratedFile{
				RelativePath: render.RelativePath(r.cfg.TargetPackage(), cat, d.Name.Name, ext),
				Category:     cat,
				Content:      content,
				Descriptor:   d.Name,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return files, nil
}

// finish logs the outcome and fills in the duration.
func (r *run) finish(err error) (*Result, error) {
	r.result.Duration = time.Since(r.start)
	for _, w := range r.result.Warnings {
		r.logger.WarnContext(r.ctx, w.Message, slog.String("code", w.Code), slog.String("type", w.TypeName))
	}
	if err != nil {
		return r.result, err
	}
	r.logger.InfoContext(r.ctx, "generation completed",
		slog.String("language", r.renderer.Language()),
		slog.Int("traits", r.result.Counts[ir.CategoryTrait]),
		slog.Int("objectTypes", r.result.Counts[ir.CategoryObjectType]),
		slog.Int("verbs", r.result.Counts[ir.CategoryVerb]),
		slog.Int("written", len(r.result.Written)),
		slog.Duration("duration", r.result.Duration),
	)
	return r.result, nil
}

func (r *Result) String() string {
	return fmt.Sprintf("%d traits, %d object types, %d verbs",
		r.Counts[ir.CategoryTrait], r.Counts[ir.CategoryObjectType], r.Counts[ir.CategoryVerb])
}
