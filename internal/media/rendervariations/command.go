// Package rendervariations implements the command that (re)renders the
// variations of every stored image of one or more image fields.
package rendervariations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sync/atomic"

	"artist-media/internal/ctxlog"
	"artist-media/internal/media/imagefield"
	"artist-media/internal/media/registry"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Options struct {
	FieldPaths []string
	// Replace re-renders variations that already exist.
	Replace bool
	// IgnoreMissing skips rows whose original is gone instead of failing.
	IgnoreMissing bool
	// Workers bounds concurrent renders; 0 means runtime.NumCPU().
	Workers int
}

// Summary counts files (rows) and variations handled by a run.
type Summary struct {
	Files    int64 `json:"files"`
	Rendered int64 `json:"rendered"`
	Skipped  int64 `json:"skipped"`
	Missing  int64 `json:"missing"`
}

type counters struct {
	files, rendered, skipped, missing atomic.Int64
}

func (c *counters) summary() Summary {
	return Summary{
		Files:    c.files.Load(),
		Rendered: c.rendered.Load(),
		Skipped:  c.skipped.Load(),
		Missing:  c.missing.Load(),
	}
}

type Command struct {
	DB       *gorm.DB
	Registry *registry.Registry
	Reporter Reporter
}

func New(db *gorm.DB, reg *registry.Registry) *Command {
	return &Command{DB: db, Registry: reg, Reporter: NopReporter{}}
}

// Run parses and resolves every field path up front, then renders field by
// field. The first error stops the run.
func (c *Command) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum counters

	paths, err := ParseFieldPaths(opts.FieldPaths)
	if err != nil {
		return sum.summary(), err
	}

	bindings := make([]*registry.Binding, 0, len(paths))
	for _, p := range paths {
		b, err := c.Registry.Lookup(p.App, p.Model, p.Field)
		if err != nil {
			return sum.summary(), &CommandError{
				Message: fmt.Sprintf("Error resolving field_path '%s': %v.", p, err),
				Err:     err,
			}
		}
		bindings = append(bindings, b)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	for _, b := range bindings {
		if err := c.renderField(ctx, b, opts, workers, &sum); err != nil {
			return sum.summary(), err
		}
	}
	return sum.summary(), nil
}

func (c *Command) reporter() Reporter {
	if c.Reporter == nil {
		return NopReporter{}
	}
	return c.Reporter
}

func (c *Command) renderField(ctx context.Context, b *registry.Binding, opts Options, workers int, sum *counters) error {
	logger := ctxlog.FromContext(ctx).With("field", b.Path())

	total, err := b.Count(ctx, c.DB)
	if err != nil {
		return err
	}
	logger.Info("Rendering variations.", "files", total, "workers", workers, "replace", opts.Replace)

	rep := c.reporter()
	rep.Start(b.Path(), total)
	defer rep.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	gctx = ctxlog.WithLogger(gctx, logger)

	iterErr := b.Each(gctx, c.DB, func(name string) error {
		if err := gctx.Err(); err != nil {
			return err
		}
		g.Go(func() error {
			return c.renderFile(gctx, b, name, opts, sum)
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	if iterErr != nil {
		return iterErr
	}

	logger.Info("Rendered variations.", "summary", sum.summary())
	return nil
}

func (c *Command) renderFile(ctx context.Context, b *registry.Binding, name string, opts Options, sum *counters) error {
	logger := ctxlog.FromContext(ctx)

	results, err := b.Field.RenderVariations(ctx, name, opts.Replace)
	if err != nil {
		if errors.Is(err, imagefield.ErrUnsupportedFormat) {
			return &CommandError{
				Message: fmt.Sprintf("Source file '%s' has no supported image extension, terminating.", name),
				Err:     err,
			}
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("render variations of %s: %w", name, err)
		}
		if !opts.IgnoreMissing {
			return &CommandError{
				Message: fmt.Sprintf("Source file '%s' was not found, terminating. Use -i/--ignore-missing to skip this error.", name),
				Err:     err,
			}
		}
		logger.Warn("Source file missing, skipped.", "file", name)
		sum.missing.Add(1)
		c.reporter().Increment()
		return nil
	}

	sum.files.Add(1)
	for _, r := range results {
		if r.Rendered {
			sum.rendered.Add(1)
		} else {
			sum.skipped.Add(1)
		}
	}
	c.reporter().Increment()
	return nil
}
