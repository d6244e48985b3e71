package build

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/recera/ruitl/pkg/template"
)

// Previewer parses files and indexes their components for direct
// rendering. Parse errors of all files are joined.
func (b *Builder) Previewer(ctx context.Context, files []string) (*template.Previewer, error) {
	units := make([]*unit, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if b.opts.Parallel > 0 {
		g.SetLimit(b.opts.Parallel)
	}
	for i, src := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			units[i], errs[i] = b.load(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	parsed := make([]*template.File, len(units))
	for i, u := range units {
		parsed[i] = u.file
	}
	return template.NewPreviewer(parsed...)
}

// LoadPreviewer discovers the templates under TemplateDir and indexes them
func (b *Builder) LoadPreviewer(ctx context.Context) (*template.Previewer, error) {
	files, err := Discover(b.opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoTemplates
	}
	return b.Previewer(ctx, files)
}
