package simspace

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/simspace/datafile"
	"github.com/hupe1980/simspace/object"
)

// Loader reads and writes whole datafiles of objects. It is safe for
// concurrent use.
type Loader struct {
	opts options
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	o := options{
		logger:      NoopLogger(),
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader{opts: o}
}

// LoadFile reads every object record of one datafile.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]object.Object, error) {
	var readerOpts []datafile.ReaderOption
	if l.opts.kind != "" {
		readerOpts = append(readerOpts, datafile.WithKind(l.opts.kind))
	}
	r, err := datafile.Open(path, readerOpts...)
	if err != nil {
		l.opts.logger.LogLoad(ctx, path, 0, err)
		return nil, err
	}
	defer r.Close()

	objs, err := r.ReadAll()
	l.opts.logger.LogLoad(ctx, path, len(objs), err)
	return objs, err
}

// LoadFiles reads several datafiles concurrently, bounded by the
// configured concurrency. The result maps each path to its objects; the
// first failure cancels the remaining loads.
func (l *Loader) LoadFiles(ctx context.Context, paths ...string) (map[string][]object.Object, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(l.opts.concurrency, 1))

	var mu sync.Mutex
	out := make(map[string][]object.Object, len(paths))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			objs, err := l.LoadFile(ctx, path)
			if err != nil {
				return err
			}
			mu.Lock()
			out[path] = objs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// StoreFile writes the objects to one datafile using the configured
// compression.
func (l *Loader) StoreFile(ctx context.Context, path string, objs []object.Object) error {
	w, err := datafile.Create(path, datafile.WithCompression(l.opts.compression))
	if err != nil {
		l.opts.logger.LogStore(ctx, path, 0, err)
		return err
	}
	for i, obj := range objs {
		if err := w.Write(obj); err != nil {
			_ = w.Close()
			l.opts.logger.LogStore(ctx, path, i, err)
			return err
		}
	}
	err = w.Close()
	l.opts.logger.LogStore(ctx, path, len(objs), err)
	return err
}
