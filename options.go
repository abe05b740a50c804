package simspace

import "github.com/hupe1980/simspace/datafile"

type options struct {
	logger      *Logger
	kind        string
	concurrency int
	compression datafile.Compression
}

// Option configures a Loader.
type Option func(*options)

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithKind sets the default object kind of records that carry no "#class"
// metadata line.
func WithKind(kind string) Option {
	return func(o *options) {
		o.kind = kind
	}
}

// WithConcurrency bounds the number of datafiles loaded in parallel.
// Values below 1 mean one file at a time.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithCompression selects the on-disk encoding of stored datafiles.
func WithCompression(c datafile.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}
