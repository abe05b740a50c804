// Package datafile reads and writes streams of textual object records.
// Files may be stored plain or compressed; the compression is detected
// from the leading magic bytes on read, so callers never configure it.
package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/simspace/object"
)

// Compression selects the on-disk encoding of a written datafile.
type Compression int

const (
	// None writes plain text.
	None Compression = iota
	// Zstd writes a zstandard stream.
	Zstd
	// Gzip writes a gzip stream.
	Gzip
	// LZ4 writes an lz4 frame stream.
	LZ4
)

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case Gzip:
		return "gzip"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// ErrMissingKind is returned by Next when a record carries no class
// metadata and the reader has no default kind.
var ErrMissingKind = errors.New("record has no class metadata and no default kind is set")

type readerOptions struct {
	kind string
}

// ReaderOption configures a Reader.
type ReaderOption func(*readerOptions)

// WithKind sets the default object kind of records that carry no "#class"
// metadata line.
func WithKind(kind string) ReaderOption {
	return func(o *readerOptions) { o.kind = kind }
}

// Reader iterates the object records of one datafile.
type Reader struct {
	tr      *object.TextReader
	kind    string
	closers []io.Closer
}

// Open opens the datafile at path, transparently decompressing it.
func Open(path string, opts ...ReaderOption) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closers = append(r.closers, f)
	return r, nil
}

// NewReader wraps r, sniffing the compression from its first bytes.
func NewReader(r io.Reader, opts ...ReaderOption) (*Reader, error) {
	var o readerOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	plain, closer, err := decompress(br)
	if err != nil {
		return nil, err
	}
	dr := &Reader{tr: object.NewTextReader(plain), kind: o.kind}
	if closer != nil {
		dr.closers = append(dr.closers, closer)
	}
	return dr, nil
}

func decompress(br *bufio.Reader) (io.Reader, io.Closer, error) {
	magic, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, nil, err
	}
	switch {
	case len(magic) >= 2 && magic[0] == gzipMagic[0] && magic[1] == gzipMagic[1]:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip stream: %w", err)
		}
		return zr, zr, nil
	case len(magic) >= 4 && string(magic) == string(zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd stream: %w", err)
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	case len(magic) >= 4 && string(magic) == string(lz4Magic):
		return lz4.NewReader(br), nil, nil
	default:
		return br, nil, nil
	}
}

// Next returns the next object record. io.EOF signals a clean end of the
// stream, never corruption; malformed records surface as *ParseError.
func (r *Reader) Next() (object.Object, error) {
	meta, err := r.tr.PeekMeta()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	kind := r.kind
	if c, ok := meta[object.MetaClass]; ok {
		kind = c
	}
	if kind == "" {
		return nil, ErrMissingKind
	}
	return object.Parse(kind, r.tr)
}

// ReadAll drains the stream.
func (r *Reader) ReadAll() ([]object.Object, error) {
	var out []object.Object
	for {
		obj, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
}

// Close releases the underlying file and decompressor, if any.
func (r *Reader) Close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type writerOptions struct {
	compression Compression
}

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

// WithCompression selects the on-disk encoding.
func WithCompression(c Compression) WriterOption {
	return func(o *writerOptions) { o.compression = c }
}

// Writer appends object records to one datafile. Every record is written
// with a "#class" metadata line so readers need no out-of-band kind.
type Writer struct {
	w       *bufio.Writer
	closers []io.Closer
}

// Create creates (or truncates) the datafile at path.
func Create(path string, opts ...WriterOption) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closers = append(w.closers, f)
	return w, nil
}

// NewWriter wraps w with the configured compression.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	var o writerOptions
	for _, opt := range opts {
		opt(&o)
	}

	dw := &Writer{}
	switch o.compression {
	case None:
		dw.w = bufio.NewWriter(w)
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("open zstd writer: %w", err)
		}
		dw.w = bufio.NewWriter(zw)
		dw.closers = append(dw.closers, zw)
	case Gzip:
		zw := gzip.NewWriter(w)
		dw.w = bufio.NewWriter(zw)
		dw.closers = append(dw.closers, zw)
	case LZ4:
		zw := lz4.NewWriter(w)
		dw.w = bufio.NewWriter(zw)
		dw.closers = append(dw.closers, zw)
	default:
		return nil, fmt.Errorf("unsupported compression %v", o.compression)
	}
	return dw, nil
}

// Write appends one object record.
func (w *Writer) Write(obj object.Object) error {
	if _, err := fmt.Fprintf(w.w, "#%s %s\n", object.MetaClass, obj.Kind()); err != nil {
		return err
	}
	return obj.WriteText(w.w)
}

// Close flushes buffered data and closes the compressor and file.
func (w *Writer) Close() error {
	firstErr := w.w.Flush()
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
