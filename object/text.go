package object

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Metadata keys recognized in comment lines preceding a data record.
const (
	MetaObjectKey  = "objectKey"  // locator URI
	MetaDimensions = "dimensions" // "<width>x<height>" of the source image
	MetaClass      = "class"      // object kind, used by datafile streams
)

// TextReader reads line-oriented object records. Lines starting with '#'
// are comment-metadata lines of the form "#key value"; they are collected
// and apply to the next data record.
type TextReader struct {
	br      *bufio.Reader
	line    int
	meta    map[string]string
	pending *string
}

// NewTextReader wraps r for record reading.
func NewTextReader(r io.Reader) *TextReader {
	return &TextReader{br: bufio.NewReader(r)}
}

// Line returns the number of the last line read (1-based).
func (r *TextReader) Line() int { return r.line }

// ReadLine returns the next raw line without comment handling. The
// trailing newline is stripped. Returns io.EOF at a clean end of input.
func (r *TextReader) ReadLine() (string, error) {
	if r.pending != nil {
		line := *r.pending
		r.pending = nil
		return line, nil
	}
	line, err := r.br.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil // final line without newline
	}
	if err != nil {
		return "", err
	}
	r.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadDataLine returns the next non-comment line, collecting any leading
// comment-metadata lines. Returns io.EOF at a clean end of input.
func (r *TextReader) ReadDataLine() (string, error) {
	for {
		line, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(line, "#") {
			r.collectMeta(line)
			continue
		}
		return line, nil
	}
}

func (r *TextReader) collectMeta(line string) {
	body := strings.TrimPrefix(line, "#")
	key, value, _ := strings.Cut(body, " ")
	if key == "" {
		return
	}
	if r.meta == nil {
		r.meta = make(map[string]string)
	}
	r.meta[key] = strings.TrimSpace(value)
}

// UnreadLine pushes line back so the next ReadLine returns it. Only one
// line of pushback is supported.
func (r *TextReader) UnreadLine(line string) {
	r.pending = &line
}

// TakeMeta returns the metadata collected since the previous call and
// resets the pending set. May return nil.
func (r *TextReader) TakeMeta() map[string]string {
	m := r.meta
	r.meta = nil
	return m
}

// PeekMeta reads ahead, collecting comment lines, until the next data line
// is buffered or the input ends. The peeked data line will be returned by
// the next ReadDataLine call. It lets callers inspect metadata (e.g. the
// record's class) before choosing a parser.
func (r *TextReader) PeekMeta() (map[string]string, error) {
	for {
		if r.pending != nil {
			if strings.HasPrefix(*r.pending, "#") {
				r.collectMeta(*r.pending)
				r.pending = nil
				continue
			}
			return r.meta, nil
		}
		b, err := r.br.Peek(1)
		if err != nil {
			return r.meta, err
		}
		if b[0] != '#' {
			return r.meta, nil
		}
		line, err := r.ReadLine()
		if err != nil {
			return r.meta, err
		}
		r.collectMeta(line)
	}
}

// SplitFields splits one data line into value fields. The separator is
// auto-detected per line: a line containing a comma is comma-separated
// (surrounding spaces trimmed), anything else is whitespace-separated.
func SplitFields(line string) []string {
	if strings.ContainsRune(line, ',') {
		parts := strings.Split(line, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return parts
	}
	return strings.Fields(line)
}

// KeyFromMeta builds a Key from collected record metadata.
func KeyFromMeta(meta map[string]string) (Key, error) {
	var k Key
	if meta == nil {
		return k, nil
	}
	k.Locator = meta[MetaObjectKey]
	if dims, ok := meta[MetaDimensions]; ok {
		ws, hs, found := strings.Cut(dims, "x")
		if !found {
			return k, fmt.Errorf("invalid dimensions %q", dims)
		}
		w, err := strconv.ParseUint(ws, 10, 32)
		if err != nil {
			return k, fmt.Errorf("invalid dimensions %q: %w", dims, err)
		}
		h, err := strconv.ParseUint(hs, 10, 32)
		if err != nil {
			return k, fmt.Errorf("invalid dimensions %q: %w", dims, err)
		}
		k.Width, k.Height, k.HasDims = uint32(w), uint32(h), true
	}
	return k, nil
}

// WriteKeyMeta writes the comment-metadata lines encoding k, if any.
func WriteKeyMeta(w io.Writer, k Key) error {
	if k.Locator != "" {
		if _, err := fmt.Fprintf(w, "#%s %s\n", MetaObjectKey, k.Locator); err != nil {
			return err
		}
	}
	if k.HasDims {
		if _, err := fmt.Fprintf(w, "#%s %dx%d\n", MetaDimensions, k.Width, k.Height); err != nil {
			return err
		}
	}
	return nil
}

// FormatFloat32 renders v in the shortest form that round-trips.
func FormatFloat32(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// FormatFloat64 renders v in the shortest form that round-trips.
func FormatFloat64(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
