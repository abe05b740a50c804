// Package face adapts an external face-recognition library as a distance
// oracle. The native layer is opaque: it consumes two raw descriptor byte
// arrays and returns a similarity in [0,1]. Everything here exists to
// make that boundary explicit, lazily initialized and substitutable in
// tests.
package face

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/simspace/object"
)

// Kind is the face descriptor's registry name.
const Kind = "face"

// ErrUnavailable is returned by distance computation when the native
// similarity library could not be initialized. It surfaces at the first
// distance attempt, never as a construction failure or a crash.
var ErrUnavailable = errors.New("face similarity library unavailable")

// Oracle is the native similarity boundary. Implementations return a
// similarity in [0,1], 1 meaning identical faces.
type Oracle interface {
	Similarity(a, b []byte) (float32, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(a, b []byte) (float32, error)

// Similarity calls f.
func (f OracleFunc) Similarity(a, b []byte) (float32, error) { return f(a, b) }

// Provider hands out the process's oracle, initializing it lazily on
// first use and memoizing the outcome. A failed initialization is sticky:
// every subsequent use reports ErrUnavailable with the original cause.
type Provider struct {
	init func() (Oracle, error)

	once   sync.Once
	oracle Oracle
	err    error
}

// NewProvider wraps the given initializer. init runs at most once, on the
// first Oracle or Available call.
func NewProvider(init func() (Oracle, error)) *Provider {
	return &Provider{init: init}
}

// StaticProvider returns a provider handing out a fixed oracle, chiefly
// for tests.
func StaticProvider(o Oracle) *Provider {
	return NewProvider(func() (Oracle, error) { return o, nil })
}

// Oracle returns the initialized oracle or ErrUnavailable.
func (p *Provider) Oracle() (Oracle, error) {
	p.once.Do(func() {
		if p.init == nil {
			p.err = fmt.Errorf("%w: no initializer configured", ErrUnavailable)
			return
		}
		o, err := p.init()
		if err != nil {
			p.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
			return
		}
		p.oracle = o
	})
	return p.oracle, p.err
}

// Available reports the loaded/not-loaded status, initializing on demand.
// Call it at process start to log the status up front.
func (p *Provider) Available() bool {
	_, err := p.Oracle()
	return err == nil
}

var (
	defaultMu       sync.RWMutex
	defaultProvider *Provider
)

// SetDefaultProvider installs the provider used by descriptors created
// through the registry (text parsing, binary decoding). Descriptors
// constructed with NewDescriptor carry their provider explicitly and are
// unaffected.
func SetDefaultProvider(p *Provider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultProvider = p
}

func currentDefault() *Provider {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultProvider
}

// Descriptor is a face descriptor object. Its distance is
// 1 - similarity, delegated to the provider's oracle.
type Descriptor struct {
	object.Base
	provider *Provider
	raw      []byte
}

// NewDescriptor wraps raw descriptor bytes with an explicit provider.
func NewDescriptor(p *Provider, raw []byte) *Descriptor {
	return &Descriptor{provider: p, raw: raw}
}

// Kind returns "face".
func (d *Descriptor) Kind() string { return Kind }

// Raw returns the opaque descriptor bytes. Callers must not modify them.
func (d *Descriptor) Raw() []byte { return d.raw }

// MaxDistance returns 1, the bound of 1 - similarity.
func (d *Descriptor) MaxDistance() float32 { return 1 }

// Distance computes 1 - similarity via the oracle. Returns a wrapped
// ErrUnavailable when no oracle could be initialized.
func (d *Descriptor) Distance(other object.Object, _ float32) (float32, error) {
	o, ok := other.(*Descriptor)
	if !ok {
		return 0, &object.ErrTypeMismatch{Want: Kind, Got: other.Kind()}
	}
	p := d.provider
	if p == nil {
		p = currentDefault()
	}
	if p == nil {
		return 0, fmt.Errorf("%w: no provider installed", ErrUnavailable)
	}
	oracle, err := p.Oracle()
	if err != nil {
		return 0, err
	}
	sim, err := oracle.Similarity(d.raw, o.raw)
	if err != nil {
		return 0, fmt.Errorf("face similarity failed: %w", err)
	}
	// Clamp: the native layer promises [0,1] but is outside our control.
	if sim < 0 {
		sim = 0
	} else if sim > 1 {
		sim = 1
	}
	return 1 - sim, nil
}

// WriteText writes the key metadata lines and one base64 data line.
func (d *Descriptor) WriteText(w io.Writer) error {
	if err := object.WriteKeyMeta(w, d.Key()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(d.raw)); err != nil {
		return err
	}
	return nil
}

// BinarySize returns the exact encoded length.
func (d *Descriptor) BinarySize() int {
	return d.Base.BinarySize() + object.UvarintSize(uint64(len(d.raw))) + len(d.raw)
}

// AppendBinary appends the base prefix and the length-prefixed raw bytes.
func (d *Descriptor) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := d.Base.AppendBinary(buf)
	if err != nil {
		return nil, err
	}
	buf = object.AppendUvarint(buf, uint64(len(d.raw)))
	return append(buf, d.raw...), nil
}

func parse(r *object.TextReader) (object.Object, error) {
	line, err := r.ReadDataLine()
	if err != nil {
		return nil, err
	}
	key, err := object.KeyFromMeta(r.TakeMeta())
	if err != nil {
		return nil, object.NewParseError(r.Line(), line, key.Locator, err)
	}
	raw, err := base64.StdEncoding.DecodeString(line)
	if err != nil {
		return nil, object.NewParseError(r.Line(), line, key.Locator, err)
	}
	d := &Descriptor{raw: raw}
	d.SetKey(key)
	return d, nil
}

func decode(r *object.BinReader) (object.Object, error) {
	base, err := object.ReadBase(r)
	if err != nil {
		return nil, err
	}
	raw, err := r.Bytes("face descriptor")
	if err != nil {
		return nil, err
	}
	d := &Descriptor{Base: base, raw: append([]byte(nil), raw...)}
	return d, nil
}

func init() {
	object.Register(object.Factory{Kind: Kind, Parse: parse, Decode: decode})
}
