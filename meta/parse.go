package meta

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/simspace/object"
)

type parseConfig struct {
	restrict map[string]bool
}

// ParseOption configures textual composite parsing.
type ParseOption func(*parseConfig)

// RestrictTo limits parsing to the named descriptors. Descriptors present
// in the record but not named are still read — the stream must advance
// past them — and then discarded, leaving their slots empty.
func RestrictTo(names ...string) ParseOption {
	return func(c *parseConfig) {
		c.restrict = make(map[string]bool, len(names))
		for _, n := range names {
			c.restrict[n] = true
		}
	}
}

// Parse reads one textual composite record of the given kind from r.
func Parse(kind string, r *object.TextReader, opts ...ParseOption) (*Object, error) {
	var cfg parseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	header, err := r.ReadDataLine()
	if err != nil {
		return nil, err
	}
	meta := r.TakeMeta()
	key, err := object.KeyFromMeta(meta)
	if err != nil {
		return nil, object.NewParseError(r.Line(), header, key.Locator, err)
	}

	parts := strings.Split(header, ";")
	if len(parts)%2 != 1 {
		return nil, object.NewParseError(r.Line(), header, key.Locator,
			fmt.Errorf("header needs locator plus name/kind pairs"))
	}
	if key.Locator == "" {
		key.Locator = parts[0]
	}
	slots := make([]Slot, 0, (len(parts)-1)/2)
	for i := 1; i < len(parts); i += 2 {
		slots = append(slots, Slot{Name: parts[i], Kind: parts[i+1]})
	}
	schema, err := NewSchema(slots...)
	if err != nil {
		return nil, object.NewParseError(r.Line(), header, key.Locator, err)
	}

	var weights Weights
	if kind == KindWeighted {
		if weights, err = parseWeightsMeta(meta[metaWeights], schema.Len()); err != nil {
			return nil, object.NewParseError(r.Line(), header, key.Locator, err)
		}
	}

	subs := make([]object.Object, schema.Len())
	for i, slot := range slots {
		line, err := r.ReadLine()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, object.NewParseError(r.Line(), header, key.Locator,
				fmt.Errorf("truncated composite, descriptor %q missing: %w", slot.Name, err))
		}
		if line == "" {
			continue // empty slot
		}
		r.UnreadLine(line)
		sub, err := object.Parse(slot.Kind, r)
		if err != nil {
			return nil, err
		}
		// A present-but-restricted descriptor is read and discarded; the
		// stream position has already advanced past its record.
		if cfg.restrict != nil && !cfg.restrict[slot.Name] {
			continue
		}
		subs[i] = sub
	}

	var o *Object
	switch kind {
	case KindWeighted:
		o, err = NewWeightedSum(schema, subs, weights)
	case KindTotalMin:
		o, err = NewTotalMin(schema, subs)
	default:
		err = &object.ErrUnknownKind{Kind: kind}
	}
	if err != nil {
		return nil, err
	}
	o.SetKey(key)
	return o, nil
}

// Decode reads one binary composite record of the given kind from r.
func Decode(kind string, r *object.BinReader) (*Object, error) {
	base, err := object.ReadBase(r)
	if err != nil {
		return nil, err
	}
	var weights Weights
	if kind == KindWeighted {
		n, err := r.Count(4, "weight count")
		if err != nil {
			return nil, err
		}
		weights = make(Weights, n)
		for i := range weights {
			if weights[i], err = r.Float32("weight"); err != nil {
				return nil, err
			}
		}
	}
	// Each slot encodes at least a one-byte name prefix, a one-byte kind
	// prefix and the presence byte.
	n, err := r.Count(3, "slot count")
	if err != nil {
		return nil, err
	}
	slots := make([]Slot, n)
	subs := make([]object.Object, n)
	for i := range slots {
		if slots[i].Name, err = r.String("slot name"); err != nil {
			return nil, err
		}
		if slots[i].Kind, err = r.String("slot kind"); err != nil {
			return nil, err
		}
		present, err := r.Byte("slot presence")
		if err != nil {
			return nil, err
		}
		if present == 0 {
			continue
		}
		if subs[i], err = object.Decode(slots[i].Kind, r); err != nil {
			return nil, err
		}
	}
	schema, err := NewSchema(slots...)
	if err != nil {
		return nil, err
	}

	var o *Object
	switch kind {
	case KindWeighted:
		o, err = NewWeightedSum(schema, subs, weights)
	case KindTotalMin:
		o, err = NewTotalMin(schema, subs)
	default:
		err = &object.ErrUnknownKind{Kind: kind}
	}
	if err != nil {
		return nil, err
	}
	o.Base = base
	return o, nil
}

func registerMetaKind(kind string) {
	object.Register(object.Factory{
		Kind: kind,
		Parse: func(r *object.TextReader) (object.Object, error) {
			return Parse(kind, r)
		},
		Decode: func(r *object.BinReader) (object.Object, error) {
			return Decode(kind, r)
		},
	})
}

func init() {
	registerMetaKind(KindWeighted)
	registerMetaKind(KindTotalMin)
}
