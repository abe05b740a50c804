package object

import (
	"sort"
	"sync"
)

// ParseFunc parses one textual record from r.
type ParseFunc func(r *TextReader) (Object, error)

// DecodeFunc decodes one binary record from r.
type DecodeFunc func(r *BinReader) (Object, error)

// Factory bundles the constructors of one registered kind.
type Factory struct {
	Kind   string
	Parse  ParseFunc
	Decode DecodeFunc
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a kind available to text-header parsing, binary decoding
// and datafile streams. It panics on a duplicate kind, which indicates a
// programming error during package initialization.
func Register(f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[f.Kind]; dup {
		panic("object: Register called twice for kind " + f.Kind)
	}
	registry[f.Kind] = f
}

// Lookup returns the factory registered for kind.
func Lookup(kind string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// Kinds returns all registered kind names, sorted.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Parse parses one textual record of the given kind from r.
func Parse(kind string, r *TextReader) (Object, error) {
	f, ok := Lookup(kind)
	if !ok {
		return nil, &ErrUnknownKind{Kind: kind}
	}
	return f.Parse(r)
}

// Decode decodes one binary record of the given kind from r.
func Decode(kind string, r *BinReader) (Object, error) {
	f, ok := Lookup(kind)
	if !ok {
		return nil, &ErrUnknownKind{Kind: kind}
	}
	return f.Decode(r)
}

// Marshal encodes obj, preceded by its kind name, into a self-describing
// binary record that Unmarshal can decode without out-of-band type
// information.
func Marshal(obj Object) ([]byte, error) {
	buf := make([]byte, 0, StringSize(obj.Kind())+obj.BinarySize())
	buf = AppendString(buf, obj.Kind())
	return obj.AppendBinary(buf)
}

// Unmarshal decodes one self-describing record produced by Marshal.
func Unmarshal(data []byte) (Object, error) {
	r := NewBinReader(data)
	kind, err := r.String("kind")
	if err != nil {
		return nil, err
	}
	return Decode(kind, r)
}
