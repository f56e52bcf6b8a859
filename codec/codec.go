// Package codec converts store values to and from the bytes kept in a record.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// jsonText is implemented by codecs whose output is always a single valid JSON
// text, which lets the store embed it unchanged in a JSON record.
type jsonText interface {
	jsonText()
}

type wrapper interface {
	inner() any
}

// IsJSON reports whether c always emits valid JSON. Wrapping codecs such as
// Limit are looked through.
func IsJSON(c any) bool {
	for c != nil {
		if _, ok := c.(jsonText); ok {
			return true
		}
		w, ok := c.(wrapper)
		if !ok {
			return false
		}
		c = w.inner()
	}
	return false
}
