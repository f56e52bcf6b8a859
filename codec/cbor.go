package codec

import (
	"github.com/fxamacker/cbor/v2"
)

// CBOR stores values as CBOR (RFC 8949). Its output is not JSON, so a store
// using it writes the binary VSTR record with the CBOR bytes as payload.
// Construct with NewCBOR or MustCBOR; the zero value has no modes set.
type CBOR[V any] struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var _ Codec[struct{}] = CBOR[struct{}]{}

// NewCBOR builds the encode and decode modes once. With deterministic set,
// map keys are sorted (Core Deterministic Encoding), so rewriting an unchanged
// value yields a byte-identical record. Times are kept as RFC 3339 strings with
// nanoseconds. Payloads with duplicate map keys are refused on decode and the
// store reports them as undecodable records.
func NewCBOR[V any](deterministic bool) (CBOR[V], error) {
	eo := cbor.PreferredUnsortedEncOptions()
	if deterministic {
		eo = cbor.CoreDetEncOptions()
	}
	eo.Time = cbor.TimeRFC3339Nano

	em, err := eo.EncMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	dm, err := cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}.DecMode()
	if err != nil {
		return CBOR[V]{}, err
	}
	return CBOR[V]{enc: em, dec: dm}, nil
}

// MustCBOR panics where NewCBOR would fail. The options are fixed, so it only
// fails on a broken cbor release.
func MustCBOR[V any](deterministic bool) CBOR[V] {
	c, err := NewCBOR[V](deterministic)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CBOR[V]) Encode(v V) ([]byte, error) { return c.enc.Marshal(v) }

func (c CBOR[V]) Decode(b []byte) (V, error) {
	var v V
	if err := c.dec.Unmarshal(b, &v); err != nil {
		return v, err
	}
	return v, nil
}
