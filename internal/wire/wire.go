// Package wire holds the record envelope persisted for every entry and its two
// on-medium encodings.
package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
)

const (
	version     byte = 1
	flagHasData byte = 1 << 0

	binaryHeader = 4 + 1 + 1 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("vstore: corrupt record")
	magic4     = [...]byte{'V', 'S', 'T', 'R'}
	jsonNull   = []byte("null")
)

// Format selects how a Record is laid out on the medium.
type Format uint8

const (
	// FormatAuto lets the store pick: JSON for JSON codecs, binary otherwise.
	FormatAuto Format = iota
	// FormatJSON writes {"value":...,"ttl":...,"expireAt":...}. The payload must
	// be a JSON text.
	FormatJSON
	// FormatBinary writes a length-prefixed frame; any payload bytes are allowed.
	FormatBinary
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatBinary:
		return "binary"
	default:
		return "auto"
	}
}

// Record is the envelope around one encoded value.
// ExpireAt == 0 || ExpireAt == <creation or refresh time> + TTL.
type Record struct {
	Payload  []byte // codec output; nil => no value stored
	TTL      int64  // milliseconds, informational
	ExpireAt int64  // epoch milliseconds; 0 => never expires
}

// New builds a record created at now. ttl <= 0 never expires.
func New(payload []byte, ttl, now int64) Record {
	r := Record{Payload: payload, TTL: ttl}
	if ttl > 0 {
		r.ExpireAt = now + ttl
	}
	return r
}

// Expired reports whether r is past its deadline at now. A record is still live
// during the millisecond equal to ExpireAt.
func (r Record) Expired(now int64) bool {
	return r.ExpireAt > 0 && r.ExpireAt < now
}

// Refreshed returns r with a new deadline counted from now. Payload is kept.
func (r Record) Refreshed(ttl, now int64) Record {
	r.TTL = ttl
	r.ExpireAt = 0
	if ttl > 0 {
		r.ExpireAt = now + ttl
	}
	return r
}

// HasValue reports whether a value was stored.
func (r Record) HasValue() bool { return r.Payload != nil }

// Encode lays r out in format f. FormatAuto is treated as FormatBinary.
func Encode(r Record, f Format) ([]byte, error) {
	if f == FormatJSON {
		return EncodeJSON(r)
	}
	return EncodeBinary(r), nil
}

type jsonRecord struct {
	Value    json.RawMessage `json:"value,omitempty"`
	TTL      *int64          `json:"ttl"`
	ExpireAt *int64          `json:"expireAt"`
}

// EncodeJSON embeds the payload as the "value" member. It fails if the payload
// is not valid JSON.
func EncodeJSON(r Record) ([]byte, error) {
	jr := jsonRecord{TTL: &r.TTL, ExpireAt: &r.ExpireAt}
	if r.Payload != nil {
		if !json.Valid(r.Payload) {
			return nil, errors.New("vstore: payload is not valid JSON")
		}
		jr.Value = r.Payload
	}
	return json.Marshal(jr)
}

// EncodeBinary: magic(4) | ver(1) | flags(1) | ttl(i64 be) | expireAt(i64 be) | vlen(u32 be) | payload(vlen)
func EncodeBinary(r Record) []byte {
	var buf bytes.Buffer
	buf.Grow(binaryHeader + len(r.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	var flags byte
	if r.Payload != nil {
		flags |= flagHasData
	}
	buf.WriteByte(flags)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(r.TTL))
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(r.ExpireAt))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Payload)))
	buf.Write(u4[:])

	buf.Write(r.Payload)
	return buf.Bytes()
}

// Detect reports the layout of an encoded record.
func Detect(b []byte) Format {
	if hasMagic(b) {
		return FormatBinary
	}
	return FormatJSON
}

// Decode recognizes either encoding. Anything else is ErrCorrupt.
func Decode(b []byte) (Record, error) {
	if hasMagic(b) {
		return decodeBinary(b)
	}
	return decodeJSON(b)
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

func decodeBinary(b []byte) (Record, error) {
	if len(b) < binaryHeader || b[4] != version {
		return Record{}, ErrCorrupt
	}
	flags := b[5]
	off := 6

	ttl := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	exp := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// strict framing: payload must fill the rest exactly
	if vlen != len(b)-off {
		return Record{}, ErrCorrupt
	}

	r := Record{TTL: ttl, ExpireAt: exp}
	if flags&flagHasData != 0 {
		r.Payload = append([]byte{}, b[off:]...)
	} else if vlen != 0 {
		return Record{}, ErrCorrupt
	}
	return r, nil
}

func decodeJSON(b []byte) (Record, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Record{}, ErrCorrupt
	}
	var jr jsonRecord
	if err := json.Unmarshal(trimmed, &jr); err != nil {
		return Record{}, ErrCorrupt
	}
	if jr.ExpireAt == nil {
		return Record{}, ErrCorrupt
	}
	r := Record{ExpireAt: *jr.ExpireAt}
	if jr.TTL != nil {
		r.TTL = *jr.TTL
	}
	if len(jr.Value) > 0 && !bytes.Equal(jr.Value, jsonNull) {
		r.Payload = []byte(jr.Value)
	}
	return r, nil
}
