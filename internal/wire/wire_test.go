package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
	"testing"
)

func mustDecode(t *testing.T, b []byte) Record {
	t.Helper()
	r, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v (%q)", err, b)
	}
	return r
}

func TestNewComputesExpireAt(t *testing.T) {
	r := New([]byte(`1`), 100, 1_000)
	if r.ExpireAt != 1_100 || r.TTL != 100 {
		t.Fatalf("got ttl=%d expireAt=%d", r.TTL, r.ExpireAt)
	}
	r = New([]byte(`1`), 0, 1_000)
	if r.ExpireAt != 0 {
		t.Fatalf("ttl=0 must never expire, got expireAt=%d", r.ExpireAt)
	}
	r = New([]byte(`1`), -1, 1_000)
	if r.ExpireAt != 0 {
		t.Fatalf("negative ttl must never expire, got expireAt=%d", r.ExpireAt)
	}
}

func TestExpiredIsStrict(t *testing.T) {
	r := New(nil, 100, 1_000) // expireAt 1100
	if r.Expired(1_099) {
		t.Fatalf("expired before deadline")
	}
	if r.Expired(1_100) {
		t.Fatalf("expired at the exact deadline millisecond")
	}
	if !r.Expired(1_101) {
		t.Fatalf("not expired after deadline")
	}
	if (Record{}).Expired(math.MaxInt64) {
		t.Fatalf("expireAt=0 must never expire")
	}
}

func TestRefreshedKeepsPayload(t *testing.T) {
	r := New([]byte(`"v"`), 100, 1_000)
	r2 := r.Refreshed(5_000, 2_000)
	if !bytes.Equal(r2.Payload, r.Payload) {
		t.Fatalf("payload changed: %q", r2.Payload)
	}
	if r2.TTL != 5_000 || r2.ExpireAt != 7_000 {
		t.Fatalf("got ttl=%d expireAt=%d", r2.TTL, r2.ExpireAt)
	}
	if r.ExpireAt != 1_100 {
		t.Fatalf("Refreshed mutated receiver")
	}
	if r3 := r.Refreshed(0, 2_000); r3.ExpireAt != 0 {
		t.Fatalf("refresh with ttl=0 should clear deadline, got %d", r3.ExpireAt)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	cases := []Record{
		New([]byte(`{"id":"1","tags":["a","b"]}`), 100, 1_000),
		New([]byte(`"bar"`), 0, 1_000),
		New([]byte(`0`), 5, 1),
		New(nil, 100, 1_000),
	}
	for _, in := range cases {
		enc, err := EncodeJSON(in)
		if err != nil {
			t.Fatalf("EncodeJSON: %v", err)
		}
		out := mustDecode(t, enc)
		if !bytes.Equal(out.Payload, in.Payload) || out.TTL != in.TTL || out.ExpireAt != in.ExpireAt {
			t.Fatalf("round trip mismatch: in=%+v out=%+v (%s)", in, out, enc)
		}
		if in.Payload == nil && out.HasValue() {
			t.Fatalf("absent value decoded as present")
		}
	}
}

func TestJSONLayout(t *testing.T) {
	enc, err := EncodeJSON(Record{Payload: []byte(`"bar"`), TTL: 10, ExpireAt: 20})
	if err != nil {
		t.Fatal(err)
	}
	if string(enc) != `{"value":"bar","ttl":10,"expireAt":20}` {
		t.Fatalf("unexpected layout: %s", enc)
	}
}

func TestJSONAcceptsForeignWriterRecords(t *testing.T) {
	// records written by other clients of the same medium
	r := mustDecode(t, []byte(` {"expireAt":0,"ttl":0,"value":{"a":1}} `))
	if string(r.Payload) != `{"a":1}` || r.ExpireAt != 0 {
		t.Fatalf("got %+v", r)
	}
	r = mustDecode(t, []byte(`{"value":null,"ttl":0,"expireAt":0}`))
	if r.HasValue() {
		t.Fatalf("null value should decode as absent")
	}
}

func TestJSONRejectsNonRecords(t *testing.T) {
	for _, in := range []string{"", "bar", `"bar"`, `[1,2]`, `{"value":1}`, `{"value":1,"expireAt":"x"}`, `{`} {
		if _, err := Decode([]byte(in)); err != ErrCorrupt {
			t.Fatalf("Decode(%q) err=%v, want ErrCorrupt", in, err)
		}
	}
}

func TestEncodeJSONRejectsInvalidPayload(t *testing.T) {
	if _, err := EncodeJSON(Record{Payload: []byte{0xff, 0x00}}); err == nil {
		t.Fatalf("expected error for non-JSON payload")
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	cases := []Record{
		{Payload: nil, TTL: 0, ExpireAt: 0},
		{Payload: []byte{}, TTL: 1, ExpireAt: 2},
		{Payload: []byte{0, 1, 2, 0xff}, TTL: 300_000, ExpireAt: math.MaxInt64},
	}
	for _, in := range cases {
		out := mustDecode(t, EncodeBinary(in))
		if out.HasValue() != in.HasValue() {
			t.Fatalf("HasValue mismatch: in=%+v out=%+v", in, out)
		}
		if !bytes.Equal(out.Payload, in.Payload) || out.TTL != in.TTL || out.ExpireAt != in.ExpireAt {
			t.Fatalf("round trip mismatch: in=%+v out=%+v", in, out)
		}
	}
}

func TestBinaryRejectsTrailingBytes(t *testing.T) {
	enc := EncodeBinary(Record{Payload: []byte("x")})
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestBinaryCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeBinary(Record{Payload: []byte("abc"), TTL: 1, ExpireAt: 2})

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// truncated header
	if _, err := Decode(enc[:binaryHeader-1]); err == nil {
		t.Fatalf("expected error on short header")
	}

	// vlen beyond buffer
	badLen := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(badLen[binaryHeader-4:binaryHeader], uint32(len(enc)))
	if _, err := Decode(badLen); err == nil {
		t.Fatalf("expected error on oversized vlen")
	}

	// payload bytes without the has-data flag
	noFlag := append([]byte(nil), enc...)
	noFlag[5] = 0
	if _, err := Decode(noFlag); err == nil {
		t.Fatalf("expected error on payload without flag")
	}
}

func TestEncodeFormatSelection(t *testing.T) {
	r := Record{Payload: []byte(`1`), TTL: 1, ExpireAt: 2}
	b, err := Encode(r, FormatJSON)
	if err != nil || !strings.HasPrefix(string(b), "{") {
		t.Fatalf("FormatJSON: %q err=%v", b, err)
	}
	b, err = Encode(r, FormatBinary)
	if err != nil || !hasMagic(b) {
		t.Fatalf("FormatBinary: %q err=%v", b, err)
	}
	b, _ = Encode(r, FormatAuto)
	if !hasMagic(b) {
		t.Fatalf("FormatAuto should fall back to binary")
	}
}
