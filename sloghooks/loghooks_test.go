package sloghooks

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("bad line %q: %v", l, err)
		}
		out = append(out, m)
	}
	return out
}

func TestKeysAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{})

	h.DecodeFailed("vstore:user:secret", errors.New("bad"))
	got := lines(t, &buf)
	if len(got) != 1 {
		t.Fatalf("got %d lines", len(got))
	}
	key, _ := got[0]["key"].(string)
	if key == "" || strings.Contains(key, "secret") || len(key) != 16 {
		t.Fatalf("key not redacted: %q", key)
	}
	if got[0]["msg"] != "vstore.decode_failed" || got[0]["err"] != "bad" {
		t.Fatalf("line = %v", got[0])
	}
}

func TestCustomRedactor(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{Redact: func(string) string { return "x" }})
	h.AdapterError("write", "vstore:user:k", errors.New("down"))
	got := lines(t, &buf)
	if got[0]["key"] != "x" || got[0]["op"] != "write" || got[0]["level"] != "ERROR" {
		t.Fatalf("line = %v", got[0])
	}
}

func TestSampling(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{ExpiredEvery: 3})
	for i := 0; i < 9; i++ {
		h.ExpiredOnRead("vstore:user:k")
	}
	if n := len(lines(t, &buf)); n != 3 {
		t.Fatalf("got %d lines, want 3", n)
	}
}

func TestIdleSweepsSkipped(t *testing.T) {
	var buf bytes.Buffer
	h := New(newLogger(&buf), Options{})
	h.SweepCompleted("vstore:", 10, 0)
	if buf.Len() != 0 {
		t.Fatalf("idle sweep logged: %s", buf.String())
	}
	h.SweepCompleted("vstore:", 10, 2)
	got := lines(t, &buf)
	if len(got) != 1 || got[0]["evicted"] != float64(2) {
		t.Fatalf("lines = %v", got)
	}

	buf.Reset()
	New(newLogger(&buf), Options{LogIdleSweeps: true}).SweepCompleted("vstore:", 1, 0)
	if buf.Len() == 0 {
		t.Fatalf("idle sweep not logged with LogIdleSweeps")
	}
}

func TestNilLogger(t *testing.T) {
	h := New(nil, Options{})
	h.ExpiredOnRead("k")
	h.DecodeFailed("k", nil)
	h.SweepEvicted("k")
	h.SweepCompleted("p", 1, 1)
	h.AdapterError("read", "k", nil)
}
