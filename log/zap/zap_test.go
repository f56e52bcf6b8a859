package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/vstore"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("sweep evicted expired entries", vstore.Fields{"scanned": 3, "evicted": 1})
	l.Warn("sweep failed", vstore.Fields{"err": errors.New("boom")})

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("got %d entries, want 2", len(all))
	}
	if all[0].Level != zapcore.DebugLevel || all[0].LoggerName != "vstore" {
		t.Fatalf("entry 0: level=%v name=%q", all[0].Level, all[0].LoggerName)
	}
	ctx := all[0].ContextMap()
	if ctx["scanned"] != int64(3) || ctx["evicted"] != int64(1) {
		t.Fatalf("fields = %v", ctx)
	}
	if all[0].Context[0].Key != "evicted" {
		t.Fatalf("fields not sorted: %v", all[0].Context)
	}
	if all[1].Level != zapcore.WarnLevel || all[1].ContextMap()["err"] != "boom" {
		t.Fatalf("entry 1: %+v", all[1])
	}
}

func TestNilLoggerIsNop(t *testing.T) {
	New(nil).Error("ignored", vstore.Fields{"k": "v"})
}
