package logrus

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/unkn0wn-root/vstore"
)

func TestFieldsAndComponent(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	l := New(base)

	l.Info("namespace cleared", vstore.Fields{"namespace": "user", "removed": 2})
	e := hook.LastEntry()
	if e == nil || e.Message != "namespace cleared" || e.Level != logrus.InfoLevel {
		t.Fatalf("entry = %+v", e)
	}
	if e.Data["component"] != "vstore" || e.Data["namespace"] != "user" || e.Data["removed"] != 2 {
		t.Fatalf("data = %v", e.Data)
	}
}

func TestErrFieldUsesErrorKey(t *testing.T) {
	base, hook := test.NewNullLogger()
	l := New(base)

	boom := errors.New("boom")
	l.Error("adapter write failed", vstore.Fields{"key": "vstore:user:k", "err": boom})
	e := hook.LastEntry()
	if e == nil || e.Data[logrus.ErrorKey] != boom || e.Data["key"] != "vstore:user:k" {
		t.Fatalf("entry = %+v", e)
	}
}
