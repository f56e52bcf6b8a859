// Package zap adapts a *zap.Logger to vstore.Logger.
package zap

import (
	"sort"

	"github.com/unkn0wn-root/vstore"
	"go.uber.org/zap"
)

var _ vstore.Logger = Logger{}

type Logger struct{ L *zap.Logger }

// New names the logger "vstore". A nil l yields a no-op logger.
func New(l *zap.Logger) Logger {
	if l == nil {
		return Logger{L: zap.NewNop()}
	}
	return Logger{L: l.Named("vstore")}
}

func (z Logger) Debug(msg string, f vstore.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f vstore.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f vstore.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f vstore.Fields) { z.L.Error(msg, fields(f)...) }

// fields are emitted in key order so log lines are stable.
func fields(f vstore.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]zap.Field, 0, len(f))
	for _, k := range names {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
