package minify

import "go.uber.org/zap"

// opLogger wraps the operational logger the facade and the TURBO engine
// use for events a caller might want visibility into — mode fallback,
// degradation, and TURBO's chunk-dispatch decisions. It never logs parse
// errors; those
// are always returned as values (§4.10, AMBIENT STACK "Logging").
type opLogger struct {
	sugar *zap.SugaredLogger
}

// newOpLogger wraps l, or a no-op logger if l is nil, so the core stays
// silent and alloc-free unless a caller explicitly injects one.
func newOpLogger(l *zap.SugaredLogger) *opLogger {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	return &opLogger{sugar: l}
}

func (l *opLogger) infof(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Infof(format, args...)
}

func (l *opLogger) warnf(format string, args ...interface{}) {
	if l == nil || l.sugar == nil {
		return
	}
	l.sugar.Warnf(format, args...)
}
