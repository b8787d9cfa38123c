package minify

import (
	"io"
	"time"

	"go.uber.org/zap"
)

// Minifier is the Mode Dispatch Facade (§4.8): the single entry point
// callers use instead of reaching into the engine files directly. A zero
// value is usable; New applies options like a logger.
type Minifier struct {
	logger *opLogger
	eco    *ecoEngine
	sport  *sportEngine
	turbo  *turboEngine
	// allowTurboFallback lets a caller ask for TURBO on a platform that
	// can't support it and silently get SPORT instead, logged as
	// Degraded, rather than ErrModeUnavailable.
	allowTurboFallback bool
}

// Option configures a Minifier at construction.
type Option func(*Minifier)

// WithLogger injects a zap logger for operational/fallback events. Parse
// errors are never logged through it — they are always returned as values.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Minifier) { m.logger = newOpLogger(l) }
}

// WithTurboFallback makes a TURBO request on an unsupported platform
// degrade to SPORT (with Stats.Degraded set and a warning logged) instead
// of failing with ErrModeUnavailable.
func WithTurboFallback() Option {
	return func(m *Minifier) { m.allowTurboFallback = true }
}

// New builds a Minifier with the given options.
func New(opts ...Option) *Minifier {
	m := &Minifier{
		eco:   newEcoEngine(),
		sport: newSportEngine(),
	}
	for _, o := range opts {
		o(m)
	}
	if m.logger == nil {
		m.logger = newOpLogger(nil)
	}
	m.turbo = newTurboEngine(m.logger)
	return m
}

var defaultMinifier = New()

// MinifyBytes minifies input in the given Mode and returns the result
// (§4.8, §6).
func MinifyBytes(mode Mode, input []byte) ([]byte, error) {
	return defaultMinifier.MinifyBytes(mode, input)
}

// MinifyStream minifies from r to w in the given Mode, returning Stats
// (§4.8, §6).
func MinifyStream(mode Mode, r io.Reader, w io.Writer) (Stats, error) {
	return defaultMinifier.MinifyStream(mode, r, w)
}

// Validate checks that input is well-formed JSON without producing output
// (§4.8: "a Machine whose sink discards everything").
func Validate(input []byte) error {
	return defaultMinifier.Validate(input)
}

// Capabilities reports the process's probed hardware capabilities.
func Capabilities() Capabilities { return Probe() }

// IsSupported reports whether mode can run natively on this platform
// without falling back.
func IsSupported(mode Mode) bool { return defaultMinifier.IsSupported(mode) }

// MinifyBytes is the Minifier method backing the package-level function of
// the same name, letting a caller reuse one Minifier (and its logger,
// fallback policy) across many calls.
func (m *Minifier) MinifyBytes(mode Mode, input []byte) ([]byte, error) {
	eng, _, err := m.resolve(mode)
	if err != nil {
		return nil, err
	}
	out, _, err := eng.runBytes(input)
	return out, err
}

// MinifyStream streams from r to w, returning Stats describing what
// actually happened (§4.8, §6).
func (m *Minifier) MinifyStream(mode Mode, r io.Reader, w io.Writer) (Stats, error) {
	start := time.Now()
	eng, degradedMode, err := m.resolve(mode)
	if err != nil {
		return Stats{}, err
	}
	bytesIn, bytesOut, degradedRun, err := eng.run(r, w)
	used := mode
	if degradedMode {
		used = SPORT
	}
	stats := Stats{
		BytesIn:  bytesIn,
		BytesOut: bytesOut,
		Elapsed:  time.Since(start),
		ModeUsed: used,
		Degraded: degradedMode || degradedRun,
	}
	if stats.Degraded {
		m.logger.warnf("minify: mode %s degraded (in=%d out=%d)", mode, bytesIn, bytesOut)
	}
	return stats, err
}

// Validate runs input through a Machine whose output is discarded,
// reporting only whether it is well-formed JSON.
func (m *Minifier) Validate(input []byte) error {
	mc := NewMachine(discardSink{})
	if err := mc.Feed(input); err != nil {
		return err
	}
	return mc.Flush()
}

// IsSupported reports whether mode has its hardware prerequisites met.
func (m *Minifier) IsSupported(mode Mode) bool {
	if mode != TURBO {
		return true
	}
	caps := Probe()
	return caps.SIMDLevel != SIMDNone || caps.LogicalCPUs >= 2
}

// resolve picks the engine for mode, applying the graceful-degradation
// policy (§4.8): TURBO on an unsupported platform either fails with
// ErrModeUnavailable or, if the caller opted in via WithTurboFallback,
// degrades to SPORT. It never swallows a parse error — only missing
// hardware support for the requested mode degrades.
func (m *Minifier) resolve(mode Mode) (engine, bool, error) {
	switch mode {
	case ECO:
		return m.eco, false, nil
	case SPORT:
		return m.sport, false, nil
	case TURBO:
		if m.IsSupported(TURBO) {
			return m.turbo, false, nil
		}
		if !m.allowTurboFallback {
			return nil, false, &Error{Kind: ModeUnavailable, Offset: 0}
		}
		m.logger.warnf("minify: turbo unavailable on this platform, degrading to sport")
		return m.sport, true, nil
	default:
		return nil, false, &Error{Kind: ModeUnavailable, Offset: 0}
	}
}
