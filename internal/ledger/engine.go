// Package ledger implements the household ledger engine: pure functions
// that compute per-member shares of a bill, actual contributions toward
// it, derived payment status, running balances across the household, and
// net settlement instructions between members.
//
// Every function is a stateless transform over the snapshot of bills,
// members and settlement records it is given. Nothing is cached between
// calls and inputs are never mutated, so all functions are safe to call
// concurrently. The caller owns snapshot consistency.
package ledger

import (
	"math"
	"time"
)

// DefaultEpsilon is the absolute currency tolerance used to absorb
// floating-point and rounding noise. Comparisons are always against this
// fixed amount, never a relative tolerance.
const DefaultEpsilon = 0.01

// Config carries the engine's tunables. The zero value is usable:
// epsilon defaults to DefaultEpsilon, the clock to time.Now.
type Config struct {
	// Epsilon is the absolute currency tolerance.
	Epsilon float64

	// Now supplies "today" for overdue checks. Injected so tests can
	// pin the calendar date.
	Now func() time.Time
}

// Engine evaluates bills for one household roster configuration.
type Engine struct {
	eps float64
	now func() time.Time
}

// New creates an Engine from cfg, applying defaults for unset fields.
func New(cfg Config) *Engine {
	e := &Engine{eps: cfg.Epsilon, now: cfg.Now}
	if e.eps <= 0 {
		e.eps = DefaultEpsilon
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// round2 rounds to 2 decimals. Applied only at output boundaries;
// intermediate accumulation keeps full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sameOrAfterDay reports whether a falls on or after b's local calendar
// date. Overdue comparison is by calendar date, not instant.
func sameOrAfterDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay > by
	}
	if am != bm {
		return am > bm
	}
	return ad >= bd
}

func sumValues(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}
