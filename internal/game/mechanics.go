/*
Package game
File: mechanics.go
Description:
    Contains the rule-engine helpers shared by every subsystem:
    failure reasons, rounding, random draws, lookups and invariant checks.
*/

package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Failure reasons returned by player actions. Callers match them with errors.Is.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotApproved       = errors.New("script not approved")
	ErrAlreadyApproved   = errors.New("already approved")
	ErrNoCandidates      = errors.New("no eligible candidates")
	ErrAlreadyBusy       = errors.New("already busy")
	ErrNotFound          = errors.New("not found")
	ErrUnknownTask       = errors.New("unknown task")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrAlreadyReleased   = errors.New("already released")
	ErrBankrupt          = errors.New("studio is bankrupt")
	ErrInvalidContent    = errors.New("invalid content")
)

// mustf panics when a data-integrity invariant is broken. Those are programming
// errors, never recoverable runtime conditions.
func mustf(ok bool, format string, args ...any) {
	if !ok {
		panic(fmt.Sprintf("invariant violated: "+format, args...))
	}
}

// round2 rounds a monetary amount to cents (two decimal places).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// randRange draws an integer from [lo, hi] inclusive.
func randRange(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func pick(rng *rand.Rand, items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[rng.Intn(len(items))]
}

// sample returns k distinct elements (uniform, without replacement).
func sample(rng *rand.Rand, items []string, k int) []string {
	if k > len(items) {
		k = len(items)
	}
	out := make([]string, 0, k)
	for _, i := range rng.Perm(len(items))[:k] {
		out = append(out, items[i])
	}
	return out
}

// newID derives an id from the game RNG so seeded runs replay identically.
func newID(rng *rand.Rand, prefix string) string {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		id = uuid.New()
	}
	return prefix + "-" + id.String()
}

// dedupe keeps the first occurrence of every string, preserving order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// tagOverlap counts distinct tags present in both sets (case-insensitive).
func tagOverlap(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, t := range b {
		set[strings.ToLower(t)] = true
	}
	n := 0
	for _, t := range dedupe(a) {
		if set[strings.ToLower(t)] {
			n++
		}
	}
	return n
}

func hasAnyTag(tags, wanted []string) bool {
	for _, t := range tags {
		if slices.Contains(wanted, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// GetScript is a helper to retrieve a Script pointer by its ID from a list.
// Returns the index as well so callers can remove it.
func GetScript(list []*Script, id string) (*Script, int) {
	for i, s := range list {
		if s.ID == id {
			return s, i
		}
	}
	return nil, -1
}

// GetMovie retrieves a Movie pointer by its ID.
func GetMovie(list []*Movie, id string) (*Movie, int) {
	for i, m := range list {
		if m.ID == id {
			return m, i
		}
	}
	return nil, -1
}

// removeAt deletes index i, keeping the order of the remaining items.
func removeAt[T any](list []T, i int) []T {
	return slices.Delete(list, i, i+1)
}
