// Package sim provides seed-controlled randomness for the simulation engine.
// Every probabilistic branch in the generators draws from a Rand constructed
// here, so a fixed seed reproduces an entire run and tests can pin
// probabilities to 0 or 1.
package sim

import (
	"math/rand"
	"sync"
	"time"
)

// Profile holds the per-entity probabilities that drive a tick. Zero values
// disable the corresponding branch, which is what deterministic tests want.
type Profile struct {
	BedTurnover      float64 // chance an occupied bed is freed per tick
	VisitDischarge   float64 // chance an active visit is discharged per pass
	LabAdvance       float64 // chance a pending lab test advances one step
	LabNewOrder      float64 // chance a new lab order is placed per tick
	ClaimStep        float64 // chance an open claim advances one step
	ClaimApproval    float64 // share of resolved claims that are approved
	ScheduleCoverage float64 // share of staff scheduled per tick
	SurveyRate       float64 // chance a sampled visit yields a survey
	EducationRate    float64 // chance a sampled visit yields an education log
	MeasurementRate  float64 // chance an indicator yields a measurement
}

// DefaultProfile returns the production distribution.
func DefaultProfile() Profile {
	return Profile{
		BedTurnover:      0.2,
		VisitDischarge:   0.2,
		LabAdvance:       0.3,
		LabNewOrder:      0.4,
		ClaimStep:        0.3,
		ClaimApproval:    0.85,
		ScheduleCoverage: 0.8,
		SurveyRate:       0.1,
		EducationRate:    0.1,
		MeasurementRate:  0.15,
	}
}

// Rand is a seeded random source safe for use from concurrent generators.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Rand seeded for reproducibility. If seed is 0 a time-based
// seed is chosen.
func New(seed int64) *Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Rand{rng: rand.New(rand.NewSource(seed))}
}

// Chance returns true with probability p. p <= 0 never fires, p >= 1 always.
func (r *Rand) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() < p
}

// Intn returns a uniform int in [0, n).
func (r *Rand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// IntBetween returns a uniform int in [lo, hi].
func (r *Rand) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.Intn(hi-lo+1)
}

// FloatBetween returns a uniform float64 in [lo, hi).
func (r *Rand) FloatBetween(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return lo + r.rng.Float64()*(hi-lo)
}

// Pick returns a random element of pool. Pool must be non-empty.
func (r *Rand) Pick(pool []string) string {
	return pool[r.Intn(len(pool))]
}

// DaysAgo returns a timestamp a uniform number of days in the past,
// between minDays and maxDays inclusive, with sub-day jitter.
func (r *Rand) DaysAgo(minDays, maxDays int) time.Time {
	days := r.IntBetween(minDays, maxDays)
	jitter := time.Duration(r.Intn(24*60)) * time.Minute
	return time.Now().AddDate(0, 0, -days).Add(-jitter)
}

// Between returns a uniform timestamp in [from, to].
func (r *Rand) Between(from, to time.Time) time.Time {
	if !to.After(from) {
		return from
	}
	span := to.Sub(from)
	r.mu.Lock()
	offset := time.Duration(r.rng.Int63n(int64(span)))
	r.mu.Unlock()
	return from.Add(offset)
}
