// Package simulation estimates when each card in a decklist can realistically
// be cast during the first ten turns of a game. It runs many independent
// simulated games (shuffle, draw, land drops, mana accumulation, casting) and
// aggregates the results into per-card and deck-wide statistics.
//
// The same per-trial turn machine backs two drivers: a sequential engine
// (Run) and a parallel backend (RunParallel) that executes every trial as an
// independent lane over flattened read-only inputs. Given the same options
// the two backends produce identical output, because each trial's random
// stream is derived from the batch seed and the trial index alone.
package simulation

import (
	"fmt"

	"github.com/mtgcrafter/manalysis/internal/cards"
)

const (
	// MaxTurns is the number of turns simulated per trial.
	MaxTurns = 10

	// DefaultTrials is the number of trials run when Options.Trials is zero.
	DefaultTrials = 1000

	openingHandSize = 7
)

// CardInfoProvider resolves a card name to its metadata. It is queried once
// per distinct card name before any trial runs.
type CardInfoProvider interface {
	CardInfo(name string) (*cards.CardInfo, error)
}

// Options configures a simulation batch.
type Options struct {
	// Trials is the number of independent games to simulate.
	// Zero selects DefaultTrials; negative values are rejected.
	Trials int

	// Seed is the batch seed. Every per-trial random stream is derived
	// from it, so a fixed seed makes the whole batch reproducible.
	Seed int64

	// SampleIndices selects which trials produce a full turn-by-turn log.
	// Nil selects the first, middle, and last trial of the batch.
	SampleIndices []int

	// Workers bounds the concurrency of the parallel backend.
	// Zero selects runtime.NumCPU. Ignored by the sequential engine.
	Workers int
}

// normalize applies defaults and validates the options.
func (o Options) normalize() (Options, error) {
	if o.Trials == 0 {
		o.Trials = DefaultTrials
	}
	if o.Trials < 0 {
		return o, &ConfigError{Reason: fmt.Sprintf("trials must be positive, got %d", o.Trials)}
	}
	if o.Workers < 0 {
		return o, &ConfigError{Reason: fmt.Sprintf("workers cannot be negative, got %d", o.Workers)}
	}

	if o.SampleIndices == nil {
		o.SampleIndices = defaultSampleIndices(o.Trials)
	} else {
		for _, idx := range o.SampleIndices {
			if idx < 0 || idx >= o.Trials {
				return o, &ConfigError{Reason: fmt.Sprintf("sample index %d outside [0, %d)", idx, o.Trials)}
			}
		}
	}

	return o, nil
}

// defaultSampleIndices returns the first, middle, and last trial indices,
// deduplicated for small batches.
func defaultSampleIndices(trials int) []int {
	indices := []int{0}
	if mid := trials / 2; mid != 0 {
		indices = append(indices, mid)
	}
	if last := trials - 1; last != 0 && last != trials/2 {
		indices = append(indices, last)
	}
	return indices
}
