package simulation

import (
	"context"
	"math/rand"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/deck"
)

// openingHand is the dealt-hand snapshot a trial reports before its first
// turn: land count and the colors those lands produce.
type openingHand struct {
	lands  uint8
	colors cards.ColorSet
}

// TrialResult holds one trial's outcome: the first draw and first cast turn
// per distinct card (0 = never), the opening-hand snapshot, plus the
// turn-by-turn log for sampled trials.
type TrialResult struct {
	FirstDraw []uint8
	FirstCast []uint8
	Opening   openingHand
	Log       string
}

// Run executes the batch sequentially: one trial fully completes before the
// next starts. The context is checked between trials, so cancellation is
// trial-granular; a cancelled batch returns ctx.Err with no partial result.
func Run(ctx context.Context, list *deck.Decklist, provider CardInfoProvider, opts Options) (*AggregateStatistics, error) {
	opts, table, err := prepare(list, provider, opts)
	if err != nil {
		return nil, err
	}

	agg := newAggregator(table, opts)
	logs := make([]string, len(opts.SampleIndices))

	rows := newResultRows(1, table.distinct())
	for trial := 0; trial < opts.Trials; trial++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows.clear()
		result := TrialResult{FirstDraw: rows.draw(0), FirstCast: rows.cast(0)}

		var log *trialLog
		if slot := sampleSlot(opts.SampleIndices, trial); slot >= 0 {
			log = newTrialLog(trial, opts.Trials)
		}

		result.Opening = runTrial(table, trialSeed(opts.Seed, trial), result.FirstDraw, result.FirstCast, log)

		if slot := sampleSlot(opts.SampleIndices, trial); slot >= 0 {
			logs[slot] = log.String()
		}
		agg.add(&result)
	}

	return agg.finish(logs), nil
}

// runTrial plays one complete game with its own random stream, writing first
// draw/cast turns into the caller's rows and returning the opening-hand
// snapshot. Row writes are once-only: a recorded turn is never overwritten
// by a later attempt.
func runTrial(table *deckTable, seed int64, firstDraw, firstCast []uint8, log *trialLog) openingHand {
	rng := rand.New(rand.NewSource(seed))
	state := newGameState(table, rng, firstDraw, firstCast, log)
	lands, colors := state.openingSummary()
	for turn := 1; turn <= MaxTurns; turn++ {
		state.playTurn(turn)
	}
	return openingHand{lands: uint8(lands), colors: colors}
}

// trialSeed derives a trial's seed from the batch seed and trial index via a
// splitmix64 round, so per-trial streams are deterministic yet uncorrelated.
func trialSeed(batchSeed int64, trial int) int64 {
	x := uint64(batchSeed) + uint64(trial) + 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x ^= x >> 31
	return int64(x)
}

// sampleSlot returns the position of trial within the sample indices, or -1.
func sampleSlot(sampleIndices []int, trial int) int {
	for slot, idx := range sampleIndices {
		if idx == trial {
			return slot
		}
	}
	return -1
}

// prepare validates options and resolves the decklist into a flattened
// read-only table. Both backends start here; both error categories surface
// before any trial work.
func prepare(list *deck.Decklist, provider CardInfoProvider, opts Options) (Options, *deckTable, error) {
	opts, err := opts.normalize()
	if err != nil {
		return opts, nil, err
	}

	table, err := newDeckTable(list, provider)
	if err != nil {
		return opts, nil, err
	}
	return opts, table, nil
}
