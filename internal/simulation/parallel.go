package simulation

import (
	"context"
	"runtime"
	"sync"

	"github.com/mtgcrafter/manalysis/internal/deck"
)

// resultRows is a flat block of per-lane result cells. Lane i owns rows
// draw(i) and cast(i) exclusively; no lane ever touches another lane's row,
// which is what makes the parallel dispatch safe without locks.
type resultRows struct {
	firstDraw []uint8
	firstCast []uint8
	opening   []openingHand // one snapshot per lane
	width     int
}

func newResultRows(lanes, width int) *resultRows {
	return &resultRows{
		firstDraw: make([]uint8, lanes*width),
		firstCast: make([]uint8, lanes*width),
		opening:   make([]openingHand, lanes),
		width:     width,
	}
}

func (r *resultRows) draw(lane int) []uint8 {
	return r.firstDraw[lane*r.width : (lane+1)*r.width]
}

func (r *resultRows) cast(lane int) []uint8 {
	return r.firstCast[lane*r.width : (lane+1)*r.width]
}

func (r *resultRows) clear() {
	for i := range r.firstDraw {
		r.firstDraw[i] = 0
	}
	for i := range r.firstCast {
		r.firstCast[i] = 0
	}
	for i := range r.opening {
		r.opening[i] = openingHand{}
	}
}

// RunParallel executes the batch with one independent lane per trial,
// dispatched across a bounded worker pool. Lanes share only the read-only
// deck table; each writes into its own result row, and the host synchronizes
// exactly once, after every lane completes, before reducing the rows.
//
// Each lane's random stream is derived from the batch seed and the lane
// index, exactly as the sequential engine derives per-trial streams, so both
// backends produce identical statistics and identical sample logs for the
// same options. The dispatch is atomic: once issued it runs to completion,
// and the context is only consulted before dispatch.
func RunParallel(ctx context.Context, list *deck.Decklist, provider CardInfoProvider, opts Options) (*AggregateStatistics, error) {
	opts, table, err := prepare(list, provider, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers > opts.Trials {
		workers = opts.Trials
	}

	rows := newResultRows(opts.Trials, table.distinct())
	logs := make([]string, len(opts.SampleIndices))

	lanes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for lane := range lanes {
				var log *trialLog
				slot := sampleSlot(opts.SampleIndices, lane)
				if slot >= 0 {
					log = newTrialLog(lane, opts.Trials)
				}

				rows.opening[lane] = runTrial(table, trialSeed(opts.Seed, lane), rows.draw(lane), rows.cast(lane), log)

				if slot >= 0 {
					logs[slot] = log.String()
				}
			}
		}()
	}

	for lane := 0; lane < opts.Trials; lane++ {
		lanes <- lane
	}
	close(lanes)

	// The single synchronization barrier: every lane has finished before
	// the host reads any row.
	wg.Wait()

	agg := newAggregator(table, opts)
	for lane := 0; lane < opts.Trials; lane++ {
		agg.add(&TrialResult{FirstDraw: rows.draw(lane), FirstCast: rows.cast(lane), Opening: rows.opening[lane]})
	}
	return agg.finish(logs), nil
}
