package simulation

import "github.com/mtgcrafter/manalysis/internal/cards"

// CardStatistics holds the aggregated distributions for one distinct card.
//
// Cast percentages are conditioned on availability: CastPct is the share of
// trials in which the card was drawn that also cast it, and CastPctByTurn[t]
// is the share of trials that had drawn the card by turn t+1 that had also
// cast it by then. Conditioning keeps the numbers about castability rather
// than about draw luck, which the draw columns already report.
type CardStatistics struct {
	Name      string
	ManaValue float64
	IsLand    bool
	Copies    int

	// DrawnTrials and CastTrials keep never-drawn distinguishable from
	// drawn-but-never-cast.
	DrawnTrials int
	CastTrials  int

	DrawPct float64
	CastPct float64

	// CastPctByTurn[t] covers turn t+1, for turns 1 through MaxTurns.
	CastPctByTurn [MaxTurns]float64

	// AvgCastTurn and MedianCastTurn are taken over trials where the card
	// was cast; both are 0 when it never was.
	AvgCastTurn    float64
	MedianCastTurn float64

	// EarliestCastTurn is the minimum first-cast turn observed across all
	// trials, or 0 if the card was never cast.
	EarliestCastTurn int
}

// OpeningHandStatistics summarizes the dealt opening hands across a batch.
type OpeningHandStatistics struct {
	// AvgLands is the mean number of lands in the opening hand.
	AvgLands float64

	// NoLandPct is the share of trials whose opening hand held no land.
	NoLandPct float64

	// ColorPct is indexed in cards.WUBRG order: the share of opening
	// hands holding at least one land that produces that color.
	ColorPct [5]float64
}

// AggregateStatistics is the reduction of a whole batch of trial results.
type AggregateStatistics struct {
	Trials   int
	Seed     int64
	DeckSize int

	OpeningHand OpeningHandStatistics

	// Cards is in decklist order.
	Cards []CardStatistics

	// DeckCastByTurn[t] is the copy-weighted average of nonland
	// CastPctByTurn[t]: roughly, how much of the deck's spell content is
	// castable by each turn.
	DeckCastByTurn [MaxTurns]float64

	// NeverCast lists nonland cards that were cast in no trial.
	NeverCast []string

	// SampleLogs holds the turn-by-turn logs of the sampled trials, in
	// sample-index order.
	SampleLogs []string
}

// aggregator reduces trial results into first-event histograms. Histogram
// accumulation is commutative, so the order trials arrive in cannot affect
// the aggregate.
type aggregator struct {
	table  *deckTable
	opts   Options
	trials int

	// drawHist[c][t] and castHist[c][t] count trials whose first
	// draw/cast of card c happened on turn t (1-based; index 0 unused).
	drawHist [][MaxTurns + 1]int
	castHist [][MaxTurns + 1]int

	openLandsSum int
	noLandHands  int
	colorHands   [5]int // WUBRG order
}

func newAggregator(table *deckTable, opts Options) *aggregator {
	return &aggregator{
		table:    table,
		opts:     opts,
		drawHist: make([][MaxTurns + 1]int, table.distinct()),
		castHist: make([][MaxTurns + 1]int, table.distinct()),
	}
}

// add folds one trial result into the histograms and hand tallies.
func (a *aggregator) add(result *TrialResult) {
	a.trials++
	for c := 0; c < a.table.distinct(); c++ {
		if turn := result.FirstDraw[c]; turn > 0 {
			a.drawHist[c][turn]++
		}
		if turn := result.FirstCast[c]; turn > 0 {
			a.castHist[c][turn]++
		}
	}

	a.openLandsSum += int(result.Opening.lands)
	if result.Opening.lands == 0 {
		a.noLandHands++
	}
	for i, color := range cards.WUBRG {
		if result.Opening.colors&color != 0 {
			a.colorHands[i]++
		}
	}
}

// finish computes the final statistics from the accumulated histograms.
func (a *aggregator) finish(sampleLogs []string) *AggregateStatistics {
	stats := &AggregateStatistics{
		Trials:     a.trials,
		Seed:       a.opts.Seed,
		DeckSize:   a.table.deckSize,
		Cards:      make([]CardStatistics, a.table.distinct()),
		SampleLogs: sampleLogs,
	}

	var deckWeight [MaxTurns]float64
	totalSpellCopies := 0

	for c := 0; c < a.table.distinct(); c++ {
		card := CardStatistics{
			Name:      a.table.names[c],
			ManaValue: a.table.manaValue[c],
			IsLand:    a.table.isLand[c],
			Copies:    a.table.copies[c],
		}

		drawCum, castCum := 0, 0
		castTurnSum := 0
		for t := 1; t <= MaxTurns; t++ {
			drawCum += a.drawHist[c][t]
			castCum += a.castHist[c][t]
			castTurnSum += t * a.castHist[c][t]

			if drawCum > 0 {
				card.CastPctByTurn[t-1] = 100 * float64(castCum) / float64(drawCum)
			}
			if card.EarliestCastTurn == 0 && a.castHist[c][t] > 0 {
				card.EarliestCastTurn = t
			}
		}

		card.DrawnTrials = drawCum
		card.CastTrials = castCum
		if a.trials > 0 {
			card.DrawPct = 100 * float64(drawCum) / float64(a.trials)
		}
		if drawCum > 0 {
			card.CastPct = 100 * float64(castCum) / float64(drawCum)
		}
		if castCum > 0 {
			card.AvgCastTurn = float64(castTurnSum) / float64(castCum)
			card.MedianCastTurn = float64(histogramMedian(a.castHist[c], castCum))
		}

		if !card.IsLand {
			totalSpellCopies += card.Copies
			for t := 0; t < MaxTurns; t++ {
				deckWeight[t] += float64(card.Copies) * card.CastPctByTurn[t]
			}
			if castCum == 0 {
				stats.NeverCast = append(stats.NeverCast, card.Name)
			}
		}

		stats.Cards[c] = card
	}

	if totalSpellCopies > 0 {
		for t := 0; t < MaxTurns; t++ {
			stats.DeckCastByTurn[t] = deckWeight[t] / float64(totalSpellCopies)
		}
	}

	if a.trials > 0 {
		stats.OpeningHand.AvgLands = float64(a.openLandsSum) / float64(a.trials)
		stats.OpeningHand.NoLandPct = 100 * float64(a.noLandHands) / float64(a.trials)
		for i, count := range a.colorHands {
			stats.OpeningHand.ColorPct[i] = 100 * float64(count) / float64(a.trials)
		}
	}

	return stats
}

// histogramMedian returns the median turn of a first-cast histogram with the
// given total count. For even counts it takes the upper middle, matching a
// sorted-slice index of n/2.
func histogramMedian(hist [MaxTurns + 1]int, total int) int {
	rank := total/2 + 1
	cum := 0
	for t := 1; t <= MaxTurns; t++ {
		cum += hist[t]
		if cum >= rank {
			return t
		}
	}
	return 0
}
