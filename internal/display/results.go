// Package display renders simulation results in a readable terminal format.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/simulation"
)

// Displayer writes formatted analysis output.
type Displayer struct {
	w io.Writer
}

// NewDisplayer creates a displayer writing to w.
func NewDisplayer(w io.Writer) *Displayer {
	return &Displayer{w: w}
}

// Results renders the full casting analysis: the opening-hand summary, the
// per-card table, deck castability by turn, never-cast cards, and sample
// game logs.
func (d *Displayer) Results(stats *simulation.AggregateStatistics) {
	fmt.Fprintf(d.w, "\nCasting Analysis (%d trials, seed %d)\n", stats.Trials, stats.Seed)
	fmt.Fprintf(d.w, "%s\n", strings.Repeat("-", 40))

	d.openingHands(stats)
	d.cardTable(stats)
	d.castability(stats)
	d.neverCast(stats)
	d.sampleLogs(stats)
}

// openingHands prints the dealt-hand summary: average lands, the no-land
// risk, and how often each color is present among opening-hand lands.
func (d *Displayer) openingHands(stats *simulation.AggregateStatistics) {
	hand := stats.OpeningHand
	fmt.Fprintf(d.w, "\nOpening Hands:\n")
	fmt.Fprintf(d.w, "Average lands: %.1f\n", hand.AvgLands)
	fmt.Fprintf(d.w, "No-land hands: %.1f%%\n", hand.NoLandPct)

	parts := make([]string, 0, len(cards.WUBRG))
	for i, color := range cards.WUBRG {
		if hand.ColorPct[i] == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %.1f%%", color, hand.ColorPct[i]))
	}
	if len(parts) > 0 {
		fmt.Fprintf(d.w, "Color presence: %s\n", strings.Join(parts, " | "))
	}
}

// cardTable prints per-card statistics sorted by mana value, then name.
func (d *Displayer) cardTable(stats *simulation.AggregateStatistics) {
	rows := make([]simulation.CardStatistics, len(stats.Cards))
	copy(rows, stats.Cards)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ManaValue != rows[j].ManaValue {
			return rows[i].ManaValue < rows[j].ManaValue
		}
		return rows[i].Name < rows[j].Name
	})

	fmt.Fprintf(d.w, "\nDetailed Card Statistics (sorted by mana value):\n")
	fmt.Fprintf(d.w, "MV | Drawn %% | Cast %% | Cast Turn | Card\n")
	fmt.Fprintf(d.w, "%s\n", strings.Repeat("-", 40))

	for _, row := range rows {
		castTurn := "Never"
		if row.CastTrials > 0 {
			castTurn = fmt.Sprintf("%4.1f", row.AvgCastTurn)
		}
		name := row.Name
		if row.Copies > 1 {
			name = fmt.Sprintf("%s (x%d)", row.Name, row.Copies)
		}
		fmt.Fprintf(d.w, "%2.0f | %6.1f%% | %5.1f%% | %9s | %s\n",
			row.ManaValue, row.DrawPct, row.CastPct, castTurn, name)
	}
}

// castability prints the copy-weighted deck castability per turn.
func (d *Displayer) castability(stats *simulation.AggregateStatistics) {
	fmt.Fprintf(d.w, "\nDeck Castability:\n")
	for t := 0; t < simulation.MaxTurns; t++ {
		fmt.Fprintf(d.w, "By turn %d: %.1f%% of non-land cards\n", t+1, stats.DeckCastByTurn[t])
	}
}

func (d *Displayer) neverCast(stats *simulation.AggregateStatistics) {
	if len(stats.NeverCast) == 0 {
		return
	}
	fmt.Fprintf(d.w, "\nCards Not Cast in Simulations:\n")
	for _, name := range stats.NeverCast {
		fmt.Fprintf(d.w, "- %s\n", name)
	}
}

func (d *Displayer) sampleLogs(stats *simulation.AggregateStatistics) {
	if len(stats.SampleLogs) == 0 {
		return
	}
	separator := strings.Repeat("=", 60)
	fmt.Fprintf(d.w, "\nSample Game Logs:\n%s\n", separator)
	for _, log := range stats.SampleLogs {
		fmt.Fprintf(d.w, "%s\n%s\n", log, separator)
	}
}

// ManaCurve prints an ASCII bar chart of nonland copies per mana value.
func (d *Displayer) ManaCurve(stats *simulation.AggregateStatistics) {
	counts := make(map[int]int)
	maxValue, maxCount := 0, 0
	for _, card := range stats.Cards {
		if card.IsLand {
			continue
		}
		value := int(card.ManaValue)
		counts[value] += card.Copies
		if value > maxValue {
			maxValue = value
		}
		if counts[value] > maxCount {
			maxCount = counts[value]
		}
	}

	fmt.Fprintf(d.w, "\nMana Curve:\n")
	if maxCount == 0 {
		fmt.Fprintf(d.w, "(no nonland cards)\n")
		return
	}

	const height = 20
	for value := 0; value <= maxValue; value++ {
		count := counts[value]
		barHeight := count * height / maxCount
		fmt.Fprintf(d.w, "%2d│ %s%s %2d\n",
			value, strings.Repeat("█", barHeight), strings.Repeat(" ", height-barHeight), count)
	}
}
