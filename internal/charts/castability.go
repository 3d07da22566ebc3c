package charts

import (
	"fmt"

	"github.com/mtgcrafter/manalysis/internal/simulation"
)

// CastabilityChart renders the per-turn castability of the deck and each
// nonland card as a multi-series line chart HTML file.
func CastabilityChart(stats *simulation.AggregateStatistics, config ChartConfig, outputPath string) error {
	if config.Title == "" {
		config.Title = "Deck Castability by Turn"
		config.Subtitle = fmt.Sprintf("%d trials, seed %d", stats.Trials, stats.Seed)
	}

	series := []SeriesData{{Name: "Deck", Points: turnPoints(stats.DeckCastByTurn)}}
	for _, card := range stats.Cards {
		if card.IsLand {
			continue
		}
		series = append(series, SeriesData{Name: card.Name, Points: turnPoints(card.CastPctByTurn)})
	}

	return RenderMultiLineChart(series, config, outputPath)
}

// ManaCurveChart renders nonland copies per mana value as a bar chart HTML
// file.
func ManaCurveChart(stats *simulation.AggregateStatistics, config ChartConfig, outputPath string) error {
	if config.Title == "" {
		config.Title = "Mana Curve"
	}

	maxValue := 0
	counts := make(map[int]int)
	for _, card := range stats.Cards {
		if card.IsLand {
			continue
		}
		value := int(card.ManaValue)
		counts[value] += card.Copies
		if value > maxValue {
			maxValue = value
		}
	}

	data := make([]DataPoint, 0, maxValue+1)
	for value := 0; value <= maxValue; value++ {
		data = append(data, DataPoint{
			Label: fmt.Sprintf("%d", value),
			Value: float64(counts[value]),
		})
	}

	return RenderBarChart("Copies", data, config, outputPath)
}

func turnPoints(byTurn [simulation.MaxTurns]float64) []DataPoint {
	points := make([]DataPoint, simulation.MaxTurns)
	for t := 0; t < simulation.MaxTurns; t++ {
		points[t] = DataPoint{
			Label: fmt.Sprintf("Turn %d", t+1),
			Value: byTurn[t],
		}
	}
	return points
}
