package simulation

import (
	"fmt"
	"testing"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/deck"
)

// stubProvider serves card info from a fixed map, standing in for the
// storage-backed lookup service.
type stubProvider map[string]*cards.CardInfo

func (p stubProvider) CardInfo(name string) (*cards.CardInfo, error) {
	info, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown card %q", name)
	}
	return info, nil
}

func landInfo(name string, produces cards.ColorSet) *cards.CardInfo {
	return &cards.CardInfo{
		Name:     name,
		TypeLine: "Basic Land",
		IsLand:   true,
		Produces: produces,
	}
}

func spellInfo(name string, generic int, pips ...cards.ColorSet) *cards.CardInfo {
	mv := float64(generic + len(pips))
	return &cards.CardInfo{
		Name:      name,
		ManaValue: mv,
		Generic:   generic,
		Pips:      pips,
		TypeLine:  "Sorcery",
	}
}

func rockInfo(name string, generic int, produces cards.ColorSet) *cards.CardInfo {
	return &cards.CardInfo{
		Name:      name,
		ManaValue: float64(generic),
		Generic:   generic,
		TypeLine:  "Artifact",
		IsRock:    true,
		Produces:  produces,
	}
}

func buildDeck(t *testing.T, entries map[string]int) *deck.Decklist {
	t.Helper()
	d, err := deck.FromMap(entries)
	if err != nil {
		t.Fatalf("building decklist: %v", err)
	}
	return d
}

func cardStats(t *testing.T, stats *AggregateStatistics, name string) *CardStatistics {
	t.Helper()
	for i := range stats.Cards {
		if stats.Cards[i].Name == name {
			return &stats.Cards[i]
		}
	}
	t.Fatalf("card %q not in aggregate statistics", name)
	return nil
}
