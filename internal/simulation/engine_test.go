package simulation

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/deck"
)

func TestRunSanityBound(t *testing.T) {
	// 39 lands and a single one-mana spell: whenever the spell is drawn
	// on turn 1 there is always a land to play, so it must be castable
	// immediately in essentially every such trial.
	provider := stubProvider{
		"Mountain": landInfo("Mountain", cards.Red),
		"Shock":    spellInfo("Shock", 0, cards.Red),
	}
	list := buildDeck(t, map[string]int{"Mountain": 39, "Shock": 1})

	stats, err := Run(context.Background(), list, provider, Options{Trials: 1000, Seed: 7})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	shock := cardStats(t, stats, "Shock")
	if shock.DrawnTrials == 0 {
		t.Fatal("Shock was never drawn across 1000 trials")
	}
	if shock.CastPctByTurn[0] < 99 {
		t.Errorf("cast-by-turn-1 = %.1f%%, want >= 99%%", shock.CastPctByTurn[0])
	}
}

func TestRunZeroManaSupply(t *testing.T) {
	// No lands and nothing cheaper than two mana: nothing can ever be
	// cast, and the trials complete with degenerate statistics rather
	// than an error.
	provider := stubProvider{
		"Bear":  spellInfo("Bear", 1, cards.Green),
		"Giant": spellInfo("Giant", 3, cards.Red),
	}
	list := buildDeck(t, map[string]int{"Bear": 20, "Giant": 20})

	stats, err := Run(context.Background(), list, provider, Options{Trials: 1000, Seed: 11})
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	for _, card := range stats.Cards {
		if card.CastTrials != 0 || card.CastPct != 0 {
			t.Errorf("card %s: cast %d trials (%.1f%%), want 0", card.Name, card.CastTrials, card.CastPct)
		}
		if card.EarliestCastTurn != 0 {
			t.Errorf("card %s: earliest cast turn = %d, want 0", card.Name, card.EarliestCastTurn)
		}
	}
	if len(stats.NeverCast) != 2 {
		t.Errorf("NeverCast = %v, want both cards", stats.NeverCast)
	}
}

func TestRunOpeningHandStatistics(t *testing.T) {
	t.Run("All lands", func(t *testing.T) {
		provider := stubProvider{"Forest": landInfo("Forest", cards.Green)}
		list := buildDeck(t, map[string]int{"Forest": 40})

		stats, err := Run(context.Background(), list, provider, Options{Trials: 200, Seed: 21})
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}

		hand := stats.OpeningHand
		if hand.AvgLands != 7 {
			t.Errorf("AvgLands = %v, want 7 for an all-land deck", hand.AvgLands)
		}
		if hand.NoLandPct != 0 {
			t.Errorf("NoLandPct = %v, want 0", hand.NoLandPct)
		}
		want := [5]float64{0, 0, 0, 0, 100}
		if hand.ColorPct != want {
			t.Errorf("ColorPct = %v, want green in every hand", hand.ColorPct)
		}
	})

	t.Run("No lands", func(t *testing.T) {
		provider := stubProvider{"Bear": spellInfo("Bear", 1, cards.Green)}
		list := buildDeck(t, map[string]int{"Bear": 40})

		stats, err := Run(context.Background(), list, provider, Options{Trials: 200, Seed: 21})
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}

		hand := stats.OpeningHand
		if hand.AvgLands != 0 || hand.NoLandPct != 100 {
			t.Errorf("AvgLands = %v, NoLandPct = %v, want 0 and 100", hand.AvgLands, hand.NoLandPct)
		}
		if hand.ColorPct != ([5]float64{}) {
			t.Errorf("ColorPct = %v, want all zero", hand.ColorPct)
		}
	})
}

func TestRunDeterminism(t *testing.T) {
	provider := testDeckProvider()
	list := testDecklist(t)

	opts := Options{Trials: 200, Seed: 42}
	first, err := Run(context.Background(), list, provider, opts)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	second, err := Run(context.Background(), list, provider, opts)
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("identical seed and options produced different aggregate statistics")
	}
}

func TestReproducibleSampling(t *testing.T) {
	provider := testDeckProvider()
	list := testDecklist(t)

	opts := Options{Trials: 1, Seed: 99, SampleIndices: []int{0}}

	var logs []string
	for i := 0; i < 2; i++ {
		stats, err := Run(context.Background(), list, provider, opts)
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}
		if len(stats.SampleLogs) != 1 {
			t.Fatalf("len(SampleLogs) = %d, want 1", len(stats.SampleLogs))
		}
		logs = append(logs, stats.SampleLogs[0])
	}

	if logs[0] != logs[1] {
		t.Error("repeated invocations produced different sample logs")
	}
	if !strings.Contains(logs[0], "Opening hand:") || !strings.Contains(logs[0], "Turn  1:") {
		t.Errorf("sample log missing expected structure:\n%s", logs[0])
	}
}

func TestRunConfigErrors(t *testing.T) {
	provider := stubProvider{"Mountain": landInfo("Mountain", cards.Red)}
	list := buildDeck(t, map[string]int{"Mountain": 40})

	tests := []struct {
		name string
		opts Options
	}{
		{name: "Negative trials", opts: Options{Trials: -5}},
		{name: "Sample index out of range", opts: Options{Trials: 10, SampleIndices: []int{10}}},
		{name: "Negative sample index", opts: Options{Trials: 10, SampleIndices: []int{-1}}},
		{name: "Negative workers", opts: Options{Trials: 10, Workers: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), list, provider, tt.opts)
			var configErr *ConfigError
			if !errors.As(err, &configErr) {
				t.Errorf("Run() error = %v, want ConfigError", err)
			}
		})
	}
}

func TestRunDataError(t *testing.T) {
	provider := stubProvider{"Mountain": landInfo("Mountain", cards.Red)}
	list := buildDeck(t, map[string]int{"Mountain": 39, "Misspelled Bolt": 1})

	_, err := Run(context.Background(), list, provider, Options{Trials: 10})
	var dataErr *DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("Run() error = %v, want DataError", err)
	}
	if dataErr.Name != "Misspelled Bolt" {
		t.Errorf("DataError.Name = %q, want %q", dataErr.Name, "Misspelled Bolt")
	}
}

func TestRunDegenerateDecks(t *testing.T) {
	t.Run("Single card deck", func(t *testing.T) {
		provider := stubProvider{"Mountain": landInfo("Mountain", cards.Red)}
		list := buildDeck(t, map[string]int{"Mountain": 1})

		stats, err := Run(context.Background(), list, provider, Options{Trials: 50, Seed: 3})
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}
		mountain := cardStats(t, stats, "Mountain")
		if mountain.DrawPct != 100 {
			t.Errorf("DrawPct = %.1f, want 100 (the only card is always in the opening hand)", mountain.DrawPct)
		}
	})

	t.Run("Free spell needs no mana", func(t *testing.T) {
		provider := stubProvider{"Ornithopter": spellInfo("Ornithopter", 0)}
		list := buildDeck(t, map[string]int{"Ornithopter": 10})

		stats, err := Run(context.Background(), list, provider, Options{Trials: 50, Seed: 3})
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}
		thopter := cardStats(t, stats, "Ornithopter")
		if thopter.EarliestCastTurn != 1 {
			t.Errorf("EarliestCastTurn = %d, want 1", thopter.EarliestCastTurn)
		}
		if thopter.CastPct != 100 {
			t.Errorf("CastPct = %.1f, want 100", thopter.CastPct)
		}
	})
}

func TestRunCancellation(t *testing.T) {
	provider := testDeckProvider()
	list := testDecklist(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, list, provider, Options{Trials: 100}); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() with cancelled context: error = %v, want context.Canceled", err)
	}
}

// testDeckProvider returns a small but representative deck: lands of two
// colors, a rock, a dork, cheap and expensive spells, and a card with an
// affinity-style scaling reduction.
func testDeckProvider() stubProvider {
	affinity := spellInfo("Thought Monitor", 4, cards.Blue)
	affinity.Reduction = &cards.CostReduction{
		Kind:      cards.ReductionScaling,
		Amount:    1,
		Qualifier: "artifact",
	}

	return stubProvider{
		"Forest":          landInfo("Forest", cards.Green),
		"Island":          landInfo("Island", cards.Blue),
		"Arcane Signet":   rockInfo("Arcane Signet", 2, cards.Green|cards.Blue),
		"Llanowar Elves":  spellInfo("Llanowar Elves", 0, cards.Green),
		"Counsel":         spellInfo("Counsel", 1, cards.Blue),
		"Nissa":           spellInfo("Nissa", 2, cards.Green, cards.Green),
		"Leviathan":       spellInfo("Leviathan", 6, cards.Blue, cards.Blue),
		"Thought Monitor": affinity,
	}
}

func testDecklist(t *testing.T) *deck.Decklist {
	return buildDeck(t, map[string]int{
		"Forest":          9,
		"Island":          8,
		"Arcane Signet":   4,
		"Llanowar Elves":  4,
		"Counsel":         4,
		"Nissa":           4,
		"Leviathan":       4,
		"Thought Monitor": 3,
	})
}
