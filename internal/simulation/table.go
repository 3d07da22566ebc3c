package simulation

import (
	"strings"

	"github.com/mtgcrafter/manalysis/internal/cards"
	"github.com/mtgcrafter/manalysis/internal/deck"
)

// deckTable is the flattened, read-only form of a resolved decklist. Both
// backends share one table per batch: every trial reads from it and no trial
// ever writes to it, which is what lets the parallel backend run all lanes
// without locks.
//
// Cards are identified by their index into these parallel slices. The
// physical deck is the expanded copy list in cardRefs, one entry per copy.
type deckTable struct {
	names     []string
	manaValue []float64
	generic   []int
	pips      [][]cards.ColorSet
	twobrids  [][]cards.ColorSet
	typeLine  []string // lowercased, for scaling-reduction qualifiers
	isLand    []bool
	isRock    []bool
	produces  []cards.ColorSet
	reduction []*cards.CostReduction
	copies    []int

	cardRefs []int16 // physical deck in decklist order
	deckSize int
}

// distinct returns the number of distinct cards in the table.
func (t *deckTable) distinct() int {
	return len(t.names)
}

// newDeckTable resolves every distinct card name through the provider and
// flattens the results. Any unresolvable name fails the batch with a
// DataError before a single trial runs.
func newDeckTable(list *deck.Decklist, provider CardInfoProvider) (*deckTable, error) {
	names := list.Names()
	t := &deckTable{
		names:     make([]string, 0, len(names)),
		manaValue: make([]float64, 0, len(names)),
		generic:   make([]int, 0, len(names)),
		pips:      make([][]cards.ColorSet, 0, len(names)),
		twobrids:  make([][]cards.ColorSet, 0, len(names)),
		typeLine:  make([]string, 0, len(names)),
		isLand:    make([]bool, 0, len(names)),
		isRock:    make([]bool, 0, len(names)),
		produces:  make([]cards.ColorSet, 0, len(names)),
		reduction: make([]*cards.CostReduction, 0, len(names)),
		copies:    make([]int, 0, len(names)),
	}

	for _, name := range names {
		info, err := provider.CardInfo(name)
		if err != nil {
			return nil, &DataError{Name: name, Err: err}
		}
		if info == nil {
			return nil, &DataError{Name: name}
		}

		idx := int16(len(t.names))
		count := list.Count(name)

		t.names = append(t.names, name)
		t.manaValue = append(t.manaValue, info.ManaValue)
		t.generic = append(t.generic, info.Generic)
		t.pips = append(t.pips, info.Pips)
		t.twobrids = append(t.twobrids, info.Twobrids)
		t.typeLine = append(t.typeLine, strings.ToLower(info.TypeLine))
		t.isLand = append(t.isLand, info.IsLand)
		t.isRock = append(t.isRock, info.IsRock)
		t.produces = append(t.produces, info.Produces)
		t.reduction = append(t.reduction, info.Reduction)
		t.copies = append(t.copies, count)

		for i := 0; i < count; i++ {
			t.cardRefs = append(t.cardRefs, idx)
		}
	}

	t.deckSize = len(t.cardRefs)
	return t, nil
}

// pipColors returns the union of colors a card's cost can use, including
// the colored halves of twobrid symbols.
func (t *deckTable) pipColors(card int16) cards.ColorSet {
	var set cards.ColorSet
	for _, pip := range t.pips[card] {
		set |= pip
	}
	for _, pip := range t.twobrids[card] {
		set |= pip
	}
	return set
}
