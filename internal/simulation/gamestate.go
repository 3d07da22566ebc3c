package simulation

import (
	"math/bits"
	"math/rand"
	"strings"

	"github.com/mtgcrafter/manalysis/internal/cards"
)

// manaSource is a land or mana rock in play. Each source adds exactly one
// unit of mana, payable in any of its produced colors, at every Mana Reset
// after it enters (and once immediately, the turn it enters).
type manaSource struct {
	card     int16
	produces cards.ColorSet
}

// GameState is the mutable per-trial state. It is exclusively owned by its
// trial: the turn pipeline threads it through every sub-phase by reference
// and nothing else ever sees it.
//
// Invariant: hand, library, and played always partition the original deck;
// no card is created, duplicated, or lost.
type GameState struct {
	table *deckTable
	turn  int

	hand    []int16
	library []int16
	played  []int16

	sources []manaSource
	pool    []cards.ColorSet // one unit per available source this turn

	firstDraw []uint8 // per distinct card, 0 = never
	firstCast []uint8
	log       *trialLog
}

// newGameState shuffles a fresh copy of the deck with the trial's own random
// stream and deals the opening hand. Opening-hand cards count as drawn on
// turn 1.
func newGameState(table *deckTable, rng *rand.Rand, firstDraw, firstCast []uint8, log *trialLog) *GameState {
	library := make([]int16, table.deckSize)
	copy(library, table.cardRefs)
	rng.Shuffle(len(library), func(i, j int) {
		library[i], library[j] = library[j], library[i]
	})

	handSize := openingHandSize
	if handSize > len(library) {
		handSize = len(library)
	}

	g := &GameState{
		table:     table,
		hand:      library[:handSize:handSize],
		library:   library[handSize:],
		firstDraw: firstDraw,
		firstCast: firstCast,
		log:       log,
	}

	for _, card := range g.hand {
		g.markDrawn(card, 1)
	}
	g.log.openingHand(table, g.hand)

	return g
}

// openingSummary reports the lands dealt in the opening hand and the union
// of colors those lands produce. Valid only before the first turn plays.
func (g *GameState) openingSummary() (lands int, colors cards.ColorSet) {
	for _, card := range g.hand {
		if g.table.isLand[card] {
			lands++
			colors |= g.table.produces[card]
		}
	}
	return lands, colors
}

// playTurn advances the trial by one turn through the fixed sub-phase
// sequence: Draw, Mana Reset, Land Drop, Casting, Turn End.
func (g *GameState) playTurn(turn int) {
	g.turn = turn
	g.log.beginTurn(turn)

	g.draw()
	g.resetMana()
	g.playLand()
	g.castSpells()
	g.endTurn()
}

// draw moves the top library card to hand. An empty library makes this a
// no-op, never an error: library exhaustion is a valid terminal condition.
func (g *GameState) draw() {
	if len(g.library) == 0 {
		return
	}
	card := g.library[0]
	g.library = g.library[1:]
	g.hand = append(g.hand, card)
	g.markDrawn(card, g.turn)
	g.log.drew(g.table, card)
}

// resetMana clears the pool and refills it with one unit per source in play.
func (g *GameState) resetMana() {
	g.pool = g.pool[:0]
	for _, src := range g.sources {
		g.pool = append(g.pool, src.produces)
	}
}

// playLand plays at most one land from hand. It prefers the land that most
// improves missing color coverage; further ties go to the first matching
// land in hand order. The land's mana unit is available immediately.
func (g *GameState) playLand() {
	missing := g.missingColors()

	best := -1
	bestScore := -1
	for pos, card := range g.hand {
		if !g.table.isLand[card] {
			continue
		}
		score := bits.OnesCount8(uint8(g.table.produces[card] & missing))
		if score > bestScore {
			best = pos
			bestScore = score
		}
	}
	if best < 0 {
		return
	}

	card := g.hand[best]
	g.removeFromHand(best)
	g.played = append(g.played, card)
	g.sources = append(g.sources, manaSource{card: card, produces: g.table.produces[card]})
	g.pool = append(g.pool, g.table.produces[card])
	g.markCast(card, g.turn)
	g.log.playedLand(g.table, card)
}

// missingColors returns the colors required by nonland cards in hand that no
// source in play can produce.
func (g *GameState) missingColors() cards.ColorSet {
	var have cards.ColorSet
	for _, src := range g.sources {
		have |= src.produces
	}

	var need cards.ColorSet
	for _, card := range g.hand {
		if !g.table.isLand[card] {
			need |= g.table.pipColors(card)
		}
	}
	return need &^ have
}

// castSpells iterates the hand in fixed priority order (mana producers
// first, then remaining spells ascending by mana value, ties broken by
// stable hand order) and casts everything the pool can pay for.
func (g *GameState) castSpells() {
	order := g.castOrder()
	cast := make(map[int]bool)

	for _, pos := range order {
		card := g.hand[pos]

		generic, pips, twobrids := g.adjustedCost(card)
		remaining, ok := payCost(g.pool, generic, pips, twobrids)
		if !ok {
			continue
		}
		g.pool = remaining

		cast[pos] = true
		g.played = append(g.played, card)
		g.markCast(card, g.turn)

		// A freshly cast rock taps for mana right away, which is why
		// producers lead the priority order.
		if g.table.isRock[card] {
			g.sources = append(g.sources, manaSource{card: card, produces: g.table.produces[card]})
			g.pool = append(g.pool, g.table.produces[card])
		}

		g.log.castSpell(g.table, card, len(g.pool))
	}

	if len(cast) == 0 {
		return
	}
	kept := g.hand[:0]
	for pos, card := range g.hand {
		if !cast[pos] {
			kept = append(kept, card)
		}
	}
	g.hand = kept
}

// castOrder returns hand positions of castable (nonland) cards in casting
// priority order.
func (g *GameState) castOrder() []int {
	var producers, spells []int
	for pos, card := range g.hand {
		if g.table.isLand[card] {
			continue
		}
		if g.table.isRock[card] {
			producers = append(producers, pos)
		} else {
			spells = append(spells, pos)
		}
	}

	byManaValue := func(positions []int) {
		// Insertion sort keeps the tie-break stable on hand order.
		for i := 1; i < len(positions); i++ {
			for j := i; j > 0; j-- {
				a, b := positions[j-1], positions[j]
				if g.table.manaValue[g.hand[a]] <= g.table.manaValue[g.hand[b]] {
					break
				}
				positions[j-1], positions[j] = b, a
			}
		}
	}
	byManaValue(producers)
	byManaValue(spells)

	return append(producers, spells...)
}

// adjustedCost returns the card's cost after applicable reductions. Fixed
// reductions always apply; scaling reductions apply once per qualifying
// permanent already in play; conditional reductions, whose predicates cannot
// be evaluated deterministically from game state, never apply. Reductions
// only shave the generic portion of a cost.
func (g *GameState) adjustedCost(card int16) (generic int, pips, twobrids []cards.ColorSet) {
	generic = g.table.generic[card]
	pips = g.table.pips[card]
	twobrids = g.table.twobrids[card]

	r := g.table.reduction[card]
	if r == nil {
		return generic, pips, twobrids
	}

	switch r.Kind {
	case cards.ReductionFixed:
		generic -= r.Amount
	case cards.ReductionScaling:
		generic -= r.Amount * g.countQualifying(r.Qualifier)
	case cards.ReductionConditional:
		// Unresolvable predicate: treated as inapplicable.
	}
	if generic < 0 {
		generic = 0
	}
	return generic, pips, twobrids
}

// countQualifying counts permanents in play whose type line contains the
// qualifier word.
func (g *GameState) countQualifying(qualifier string) int {
	if qualifier == "" {
		return 0
	}
	count := 0
	for _, card := range g.played {
		if strings.Contains(g.table.typeLine[card], qualifier) {
			count++
		}
	}
	return count
}

// endTurn discards unused mana; it never carries to the next turn.
func (g *GameState) endTurn() {
	g.log.endTurn(len(g.pool))
	g.pool = g.pool[:0]
}

// removeFromHand removes the card at the given hand position, preserving the
// order of the rest. Hand order is a tie-break input, so it must stay stable.
func (g *GameState) removeFromHand(pos int) {
	g.hand = append(g.hand[:pos:pos], g.hand[pos+1:]...)
}

func (g *GameState) markDrawn(card int16, turn int) {
	if g.firstDraw[card] == 0 {
		g.firstDraw[card] = uint8(turn)
	}
}

func (g *GameState) markCast(card int16, turn int) {
	if g.firstCast[card] == 0 {
		g.firstCast[card] = uint8(turn)
	}
}

// cardCount returns the total cards across hand, library, and played. Every
// turn boundary must see it equal the deck size.
func (g *GameState) cardCount() int {
	return len(g.hand) + len(g.library) + len(g.played)
}
