package simulation

import (
	"math/bits"

	"github.com/mtgcrafter/manalysis/internal/cards"
)

// payCost attempts to pay a cost of generic mana, colored pips, and twobrid
// symbols from the pool. On success it returns the remaining pool (original
// unit order preserved) and true; on failure the pool is untouched and it
// returns nil and false.
//
// Colored pips are matched greedily, most constrained first: pips payable by
// fewer colors are satisfied before flexible ones, and each pip consumes the
// matching unit that produces the fewest colors. Each twobrid then takes a
// matching colored unit when one remains (one unit beats the two-generic
// half), falling back to two generic otherwise. Generic is finally paid from
// the least flexible remaining units. The whole procedure is deterministic,
// which both backends rely on for identical tie-breaking.
func payCost(pool []cards.ColorSet, generic int, pips, twobrids []cards.ColorSet) ([]cards.ColorSet, bool) {
	if len(pool) < generic+len(pips)+len(twobrids) {
		return nil, false
	}

	used := make([]bool, len(pool))

	for _, pip := range orderPips(pips) {
		best := -1
		bestColors := 6
		for i, unit := range pool {
			if used[i] || unit&pip == 0 {
				continue
			}
			if colors := bits.OnesCount8(uint8(unit)); colors < bestColors {
				best = i
				bestColors = colors
			}
		}
		if best < 0 {
			return nil, false
		}
		used[best] = true
	}

	for _, pip := range orderPips(twobrids) {
		best := -1
		bestColors := 6
		for i, unit := range pool {
			if used[i] || unit&pip == 0 {
				continue
			}
			if colors := bits.OnesCount8(uint8(unit)); colors < bestColors {
				best = i
				bestColors = colors
			}
		}
		if best < 0 {
			generic += 2
			continue
		}
		used[best] = true
	}

	for paid := 0; paid < generic; paid++ {
		best := -1
		bestColors := 7
		for i, unit := range pool {
			if used[i] {
				continue
			}
			if colors := bits.OnesCount8(uint8(unit)); colors < bestColors {
				best = i
				bestColors = colors
			}
		}
		if best < 0 {
			return nil, false
		}
		used[best] = true
	}

	remaining := make([]cards.ColorSet, 0, len(pool))
	for i, unit := range pool {
		if !used[i] {
			remaining = append(remaining, unit)
		}
	}
	return remaining, true
}

// orderPips returns the pips sorted by ascending color flexibility without
// disturbing the caller's slice. Stable for equal flexibility.
func orderPips(pips []cards.ColorSet) []cards.ColorSet {
	if len(pips) < 2 {
		return pips
	}
	ordered := make([]cards.ColorSet, len(pips))
	copy(ordered, pips)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0; j-- {
			if bits.OnesCount8(uint8(ordered[j-1])) <= bits.OnesCount8(uint8(ordered[j])) {
				break
			}
			ordered[j-1], ordered[j] = ordered[j], ordered[j-1]
		}
	}
	return ordered
}
