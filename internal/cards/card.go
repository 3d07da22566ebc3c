// Package cards models the card metadata the simulation engine consumes:
// mana costs, color requirements, mana production, and cost-reduction
// abilities parsed from oracle text.
package cards

import (
	"fmt"
	"strconv"
	"strings"
)

// CardInfo is the immutable per-card view the simulation engine works with.
// It is built once per distinct card name before a batch starts and is never
// modified afterwards.
type CardInfo struct {
	// Name is the exact card name as it appears in the decklist.
	Name string

	// ManaValue is the card's converted mana cost. Kept as a float because
	// split and half costs produce fractional values.
	ManaValue float64

	// Generic is the generic portion of the cost in whole mana.
	Generic int

	// Pips holds one entry per colored symbol in the cost. A mono-colored
	// symbol is a single-color set; a hybrid symbol is the set of colors
	// that can pay it.
	Pips []ColorSet

	// Twobrids holds one entry per {2/W}-style symbol: payable by one
	// unit of a listed color or by two generic mana, whichever the pool
	// affords at payment time.
	Twobrids []ColorSet

	// TypeLine is the printed type line, used to count qualifying
	// permanents for scaling cost reductions.
	TypeLine string

	// IsLand reports whether the card is a land.
	IsLand bool

	// IsRock reports whether the card is a nonland permanent that
	// produces mana (mana rocks, mana dorks).
	IsRock bool

	// Produces is the set of colors this card can add when in play.
	// Zero for cards that produce only colorless mana or none at all.
	Produces ColorSet

	// Reduction describes a cost-reduction ability, if any.
	Reduction *CostReduction
}

// IsManaSource reports whether the card contributes mana once in play.
func (c *CardInfo) IsManaSource() bool {
	return c.IsLand || c.IsRock
}

// PipColors returns the union of colors usable by the card's cost,
// including the colored halves of twobrid symbols.
func (c *CardInfo) PipColors() ColorSet {
	var set ColorSet
	for _, pip := range c.Pips {
		set |= pip
	}
	for _, pip := range c.Twobrids {
		set |= pip
	}
	return set
}

// ParseManaCost parses a Scryfall mana cost string such as "{2}{G}{G}" or
// "{1}{W/U}" into its generic portion, colored pips, and twobrid symbols.
//
// Symbols are handled as follows: plain numbers and {C} and {S} count toward
// generic; mono and hybrid color symbols become pips; Phyrexian symbols
// ({G/P}) are treated as their colored half; "twobrid" symbols ({2/W}) are
// kept separate because either half may be the cheaper one to pay at cast
// time; {X} counts as zero.
func ParseManaCost(cost string) (generic int, pips, twobrids []ColorSet, err error) {
	cost = strings.TrimSpace(cost)
	if cost == "" {
		return 0, nil, nil, nil
	}

	for len(cost) > 0 {
		if cost[0] != '{' {
			return 0, nil, nil, fmt.Errorf("malformed mana cost %q", cost)
		}
		end := strings.IndexByte(cost, '}')
		if end < 0 {
			return 0, nil, nil, fmt.Errorf("unterminated symbol in mana cost %q", cost)
		}
		symbol := cost[1:end]
		cost = cost[end+1:]

		g, pip, twobrid, err := parseSymbol(symbol)
		if err != nil {
			return 0, nil, nil, err
		}
		generic += g
		if pip != 0 {
			pips = append(pips, pip)
		}
		if twobrid != 0 {
			twobrids = append(twobrids, twobrid)
		}
	}

	return generic, pips, twobrids, nil
}

// parseSymbol interprets a single mana symbol (the text between braces).
func parseSymbol(symbol string) (generic int, pip, twobrid ColorSet, err error) {
	switch symbol {
	case "X", "Y", "Z":
		return 0, 0, 0, nil
	case "C", "S":
		return 1, 0, 0, nil
	}

	if n, convErr := strconv.Atoi(symbol); convErr == nil {
		if n < 0 {
			return 0, 0, 0, fmt.Errorf("negative mana symbol {%s}", symbol)
		}
		return n, 0, 0, nil
	}

	// Hybrid, Phyrexian, and plain color symbols: collect color halves,
	// note any generic half.
	var set ColorSet
	hasGenericHalf := false
	for _, part := range strings.Split(symbol, "/") {
		if _, convErr := strconv.Atoi(part); convErr == nil {
			hasGenericHalf = true
			continue
		}
		if part == "P" {
			continue
		}
		color := ColorFromLetter(part)
		if color == 0 {
			return 0, 0, 0, fmt.Errorf("unknown mana symbol {%s}", symbol)
		}
		set |= color
	}

	if hasGenericHalf {
		return 0, 0, set, nil
	}
	return 0, set, 0, nil
}
