package cards

import "strings"

// ColorSet is a bitmask over the five mana colors. The zero value means
// colorless: a mana unit with an empty ColorSet can only pay generic costs.
type ColorSet uint8

// Individual colors in WUBRG order.
const (
	White ColorSet = 1 << iota
	Blue
	Black
	Red
	Green
)

// AllColors is the set of all five colors.
const AllColors = White | Blue | Black | Red | Green

// WUBRG lists the five colors in canonical order, for callers that index
// per-color tallies.
var WUBRG = [5]ColorSet{White, Blue, Black, Red, Green}

var colorLetters = []struct {
	color  ColorSet
	letter string
}{
	{White, "W"},
	{Blue, "U"},
	{Black, "B"},
	{Red, "R"},
	{Green, "G"},
}

// ColorFromLetter returns the color for a single WUBRG letter,
// or 0 for anything else.
func ColorFromLetter(letter string) ColorSet {
	for _, cl := range colorLetters {
		if cl.letter == letter {
			return cl.color
		}
	}
	return 0
}

// ParseColors converts a slice of WUBRG letters (the form Scryfall uses for
// color_identity and produced_mana) into a ColorSet. Unknown letters, such
// as "C" for colorless, are ignored.
func ParseColors(letters []string) ColorSet {
	var set ColorSet
	for _, letter := range letters {
		set |= ColorFromLetter(strings.ToUpper(letter))
	}
	return set
}

// Contains reports whether the set contains every color in other.
func (s ColorSet) Contains(other ColorSet) bool {
	return s&other == other
}

// Count returns the number of colors in the set.
func (s ColorSet) Count() int {
	count := 0
	for _, cl := range colorLetters {
		if s&cl.color != 0 {
			count++
		}
	}
	return count
}

// String returns the set as WUBRG letters, or "C" for the empty set.
func (s ColorSet) String() string {
	if s == 0 {
		return "C"
	}
	var b strings.Builder
	for _, cl := range colorLetters {
		if s&cl.color != 0 {
			b.WriteString(cl.letter)
		}
	}
	return b.String()
}
