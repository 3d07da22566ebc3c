package cards

import (
	"fmt"
	"regexp"
	"strings"
)

// RawCard is the provider-neutral shape card metadata arrives in, whether
// from the local cache or straight from Scryfall.
type RawCard struct {
	Name         string
	ManaCost     string
	ManaValue    float64
	TypeLine     string
	OracleText   string
	ProducedMana []string
}

// Phrases that mark a card as a mana producer when the data source does not
// report produced mana explicitly.
var manaKeywords = []string{
	"add {",
	"add one mana",
	"add two mana",
	"add three mana",
	"add any",
	"add that much",
	"add mana",
}

var (
	addClauseRe = regexp.MustCompile(`add[^.\n]*`)
	symbolRe    = regexp.MustCompile(`\{([wubrg])\}`)
)

// Build derives the engine-facing CardInfo from raw card metadata.
func Build(raw *RawCard) (*CardInfo, error) {
	generic, pips, twobrids, err := ParseManaCost(raw.ManaCost)
	if err != nil {
		return nil, fmt.Errorf("card %q: %w", raw.Name, err)
	}

	info := &CardInfo{
		Name:      raw.Name,
		ManaValue: raw.ManaValue,
		Generic:   generic,
		Pips:      pips,
		Twobrids:  twobrids,
		TypeLine:  raw.TypeLine,
		IsLand:    isLandType(raw.TypeLine),
		Produces:  ParseColors(raw.ProducedMana),
		Reduction: DetectReduction(raw.OracleText),
	}

	producer := info.Produces != 0 || producesManaText(raw.OracleText)
	if producer {
		if info.Produces == 0 {
			info.Produces = producedColorsFromText(raw.OracleText)
		}
		if !info.IsLand {
			info.IsRock = true
		}
	}

	return info, nil
}

func isLandType(typeLine string) bool {
	return strings.Contains(strings.ToLower(typeLine), "land")
}

func producesManaText(oracleText string) bool {
	text := strings.ToLower(oracleText)
	for _, keyword := range manaKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// producedColorsFromText recovers produced colors from oracle text for data
// sources without a produced_mana field. "Any color" wording produces all
// five; otherwise each added symbol contributes its color. A producer whose
// colors cannot be recovered stays colorless and only pays generic costs.
func producedColorsFromText(oracleText string) ColorSet {
	text := strings.ToLower(oracleText)
	if strings.Contains(text, "mana of any color") || strings.Contains(text, "mana of any one color") {
		return AllColors
	}

	var set ColorSet
	for _, clause := range addClauseRe.FindAllString(text, -1) {
		for _, match := range symbolRe.FindAllStringSubmatch(clause, -1) {
			set |= ColorFromLetter(strings.ToUpper(match[1]))
		}
	}
	return set
}
