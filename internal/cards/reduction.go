package cards

import (
	"regexp"
	"strconv"
	"strings"
)

// ReductionKind classifies how a cost-reduction ability behaves.
type ReductionKind string

// Reduction kinds, from most to least predictable.
const (
	// ReductionFixed always applies, e.g. "this spell costs {1} less to cast".
	ReductionFixed ReductionKind = "fixed"

	// ReductionScaling applies once per qualifying permanent in play,
	// e.g. "costs {1} less to cast for each artifact you control".
	ReductionScaling ReductionKind = "scaling"

	// ReductionConditional depends on a predicate that cannot be
	// evaluated deterministically from the simulated game state.
	// The engine treats these as inapplicable rather than guessing.
	ReductionConditional ReductionKind = "conditional"
)

// CostReduction describes a cost-reduction ability detected in oracle text.
// Reductions shave only the generic portion of a cost; colored pips are
// never reduced.
type CostReduction struct {
	Kind   ReductionKind
	Amount int

	// Qualifier is the permanent type counted by scaling reductions
	// ("artifact", "creature", ...). Empty for other kinds.
	Qualifier string

	// Condition is the sentence the reduction was detected in, kept for
	// display purposes.
	Condition string
}

// Detection patterns, tried in order. Scaling patterns come first so that
// "costs {1} less to cast for each artifact you control" is not swallowed
// by the plain fixed pattern.
var reductionPatterns = []struct {
	re   *regexp.Regexp
	kind ReductionKind
}{
	{regexp.MustCompile(`costs? \{?(\d+)\}? less to cast for each (\w+)`), ReductionScaling},
	{regexp.MustCompile(`costs? \{?(\d+)\}? less .* for each (\w+)`), ReductionScaling},
	{regexp.MustCompile(`for each (\w+) [^.]*costs? \{?(\d+)\}? less`), ReductionScaling},
	{regexp.MustCompile(`if [^.]*, [^.]*costs? \{?(\d+)\}? less`), ReductionConditional},
	{regexp.MustCompile(`costs? \{?(\d+)\}? less to cast`), ReductionFixed},
	{regexp.MustCompile(`costs? \{?(\d+)\}? less`), ReductionFixed},
}

// DetectReduction scans oracle text for a self cost-reduction ability and
// returns its descriptor, or nil when none is found. Only the first matching
// ability is reported; multi-ability corner cases are rare enough that the
// dominant reduction is the one that matters for casting estimates.
func DetectReduction(oracleText string) *CostReduction {
	text := strings.ToLower(oracleText)
	if text == "" {
		return nil
	}

	for _, pattern := range reductionPatterns {
		match := pattern.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		loc := pattern.re.FindStringIndex(text)
		reduction := &CostReduction{
			Kind:      pattern.kind,
			Condition: sentenceAround(text, loc[0], loc[1]),
		}

		switch pattern.kind {
		case ReductionScaling:
			// The two scaling pattern shapes put amount and
			// qualifier in opposite capture groups.
			if amount, err := strconv.Atoi(match[1]); err == nil {
				reduction.Amount = amount
				reduction.Qualifier = singular(match[2])
			} else {
				reduction.Amount, _ = strconv.Atoi(match[2])
				reduction.Qualifier = singular(match[1])
			}
		default:
			reduction.Amount, _ = strconv.Atoi(match[1])
		}

		if reduction.Amount == 0 {
			return nil
		}
		return reduction
	}

	return nil
}

// sentenceAround returns the sentence containing text[start:end].
func sentenceAround(text string, start, end int) string {
	from := strings.LastIndexByte(text[:start], '.') + 1
	to := strings.IndexByte(text[end:], '.')
	if to < 0 {
		to = len(text)
	} else {
		to += end
	}
	return strings.TrimSpace(text[from:to])
}

// singular strips a trailing "s" so qualifiers match type-line words
// ("artifacts you control" counts permanents whose type line says Artifact).
func singular(word string) string {
	if len(word) > 3 && strings.HasSuffix(word, "s") {
		return strings.TrimSuffix(word, "s")
	}
	return word
}
