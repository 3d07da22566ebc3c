package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Line format: "4 Lightning Bolt", "4x Lightning Bolt", or a bare card name
// meaning one copy. Trailing set annotations like "(M21) 123" are dropped.
var lineRe = regexp.MustCompile(`^(\d+)[xX]?\s+(.+)$`)

var setAnnotationRe = regexp.MustCompile(`\s+\([A-Z0-9]{2,6}\)(\s+\d+[a-z]?)?$`)

// Parse reads a decklist from its common text form, one card per line.
// Blank lines, comments (# or //), and section headers such as "Deck" or
// "Commander" are skipped. A parse failure on any card line fails the whole
// list; a silently dropped line would corrupt every statistic downstream.
func Parse(input string) (*Decklist, error) {
	d := NewDecklist()

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if isHeader(line) {
			continue
		}

		count := 1
		name := line
		if match := lineRe.FindStringSubmatch(line); match != nil {
			n, err := strconv.Atoi(match[1])
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("line %d: invalid count in %q", i+1, line)
			}
			count = n
			name = strings.TrimSpace(match[2])
		}

		name = setAnnotationRe.ReplaceAllString(name, "")
		if name == "" {
			return nil, fmt.Errorf("line %d: missing card name in %q", i+1, line)
		}

		if err := d.Add(name, count); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}

	if d.Size() == 0 {
		return nil, fmt.Errorf("no cards found in decklist")
	}
	return d, nil
}

func isHeader(line string) bool {
	switch strings.ToLower(strings.TrimSuffix(line, ":")) {
	case "deck", "mainboard", "main", "commander", "sideboard", "companion":
		return true
	}
	return false
}
