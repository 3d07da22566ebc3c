// Package deck provides the decklist model and text-format parsing.
package deck

import (
	"fmt"
	"sort"
)

// Decklist maps card names to copy counts while preserving a deterministic
// card order. The order is first-appearance order for parsed lists, which
// keeps simulation output stable across runs.
type Decklist struct {
	counts map[string]int
	names  []string
}

// NewDecklist creates an empty decklist.
func NewDecklist() *Decklist {
	return &Decklist{counts: make(map[string]int)}
}

// Add adds count copies of the named card. Adding to an existing entry
// increases its count; the card keeps its original position.
func (d *Decklist) Add(name string, count int) error {
	if name == "" {
		return fmt.Errorf("card name cannot be empty")
	}
	if count <= 0 {
		return fmt.Errorf("card %q: count must be positive, got %d", name, count)
	}
	if _, ok := d.counts[name]; !ok {
		d.names = append(d.names, name)
	}
	d.counts[name] += count
	return nil
}

// Count returns the number of copies of the named card.
func (d *Decklist) Count(name string) int {
	return d.counts[name]
}

// Names returns the distinct card names in deck order.
func (d *Decklist) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Size returns the total number of cards including duplicates.
func (d *Decklist) Size() int {
	total := 0
	for _, count := range d.counts {
		total += count
	}
	return total
}

// Distinct returns the number of distinct card names.
func (d *Decklist) Distinct() int {
	return len(d.names)
}

// FromMap builds a decklist from a name-to-count map. Card order is the
// sorted name order, since maps carry none of their own.
func FromMap(counts map[string]int) (*Decklist, error) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	d := NewDecklist()
	for _, name := range names {
		if err := d.Add(name, counts[name]); err != nil {
			return nil, err
		}
	}
	return d, nil
}
