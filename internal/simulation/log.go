package simulation

import (
	"fmt"
	"strings"
)

// trialLog builds the human-readable turn-by-turn log for sampled trials.
// A nil *trialLog is valid and records nothing, so the turn pipeline never
// has to branch on whether the trial is sampled.
type trialLog struct {
	b        strings.Builder
	segments []string
	turn     int
}

func newTrialLog(trial, trials int) *trialLog {
	log := &trialLog{}
	fmt.Fprintf(&log.b, "Sample game %d of %d\n", trial+1, trials)
	return log
}

func (l *trialLog) openingHand(table *deckTable, hand []int16) {
	if l == nil {
		return
	}
	names := make([]string, len(hand))
	for i, card := range hand {
		names[i] = table.names[card]
	}
	fmt.Fprintf(&l.b, "Opening hand: %s\n", strings.Join(names, ", "))
}

func (l *trialLog) beginTurn(turn int) {
	if l == nil {
		return
	}
	l.turn = turn
	l.segments = l.segments[:0]
}

func (l *trialLog) drew(table *deckTable, card int16) {
	if l == nil {
		return
	}
	l.segments = append(l.segments, "drew "+table.names[card])
}

func (l *trialLog) playedLand(table *deckTable, card int16) {
	if l == nil {
		return
	}
	l.segments = append(l.segments, "played "+table.names[card])
}

func (l *trialLog) castSpell(table *deckTable, card int16, poolLeft int) {
	if l == nil {
		return
	}
	l.segments = append(l.segments, fmt.Sprintf("cast %s (%d mana left)", table.names[card], poolLeft))
}

func (l *trialLog) endTurn(unusedMana int) {
	if l == nil {
		return
	}
	if unusedMana > 0 {
		l.segments = append(l.segments, fmt.Sprintf("%d mana unspent", unusedMana))
	}
	line := "no action"
	if len(l.segments) > 0 {
		line = strings.Join(l.segments, "; ")
	}
	fmt.Fprintf(&l.b, "Turn %2d: %s\n", l.turn, line)
}

func (l *trialLog) String() string {
	if l == nil {
		return ""
	}
	return l.b.String()
}
