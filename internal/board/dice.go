package board

import "math/rand"

// DiceMode controls how a turn's dice are rolled.
type DiceMode string

const (
	// ModeClassic rolls a single d6.
	ModeClassic DiceMode = "classic"
	// ModeFast rolls a single d6; pace comes from playing the short board.
	ModeFast DiceMode = "fast"
	// ModeTriple rolls three d6 and moves by their sum.
	ModeTriple DiceMode = "triple"
)

// ValidDiceMode reports whether m names a known dice mode.
func ValidDiceMode(m DiceMode) bool {
	return m == ModeClassic || m == ModeFast || m == ModeTriple
}

// DiceRoll carries the total movement plus the individual die values so
// clients can animate each die.
type DiceRoll struct {
	Total  int   `json:"total"`
	Values []int `json:"values"`
}

// RollDice draws the dice for one turn from rng.
func RollDice(mode DiceMode, rng *rand.Rand) DiceRoll {
	n := 1
	if mode == ModeTriple {
		n = 3
	}
	roll := DiceRoll{Values: make([]int, n)}
	for i := range roll.Values {
		roll.Values[i] = rng.Intn(6) + 1
		roll.Total += roll.Values[i]
	}
	return roll
}

// MoveOutcome is the full result of resolving one roll from a cell.
type MoveOutcome struct {
	Dice             DiceRoll  `json:"dice"`
	From             int       `json:"from"`
	ToBeforeShortcut int       `json:"toBeforeShortcut"`
	Shortcut         *Shortcut `json:"shortcut,omitempty"`
	To               int       `json:"to"`
	Moved            bool      `json:"moved"`
	Finished         bool      `json:"finished"`
}

// Resolve rolls the dice and computes the landing cell on board t starting
// from cell from.
func Resolve(t Type, mode DiceMode, from int, rng *rand.Rand) MoveOutcome {
	return Apply(t, from, RollDice(mode, rng))
}

// Apply computes the landing cell for an already-rolled set of dice. The
// shortcut at the landing cell, if any, is applied exactly once; the shortcut
// destination is never looked up again.
func Apply(t Type, from int, roll DiceRoll) MoveOutcome {
	out := MoveOutcome{Dice: roll, From: from}
	raw, moved := Advance(t, from, out.Dice.Total)
	out.ToBeforeShortcut = raw
	out.To = raw
	out.Moved = moved
	if moved {
		if s, ok := ShortcutAt(t, raw); ok {
			out.Shortcut = &s
			out.To = s.To
		}
	}
	out.Finished = out.To == FinalCell(t)
	return out
}
