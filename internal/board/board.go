package board

// Type selects one of the static board layouts.
type Type string

const (
	TypeShort Type = "short"
	TypeFull  Type = "full"
)

const (
	shortFinalCell = 30
	fullFinalCell  = 72
)

// FinalCell returns the last cell of a board; landing there finishes the player.
func FinalCell(t Type) int {
	if t == TypeFull {
		return fullFinalCell
	}
	return shortFinalCell
}

// Valid reports whether t names a known layout.
func Valid(t Type) bool {
	return t == TypeShort || t == TypeFull
}

type ShortcutKind string

const (
	KindSnake ShortcutKind = "snake"
	KindArrow ShortcutKind = "arrow"
)

// Shortcut moves a token from its landing cell to another cell. Snakes move
// backward, arrows forward. A shortcut destination is never itself a shortcut
// source, and shortcuts are applied at most once per landing.
type Shortcut struct {
	From int          `json:"from"`
	To   int          `json:"to"`
	Kind ShortcutKind `json:"kind"`
}

var shortShortcuts = map[int]Shortcut{
	3:  {From: 3, To: 11, Kind: KindArrow},
	6:  {From: 6, To: 14, Kind: KindArrow},
	9:  {From: 9, To: 21, Kind: KindArrow},
	18: {From: 18, To: 26, Kind: KindArrow},
	24: {From: 24, To: 29, Kind: KindArrow},
	12: {From: 12, To: 5, Kind: KindSnake},
	16: {From: 16, To: 8, Kind: KindSnake},
	22: {From: 22, To: 13, Kind: KindSnake},
	28: {From: 28, To: 19, Kind: KindSnake},
}

var fullShortcuts = map[int]Shortcut{
	10: {From: 10, To: 23, Kind: KindArrow},
	17: {From: 17, To: 69, Kind: KindArrow},
	20: {From: 20, To: 32, Kind: KindArrow},
	22: {From: 22, To: 60, Kind: KindArrow},
	27: {From: 27, To: 41, Kind: KindArrow},
	28: {From: 28, To: 50, Kind: KindArrow},
	37: {From: 37, To: 66, Kind: KindArrow},
	45: {From: 45, To: 67, Kind: KindArrow},
	46: {From: 46, To: 62, Kind: KindArrow},
	54: {From: 54, To: 68, Kind: KindArrow},
	12: {From: 12, To: 8, Kind: KindSnake},
	16: {From: 16, To: 4, Kind: KindSnake},
	24: {From: 24, To: 7, Kind: KindSnake},
	29: {From: 29, To: 6, Kind: KindSnake},
	44: {From: 44, To: 9, Kind: KindSnake},
	52: {From: 52, To: 35, Kind: KindSnake},
	55: {From: 55, To: 3, Kind: KindSnake},
	61: {From: 61, To: 13, Kind: KindSnake},
	63: {From: 63, To: 2, Kind: KindSnake},
}

// ShortcutAt looks up the shortcut starting at cell, if any.
func ShortcutAt(t Type, cell int) (Shortcut, bool) {
	var table map[int]Shortcut
	if t == TypeFull {
		table = fullShortcuts
	} else {
		table = shortShortcuts
	}
	s, ok := table[cell]
	return s, ok
}

// Advance computes the raw landing cell for a dice total. A total that would
// carry the token past the final cell forfeits the move: the token stays put
// and moved is false.
func Advance(t Type, from, total int) (to int, moved bool) {
	final := FinalCell(t)
	next := from + total
	if next > final {
		return from, false
	}
	return next, true
}
