package board

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalCell(t *testing.T) {
	assert.Equal(t, 30, FinalCell(TypeShort))
	assert.Equal(t, 72, FinalCell(TypeFull))
}

func TestAdvanceOvershootForfeits(t *testing.T) {
	to, moved := Advance(TypeShort, 28, 5)
	assert.False(t, moved)
	assert.Equal(t, 28, to)

	to, moved = Advance(TypeShort, 28, 2)
	assert.True(t, moved)
	assert.Equal(t, 30, to)

	// Exact landing on the final cell is allowed.
	to, moved = Advance(TypeFull, 70, 2)
	assert.True(t, moved)
	assert.Equal(t, 72, to)
}

func TestShortcutTablesAreSingleHop(t *testing.T) {
	for _, bt := range []Type{TypeShort, TypeFull} {
		final := FinalCell(bt)
		for cell := 1; cell <= final; cell++ {
			s, ok := ShortcutAt(bt, cell)
			if !ok {
				continue
			}
			assert.Equal(t, cell, s.From)
			assert.GreaterOrEqual(t, s.To, 1)
			assert.Less(t, s.To, final, "shortcut must not land on the final cell")
			if s.Kind == KindSnake {
				assert.Less(t, s.To, s.From)
			} else {
				assert.Greater(t, s.To, s.From)
			}
			// Destinations are never shortcut sources themselves.
			_, chained := ShortcutAt(bt, s.To)
			assert.False(t, chained, "board %s cell %d chains to another shortcut", bt, cell)
		}
	}
}

func TestRollDiceClassicRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		roll := RollDice(ModeClassic, rng)
		require.Len(t, roll.Values, 1)
		assert.GreaterOrEqual(t, roll.Total, 1)
		assert.LessOrEqual(t, roll.Total, 6)
		assert.Equal(t, roll.Values[0], roll.Total)
	}
}

func TestRollDiceTriple(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 1000; i++ {
		roll := RollDice(ModeTriple, rng)
		require.Len(t, roll.Values, 3)
		sum := 0
		for _, v := range roll.Values {
			assert.GreaterOrEqual(t, v, 1)
			assert.LessOrEqual(t, v, 6)
			sum += v
		}
		assert.Equal(t, sum, roll.Total)
	}
}

func TestResolveAppliesShortcutOnce(t *testing.T) {
	// Walk a deterministic rng until a roll lands on a shortcut source.
	rng := rand.New(rand.NewSource(7))
	found := false
	for i := 0; i < 200 && !found; i++ {
		out := Resolve(TypeShort, ModeClassic, 1, rng)
		if out.Shortcut != nil {
			found = true
			assert.Equal(t, out.ToBeforeShortcut, out.Shortcut.From)
			assert.Equal(t, out.Shortcut.To, out.To)
			_, chained := ShortcutAt(TypeShort, out.To)
			assert.False(t, chained)
		}
	}
	require.True(t, found, "expected at least one shortcut landing")
}

func TestResolveOvershootKeepsPosition(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		out := Resolve(TypeShort, ModeClassic, 29, rng)
		if out.Dice.Total > 1 {
			assert.False(t, out.Moved)
			assert.Equal(t, 29, out.To)
			assert.Nil(t, out.Shortcut)
			assert.False(t, out.Finished)
		} else {
			assert.True(t, out.Moved)
			assert.Equal(t, 30, out.To)
			assert.True(t, out.Finished)
		}
	}
}
