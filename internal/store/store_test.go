package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snakes-arrows/internal/board"
	"snakes-arrows/internal/room"
)

func sampleRoom() *room.GameRoom {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &room.GameRoom{
		ID:         "r1",
		Code:       "ABC234",
		HostUserID: "u1",
		BoardType:  board.TypeShort,
		Status:     room.StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
		Players: []room.RoomPlayer{{
			ID: "p1", RoomID: "r1", UserID: "u1", DisplayName: "Alice",
			Role: room.RoleHost, TokenColor: "red", JoinedAt: now, Connection: room.ConnOnline,
		}},
		Game: room.GameState{
			Players: map[string]*room.PlayerState{
				"u1": {CurrentCell: 1, Status: room.PlayerPlaying},
			},
			Settings: room.Settings{DiceMode: board.ModeClassic, HostCanPause: true},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	r := sampleRoom()

	require.NoError(t, s.Save(ctx, r))

	got, ok, err := s.Load(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r, got)

	id, ok, err := s.IDByCode(ctx, "ABC234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", id)

	_, ok, err = s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStoreDoesNotAliasCaller(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	r := sampleRoom()
	require.NoError(t, s.Save(ctx, r))

	// Mutating the caller's copy after Save must not leak into the cache.
	r.Game.Players["u1"].CurrentCell = 99
	got, _, err := s.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Game.Players["u1"].CurrentCell)

	// Mutating a loaded copy must not leak either.
	got.Players[0].DisplayName = "Mallory"
	again, _, err := s.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", again.Players[0].DisplayName)
}

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb, 0)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()
	r := sampleRoom()
	r.Game.MoveHistory = []room.MoveRecord{{
		ID: "m1", UserID: "u1", FromCell: 1, ToCell: 11,
		Dice:     board.DiceRoll{Total: 2, Values: []int{2}},
		Shortcut: &board.Shortcut{From: 3, To: 11, Kind: board.KindArrow},
		Moved:    true, Timestamp: r.CreatedAt,
	}}
	r.Game.Notes.Host = map[int]map[string][]string{11: {"u1": {"landed early"}}}

	require.NoError(t, s.Save(ctx, r))

	got, ok, err := s.Load(ctx, "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r, got)

	id, ok, err := s.IDByCode(ctx, "ABC234")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", id)
}

func TestRedisStoreMissing(t *testing.T) {
	s := newRedisTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Load(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.IDByCode(ctx, "NOPE")
	require.NoError(t, err)
	assert.False(t, ok)
}
