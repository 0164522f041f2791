package room

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"snakes-arrows/internal/board"
	"snakes-arrows/internal/config"
)

// Store persists room aggregates. Load must hand back an instance the caller
// may freely mutate, and Save must not retain the passed value.
type Store interface {
	Load(ctx context.Context, id string) (*GameRoom, bool, error)
	IDByCode(ctx context.Context, code string) (string, bool, error)
	Save(ctx context.Context, r *GameRoom) error
}

// Manager is the authoritative Room State Store. Every mutation on a given
// room id runs under that room's mutex, so no two commands interleave their
// read-modify-write of the same aggregate. It knows nothing about transport;
// callers broadcast the snapshots it returns.
type Manager struct {
	store Store
	cfg   config.Config
	log   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
	// rollFn exists so tests can pin dice outcomes.
	rollFn func(mode board.DiceMode) board.DiceRoll

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(s Store, cfg config.Config, log *zap.Logger) *Manager {
	m := &Manager{
		store: s,
		cfg:   cfg,
		log:   log.Named("room"),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		locks: make(map[string]*sync.Mutex),
	}
	m.rollFn = func(mode board.DiceMode) board.DiceRoll {
		m.rngMu.Lock()
		defer m.rngMu.Unlock()
		return board.RollDice(mode, m.rng)
	}
	return m
}

func (m *Manager) lockRoom(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// touch bumps UpdatedAt, keeping it strictly increasing even when the clock
// does not advance between mutations.
func touch(r *GameRoom) {
	now := time.Now().UTC()
	if !now.After(r.UpdatedAt) {
		now = r.UpdatedAt.Add(time.Nanosecond)
	}
	r.UpdatedAt = now
}

// withRoom runs fn inside the room's critical section and persists the result.
// If fn errors the aggregate is not saved, so a failed command has no
// observable side effect.
func (m *Manager) withRoom(ctx context.Context, roomID string, fn func(r *GameRoom) error) (*GameRoom, error) {
	unlock := m.lockRoom(roomID)
	defer unlock()

	r, ok, err := m.store.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := fn(r); err != nil {
		return nil, err
	}
	touch(r)
	if err := m.store.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

const codeLetters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (m *Manager) randCode(n int) string {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = codeLetters[m.rng.Intn(len(codeLetters))]
	}
	return string(b)
}

// CreateRoom builds a room with the creator seated as host and persists it.
func (m *Manager) CreateRoom(ctx context.Context, userID, displayName string, bt board.Type, mode board.DiceMode) (*GameRoom, error) {
	if !board.Valid(bt) {
		bt = board.TypeShort
	}
	if !board.ValidDiceMode(mode) {
		mode = board.DiceMode(m.cfg.DefaultDiceMode)
		if !board.ValidDiceMode(mode) {
			mode = board.ModeClassic
		}
	}
	now := time.Now().UTC()
	r := &GameRoom{
		ID:         uuid.NewString(),
		Code:       m.randCode(6),
		HostUserID: userID,
		BoardType:  bt,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
		Game: GameState{
			Players: make(map[string]*PlayerState),
			Settings: Settings{
				DiceMode:              mode,
				AllowHostCloseAnyCard: m.cfg.AllowHostCloseCard,
				HostCanPause:          m.cfg.HostCanPause,
			},
		},
	}
	seatPlayer(r, userID, displayName, RoleHost)
	if err := m.store.Save(ctx, r); err != nil {
		return nil, err
	}
	m.log.Info("room created",
		zap.String("room_id", r.ID),
		zap.String("code", r.Code),
		zap.String("host", userID),
		zap.String("board", string(bt)))
	return r, nil
}

// GetRoom returns a snapshot by room id.
func (m *Manager) GetRoom(ctx context.Context, roomID string) (*GameRoom, error) {
	r, ok, err := m.store.Load(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// GetRoomByCode returns a snapshot by shareable room code.
func (m *Manager) GetRoomByCode(ctx context.Context, code string) (*GameRoom, error) {
	id, ok, err := m.store.IDByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomNotFound
	}
	return m.GetRoom(ctx, id)
}

func seatPlayer(r *GameRoom, userID, displayName string, role Role) *RoomPlayer {
	r.Players = append(r.Players, RoomPlayer{
		ID:          uuid.NewString(),
		RoomID:      r.ID,
		UserID:      userID,
		DisplayName: displayName,
		Role:        role,
		TokenColor:  pickColor(r),
		JoinedAt:    time.Now().UTC(),
		Connection:  ConnOnline,
	})
	r.Game.Players[userID] = &PlayerState{CurrentCell: 1, Status: PlayerPlaying}
	return &r.Players[len(r.Players)-1]
}

// pickColor takes the first palette color not used by a current player.
func pickColor(r *GameRoom) string {
	used := make(map[string]bool, len(r.Players))
	for i := range r.Players {
		used[r.Players[i].TokenColor] = true
	}
	for _, c := range config.TokenColors {
		if !used[c] {
			return c
		}
	}
	return config.TokenColors[len(r.Players)%len(config.TokenColors)]
}

// JoinRoom seats a user or, if they already have a seat, reconnects them.
func (m *Manager) JoinRoom(ctx context.Context, roomID, userID, displayName string) (*GameRoom, error) {
	return m.withRoom(ctx, roomID, func(r *GameRoom) error {
		if p := r.PlayerByUser(userID); p != nil {
			p.Connection = ConnOnline
			if displayName != "" {
				p.DisplayName = displayName
			}
			return nil
		}
		if len(r.Players) >= m.cfg.MaxPlayers {
			return ErrRoomFull
		}
		role := RolePlayer
		if r.HostUserID == "" {
			role = RoleHost
			r.HostUserID = userID
		}
		seatPlayer(r, userID, displayName, role)
		return nil
	})
}

// RollDice resolves the current player's turn: dice, movement, shortcut,
// history append and turn advancement. Returns the move plus the snapshot.
func (m *Manager) RollDice(ctx context.Context, roomID, userID string) (MoveRecord, *GameRoom, error) {
	var record MoveRecord
	snap, err := m.withRoom(ctx, roomID, func(r *GameRoom) error {
		if r.Status != StatusInProgress {
			return ErrRoomNotActive
		}
		if r.Game.CurrentTurnPlayerID != userID {
			return ErrNotYourTurn
		}
		ps := r.Game.Players[userID]
		if ps == nil {
			return ErrNotYourTurn
		}

		out := board.Apply(r.BoardType, ps.CurrentCell, m.rollFn(r.Game.Settings.DiceMode))
		record = MoveRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			FromCell:  out.From,
			ToCell:    out.To,
			Dice:      out.Dice,
			Shortcut:  out.Shortcut,
			Moved:     out.Moved,
			Timestamp: time.Now().UTC(),
		}
		r.Game.MoveHistory = append(r.Game.MoveHistory, record)

		ps.CurrentCell = out.To
		if out.Finished {
			ps.Status = PlayerFinished
		}
		if out.Moved {
			r.Game.ActiveCard = &ActiveCard{Cell: out.To, UserID: userID}
		}

		r.Game.AllFinished = allFinished(r)
		r.Game.CurrentTurnPlayerID = nextTurn(r, userID)
		if r.Game.AllFinished && m.cfg.AutoFinish {
			r.Status = StatusFinished
		}
		return nil
	})
	if err != nil {
		return MoveRecord{}, nil, err
	}
	m.log.Debug("dice rolled",
		zap.String("room_id", roomID),
		zap.String("user_id", userID),
		zap.Int("total", record.Dice.Total),
		zap.Int("to", record.ToCell))
	return record, snap, nil
}

func allFinished(r *GameRoom) bool {
	if len(r.Game.Players) == 0 {
		return false
	}
	for _, ps := range r.Game.Players {
		if ps.Status != PlayerFinished {
			return false
		}
	}
	return true
}

// nextTurn picks the next non-finished player in join order, wrapping. Empty
// when nobody is eligible.
func nextTurn(r *GameRoom, currentUserID string) string {
	if len(r.Players) == 0 {
		return ""
	}
	start := 0
	for i := range r.Players {
		if r.Players[i].UserID == currentUserID {
			start = i
			break
		}
	}
	for off := 1; off <= len(r.Players); off++ {
		p := &r.Players[(start+off)%len(r.Players)]
		if ps := r.Game.Players[p.UserID]; ps != nil && ps.Status != PlayerFinished {
			return p.UserID
		}
	}
	return ""
}

// RecordNote attaches a note in the context of the currently open card. The
// host's notes are kept per cell per player; a player's own notes are private,
// keyed by user then cell.
func (m *Manager) RecordNote(ctx context.Context, roomID, userID string, cell int, note string) (*GameRoom, error) {
	return m.withRoom(ctx, roomID, func(r *GameRoom) error {
		seat := r.PlayerByUser(userID)
		if seat == nil {
			return ErrForbidden
		}
		card := r.Game.ActiveCard
		if card == nil {
			return ErrNoActiveCard
		}
		if cell != 0 && cell != card.Cell {
			return ErrNoActiveCard
		}
		if seat.Role == RoleHost {
			if r.Game.Notes.Host == nil {
				r.Game.Notes.Host = make(map[int]map[string][]string)
			}
			if r.Game.Notes.Host[card.Cell] == nil {
				r.Game.Notes.Host[card.Cell] = make(map[string][]string)
			}
			r.Game.Notes.Host[card.Cell][card.UserID] = append(r.Game.Notes.Host[card.Cell][card.UserID], note)
		} else {
			if r.Game.Notes.Private == nil {
				r.Game.Notes.Private = make(map[string]map[string]string)
			}
			if r.Game.Notes.Private[userID] == nil {
				r.Game.Notes.Private[userID] = make(map[string]string)
			}
			r.Game.Notes.Private[userID][cellKey(card.Cell)] = note
		}
		if ps := r.Game.Players[userID]; ps != nil {
			ps.NotesCount++
		}
		return nil
	})
}

// CloseCard closes the open card. The card's owner may always close it; the
// host may close anyone's card when the room settings allow it.
func (m *Manager) CloseCard(ctx context.Context, roomID, userID string) (*GameRoom, error) {
	return m.withRoom(ctx, roomID, func(r *GameRoom) error {
		card := r.Game.ActiveCard
		if card == nil {
			return ErrNoActiveCard
		}
		hostMayClose := userID == r.HostUserID && r.Game.Settings.AllowHostCloseAnyCard
		if card.UserID != userID && !hostMayClose {
			return ErrForbidden
		}
		r.Game.ActiveCard = nil
		return nil
	})
}

// StartRoom is the host's open -> in_progress transition.
func (m *Manager) StartRoom(ctx context.Context, roomID, requestingUserID string) (*GameRoom, error) {
	return m.SetStatus(ctx, roomID, requestingUserID, StatusInProgress)
}

// SetStatus applies a host-authorized lifecycle transition. Starting a room
// hands the first turn to the earliest-joined player; resuming keeps the turn
// where it was; finishing clears it.
func (m *Manager) SetStatus(ctx context.Context, roomID, requestingUserID string, next Status) (*GameRoom, error) {
	snap, err := m.withRoom(ctx, roomID, func(r *GameRoom) error {
		if err := r.checkTransition(requestingUserID, next); err != nil {
			return err
		}
		starting := r.Status == StatusOpen && next == StatusInProgress
		r.Status = next
		switch {
		case starting:
			r.Game.CurrentTurnPlayerID = r.Players[0].UserID
		case next == StatusFinished:
			r.Game.CurrentTurnPlayerID = ""
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("room status changed",
		zap.String("room_id", roomID),
		zap.String("status", string(next)),
		zap.String("by", requestingUserID))
	return snap, nil
}

// SetConnectionState flips a player's connection flag. The seat and all
// progress are retained so reconnecting restores the room as it was.
func (m *Manager) SetConnectionState(ctx context.Context, roomID, userID string, state ConnState) (*GameRoom, error) {
	return m.withRoom(ctx, roomID, func(r *GameRoom) error {
		if p := r.PlayerByUser(userID); p != nil {
			p.Connection = state
		}
		return nil
	})
}
