package room

// The room lifecycle is open -> in_progress -> {paused <-> in_progress} ->
// finished. finished is terminal; finish is reachable from any other state.
var transitions = map[Status]map[Status]bool{
	StatusOpen: {
		StatusInProgress: true,
		StatusFinished:   true,
	},
	StatusInProgress: {
		StatusPaused:   true,
		StatusFinished: true,
	},
	StatusPaused: {
		StatusInProgress: true,
		StatusFinished:   true,
	},
	StatusFinished: {},
}

func canTransition(from, to Status) bool {
	return transitions[from][to]
}

// checkTransition validates a host-requested status change against the
// current room. It only inspects; applying the change is the caller's job.
func (r *GameRoom) checkTransition(requestingUserID string, next Status) error {
	if requestingUserID != r.HostUserID {
		return ErrForbidden
	}
	if !canTransition(r.Status, next) {
		return ErrInvalidTransition
	}
	switch next {
	case StatusInProgress:
		if r.Status == StatusOpen && countNonHostPlayers(r) < 1 {
			return ErrNotEnoughPlayers
		}
	case StatusPaused:
		if !r.Game.Settings.HostCanPause {
			return ErrForbidden
		}
	}
	return nil
}

func countNonHostPlayers(r *GameRoom) int {
	n := 0
	for i := range r.Players {
		if r.Players[i].Role != RoleHost {
			n++
		}
	}
	return n
}
