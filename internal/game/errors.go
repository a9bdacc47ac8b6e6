package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("no session for room")
	ErrSessionClosed     = errors.New("session closed")
	ErrInvalidPhase      = errors.New("action not valid in current phase")
	ErrNotDrawer         = errors.New("only the current drawer may do that")
	ErrDrawerCannotGuess = errors.New("the drawer cannot guess")
	ErrDrawerMuted       = errors.New("the drawer cannot chat while the round is live")
	ErrWordNotOffered    = errors.New("word is not among the offered options")
	ErrNotEnoughPlayers  = errors.New("not enough ready players to start")
	ErrUnsupportedEvent  = errors.New("unsupported event")
	ErrSessionFailed     = errors.New("session is in the error state")
)

// RejectionCode maps an action rejection to a short machine-readable code for
// the client.
func RejectionCode(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "ROOM_NOT_FOUND"
	case errors.Is(err, ErrInvalidPhase):
		return "INVALID_PHASE"
	case errors.Is(err, ErrNotDrawer), errors.Is(err, ErrDrawerCannotGuess), errors.Is(err, ErrDrawerMuted):
		return "NOT_ALLOWED"
	case errors.Is(err, ErrWordNotOffered):
		return "WORD_NOT_OFFERED"
	case errors.Is(err, ErrNotEnoughPlayers):
		return "NOT_ENOUGH_PLAYERS"
	case errors.Is(err, ErrSessionFailed):
		return "SESSION_ERROR"
	default:
		return "REJECTED"
	}
}
