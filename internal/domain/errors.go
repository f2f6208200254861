package domain

import "errors"

// Domain errors
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameFull           = errors.New("game is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
	ErrInvalidPhase       = errors.New("invalid action for current phase")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotHost            = errors.New("only host can perform this action")
	ErrInvalidTransition  = errors.New("invalid phase transition")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrUnknownRole        = errors.New("unknown role")
	ErrRosterMismatch     = errors.New("role count does not match player count")
	ErrEmptyNickname      = errors.New("nickname cannot be empty")
	ErrPromptNotFound     = errors.New("prompt not found")
	ErrNoRelay            = errors.New("no open relay for player")
)
