package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Ошибки клиентских команд. Движок до них не доходит.
var (
	ErrNotPlaying    = errors.New("game is not running")
	ErrAlreadyPlay   = errors.New("game already started")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrUnknownPlayer = errors.New("unknown player")
	ErrRoomFull      = errors.New("room is full")
	ErrTeamMismatch  = errors.New("team mode mismatch")
	ErrDebugOnly     = errors.New("admin commands are disabled")
	ErrRoomAborted   = errors.New("room aborted")
)

// InvariantError - нарушение инварианта движка. Состояние матча больше не трогается.
type InvariantError struct {
	Msg    string
	Fields logrus.Fields
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("combat invariant violated: %s %v", e.Msg, e.Fields)
}
