package search

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of one path request
type State int32

const (
	Queued State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

var stateNames = [...]string{
	Queued:    "queued",
	Running:   "running",
	Succeeded: "succeeded",
	Failed:    "failed",
	Cancelled: "cancelled",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Terminal reports whether no further transition can happen
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed || s == Cancelled
}

// StateOf maps a search error to the terminal state it resolves to
func StateOf(err error) State {
	switch {
	case err == nil:
		return Succeeded
	case errors.Is(err, ErrCancelled):
		return Cancelled
	}
	return Failed
}
