package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrUnknownCommand  = errors.New("unknown command")
)

// TransportError reports a failed call to the orchestration API or the chat platform.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed read or write of the reconciliation state.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

type CommandDispatchError struct {
	Command string
	Err     error
}

func (e *CommandDispatchError) Error() string {
	return fmt.Sprintf("execute command %q: %v", e.Command, e.Err)
}

func (e *CommandDispatchError) Unwrap() error {
	return e.Err
}
