package commands

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownCommand is returned when a name is not in the table.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrInvalidArguments is returned when the argument list is not a sequence.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrInvalidTable is returned by LoadTable for malformed table data.
	ErrInvalidTable = errors.New("invalid command table")
)

// UnknownCommandError names the command that failed the lookup.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("unknown command '%.128s'", e.Name)
}

func (e *UnknownCommandError) Unwrap() error {
	return ErrUnknownCommand
}
