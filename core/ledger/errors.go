package ledger

import (
	"errors"
	"fmt"
)

// ErrNoHead is returned when a world has never been published.
var ErrNoHead = errors.New("world has no published version")

// StaleError is returned by Advance when the head moved past the expected version.
type StaleError struct {
	WorldID  string
	Expected int64
	Current  int64
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("world %s: expected version %d but head is at %d", e.WorldID, e.Expected, e.Current)
}
