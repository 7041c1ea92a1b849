package remote

import (
	"errors"
	"fmt"
)

// ErrWorldNotFound is returned when a world has never been published.
var ErrWorldNotFound = errors.New("world not found in remote store")

// StaleBaseError is returned by Publish when the remote snapshot advanced after it was fetched.
type StaleBaseError struct {
	WorldID  string
	Expected int64
	Current  int64
}

func (e *StaleBaseError) Error() string {
	return fmt.Sprintf("world %s advanced to version %d while merging against version %d", e.WorldID, e.Current, e.Expected)
}
