package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingAuthor is returned when a merge is attempted without an author label.
var ErrMissingAuthor = errors.New("author label is required")

// Conflict describes one craft that could not be merged.
type Conflict struct {
	// ID is the craft identifier.
	ID string `json:"id"`
	// Name is the craft name as seen in the local copy.
	Name string `json:"name"`
	// Fields lists the craft fields both sides changed to different values.
	Fields []string `json:"fields"`
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s (%s): both sides changed %s", c.ID, c.Name, strings.Join(c.Fields, ", "))
}

// ConflictError is returned when at least one craft was changed incompatibly on both sides.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = c.String()
	}
	return fmt.Sprintf("unresolved conflicts on %d craft(s): %s", len(e.Conflicts), strings.Join(parts, "; "))
}

// IDs returns the identifiers of every conflicting craft, sorted.
func (e *ConflictError) IDs() []string {
	ids := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		ids[i] = c.ID
	}
	sort.Strings(ids)
	return ids
}
