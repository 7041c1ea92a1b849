package reconcile

import (
	"fmt"
)

// RenderSummary renders one line per change a plan contributes, attributed to author.
// Lines are grouped as added, removed, altered, rekeyed and resolved, each group in
// identifier order.
func RenderSummary(plan *Plan, author string) []string {
	var added, removed, altered, rekeyed, resolved []string

	for _, a := range plan.Actions {
		if a.Resolved {
			continue
		}
		switch a.Type {
		case ActionAdd:
			added = append(added, fmt.Sprintf("%s: added %s", author, a.Craft.Name))
		case ActionRemove:
			removed = append(removed, fmt.Sprintf("removed %s", a.Craft.Name))
		case ActionReplace:
			altered = append(altered, fmt.Sprintf("altered %s", a.Craft.Name))
		}
	}

	for _, res := range plan.Resolutions {
		switch res.Kind {
		case ResolutionRekeyed:
			rekeyed = append(rekeyed, fmt.Sprintf("%s: added %s as %s (identifier %s already taken)", author, res.Name, res.NewID, res.ID))
		case ResolutionKeptAltered:
			resolved = append(resolved, fmt.Sprintf("resolved conflict on %s: kept altered version", res.Name))
		}
	}

	lines := make([]string, 0, len(plan.Actions)+len(plan.Resolutions))
	for _, group := range [][]string{added, removed, altered, rekeyed, resolved} {
		lines = append(lines, group...)
	}
	return lines
}
