package reconcile

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"shared-save/core/savefile"
)

// Resolve merges the local and remote change sets, both computed against the same base,
// into a plan to apply onto remoteWorld.
//
// Local additions without an author are annotated with author. When any craft was changed
// incompatibly on both sides Resolve returns a *ConflictError naming every such craft and
// no plan.
func Resolve(local, remote ChangeSet, remoteWorld *savefile.SaveWorld, author string) (*Plan, error) {
	if err := local.Validate(); err != nil {
		return nil, fmt.Errorf("local changes: %w", err)
	}
	if err := remote.Validate(); err != nil {
		return nil, fmt.Errorf("remote changes: %w", err)
	}

	r := &resolver{
		remoteWorld: remoteWorld,
		author:      author,
		taken:       make(map[string]struct{}, len(remoteWorld.Crafts)+local.Len()),
		plan:        &Plan{Actions: []Action{}, Resolutions: []Resolution{}},
	}
	// Rekeyed additions must not land on an identifier another action writes.
	for id := range remoteWorld.Crafts {
		r.taken[id] = struct{}{}
	}
	for _, id := range local.IDs() {
		r.taken[id] = struct{}{}
	}

	var conflicts []Conflict
	for _, id := range local.IDs() {
		if c := r.resolveOne(id, local, remote); c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	if len(conflicts) > 0 {
		return nil, &ConflictError{Conflicts: conflicts}
	}

	sort.SliceStable(r.plan.Actions, func(i, j int) bool {
		return r.plan.Actions[i].ID < r.plan.Actions[j].ID
	})
	return r.plan, nil
}

type resolver struct {
	remoteWorld *savefile.SaveWorld
	author      string
	taken       map[string]struct{}
	plan        *Plan
}

// resolveOne plans a single identifier changed locally. Identifiers only the remote side
// touched need nothing: the remote world already reflects them.
func (r *resolver) resolveOne(id string, local, remote ChangeSet) *Conflict {
	if added, ok := local.Added[id]; ok {
		added = r.annotate(added)
		theirs, clash := remote.Added[id]
		switch {
		case !clash:
			r.act(Action{Type: ActionAdd, ID: id, Craft: added})
			r.plan.Summary.Added++
		case sameContent(added, theirs):
		default:
			r.rekey(id, added)
		}
		return nil
	}

	if tombstone, ok := local.Removed[id]; ok {
		if _, gone := remote.Removed[id]; gone {
			return nil
		}
		if theirs, altered := remote.Altered[id]; altered {
			r.keepAltered(id, theirs.New.Name)
			return nil
		}
		r.act(Action{Type: ActionRemove, ID: id, Craft: tombstone})
		r.plan.Summary.Removed++
		return nil
	}

	mine := local.Altered[id]
	if _, gone := remote.Removed[id]; gone {
		r.act(Action{Type: ActionAdd, ID: id, Craft: mine.New, Resolved: true})
		r.keepAltered(id, mine.New.Name)
		return nil
	}

	theirs, altered := remote.Altered[id]
	if !altered {
		r.act(Action{Type: ActionReplace, ID: id, Craft: mine.New})
		r.plan.Summary.Altered++
		return nil
	}
	if sameContent(mine.New, theirs.New) {
		return nil
	}

	merged, fields := mergeFields(mine.Old, mine.New, theirs.New)
	if len(fields) > 0 {
		return &Conflict{ID: id, Name: mine.New.Name, Fields: fields}
	}
	r.act(Action{Type: ActionReplace, ID: id, Craft: merged})
	r.plan.Summary.Altered++
	return nil
}

func (r *resolver) act(a Action) {
	a.Craft = a.Craft.Clone()
	a.Craft.ID = a.ID
	r.plan.Actions = append(r.plan.Actions, a)
}

func (r *resolver) annotate(c savefile.Craft) savefile.Craft {
	if c.Author == "" {
		c.Author = r.author
	}
	return c
}

func (r *resolver) keepAltered(id, name string) {
	r.plan.Resolutions = append(r.plan.Resolutions, Resolution{
		Kind: ResolutionKeptAltered,
		ID:   id,
		Name: name,
	})
	r.plan.Summary.Resolved++
}

func (r *resolver) rekey(id string, c savefile.Craft) {
	newID := r.freshID(id)
	r.act(Action{Type: ActionAdd, ID: newID, Craft: c, Resolved: true})
	r.plan.Resolutions = append(r.plan.Resolutions, Resolution{
		Kind:  ResolutionRekeyed,
		ID:    id,
		NewID: newID,
		Name:  c.Name,
	})
	r.plan.Summary.Rekeyed++
}

// freshID derives an identifier from id and the author label that no craft uses yet.
func (r *resolver) freshID(id string) string {
	candidate := id + "~" + authorSlug(r.author)
	for n := 2; ; n++ {
		if _, used := r.taken[candidate]; !used {
			r.taken[candidate] = struct{}{}
			return candidate
		}
		candidate = fmt.Sprintf("%s~%s-%d", id, authorSlug(r.author), n)
	}
}

func authorSlug(author string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(author) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if slug == "" {
		return "local"
	}
	return slug
}

// sameContent compares every craft field except the identifier.
func sameContent(a, b savefile.Craft) bool {
	a.ID, b.ID = "", ""
	return a.Equal(b)
}

// mergeFields performs a three-way merge of the name, author and status of a craft altered
// on both sides. Payloads are never merged: differing payloads are always a conflict. It
// returns the merged craft and the names of conflicting fields.
func mergeFields(base, mine, theirs savefile.Craft) (savefile.Craft, []string) {
	merged := theirs.Clone()
	var fields []string

	pick := func(field string, b, m, t string, set func(string)) {
		switch {
		case m == b || m == t:
			set(t)
		case t == b:
			set(m)
		default:
			fields = append(fields, field)
		}
	}
	pick("name", base.Name, mine.Name, theirs.Name, func(v string) { merged.Name = v })
	pick("author", base.Author, mine.Author, theirs.Author, func(v string) { merged.Author = v })
	pick("status", string(base.Status), string(mine.Status), string(theirs.Status), func(v string) { merged.Status = savefile.Status(v) })
	if !mine.SamePayload(theirs) {
		fields = append(fields, "payload")
	}

	return merged, fields
}

// Apply builds the world that results from applying plan onto remote. Destroyed crafts are
// dropped. remote is not modified.
func Apply(remote *savefile.SaveWorld, plan *Plan) *savefile.SaveWorld {
	merged := remote.Clone()
	for _, a := range plan.Actions {
		switch a.Type {
		case ActionAdd, ActionReplace:
			c := a.Craft.Clone()
			c.ID = a.ID
			merged.Crafts[a.ID] = c
		case ActionRemove:
			delete(merged.Crafts, a.ID)
		}
	}
	for id, c := range merged.Crafts {
		if c.Status == savefile.StatusDestroyed {
			delete(merged.Crafts, id)
		}
	}
	return merged
}
