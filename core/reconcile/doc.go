// Package reconcile merges independently evolved copies of a shared world.
//
// Reconciliation is a three-way merge. Given the base snapshot a player last updated
// from, their local copy and the current shared (remote) snapshot, it:
//
//  1. Computes two change sets with Diff: base→local and base→remote.
//  2. Resolves them per craft identifier with Resolve, producing a Plan of actions to
//     apply onto the remote world, plus the conflicts it resolved on the way.
//  3. Applies the plan with Apply and merges play time additively with MergePlayTime.
//  4. Renders one summary line per contributed change.
//
// # Resolution Policy
//
//   - Additions on either side are kept. Two different additions under the same
//     identifier are both kept: the local one is rekeyed to "<id>~<author>".
//   - A removal loses against an alteration on the other side ("altered wins").
//   - Alterations are merged field by field (name, author, status, payload). When both
//     sides changed the same field to different values the merge fails closed with a
//     *ConflictError. Payloads are opaque and never merged internally.
//
// # Purity
//
// Every function in this package is synchronous and side-effect free. Inputs are never
// modified; merged worlds are fresh copies.
//
// # Usage Example
//
//	result, err := reconcile.Reconcile(base, local, remote, "pixel")
//	var conflict *reconcile.ConflictError
//	if errors.As(err, &conflict) {
//	    // conflict.IDs() names the crafts both players edited
//	}
//	for _, line := range result.Summary {
//	    fmt.Println(line)
//	}
package reconcile
