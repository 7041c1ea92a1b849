// Package ledger records the published versions of every shared world.
//
// The ledger is the serialization point for uploads. Each world has one head row holding
// its current version and the object key of the matching snapshot, plus an append-only
// history of every version ever published with its author and change summary.
//
// Advance moves the head forward only when the caller's expected version still matches,
// inside a single transaction. A caller that lost the race gets a *StaleError carrying the
// version it should re-fetch against.
//
// # Usage
//
//	l := ledger.New(db)
//	if err := l.Migrate(ctx); err != nil {
//	    return err
//	}
//	version, err := l.Advance(ctx, ledger.Entry{WorldID: "kerbin", ExpectedVersion: 3, ObjectKey: key})
package ledger
