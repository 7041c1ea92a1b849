// Package remote exchanges world snapshots with the shared store.
//
// Store is the contract the sync driver depends on: fetch the latest snapshot of a world
// with its version, and publish a new one against the version it was merged from. A
// publish whose expected version is behind fails with *StaleBaseError so the caller can
// re-fetch and merge again.
//
// ObjectStore implements Store on top of an S3 compatible bucket and the ledger. Every
// publish uploads a new immutable object under <prefix>/<world>/<uuid>.sfsw and then
// advances the ledger head; the object of a rejected publish is removed again.
//
// # Usage
//
//	store := remote.NewObjectStore(client, cfg.Storage.Bucket, cfg.Storage.Prefix, ledger.New(db), logger)
//	snap, err := store.FetchLatest(ctx, "kerbin")
//	version, err := store.Publish(ctx, remote.PublishRequest{
//	    WorldID:         "kerbin",
//	    World:           merged,
//	    ExpectedVersion: snap.Version,
//	    Author:          "ana",
//	})
package remote
