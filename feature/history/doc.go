// Package history exposes the publish history of shared worlds over HTTP.
//
// Every route is read only. Writes happen through the worldsync commands, which publish
// through the remote store.
//
// # HTTP Endpoints
//
//   - GET /worlds : Lists every published world with its head version.
//   - GET /worlds/:world : Returns the head of a world.
//   - GET /worlds/:world/history?limit= : Returns recent versions, newest first, with change summaries.
//   - GET /worlds/:world/snapshot?version= : Downloads a snapshot archive (latest when version is omitted).
//   - GET /worlds/:world/crafts?version= : Lists the crafts of a snapshot.
package history
