// Package integrity provides health checks for the shared save backend.
//
// # Checks Provided
//
//   - Storage: Checks that the snapshot bucket exists and lists the worlds stored under the snapshot prefix.
//   - Ledger: Validates that the ledger tables match the ledger models (columns, explicit types).
//   - Snapshots: Downloads and parses the snapshot every world head points to.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true to create the bucket).
//   - GET /integrity/ledger : Runs the ledger schema check (supports ?fix=true to migrate).
//   - GET /integrity/snapshots : Runs the snapshot check.
package integrity
