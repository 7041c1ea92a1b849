// Package middleware groups the HTTP middleware of the serve command.
//
//   - auth: rejects requests without the configured X-API-Key.
//   - rayid: tags every request with a ray id, stored in fiber locals and echoed in the
//     X-Ray-ID response header, so log lines of one request can be correlated.
//
// Register rayid first so even rejected requests carry an id.
package middleware
