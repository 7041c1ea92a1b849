// Package server holds the HTTP server configuration.
//
// The serve command starts a Fiber app with these settings to expose the read-only
// history API and the integrity check. Requests must carry ApiKey in the X-API-Key
// header when it is set.
package server
