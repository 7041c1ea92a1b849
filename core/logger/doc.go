// Package logger builds the zap logger shared by the CLI and the HTTP server.
//
// Level "debug" selects zap's development preset; every other level uses the production
// preset at that level. Format "console" gives colored, human readable lines for
// interactive use and "json" gives structured output for the server.
//
// WithRayID attaches the request's ray id (set by the rayid middleware) so every log line
// of one HTTP request can be correlated.
//
// # Usage
//
//	log, err := logger.New(&cfg.Log)
//	log.Info("Upload complete", zap.Int64("version", v))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
