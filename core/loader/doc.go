// Package loader registers the HTTP features of the serve command.
//
// Each feature implements Feature and mounts its own route group:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// Manager keeps features in registration order and LoadAll mounts the enabled ones,
// stopping at the first failure.
package loader
