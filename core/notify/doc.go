// Package notify broadcasts change summaries after a world is published.
//
// Notifier is fire-and-forget from the sync driver's point of view: a failed notification
// is logged and never undoes a publish. RedisNotifier publishes each Event as JSON on the
// channel "<prefix>:<world id>" and can watch that channel for other players' uploads.
// Nop is used when no Redis address is configured.
package notify
