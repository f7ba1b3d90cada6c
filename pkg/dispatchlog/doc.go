// Package dispatchlog provides the structured logging attribute helpers
// shared by core/dispatch, built on log/slog: small nil-safe
// constructors so call sites read
// as slog.Info("...", dispatchlog.Message(...), dispatchlog.Role(...)).
package dispatchlog
