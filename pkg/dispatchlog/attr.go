package dispatchlog

import (
	"log/slog"
	"time"
)

// Message identifies the concrete request/notification type name being
// dispatched, e.g. "myapp.CreateUser".
func Message(name string) slog.Attr {
	return slog.String("message", name)
}

// Role identifies the collaborator role involved in a log line, e.g.
// "request_handler", "pre_processor", "exception_handler".
func Role(role string) slog.Attr {
	return slog.String("role", role)
}

// Exception identifies the concrete Go type name of a recovered or
// rethrown error, e.g. "*myapp.ValidationError".
func Exception(typeName string) slog.Attr {
	return slog.String("exception_type", typeName)
}

// CorrelationID attaches the per-dispatch correlation id.
func CorrelationID(id string) slog.Attr {
	return slog.String("dispatch_id", id)
}

// Duration attaches an elapsed-time attribute, zero-value safe.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Error attaches an error attribute, returning an empty Attr for nil so
// call sites never need a nil check before logging.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Recovered reports whether a failure was recovered by an exception
// handler, useful for distinguishing suppressed from surfaced failures in
// log aggregation.
func Recovered(recovered bool) slog.Attr {
	return slog.Bool("recovered", recovered)
}
