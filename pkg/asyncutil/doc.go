// Package asyncutil provides small coordination primitives for fanning work
// out across goroutines and racing completion signals.
//
// It backs two concerns in core/dispatch: the parallel notification
// publisher (start every handler before awaiting any, then collect results)
// and the stream executor's cancellation-token linking (derive one context
// that fires when either of two parent contexts fires).
package asyncutil
