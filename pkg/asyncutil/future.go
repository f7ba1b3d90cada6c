package asyncutil

import "sync"

// Future represents the outcome of a function started in its own goroutine.
// It is safe to Wait on from multiple goroutines.
type Future struct {
	err  error
	once sync.Once
	done chan struct{}
}

// Run starts fn in a new goroutine and returns immediately with a handle to
// its eventual result. Unlike a plain `go fn()`, the caller can start many
// Futures before waiting on any of them — the shape the parallel
// notification publisher needs ("start every handler before awaiting any").
func Run(fn func() error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		err := fn()
		f.once.Do(func() {
			f.err = err
		})
	}()

	return f
}

// Wait blocks until the function completes and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// WaitAll waits for every future to complete and returns the first
// non-nil error encountered, in future order. All futures are always
// awaited even if an earlier one failed, so none are leaked.
func WaitAll(futures ...*Future) error {
	var first error
	for _, f := range futures {
		if err := f.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
