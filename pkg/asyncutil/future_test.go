package asyncutil_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corewire/dispatch/pkg/asyncutil"
)

func TestRunAndWait(t *testing.T) {
	t.Parallel()

	f := asyncutil.Run(func() error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	if err := f.Wait(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRunPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	f := asyncutil.Run(func() error { return boom })

	if err := f.Wait(); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
}

func TestWaitAll_StartsEveryFutureBeforeAwaitingAny(t *testing.T) {
	t.Parallel()

	var started atomic.Int32
	release := make(chan struct{})

	futures := make([]*asyncutil.Future, 5)
	for i := range futures {
		futures[i] = asyncutil.Run(func() error {
			started.Add(1)
			<-release
			return nil
		})
	}

	// Give every goroutine a chance to record its start before any can
	// complete; none can finish until release is closed.
	time.Sleep(20 * time.Millisecond)
	if got := started.Load(); got != int32(len(futures)) {
		t.Errorf("expected all %d futures started before release, got %d", len(futures), got)
	}
	close(release)

	if err := asyncutil.WaitAll(futures...); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWaitAll_ReturnsFirstErrorInOrderAndAwaitsAll(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var secondCompleted atomic.Bool

	f1 := asyncutil.Run(func() error { return boom })
	f2 := asyncutil.Run(func() error {
		secondCompleted.Store(true)
		return nil
	})

	if err := asyncutil.WaitAll(f1, f2); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}
	if !secondCompleted.Load() {
		t.Error("expected second future to still be awaited and completed")
	}
}
