package asyncutil_test

import (
	"context"
	"testing"
	"time"

	"github.com/corewire/dispatch/pkg/asyncutil"
)

func TestLinkContexts_CancelsWhenEitherParentCancels(t *testing.T) {
	t.Parallel()

	t.Run("first parent cancels", func(t *testing.T) {
		t.Parallel()
		a, cancelA := context.WithCancel(context.Background())
		b := context.Background()

		linked, cancel := asyncutil.LinkContexts(a, b)
		defer cancel()

		cancelA()

		select {
		case <-linked.Done():
		case <-time.After(time.Second):
			t.Fatal("expected linked context to be canceled")
		}
	})

	t.Run("second parent cancels", func(t *testing.T) {
		t.Parallel()
		a := context.Background()
		b, cancelB := context.WithCancel(context.Background())

		linked, cancel := asyncutil.LinkContexts(a, b)
		defer cancel()

		cancelB()

		select {
		case <-linked.Done():
		case <-time.After(time.Second):
			t.Fatal("expected linked context to be canceled")
		}
	})
}

func TestLinkContexts_NeitherCancellableReturnsBackground(t *testing.T) {
	t.Parallel()

	linked, cancel := asyncutil.LinkContexts(context.Background(), context.Background())
	defer cancel()

	if linked.Done() != nil {
		t.Error("expected a non-cancellable linked context")
	}
}

func TestLinkContexts_OnlyOneCancellableIsReturnedDirectly(t *testing.T) {
	t.Parallel()

	a, cancelA := context.WithCancel(context.Background())
	defer cancelA()
	b := context.Background()

	linked, cancel := asyncutil.LinkContexts(a, b)
	defer cancel()

	if linked != a {
		t.Error("expected the sole cancellable parent to be returned directly")
	}
}
