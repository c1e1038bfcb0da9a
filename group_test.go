package threads

import (
	"testing"
	"time"

	"github.com/tychoish/fun/assert"
	"github.com/tychoish/fun/assert/check"
)

func TestGroup(t *testing.T) {
	t.Parallel()
	t.Run("EmptyJoinReturnsImmediately", func(t *testing.T) {
		g := &Group{}

		assert.MaxRuntime(t, time.Second, func() {
			assert.NotError(t, g.Join())
		})
		check.True(t, g.IsDone())
		check.Equal(t, g.Len(), 0)
	})
	t.Run("JoinWaitsForEveryThread", func(t *testing.T) {
		g := &Group{}
		for i := 0; i < 3; i++ {
			g.Go(func() { time.Sleep(100 * time.Millisecond) })
		}

		check.Equal(t, g.Len(), 3)
		check.True(t, !g.IsDone())

		assert.MinRuntime(t, 75*time.Millisecond, func() {
			assert.NotError(t, g.Join())
		})

		check.Equal(t, g.Len(), 0)
		check.True(t, g.IsDone())
	})
	t.Run("HandleStillWorks", func(t *testing.T) {
		g := &Group{}
		release := NewChannel[int]()

		th := g.Go(func() { release.Recv() })
		check.True(t, th.Running())
		check.Equal(t, g.Len(), 1)

		release.Send(0)
		assert.NotError(t, th.Join())

		// the thread's exit reaches the group before Join on the
		// handle returns.
		check.Equal(t, g.Len(), 0)
		assert.NotError(t, g.Join())
	})
	t.Run("CollectsPanics", func(t *testing.T) {
		g := &Group{}

		g.GoNamed("steady", func() {})
		g.GoNamed("flaky", func() { panic("one") })
		g.GoNamed("shaky", func() { panic("two") })

		err := g.Join()
		assert.Error(t, err)
		assert.ErrorIs(t, err, ErrRecoveredPanic)
		check.Substring(t, err.Error(), "Thread<flaky>")
		check.Substring(t, err.Error(), "Thread<shaky>")
		check.Substring(t, err.Error(), "one")
		check.Substring(t, err.Error(), "two")
		check.NotSubstring(t, err.Error(), "Thread<steady>")
	})
	t.Run("Reusable", func(t *testing.T) {
		g := &Group{}

		g.Go(func() {})
		assert.NotError(t, g.Join())

		g.GoNamed("second-round", func() { panic("later") })
		assert.ErrorIs(t, g.Join(), ErrRecoveredPanic)

		// collected errors stick around for later rounds.
		g.Go(func() {})
		assert.ErrorIs(t, g.Join(), ErrRecoveredPanic)
	})
	t.Run("Hundred", func(t *testing.T) {
		const n = 100

		ch := NewChannel[int]()
		g := &Group{}

		for i := 0; i < n; i++ {
			i := i
			g.Go(func() { ch.Send(i) })
		}

		seen := make(map[int]bool, n)
		for i := 0; i < n; i++ {
			v := ch.Recv()
			if v < 0 || v >= n {
				t.Fatal("value out of range:", v)
			}
			if seen[v] {
				t.Fatal("value delivered twice:", v)
			}
			seen[v] = true
		}

		assert.Equal(t, len(seen), n)
		assert.NotError(t, g.Join())
	})
}
