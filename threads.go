// Package threads provides a small toolkit for coarse-grained
// concurrency: a launcher that runs a function in a new thread (a
// goroutine, here and throughout) and hands back a handle for
// watching it, plus a rendezvous Channel for moving values between
// threads one at a time.
//
// The operations block indefinitely rather than time out, return
// values of launched functions are discarded rather than collected,
// and results move between threads through channels rather than
// through shared state. Threads that panic do not take the process
// down: the panic is captured and reported as an error from
// Thread.Join.
package threads

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/tychoish/fun"
	"github.com/tychoish/fun/ers"
)

// ErrRecoveredPanic is at the root of every error produced from a
// panic captured in a launched thread. Use errors.Is against this
// value to distinguish a panicking thread from one that exited
// normally.
const ErrRecoveredPanic = ers.Error("recovered panic")

// threadCount serves default thread names.
var threadCount = &atomic.Int64{}

// Thread is a handle to a function launched with Go or GoNamed. The
// handle reports on the thread; it does not control it. There is no
// way to stop, interrupt, or communicate with the running function
// through the handle: use a Channel for that.
type Thread struct {
	name string
	id   uuid.UUID
	done chan struct{}

	// written by the launched thread before done closes, read by
	// everyone else after.
	err error
}

// Go runs fn in a new thread and returns a handle to it immediately,
// without waiting for fn to start or finish. The thread has a
// generated name of the form "thread-0042".
//
// fn takes no arguments and returns nothing: close over any inputs,
// and pass results to other threads over a Channel. If fn panics, the
// panic is captured and reported by Join rather than crashing the
// process.
func Go(fn func()) *Thread { return GoNamed("", fn) }

// GoNamed is Go with a caller-provided name for the thread, which
// appears in the handle's String form and in Group error annotations.
// An empty name selects a generated one.
func GoNamed(name string, fn func()) *Thread { return launch(name, fn, nil) }

// Threaded wraps fn in a function that launches fn in a new thread on
// every call, returning the handle. It converts a function that runs
// here into a function that runs elsewhere:
//
//	ping := threads.Threaded(func() { ch.Send("ping") })
//	h := ping() // returns immediately
func Threaded(fn func()) func() *Thread {
	return func() *Thread { return Go(fn) }
}

// launch is the common path under Go, GoNamed, and Group. onExit, if
// non-nil, runs in the launched thread after fn returns and the
// panic/error state is settled, but before the handle unblocks: a
// Join that has returned has also observed onExit's effects.
func launch(name string, fn func(), onExit func(*Thread)) *Thread {
	if name == "" {
		name = fmt.Sprintf("thread-%04d", threadCount.Add(1))
	}

	t := &Thread{
		name: name,
		id:   uuid.New(),
		done: make(chan struct{}),
	}

	go t.run(fn, onExit)

	return t
}

func (t *Thread) run(fn func(), onExit func(*Thread)) {
	defer close(t.done)
	if onExit != nil {
		defer onExit(t)
	}
	defer func() { t.err = parsePanic(recover()) }()

	fn()
}

// Name returns the thread's name, generated or caller-provided.
func (t *Thread) Name() string { return t.name }

// ID returns a unique identifier for the thread. Names can collide;
// IDs never do.
func (t *Thread) ID() string { return t.id.String() }

func (t *Thread) String() string { return fmt.Sprintf("Thread<%s>", t.name) }

// Running reports whether the thread's function has returned yet.
// Threads are running from the moment the handle exists, including
// before the scheduler first runs the function.
func (t *Thread) Running() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// Join blocks until the thread's function returns, then reports how
// it exited: nil for a normal return, or an error rooted in
// ErrRecoveredPanic if the function panicked. Join is safe to call
// any number of times from any number of threads; every call returns
// the same value. There is no way to limit how long Join waits: a
// thread blocked forever makes Join block forever.
func (t *Thread) Join() error {
	<-t.done
	return t.err
}

// Err is the non-blocking form of Join: it returns nil while the
// thread is running or if it exited normally, and the captured panic
// error once a panicked thread has exited.
func (t *Thread) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Operation converts the handle into a fun.Operation that waits for
// the thread to exit or the context to be canceled, whichever comes
// first. This is the bridge out of the package's timeout-free world:
// composing the returned operation with timeouts or signal handling
// bounds the wait without affecting the thread itself.
func (t *Thread) Operation() fun.Operation {
	return func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case <-t.done:
		}
	}
}

// parsePanic converts a value recovered from a panicking thread into
// an error rooted in ErrRecoveredPanic. A nil input, from the
// recover() of a thread that didn't panic, maps to a nil error.
func parsePanic(r any) error {
	switch val := r.(type) {
	case nil:
		return nil
	case error:
		return fmt.Errorf("%w: %w", val, ErrRecoveredPanic)
	case string:
		return fmt.Errorf("%s: %w", val, ErrRecoveredPanic)
	default:
		return fmt.Errorf("[%T]: %v: %w", val, val, ErrRecoveredPanic)
	}
}
