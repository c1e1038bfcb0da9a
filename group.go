package threads

import (
	"fmt"
	"sync"

	"github.com/tychoish/fun/erc"
)

// Group launches threads and waits on all of them at once. It works
// like a sync.WaitGroup with the counter bookkeeping folded into the
// launcher, plus error collection: panics captured in the group's
// threads are annotated with the thread's handle and aggregated into
// the error that Join returns.
//
// Groups are reusable. Launching more threads after a Join is legal,
// and a later Join waits for them; collected errors accumulate across
// rounds rather than resetting.
//
// The zero value is ready to use. A Group must not be copied after
// first use.
type Group struct {
	mu      sync.Mutex
	idle    *sync.Cond
	running int
	ec      erc.Collector
}

// callers must hold mu.
func (g *Group) init() {
	if g.idle == nil {
		g.idle = sync.NewCond(&g.mu)
	}
}

// Go runs fn in a new thread tracked by the group and returns its
// handle. The handle works exactly as one from the package-level Go;
// joining it individually is allowed but never required.
func (g *Group) Go(fn func()) *Thread { return g.GoNamed("", fn) }

// GoNamed is Go with a caller-provided thread name, which annotates
// any error the thread contributes to the group.
func (g *Group) GoNamed(name string, fn func()) *Thread {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.init()

	g.running++

	return launch(name, fn, g.finish)
}

// finish runs in the exiting thread, after its error state settles
// and before its handle unblocks.
func (g *Group) finish(t *Thread) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if t.err != nil {
		g.ec.Add(fmt.Errorf("%s: %w", t, t.err))
	}

	g.running--
	if g.running == 0 {
		g.idle.Broadcast()
	}
}

// Len returns the number of the group's threads that have not
// returned yet.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.running
}

// IsDone reports whether the group has no running threads. New groups
// are done.
func (g *Group) IsDone() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.running == 0
}

// Join blocks until every thread launched by the group has returned,
// then reports the aggregate outcome: nil when no thread panicked,
// and otherwise an error wrapping one annotated error per panicked
// thread, in completion order. Join on a group that has launched
// nothing returns immediately.
func (g *Group) Join() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.init()

	for g.running > 0 {
		g.idle.Wait()
	}

	return g.ec.Resolve()
}
