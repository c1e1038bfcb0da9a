package threads

import "sync"

// slotState tracks the occupancy of a Channel's slot. Channels are a
// two-state machine: the slot is either empty or holds exactly one
// value that no receiver has claimed yet.
type slotState int8

const (
	slotEmpty slotState = iota
	slotFull
)

// Channel is a rendezvous point for handing values from one thread to
// another, one at a time. Send places a value in the channel's slot,
// blocking while the slot is occupied by an earlier value; Recv
// drains the slot, blocking while it is empty. Because the slot holds
// at most one value, senders and receivers proceed in lockstep: every
// value sent is observed by exactly one receiver, no value is dropped,
// and no value is observed twice.
//
// Channels have no capacity, no close operation, and no timeouts. A
// Send that never finds a receiver (or a Recv that never finds a
// sender) blocks forever; when that's a problem, do the blocking call
// in a thread of its own and watch the handle (see Go and
// Thread.Operation.)
//
// The zero value is ready to use. A Channel must not be copied after
// first use.
type Channel[T any] struct {
	mu     sync.Mutex
	nempty *sync.Cond // signaled when the slot drains; senders wait here
	nfull  *sync.Cond // signaled when the slot fills; receivers wait here

	state slotState
	value T
}

// NewChannel constructs an empty Channel.
func NewChannel[T any]() *Channel[T] {
	c := &Channel[T]{}
	c.init()
	return c
}

// callers must hold mu, except during construction before the channel
// has escaped.
func (c *Channel[T]) init() {
	if c.nempty == nil {
		c.nempty = sync.NewCond(&c.mu)
		c.nfull = sync.NewCond(&c.mu)
	}
}

// Send places a value in the channel, blocking until the slot is
// empty if a previously sent value has not been received yet. Send
// returns as soon as the value is in the slot, without waiting for a
// receiver to claim it.
//
// When several senders contend for an empty slot, exactly one of them
// proceeds per Recv; which one is unspecified.
func (c *Channel[T]) Send(value T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	for c.state == slotFull {
		// re-check on wake: another sender may have claimed the
		// slot between the signal and this thread running.
		c.nempty.Wait()
	}

	c.value = value
	c.state = slotFull

	c.nfull.Signal()
}

// Recv removes and returns the value in the channel's slot, blocking
// until a sender fills it. Each value is delivered to exactly one
// receiver. Recv synchronizes with the Send that provided the value,
// so the receiver observes everything the sender did before sending;
// later access to shared mutable state is the caller's problem.
func (c *Channel[T]) Recv() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	for c.state == slotEmpty {
		c.nfull.Wait()
	}

	value := c.value

	var zero T
	c.value = zero // don't pin the value for the collector
	c.state = slotEmpty

	c.nempty.Signal()

	return value
}
