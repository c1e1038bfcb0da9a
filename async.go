package threads

// Async runs fn in a new thread and returns a Channel that will
// deliver its result. The call returns immediately; the first Recv on
// the channel blocks until fn has returned. This is the idiom for the
// one case the launcher doesn't cover, a function whose return value
// you want:
//
//	price := threads.Async(fetchPrice)
//	// ... other work ...
//	total := price.Recv() + tax
//
// The channel is an ordinary Channel that happens to get one Send: if
// fn panics the send never happens and Recv blocks forever, so
// callers that don't trust fn should launch it with Go and send on a
// channel themselves, keeping the handle to Join.
func Async[T any](fn func() T) *Channel[T] {
	out := NewChannel[T]()

	Go(func() { out.Send(fn()) })

	return out
}
