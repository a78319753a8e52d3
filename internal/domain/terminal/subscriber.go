package terminal

import "context"

// Subscriber receives one session's output.
//
// Deliver is called from the session's pump goroutine, in order, and may
// block to apply backpressure. It should return ctx.Err() when ctx is done.
// Ended is called exactly once, after the last Deliver.
type Subscriber interface {
	Deliver(ctx context.Context, chunk Chunk) error
	Ended(ctx context.Context, end End)
}

// Event is one item from a ChanSubscriber. Exactly one field is set.
type Event struct {
	Chunk *Chunk
	End   *End
}

// ChanSubscriber forwards output to a channel.
type ChanSubscriber struct {
	events chan Event
}

// NewChanSubscriber returns a subscriber whose channel holds up to buffer
// pending events before Deliver blocks.
func NewChanSubscriber(buffer int) *ChanSubscriber {
	if buffer < 0 {
		buffer = 0
	}
	return &ChanSubscriber{events: make(chan Event, buffer)}
}

// Events returns the receive side. It is never closed; the End event marks
// the end of the stream.
func (s *ChanSubscriber) Events() <-chan Event { return s.events }

func (s *ChanSubscriber) Deliver(ctx context.Context, chunk Chunk) error {
	select {
	case s.events <- Event{Chunk: &chunk}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ChanSubscriber) Ended(ctx context.Context, end End) {
	select {
	case s.events <- Event{End: &end}:
	case <-ctx.Done():
	}
}

// Discard drops all output.
var Discard Subscriber = discard{}

type discard struct{}

func (discard) Deliver(context.Context, Chunk) error { return nil }
func (discard) Ended(context.Context, End)           {}
