package fanout

import (
	"context"
	"errors"
	"time"
)

// Event is one vehicle-location change notification. Lat/Lng are pointers so
// an incomplete sample is distinguishable from a zero coordinate; the hub
// ignores incomplete events.
type Event struct {
	VehicleID   string
	Lat         *float64
	Lng         *float64
	Heading     float64
	Speed       float64
	Timestamp   int64 // sample time, unix milliseconds
	LastUpdated int64
}

var ErrBufferFull = errors.New("event buffer full")

// Feed is the upstream change stream the hub subscribes to. Subscribe may be
// called again after the returned channel is abandoned (reconnect).
type Feed interface {
	Subscribe(ctx context.Context) (<-chan Event, error)
}

// Bus is an in-process Feed fed by the ingest path.
type Bus struct {
	ch          chan Event
	emitTimeout time.Duration
}

type BusOption func(*Bus)

// WithEmitTimeout makes Emit wait up to d for buffer space instead of
// failing immediately.
func WithEmitTimeout(d time.Duration) BusOption {
	return func(b *Bus) { b.emitTimeout = d }
}

func NewBus(buffer int, opts ...BusOption) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	b := &Bus{ch: make(chan Event, buffer)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Emit publishes an event. With no emit timeout configured it never blocks:
// a full buffer returns ErrBufferFull and the caller treats the loss as a
// consistency warning, not a failure.
func (b *Bus) Emit(ctx context.Context, event Event) error {
	if b.emitTimeout <= 0 {
		select {
		case b.ch <- event:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		default:
			return ErrBufferFull
		}
	}

	t := time.NewTimer(b.emitTimeout)
	defer t.Stop()
	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return ErrBufferFull
	}
}

func (b *Bus) Subscribe(ctx context.Context) (<-chan Event, error) {
	return b.ch, nil
}
