package fanout

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"log/slog"

	"github.com/abdullah0300/fleet-management-sub001/internal/metrics"
	"github.com/abdullah0300/fleet-management-sub001/pkg/models"
)

// Hub maintains exactly one subscription to the location feed and shares the
// latest snapshot per vehicle with any number of consumers. The subscription
// is established when the first consumer attaches and released when the last
// one detaches.
type Hub struct {
	feed       Feed
	logger     *slog.Logger
	sink       metrics.Sink
	staleAfter time.Duration

	mu        sync.Mutex
	snapshots map[string]models.LocationSnapshot
	consumers int
	lastEvent time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

type Option func(*Hub)

func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithMetrics(s metrics.Sink) Option {
	return func(h *Hub) {
		if s != nil {
			h.sink = s
		}
	}
}

// WithStaleThreshold sets how long the hub may go without an event before
// Stale reports true. Zero disables staleness reporting.
func WithStaleThreshold(d time.Duration) Option {
	return func(h *Hub) { h.staleAfter = d }
}

func NewHub(feed Feed, opts ...Option) *Hub {
	h := &Hub{
		feed:      feed,
		logger:    slog.Default(),
		sink:      metrics.Noop(),
		snapshots: make(map[string]models.LocationSnapshot),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach registers a consumer and returns its detach function. The first
// attach starts the feed subscription; detach is idempotent and the last one
// releases it.
func (h *Hub) Attach() (detach func()) {
	h.mu.Lock()
	h.consumers++
	h.sink.FanoutConsumers(h.consumers)
	if h.consumers == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancel = cancel
		h.done = make(chan struct{})
		h.lastEvent = time.Now()
		go h.run(ctx, h.done)
	}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.consumers--
			h.sink.FanoutConsumers(h.consumers)
			var cancel context.CancelFunc
			var done chan struct{}
			if h.consumers == 0 {
				cancel = h.cancel
				done = h.done
				h.cancel = nil
				h.done = nil
			}
			h.mu.Unlock()

			if cancel != nil {
				cancel()
				<-done
			}
		})
	}
}

// Snapshot returns the latest known location for one vehicle.
func (h *Hub) Snapshot(vehicleID string) (models.LocationSnapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.snapshots[vehicleID]
	return s, ok
}

// Snapshots returns a copy of the full vehicle -> location mapping.
func (h *Hub) Snapshots() map[string]models.LocationSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]models.LocationSnapshot, len(h.snapshots))
	for k, v := range h.snapshots {
		out[k] = v
	}
	return out
}

// Stale reports whether the hub has gone longer than the configured
// threshold without receiving any event while consumers are attached.
func (h *Hub) Stale() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.staleAfter <= 0 || h.consumers == 0 {
		return false
	}
	return time.Since(h.lastEvent) > h.staleAfter
}

func (h *Hub) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	backoff := 500 * time.Millisecond
	const maxBackoff = 30 * time.Second

	for {
		ch, err := h.feed.Subscribe(ctx)
		if err != nil {
			h.logger.Warn("feed subscribe failed", "err", err, "retry_in", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(jitter(backoff)):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = 500 * time.Millisecond

		if !h.consume(ctx, ch) {
			return
		}
		// channel closed upstream; resubscribe
		h.logger.Warn("location feed closed, resubscribing")
	}
}

// consume drains events until the channel closes (returns true) or the
// context is canceled (returns false).
func (h *Hub) consume(ctx context.Context, ch <-chan Event) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case e, ok := <-ch:
			if !ok {
				return true
			}
			h.apply(e)
		}
	}
}

func (h *Hub) apply(e Event) {
	// Incomplete samples never overwrite a known position.
	if e.VehicleID == "" || e.Lat == nil || e.Lng == nil {
		h.sink.FanoutDropped()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastEvent = time.Now()
	if prev, ok := h.snapshots[e.VehicleID]; ok && e.Timestamp < prev.Timestamp {
		// Out-of-order delivery: an older sample must not shadow a newer one.
		h.sink.FanoutDropped()
		return
	}
	h.snapshots[e.VehicleID] = models.LocationSnapshot{
		Lat:         *e.Lat,
		Lng:         *e.Lng,
		Heading:     e.Heading,
		Speed:       e.Speed,
		Timestamp:   e.Timestamp,
		LastUpdated: e.LastUpdated,
	}
	h.sink.FanoutEvent()
}

func jitter(d time.Duration) time.Duration {
	// +/- 20%
	delta := time.Duration(rand.Int63n(int64(d) / 5))
	if rand.Intn(2) == 0 {
		return d - delta
	}
	return d + delta
}
