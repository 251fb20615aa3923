package realtime

import (
	"context"
	"encoding/json"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/chatmind/chat-api/internal/api/metrics"
	"github.com/chatmind/chat-api/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

type delivery struct {
	sub     Subscriber
	roomID  string
	payload []byte
}

// Dispatcher fans payloads out to room subscribers through a fixed set of
// workers, sharded by connection ID so each connection's deliveries stay
// ordered. Publish never waits on a delivery and never takes a lock a
// delivery could block on: the registry snapshot is taken up front and
// enqueueing is non-blocking.
type Dispatcher struct {
	registry *Registry
	workers  []chan delivery
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, registry *Registry, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		registry: registry,
		workers:  make([]chan delivery, numWorkers),
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// PublishMessage wraps a persisted message in its wire envelope and fans it
// out to the message's room. Satisfies ports.MessagePublisher.
func (d *Dispatcher) PublishMessage(msg *domain.Message) {
	d.Publish(msg.RoomID, NewMessageEnvelope(msg))
}

// Publish delivers env to every current subscriber of roomID, each attempt
// independent of the others. The call returns as soon as all deliveries are
// enqueued; a worker queue that is full loses that one delivery (recorded
// as dropped) rather than stalling the caller.
func (d *Dispatcher) Publish(roomID string, env Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		d.log.Error().Err(err).Str("room_id", roomID).Msg("envelope marshal failed")
		return
	}

	subs := d.registry.SubscribersOf(roomID)
	metrics.FanoutSubscribers.Observe(float64(len(subs)))

	for _, sub := range subs {
		select {
		case d.workers[d.shardIndex(sub.ID())] <- delivery{sub: sub, roomID: roomID, payload: payload}:
		default:
			metrics.DeliveriesTotal.WithLabelValues("dropped").Inc()
			d.log.Warn().Str("room_id", roomID).Str("conn_id", sub.ID()).Msg("worker queue full, delivery dropped")
		}
	}
}

// shardIndex maps a connection ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(connID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(connID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case dl, ok := <-ch:
			if !ok {
				return
			}
			if err := dl.sub.Deliver(dl.payload); err != nil {
				metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
				d.log.Debug().Err(err).
					Str("room_id", dl.roomID).
					Str("conn_id", dl.sub.ID()).
					Int("worker_id", id).
					Msg("delivery failed")
			}
		}
	}
}
