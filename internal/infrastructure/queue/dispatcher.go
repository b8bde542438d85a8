package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/api/metrics"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 10 * time.Second
)

// Dispatcher delivers notification messages through a gateway on a fixed set
// of workers, sharded by recipient so each user's messages keep their order.
// It implements ports.Courier.
type Dispatcher struct {
	workers []chan ports.Message
	gateway ports.DeliveryGateway
	log     zerolog.Logger
	wg      sync.WaitGroup
}

var _ ports.Courier = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, gateway ports.DeliveryGateway, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Message, numWorkers),
		gateway: gateway,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Message, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have returned.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has stopped.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Deliver enqueues msg on the worker responsible for its recipient. It never
// blocks: when the worker's buffer is full the message is dropped.
func (d *Dispatcher) Deliver(msg ports.Message) {
	idx := d.shardIndex(msg.Recipient)
	select {
	case d.workers[idx] <- msg:
		metrics.DeliveryQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.DeliveriesTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("recipient", msg.Recipient).Int("worker_id", idx).Msg("delivery queue full, message dropped")
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Message) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.DeliveryQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.send(ctx, id, msg)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, id int, msg ports.Message) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.gateway.Send(sendCtx, msg)
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DeliveriesTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("recipient", msg.Recipient).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.DeliveriesTotal.WithLabelValues("sent").Inc()
}
