package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/bazarit/marketplace-api/internal/api/metrics"
	"github.com/bazarit/marketplace-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

type delivery struct {
	phone string
	code  string
}

// SMSDispatcher moves code delivery off the request path. Deliveries are
// sharded to a fixed set of workers by phone number, so sends to the same
// phone keep their order. A failed send is logged and dropped: the challenge
// record stays valid and the caller can re-issue, superseding it.
type SMSDispatcher struct {
	workers []chan delivery
	sender  ports.CodeSender
	log     zerolog.Logger
}

// NewSMSDispatcher creates an SMSDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewSMSDispatcher(numWorkers int, sender ports.CodeSender, log zerolog.Logger) *SMSDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &SMSDispatcher{
		workers: make([]chan delivery, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan delivery, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *SMSDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send satisfies ports.CodeSender by enqueueing the delivery. Non-blocking up
// to channelBuffer capacity.
func (d *SMSDispatcher) Send(_ context.Context, phone, code string) error {
	idx := d.shardIndex(phone)
	d.workers[idx] <- delivery{phone: phone, code: code}
	metrics.SMSQueueDepth.WithLabelValues(workerLabel(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// shardIndex maps a phone number deterministically to a worker index.
func (d *SMSDispatcher) shardIndex(phone string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phone))
	return int(h.Sum32()) % len(d.workers)
}

func (d *SMSDispatcher) runWorker(ctx context.Context, id int, ch <-chan delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case dl, ok := <-ch:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, dl.phone, dl.code); err != nil {
				d.log.Error().Err(err).
					Str("phone", dl.phone).
					Int("worker_id", id).
					Msg("sms delivery failed")
			}
			metrics.SMSQueueDepth.WithLabelValues(workerLabel(id)).Set(float64(len(ch)))
		}
	}
}

func workerLabel(id int) string {
	return strconv.Itoa(id)
}
