package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pniceshipping/portal/internal/api/metrics"
	"github.com/pniceshipping/portal/internal/core/domain"
	"github.com/pniceshipping/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	// jobTimeout bounds one best-effort dispatch, covering the mailer's
	// worst case of three attempts plus backoff.
	jobTimeout = 30 * time.Second
)

// Suppressor remembers recently sent (tracking, status) pairs so the
// best-effort path does not mail the same change twice inside the window.
// Best-effort delivery stays at-least-once; suppression only narrows the
// duplication window.
type Suppressor interface {
	AlreadySent(ctx context.Context, trackingNumber string, status domain.ShipmentStatus) (bool, error)
	MarkSent(ctx context.Context, trackingNumber string, status domain.ShipmentStatus) error
}

// Dispatcher routes best-effort notification jobs to a fixed set of workers
// using consistent hashing on the tracking number, guaranteeing per-shipment
// send ordering. Failures are logged and counted, never surfaced.
type Dispatcher struct {
	workers    []chan ports.NotificationJob
	notifier   ports.Notifier
	suppressor Suppressor
	log        zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, suppressor Suppressor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:    make([]chan ports.NotificationJob, numWorkers),
		notifier:   notifier,
		suppressor: suppressor,
		log:        log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.NotificationJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a job to the worker responsible for its tracking number.
// Never blocks the caller: when the shard's buffer is full (the notification
// service is down and every job is burning its retries) the job is dropped
// and counted. Best-effort delivery allows the loss.
func (d *Dispatcher) Enqueue(job ports.NotificationJob) {
	idx := d.shardIndex(job.TrackingNumber)
	select {
	case d.workers[idx] <- job:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("tracking_number", job.TrackingNumber).
			Str("status", string(job.Status)).
			Int("worker_id", idx).
			Msg("notification queue full, job dropped")
		metrics.NotificationsDroppedTotal.Inc()
	}
}

// EnqueueBatch enqueues multiple jobs preserving per-shipment ordering.
func (d *Dispatcher) EnqueueBatch(jobs []ports.NotificationJob) {
	for _, j := range jobs {
		d.Enqueue(j)
	}
}

// shardIndex maps a tracking number deterministically to a worker index.
func (d *Dispatcher) shardIndex(trackingNumber string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(trackingNumber))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.NotificationJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.process(ctx, id, job)
			metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *Dispatcher) process(ctx context.Context, workerID int, job ports.NotificationJob) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if d.suppressor != nil {
		sent, err := d.suppressor.AlreadySent(jobCtx, job.TrackingNumber, job.Status)
		if err != nil {
			d.log.Warn().Err(err).Str("tracking_number", job.TrackingNumber).Msg("suppression check failed, sending anyway")
		} else if sent {
			d.log.Debug().
				Str("tracking_number", job.TrackingNumber).
				Str("status", string(job.Status)).
				Msg("duplicate notification suppressed")
			metrics.NotificationsSuppressedTotal.Inc()
			return
		}
	}

	err := d.notifier.Dispatch(jobCtx, job.Status, job.RecipientName, job.RecipientEmail, job.TrackingNumber)
	if err != nil {
		d.log.Error().Err(err).
			Str("tracking_number", job.TrackingNumber).
			Str("status", string(job.Status)).
			Int("worker_id", workerID).
			Msg("best-effort notification failed")
		metrics.NotificationsFailedTotal.WithLabelValues(string(domain.PolicyBestEffort)).Inc()
		return
	}

	metrics.NotificationsSentTotal.WithLabelValues(string(job.Status), string(domain.PolicyBestEffort)).Inc()
	if d.suppressor != nil {
		if err := d.suppressor.MarkSent(jobCtx, job.TrackingNumber, job.Status); err != nil {
			d.log.Warn().Err(err).Str("tracking_number", job.TrackingNumber).Msg("failed to record sent notification")
		}
	}
}
