package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventboard/eventboard/internal/pkg/metrics"
)

const (
	defaultWorkers     = 4
	defaultMaxAttempts = 5
	channelBuffer      = 256

	baseDelay = 200 * time.Millisecond
	maxDelay  = 10 * time.Second
)

// Cascader removes every registration of an event. It must be idempotent.
type Cascader interface {
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
}

type retryJob struct {
	eventID string
	cause   error
}

// CascadeRetrier re-runs failed registration cascades on a fixed set of
// workers. Jobs are sharded on the event id so retries for one event never
// run concurrently.
type CascadeRetrier struct {
	workers     []chan retryJob
	store       Cascader
	maxAttempts int
	baseDelay   time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewCascadeRetrier creates a CascadeRetrier with numWorkers sharded workers.
// Non-positive arguments fall back to defaults.
func NewCascadeRetrier(numWorkers, maxAttempts int, store Cascader, log zerolog.Logger) *CascadeRetrier {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	r := &CascadeRetrier{
		workers:     make([]chan retryJob, numWorkers),
		store:       store,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		log:         log.With().Str("component", "cascade_retrier").Logger(),
	}
	for i := range r.workers {
		r.workers[i] = make(chan retryJob, channelBuffer)
	}
	return r
}

// Run starts the workers and blocks until ctx is cancelled and every worker
// has returned.
func (r *CascadeRetrier) Run(ctx context.Context) error {
	for i, ch := range r.workers {
		r.wg.Add(1)
		go r.runWorker(ctx, i, ch)
	}
	<-ctx.Done()
	r.wg.Wait()
	return nil
}

// ReportCascadeFailure queues a retry. It never blocks: when the shard is
// full the job is dropped and logged as an orphan.
func (r *CascadeRetrier) ReportCascadeFailure(eventID string, cause error) {
	idx := r.shardIndex(eventID)
	select {
	case r.workers[idx] <- retryJob{eventID: eventID, cause: cause}:
		metrics.CascadeQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(r.workers[idx])))
	default:
		metrics.CascadeRetriesTotal.WithLabelValues("dropped").Inc()
		r.log.Error().Err(cause).Str("event_id", eventID).Msg("cascade queue full, registrations orphaned")
	}
}

// shardIndex maps an event id deterministically to a worker index.
func (r *CascadeRetrier) shardIndex(eventID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	return int(h.Sum32() % uint32(len(r.workers)))
}

func (r *CascadeRetrier) runWorker(ctx context.Context, id int, ch <-chan retryJob) {
	defer r.wg.Done()
	depth := metrics.CascadeQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			if n := len(ch); n > 0 {
				r.log.Warn().Int("worker_id", id).Int("pending", n).Msg("shutting down with pending cascade retries")
			}
			return
		case job := <-ch:
			depth.Set(float64(len(ch)))
			r.retry(ctx, id, job)
		}
	}
}

func (r *CascadeRetrier) retry(ctx context.Context, worker int, job retryJob) {
	lastErr := job.cause
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		timer := time.NewTimer(r.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		removed, err := r.store.DeleteByEvent(ctx, job.eventID)
		if err == nil {
			metrics.CascadeRetriesTotal.WithLabelValues("ok").Inc()
			r.log.Info().
				Str("event_id", job.eventID).
				Int("attempt", attempt).
				Int64("registrations_removed", removed).
				Msg("cascade retry succeeded")
			return
		}

		lastErr = err
		metrics.CascadeRetriesTotal.WithLabelValues("failed").Inc()
		r.log.Warn().Err(err).
			Str("event_id", job.eventID).
			Int("attempt", attempt).
			Int("worker_id", worker).
			Msg("cascade retry failed")
	}

	metrics.CascadeRetriesTotal.WithLabelValues("dropped").Inc()
	r.log.Error().Err(lastErr).
		Str("event_id", job.eventID).
		Int("attempts", r.maxAttempts).
		Msg("cascade retries exhausted, registrations orphaned")
}

// backoff doubles from baseDelay and is capped at maxDelay.
func (r *CascadeRetrier) backoff(attempt int) time.Duration {
	d := r.baseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	return d
}
