package shipper

import (
	"context"
	"log"
	"sync"
	"time"

	"logship/internal/logging"
)

// Shipper accumulates records and flushes them to a sink when the batch
// reaches MaxBatchSize or when the flush ticker fires, whichever comes
// first. Delivery is best effort: a batch that fails to send is logged
// locally and dropped, never retried.
type Shipper struct {
	ctx       context.Context
	cancel    context.CancelFunc
	sink      logging.Sink
	config    logging.Config
	batch     []logging.Record
	mu        sync.Mutex
	lastFlush time.Time
	batchChan chan []logging.Record
	stats     *Stats
	wg        sync.WaitGroup
}

func New(ctx context.Context, sink logging.Sink, config logging.Config) *Shipper {
	nCtx, cancel := context.WithCancel(ctx)
	return &Shipper{
		ctx:       nCtx,
		cancel:    cancel,
		sink:      sink,
		config:    config.WithDefaults(),
		batchChan: make(chan []logging.Record, 100),
		stats:     &Stats{},
		lastFlush: time.Now(),
	}
}

// Record appends rec to the current batch. It never blocks on network
// I/O and never reports an error to the caller.
func (s *Shipper) Record(rec logging.Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = append(s.batch, rec)
	s.stats.IncRecordsAccepted()
	recordsTotal.WithLabelValues(string(rec.Level), rec.Service).Inc()

	if len(s.batch) >= s.config.MaxBatchSize {
		s.flushLocked()
	}
}

// Flush hands the current batch to the delivery goroutine and clears it.
func (s *Shipper) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *Shipper) Start() {
	s.wg.Add(2)
	go s.flushTimer()
	go s.deliver()
}

// Stop flushes whatever is buffered and shuts the delivery goroutine
// down. The final send is best effort, not guaranteed.
func (s *Shipper) Stop() {
	s.Flush()
	s.cancel()
	s.wg.Wait()
}

// Stats returns a snapshot of the shipper's counters.
func (s *Shipper) Stats() Stats {
	return s.stats.Snapshot()
}

// LastFlush reports when a batch was last handed off for delivery.
func (s *Shipper) LastFlush() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFlush
}

// flushLocked must be called with s.mu held. The batch is cleared
// exactly once here, whether or not delivery later succeeds.
func (s *Shipper) flushLocked() {
	if len(s.batch) == 0 {
		return
	}

	batchToSend := make([]logging.Record, len(s.batch))
	copy(batchToSend, s.batch)

	s.batch = s.batch[:0]
	s.lastFlush = time.Now()

	select {
	case s.batchChan <- batchToSend:
	default:
		log.Printf("Delivery queue full, dropping batch of %d records", len(batchToSend))
		s.stats.AddBatchDropped(len(batchToSend))
		batchesDropped.Inc()
	}
}

func (s *Shipper) flushTimer() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// An empty batch on a tick is a no-op.
			s.mu.Lock()
			if len(s.batch) > 0 {
				s.flushLocked()
			}
			s.mu.Unlock()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Shipper) deliver() {
	defer s.wg.Done()

	for {
		select {
		case batch := <-s.batchChan:
			s.send(batch)
		case <-s.ctx.Done():
			// Drain anything queued before shutdown, best effort.
			for {
				select {
				case batch := <-s.batchChan:
					s.send(batch)
				default:
					return
				}
			}
		}
	}
}

func (s *Shipper) send(batch []logging.Record) {
	start := time.Now()
	err := s.sink.SendBatch(batch)
	sendDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Printf("Failed to send batch of %d records: %v", len(batch), err)
		s.stats.AddBatchDropped(len(batch))
		batchesDropped.Inc()
		return
	}

	s.stats.AddBatchSent(len(batch))
	batchesSent.Inc()
}
