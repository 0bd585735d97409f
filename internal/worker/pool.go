// Package worker implements the buffered worker pool used for asynchronous
// battle ingestion. HTTP handlers enqueue battles; workers batch them by size
// or interval and hand each batch to a Processor.
//   - Backpressure via load shedding when the queue is full
//   - Batched extraction and sink writes
//   - Graceful shutdown that drains the queue
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pkmn-analytics/battle-features/internal/models"
)

// IngestSource tags runs started by the pool.
const IngestSource = "ingest"

// Prometheus metrics
var (
	battlesEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_battles_enqueued_total",
		Help: "Total number of battles accepted into the queue",
	})

	battlesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_battles_processed_total",
		Help: "Total number of battles processed by workers",
	})

	batchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_batches_failed_total",
		Help: "Total number of batches whose processing returned an error",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pool_queue_depth",
		Help: "Current depth of the worker queue",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pool_batch_duration_seconds",
		Help:    "Duration of batch extraction and storage",
		Buckets: prometheus.DefBuckets,
	})

	battlesLoadShed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pool_battles_load_shed_total",
		Help: "Total number of battles dropped due to load shedding",
	})
)

// Processor extracts and stores one batch of battles.
type Processor interface {
	Run(ctx context.Context, source string, battles []models.BattleRecord) (*models.ExtractionReport, error)
}

// Job represents a unit of work for the worker pool
type Job struct {
	Battle   models.BattleRecord
	Received time.Time
}

// PoolConfig configures the worker pool
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	BatchTimeout  time.Duration
	Processor     Processor
	Logger        *zap.Logger
}

// Pool manages a pool of workers for async battle processing
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	logger   *zap.SugaredLogger
}

// NewPool creates a new worker pool
func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	// Battles enqueued before Start wait in the queue; Stop before Start
	// just closes it.
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines. It must be called before the pool is
// shared with other goroutines.
func (p *Pool) Start(ctx context.Context) {
	initial := p.cancel
	p.ctx, p.cancel = context.WithCancel(ctx)
	initial()

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	go p.reportQueueDepth()

	p.logger.Infow("Worker pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop closes the queue, waits for workers to drain it, then releases the
// pool context. It is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("Stopping worker pool...")
		close(p.jobQueue)
		p.wg.Wait()
		p.cancel()
		p.logger.Info("Worker pool stopped")
	})
}

// Enqueue adds a battle to the queue without blocking. It returns false when
// the queue is full or the pool is stopping.
func (p *Pool) Enqueue(battle models.BattleRecord) (ok bool) {
	job := Job{Battle: battle, Received: time.Now()}

	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue battle (pool stopped)", "battle_id", battle.BattleID, "error", r)
			battlesLoadShed.Inc()
			ok = false
		}
	}()

	select {
	case <-p.ctx.Done():
		p.logger.Warnw("Worker pool context canceled, dropping battle", "battle_id", battle.BattleID)
		battlesLoadShed.Inc()
		return false
	default:
	}

	select {
	case p.jobQueue <- job:
		battlesEnqueued.Inc()
		return true
	default:
		battlesLoadShed.Inc()
		return false
	}
}

// QueueDepth returns current queue size
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

// worker processes jobs from the queue in batches
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]models.BattleRecord, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		start := time.Now()
		report, err := p.processBatch(batch)
		if err != nil {
			p.logger.Errorw("Batch processing failed",
				"worker", id,
				"batchSize", len(batch),
				"error", err,
			)
			batchesFailed.Inc()
		} else {
			p.logger.Infow("Batch processed",
				"worker", id,
				"run", report.Run.ID,
				"extracted", report.Run.Extracted,
				"failed", report.Run.Failed,
				"duration", time.Since(start),
			)
			battlesProcessed.Add(float64(len(batch)))
		}
		batchDuration.Observe(time.Since(start).Seconds())

		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job.Battle)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			p.logger.Infow("Context done, flushing final batch", "worker", id)
			flush()
			return
		}
	}
}

// processBatch runs one batch with its own deadline, detached from the pool
// context so a shutdown does not abort in-flight writes.
func (p *Pool) processBatch(batch []models.BattleRecord) (*models.ExtractionReport, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.BatchTimeout)
	defer cancel()

	// The processor may retain the slice; the worker reuses its buffer.
	battles := make([]models.BattleRecord, len(batch))
	copy(battles, batch)
	return p.config.Processor.Run(ctx, IngestSource, battles)
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
