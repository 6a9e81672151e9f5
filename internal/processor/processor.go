package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lexora/translation-gateway/internal/config"
	"github.com/lexora/translation-gateway/internal/queue"
	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/lexora/translation-gateway/pkg/redis"
	"github.com/lexora/translation-gateway/pkg/worker"
)

const ProcessingTimeout = time.Second * 10
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

// ProcessorService runs the task consumer. One consumer with a worker
// pool of one gives each worker instance a single in-flight task; the
// cluster scales by running more worker processes.
type ProcessorService struct {
	adapter   redis.RedisAdapter
	queue     *queue.Queue
	processor Processor
	metrics   *ServiceMetrics
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	worker    *worker.WorkerManager
}

// Processor handles one queue delivery.
type Processor interface {
	Process(ctx context.Context, message *queue.Message) error
	GetType() string
}

func NewProcessorService(redisAdapter redis.RedisAdapter) (*ProcessorService, error) {
	ctx, cancel := context.WithCancel(context.Background())
	service := &ProcessorService{
		adapter: redisAdapter,
		metrics: NewServiceMetrics(),
		ctx:     ctx,
		cancel:  cancel,
		worker:  worker.NewWorkerManager(1, 1, nil),
	}
	return service, nil
}

func (s *ProcessorService) RegisterProcessor(processor Processor) {
	s.processor = processor
	logger.Info("Registered processor", "type", processor.GetType())
}

// Queue exposes the consumer's queue so the task processor can
// republish retries onto the same stream.
func (s *ProcessorService) Queue() *queue.Queue {
	return s.queue
}

// Init creates the queue before Start so RegisterProcessor can wire a
// processor that needs the queue handle.
func (s *ProcessorService) Init() error {
	cfg := config.Get()
	queueConfig := queue.Config{
		Name:              cfg.QueueName,
		ConsumerGroup:     cfg.QueueConsumerGroup,
		ConsumerName:      cfg.QueueConsumerName,
		MaxAttempts:       cfg.QueueMaxAttempts,
		VisibilityTimeout: cfg.QueueVisibilityTimeout,
		PollInterval:      cfg.QueuePollInterval,
		BatchSize:         1,
		MaxLen:            cfg.QueueMaxLen,
		EnableDLQ:         cfg.QueueEnableDLQ,
	}
	if queueConfig.ConsumerName == "" {
		queueConfig.ConsumerName = fmt.Sprintf("%s-worker", cfg.AppName)
	}

	q, err := queue.New(s.adapter, queueConfig)
	if err != nil {
		return fmt.Errorf("failed to create queue: %w", err)
	}
	s.queue = q
	return nil
}

func (s *ProcessorService) Start() error {
	logger.Info("Starting Processor Service...")

	if s.queue == nil {
		if err := s.Init(); err != nil {
			return err
		}
	}

	s.worker.SetWorker(s.workerHandler)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.worker.Start(); err != nil {
			logger.Error("Worker manager stopped", "error", err)
		}
	}()

	if err := s.queue.Consume(s.messageHandler); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	s.wg.Add(2)
	go s.metricsReporter()
	go s.healthChecker()

	logger.Info("Processor Service started", "queue", config.Get().QueueName)
	return nil
}

func (s *ProcessorService) metricsReporter() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reportMetrics()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) reportMetrics() {
	stats := s.metrics.GetStats()

	logger.Info("Service metrics",
		"total_processed", stats["total_processed"],
		"total_failed", stats["total_failed"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"],
		"uptime_seconds", stats["uptime_seconds"])

	if qStats, err := s.queue.GetStats(); err == nil {
		logger.Info("Queue stats",
			"total", qStats.TotalMessages,
			"pending", qStats.PendingMessages,
			"failed", qStats.FailedMessages)
	}
}

func (s *ProcessorService) healthChecker() {
	defer s.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.performHealthCheck()
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ProcessorService) performHealthCheck() {
	if err := s.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("HEALTH CHECK FAILED: Redis connection error", "error", err)
		return
	}

	stats, err := s.queue.GetStats()
	if err != nil {
		logger.Warn("HEALTH CHECK WARNING: Queue stats unavailable", "error", err)
		return
	}

	if stats.PendingMessages > 10000 {
		logger.Warn("HEALTH CHECK WARNING: Queue has high lag", "pending_messages", stats.PendingMessages)
	}

	logger.Info("HEALTH CHECK: OK - Service healthy")
}

// Stop drains the consumer and the worker pool.
func (s *ProcessorService) Stop() {
	logger.Info("Shutting down Processor Service...")

	s.cancel()

	if s.queue != nil {
		if err := s.queue.Stop(ShutdownTimeout); err != nil {
			logger.Error("Error stopping queue", "error", err)
		}
	}

	s.worker.Exit()
	s.wg.Wait()

	s.reportMetrics()

	logger.Info("Processor Service stopped")
}

type jobResult struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler bridges the queue consumer to the worker pool and
// blocks until the worker reports back, so the consumer holds exactly
// one unacked delivery at a time.
func (s *ProcessorService) messageHandler(ctx context.Context, msg *queue.Message) error {
	resultChan := make(chan error, 1)

	msgCtx, cancel := context.WithTimeout(ctx, ProcessingTimeout+time.Second)
	defer cancel()

	job := &jobResult{
		msg:        msg,
		resultChan: resultChan,
		ctx:        msgCtx,
	}

	s.worker.Enqueue(job)

	select {
	case err := <-resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for worker to process message: %w", msgCtx.Err())
	}
}

func (s *ProcessorService) workerHandler(workerIndex int, job interface{}) {
	jobRes, ok := job.(*jobResult)
	if !ok {
		logger.Error("Invalid job type in worker", "worker", workerIndex)
		return
	}

	msg := jobRes.msg
	start := time.Now()
	var resultErr error

	select {
	case <-jobRes.ctx.Done():
		logger.Warn("Job context cancelled before processing started", "worker", workerIndex)
		return
	default:
	}

	if s.processor == nil {
		logger.Error("No processor registered", "worker", workerIndex)
		s.metrics.RecordFailure()
		resultErr = nil // ACK - nothing will ever handle it
	} else if err := s.processor.Process(jobRes.ctx, msg); err != nil {
		s.metrics.RecordFailure()
		logger.Error("Failed to process message", "worker", workerIndex, "error", err)
		resultErr = err
	} else {
		s.metrics.RecordSuccess(time.Since(start))
		resultErr = nil
	}

	select {
	case jobRes.resultChan <- resultErr:
	case <-jobRes.ctx.Done():
		logger.Warn("Context cancelled while sending result, message handler timed out", "worker", workerIndex)
	}
}
