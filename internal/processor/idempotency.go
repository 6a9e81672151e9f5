package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/lexora/translation-gateway/pkg/redis"
)

var (
	ErrAlreadyProcessed   = errors.New("task already processed")
	ErrLockAcquireFailed  = errors.New("failed to acquire processing lock")
	ErrMaxRetriesExceeded = errors.New("maximum retries exceeded")
)

type IdempotencyConfig struct {
	LockTTL time.Duration

	ProcessedTTL time.Duration

	MaxRetries int

	RetryKeyPrefix string

	LockKeyPrefix string

	ProcessedKeyPrefix string
}

func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		LockTTL:            30 * time.Second,
		ProcessedTTL:       24 * time.Hour,
		MaxRetries:         5,
		RetryKeyPrefix:     "retry:",
		LockKeyPrefix:      "lock:",
		ProcessedKeyPrefix: "processed:",
	}
}

// IdempotencyService keeps redis-side markers around task processing:
// a short lock so two workers never run the same task at once, a
// processed marker so a redelivered task is skipped without touching
// the database, and a retry counter surviving republishes.
type IdempotencyService struct {
	redis  redis.RedisAdapter
	config IdempotencyConfig
}

func NewIdempotencyService(redisAdapter redis.RedisAdapter, config IdempotencyConfig) *IdempotencyService {
	return &IdempotencyService{
		redis:  redisAdapter,
		config: config,
	}
}

type ProcessingContext struct {
	TaskID       string
	RetryCount   int
	IsRetry      bool
	lockAcquired bool
	service      *IdempotencyService
}

func (s *IdempotencyService) AcquireProcessingLock(ctx context.Context, taskID string) (*ProcessingContext, error) {
	// Step 1: Check if already processed (long-term marker)
	processedKey := s.config.ProcessedKeyPrefix + taskID
	exists, err := s.redis.Exist(processedKey)
	if err != nil {
		logger.Warn("Failed to check processed status", "task_id", taskID, "error", err)
		// Continue even if check fails - the database unique constraint
		// still stops a double debit
	} else if exists > 0 {
		return nil, ErrAlreadyProcessed
	}

	// Step 2: Get current retry count
	retryKey := s.config.RetryKeyPrefix + taskID
	retryCountBytes, err := s.redis.Get(retryKey)
	retryCount := 0
	if err == nil && len(retryCountBytes) > 0 {
		fmt.Sscanf(string(retryCountBytes), "%d", &retryCount)
	}

	// Step 3: Check if max retries exceeded
	if retryCount >= s.config.MaxRetries {
		logger.Error("Max retries exceeded for task", "task_id", taskID, "retry_count", retryCount)
		return nil, fmt.Errorf("%w: task_id=%s, retries=%d", ErrMaxRetriesExceeded, taskID, retryCount)
	}

	// Step 4: Acquire short-term processing lock
	lockKey := s.config.LockKeyPrefix + taskID
	lockValue := []byte(fmt.Sprintf("%d", time.Now().UnixNano()))

	acquired, err := s.redis.SetNX(lockKey, lockValue, s.config.LockTTL)
	if err != nil {
		logger.Error("Failed to acquire lock", "task_id", taskID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}

	if !acquired {
		logger.Info("Lock already held by another consumer", "task_id", taskID)
		return nil, ErrLockAcquireFailed
	}

	return &ProcessingContext{
		TaskID:       taskID,
		RetryCount:   retryCount,
		IsRetry:      retryCount > 0,
		lockAcquired: true,
		service:      s,
	}, nil
}

func (s *IdempotencyService) MarkSuccess(ctx context.Context, pc *ProcessingContext) error {
	taskID := pc.TaskID

	processedKey := s.config.ProcessedKeyPrefix + taskID
	err := s.redis.Set(processedKey, []byte("1"), s.config.ProcessedTTL)
	if err != nil {
		logger.Error("Failed to mark task as processed", "task_id", taskID, "error", err)
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	s.cleanup(ctx, pc)

	logger.Info("Task marked as successfully processed",
		"task_id", taskID,
		"retry_count", pc.RetryCount)

	return nil
}

func (s *IdempotencyService) MarkFailure(ctx context.Context, pc *ProcessingContext, reason error) error {
	taskID := pc.TaskID

	// Bump the retry counter; it outlives the lock so the count is
	// visible on the next delivery.
	retryKey := s.config.RetryKeyPrefix + taskID
	newRetryCount := pc.RetryCount + 1
	retryValue := []byte(fmt.Sprintf("%d", newRetryCount))

	err := s.redis.Set(retryKey, retryValue, s.config.ProcessedTTL)
	if err != nil {
		logger.Error("Failed to increment retry counter", "task_id", taskID, "error", err)
	}

	lockKey := s.config.LockKeyPrefix + taskID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("Failed to remove lock", "task_id", taskID, "error", err)
	}

	logger.Warn("Task processing failed, will retry",
		"task_id", taskID,
		"retry_count", newRetryCount,
		"max_retries", s.config.MaxRetries,
		"reason", reason)

	return nil
}

func (s *IdempotencyService) ReleaseLock(ctx context.Context, pc *ProcessingContext) error {
	if pc == nil || !pc.lockAcquired {
		return nil
	}

	lockKey := s.config.LockKeyPrefix + pc.TaskID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("Failed to release lock", "task_id", pc.TaskID, "error", err)
		return err
	}

	pc.lockAcquired = false
	return nil
}

func (s *IdempotencyService) cleanup(ctx context.Context, pc *ProcessingContext) {
	taskID := pc.TaskID

	lockKey := s.config.LockKeyPrefix + taskID
	if err := s.redis.Del(lockKey); err != nil {
		logger.Warn("Failed to cleanup lock", "task_id", taskID, "error", err)
	}

	retryKey := s.config.RetryKeyPrefix + taskID
	if err := s.redis.Del(retryKey); err != nil {
		logger.Warn("Failed to cleanup retry counter", "task_id", taskID, "error", err)
	}

	pc.lockAcquired = false
}

func (s *IdempotencyService) GetRetryCount(ctx context.Context, taskID string) (int, error) {
	retryKey := s.config.RetryKeyPrefix + taskID
	retryCountBytes, err := s.redis.Get(retryKey)
	if err != nil {
		if err == redis.NilError {
			return 0, nil
		}
		return 0, err
	}

	retryCount := 0
	fmt.Sscanf(string(retryCountBytes), "%d", &retryCount)
	return retryCount, nil
}

func (s *IdempotencyService) IsProcessed(ctx context.Context, taskID string) (bool, error) {
	processedKey := s.config.ProcessedKeyPrefix + taskID
	exists, err := s.redis.Exist(processedKey)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
