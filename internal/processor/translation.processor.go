package processor

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/queue"
	"github.com/lexora/translation-gateway/internal/services"
	"github.com/lexora/translation-gateway/internal/translator"
	"github.com/lexora/translation-gateway/pkg/logger"
	"github.com/lexora/translation-gateway/pkg/prom"
)

type TranslationProcessor interface {
	Process(ctx context.Context, req model.TranslateRequest) (*model.Translation, error)
}

type RetryQueue interface {
	PublishRetry(ctx context.Context, msg *queue.Message) (string, error)
	MoveToFailed(msg *queue.Message)
}

// TranslationTaskProcessor drains the task stream. A task failure is
// classified before anything is retried: business refusals (bad input,
// empty wallet, unsupported pair, unknown user) are final, everything
// else is assumed transient and republished with the attempt count
// bumped until MaxAttempts, then parked on the failed stream.
type TranslationTaskProcessor struct {
	service     TranslationProcessor
	idempotency *IdempotencyService
	retryQueue  RetryQueue
	maxAttempts int
	retryDelay  time.Duration
}

func NewTranslationTaskProcessor(service TranslationProcessor, idempotency *IdempotencyService, retryQueue RetryQueue, maxAttempts int, retryDelay time.Duration) *TranslationTaskProcessor {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &TranslationTaskProcessor{
		service:     service,
		idempotency: idempotency,
		retryQueue:  retryQueue,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

func (p *TranslationTaskProcessor) GetType() string {
	return "translation"
}

// Process handles one delivery. The return value drives the stream ack:
// nil acks, an error leaves the entry pending for reclaim. Retries do
// not rely on reclaim; a transient failure is acked here and a fresh
// copy is published with attempts+1.
func (p *TranslationTaskProcessor) Process(ctx context.Context, queueMessage *queue.Message) error {
	var task model.TranslationTask
	if err := json.Unmarshal(queueMessage.Data, &task); err != nil {
		logger.Error("Failed to unmarshal task", "error", err)
		// Malformed payloads never succeed on retry.
		p.retryQueue.MoveToFailed(queueMessage)
		return nil
	}

	if task.TaskID == "" {
		task.TaskID = queueMessage.Metadata["task_id"]
	}
	if task.TaskID == "" {
		task.TaskID = uuid.NewString()
	}

	procCtx, err := p.idempotency.AcquireProcessingLock(ctx, task.TaskID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyProcessed):
			// Redelivery of a finished task; nothing to do.
			return nil
		case errors.Is(err, ErrMaxRetriesExceeded):
			p.retryQueue.MoveToFailed(queueMessage)
			return nil
		case errors.Is(err, ErrLockAcquireFailed):
			// Another worker holds the task; leave the entry pending.
			return errors.New("lock held by another consumer")
		default:
			return err
		}
	}

	defer func() {
		if procCtx.lockAcquired {
			p.idempotency.ReleaseLock(ctx, procCtx)
		}
	}()

	logger.Info("Processing translation task",
		"task_id", task.TaskID,
		"user_id", task.UserID,
		"attempts", queueMessage.Attempts,
		"is_retry", procCtx.IsRetry)

	start := time.Now()
	result, err := p.service.Process(ctx, model.TranslateRequest{
		UserID:     task.UserID,
		InputText:  task.InputText,
		SourceLang: task.SourceLang,
		TargetLang: task.TargetLang,
		ExternalID: task.TaskID,
	})
	if err != nil {
		if isBusinessError(err) {
			// Retrying cannot change the outcome; record and ack.
			logger.Warn("Task refused", "task_id", task.TaskID, "reason", err)
			prom.IncTranslationRefused(task.SourceLang, task.TargetLang)
			if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
				logger.Error("Failed to mark refusal", "task_id", task.TaskID, "error", markErr)
			}
			return nil
		}

		logger.Error("Task failed", "task_id", task.TaskID, "error", err)
		prom.IncTranslationFailed(task.SourceLang, task.TargetLang)
		if markErr := p.idempotency.MarkFailure(ctx, procCtx, err); markErr != nil {
			logger.Error("Failed to mark failure", "task_id", task.TaskID, "error", markErr)
		}

		if queueMessage.Attempts+1 >= p.maxAttempts {
			p.retryQueue.MoveToFailed(queueMessage)
			return nil
		}

		// Fixed backoff, then republish before acking the original so
		// the task is never lost between the two.
		time.Sleep(p.retryDelay)
		if _, pubErr := p.retryQueue.PublishRetry(ctx, queueMessage); pubErr != nil {
			logger.Error("Failed to republish task", "task_id", task.TaskID, "error", pubErr)
			// Keep the original pending; reclaim will redeliver it.
			return pubErr
		}
		return nil
	}

	prom.AddTranslationDuration(time.Since(start).Seconds(), task.SourceLang, task.TargetLang)
	prom.IncTranslationProcessed(task.SourceLang, task.TargetLang)

	logger.Info("Translation task completed",
		"task_id", task.TaskID,
		"translation_id", result.ID,
		"attempts", queueMessage.Attempts)

	if markErr := p.idempotency.MarkSuccess(ctx, procCtx); markErr != nil {
		// The history record exists; the external id check covers a
		// redelivery even without the marker.
		logger.Error("Failed to mark success", "task_id", task.TaskID, "error", markErr)
	}

	return nil
}

// isBusinessError reports whether the failure is a terminal refusal
// rather than a transient fault.
func isBusinessError(err error) bool {
	return errors.Is(err, model.ErrEmptyInput) ||
		errors.Is(err, model.ErrInvalidLang) ||
		errors.Is(err, services.ErrInsufficientFunds) ||
		errors.Is(err, services.ErrUserNotFound) ||
		errors.Is(err, translator.ErrUnsupportedLanguagePair)
}
