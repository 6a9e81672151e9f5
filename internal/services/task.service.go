package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/lexora/translation-gateway/pkg/logger"
)

type TaskQueue interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

const publishAttempts = 3
const publishRetryDelay = 100 * time.Millisecond

// TaskService is the API side of the queue bridge: it assigns the
// correlation id, publishes the task, and answers status lookups from
// the history table.
type TaskService struct {
	queue           TaskQueue
	translationRepo TranslationRepository
}

func NewTaskService(q TaskQueue, translationRepo TranslationRepository) *TaskService {
	return &TaskService{
		queue:           q,
		translationRepo: translationRepo,
	}
}

// Enqueue validates the request, then publishes it with a fresh task
// id. The id is returned to the caller before any processing happens;
// the worker writes the history record under the same id.
func (s *TaskService) Enqueue(ctx context.Context, req model.TranslateRequest) (string, error) {
	req, err := req.Normalize()
	if err != nil {
		return "", err
	}

	task := model.TranslationTask{
		TaskID:     uuid.NewString(),
		UserID:     req.UserID,
		InputText:  req.InputText,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	}

	metadata := map[string]string{
		"task_id": task.TaskID,
		"user_id": task.UserID,
	}

	var lastErr error
	for attempt := 0; attempt < publishAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(publishRetryDelay)
		}
		if _, lastErr = s.queue.PublishJSON(ctx, task, metadata); lastErr == nil {
			return task.TaskID, nil
		}
		logger.Warn("Failed to publish task, retrying",
			"task_id", task.TaskID,
			"attempt", attempt+1,
			"error", lastErr)
	}
	return "", fmt.Errorf("publish task: %w", lastErr)
}

// GetStatus reports pending until the worker has committed the history
// record for the task. A record with a nil cost still counts as done.
func (s *TaskService) GetStatus(ctx context.Context, taskID string) (model.TaskStatus, *model.Translation, error) {
	t, err := s.translationRepo.GetByExternalID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.TaskPending, nil, nil
		}
		return "", nil, err
	}
	return model.TaskDone, t, nil
}
