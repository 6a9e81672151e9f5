package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lexora/translation-gateway/internal/model"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskQueue struct {
	published []model.TranslationTask
	metadata  []map[string]string
	failures  int
}

func (f *fakeTaskQueue) PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error) {
	if f.failures > 0 {
		f.failures--
		return "", errors.New("stream unavailable")
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	var task model.TranslationTask
	if err := json.Unmarshal(raw, &task); err != nil {
		return "", err
	}
	f.published = append(f.published, task)
	f.metadata = append(f.metadata, metadata)
	return "1-0", nil
}

func TestTaskService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a normalized task with a correlation id", func(t *testing.T) {
		q := &fakeTaskQueue{}
		service := NewTaskService(q, new(MockTranslationRepository))

		taskID, err := service.Enqueue(ctx, model.TranslateRequest{
			UserID:     "user-1",
			InputText:  "  hello  ",
			SourceLang: "EN",
			TargetLang: "FR",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, taskID)

		require.Len(t, q.published, 1)
		task := q.published[0]
		assert.Equal(t, taskID, task.TaskID)
		assert.Equal(t, "hello", task.InputText)
		assert.Equal(t, "en", task.SourceLang)
		assert.Equal(t, "fr", task.TargetLang)
		assert.Equal(t, taskID, q.metadata[0]["task_id"])
	})

	t.Run("two publishes get distinct ids", func(t *testing.T) {
		q := &fakeTaskQueue{}
		service := NewTaskService(q, new(MockTranslationRepository))

		req := model.TranslateRequest{UserID: "user-1", InputText: "T1", SourceLang: "en", TargetLang: "fr"}

		id1, err := service.Enqueue(ctx, req)
		require.NoError(t, err)
		id2, err := service.Enqueue(ctx, req)
		require.NoError(t, err)

		// Identical payloads are separate tasks; each will charge once.
		assert.NotEqual(t, id1, id2)
	})

	t.Run("rejects invalid input before publishing", func(t *testing.T) {
		q := &fakeTaskQueue{}
		service := NewTaskService(q, new(MockTranslationRepository))

		_, err := service.Enqueue(ctx, model.TranslateRequest{UserID: "user-1", InputText: "  ", SourceLang: "en", TargetLang: "fr"})
		assert.ErrorIs(t, err, model.ErrEmptyInput)
		assert.Empty(t, q.published)
	})

	t.Run("retries a failing publish", func(t *testing.T) {
		q := &fakeTaskQueue{failures: 2}
		service := NewTaskService(q, new(MockTranslationRepository))

		taskID, err := service.Enqueue(ctx, model.TranslateRequest{UserID: "user-1", InputText: "hello", SourceLang: "en", TargetLang: "fr"})
		require.NoError(t, err)
		assert.NotEmpty(t, taskID)
		require.Len(t, q.published, 1)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		q := &fakeTaskQueue{failures: publishAttempts}
		service := NewTaskService(q, new(MockTranslationRepository))

		_, err := service.Enqueue(ctx, model.TranslateRequest{UserID: "user-1", InputText: "hello", SourceLang: "en", TargetLang: "fr"})
		assert.Error(t, err)
	})
}

func TestTaskService_GetStatus(t *testing.T) {
	ctx := context.Background()
	translations := new(MockTranslationRepository)
	service := NewTaskService(&fakeTaskQueue{}, translations)

	done := &model.Translation{ID: "tr-1", OutputText: "bonjour"}
	translations.On("GetByExternalID", ctx, "task-done").Return(done, nil)
	translations.On("GetByExternalID", ctx, "task-pending").Return(nil, repository.ErrNotFound)

	status, result, err := service.GetStatus(ctx, "task-done")
	require.NoError(t, err)
	assert.Equal(t, model.TaskDone, status)
	assert.Equal(t, done, result)

	status, result, err = service.GetStatus(ctx, "task-pending")
	require.NoError(t, err)
	assert.Equal(t, model.TaskPending, status)
	assert.Nil(t, result)
}
