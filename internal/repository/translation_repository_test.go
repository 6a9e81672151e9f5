package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lexora/translation-gateway/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestTranslationRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTranslationRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "user-1", "one@example.com")

	t.Run("creates with generated id", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Translation{
			UserID:     "user-1",
			InputText:  "hello world",
			OutputText: "bonjour monde",
			SourceLang: "en",
			TargetLang: "fr",
			Cost:       int64Ptr(1),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		require.NotNil(t, created.Cost)
		assert.Equal(t, int64(1), *created.Cost)
	})

	t.Run("duplicate external id", func(t *testing.T) {
		first := &model.Translation{
			UserID:     "user-1",
			ExternalID: strPtr("ext-1"),
			InputText:  "hello",
			OutputText: "bonjour",
			SourceLang: "en",
			TargetLang: "fr",
			Cost:       int64Ptr(1),
		}
		_, err := repo.Create(ctx, first)
		require.NoError(t, err)

		_, err = repo.Create(ctx, &model.Translation{
			UserID:     "user-1",
			ExternalID: strPtr("ext-1"),
			InputText:  "hello again",
			OutputText: "rebonjour",
			SourceLang: "en",
			TargetLang: "fr",
		})
		assert.ErrorIs(t, err, ErrDuplicateExternal)
	})

	t.Run("nil external ids do not collide", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			_, err := repo.Create(ctx, &model.Translation{
				UserID:     "user-1",
				InputText:  "thanks",
				OutputText: "merci",
				SourceLang: "en",
				TargetLang: "fr",
			})
			require.NoError(t, err)
		}
	})

	t.Run("nil cost survives the round trip", func(t *testing.T) {
		created, err := repo.Create(ctx, &model.Translation{
			UserID:     "user-1",
			InputText:  "goodbye",
			OutputText: "au revoir",
			SourceLang: "en",
			TargetLang: "fr",
		})
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, found.Cost)
	})
}

func TestTranslationRepository_GetByExternalID(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTranslationRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "user-1", "one@example.com")

	created, err := repo.Create(ctx, &model.Translation{
		UserID:     "user-1",
		ExternalID: strPtr("task-42"),
		InputText:  "hello",
		OutputText: "bonjour",
		SourceLang: "en",
		TargetLang: "fr",
		Cost:       int64Ptr(1),
	})
	require.NoError(t, err)

	found, err := repo.GetByExternalID(ctx, "task-42")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "bonjour", found.OutputText)

	_, err = repo.GetByExternalID(ctx, "task-43")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTranslationRepository_List(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewTranslationRepository(db)
	ctx := context.Background()

	createTestUser(t, db, "user-1", "one@example.com")

	base := time.Now().Add(-time.Hour)
	words := []string{"hello", "world", "goodbye"}
	for i, w := range words {
		entity := &TranslationEntity{
			ID:         w + "-id",
			UserID:     "user-1",
			InputText:  w,
			OutputText: w + "-fr",
			SourceLang: "en",
			TargetLang: "fr",
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Write(ctx).Create(entity).Error)
	}

	items, total, err := repo.List(ctx, model.HistoryFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 3)
	assert.Equal(t, "goodbye", items[0].InputText)
	assert.Equal(t, "hello", items[2].InputText)

	items, total, err = repo.List(ctx, model.HistoryFilter{UserID: "user-1", Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, items, 1)
	assert.Equal(t, "world", items[0].InputText)
}
