package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/lexora/translation-gateway/internal/repository"
	"github.com/lexora/translation-gateway/pkg/pg"
	"github.com/lexora/translation-gateway/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.UserEntity{},
		&repository.WalletEntity{},
		&repository.TransactionEntity{},
		&repository.TranslationEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter("test", "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestUser(t *testing.T, db *pg.DB, email string) *repository.UserEntity {
	ctx := context.Background()
	user := &repository.UserEntity{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
	}
	err := db.Write(ctx).Create(user).Error
	require.NoError(t, err)
	return user
}

func CreateTestWallet(t *testing.T, db *pg.DB, userID string, balance int64) *repository.WalletEntity {
	ctx := context.Background()
	wallet := &repository.WalletEntity{
		ID:      uuid.NewString(),
		UserID:  userID,
		Balance: balance,
	}
	err := db.Write(ctx).Create(wallet).Error
	require.NoError(t, err)
	return wallet
}

func CreateTestTranslation(t *testing.T, db *pg.DB, userID string, externalID *string) *repository.TranslationEntity {
	ctx := context.Background()
	cost := int64(1)
	record := &repository.TranslationEntity{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: externalID,
		InputText:  "hello",
		OutputText: "bonjour",
		SourceLang: "en",
		TargetLang: "fr",
		Cost:       &cost,
		CreatedAt:  time.Now(),
	}
	err := db.Write(ctx).Create(record).Error
	require.NoError(t, err)
	return record
}

func CreateTestTransaction(t *testing.T, db *pg.DB, userID string, amount int64, txnType string) *repository.TransactionEntity {
	ctx := context.Background()
	txn := &repository.TransactionEntity{
		ID:     uuid.NewString(),
		UserID: userID,
		Amount: amount,
		Type:   txnType,
	}
	err := db.Write(ctx).Create(txn).Error
	require.NoError(t, err)
	return txn
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
