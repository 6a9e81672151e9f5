package services

import (
	"context"
	"fmt"

	"github.com/lexora/translation-gateway/pkg/pg"
	"github.com/lexora/translation-gateway/pkg/redis"
)

// HealthService probes the backing stores the API depends on.
type HealthService struct {
	db    *pg.DB
	redis redis.RedisAdapter
}

func NewHealthService(db *pg.DB, redisAdapter redis.RedisAdapter) *HealthService {
	return &HealthService{
		db:    db,
		redis: redisAdapter,
	}
}

func (s *HealthService) Get(ctx context.Context) error {
	if s.db != nil {
		sqlDB, err := s.db.Read(ctx).DB()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.redis != nil {
		if _, err := s.redis.Exist("health"); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}
