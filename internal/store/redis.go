package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sadanews/sada/internal/models"
)

const (
	articlesKey   = "articles"
	lastSyncKey   = "last_sync"
	syncConfigKey = "sync_config"
)

type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(redisURL, prefix string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client: client,
		prefix: prefix,
	}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetAll(ctx context.Context) ([]models.Article, error) {
	data, err := s.client.Get(ctx, s.prefix+articlesKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return []models.Article{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get articles: %w", err)
	}

	var articles []models.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to unmarshal articles: %w", err)
	}
	return articles, nil
}

func (s *RedisStore) ReplaceAll(ctx context.Context, articles []models.Article) error {
	if err := checkUniqueIDs(articles); err != nil {
		return err
	}

	data, err := json.Marshal(articles)
	if err != nil {
		return fmt.Errorf("failed to marshal articles: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+articlesKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set articles: %w", err)
	}
	return nil
}

func (s *RedisStore) LastSync(ctx context.Context) (time.Time, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+lastSyncKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get last sync: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, data)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse last sync timestamp: %w", err)
	}
	return t, true, nil
}

func (s *RedisStore) SetLastSync(ctx context.Context, t time.Time) error {
	if err := s.client.Set(ctx, s.prefix+lastSyncKey, t.Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("redis set last sync: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSyncConfig(ctx context.Context) (models.SyncConfig, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+syncConfigKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.SyncConfig{}, false, nil
	}
	if err != nil {
		return models.SyncConfig{}, false, fmt.Errorf("redis get sync config: %w", err)
	}

	var cfg models.SyncConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return models.SyncConfig{}, false, fmt.Errorf("failed to unmarshal sync config: %w", err)
	}
	return cfg, true, nil
}

func (s *RedisStore) SetSyncConfig(ctx context.Context, cfg models.SyncConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal sync config: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+syncConfigKey, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set sync config: %w", err)
	}
	return nil
}

func checkUniqueIDs(articles []models.Article) error {
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if a.ID == "" {
			return fmt.Errorf("article %q has empty ID", a.Title)
		}
		if _, dup := seen[a.ID]; dup {
			return fmt.Errorf("duplicate article ID %s", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}
