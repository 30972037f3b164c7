package store

import (
	"context"
	"sync"
	"time"

	"github.com/sadanews/sada/internal/models"
)

// MemoryStore provides an in-memory implementation for testing when Redis
// is not available.
type MemoryStore struct {
	mu         sync.RWMutex
	articles   []models.Article
	lastSync   time.Time
	hasSync    bool
	syncConfig models.SyncConfig
	hasConfig  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) GetAll(ctx context.Context) ([]models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Article, len(m.articles))
	copy(out, m.articles)
	return out, nil
}

func (m *MemoryStore) ReplaceAll(ctx context.Context, articles []models.Article) error {
	if err := checkUniqueIDs(articles); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.articles = make([]models.Article, len(articles))
	copy(m.articles, articles)
	return nil
}

func (m *MemoryStore) LastSync(ctx context.Context) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastSync, m.hasSync, nil
}

func (m *MemoryStore) SetLastSync(ctx context.Context, t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSync = t
	m.hasSync = true
	return nil
}

func (m *MemoryStore) GetSyncConfig(ctx context.Context) (models.SyncConfig, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.syncConfig, m.hasConfig, nil
}

func (m *MemoryStore) SetSyncConfig(ctx context.Context, cfg models.SyncConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncConfig = cfg
	m.hasConfig = true
	return nil
}
