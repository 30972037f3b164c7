package store

import (
	"context"
	"sync"
	"time"

	"github.com/sadanews/sada/internal/models"
)

// Store is the persisted article collection plus the sync bookkeeping that
// lives alongside it. Writes use replace-whole-collection semantics: callers
// read the current collection, compute the next one, and write it back in one
// call. Implementations do not lock across a GetAll/ReplaceAll pair; every
// read-modify-write cycle goes through a Guard instead.
type Store interface {
	GetAll(ctx context.Context) ([]models.Article, error)
	ReplaceAll(ctx context.Context, articles []models.Article) error

	LastSync(ctx context.Context) (time.Time, bool, error)
	SetLastSync(ctx context.Context, t time.Time) error

	GetSyncConfig(ctx context.Context) (models.SyncConfig, bool, error)
	SetSyncConfig(ctx context.Context, cfg models.SyncConfig) error

	Close() error
}

// Guard serializes every read-modify-write cycle on the article collection.
// The pipeline and the admin handlers write concurrently from their own
// goroutines; without one shared lock a write landing between another
// writer's read and write would be silently lost. One Guard per process,
// shared by everything that mutates the collection.
type Guard struct {
	mu    sync.Mutex
	store Store
}

func NewGuard(st Store) *Guard {
	return &Guard{store: st}
}

// Store exposes the wrapped store for reads and sync bookkeeping, which
// need no cross-call locking.
func (g *Guard) Store() Store {
	return g.store
}

// Update applies fn to the current collection and writes the result back.
// An error from fn aborts the cycle without writing.
func (g *Guard) Update(ctx context.Context, fn func(articles []models.Article) ([]models.Article, error)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	articles, err := g.store.GetAll(ctx)
	if err != nil {
		return err
	}
	next, err := fn(articles)
	if err != nil {
		return err
	}
	return g.store.ReplaceAll(ctx, next)
}
