package sources

import (
	"context"
	"sync"

	"github.com/sadanews/sada/internal/models"
)

// WebhookAdapter buffers candidates pushed by the HTTP webhook endpoint
// and hands them to the pipeline on the next run. Fetch drains the queue.
type WebhookAdapter struct {
	mu    sync.Mutex
	queue []models.Candidate
}

func NewWebhookAdapter() *WebhookAdapter {
	return &WebhookAdapter{}
}

func (a *WebhookAdapter) Name() string { return "Webhook" }

// Push enqueues a candidate received over HTTP. Safe for concurrent use.
func (a *WebhookAdapter) Push(c models.Candidate) {
	if c.Source == "" {
		c.Source = a.Name()
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queue = append(a.queue, c)
}

// Pending reports how many candidates are waiting.
func (a *WebhookAdapter) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.queue)
}

func (a *WebhookAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.queue
	a.queue = nil
	return out, nil
}
