package sources

import (
	"context"

	"github.com/sadanews/sada/internal/models"
)

// Adapter produces raw candidates from one origin. Implementations return
// an error instead of panicking; the pipeline absorbs failures so one bad
// source never sinks a batch.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Candidate, error)
}
