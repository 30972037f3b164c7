package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sadanews/sada/internal/classify"
	"github.com/sadanews/sada/internal/enrich"
	"github.com/sadanews/sada/internal/images"
	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
	"github.com/sadanews/sada/internal/similarity"
	"github.com/sadanews/sada/internal/sources"
	"github.com/sadanews/sada/internal/store"
)

const maxConcurrentAdapters = 4

// Archiver receives articles dropped by the retention trim. Archive
// failures are logged, never fatal.
type Archiver interface {
	Archive(ctx context.Context, articles []models.Article) error
}

// Result summarizes one pipeline run.
type Result struct {
	Added   int
	Dropped int
	Errors  []error
}

// Pipeline orchestrates one ingestion run: fetch from all enabled sources,
// classify, enrich, assure images, dedup against the store, write, trim.
// The collection write goes through the shared store guard so admin writes
// landing mid-run are never overwritten.
type Pipeline struct {
	adapters   []sources.Adapter
	classifier *classify.Classifier
	enricher   *enrich.Enricher
	assurer    *images.Assurer
	scorer     *similarity.Scorer
	guard      *store.Guard
	archiver   Archiver // optional
	notifier   *Notifier
}

func New(adapters []sources.Adapter, classifier *classify.Classifier, enricher *enrich.Enricher,
	assurer *images.Assurer, scorer *similarity.Scorer, guard *store.Guard, archiver Archiver) *Pipeline {
	return &Pipeline{
		adapters:   adapters,
		classifier: classifier,
		enricher:   enricher,
		assurer:    assurer,
		scorer:     scorer,
		guard:      guard,
		archiver:   archiver,
		notifier:   NewNotifier(),
	}
}

// Notifier exposes the observer registry so the UI layer can subscribe.
func (p *Pipeline) Notifier() *Notifier {
	return p.notifier
}

// RunOnce executes the full ingestion sequence. Adapter, classification,
// enrichment and image failures are recovered locally; only store failures
// abort the run.
func (p *Pipeline) RunOnce(ctx context.Context, cfg models.SyncConfig) (Result, error) {
	log := logger.Get()
	start := time.Now()
	var result Result

	candidates := p.fetchAll(ctx, cfg, &result)
	log.Info().Int("candidates", len(candidates)).Dur("fetch_duration", time.Since(start)).
		Msg("Fetched candidates from all enabled sources")

	processed := p.process(ctx, candidates, &result)

	_, hadPriorSync, err := p.guard.Store().LastSync(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read last sync: %w", err)
	}

	// Dedup, trim and write happen in one guarded cycle so a concurrent
	// admin write cannot land between the read and the write.
	var added, trimmed int
	err = p.guard.Update(ctx, func(existing []models.Article) ([]models.Article, error) {
		fresh := p.dedup(existing, processed, &result)

		// Newest first, both within the fresh batch and in the final
		// collection.
		sort.SliceStable(fresh, func(i, j int) bool {
			return fresh[i].Date.After(fresh[j].Date)
		})
		next := append(fresh, existing...)

		kept, removed := Trim(next, cfg.MaxArticles)
		if len(removed) > 0 && p.archiver != nil {
			if err := p.archiver.Archive(ctx, removed); err != nil {
				log.Warn().Err(err).Int("count", len(removed)).
					Msg("Failed to archive trimmed articles")
			}
		}

		// Only fresh articles that survived the trim count as added.
		freshIDs := make(map[string]struct{}, len(fresh))
		for _, a := range fresh {
			freshIDs[a.ID] = struct{}{}
		}
		added = 0
		for _, a := range kept {
			if _, ok := freshIDs[a.ID]; ok {
				added++
			}
		}
		trimmed = len(removed)
		return kept, nil
	})
	if err != nil {
		return result, fmt.Errorf("failed to update store: %w", err)
	}
	if err := p.guard.Store().SetLastSync(ctx, time.Now()); err != nil {
		return result, fmt.Errorf("failed to record last sync: %w", err)
	}

	result.Added = added
	p.notifier.Publish(Event{NewCount: result.Added, FirstRun: !hadPriorSync})

	log.Info().
		Int("added", result.Added).
		Int("dropped", result.Dropped).
		Int("trimmed", trimmed).
		Int("errors", len(result.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Pipeline run finished")

	return result, nil
}

// fetchAll fans out to every enabled adapter and joins the results. A
// failing adapter contributes zero candidates and a recorded error, never
// a failed batch.
func (p *Pipeline) fetchAll(ctx context.Context, cfg models.SyncConfig, result *Result) []models.Candidate {
	type fetchResult struct {
		name       string
		candidates []models.Candidate
		err        error
	}

	enabled := make([]sources.Adapter, 0, len(p.adapters))
	for _, a := range p.adapters {
		if adapterEnabled(cfg.Sources, a.Name()) {
			enabled = append(enabled, a)
		}
	}

	results := make(chan fetchResult, len(enabled))
	semaphore := make(chan struct{}, maxConcurrentAdapters)
	var wg sync.WaitGroup

	for _, adapter := range enabled {
		wg.Add(1)
		go func(a sources.Adapter) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			candidates, err := a.Fetch(ctx)
			results <- fetchResult{name: a.Name(), candidates: candidates, err: err}
		}(adapter)
	}

	wg.Wait()
	close(results)

	var all []models.Candidate
	for res := range results {
		if res.err != nil {
			logger.Get().Warn().Err(res.err).Str("source", res.name).
				Msg("Source adapter failed, continuing with partial results")
			result.Errors = append(result.Errors, fmt.Errorf("adapter %s: %w", res.name, res.err))
			continue
		}
		all = append(all, res.candidates...)
	}
	return all
}

// process runs classification, enrichment and image assurance, in that
// order. Classification needs the raw text for its context keywords, and
// dedup later needs the enriched titles, so the order is load-bearing.
func (p *Pipeline) process(ctx context.Context, candidates []models.Candidate, result *Result) []models.Article {
	articles := make([]models.Article, 0, len(candidates))

	for _, candidate := range candidates {
		if !models.IsValidCategory(candidate.Category) {
			category, err := p.classifier.Classify(ctx, candidate)
			if errors.Is(err, classify.ErrSpam) {
				logger.Get().Debug().Str("title", candidate.Title).
					Msg("Candidate rejected by spam denylist")
				result.Dropped++
				continue
			}
			if err != nil {
				// The classifier's keyword tier cannot fail; treat
				// anything else as generic rather than dropping news.
				category = models.CategoryGeneral
			}
			candidate.Category = category
		}

		enrichment := p.enricher.Enrich(ctx, candidate)
		candidate = p.assurer.EnsureImage(ctx, candidate)

		articles = append(articles, models.Article{
			ID:           models.NewArticleID(),
			Title:        enrichment.Title,
			Content:      enrichment.Content,
			Excerpt:      enrichment.Excerpt,
			Category:     candidate.Category,
			Date:         candidate.Date,
			Source:       candidate.Source,
			Image:        candidate.Image,
			VideoURL:     candidate.VideoURL,
			Tags:         enrichment.Tags,
			ReadingTime:  enrichment.ReadingTime,
			OriginalLink: candidate.OriginalLink,
		})
	}

	return articles
}

// dedup discards articles similar to anything already stored or to an
// earlier article in the same batch. Duplicates are counted, not errored.
func (p *Pipeline) dedup(existing []models.Article, incoming []models.Article, result *Result) []models.Article {
	fresh := make([]models.Article, 0, len(incoming))

	for _, article := range incoming {
		candidate := asCandidate(article)
		if p.isDuplicate(existing, candidate) || p.isDuplicate(fresh, candidate) {
			result.Dropped++
			continue
		}
		fresh = append(fresh, article)
	}
	return fresh
}

func (p *Pipeline) isDuplicate(against []models.Article, candidate models.Candidate) bool {
	for _, a := range against {
		if p.scorer.Similar(a, candidate) {
			return true
		}
	}
	return false
}

func asCandidate(a models.Article) models.Candidate {
	return models.Candidate{
		Title:        a.Title,
		Content:      a.Content,
		Source:       a.Source,
		Date:         a.Date,
		OriginalLink: a.OriginalLink,
	}
}

func adapterEnabled(flags models.SourceFlags, name string) bool {
	switch name {
	case "RSS":
		return flags.RSS
	case "Social":
		return flags.Social
	case "Webhook":
		return flags.Webhook
	case "Google Sheets":
		return flags.Sheets
	default:
		return true
	}
}
