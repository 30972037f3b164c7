package api

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/sadanews/sada/internal/enrich"
	"github.com/sadanews/sada/internal/images"
	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
	"github.com/sadanews/sada/internal/scheduler"
	"github.com/sadanews/sada/internal/sources"
	"github.com/sadanews/sada/internal/store"
)

// errArticleNotFound signals a missing id out of a guarded update closure.
var errArticleNotFound = errors.New("article not found")

// Handlers mutate the collection through the shared store guard, never with
// a bare GetAll/ReplaceAll pair, so admin writes and pipeline runs cannot
// overwrite each other.
type Handlers struct {
	guard     *store.Guard
	scheduler *scheduler.Scheduler
	webhook   *sources.WebhookAdapter
	assurer   *images.Assurer
	validate  *validator.Validate
}

func NewHandlers(guard *store.Guard, sched *scheduler.Scheduler, webhook *sources.WebhookAdapter, assurer *images.Assurer) *Handlers {
	return &Handlers{
		guard:     guard,
		scheduler: sched,
		webhook:   webhook,
		assurer:   assurer,
		validate:  validator.New(),
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListArticles handles GET /api/v1/articles with pagination and an optional
// category filter.
func (h *Handlers) ListArticles(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))
	switch {
	case pageSize > 100:
		pageSize = 100
	case pageSize <= 0:
		pageSize = 20
	}

	articles, err := h.guard.Store().GetAll(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error reading articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get articles",
		})
	}

	if category := c.Query("category"); category != "" {
		filtered := articles[:0:0]
		for _, a := range articles {
			if a.Category == category {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date.After(articles[j].Date)
	})

	total := len(articles)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return c.JSON(fiber.Map{
		"page":      page,
		"page_size": pageSize,
		"total":     total,
		"items":     articles[start:end],
	})
}

// GetArticle handles GET /api/v1/articles/:id
func (h *Handlers) GetArticle(c *fiber.Ctx) error {
	id := c.Params("id")

	articles, err := h.guard.Store().GetAll(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error reading articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get article",
		})
	}

	for _, a := range articles {
		if a.ID == id {
			return c.JSON(a)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Article not found",
	})
}

type articleRequest struct {
	Title    string `json:"title" validate:"required,min=3"`
	Content  string `json:"content" validate:"required,min=10"`
	Category string `json:"category" validate:"required"`
	Source   string `json:"source"`
	Image    string `json:"image" validate:"omitempty,url"`
	VideoURL string `json:"video_url" validate:"omitempty,url"`
	Featured bool   `json:"featured"`
}

// CreateArticle handles POST /api/v1/admin/articles. Manually entered
// articles skip classification and enrichment; the admin's category and
// text are taken as-is. Image assurance still runs so the image invariant
// holds for every stored article.
func (h *Handlers) CreateArticle(c *fiber.Ctx) error {
	var req articleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !models.IsValidCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown category: " + req.Category,
		})
	}

	candidate := h.assurer.EnsureImage(c.Context(), models.Candidate{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Image:    req.Image,
	})

	source := req.Source
	if source == "" {
		source = "الإدارة"
	}

	article := models.Article{
		ID:          models.NewArticleID(),
		Title:       req.Title,
		Content:     req.Content,
		Excerpt:     enrich.Excerpt(req.Content, enrich.ExcerptLimit),
		Category:    req.Category,
		Date:        time.Now(),
		Source:      source,
		Image:       candidate.Image,
		Featured:    req.Featured,
		VideoURL:    req.VideoURL,
		ReadingTime: enrich.ReadingTime(req.Content),
	}

	err := h.guard.Update(c.Context(), func(articles []models.Article) ([]models.Article, error) {
		return append([]models.Article{article}, articles...), nil
	})
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error writing articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create article",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(article)
}

// UpdateArticle handles PUT /api/v1/admin/articles/:id
func (h *Handlers) UpdateArticle(c *fiber.Ctx) error {
	id := c.Params("id")

	var req articleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !models.IsValidCategory(req.Category) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown category: " + req.Category,
		})
	}

	var updated models.Article
	err := h.guard.Update(c.Context(), func(articles []models.Article) ([]models.Article, error) {
		for i, a := range articles {
			if a.ID != id {
				continue
			}

			a.Title = req.Title
			a.Content = req.Content
			a.Excerpt = enrich.Excerpt(req.Content, enrich.ExcerptLimit)
			a.Category = req.Category
			a.Featured = req.Featured
			a.ReadingTime = enrich.ReadingTime(req.Content)
			if req.Source != "" {
				a.Source = req.Source
			}
			if req.VideoURL != "" {
				a.VideoURL = req.VideoURL
			}
			if req.Image != "" {
				assured := h.assurer.EnsureImage(c.Context(), models.Candidate{
					Title:    req.Title,
					Category: req.Category,
					Image:    req.Image,
				})
				a.Image = assured.Image
			}
			articles[i] = a
			updated = a
			return articles, nil
		}
		return nil, errArticleNotFound
	})
	if errors.Is(err, errArticleNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article not found",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error writing articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update article",
		})
	}

	return c.JSON(updated)
}

// DeleteArticle handles DELETE /api/v1/admin/articles/:id
func (h *Handlers) DeleteArticle(c *fiber.Ctx) error {
	id := c.Params("id")

	err := h.guard.Update(c.Context(), func(articles []models.Article) ([]models.Article, error) {
		next := articles[:0:0]
		for _, a := range articles {
			if a.ID != id {
				next = append(next, a)
			}
		}
		if len(next) == len(articles) {
			return nil, errArticleNotFound
		}
		return next, nil
	})
	if errors.Is(err, errArticleNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article not found",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error writing articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete article",
		})
	}

	return c.JSON(fiber.Map{
		"status": "deleted",
	})
}

// ToggleFeatured handles POST /api/v1/admin/articles/:id/featured
func (h *Handlers) ToggleFeatured(c *fiber.Ctx) error {
	id := c.Params("id")

	var toggled models.Article
	err := h.guard.Update(c.Context(), func(articles []models.Article) ([]models.Article, error) {
		for i := range articles {
			if articles[i].ID != id {
				continue
			}
			articles[i].Featured = !articles[i].Featured
			toggled = articles[i]
			return articles, nil
		}
		return nil, errArticleNotFound
	})
	if errors.Is(err, errArticleNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Article not found",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("id", id).Msg("Error writing articles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to toggle featured",
		})
	}

	return c.JSON(toggled)
}

// GetSyncConfig handles GET /api/v1/admin/sync/config
func (h *Handlers) GetSyncConfig(c *fiber.Ctx) error {
	return c.JSON(h.scheduler.Config())
}

// UpdateSyncConfig handles PATCH /api/v1/admin/sync/config. A persistence
// failure is surfaced as an error rather than silently keeping the old
// config.
func (h *Handlers) UpdateSyncConfig(c *fiber.Ctx) error {
	var patch models.SyncConfigPatch
	if err := c.BodyParser(&patch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}

	updated, err := h.scheduler.UpdateConfig(c.Context(), patch)
	if err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		logger.Get().Error().Err(err).Msg("Error updating sync config")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save sync config",
		})
	}

	return c.JSON(updated)
}

// RunSync handles POST /api/v1/admin/sync/run. A sync already in flight is
// reported as a conflict, not queued.
func (h *Handlers) RunSync(c *fiber.Ctx) error {
	result, err := h.scheduler.ManualSync(c.Context())
	if errors.Is(err, scheduler.ErrSyncInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Sync already in progress",
		})
	}
	if err != nil {
		logger.Get().Error().Err(err).Msg("Manual sync failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Sync failed",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "completed",
		"added":   result.Added,
		"dropped": result.Dropped,
		"errors":  len(result.Errors),
	})
}

// SyncStatus handles GET /api/v1/admin/sync/status
func (h *Handlers) SyncStatus(c *fiber.Ctx) error {
	status, err := h.scheduler.Status(c.Context())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error reading sync status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get sync status",
		})
	}
	return c.JSON(status)
}

type webhookPayload struct {
	Title        string `json:"title" validate:"required,min=3"`
	Content      string `json:"content" validate:"required,min=10"`
	Source       string `json:"source"`
	Image        string `json:"image" validate:"omitempty,url"`
	VideoURL     string `json:"video_url" validate:"omitempty,url"`
	OriginalLink string `json:"original_link" validate:"omitempty,url"`
}

// ReceiveWebhook handles POST /api/v1/admin/webhook/articles. Accepted
// payloads are queued for the next pipeline run; the webhook never writes
// to the store directly.
func (h *Handlers) ReceiveWebhook(c *fiber.Ctx) error {
	var payload webhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body: " + err.Error(),
		})
	}
	if err := h.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	h.webhook.Push(models.Candidate{
		Title:        payload.Title,
		Content:      payload.Content,
		RawBody:      payload.Content,
		Source:       payload.Source,
		Date:         time.Now(),
		Image:        payload.Image,
		VideoURL:     payload.VideoURL,
		OriginalLink: payload.OriginalLink,
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "queued",
		"pending": h.webhook.Pending(),
	})
}
