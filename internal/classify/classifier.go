package classify

import (
	"context"
	"errors"
	"strings"

	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
)

// ErrSpam marks a candidate rejected by the promotional-phrase denylist.
// Rejected candidates are filtered out rather than mis-filed.
var ErrSpam = errors.New("candidate matches spam denylist")

// LabelCapability is an optional external text classifier. It is given the
// raw text and the closed label set and may return any string; answers
// outside the set are discarded.
type LabelCapability interface {
	Label(ctx context.Context, text string, labels []string) (string, error)
}

// Classifier assigns a category to a candidate. Tier 1 delegates to an
// external capability when one is configured; tier 2 is a deterministic
// keyword scorer that needs no network.
type Classifier struct {
	capability LabelCapability
	rules      []Rule
}

// New builds a classifier. capability may be nil, in which case only the
// keyword tier runs.
func New(capability LabelCapability) *Classifier {
	return &Classifier{
		capability: capability,
		rules:      Rules,
	}
}

// Classify returns a member of the closed category set, or ErrSpam when the
// candidate trips the denylist. It never returns an arbitrary label.
func (c *Classifier) Classify(ctx context.Context, candidate models.Candidate) (string, error) {
	text := candidate.Title + " " + candidate.Content
	lower := strings.ToLower(text)

	for _, phrase := range SpamPhrases {
		if strings.Contains(lower, phrase) {
			return "", ErrSpam
		}
	}

	if c.capability != nil {
		label, err := c.capability.Label(ctx, text, models.Categories)
		if err != nil {
			logger.Get().Warn().Err(err).Str("title", candidate.Title).
				Msg("External classifier failed, falling back to keyword rules")
		} else if models.IsValidCategory(label) {
			return label, nil
		} else if label != "" {
			logger.Get().Warn().Str("label", label).
				Msg("External classifier returned unknown label, ignoring")
		}
	}

	return c.classifyByKeywords(text), nil
}

// classifyByKeywords scores every rule against the combined title+content
// and picks the highest-scoring category. All-zero scores fall through to
// the generic category.
func (c *Classifier) classifyByKeywords(text string) string {
	best := models.CategoryGeneral
	bestScore := 0.0

	for _, rule := range c.rules {
		score := 0.0
		for _, kw := range rule.Keywords {
			if strings.Contains(text, kw) {
				score += keywordWeight
			}
		}
		for _, kw := range rule.Context {
			if strings.Contains(text, kw) {
				score += contextWeight
			}
		}
		score *= rule.Priority

		if score > bestScore {
			bestScore = score
			best = rule.Category
		}
	}

	return best
}
