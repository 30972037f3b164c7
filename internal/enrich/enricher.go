package enrich

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/sadanews/sada/internal/classify"
	"github.com/sadanews/sada/internal/logger"
	"github.com/sadanews/sada/internal/models"
)

// RewriteCapability is an optional external service that rewrites raw text
// into a styled article body. Failures are recovered with a template
// fallback that never drops or alters the original sentences.
type RewriteCapability interface {
	Rewrite(ctx context.Context, text, category, source, tone string) (string, error)
}

// Enrichment is the output of one enrichment pass over a candidate.
type Enrichment struct {
	Title       string
	Content     string
	Excerpt     string
	Tags        []string
	ReadingTime int
}

// ExcerptLimit is the maximum excerpt length in runes, exported for the
// admin surface which builds articles without a full enrichment pass.
const ExcerptLimit = 150

const (
	wordsPerMinute = 200
	minTitleLen    = 10
	maxTags        = 5
	defaultTone    = "صحفي"
)

type Enricher struct {
	rewriter     RewriteCapability
	htmlTagRegex *regexp.Regexp
	dateRegex    *regexp.Regexp
	timeRegex    *regexp.Regexp
}

// New builds an enricher. rewriter may be nil, in which case the template
// fallback is always used.
func New(rewriter RewriteCapability) *Enricher {
	return &Enricher{
		rewriter:     rewriter,
		htmlTagRegex: regexp.MustCompile(`<[^>]*>`),
		dateRegex:    regexp.MustCompile(`\b\d{1,4}[/.-]\d{1,2}[/.-]\d{1,4}\b`),
		timeRegex:    regexp.MustCompile(`\b\d{1,2}:\d{2}(:\d{2})?\b`),
	}
}

// Enrich normalizes the title, rewrites the content, and derives excerpt,
// tags and reading time. It never fails: every step has a local fallback.
func (e *Enricher) Enrich(ctx context.Context, candidate models.Candidate) Enrichment {
	title := e.CleanTitle(candidate.Title)
	content := e.rewriteContent(ctx, candidate)
	plain := e.stripMarkup(content)

	return Enrichment{
		Title:       title,
		Content:     content,
		Excerpt:     Excerpt(plain, ExcerptLimit),
		Tags:        e.deriveTags(candidate.Category, title+" "+plain),
		ReadingTime: ReadingTime(plain),
	}
}

var boilerplatePrefixes = []string{
	"عاجل:", "عاجل :", "خبر عاجل:", "حصري:", "بالفيديو:", "بالصور:",
	"breaking:", "urgent:",
}

// CleanTitle strips embedded dates, boilerplate phrases and trailing site
// names. A result shorter than the minimum falls back to the stripped
// original so the title never ends up unusable.
func (e *Enricher) CleanTitle(title string) string {
	original := strings.TrimSpace(title)

	cleaned := e.dateRegex.ReplaceAllString(original, " ")
	cleaned = e.timeRegex.ReplaceAllString(cleaned, " ")

	lowered := strings.ToLower(cleaned)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			cleaned = cleaned[len(prefix):]
			break
		}
	}

	// Site-name suffixes come after the last separator, e.g. "... - موقع كذا".
	for _, sep := range []string{" - ", " | ", " – " /* en dash */} {
		if idx := strings.LastIndex(cleaned, sep); idx > 0 {
			head := cleaned[:idx]
			if len([]rune(strings.TrimSpace(head))) >= minTitleLen {
				cleaned = head
			}
		}
	}

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len([]rune(cleaned)) < minTitleLen {
		return strings.Join(strings.Fields(original), " ")
	}
	return cleaned
}

var categoryIntros = map[string]string{
	models.CategoryEconomy:  "في تطور اقتصادي لافت،",
	models.CategoryPolitics: "على الصعيد السياسي،",
	models.CategorySports:   "في الشأن الرياضي،",
	models.CategoryWorld:    "على الساحة الدولية،",
}

var categoryClosings = map[string]string{
	models.CategoryEconomy:  "وتبقى التطورات الاقتصادية محل متابعة مستمرة.",
	models.CategoryPolitics: "وتتواصل متابعة المستجدات السياسية أولا بأول.",
	models.CategorySports:   "وتستمر تغطيتنا لأبرز الأحداث الرياضية.",
	models.CategoryWorld:    "وتتابع غرفة الأخبار تطورات الحدث الدولي.",
}

const (
	genericIntro   = "في خبر جديد،"
	genericClosing = "وسنوافيكم بالمستجدات فور ورودها."
)

func (e *Enricher) rewriteContent(ctx context.Context, candidate models.Candidate) string {
	if e.rewriter != nil {
		rewritten, err := e.rewriter.Rewrite(ctx, candidate.Content, candidate.Category, candidate.Source, defaultTone)
		if err == nil && strings.TrimSpace(rewritten) != "" {
			return rewritten
		}
		if err != nil {
			logger.Get().Warn().Err(err).Str("title", candidate.Title).
				Msg("Rewrite capability failed, using template fallback")
		}
	}
	return e.templateFallback(candidate)
}

// templateFallback prepends one category-appropriate clause and appends one
// closing clause. The original sentences pass through untouched; the
// fallback path never fabricates facts.
func (e *Enricher) templateFallback(candidate models.Candidate) string {
	intro, ok := categoryIntros[candidate.Category]
	if !ok {
		intro = genericIntro
	}
	closing, ok := categoryClosings[candidate.Category]
	if !ok {
		closing = genericClosing
	}
	body := strings.TrimSpace(candidate.Content)
	return intro + " " + body + "\n\n" + closing
}

func (e *Enricher) stripMarkup(content string) string {
	plain := e.htmlTagRegex.ReplaceAllString(content, " ")
	plain = html.UnescapeString(plain)
	return strings.Join(strings.Fields(plain), " ")
}

// Excerpt truncates plain text to limit runes at the nearest preceding word
// boundary, appending an ellipsis when truncation happened.
func Excerpt(plain string, limit int) string {
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "..."
}

// ReadingTime estimates minutes at 200 words per minute, rounded up,
// minimum 1.
func ReadingTime(plain string) int {
	words := len(strings.Fields(plain))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// deriveTags scans the keyword rules over the text. The category always
// comes first, then keywords in discovery order, deduplicated and capped.
func (e *Enricher) deriveTags(category, text string) []string {
	tags := make([]string, 0, maxTags)
	seen := make(map[string]struct{})

	if category != "" {
		tags = append(tags, category)
		seen[category] = struct{}{}
	}

	for _, rule := range classify.Rules {
		for _, kw := range rule.Keywords {
			if len(tags) >= maxTags {
				return tags
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			if strings.Contains(text, kw) {
				tags = append(tags, kw)
				seen[kw] = struct{}{}
			}
		}
	}
	return tags
}
