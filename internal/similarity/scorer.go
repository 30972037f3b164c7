package similarity

import (
	"strings"
	"time"
	"unicode"

	"github.com/sadanews/sada/internal/models"
)

// Thresholds are heuristic and tunable; the defaults have held up against a
// small corpus of reposted wire items but are not load-bearing exact values.
type Thresholds struct {
	Title           float64 // overlap ratio on normalized titles
	Content         float64 // overlap ratio on content prefixes
	SameSourceTitle float64 // relaxed title bar for same source within the window
}

const (
	contentPrefixLen = 200
	sameSourceWindow = 24 * time.Hour
	minTokenLen      = 2 // tokens must be longer than this
)

func DefaultThresholds() Thresholds {
	return Thresholds{
		Title:           0.8,
		Content:         0.85,
		SameSourceTitle: 0.6,
	}
}

// Scorer decides whether a stored article and an incoming candidate are
// near-duplicates. All rules are symmetric in their two inputs.
type Scorer struct {
	thresholds Thresholds
}

func NewScorer(t Thresholds) *Scorer {
	return &Scorer{thresholds: t}
}

// Similar reports whether candidate c duplicates stored article a.
func (s *Scorer) Similar(a models.Article, c models.Candidate) bool {
	// Exact permalink match is always disqualifying.
	if a.OriginalLink != "" && c.OriginalLink != "" && a.OriginalLink == c.OriginalLink {
		return true
	}

	titleA := Normalize(a.Title)
	titleC := Normalize(c.Title)
	if titleA != "" && titleA == titleC {
		return true
	}

	titleRatio := overlapRatio(tokenize(titleA), tokenize(titleC))
	if titleRatio > s.thresholds.Title {
		return true
	}

	contentRatio := overlapRatio(
		tokenize(Normalize(prefix(a.Content, contentPrefixLen))),
		tokenize(Normalize(prefix(c.Content, contentPrefixLen))),
	)
	if contentRatio > s.thresholds.Content {
		return true
	}

	// Same-source items published within a day of each other are likely
	// re-postings, so the title bar drops.
	if a.Source != "" && a.Source == c.Source && withinWindow(a.Date, c.Date, sameSourceWindow) {
		if titleRatio > s.thresholds.SameSourceTitle {
			return true
		}
	}

	return false
}

// Normalize lowercases s, strips everything but letters and whitespace, and
// collapses runs of whitespace. Works for Arabic and Latin script alike.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenize(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		if len([]rune(w)) > minTokenLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// overlapRatio is |common| / max(|a|, |b|). Using max rather than the union
// keeps short paraphrases from scoring too high.
func overlapRatio(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for w := range a {
		if _, ok := b[w]; ok {
			common++
		}
	}
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	return float64(common) / float64(denom)
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}
