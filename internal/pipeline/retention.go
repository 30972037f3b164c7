package pipeline

import (
	"sort"

	"github.com/sadanews/sada/internal/models"
)

// Trim keeps the maxArticles most recent articles by date and returns both
// halves. Pure function of its inputs; the caller writes the kept slice
// back and decides what to do with the removed one.
func Trim(articles []models.Article, maxArticles int) (kept, removed []models.Article) {
	if maxArticles <= 0 || len(articles) <= maxArticles {
		return articles, nil
	}

	sorted := make([]models.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	return sorted[:maxArticles], sorted[maxArticles:]
}
