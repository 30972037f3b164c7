package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Article is the canonical, fully processed record persisted in the store
// and served to the site.
type Article struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Excerpt      string    `json:"excerpt"`
	Category     string    `json:"category"`
	Date         time.Time `json:"date"`
	Source       string    `json:"source"`
	Image        string    `json:"image"`
	Featured     bool      `json:"featured,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	Tags         []string  `json:"tags"`
	ReadingTime  int       `json:"reading_time"`
	OriginalLink string    `json:"original_link,omitempty"`
	IsTranslated bool      `json:"is_translated,omitempty"`
}

// NewArticleID returns a globally unique article ID. The timestamp prefix
// keeps IDs roughly sortable by ingestion time.
func NewArticleID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
}
