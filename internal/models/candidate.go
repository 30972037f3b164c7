package models

import "time"

// Candidate is a raw article record produced by a source adapter, before
// classification, enrichment and image assurance.
type Candidate struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	RawBody      string    `json:"raw_body,omitempty"` // original HTML body, used for image extraction
	Category     string    `json:"category,omitempty"`
	Date         time.Time `json:"date"`
	Source       string    `json:"source"`
	Image        string    `json:"image,omitempty"`
	EnclosureURL string    `json:"enclosure_url,omitempty"`
	VideoURL     string    `json:"video_url,omitempty"`
	OriginalLink string    `json:"original_link,omitempty"`
}
