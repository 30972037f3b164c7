package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sadanews/sada/internal/models"
)

// socialPost is the JSON shape the simulated social-page endpoints serve.
type socialPost struct {
	Page      string    `json:"page"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	VideoURL  string    `json:"video_url,omitempty"`
	Permalink string    `json:"permalink,omitempty"`
	PostedAt  time.Time `json:"posted_at"`
}

// SocialAdapter pulls candidates from simulated social-media page feeds.
type SocialAdapter struct {
	client   *resty.Client
	pageURLs []string
}

func NewSocialAdapter(pageURLs []string, timeout time.Duration) *SocialAdapter {
	return &SocialAdapter{
		client:   resty.New().SetTimeout(timeout),
		pageURLs: pageURLs,
	}
}

func (a *SocialAdapter) Name() string { return "Social" }

func (a *SocialAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	var candidates []models.Candidate
	var errs []error

	for _, url := range a.pageURLs {
		posts, err := a.fetchPage(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %s: %w", url, err))
			continue
		}
		for _, post := range posts {
			candidates = append(candidates, mapSocialPost(post))
		}
	}

	if len(candidates) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("all %d pages failed, first error: %w", len(errs), errs[0])
	}
	return candidates, nil
}

func (a *SocialAdapter) fetchPage(ctx context.Context, url string) ([]socialPost, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode())
	}

	// Endpoints serve either an array of posts or a single post.
	var posts []socialPost
	if err := json.Unmarshal(resp.Body(), &posts); err != nil {
		var single socialPost
		if singleErr := json.Unmarshal(resp.Body(), &single); singleErr != nil {
			return nil, fmt.Errorf("failed to parse page response: %w", err)
		}
		posts = []socialPost{single}
	}
	return posts, nil
}

func mapSocialPost(post socialPost) models.Candidate {
	title := strings.TrimSpace(post.Title)
	if title == "" {
		// Posts often have no separate title; use the first line of text.
		title = firstLine(post.Text)
	}

	date := post.PostedAt
	if date.IsZero() {
		date = time.Now()
	}

	return models.Candidate{
		Title:        title,
		Content:      post.Text,
		Source:       post.Page,
		Image:        post.Image,
		VideoURL:     post.VideoURL,
		OriginalLink: post.Permalink,
		Date:         date,
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx > 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}
