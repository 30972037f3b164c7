package images

import (
	"context"
	"testing"

	"github.com/sadanews/sada/internal/models"
)

type denyProbe struct{}

func (denyProbe) HeadCheck(ctx context.Context, url string) bool { return false }

type recordingProbe struct {
	urls []string
	ok   bool
}

func (p *recordingProbe) HeadCheck(ctx context.Context, url string) bool {
	p.urls = append(p.urls, url)
	return p.ok
}

func TestIsPlausibleImageURL(t *testing.T) {
	valid := []string{
		"https://example.org/photo.jpg",
		"http://cdn.site.com/a/b/c.webp",
		"https://images.unsplash.com/photo-1234",
	}
	for _, u := range valid {
		if !IsPlausibleImageURL(u) {
			t.Errorf("expected %q to be plausible", u)
		}
	}

	invalid := []string{
		"",
		"not a url",
		"ftp://example.org/photo.jpg",
		"https://example.org/page.html",
		"https://example.org/placeholder.jpg",
		"https://example.org/1x1.png",
		"/relative/photo.jpg",
	}
	for _, u := range invalid {
		if IsPlausibleImageURL(u) {
			t.Errorf("expected %q to be rejected", u)
		}
	}
}

func TestEnsureImageKeepsValidExisting(t *testing.T) {
	a := NewAssurer(AlwaysOKProbe{})
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title: "خبر",
		Image: "https://example.org/photo.jpg",
	})
	if c.Image != "https://example.org/photo.jpg" {
		t.Errorf("valid existing image should be kept, got %q", c.Image)
	}
}

func TestEnsureImagePrefersEnclosureOverBody(t *testing.T) {
	a := NewAssurer(AlwaysOKProbe{})
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title:        "خبر",
		EnclosureURL: "https://example.org/enclosure.jpg",
		RawBody:      `<img src="https://example.org/inline.jpg">`,
	})
	if c.Image != "https://example.org/enclosure.jpg" {
		t.Errorf("enclosure should outrank body images, got %q", c.Image)
	}
}

func TestEnsureImageExtractsOgImage(t *testing.T) {
	a := NewAssurer(AlwaysOKProbe{})
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title: "خبر",
		RawBody: `<html><head>
			<meta property="og:image" content="https://example.org/og.jpg">
		</head><body><img src="https://example.org/small-icon.png"></body></html>`,
	})
	if c.Image != "https://example.org/og.jpg" {
		t.Errorf("og:image should win, got %q", c.Image)
	}
}

func TestEnsureImagePenalizesIcons(t *testing.T) {
	a := NewAssurer(AlwaysOKProbe{})
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title: "خبر",
		RawBody: `<body>
			<img src="https://example.org/site-logo.png">
			<img src="https://example.org/story-hero.jpg" width="1200">
		</body>`,
	})
	if c.Image != "https://example.org/story-hero.jpg" {
		t.Errorf("hero image should beat logo, got %q", c.Image)
	}
}

func TestEnsureImageSportsFallbackPool(t *testing.T) {
	a := NewAssurer(denyProbe{})
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title:    "المنتخب يستعد للمباراة",
		Category: models.CategorySports,
		Content:  "تفاصيل الاستعدادات",
	})

	if c.Image == "" {
		t.Fatal("image must never be empty")
	}
	pool := FallbackPool(models.CategorySports)
	found := false
	for _, u := range pool {
		if c.Image == u {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("fallback image %q not in the sports pool", c.Image)
	}
}

func TestEnsureImageFallbackIsDeterministic(t *testing.T) {
	a := NewAssurer(denyProbe{})
	cand := models.Candidate{Title: "عنوان ثابت", Category: models.CategoryEconomy}
	first := a.EnsureImage(context.Background(), cand).Image
	second := a.EnsureImage(context.Background(), cand).Image
	if first != second {
		t.Errorf("fallback pick should be stable for the same title: %q vs %q", first, second)
	}
}

func TestEnsureImageProbeFailureMovesToNextTier(t *testing.T) {
	probe := &recordingProbe{ok: false}
	a := NewAssurer(probe)
	c := a.EnsureImage(context.Background(), models.Candidate{
		Title:    "خبر",
		Image:    "https://example.org/photo.jpg",
		Category: models.CategoryGeneral,
	})

	if len(probe.urls) == 0 {
		t.Fatal("probe was never consulted")
	}
	if c.Image == "https://example.org/photo.jpg" {
		t.Error("unreachable image should have been replaced by a fallback")
	}
	if c.Image == "" {
		t.Error("image must never be empty")
	}
}
