package sources

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sadanews/sada/internal/models"
	"github.com/tealeg/xlsx/v3"
)

func TestWebhookAdapterFetchDrainsQueue(t *testing.T) {
	a := NewWebhookAdapter()
	a.Push(candidateFixture("خبر أول"))
	a.Push(candidateFixture("خبر ثان"))

	if a.Pending() != 2 {
		t.Fatalf("expected 2 pending, got %d", a.Pending())
	}

	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if a.Pending() != 0 {
		t.Errorf("queue not drained, %d left", a.Pending())
	}

	again, _ := a.Fetch(context.Background())
	if len(again) != 0 {
		t.Errorf("second fetch should be empty, got %d", len(again))
	}
}

func TestWebhookAdapterAssignsSource(t *testing.T) {
	a := NewWebhookAdapter()
	c := candidateFixture("خبر")
	c.Source = ""
	a.Push(c)

	got, _ := a.Fetch(context.Background())
	if got[0].Source != "Webhook" {
		t.Errorf("expected source Webhook, got %q", got[0].Source)
	}
}

func TestMapSocialPostUsesFirstLineAsTitle(t *testing.T) {
	post := socialPost{
		Page:      "صفحة الأخبار",
		Text:      "عنوان المنشور هنا\nبقية النص في الأسطر التالية",
		Permalink: "https://social.example/p/1",
		PostedAt:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	c := mapSocialPost(post)

	if c.Title != "عنوان المنشور هنا" {
		t.Errorf("expected first line as title, got %q", c.Title)
	}
	if c.Source != "صفحة الأخبار" {
		t.Errorf("expected page name as source, got %q", c.Source)
	}
	if c.OriginalLink != "https://social.example/p/1" {
		t.Errorf("permalink not mapped: %q", c.OriginalLink)
	}
	if !c.Date.Equal(post.PostedAt) {
		t.Errorf("posted_at not mapped: %v", c.Date)
	}
}

func TestMapFeedItemPicksImageEnclosure(t *testing.T) {
	published := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	item := &gofeed.Item{
		Title:           "  عنوان الخبر  ",
		Description:     "وصف الخبر",
		Link:            "https://news.example/a/1",
		PublishedParsed: &published,
		Enclosures: []*gofeed.Enclosure{
			{URL: "https://news.example/audio.mp3", Type: "audio/mpeg"},
			{URL: "https://news.example/photo.jpg", Type: "image/jpeg"},
		},
	}

	c := mapFeedItem(item, "وكالة الأنباء")
	if c.Title != "عنوان الخبر" {
		t.Errorf("title not trimmed: %q", c.Title)
	}
	if c.EnclosureURL != "https://news.example/photo.jpg" {
		t.Errorf("expected image enclosure, got %q", c.EnclosureURL)
	}
	if c.OriginalLink != "https://news.example/a/1" {
		t.Errorf("link not mapped: %q", c.OriginalLink)
	}
	if !c.Date.Equal(published) {
		t.Errorf("published date not mapped: %v", c.Date)
	}
	if c.Source != "وكالة الأنباء" {
		t.Errorf("source not mapped: %q", c.Source)
	}
}

func TestSheetsAdapterReadsAndConsumesFile(t *testing.T) {
	dir := t.TempDir()
	writeTestSheet(t, filepath.Join(dir, "import.xlsx"))

	a := NewSheetsAdapter(dir)
	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Title != "خبر من الجدول" {
		t.Errorf("unexpected first title %q", got[0].Title)
	}
	if got[0].Source != "Google Sheets" {
		t.Errorf("unexpected source %q", got[0].Source)
	}

	// A second fetch must find nothing: the file was moved aside.
	again, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected consumed file to be skipped, got %d candidates", len(again))
	}
}

func TestSheetsAdapterMissingDirIsNotAnError(t *testing.T) {
	a := NewSheetsAdapter(filepath.Join(t.TempDir(), "does-not-exist"))
	got, err := a.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no candidates, got %d", len(got))
	}
}

func writeTestSheet(t *testing.T, path string) {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("استيراد")
	if err != nil {
		t.Fatalf("AddSheet: %v", err)
	}

	rows := [][]string{
		{"العنوان", "المحتوى", "الفئة", "الصورة", "الرابط", "التاريخ"},
		{"خبر من الجدول", "محتوى الخبر الأول", "اقتصاد", "", "https://example.org/1", "2026-02-01"},
		{"خبر ثان", "محتوى الخبر الثاني", "", "", "", ""},
		{"", "صف ناقص بلا عنوان", "", "", "", ""},
	}
	for _, cells := range rows {
		row := sheet.AddRow()
		for _, value := range cells {
			row.AddCell().Value = value
		}
	}

	if err := file.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func candidateFixture(title string) (c models.Candidate) {
	c.Title = title
	c.Content = "محتوى"
	c.Source = "مصدر"
	c.Date = time.Now()
	return c
}
