package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sadanews/sada/internal/classify"
	"github.com/sadanews/sada/internal/enrich"
	"github.com/sadanews/sada/internal/images"
	"github.com/sadanews/sada/internal/models"
	"github.com/sadanews/sada/internal/similarity"
	"github.com/sadanews/sada/internal/sources"
	"github.com/sadanews/sada/internal/store"
)

type fakeAdapter struct {
	name       string
	candidates []models.Candidate
	err        error
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(ctx context.Context) ([]models.Candidate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}

func newTestPipeline(st store.Store, adapters ...sources.Adapter) *Pipeline {
	return New(
		adapters,
		classify.New(nil),
		enrich.New(nil),
		images.NewAssurer(images.AlwaysOKProbe{}),
		similarity.NewScorer(similarity.DefaultThresholds()),
		store.NewGuard(st),
		nil,
	)
}

func allSourcesConfig(maxArticles int) models.SyncConfig {
	return models.SyncConfig{
		Enabled:         true,
		IntervalMinutes: 30,
		MaxArticles:     maxArticles,
		Sources:         models.SourceFlags{RSS: true, Social: true, Webhook: true, Sheets: true},
	}
}

func candidate(title, content string, date time.Time) models.Candidate {
	return models.Candidate{
		Title:   title,
		Content: content,
		Source:  "وكالة الاختبار",
		Date:    date,
	}
}

func TestRunOnceAddsArticles(t *testing.T) {
	st := store.NewMemoryStore()
	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("وزير المالية يعلن عن ميزانية جديدة", "تفاصيل الميزانية المقترحة للعام المقبل", time.Now()),
		candidate("المنتخب يفوز في مباراة البطولة", "سجل اللاعبون ثلاثة أهداف في المباراة", time.Now()),
	}}
	p := newTestPipeline(st, adapter)

	result, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 2 {
		t.Errorf("expected 2 added, got %d", result.Added)
	}

	articles, _ := st.GetAll(context.Background())
	if len(articles) != 2 {
		t.Fatalf("expected 2 stored articles, got %d", len(articles))
	}
	for _, a := range articles {
		if a.ID == "" {
			t.Error("stored article has empty ID")
		}
		if !models.IsValidCategory(a.Category) {
			t.Errorf("article %q has category %q outside the closed set", a.Title, a.Category)
		}
		if a.Image == "" || !images.IsPlausibleImageURL(a.Image) {
			t.Errorf("article %q violates the image invariant: %q", a.Title, a.Image)
		}
		if a.ReadingTime < 1 {
			t.Errorf("article %q has reading time %d", a.Title, a.ReadingTime)
		}
		if a.Excerpt == "" {
			t.Errorf("article %q has no excerpt", a.Title)
		}
	}
}

func TestRunOnceIdempotentDedup(t *testing.T) {
	st := store.NewMemoryStore()
	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("وزير المالية يعلن عن ميزانية جديدة", "تفاصيل الميزانية المقترحة", time.Now()),
	}}
	p := newTestPipeline(st, adapter)

	first, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	if first.Added != 1 {
		t.Fatalf("expected 1 added on first run, got %d", first.Added)
	}

	second, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if second.Added != 0 {
		t.Errorf("expected 0 added on identical second run, got %d", second.Added)
	}
	if second.Dropped != 1 {
		t.Errorf("expected 1 dropped duplicate, got %d", second.Dropped)
	}
}

func TestRunOnceDedupsByOriginalLinkWithinBatch(t *testing.T) {
	st := store.NewMemoryStore()
	first := candidate("وزير المالية يعلن عن ميزانية جديدة", "النص الأول", time.Now())
	first.OriginalLink = "https://news.example/a/1"
	second := candidate("عنوان مختلف تماما عن سابقه", "نص آخر مختلف كليا", time.Now())
	second.OriginalLink = "https://news.example/a/1"

	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{first, second}}
	p := newTestPipeline(st, adapter)

	result, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("expected only the first of two same-link candidates, added=%d", result.Added)
	}

	articles, _ := st.GetAll(context.Background())
	if len(articles) != 1 {
		t.Fatalf("expected 1 stored article, got %d", len(articles))
	}
}

func TestRunOnceAdapterFailureIsNonFatal(t *testing.T) {
	st := store.NewMemoryStore()
	broken := &fakeAdapter{name: "Social", err: errors.New("connection refused")}
	working := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("خبر من المصدر السليم فقط", "المحتوى الكامل للخبر الوحيد", time.Now()),
	}}
	p := newTestPipeline(st, broken, working)

	result, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("RunOnce must not fail on a single adapter error: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("expected partial results from the working adapter, added=%d", result.Added)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded adapter error, got %d", len(result.Errors))
	}
}

func TestRunOnceSkipsDisabledSources(t *testing.T) {
	st := store.NewMemoryStore()
	rss := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("خبر من التغذية الإخبارية", "محتوى من المصدر المفعل", time.Now()),
	}}
	social := &fakeAdapter{name: "Social", candidates: []models.Candidate{
		candidate("منشور من الصفحة الاجتماعية", "محتوى من المصدر المعطل", time.Now()),
	}}
	p := newTestPipeline(st, rss, social)

	cfg := allSourcesConfig(100)
	cfg.Sources.Social = false

	result, err := p.RunOnce(context.Background(), cfg)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 1 {
		t.Errorf("expected only the enabled source's article, added=%d", result.Added)
	}
}

func TestRunOnceRetentionKeepsMostRecent(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	day := func(n int) time.Time {
		return time.Date(2026, 1, n, 12, 0, 0, 0, time.UTC)
	}

	var existing []models.Article
	for i := 1; i <= 5; i++ {
		existing = append(existing, models.Article{
			ID:    fmt.Sprintf("old-%d", i),
			Title: fmt.Sprintf("خبر قديم رقم %d لا يشبه غيره إطلاقا", i),
			Date:  day(i),
			Image: "https://example.org/photo.jpg",
		})
	}
	if err := st.ReplaceAll(ctx, existing); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("افتتاح معرض دولي للكتاب في العاصمة", "تفاصيل الافتتاح والفعاليات المصاحبة", day(6)),
		candidate("ارتفاع ملحوظ في أسعار النفط عالميا", "أسباب الارتفاع وتوقعات الأسواق", day(7)),
	}}
	p := newTestPipeline(st, adapter)

	cfg := allSourcesConfig(5)
	result, err := p.RunOnce(ctx, cfg)
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 2 {
		t.Fatalf("expected 2 added, got %d", result.Added)
	}

	articles, _ := st.GetAll(ctx)
	if len(articles) != 5 {
		t.Fatalf("retention cap violated: %d articles", len(articles))
	}
	for _, a := range articles {
		if a.Date.Before(day(3)) {
			t.Errorf("article dated %v should have been trimmed", a.Date)
		}
	}
}

func TestRunOnceAddedCountsOnlySurvivors(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()

	day := func(n int) time.Time {
		return time.Date(2026, 2, n, 12, 0, 0, 0, time.UTC)
	}

	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("افتتاح مستشفى متخصص بالمدينة", "تفاصيل المشروع الصحي وموعد الاستقبال", day(1)),
		candidate("ارتفاع أسعار الذهب عالميا", "تحليل لأسباب الصعود في البورصات", day(2)),
		candidate("المنتخب يتأهل للنهائي القاري", "ملخص المباراة الحاسمة وردود الفعل", day(3)),
		candidate("توقيع اتفاقية تعاون صناعي", "بنود الاتفاقية والقطاعات المشمولة", day(4)),
		candidate("إطلاق قمر اصطناعي للاتصالات", "مواصفات القمر ومداره الجديد", day(5)),
	}}
	p := newTestPipeline(st, adapter)

	result, err := p.RunOnce(ctx, allSourcesConfig(3))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 3 {
		t.Errorf("added must count only articles surviving the trim, got %d", result.Added)
	}

	articles, _ := st.GetAll(ctx)
	if len(articles) != 3 {
		t.Fatalf("retention cap violated: %d articles", len(articles))
	}
	for _, a := range articles {
		if a.Date.Before(day(3)) {
			t.Errorf("article dated %v should have been trimmed", a.Date)
		}
	}
}

func TestRunOnceNotifiesSubscribers(t *testing.T) {
	st := store.NewMemoryStore()
	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("خبر وحيد للإشعار", "المحتوى المطلوب للاختبار", time.Now()),
	}}
	p := newTestPipeline(st, adapter)

	var events []Event
	p.Notifier().Subscribe(func(e Event) { events = append(events, e) })

	if _, err := p.RunOnce(context.Background(), allSourcesConfig(100)); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].NewCount != 1 || !events[0].FirstRun {
		t.Errorf("unexpected first event: %+v", events[0])
	}

	adapter.candidates = nil
	if _, err := p.RunOnce(context.Background(), allSourcesConfig(100)); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].NewCount != 0 || events[1].FirstRun {
		t.Errorf("zero-new on a later run must not look like a first run: %+v", events[1])
	}
}

func TestRunOnceDropsSpam(t *testing.T) {
	st := store.NewMemoryStore()
	adapter := &fakeAdapter{name: "RSS", candidates: []models.Candidate{
		candidate("عرض خاص لفترة محدودة اشترك الآن", "انقر هنا واربح جائزة فورية", time.Now()),
	}}
	p := newTestPipeline(st, adapter)

	result, err := p.RunOnce(context.Background(), allSourcesConfig(100))
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if result.Added != 0 || result.Dropped != 1 {
		t.Errorf("spam should be dropped silently: %+v", result)
	}
}

func TestTrim(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
	}
	articles := []models.Article{
		{ID: "a", Date: day(3)},
		{ID: "b", Date: day(1)},
		{ID: "c", Date: day(5)},
		{ID: "d", Date: day(2)},
		{ID: "e", Date: day(4)},
	}

	kept, removed := Trim(articles, 3)
	if len(kept) != 3 || len(removed) != 2 {
		t.Fatalf("expected 3 kept / 2 removed, got %d / %d", len(kept), len(removed))
	}
	if kept[0].ID != "c" || kept[1].ID != "e" || kept[2].ID != "a" {
		t.Errorf("kept articles not the most recent: %v", kept)
	}

	kept, removed = Trim(articles, 10)
	if len(kept) != 5 || removed != nil {
		t.Errorf("under-cap collection must pass through untouched")
	}

	kept, removed = Trim(articles, 0)
	if len(kept) != 5 || removed != nil {
		t.Errorf("non-positive cap disables trimming")
	}
}
