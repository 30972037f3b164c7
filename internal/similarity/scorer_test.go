package similarity

import (
	"testing"
	"time"

	"github.com/sadanews/sada/internal/models"
)

func TestSimilarIdenticalTitles(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	a := models.Article{Title: "وزير المالية يعلن عن ميزانية جديدة"}
	c := models.Candidate{Title: "وزير المالية يعلن عن ميزانية جديدة!"}
	if !s.Similar(a, c) {
		t.Error("identical normalized titles should be similar")
	}
}

func TestSimilarOriginalLinkOverridesText(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	a := models.Article{Title: "عنوان أول مختلف تماما", OriginalLink: "https://example.com/news/1"}
	c := models.Candidate{Title: "خبر آخر لا يشبه الأول", OriginalLink: "https://example.com/news/1"}
	if !s.Similar(a, c) {
		t.Error("identical original links must be treated as duplicates")
	}
}

func TestNotSimilarDifferentArticles(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	a := models.Article{
		Title:   "افتتاح معرض الكتاب الدولي في القاهرة",
		Content: "انطلقت فعاليات معرض الكتاب وسط حضور كبير من الزوار والناشرين",
		Source:  "وكالة الأنباء",
		Date:    time.Now(),
	}
	c := models.Candidate{
		Title:   "ارتفاع أسعار النفط في الأسواق العالمية",
		Content: "سجلت أسعار النفط ارتفاعا ملحوظا خلال تعاملات اليوم متأثرة بقرارات الإنتاج",
		Source:  "رويترز",
		Date:    time.Now(),
	}
	if s.Similar(a, c) {
		t.Error("unrelated articles flagged as similar")
	}
}

func TestSameSourceWithinDayLowersTitleBar(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	now := time.Now()
	// Titles share 4 of 5 long tokens: ratio 0.8 clears the relaxed 0.6
	// bar but not the strict one (the rule requires strictly above 0.8).
	a := models.Article{
		Title:  "الحكومة تعلن خطة اقتصادية شاملة",
		Source: "البوابة",
		Date:   now,
	}
	c := models.Candidate{
		Title:  "الحكومة تعلن خطة تنموية شاملة",
		Source: "البوابة",
		Date:   now.Add(2 * time.Hour),
	}
	if !s.Similar(a, c) {
		t.Error("same-source repost within 24h should match at the relaxed bar")
	}

	c.Source = "مصدر آخر"
	if s.Similar(a, c) {
		t.Error("different source should not get the relaxed bar")
	}

	c.Source = "البوابة"
	c.Date = now.Add(48 * time.Hour)
	if s.Similar(a, c) {
		t.Error("same source outside the 24h window should not get the relaxed bar")
	}
}

func TestSimilarContentPrefix(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	body := "أعلنت وزارة الصحة اليوم عن حملة تطعيم موسعة تستهدف جميع المحافظات خلال الشهر القادم بالتعاون مع منظمة الصحة العالمية"
	a := models.Article{Title: "عنوان مختصر أول", Content: body}
	c := models.Candidate{Title: "صياغة ثانية للعنوان", Content: body + " وذلك غدا"}
	if !s.Similar(a, c) {
		t.Error("near-identical content prefixes should be similar")
	}
}

func TestSimilarSymmetry(t *testing.T) {
	s := NewScorer(DefaultThresholds())
	now := time.Now()
	pairs := []struct {
		title1, title2     string
		content1, content2 string
	}{
		{"الحكومة تعلن خطة اقتصادية شاملة", "الحكومة تعلن خطة تنموية شاملة",
			"نص الخبر الأول هنا", "نص الخبر الثاني هنا"},
		{"خبر رياضي عن الدوري", "تقرير اقتصادي عن الأسواق",
			"محتوى مختلف تماما", "محتوى آخر لا يشبهه"},
	}

	for _, p := range pairs {
		a := models.Article{Title: p.title1, Content: p.content1, Source: "س", Date: now}
		b := models.Article{Title: p.title2, Content: p.content2, Source: "س", Date: now}
		ca := models.Candidate{Title: p.title1, Content: p.content1, Source: "س", Date: now}
		cb := models.Candidate{Title: p.title2, Content: p.content2, Source: "س", Date: now}

		if s.Similar(a, cb) != s.Similar(b, ca) {
			t.Errorf("similarity not symmetric for %q / %q", p.title1, p.title2)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello,   World! 123", "hello world"},
		{"عاجل: وزير المالية", "عاجل وزير المالية"},
		{"", ""},
		{"!!!", ""},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
