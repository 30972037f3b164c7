package classify

import "github.com/sadanews/sada/internal/models"

// Rule maps a category to its keyword sets. Primary keywords are strong
// signals; context keywords count at a lower weight. Priority breaks ties
// between categories with overlapping vocabulary.
type Rule struct {
	Category string
	Priority float64
	Keywords []string
	Context  []string
}

const (
	keywordWeight = 3.0
	contextWeight = 1.0
)

// Rules are data, not code: extending a category means editing this list.
var Rules = []Rule{
	{
		Category: models.CategoryEconomy,
		Priority: 1.2,
		Keywords: []string{
			"وزير المالية", "البنك المركزي", "ميزانية", "اقتصاد", "تضخم",
			"أسعار النفط", "البورصة", "استثمار", "الدولار", "سعر الصرف",
		},
		Context: []string{"أسعار", "سوق", "تمويل", "ضرائب", "نمو", "قرض"},
	},
	{
		Category: models.CategoryPolitics,
		Priority: 1.1,
		Keywords: []string{
			"رئيس الوزراء", "البرلمان", "انتخابات", "مجلس النواب", "الحكومة",
			"وزير الخارجية", "قمة", "مفاوضات",
		},
		Context: []string{"سياسة", "حزب", "قرار", "مرسوم", "دبلوماسي"},
	},
	{
		Category: models.CategoryGovernorates,
		Priority: 1.0,
		Keywords: []string{
			"محافظة", "المحافظ", "مجلس المدينة", "القرية", "المجلس المحلي",
		},
		Context: []string{"محلي", "بلدية", "أهالي", "خدمات"},
	},
	{
		Category: models.CategoryAI,
		Priority: 1.3,
		Keywords: []string{
			"ذكاء اصطناعي", "الذكاء الاصطناعي", "تعلم الآلة", "روبوت",
			"نموذج لغوي", "شات جي بي تي",
		},
		Context: []string{"خوارزمية", "بيانات", "أتمتة", "تقنية"},
	},
	{
		Category: models.CategoryTechnology,
		Priority: 1.0,
		Keywords: []string{
			"تكنولوجيا", "هاتف ذكي", "تطبيق", "إنترنت", "شركة آبل",
			"جوجل", "مايكروسوفت", "أمن سيبراني",
		},
		Context: []string{"تقنية", "رقمي", "برمجيات", "حاسوب", "شبكة"},
	},
	{
		Category: models.CategoryMilitary,
		Priority: 1.1,
		Keywords: []string{
			"الجيش", "القوات المسلحة", "عملية عسكرية", "وزارة الدفاع",
			"صاروخ", "طائرة مسيرة", "مناورات",
		},
		Context: []string{"عسكري", "جنود", "سلاح", "دفاع", "حدود"},
	},
	{
		Category: models.CategoryWorld,
		Priority: 0.9,
		Keywords: []string{
			"الأمم المتحدة", "واشنطن", "موسكو", "بكين", "الاتحاد الأوروبي",
			"مجلس الأمن",
		},
		Context: []string{"دولي", "عالمي", "خارجية", "سفارة"},
	},
	{
		Category: models.CategorySports,
		Priority: 1.2,
		Keywords: []string{
			"كرة القدم", "الدوري", "المنتخب", "مباراة", "بطولة",
			"أولمبياد", "كأس العالم", "المدرب",
		},
		Context: []string{"رياضة", "لاعب", "هدف", "فوز", "ملعب", "نادي"},
	},
	{
		Category: models.CategoryArts,
		Priority: 1.0,
		Keywords: []string{
			"مهرجان", "فيلم", "مسلسل", "ألبوم", "حفل غنائي", "مسرحية",
			"معرض فني",
		},
		Context: []string{"فنان", "ممثل", "سينما", "موسيقى", "دراما"},
	},
	{
		Category: models.CategoryCars,
		Priority: 1.0,
		Keywords: []string{
			"سيارة كهربائية", "طراز جديد", "تسلا", "معرض السيارات",
			"محرك",
		},
		Context: []string{"سيارات", "قيادة", "وقود", "موديل", "شاحن"},
	},
	{
		Category: models.CategoryScience,
		Priority: 1.0,
		Keywords: []string{
			"دراسة علمية", "باحثون", "ناسا", "اكتشاف", "فضاء", "لقاح",
			"تجارب سريرية",
		},
		Context: []string{"علوم", "بحث", "مختبر", "كوكب", "جامعة"},
	},
	{
		Category: models.CategoryEducation,
		Priority: 1.0,
		Keywords: []string{
			"وزارة التربية", "امتحانات", "الثانوية العامة", "المدارس",
			"الجامعات", "منح دراسية",
		},
		Context: []string{"تعليم", "طلاب", "معلم", "مناهج", "فصل دراسي"},
	},
	{
		Category: models.CategoryAccidents,
		Priority: 1.1,
		Keywords: []string{
			"حادث", "انقلاب سيارة", "حريق", "انفجار", "غرق", "تصادم",
			"مصرع",
		},
		Context: []string{"إصابات", "ضحايا", "إسعاف", "شرطة", "دفاع مدني"},
	},
}

// SpamPhrases cause immediate rejection before classification; promotional
// material never reaches the store under any category.
var SpamPhrases = []string{
	"اشترك الآن",
	"عرض خاص",
	"خصم يصل",
	"اربح جائزة",
	"انقر هنا",
	"للتواصل واتساب",
	"win a prize",
	"click here",
	"limited offer",
}
