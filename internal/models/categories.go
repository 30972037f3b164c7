package models

// The closed category set. Values are the Arabic labels used by the site;
// anything outside this set is rejected by the classifier.
const (
	CategoryPolitics     = "سياسة"
	CategoryEconomy      = "اقتصاد"
	CategoryGovernorates = "محافظات"
	CategoryAI           = "ذكاء اصطناعي"
	CategoryTechnology   = "تكنولوجيا"
	CategoryMilitary     = "عسكرية"
	CategoryWorld        = "عالم"
	CategorySports       = "رياضة"
	CategoryArts         = "فنون"
	CategoryCars         = "سيارات"
	CategoryScience      = "علوم"
	CategoryEducation    = "تعليم"
	CategoryAccidents    = "حوادث"
	CategoryGeneral      = "أخبار"
)

// Categories lists every valid category, generic last.
var Categories = []string{
	CategoryPolitics,
	CategoryEconomy,
	CategoryGovernorates,
	CategoryAI,
	CategoryTechnology,
	CategoryMilitary,
	CategoryWorld,
	CategorySports,
	CategoryArts,
	CategoryCars,
	CategoryScience,
	CategoryEducation,
	CategoryAccidents,
	CategoryGeneral,
}

var categorySet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Categories))
	for _, c := range Categories {
		m[c] = struct{}{}
	}
	return m
}()

// IsValidCategory reports whether c is a member of the closed category set.
func IsValidCategory(c string) bool {
	_, ok := categorySet[c]
	return ok
}
