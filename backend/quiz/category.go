package quiz

import "slices"

// AllCategories selects every category: a mixed test, or the global leaderboard.
const AllCategories = "all"

var categories = []string{
	"selectors",
	"box-model",
	"flexbox",
	"grid",
	"positioning",
	"typography",
	"colors",
	"animations",
	"responsive",
	"general",
}

const (
	LangEN = "en"
	LangRU = "ru"
)

var languages = []string{LangEN, LangRU}

var difficulties = []string{"easy", "medium", "hard"}

func Categories() []string {
	return append([]string(nil), categories...)
}

func Languages() []string {
	return append([]string(nil), languages...)
}

// ValidCategory reports whether c names a concrete category. "all" is not one.
func ValidCategory(c string) bool {
	return slices.Contains(categories, c)
}

func ValidLanguage(l string) bool {
	return slices.Contains(languages, l)
}

func ValidDifficulty(d string) bool {
	return slices.Contains(difficulties, d)
}

// checkCategory accepts a concrete category or "all".
func checkCategory(c string) error {
	if c == AllCategories || ValidCategory(c) {
		return nil
	}
	return ErrInvalidCategory
}

func checkLanguage(l string) error {
	if ValidLanguage(l) {
		return nil
	}
	return ErrInvalidLanguage
}
