package match

import "strings"

// Experience signal buckets, ordered roughly by seniority.
const (
	ExpEntry     = "entry"
	ExpJunior    = "junior"
	ExpGraduate  = "graduate"
	ExpMid       = "mid"
	ExpSenior    = "senior"
	ExpLead      = "lead"
	ExpPrincipal = "principal"
)

// experienceMarkers maps lowercase posting phrases to a signal bucket. More
// specific phrases come first so "senior" in "senior graduate program" does
// not win over the graduate marker ordering below.
var experienceMarkers = []struct {
	phrase string
	level  string
}{
	{"principal", ExpPrincipal},
	{"staff engineer", ExpPrincipal},
	{"lead", ExpLead},
	{"head of", ExpLead},
	{"senior", ExpSenior},
	{"sr.", ExpSenior},
	{"graduate", ExpGraduate},
	{"trainee", ExpGraduate},
	{"working student", ExpJunior},
	{"junior", ExpJunior},
	{"jr.", ExpJunior},
	{"entry level", ExpEntry},
	{"entry-level", ExpEntry},
	{"intern", ExpEntry},
	{"internship", ExpEntry},
}

// ExtractExperience derives the experience-level signal from title and
// description. Returns "" when nothing matches, which the quality filter
// treats as compatible with any preference.
func ExtractExperience(title, description string) string {
	haystack := strings.ToLower(title)
	for _, m := range experienceMarkers {
		if strings.Contains(haystack, m.phrase) {
			return m.level
		}
	}
	haystack = strings.ToLower(description)
	for _, m := range experienceMarkers {
		if strings.Contains(haystack, m.phrase) {
			return m.level
		}
	}
	return ""
}

// languageMarkers holds a few high-confidence stopword sets per language.
// Postings are overwhelmingly English; non-English detection only needs to
// be good enough for the language filter, not a real classifier.
var languageMarkers = map[string][]string{
	"german":  {" und ", " für ", " wir ", " bei ", " mit ", "(m/w/d)", "(w/m/d)"},
	"french":  {" et ", " vous ", " nous ", " pour ", " chez ", "h/f"},
	"spanish": {" y ", " para ", " con ", " nosotros ", " buscamos "},
	"italian": {" e ", " per ", " siamo ", " cerchiamo "},
	"dutch":   {" en ", " wij ", " voor ", " bij ons "},
}

// DetectLanguages returns the language signals found in the text, always
// including "english" as the baseline.
func DetectLanguages(text string) []string {
	lowered := " " + strings.ToLower(text) + " "
	langs := []string{"english"}
	for lang, markers := range languageMarkers {
		hits := 0
		for _, marker := range markers {
			if strings.Contains(lowered, marker) {
				hits++
			}
		}
		// Two independent markers keeps single-word false positives out.
		if hits >= 2 {
			langs = append(langs, lang)
		}
	}
	return langs
}
