// Package taxonomy maps free-text career-path signals onto the canonical
// vocabulary used across the pipeline. Normalization is pure and total: it
// never fails, it only ever returns a member of the canonical set.
package taxonomy

import "strings"

// CareerPath is one canonical career-path tag.
type CareerPath string

const (
	Strategy         CareerPath = "strategy"
	DataAnalytics    CareerPath = "data-analytics"
	RetailLuxury     CareerPath = "retail-luxury"
	Sales            CareerPath = "sales"
	Marketing        CareerPath = "marketing"
	Finance          CareerPath = "finance"
	Operations       CareerPath = "operations"
	Product          CareerPath = "product"
	Tech             CareerPath = "tech"
	Sustainability   CareerPath = "sustainability"
	Entrepreneurship CareerPath = "entrepreneurship"
	Unsure           CareerPath = "unsure"

	// Unknown marks rows tagged before any taxonomy data existed. The
	// canonical table here is compiled in, so Normalize never produces it;
	// unmatched input resolves to Unsure. Stored rows may still carry it.
	Unknown CareerPath = "unknown"
)

// priority ranks canonical tags for ambiguity resolution. Higher wins. The
// ordering is a business policy, kept as data rather than branching logic.
var priority = map[CareerPath]int{
	Strategy:         130,
	Product:          120,
	DataAnalytics:    110,
	Tech:             100,
	Finance:          90,
	Marketing:        80,
	Sales:            70,
	Operations:       60,
	RetailLuxury:     50,
	Sustainability:   40,
	Entrepreneurship: 30,
	Unsure:           10,
	Unknown:          0,
}

// canonical holds every tag a job may resolve to, keyed by its string form.
var canonical = map[string]CareerPath{}

func init() {
	for tag := range priority {
		canonical[string(tag)] = tag
	}
}

// synonyms maps lowercased free-text phrases to canonical tags.
var synonyms = map[string]CareerPath{
	"consulting":            Strategy,
	"strategy consulting":   Strategy,
	"management consulting": Strategy,
	"corporate strategy":    Strategy,
	"data analytics":        DataAnalytics,
	"data science":          DataAnalytics,
	"analytics":             DataAnalytics,
	"business intelligence": DataAnalytics,
	"retail":                RetailLuxury,
	"luxury":                RetailLuxury,
	"luxury goods":          RetailLuxury,
	"fashion":               RetailLuxury,
	"business development":  Sales,
	"account management":    Sales,
	"brand management":      Marketing,
	"communications":        Marketing,
	"digital marketing":     Marketing,
	"growth":                Marketing,
	"investment banking":    Finance,
	"accounting":            Finance,
	"controlling":           Finance,
	"audit":                 Finance,
	"supply chain":          Operations,
	"logistics":             Operations,
	"procurement":           Operations,
	"project management":    Operations,
	"product management":    Product,
	"product manager":       Product,
	"technology":            Tech,
	"engineering":           Tech,
	"software":              Tech,
	"it":                    Tech,
	"esg":                   Sustainability,
	"csr":                   Sustainability,
	"climate":               Sustainability,
	"startup":               Entrepreneurship,
	"founder":               Entrepreneurship,
	"venture":               Entrepreneurship,
	"don't know yet":        Unsure,
	"not sure":              Unsure,
}

// Ambiguity is the diagnostic emitted when the input resolved to more than
// one distinct canonical tag. It is a signal for observability, not an error.
type Ambiguity struct {
	Inputs     []string
	Candidates []CareerPath
	Winner     CareerPath
}

// Normalize resolves free-text career-path signals to exactly one canonical
// tag. Each input is matched in order: exact, case-insensitive, then the
// synonym dictionary. Zero matches yield Unsure. Multiple distinct matches
// resolve by priority (first encountered wins ties) and return an Ambiguity
// diagnostic alongside the winner.
func Normalize(inputs ...string) (CareerPath, *Ambiguity) {
	var matches []CareerPath
	seen := map[CareerPath]bool{}

	for _, in := range inputs {
		tag, ok := resolve(in)
		if !ok {
			continue
		}
		if !seen[tag] {
			seen[tag] = true
			matches = append(matches, tag)
		}
	}

	switch len(matches) {
	case 0:
		return Unsure, nil
	case 1:
		return matches[0], nil
	}

	winner := matches[0]
	for _, m := range matches[1:] {
		if priority[m] > priority[winner] {
			winner = m
		}
	}
	return winner, &Ambiguity{Inputs: inputs, Candidates: matches, Winner: winner}
}

// resolve maps one raw string to a canonical tag, reporting whether any of
// the three match stages hit.
func resolve(in string) (CareerPath, bool) {
	if tag, ok := canonical[in]; ok {
		return tag, true
	}
	lowered := strings.ToLower(strings.TrimSpace(in))
	if tag, ok := canonical[lowered]; ok {
		return tag, true
	}
	if tag, ok := synonyms[lowered]; ok {
		return tag, true
	}
	return "", false
}

// Priority exposes the ranking value for a tag, mainly for diagnostics.
func Priority(tag CareerPath) int {
	return priority[tag]
}

// Valid reports whether s is a member of the canonical set.
func Valid(s string) bool {
	_, ok := canonical[s]
	return ok
}
