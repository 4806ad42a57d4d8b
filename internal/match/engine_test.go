package match

import (
	"fmt"
	"testing"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

func timePtr(t time.Time) *time.Time { return &t }

func baseJob(title, company, city, country, source string) model.CandidateJob {
	return model.CandidateJob{
		Title:       title,
		Company:     company,
		City:        city,
		Country:     country,
		Location:    city + ", " + country,
		Description: "A solid role doing " + title + " work.",
		URL:         "https://example.com",
		Source:      source,
		PostedAt:    timePtr(time.Now().Add(-2 * time.Hour)),
		Languages:   []string{"english"},
	}
}

func profileFor(cities ...string) model.SubscriberProfile {
	return model.SubscriberProfile{
		ID:           "sub-1",
		TargetCities: cities,
		Tier:         model.TierPremium,
	}
}

func TestShortlist_ExactTierWhenEnoughCityMatches(t *testing.T) {
	e := NewEngine(Options{})
	var jobs []model.CandidateJob
	for i := 0; i < 12; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("Analyst %d", i), fmt.Sprintf("Co%d", i), "Paris", "France", fmt.Sprintf("src%d", i)))
	}
	jobs = append(jobs, baseJob("Analyst X", "CoX", "Lyon", "France", "srcX"))

	shortlist, level := e.Shortlist(jobs, profileFor("Paris"))
	if level != model.MatchExact {
		t.Fatalf("level = %s, want exact", level)
	}
	for _, s := range shortlist {
		if s.City != "Paris" {
			t.Errorf("exact tier leaked non-target city %q", s.City)
		}
	}
}

func TestShortlist_FallsBackToNearby(t *testing.T) {
	e := NewEngine(Options{})
	var jobs []model.CandidateJob
	// 3 exact matches: below the exact threshold of 10.
	for i := 0; i < 3; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("PM %d", i), fmt.Sprintf("Exact%d", i), "Munich", "Germany", "a"))
	}
	// 40 same-region matches.
	for i := 0; i < 40; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("PM near %d", i), fmt.Sprintf("Near%d", i), "Berlin", "Germany", fmt.Sprintf("s%d", i%20)))
	}
	// Out-of-region noise that must not survive the nearby tier.
	jobs = append(jobs, baseJob("PM far", "FarCo", "Tokyo", "Japan", "z"))

	shortlist, level := e.Shortlist(jobs, profileFor("Munich"))
	if level != model.MatchNearby {
		t.Fatalf("level = %s, want nearby", level)
	}
	if len(shortlist) != 43 {
		t.Errorf("shortlist size = %d, want 43 (3 exact + 40 nearby)", len(shortlist))
	}
	for _, s := range shortlist {
		if s.Country != "Germany" {
			t.Errorf("nearby tier leaked %q", s.Country)
		}
	}
}

func TestShortlist_BroadFallback(t *testing.T) {
	e := NewEngine(Options{BroadLimit: 5})
	var jobs []model.CandidateJob
	for i := 0; i < 8; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("Role %d", i), fmt.Sprintf("Co%d", i), "Osaka", "Japan", fmt.Sprintf("s%d", i)))
	}

	shortlist, level := e.Shortlist(jobs, profileFor("Paris"))
	if level != model.MatchBroad {
		t.Fatalf("level = %s, want broad", level)
	}
	if len(shortlist) != 5 {
		t.Errorf("broad tier should take the first %d of the pool, got %d", 5, len(shortlist))
	}
}

func TestShortlist_NoTargetCitiesIsBroad(t *testing.T) {
	e := NewEngine(Options{})
	jobs := []model.CandidateJob{baseJob("Dev", "Acme", "Paris", "France", "a")}

	_, level := e.Shortlist(jobs, profileFor())
	if level != model.MatchBroad {
		t.Errorf("level = %s, want broad for empty target cities", level)
	}
}

func TestShortlist_BlankTargetCitiesFallThrough(t *testing.T) {
	e := NewEngine(Options{})
	jobs := []model.CandidateJob{baseJob("Dev", "Acme", "Paris", "France", "a")}

	// Blank entries can arrive straight from the profile API; they must be
	// ignored in every tier, not just the exact one.
	shortlist, level := e.Shortlist(jobs, profileFor("", "   "))
	if level != model.MatchBroad {
		t.Errorf("level = %s, want broad for blank target cities", level)
	}
	if len(shortlist) != 1 {
		t.Errorf("shortlist size = %d, want 1", len(shortlist))
	}
}

func TestShortlist_LanguageFilter(t *testing.T) {
	e := NewEngine(Options{})
	german := baseJob("Bürokaufmann", "DeCo", "Paris", "France", "a")
	german.Languages = []string{"german"}
	english := baseJob("Analyst", "EnCo", "Paris", "France", "b")

	profile := profileFor("Paris")
	profile.Languages = []string{"English"}

	shortlist, _ := e.Shortlist([]model.CandidateJob{german, english}, profile)
	if len(shortlist) != 1 || shortlist[0].Company != "EnCo" {
		t.Errorf("language filter should keep only the english posting, got %+v", shortlist)
	}

	// No spoken languages: filter is skipped entirely.
	shortlist, _ = e.Shortlist([]model.CandidateJob{german, english}, profileFor("Paris"))
	if len(shortlist) != 2 {
		t.Errorf("empty profile languages should skip the filter, got %d jobs", len(shortlist))
	}
}

func TestShortlist_QualityFilterDropsMalformed(t *testing.T) {
	e := NewEngine(Options{})
	missing := baseJob("Dev", "Acme", "Paris", "France", "a")
	missing.Description = ""
	ok := baseJob("Dev Two", "Acme", "Paris", "France", "a")

	shortlist, _ := e.Shortlist([]model.CandidateJob{missing, ok}, profileFor("Paris"))
	if len(shortlist) != 1 || shortlist[0].Title != "Dev Two" {
		t.Errorf("malformed candidate should be dropped silently, got %+v", shortlist)
	}
}

func TestShortlist_FreeTierDropsStalePostings(t *testing.T) {
	e := NewEngine(Options{})
	stale := baseJob("Dev", "Acme", "Paris", "France", "a")
	stale.PostedAt = timePtr(time.Now().Add(-45 * 24 * time.Hour))
	fresh := baseJob("Dev Two", "Acme", "Paris", "France", "a")

	freeProfile := profileFor("Paris")
	freeProfile.Tier = model.TierFree

	shortlist, _ := e.Shortlist([]model.CandidateJob{stale, fresh}, freeProfile)
	if len(shortlist) != 1 || shortlist[0].Title != "Dev Two" {
		t.Errorf("free tier should drop postings older than 30 days, got %+v", shortlist)
	}

	// Premium keeps both.
	shortlist, _ = e.Shortlist([]model.CandidateJob{stale, fresh}, profileFor("Paris"))
	if len(shortlist) != 2 {
		t.Errorf("premium tier should keep stale postings, got %d", len(shortlist))
	}
}

func TestShortlist_ExperienceGroups(t *testing.T) {
	tests := []struct {
		preference string
		signal     string
		want       bool
	}{
		{ExpEntry, ExpJunior, true},
		{ExpEntry, ExpGraduate, true},
		{ExpEntry, ExpSenior, false},
		{ExpSenior, ExpLead, true},
		{ExpSenior, ExpPrincipal, true},
		{ExpSenior, ExpEntry, false},
		{ExpMid, ExpMid, true},
		{ExpMid, ExpSenior, false},
		{"", ExpSenior, true},
		{ExpEntry, "", true},
	}
	for _, tt := range tests {
		got := experienceCompatible(tt.preference, tt.signal)
		if got != tt.want {
			t.Errorf("experienceCompatible(%q, %q) = %v, want %v", tt.preference, tt.signal, got, tt.want)
		}
	}
}

func TestShortlist_ScoringBounds(t *testing.T) {
	e := NewEngine(Options{ReputableEmployers: []string{"Acme"}})

	// Everything stacked: exact city, ultra-fresh, reputable, experience
	// match, several keywords. Unclamped sum exceeds 100.
	j := baseJob("Senior Strategy Lead", "Acme", "Paris", "France", "a")
	j.ExperienceLevel = ExpSenior
	j.Description = "strategy consulting luxury analytics leadership role"
	profile := profileFor("Paris")
	profile.ExperienceLevel = ExpSenior
	profile.Keywords = []string{"strategy", "consulting", "luxury", "analytics", "leadership"}

	// Pad to reach the exact threshold.
	jobs := []model.CandidateJob{j}
	for i := 0; i < 10; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("Filler %d", i), fmt.Sprintf("F%d", i), "Paris", "France", fmt.Sprintf("f%d", i)))
	}

	shortlist, level := e.Shortlist(jobs, profile)
	if level != model.MatchExact {
		t.Fatalf("level = %s, want exact", level)
	}
	top := shortlist[0]
	if top.Company != "Acme" {
		t.Fatalf("expected the stacked job to rank first, got %+v", top)
	}
	if top.Score != 100 {
		t.Errorf("score = %d, want clamped 100", top.Score)
	}
	for _, s := range shortlist {
		if s.Score < 50 || s.Score > 100 {
			t.Errorf("score %d for %q outside [50, 100]", s.Score, s.Title)
		}
	}
}

func TestShortlist_DiversityCap(t *testing.T) {
	e := NewEngine(Options{})
	var jobs []model.CandidateJob
	// 10 jobs from source A, all ultra-fresh (highest scores).
	for i := 0; i < 10; i++ {
		j := baseJob(fmt.Sprintf("Top %d", i), fmt.Sprintf("A%d", i), "Paris", "France", "A")
		jobs = append(jobs, j)
	}
	// Lower-scoring jobs from other sources (stale, so no freshness bonus).
	for i := 0; i < 5; i++ {
		j := baseJob(fmt.Sprintf("Other %d", i), fmt.Sprintf("B%d", i), "Paris", "France", fmt.Sprintf("B%d", i))
		j.PostedAt = timePtr(time.Now().Add(-10 * 24 * time.Hour))
		jobs = append(jobs, j)
	}

	shortlist, _ := e.Shortlist(jobs, profileFor("Paris"))

	fromA := 0
	for _, s := range shortlist {
		if s.Source == "A" {
			fromA++
		}
	}
	if fromA != 3 {
		t.Errorf("jobs from source A = %d, want 3 (diversity cap)", fromA)
	}
	if len(shortlist) != 8 {
		t.Errorf("shortlist = %d, want 8 (3 from A + 5 backfilled)", len(shortlist))
	}
}

func TestShortlist_TotalCap(t *testing.T) {
	e := NewEngine(Options{MaxTotal: 4, MaxPerSource: 2})
	var jobs []model.CandidateJob
	for i := 0; i < 20; i++ {
		jobs = append(jobs, baseJob(fmt.Sprintf("R%d", i), fmt.Sprintf("C%d", i), "Paris", "France", fmt.Sprintf("s%d", i)))
	}

	shortlist, _ := e.Shortlist(jobs, profileFor("Paris"))
	if len(shortlist) != 4 {
		t.Errorf("shortlist = %d, want capped 4", len(shortlist))
	}
}
