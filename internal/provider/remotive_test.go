package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemotiveSearch_FiltersByLocationClientSide(t *testing.T) {
	payload := `{
		"jobs": [
			{
				"id": 1,
				"url": "https://remotive.example/1",
				"title": "Marketing Manager",
				"company_name": "Shoply",
				"category": "Marketing",
				"publication_date": "2026-08-21T08:30:00",
				"candidate_required_location": "Berlin, Germany",
				"description": "&lt;p&gt;Own our brand channels.&lt;/p&gt;"
			},
			{
				"id": 2,
				"url": "https://remotive.example/2",
				"title": "Marketing Associate",
				"company_name": "Farly",
				"category": "Marketing",
				"publication_date": "2026-08-22",
				"candidate_required_location": "USA"
			}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") != "marketing" {
			t.Errorf("search = %q, want marketing", r.URL.Query().Get("search"))
		}
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewRemotiveAdapter(srv.Client())
	a.baseURL = srv.URL

	jobs, err := a.Search(context.Background(), "marketing", "Germany")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job after location narrowing, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Company != "Shoply" {
		t.Errorf("company = %q, want Shoply", j.Company)
	}
	if j.City != "Berlin" || j.Country != "Germany" {
		t.Errorf("city/country = %q/%q, want Berlin/Germany", j.City, j.Country)
	}
	if j.Description != "Own our brand channels." {
		t.Errorf("double-encoded HTML not cleaned: %q", j.Description)
	}
	if j.PostedAt == nil {
		t.Error("expected PostedAt to be parsed")
	}
}

func TestRemotiveSearch_EmptyLocationKeepsAll(t *testing.T) {
	payload := `{"jobs": [
		{"id": 1, "title": "Analyst", "company_name": "A", "candidate_required_location": ""},
		{"id": 2, "title": "Analyst", "company_name": "B", "candidate_required_location": "Worldwide"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewRemotiveAdapter(srv.Client())
	a.baseURL = srv.URL

	jobs, err := a.Search(context.Background(), "analyst", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Location != "Remote" {
		t.Errorf("empty location should default to Remote, got %q", jobs[0].Location)
	}
}
