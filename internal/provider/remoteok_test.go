package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteOKSearch_SkipsMetadataAndFiltersQuery(t *testing.T) {
	payload := `[
		{"legal": "API terms"},
		{
			"id": "101",
			"slug": "data-analyst-acme",
			"company": "Acme",
			"position": "Data Analyst",
			"tags": ["data", "sql"],
			"description": "<b>Analyze</b> things",
			"location": "Amsterdam, Netherlands",
			"url": "",
			"date": "2026-08-23T10:00:00Z"
		},
		{
			"id": "102",
			"slug": "chef-remote",
			"company": "Kitchenly",
			"position": "Head Chef",
			"tags": ["cooking"],
			"location": "Remote"
		}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	a := NewRemoteOKAdapter(srv.Client())
	a.baseURL = srv.URL

	jobs, err := a.Search(context.Background(), "data", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job matching query, got %d", len(jobs))
	}

	j := jobs[0]
	if j.Title != "Data Analyst" || j.Company != "Acme" {
		t.Errorf("unexpected job: %+v", j)
	}
	if j.URL != "https://remoteok.com/remote-jobs/data-analyst-acme" {
		t.Errorf("empty url should fall back to slug link, got %q", j.URL)
	}
	if j.Description != "Analyze things" {
		t.Errorf("description not cleaned: %q", j.Description)
	}
	if j.CareerPath != "data" {
		t.Errorf("career path hint = %q, want first tag", j.CareerPath)
	}
}
