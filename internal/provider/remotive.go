package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

const remotiveDefaultBaseURL = "https://remotive.com/api/remote-jobs"

// remotiveResponse mirrors the Remotive API response.
type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

// remotiveJob mirrors a single Remotive listing.
type remotiveJob struct {
	ID                        int    `json:"id"`
	URL                       string `json:"url"`
	Title                     string `json:"title"`
	CompanyName               string `json:"company_name"`
	Category                  string `json:"category"`
	PublicationDate           string `json:"publication_date"`
	CandidateRequiredLocation string `json:"candidate_required_location"`
	Description               string `json:"description"`
}

// remotiveDateFormats covers the timestamp shapes Remotive has been seen to
// return.
var remotiveDateFormats = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// RemotiveAdapter searches the Remotive remote-jobs API. Remotive only
// supports a search term; the location argument is matched client-side
// against candidate_required_location.
type RemotiveAdapter struct {
	baseURL string
	client  *http.Client
}

// NewRemotiveAdapter creates a Remotive adapter.
func NewRemotiveAdapter(client *http.Client) *RemotiveAdapter {
	return &RemotiveAdapter{baseURL: remotiveDefaultBaseURL, client: client}
}

func (a *RemotiveAdapter) Name() string { return "remotive" }

func (a *RemotiveAdapter) Search(ctx context.Context, query, location string) ([]model.CandidateJob, error) {
	params := url.Values{}
	params.Set("search", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("remotive search %q: %w", query, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remotive search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("remotive search %q: unexpected status %d", query, resp.StatusCode),
		}
	}

	var rr remotiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("remotive search %q: %w", query, err)
	}

	var jobs []model.CandidateJob
	for _, rj := range rr.Jobs {
		loc := rj.CandidateRequiredLocation
		if loc == "" {
			loc = "Remote"
		}
		// Client-side location narrowing, since the API has no where-param.
		if location != "" && !strings.Contains(strings.ToLower(loc), strings.ToLower(location)) {
			continue
		}

		job := model.CandidateJob{
			Title:       rj.Title,
			Company:     rj.CompanyName,
			Location:    loc,
			Description: extractText(rj.Description),
			URL:         rj.URL,
			Source:      a.Name(),
			CareerPath:  rj.Category,
		}
		job.City, job.Country = splitLocation(loc)

		for _, format := range remotiveDateFormats {
			if t, err := time.Parse(format, rj.PublicationDate); err == nil {
				job.PostedAt = &t
				break
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
