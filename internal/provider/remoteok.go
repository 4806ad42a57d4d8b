package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

const remoteokDefaultBaseURL = "https://remoteok.com/api"

// remoteokJob mirrors a single RemoteOK listing. The API's first array
// element is a legal notice with an empty id and is skipped.
type remoteokJob struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	Tags        []string  `json:"tags"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	URL         string    `json:"url"`
	Date        time.Time `json:"date"`
}

// RemoteOKAdapter searches the RemoteOK API. The feed is not searchable
// server-side, so query and location are matched client-side against the
// position/tags and the location field.
type RemoteOKAdapter struct {
	baseURL string
	client  *http.Client
}

// NewRemoteOKAdapter creates a RemoteOK adapter.
func NewRemoteOKAdapter(client *http.Client) *RemoteOKAdapter {
	return &RemoteOKAdapter{baseURL: remoteokDefaultBaseURL, client: client}
}

func (a *RemoteOKAdapter) Name() string { return "remoteok" }

func (a *RemoteOKAdapter) Search(ctx context.Context, query, location string) ([]model.CandidateJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok search %q: %w", query, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok search %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("remoteok search %q: unexpected status %d", query, resp.StatusCode),
		}
	}

	var raw []remoteokJob
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("remoteok search %q: %w", query, err)
	}

	var jobs []model.CandidateJob
	for _, rj := range raw {
		if rj.ID == "" {
			continue // leading metadata element
		}
		if query != "" && !remoteokMatches(rj, query) {
			continue
		}
		loc := rj.Location
		if loc == "" {
			loc = "Remote"
		}
		if location != "" && !strings.Contains(strings.ToLower(loc), strings.ToLower(location)) {
			continue
		}

		job := model.CandidateJob{
			Title:       rj.Position,
			Company:     rj.Company,
			Location:    loc,
			Description: extractText(rj.Description),
			URL:         rj.URL,
			Source:      a.Name(),
		}
		job.City, job.Country = splitLocation(loc)
		if len(rj.Tags) > 0 {
			job.CareerPath = rj.Tags[0]
		}
		if job.URL == "" {
			job.URL = fmt.Sprintf("https://remoteok.com/remote-jobs/%s", rj.Slug)
		}
		if !rj.Date.IsZero() {
			d := rj.Date
			job.PostedAt = &d
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}

// remoteokMatches checks the query against position and tags,
// case-insensitively.
func remoteokMatches(rj remoteokJob, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(rj.Position), q) {
		return true
	}
	for _, tag := range rj.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
