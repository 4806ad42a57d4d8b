package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobletter/jobletter/internal/model"
)

const adzunaDefaultBaseURL = "https://api.adzuna.com/v1/api/jobs"

const adzunaPageSize = 50

// adzunaResponse mirrors the top-level Adzuna JSON response.
type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

// adzunaResult mirrors a single Adzuna job listing.
type adzunaResult struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Company     adzunaCompany  `json:"company"`
	Location    adzunaLocation `json:"location"`
	Category    adzunaCategory `json:"category"`
	RedirectURL string         `json:"redirect_url"`
	Created     string         `json:"created"`
}

type adzunaCompany struct {
	DisplayName string `json:"display_name"`
}

type adzunaLocation struct {
	DisplayName string   `json:"display_name"`
	Area        []string `json:"area"` // country first, city last
}

type adzunaCategory struct {
	Label string `json:"label"`
}

// AdzunaAdapter searches the Adzuna public jobs API.
type AdzunaAdapter struct {
	appID   string
	appKey  string
	country string // lowercase ISO code in the URL path, e.g. "fr"
	baseURL string
	client  *http.Client
}

// NewAdzunaAdapter creates an adapter with the given API credentials.
func NewAdzunaAdapter(appID, appKey, country string, client *http.Client) *AdzunaAdapter {
	return &AdzunaAdapter{
		appID:   appID,
		appKey:  appKey,
		country: country,
		baseURL: adzunaDefaultBaseURL,
		client:  client,
	}
}

func (a *AdzunaAdapter) Name() string { return "adzuna" }

// Search runs one query × location search against the first results page and
// normalizes every hit into a CandidateJob.
func (a *AdzunaAdapter) Search(ctx context.Context, query, location string) ([]model.CandidateJob, error) {
	endpoint := fmt.Sprintf("%s/%s/search/1", a.baseURL, a.country)

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	params.Set("where", location)
	params.Set("sort_by", "date")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("adzuna search %q@%q: %w", query, location, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adzuna search %q@%q: %w", query, location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("adzuna search %q@%q: unexpected status %d", query, location, resp.StatusCode),
		}
	}

	var ar adzunaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("adzuna search %q@%q: %w", query, location, err)
	}

	jobs := make([]model.CandidateJob, 0, len(ar.Results))
	for _, r := range ar.Results {
		job := model.CandidateJob{
			Title:       r.Title,
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: extractText(r.Description),
			URL:         r.RedirectURL,
			Source:      a.Name(),
			CareerPath:  r.Category.Label, // raw label, canonicalized by the engine
		}

		// Adzuna's area array runs country-first, city-last.
		if n := len(r.Location.Area); n > 0 {
			job.Country = r.Location.Area[0]
			job.City = r.Location.Area[n-1]
		} else {
			job.City, job.Country = splitLocation(r.Location.DisplayName)
		}

		if r.Created != "" {
			if t, err := time.Parse(time.RFC3339, r.Created); err == nil {
				job.PostedAt = &t
			}
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
