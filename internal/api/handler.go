package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jobletter/jobletter/internal/model"
)

// Handler translates HTTP requests into Service calls.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler creates a Handler over the service.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Router builds the versioned route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/jobs", h.RecentJobs).Methods("GET")
	v1.HandleFunc("/shortlist/{subscriberID}", h.Shortlist).Methods("GET")
	v1.HandleFunc("/profiles", h.ListProfiles).Methods("GET")
	v1.HandleFunc("/profiles/{subscriberID}", h.GetProfile).Methods("GET")
	v1.HandleFunc("/profiles/{subscriberID}", h.SaveProfile).Methods("PUT")
	return r
}

// jobPayload is the wire shape of a candidate job.
type jobPayload struct {
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        string     `json:"location"`
	City            string     `json:"city,omitempty"`
	Country         string     `json:"country,omitempty"`
	URL             string     `json:"url"`
	Source          string     `json:"source"`
	CareerPath      string     `json:"career_path,omitempty"`
	ExperienceLevel string     `json:"experience_level,omitempty"`
	Languages       []string   `json:"languages,omitempty"`
	PostedAt        *time.Time `json:"posted_at,omitempty"`
	FirstSeen       time.Time  `json:"first_seen"`
	Score           int        `json:"score,omitempty"`
}

// profilePayload is the wire shape of a subscriber profile.
type profilePayload struct {
	ID              string   `json:"id"`
	TargetCities    []string `json:"target_cities,omitempty"`
	Languages       []string `json:"languages,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	Tier            string   `json:"tier"`
	CareerPath      string   `json:"career_path,omitempty"`
}

func toJobPayload(j model.CandidateJob, score int) jobPayload {
	return jobPayload{
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		City:            j.City,
		Country:         j.Country,
		URL:             j.URL,
		Source:          j.Source,
		CareerPath:      j.CareerPath,
		ExperienceLevel: j.ExperienceLevel,
		Languages:       j.Languages,
		PostedAt:        j.PostedAt,
		FirstSeen:       j.FirstSeen,
		Score:           score,
	}
}

func toProfilePayload(p model.SubscriberProfile) profilePayload {
	return profilePayload{
		ID:              p.ID,
		TargetCities:    p.TargetCities,
		Languages:       p.Languages,
		ExperienceLevel: p.ExperienceLevel,
		Keywords:        p.Keywords,
		Tier:            string(p.Tier),
		CareerPath:      p.CareerPath,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RecentJobs returns the raw candidate pool. The optional window query
// parameter narrows how far back the pool reaches, e.g. ?window=24h.
func (h *Handler) RecentJobs(w http.ResponseWriter, r *http.Request) {
	var window time.Duration
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			http.Error(w, "invalid window", http.StatusBadRequest)
			return
		}
		window = d
	}
	jobs, err := h.service.RecentJobs(r.Context(), window)
	if err != nil {
		h.logger.Error("listing recent jobs", "error", err)
		http.Error(w, "failed to load jobs", http.StatusInternalServerError)
		return
	}
	out := make([]jobPayload, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, toJobPayload(j, 0))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "jobs": out})
}

// Shortlist returns the matched, scored shortlist for one subscriber.
func (h *Handler) Shortlist(w http.ResponseWriter, r *http.Request) {
	subscriberID := mux.Vars(r)["subscriberID"]
	shortlist, level, err := h.service.Shortlist(r.Context(), subscriberID)
	if errors.Is(err, model.ErrProfileNotFound) {
		http.Error(w, "subscriber not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("building shortlist", "subscriber", subscriberID, "error", err)
		http.Error(w, "failed to build shortlist", http.StatusInternalServerError)
		return
	}
	out := make([]jobPayload, 0, len(shortlist))
	for _, s := range shortlist {
		out = append(out, toJobPayload(s.CandidateJob, s.Score))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"subscriber_id": subscriberID,
		"match_level":   string(level),
		"count":         len(out),
		"jobs":          out,
	})
}

// GetProfile returns one subscriber profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	subscriberID := mux.Vars(r)["subscriberID"]
	p, err := h.service.GetProfile(r.Context(), subscriberID)
	if errors.Is(err, model.ErrProfileNotFound) {
		http.Error(w, "subscriber not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("loading profile", "subscriber", subscriberID, "error", err)
		http.Error(w, "failed to load profile", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfilePayload(p))
}

// SaveProfile upserts the subscriber profile at the URL.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	subscriberID := mux.Vars(r)["subscriberID"]
	var input profilePayload
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if input.Tier == "" {
		input.Tier = string(model.TierFree)
	}
	p := model.SubscriberProfile{
		ID:              subscriberID,
		TargetCities:    input.TargetCities,
		Languages:       input.Languages,
		ExperienceLevel: input.ExperienceLevel,
		Keywords:        input.Keywords,
		Tier:            model.SubscriptionTier(input.Tier),
		CareerPath:      input.CareerPath,
	}
	if err := h.service.SaveProfile(r.Context(), p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, toProfilePayload(p))
}

// ListProfiles returns every stored profile.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.service.ListProfiles(r.Context())
	if err != nil {
		h.logger.Error("listing profiles", "error", err)
		http.Error(w, "failed to list profiles", http.StatusInternalServerError)
		return
	}
	out := make([]profilePayload, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfilePayload(p))
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}
