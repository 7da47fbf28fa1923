// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"goreview/internal/app"
	"goreview/internal/domain"
)

// Enricher is the slice of the enrichment service the handlers need.
type Enricher interface {
	Enrich(ctx context.Context, req app.EnrichRequest) (app.EnrichmentView, error)
}

type Handlers struct{ E Enricher }

type enrichmentResponse struct {
	Success           bool                   `json:"success"`
	Cached            bool                   `json:"cached"`
	Rating            *float64               `json:"rating"`
	Reviews           *int64                 `json:"reviews"`
	LastUpdated       string                 `json:"lastUpdated"`
	ReviewDataUpdated string                 `json:"reviewDataUpdated,omitempty"`
	BusinessDetails   domain.BusinessDetails `json:"businessDetails"`
	PopularTimes      json.RawMessage        `json:"popularTimes"`
	UserReviews       []domain.Review        `json:"userReviews"`
	RatingSummary     json.RawMessage        `json:"ratingSummary"`
	Competitors       []domain.Competitor    `json:"competitors"`
	TimeSpent         json.RawMessage        `json:"timeSpent"`
	Extensions        json.RawMessage        `json:"extensions"`
}

type errorResponse struct {
	Error         string   `json:"error"`
	Details       string   `json:"details,omitempty"`
	CachedRating  *float64 `json:"cachedRating,omitempty"`
	CachedReviews *int64   `json:"cachedReviews,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/enrichment", h.getEnrichment)
}

// param reads a query parameter under its camelCase or snake_case name.
func param(r *http.Request, names ...string) string {
	q := r.URL.Query()
	for _, n := range names {
		if v := strings.TrimSpace(q.Get(n)); v != "" {
			return v
		}
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		// Log but don't fail the whole response; return empty ETag and best-effort body.
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func toResponse(v app.EnrichmentView) enrichmentResponse {
	d := v.BusinessDetails
	reviews := v.UserReviews
	if reviews == nil {
		reviews = []domain.Review{}
	}
	competitors := d.Competitors
	if competitors == nil {
		competitors = []domain.Competitor{}
	}
	return enrichmentResponse{
		Success:           true,
		Cached:            v.Cached,
		Rating:            v.Rating,
		Reviews:           v.Reviews,
		LastUpdated:       v.LastUpdated,
		ReviewDataUpdated: v.ReviewDataUpdated,
		BusinessDetails:   d,
		PopularTimes:      nullIfEmpty(d.PopularTimes),
		UserReviews:       reviews,
		RatingSummary:     nullIfEmpty(d.RatingSummary),
		Competitors:       competitors,
		TimeSpent:         nullIfEmpty(d.TimeSpent),
		Extensions:        nullIfEmpty(d.Extensions),
	}
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}

func (h *Handlers) getEnrichment(w http.ResponseWriter, r *http.Request) {
	req := app.EnrichRequest{
		AccountID:  param(r, "accountId", "account_id"),
		BusinessID: param(r, "businessId", "business_id"),
	}

	view, err := h.E.Enrich(r.Context(), req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	etag, body := calcETagAndBody(toResponse(view))
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write enrichment body")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req app.EnrichRequest, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:         ve.Message,
			CachedRating:  ve.CachedRating,
			CachedReviews: ve.CachedReviews,
		})
		return
	}

	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		log.Error().Err(err).Str("account_id", req.AccountID).Int("upstream_status", ue.Code).Msg("enrichment failed upstream")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Serp API error: " + ue.Message,
			Details: ue.Detail,
		})
		return
	}

	log.Error().Err(err).Str("account_id", req.AccountID).Msg("enrichment failed")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error", Details: err.Error()})
}
