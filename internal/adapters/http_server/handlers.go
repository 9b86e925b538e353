package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

const apiVersion = "1.0.0"

type Handlers struct {
	S   *app.ReviewService
	Env string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type pageMeta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

func (s *Server) MountHandlers(h *Handlers) {
	// per-audience rate tiers
	public := RateLimit(rate.Every(15*time.Minute/100), 100)
	manager := RateLimit(rate.Every(15*time.Minute/300), 300)
	sync := RateLimit(rate.Every(time.Hour/10), 10)

	s.mux.Get("/health", h.health)

	s.mux.With(manager).Get("/api/reviews/hostaway", h.listChannelReviews)
	s.mux.With(sync).Post("/api/reviews/sync", h.syncReviews)

	s.mux.With(manager).Get("/api/manager/dashboard", h.dashboard)
	s.mux.With(manager).Post("/api/manager/approve-review", h.approveReview)
	s.mux.With(manager).Delete("/api/manager/approve-review", h.removeApproval)

	s.mux.With(public).Get("/api/public/reviews/{propertyName}", h.publicReviews)
}

// GET /health
func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"version":     apiVersion,
		"environment": h.Env,
		"checks": map[string]any{
			"database":         map[string]string{"status": "healthy"},
			"cache":            map[string]string{"status": "healthy"},
			"externalServices": map[string]string{"status": "healthy"},
		},
	})
}

// GET /api/manager/dashboard
func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	f, err := extractFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p := extractPagination(r)

	res, err := h.S.GetReviews(r.Context(), f, p)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Reviews    []domain.Review  `json:"reviews"`
		Analytics  domain.Analytics `json:"analytics"`
		Pagination pageMeta         `json:"pagination"`
		Filters    domain.Filter    `json:"filters"`
	}{
		Reviews:    res.Reviews,
		Analytics:  res.Analytics,
		Pagination: pageMeta{Total: res.Total, Limit: p.Limit, Offset: p.Offset, HasMore: res.Total > p.Offset+p.Limit},
		Filters:    f,
	}
	writeJSONWithETag(w, r, resp)
}

// GET /api/reviews/hostaway — manager listing grouped per property.
func (h *Handlers) listChannelReviews(w http.ResponseWriter, r *http.Request) {
	f, err := extractFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	p := extractPagination(r)

	res, err := h.S.GetReviews(r.Context(), f, p)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Properties []propertyGroup `json:"properties"`
		AllReviews []domain.Review `json:"allReviews"`
		Summary    struct {
			TotalProperties      int     `json:"totalProperties"`
			TotalReviews         int     `json:"totalReviews"`
			AverageOverallRating float64 `json:"averageOverallRating"`
		} `json:"summary"`
		Meta struct {
			Timestamp  string   `json:"timestamp"`
			Pagination pageMeta `json:"pagination"`
		} `json:"meta"`
	}{
		Properties: groupByProperty(res.Reviews),
		AllReviews: res.Reviews,
	}
	resp.Summary.TotalProperties = len(resp.Properties)
	resp.Summary.TotalReviews = res.Total
	resp.Summary.AverageOverallRating = res.Analytics.AverageRating
	resp.Meta.Timestamp = time.Now().UTC().Format(time.RFC3339)
	resp.Meta.Pagination = pageMeta{Total: res.Total, Limit: p.Limit, Offset: p.Offset, HasMore: res.Total > p.Offset+p.Limit}

	writeJSON(w, http.StatusOK, resp)
}

// POST /api/reviews/sync
func (h *Handlers) syncReviews(w http.ResponseWriter, r *http.Request) {
	res, err := h.S.SyncFromSources(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveSync(res.Synced, len(res.Errors))
	writeJSON(w, http.StatusOK, res)
}

type approvalRequest struct {
	ReviewID string `json:"reviewId"`
}

// POST /api/manager/approve-review
func (h *Handlers) approveReview(w http.ResponseWriter, r *http.Request) {
	var body approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON with reviewId")
		return
	}
	approvedBy := r.Header.Get("X-User-ID")
	if approvedBy == "" {
		approvedBy = "system"
	}

	rv, err := h.S.ApproveReview(r.Context(), body.ReviewID, approvedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"review":  rv,
		"message": "review approved for public display",
	})
}

// DELETE /api/manager/approve-review
func (h *Handlers) removeApproval(w http.ResponseWriter, r *http.Request) {
	var body approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected JSON with reviewId")
		return
	}

	rv, err := h.S.RemoveApproval(r.Context(), body.ReviewID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"review":  rv,
		"message": "review approval removed",
	})
}

// GET /api/public/reviews/{propertyName}
func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	propertyName := chi.URLParam(r, "propertyName")
	p := extractPublicPagination(r)

	res, err := h.S.GetPublicReviews(r.Context(), propertyName, p)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Property   domain.PropertyInfo `json:"property"`
		Reviews    []domain.Review     `json:"reviews"`
		Pagination pageMeta            `json:"pagination"`
	}{
		Property:   res.PropertyInfo,
		Reviews:    res.Reviews,
		Pagination: pageMeta{Total: res.Total, Limit: p.Limit, Offset: p.Offset, HasMore: res.Total > p.Offset+p.Limit},
	}
	writeJSONWithETag(w, r, resp)
}

// ---- query parameter extraction ----

func extractFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	var f domain.Filter

	if v := q.Get("property"); v != "" {
		f.PropertyName = &v
	}
	if v := q.Get("rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return f, fmt.Errorf("%w: rating must be a number", domain.ErrValidation)
		}
		f.MinRating = &n
	}
	if v := q.Get("category"); v != "" {
		switch v {
		case "cleanliness", "communication", "respect_house_rules":
			f.Category = &v
		default:
			return f, fmt.Errorf("%w: unknown category", domain.ErrValidation)
		}
	}
	if v := q.Get("channel"); v != "" {
		switch ch := domain.Channel(v); ch {
		case domain.ChannelHostaway, domain.ChannelGoogle, domain.ChannelAirbnb:
			f.Channel = &ch
		default:
			return f, fmt.Errorf("%w: unknown channel", domain.ErrValidation)
		}
	}
	if v := q.Get("approved"); v != "" {
		approved := v == "true"
		f.IsApprovedForPublic = &approved
	}
	if v := q.Get("timeFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("%w: timeFrom must be RFC3339", domain.ErrValidation)
		}
		f.TimeFrom = &t
	}
	if v := q.Get("timeTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("%w: timeTo must be RFC3339", domain.ErrValidation)
		}
		f.TimeTo = &t
	}
	return f, nil
}

// extractPagination defaults to one page of 50, newest first, and clamps
// limit to 100. Unparseable numbers degrade to the defaults; invalid sort
// values pass through for the service to reject.
func extractPagination(r *http.Request) domain.Pagination {
	q := r.URL.Query()
	p := domain.DefaultPagination()

	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = n
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		p.Offset = n
	}
	if v := q.Get("sortBy"); v != "" {
		p.SortBy = v
	}
	if v := q.Get("sortOrder"); v != "" {
		p.SortOrder = v
	}
	return p
}

// extractPublicPagination leaves zero values for the service to fill with
// the public defaults.
func extractPublicPagination(r *http.Request) domain.Pagination {
	q := r.URL.Query()
	var p domain.Pagination

	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		p.Limit = n
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		p.Offset = n
	}
	p.SortBy = q.Get("sortBy")
	p.SortOrder = q.Get("sortOrder")
	return p
}

// ---- response helpers ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeJSONWithETag marshals once, hashes once, and short-circuits with 304
// when the client already holds this version.
func writeJSONWithETag(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response for ETag failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "unexpected error")
		return
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`

	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

// ---- grouping for the channel listing ----

type propertyGroup struct {
	PropertyName  string          `json:"propertyName"`
	AverageRating float64         `json:"averageRating"`
	TotalReviews  int             `json:"totalReviews"`
	Reviews       []domain.Review `json:"reviews"`
}

// groupByProperty buckets reviews per property in first-seen order.
// Zero-rated reviews count toward totals but not the average.
func groupByProperty(reviews []domain.Review) []propertyGroup {
	index := make(map[string]int)
	groups := make([]propertyGroup, 0)
	for _, rv := range reviews {
		i, ok := index[rv.PropertyName]
		if !ok {
			i = len(groups)
			index[rv.PropertyName] = i
			groups = append(groups, propertyGroup{PropertyName: rv.PropertyName})
		}
		groups[i].Reviews = append(groups[i].Reviews, rv)
		groups[i].TotalReviews++
	}
	for i := range groups {
		var sum float64
		var rated int
		for _, rv := range groups[i].Reviews {
			if rv.OverallRating > 0 {
				sum += rv.OverallRating
				rated++
			}
		}
		if rated > 0 {
			groups[i].AverageRating = sum / float64(rated)
		}
	}
	return groups
}
