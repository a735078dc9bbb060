package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"rovia/internal/adapters/observability"
	"rovia/internal/app"
	"rovia/internal/domain"
)

type Handlers struct {
	Sub *app.SubmissionService
	Rev *app.ReviewService
	Q   *app.QueryService

	JWTSecret   []byte
	SubmitRPS   rate.Limit // defaults to 1/s
	SubmitBurst int        // defaults to 5
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	rps := h.SubmitRPS
	if rps == 0 {
		rps = 1
	}
	burst := h.SubmitBurst
	if burst == 0 {
		burst = 5
	}
	submitLimit := SubmitLimit(rps, burst)
	auth := Authenticator(h.JWTSecret)

	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/promoter", func(r chi.Router) {
		r.Use(auth)

		// any authenticated user may apply and follow their applications
		r.With(submitLimit).Post("/applications", h.submitApplication)
		r.Get("/applications", h.listOwnApplications)
		r.Get("/applications/latest", h.latestOwnApplication)

		r.Group(func(pr chi.Router) {
			pr.Use(RequireRole(domain.RolePromoter))
			pr.With(submitLimit).Post("/suggestions", h.submitSuggestion)
			pr.Get("/suggestions", h.listOwnSuggestions)
			pr.Get("/dashboard", h.promoterDashboard)
			pr.Get("/attractions", h.ownedAttractions)
		})
	})

	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(auth, RequireRole(domain.RoleAdministrator))
		r.Get("/applications", h.listApplications)
		r.Post("/applications/{id}/approve", h.decideApplication(true))
		r.Post("/applications/{id}/reject", h.decideApplication(false))
		r.Get("/suggestions", h.listSuggestions)
		r.Post("/suggestions/{id}/approve", h.decideSuggestion(true))
		r.Post("/suggestions/{id}/reject", h.decideSuggestion(false))
		r.Get("/dashboard", h.adminDashboard)
	})
}

// ---- JSON plumbing ----

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeWorkflowError maps the domain error taxonomy onto HTTP. State errors
// are caller-visible facts, never retried; validation errors ask the caller
// to correct input.
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrDuplicatePending):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, domain.ErrAlreadyElevated),
		errors.Is(err, domain.ErrNotAPromoter):
		writeProblem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, domain.ErrMissingTarget),
		errors.Is(err, domain.ErrMissingNewAttractionFields),
		errors.Is(err, domain.ErrTargetNotFound),
		errors.Is(err, domain.ErrIncompleteNewAttractionData):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Msg("workflow request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON body failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return false
	}
	return true
}

func caller(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	id, ok := CallerFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "no identity")
	}
	return id, ok
}

func statusFilter(w http.ResponseWriter, r *http.Request) (*domain.Status, bool) {
	raw := r.URL.Query().Get("status")
	if raw == "" {
		return nil, true
	}
	st, err := domain.ParseStatus(raw)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid status", err.Error())
		return nil, false
	}
	return &st, true
}

// ---- DTOs ----

type applicationRequest struct {
	CompanyName    string `json:"companyName"`
	CompanyWebsite string `json:"companyWebsite"`
	ContactEmail   string `json:"contactEmail"`
	Motivation     string `json:"motivation"`
}

type suggestionRequest struct {
	AttractionID         *int64   `json:"attractionId"`
	CreatesNewAttraction bool     `json:"createsNewAttraction"`
	Title                string   `json:"title"`
	Details              string   `json:"details"`
	ProposedName         string   `json:"proposedName"`
	ProposedDescription  string   `json:"proposedDescription"`
	ProposedRegion       string   `json:"proposedRegion"`
	ProposedType         *string  `json:"proposedType"`
	ProposedLatitude     *float64 `json:"proposedLatitude"`
	ProposedLongitude    *float64 `json:"proposedLongitude"`
	ProposedImageURL     string   `json:"proposedImageUrl"`
}

type decisionRequest struct {
	Notes string `json:"notes"`
}

type applicationResponse struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"userId"`
	CompanyName      string     `json:"companyName"`
	CompanyWebsite   string     `json:"companyWebsite"`
	ContactEmail     string     `json:"contactEmail"`
	Motivation       string     `json:"motivation"`
	Status           string     `json:"status"`
	SubmittedAt      time.Time  `json:"submittedAt"`
	ReviewedAt       *time.Time `json:"reviewedAt,omitempty"`
	ReviewedByUserID *int64     `json:"reviewedByUserId,omitempty"`
	AdminNotes       string     `json:"adminNotes"`
}

func toApplicationResponse(a domain.PromoterApplication) applicationResponse {
	return applicationResponse{
		ID:               a.ID,
		UserID:           a.UserID,
		CompanyName:      a.CompanyName,
		CompanyWebsite:   a.CompanyWebsite,
		ContactEmail:     a.ContactEmail,
		Motivation:       a.Motivation,
		Status:           a.Status.String(),
		SubmittedAt:      a.SubmittedAt,
		ReviewedAt:       a.ReviewedAt,
		ReviewedByUserID: a.ReviewedByUserID,
		AdminNotes:       a.AdminNotes,
	}
}

func toApplicationResponses(as []domain.PromoterApplication) []applicationResponse {
	out := make([]applicationResponse, 0, len(as))
	for _, a := range as {
		out = append(out, toApplicationResponse(a))
	}
	return out
}

type attractionResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Type            string    `json:"type"`
	Region          string    `json:"region"`
	ImageURL        string    `json:"imageUrl"`
	Rating          float64   `json:"rating"`
	CreatedByUserID *int64    `json:"createdByUserId,omitempty"`
	IsApproved      bool      `json:"isApproved"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type suggestionResponse struct {
	ID                   int64               `json:"id"`
	PromoterID           int64               `json:"promoterId"`
	PromoterName         string              `json:"promoterName,omitempty"`
	AttractionID         *int64              `json:"attractionId,omitempty"`
	CreatesNewAttraction bool                `json:"createsNewAttraction"`
	Title                string              `json:"title"`
	Details              string              `json:"details"`
	ProposedName         string              `json:"proposedName"`
	ProposedDescription  string              `json:"proposedDescription"`
	ProposedRegion       string              `json:"proposedRegion"`
	ProposedType         *string             `json:"proposedType,omitempty"`
	ProposedLatitude     *float64            `json:"proposedLatitude,omitempty"`
	ProposedLongitude    *float64            `json:"proposedLongitude,omitempty"`
	ProposedImageURL     string              `json:"proposedImageUrl"`
	Status               string              `json:"status"`
	SubmittedAt          time.Time           `json:"submittedAt"`
	ReviewedAt           *time.Time          `json:"reviewedAt,omitempty"`
	ReviewedByUserID     *int64              `json:"reviewedByUserId,omitempty"`
	AdminResponse        string              `json:"adminResponse"`
	Attraction           *attractionResponse `json:"attraction,omitempty"`
}

func toSuggestionResponse(s domain.AttractionSuggestion, promoterName string, a *domain.Attraction) suggestionResponse {
	resp := suggestionResponse{
		ID:                   s.ID,
		PromoterID:           s.PromoterID,
		PromoterName:         promoterName,
		AttractionID:         s.AttractionID,
		CreatesNewAttraction: s.CreatesNewAttraction,
		Title:                s.Title,
		Details:              s.Details,
		ProposedName:         s.ProposedName,
		ProposedDescription:  s.ProposedDescription,
		ProposedRegion:       s.ProposedRegion,
		ProposedLatitude:     s.ProposedLatitude,
		ProposedLongitude:    s.ProposedLongitude,
		ProposedImageURL:     s.ProposedImageURL,
		Status:               s.Status.String(),
		SubmittedAt:          s.SubmittedAt,
		ReviewedAt:           s.ReviewedAt,
		ReviewedByUserID:     s.ReviewedByUserID,
		AdminResponse:        s.AdminResponse,
	}
	if s.ProposedType != nil {
		t := s.ProposedType.String()
		resp.ProposedType = &t
	}
	if a != nil {
		resp.Attraction = &attractionResponse{
			ID:              a.ID,
			Name:            a.Name,
			Description:     a.Description,
			Latitude:        a.Latitude,
			Longitude:       a.Longitude,
			Type:            a.Type.String(),
			Region:          a.Region,
			ImageURL:        a.ImageURL,
			Rating:          a.Rating,
			CreatedByUserID: a.CreatedByUserID,
			IsApproved:      a.IsApproved,
			CreatedAt:       a.CreatedAt,
			UpdatedAt:       a.UpdatedAt,
		}
	}
	return resp
}

func toSuggestionResponses(vs []domain.SuggestionView) []suggestionResponse {
	out := make([]suggestionResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, toSuggestionResponse(v.Suggestion, v.PromoterName, v.Attraction))
	}
	return out
}

// ---- promoter surface ----

func (h *Handlers) submitApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req applicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.Sub.SubmitApplication(r.Context(), id.UserID, domain.ApplicationDraft{
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
		ContactEmail:   req.ContactEmail,
		Motivation:     req.Motivation,
	})
	if err != nil {
		observability.ObserveSubmission("application", "refused")
		writeWorkflowError(w, err)
		return
	}
	observability.ObserveSubmission("application", "accepted")
	writeJSON(w, http.StatusCreated, toApplicationResponse(created))
}

func (h *Handlers) listOwnApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	apps, err := h.Q.ApplicationsForUser(r.Context(), id.UserID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}

func (h *Handlers) latestOwnApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	latest, err := h.Q.LatestApplication(r.Context(), id.UserID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponse(*latest))
}

func (h *Handlers) submitSuggestion(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req suggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	draft := domain.SuggestionDraft{
		AttractionID:         req.AttractionID,
		CreatesNewAttraction: req.CreatesNewAttraction,
		Title:                req.Title,
		Details:              req.Details,
		ProposedName:         req.ProposedName,
		ProposedDescription:  req.ProposedDescription,
		ProposedRegion:       req.ProposedRegion,
		ProposedLatitude:     req.ProposedLatitude,
		ProposedLongitude:    req.ProposedLongitude,
		ProposedImageURL:     req.ProposedImageURL,
	}
	if req.ProposedType != nil {
		t, err := domain.ParseAttractionType(*req.ProposedType)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid type", err.Error())
			return
		}
		draft.ProposedType = &t
	}
	created, err := h.Sub.SubmitSuggestion(r.Context(), id.UserID, draft)
	if err != nil {
		observability.ObserveSubmission("suggestion", "refused")
		writeWorkflowError(w, err)
		return
	}
	observability.ObserveSubmission("suggestion", "accepted")
	writeJSON(w, http.StatusCreated, toSuggestionResponse(created, "", nil))
}

func (h *Handlers) listOwnSuggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	st, ok := statusFilter(w, r)
	if !ok {
		return
	}
	vs, err := h.Q.SuggestionsForPromoter(r.Context(), id.UserID, st)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestionResponses(vs))
}

func (h *Handlers) promoterDashboard(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	d, err := h.Q.PromoterDashboard(r.Context(), id.UserID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	resp := struct {
		LatestApplication   *applicationResponse `json:"latestApplication"`
		PendingSuggestions  int                  `json:"pendingSuggestions"`
		ApprovedSuggestions int                  `json:"approvedSuggestions"`
	}{
		PendingSuggestions:  d.PendingSuggestions,
		ApprovedSuggestions: d.ApprovedSuggestions,
	}
	if d.LatestApplication != nil {
		a := toApplicationResponse(*d.LatestApplication)
		resp.LatestApplication = &a
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) ownedAttractions(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	owned, err := h.Q.OwnedAttractions(r.Context(), id.UserID)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	type ownedResponse struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		Region     string `json:"region"`
		IsApproved bool   `json:"isApproved"`
	}
	out := make([]ownedResponse, 0, len(owned))
	for _, a := range owned {
		out = append(out, ownedResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// ---- admin surface ----

func (h *Handlers) listApplications(w http.ResponseWriter, r *http.Request) {
	st, ok := statusFilter(w, r)
	if !ok {
		return
	}
	apps, err := h.Q.Applications(r.Context(), st)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}

func (h *Handlers) decideApplication(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		applicationID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
			return
		}
		var req decisionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := h.Rev.DecideApplication(r.Context(), applicationID, id.UserID, accept, req.Notes)
		if err != nil {
			observability.ObserveDecision("application", "error")
			writeWorkflowError(w, err)
			return
		}
		observability.ObserveDecision("application", out.Status.String())
		writeJSON(w, http.StatusOK, toApplicationResponse(out))
	}
}

func (h *Handlers) listSuggestions(w http.ResponseWriter, r *http.Request) {
	st, ok := statusFilter(w, r)
	if !ok {
		return
	}
	vs, err := h.Q.Suggestions(r.Context(), st)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSuggestionResponses(vs))
}

func (h *Handlers) decideSuggestion(accept bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := caller(w, r)
		if !ok {
			return
		}
		suggestionID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
			return
		}
		var req decisionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		out, err := h.Rev.DecideSuggestion(r.Context(), suggestionID, id.UserID, accept, req.Notes)
		if err != nil {
			observability.ObserveDecision("suggestion", "error")
			writeWorkflowError(w, err)
			return
		}
		observability.ObserveDecision("suggestion", out.Suggestion.Status.String())
		writeJSON(w, http.StatusOK, toSuggestionResponse(out.Suggestion, out.PromoterName, out.Attraction))
	}
}

func (h *Handlers) adminDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Q.AdminDashboard(r.Context())
	if err != nil {
		writeWorkflowError(w, err)
		return
	}
	resp := struct {
		PendingApplications  int `json:"pendingApplications"`
		ApprovedApplications int `json:"approvedApplications"`
		RejectedApplications int `json:"rejectedApplications"`
		PendingSuggestions   int `json:"pendingSuggestions"`
		ApprovedSuggestions  int `json:"approvedSuggestions"`
		RejectedSuggestions  int `json:"rejectedSuggestions"`
		ApprovedThisWeek     int `json:"approvedThisWeek"`
	}(d)
	writeJSON(w, http.StatusOK, resp)
}
