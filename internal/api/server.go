// Package api exposes the directory core over JSON for the front end:
// registration sessions, search, lead capture, analytics events and the
// owner dashboard, plus health and metrics endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"business-directory/internal/analytics"
	"business-directory/internal/common/logger"
	"business-directory/internal/dashboard"
	"business-directory/internal/leads"
	"business-directory/internal/listing"
	"business-directory/internal/models"
	"business-directory/internal/registration"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type Registrar interface {
	Begin(ctx context.Context, token string) (*registration.Session, error)
}

type Searcher interface {
	Search(ctx context.Context, f listing.Filter) ([]models.Listing, int, error)
}

type LeadCapturer interface {
	Capture(ctx context.Context, lead models.Lead) (*models.Lead, error)
}

type DashboardBuilder interface {
	Build(ctx context.Context, listingID, plan string) (*dashboard.View, error)
}

type OwnerLookup interface {
	GetByOwner(ctx context.Context, ownerID string) (*models.SavedRecord, error)
}

type EventRecorder interface {
	RecordView(ctx context.Context, listingID string) error
	RecordClick(ctx context.Context, listingID string) error
}

// ReadinessCheck reports whether one backing service is reachable.
type ReadinessCheck func(ctx context.Context) error

const DefaultSubmitTimeout = 30 * time.Second

type Deps struct {
	Identity  registration.IdentityProvider
	Registrar Registrar
	Searcher  Searcher
	Leads     LeadCapturer
	Dashboard DashboardBuilder
	Owners    OwnerLookup
	Events    EventRecorder
	Checks    map[string]ReadinessCheck

	// SessionTTL and SubmitTimeout fall back to the package defaults.
	SessionTTL    time.Duration
	SubmitTimeout time.Duration
}

type Server struct {
	deps          Deps
	sessions      *sessionRegistry
	submitTimeout time.Duration
	logger        logger.Logger
}

func NewServer(deps Deps, log logger.Logger) *Server {
	timeout := deps.SubmitTimeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	return &Server{
		deps:          deps,
		sessions:      newSessionRegistry(deps.SessionTTL),
		submitTimeout: timeout,
		logger:        logger.ForComponent(log, "api"),
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/registrations", s.handleBegin)
	mux.HandleFunc("GET /api/registrations/{id}", s.handleState)
	mux.HandleFunc("PUT /api/registrations/{id}/fields", s.handleSetFields)
	mux.HandleFunc("POST /api/registrations/{id}/advance", s.handleAdvance)
	mux.HandleFunc("POST /api/registrations/{id}/retreat", s.handleRetreat)
	mux.HandleFunc("POST /api/registrations/{id}/submit", s.handleSubmit)
	mux.HandleFunc("DELETE /api/registrations/{id}", s.handleCancel)

	mux.HandleFunc("GET /api/listings", s.handleSearch)
	mux.HandleFunc("GET /api/listings/{id}/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/listings/{id}/leads", s.handleLead)
	mux.HandleFunc("POST /api/listings/{id}/events/{kind}", s.handleEvent)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleReady runs every check in parallel and reports the first failure.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for name, check := range s.deps.Checks {
		g.Go(func() error {
			if err := check(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	found, total, err := s.deps.Searcher.Search(r.Context(), listing.Filter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		City:     q.Get("city"),
		Limit:    limit,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"listings": found, "total": total})
}

// handleDashboard serves only the caller's own listing.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	saved, err := s.deps.Owners.GetByOwner(r.Context(), user.ID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if saved.ID != r.PathValue("id") {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	view, err := s.deps.Dashboard.Build(r.Context(), saved.ID, saved.Plan)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// authenticate resolves the bearer token and writes a 401 when there is no
// signed-in user.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := s.deps.Identity.GetCurrentUser(r.Context(), bearerToken(r))
	if err != nil {
		s.logger.Warn("identity lookup failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusServiceUnavailable, "identity provider unavailable")
		return nil, false
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "sign in required")
		return nil, false
	}
	return user, true
}

type leadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (s *Server) handleLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	lead, err := s.deps.Leads.Capture(r.Context(), models.Lead{
		ListingID: r.PathValue("id"),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var err error
	switch r.PathValue("kind") {
	case "view":
		err = s.deps.Events.RecordView(r.Context(), id)
	case "click":
		err = s.deps.Events.RecordClick(r.Context(), id)
	default:
		writeError(w, http.StatusNotFound, "unknown event kind")
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps domain errors onto HTTP statuses. Anything unrecognised is a 500
// and is logged.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, listing.ErrListingNotFound):
		writeError(w, http.StatusNotFound, "listing not found")
	case errors.Is(err, leads.ErrLeadCaptureDisabled):
		writeError(w, http.StatusForbidden, "lead capture is not available for this listing")
	case errors.Is(err, leads.ErrLeadInvalid), errors.Is(err, analytics.ErrInvalidRange):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, listing.ErrSearchTimeout):
		writeError(w, http.StatusGatewayTimeout, "search timed out")
	default:
		s.logger.Error("request failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
