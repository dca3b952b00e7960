package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/ports"
	"OptiLiveAudit/internal/usecase"
)

// AuditRunner executes one audit run.
type AuditRunner interface {
	Run(ctx context.Context, req usecase.AuditRequest) (domain.AuditReport, error)
}

// Handler exposes audit runs over HTTP.
type Handler struct {
	runner   AuditRunner
	repo     ports.AuditRepository
	defaults usecase.AuditRequest
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New constructs the handler. Requests omitting fields take them from defaults.
// auditsPerMinute <= 0 disables rate limiting of POST /v1/audits.
func New(runner AuditRunner, repo ports.AuditRepository, defaults usecase.AuditRequest, auditsPerMinute int, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		runner:   runner,
		repo:     repo,
		defaults: defaults,
		logger:   logger,
	}
	if auditsPerMinute > 0 {
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(auditsPerMinute)), auditsPerMinute)
	}
	return h
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/v1/audits", func(r chi.Router) {
		r.Post("/", h.HandleRunAudit)
		r.Get("/{runID}", h.HandleGetRun)
		r.Get("/{runID}/metrics", h.HandleGetMetrics)
		r.Get("/{runID}/citizens", h.HandleGetCitizens)
	})
}

// RunAuditRequest is the POST /v1/audits body. Every field is optional.
type RunAuditRequest struct {
	Population *int     `json:"population"`
	Seed       *uint64  `json:"seed"`
	Threshold  *int     `json:"threshold"`
	Features   []string `json:"features"`
}

func (r RunAuditRequest) toAuditRequest(defaults usecase.AuditRequest) usecase.AuditRequest {
	out := defaults
	if r.Population != nil {
		out.Population = *r.Population
	}
	if r.Seed != nil {
		out.Seed = *r.Seed
	}
	if r.Threshold != nil {
		out.Threshold = *r.Threshold
	}
	if len(r.Features) > 0 {
		out.Features = r.Features
	}
	return out
}

// HandleRunAudit handles POST /v1/audits. Citizens are included only with ?citizens=true.
func (h *Handler) HandleRunAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	if h.limiter != nil && !h.limiter.Allow() {
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate_limited", Description: "too many audit runs"})
		return
	}

	var body RunAuditRequest
	if r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Description: "malformed request body"})
			return
		}
	}

	includeCitizens, _ := strconv.ParseBool(r.URL.Query().Get("citizens"))

	report, err := h.runner.Run(ctx, body.toAuditRequest(h.defaults))
	if err != nil {
		h.logger.ErrorContext(ctx, "audit run failed", "request_id", requestID, "error", err)
		writeError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "audit run served",
		"request_id", requestID,
		"run_id", report.Run.ID,
		"population", report.Run.Population,
	)

	if !includeCitizens {
		report.Citizens = nil
	}
	writeJSON(w, http.StatusCreated, report)
}

// HandleGetRun handles GET /v1/audits/{runID}.
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, domain.NotFoundf("audit storage disabled"))
		return
	}

	run, err := h.repo.LoadRun(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleGetMetrics handles GET /v1/audits/{runID}/metrics.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, domain.NotFoundf("audit storage disabled"))
		return
	}

	metrics, err := h.repo.LoadMetrics(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

// HandleGetCitizens handles GET /v1/audits/{runID}/citizens.
func (h *Handler) HandleGetCitizens(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, domain.NotFoundf("audit storage disabled"))
		return
	}

	citizens, err := h.repo.LoadCitizens(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "load citizens failed",
			"request_id", middleware.GetReqID(r.Context()), "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, citizens)
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrUnrecognizedCategory):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_request", Description: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Description: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal_error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
