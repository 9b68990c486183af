package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tinygen/repo"
	"tinygen/storage"
)

// Handler is the http api layer of tinygen.
type Handler struct {
	analyzer     Analyzer
	records      RecordReader // Nil when records are disabled
	pinger       Pinger       // Nil skips the readiness probe
	defaultLimit int
	logger       *zap.Logger
}

// HandlerConfig wires the collaborators of a Handler.
type HandlerConfig struct {
	Analyzer     Analyzer
	Records      RecordReader
	Pinger       Pinger
	DefaultLimit int // Page size of GET /analyses; zero means 20
	Logger       *zap.Logger
}

// NewHandler creates a new handler injecting the service.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = 20
	}
	return &Handler{
		analyzer:     cfg.Analyzer,
		records:      cfg.Records,
		pinger:       cfg.Pinger,
		defaultLimit: limit,
		logger:       logger,
	}
}

// RegisterRoutes attaches the tinygen endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/analyze", h.handleAnalyze)
	r.Post("/analyze/", h.handleAnalyze)

	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	r.Get("/analyses", h.handleListAnalyses)
	r.Get("/analyses/{id}", h.handleGetAnalysis)
}

// --- DTOs ---

// analyzeRequest is the DTO for what the client sends. Pointers tell a
// missing field from an empty one.
type analyzeRequest struct {
	RepoURL *string `json:"repoUrl"`
	Prompt  *string `json:"prompt"`
}

// maxRequestBytes caps the POST /analyze body.
const maxRequestBytes = 1 << 20

// analysisView is a record as served over HTTP. The conversation is left out
// because its first message carries the whole serialized repository.
type analysisView struct {
	ID         string    `json:"id"`
	RepoURL    string    `json:"repoUrl"`
	Prompt     string    `json:"prompt"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	Diff       string    `json:"diff,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

func newAnalysisView(rec *storage.Record) analysisView {
	return analysisView{
		ID:         rec.ID,
		RepoURL:    rec.RepoURL,
		Prompt:     rec.Prompt,
		Model:      rec.Model,
		Status:     rec.Status,
		Diff:       rec.Diff,
		Error:      rec.Error,
		CreatedAt:  rec.CreatedAt,
		FinishedAt: rec.FinishedAt,
	}
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// --- Handlers ---

// handleAnalyze runs one analysis and responds with the diff as a JSON string.
func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid request payload: %v", err))
		return
	}
	if req.RepoURL == nil {
		writeError(w, http.StatusUnprocessableEntity, "Field required: repoUrl")
		return
	}
	if req.Prompt == nil {
		writeError(w, http.StatusUnprocessableEntity, "Field required: prompt")
		return
	}

	diff, err := h.analyzer.AnalyzeRepo(r.Context(), *req.RepoURL, *req.Prompt)
	if err != nil {
		var cloneErr *repo.CloneError
		if errors.As(err, &cloneErr) {
			h.logger.Warn("Clone failed", zap.String("repo_url", *req.RepoURL), zap.Error(err))
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Failed to clone repository: %v", err))
			return
		}
		h.logger.Error("Analysis failed", zap.String("repo_url", *req.RepoURL), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, diff)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("tinygen OK"))
}

// handleReady checks that the model backend answers.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.pinger != nil {
		if err := h.pinger.Ping(r.Context()); err != nil {
			h.logger.Warn("Readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("Model backend unavailable: %v", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		writeError(w, http.StatusNotFound, "Analysis records are disabled")
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Invalid limit: %q", raw))
			return
		}
		limit = n
	}

	list, err := h.records.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list analyses", zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		writeError(w, http.StatusNotFound, "Analysis records are disabled")
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := h.records.Load(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Analysis %s not found", id))
		return
	}
	if err != nil {
		h.logger.Error("Failed to load analysis", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("An unexpected error occurred: %v", err))
		return
	}
	writeJSON(w, http.StatusOK, newAnalysisView(rec))
}

// writeJSON is a helper function for sending json responses.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for sending a standardized json error.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}
