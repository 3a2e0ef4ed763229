package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"

	"github.com/AngelCh415/insightchat-go/internal/ingest"
	"github.com/AngelCh415/insightchat-go/internal/insights"
	"github.com/AngelCh415/insightchat-go/internal/llm"
	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/telemetry"
	"github.com/AngelCh415/insightchat-go/internal/utils"
	"github.com/AngelCh415/insightchat-go/internal/validation"
)

const (
	apiName    = "InsightChat API"
	apiVersion = "0.1.0"

	suggestion   = "Verify dataset format and API configuration"
	maxBodyBytes = 1 << 20
)

// Insights is satisfied by *insights.Service.
type Insights interface {
	Analyze(ctx context.Context) (*models.UXInsightsResponse, error)
	Chat(ctx context.Context, question string) (string, error)
}

type Options struct {
	CORSOrigins        []string
	RateLimitPerMinute int
	LLMConfigured      bool
}

type handler struct {
	log  *slog.Logger
	svc  Insights
	opts Options
}

func NewRouter(log *slog.Logger, svc Insights, opts Options) http.Handler {
	h := &handler{log: log, svc: svc, opts: opts}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(middleware.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{utils.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/", h.root)
	mux.Get("/health", h.health)
	mux.Method(http.MethodGet, "/metrics", telemetry.Handler())

	mux.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}
		r.Get("/analyze", h.analyze)
		r.Post("/chat", h.chat)
	})

	return mux
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    apiName,
		"version": apiVersion,
		"status":  "running",
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"llm_configured": h.opts.LLMConfigured,
	})
}

// The completion call outlives a dropped connection; only the client
// timeout bounds it.
func (h *handler) analyze(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Analyze(context.WithoutCancel(r.Context()))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
			Error:  "bad_request",
			Detail: "Malformed request body: " + err.Error(),
		})
		return
	}
	if err := validation.Struct(req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:  "validation_error",
			Detail: err.Error(),
		})
		return
	}

	answer, err := h.svc.Chat(context.WithoutCancel(r.Context()), req.Question)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.ChatResponse{Answer: answer})
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	lvl := slog.LevelWarn
	if status == http.StatusInternalServerError {
		lvl = slog.LevelError
	}
	h.log.Log(r.Context(), lvl, "request failed",
		slog.String("rid", utils.RID(r.Context())),
		slog.String("category", body.Error),
		slog.String("err", err.Error()))
	writeJSON(w, status, body)
}

// classify maps service errors onto a status and response body. Load
// problems are ours (500); anything past loading is the model's side (502).
func classify(err error) (int, models.ErrorResponse) {
	var (
		derr *ingest.DatasetError
		terr *ingest.TemplateError
		aerr *insights.AnalysisError
		cerr *llm.ClientError
	)
	switch {
	case errors.As(err, &derr):
		return http.StatusInternalServerError, models.ErrorResponse{
			Error: "dataset_error", Detail: "Dataset error: " + err.Error(), Suggestion: suggestion,
		}
	case errors.As(err, &terr):
		return http.StatusInternalServerError, models.ErrorResponse{
			Error: "prompt_error", Detail: "Dataset error: " + err.Error(), Suggestion: suggestion,
		}
	case errors.As(err, &aerr):
		category := "analysis_error"
		if aerr.Stage == insights.StageUpstream || aerr.Stage == insights.StageCompletion {
			category = "upstream_error"
		}
		return http.StatusBadGateway, models.ErrorResponse{
			Error: category, Detail: "Analysis service error: " + err.Error(), Suggestion: suggestion,
		}
	case errors.As(err, &cerr):
		return http.StatusBadGateway, models.ErrorResponse{
			Error: "upstream_error", Detail: "Analysis service error: " + err.Error(), Suggestion: suggestion,
		}
	}
	return http.StatusInternalServerError, models.ErrorResponse{
		Error: "internal_error", Detail: "Internal server error",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
