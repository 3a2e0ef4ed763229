package insights

import (
	"context"
	"log/slog"
	"time"

	"github.com/AngelCh415/insightchat-go/internal/ingest"
	"github.com/AngelCh415/insightchat-go/internal/models"
	"github.com/AngelCh415/insightchat-go/internal/telemetry"
)

type Paths struct {
	Dataset        string
	AnalysisPrompt string
	ChatPrompt     string
}

// Service runs one analysis or chat per call. It reloads the dataset and
// templates every time and keeps no state between requests.
type Service struct {
	c     Completer
	log   *slog.Logger
	paths Paths
}

func NewService(c Completer, log *slog.Logger, paths Paths) *Service {
	return &Service{c: c, log: log, paths: paths}
}

// Analyze returns *ingest.DatasetError or *ingest.TemplateError for load
// problems and *AnalysisError for everything after.
func (s *Service) Analyze(ctx context.Context) (*models.UXInsightsResponse, error) {
	start := time.Now()

	t, err := ingest.LoadDataset(s.paths.Dataset)
	if err != nil {
		s.record("analyze", "load_error", err, start)
		return nil, err
	}
	tmpl, err := ingest.LoadTemplate(s.paths.AnalysisPrompt)
	if err != nil {
		s.record("analyze", "load_error", err, start)
		return nil, err
	}
	s.log.Debug("dataset loaded", slog.Int("sessions", t.Len()), slog.Int("columns", t.ColumnCount()))

	resp, err := GenerateInsights(ctx, s.c, t, tmpl)
	if err != nil {
		s.record("analyze", "error", err, start)
		return nil, err
	}
	s.record("analyze", "ok", nil, start, slog.Int("insights", len(resp.Insights)))
	return resp, nil
}

func (s *Service) Chat(ctx context.Context, question string) (string, error) {
	start := time.Now()

	t, err := ingest.LoadDataset(s.paths.Dataset)
	if err != nil {
		s.record("chat", "load_error", err, start)
		return "", err
	}
	analysisTmpl, err := ingest.LoadTemplate(s.paths.AnalysisPrompt)
	if err != nil {
		s.record("chat", "load_error", err, start)
		return "", err
	}
	chatTmpl, err := ingest.LoadTemplate(s.paths.ChatPrompt)
	if err != nil {
		s.record("chat", "load_error", err, start)
		return "", err
	}

	answer, err := AnswerQuestion(ctx, s.c, t, analysisTmpl, chatTmpl, question)
	if err != nil {
		s.record("chat", "error", err, start)
		return "", err
	}
	s.record("chat", "ok", nil, start, slog.Int("answer_len", len(answer)))
	return answer, nil
}

func (s *Service) record(flow, outcome string, err error, start time.Time, attrs ...any) {
	telemetry.Analyses.WithLabelValues(flow, outcome).Inc()
	attrs = append(attrs, slog.String("flow", flow), slog.Duration("took", time.Since(start)))
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
		s.log.Warn("orchestration failed", attrs...)
		return
	}
	s.log.Info("orchestration complete", attrs...)
}
