// Package summary brokers AI-generated narrative summaries of the record
// collection. It is a narrow adapter: it serializes records into a prompt,
// forwards them to the external collaborator, and returns the response
// verbatim. No medical reasoning happens here.
package summary

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/thyrotrack-server/internal/domain"
)

// Generator is the external generative-AI collaborator.
type Generator interface {
	GenerateText(ctx context.Context, model, prompt string) (string, error)
	GenerateJSON(ctx context.Context, model, prompt string, schema map[string]any) (string, error)
}

// ErrGenerationInFlight is returned when a summary request is started while a
// previous one is still pending. Callers surface it instead of racing two
// generations.
var ErrGenerationInFlight = errors.New("a summary generation is already in progress")

// Snapshot is the externally visible state of the asynchronous summary
// request: idle, pending, succeeded with text, or failed with an error.
type Snapshot struct {
	State      domain.SummaryState `json:"state"`
	Summary    string              `json:"summary,omitempty"`
	Error      string              `json:"error,omitempty"`
	StartedAt  time.Time           `json:"startedAt,omitempty"`
	FinishedAt time.Time           `json:"finishedAt,omitempty"`
}

// Service coordinates summary generation and lab-report extraction.
type Service struct {
	gen          Generator
	summaryModel string
	extractModel string
	timeout      time.Duration
	log          *logrus.Logger

	mu   sync.Mutex
	snap Snapshot
}

// NewService creates a summary service using the given models.
func NewService(gen Generator, summaryModel, extractModel string, timeout time.Duration, logger *logrus.Logger) *Service {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Service{
		gen:          gen,
		summaryModel: summaryModel,
		extractModel: extractModel,
		timeout:      timeout,
		log:          logger,
		snap:         Snapshot{State: domain.SummaryIdle},
	}
}

// RequestSummary synchronously generates a clinician briefing for the given
// records and returns the narrative text unmodified. Failures and empty
// responses come back as *domain.SummaryGenerationError.
func (s *Service) RequestSummary(ctx context.Context, records []domain.MedicalRecord) (string, error) {
	prompt, err := BuildBriefingPrompt(records)
	if err != nil {
		return "", domain.NewSummaryGenerationError("request", err)
	}

	text, err := s.gen.GenerateText(ctx, s.summaryModel, prompt)
	if err != nil {
		return "", domain.NewSummaryGenerationError("request", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.NewSummaryGenerationError("response", errors.New("collaborator returned an empty summary"))
	}
	return text, nil
}

// Start begins an asynchronous summary generation over a snapshot of the
// record collection. It returns ErrGenerationInFlight while a previous
// request is pending; otherwise the result replaces any earlier outcome. The
// record store stays fully usable while the request runs.
func (s *Service) Start(records []domain.MedicalRecord) error {
	s.mu.Lock()
	if s.snap.State == domain.SummaryPending {
		s.mu.Unlock()
		return ErrGenerationInFlight
	}
	s.snap = Snapshot{State: domain.SummaryPending, StartedAt: time.Now()}
	s.mu.Unlock()

	go func() {
		// The originating HTTP request has already been answered; the
		// generation gets its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		text, err := s.RequestSummary(ctx, records)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.snap.FinishedAt = time.Now()
		if err != nil {
			s.log.WithError(err).Warn("Summary generation failed")
			s.snap.State = domain.SummaryFailed
			s.snap.Error = err.Error()
			return
		}
		s.log.WithField("length", len(text)).Info("Summary generation succeeded")
		s.snap.State = domain.SummarySucceeded
		s.snap.Summary = text
	}()

	return nil
}

// Status returns the current summary request state.
func (s *Service) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Reset discards any completed summary, returning the service to idle. A
// pending request is left alone.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.State != domain.SummaryPending {
		s.snap = Snapshot{State: domain.SummaryIdle}
	}
}

// ParseLabReport requests structured extraction of lab results from raw
// report text. The response is untrusted: anything malformed yields an empty
// slice, never a crash. Only transport-level failures are returned as errors.
func (s *Service) ParseLabReport(ctx context.Context, text string) ([]domain.LabResult, error) {
	raw, err := s.gen.GenerateJSON(ctx, s.extractModel, BuildExtractionPrompt(text), labResultSchema())
	if err != nil {
		return nil, domain.NewSummaryGenerationError("request", err)
	}

	var parsed []struct {
		Marker string  `json:"marker"`
		Value  float64 `json:"value"`
		Unit   string  `json:"unit"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		s.log.WithError(err).Warn("Extraction response was not valid JSON, returning no results")
		return []domain.LabResult{}, nil
	}

	results := make([]domain.LabResult, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Marker) == "" {
			continue
		}
		results = append(results, domain.LabResult{
			Marker: strings.TrimSpace(p.Marker),
			Value:  p.Value,
			Unit:   strings.TrimSpace(p.Unit),
		})
	}
	return results, nil
}
