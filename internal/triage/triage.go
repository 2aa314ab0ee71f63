package triage

import (
	"context"
	"time"

	"feedbacktriage/internal/feedback"
	"feedbacktriage/internal/llm"
)

// Result is one completed classification with its timing and provenance.
type Result struct {
	Classification feedback.Classification
	// ProcessingTime is the provider round trip in seconds.
	ProcessingTime float64
	Provider       string
	Model          string
}

// Service runs cleaned feedback text through the configured provider and
// times the call.
type Service struct {
	provider llm.Provider
	now      func() time.Time
}

func New(provider llm.Provider) *Service {
	return &Service{
		provider: provider,
		now:      time.Now,
	}
}

// Classify sends text to the provider. When forced is non-nil the model
// only scores urgency and the forced category is kept verbatim.
func (s *Service) Classify(ctx context.Context, text string, forced *feedback.Category) (Result, error) {
	start := s.now()

	var classification feedback.Classification
	var err error
	if forced != nil {
		classification, err = s.provider.AnalyzeFeedbackWithCategory(ctx, text, *forced)
	} else {
		classification, err = s.provider.AnalyzeFeedback(ctx, text)
	}
	if err != nil {
		return Result{}, err
	}

	return Result{
		Classification: classification,
		ProcessingTime: s.now().Sub(start).Seconds(),
		Provider:       s.provider.Name(),
		Model:          s.provider.Model(),
	}, nil
}
