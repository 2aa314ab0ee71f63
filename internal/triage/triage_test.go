package triage

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedbacktriage/internal/feedback"
)

type stubProvider struct {
	classification feedback.Classification
	err            error
	forced         *feedback.Category
	text           string
}

func (s *stubProvider) AnalyzeFeedback(_ context.Context, text string) (feedback.Classification, error) {
	s.text = text
	return s.classification, s.err
}

func (s *stubProvider) AnalyzeFeedbackWithCategory(_ context.Context, text string, category feedback.Category) (feedback.Classification, error) {
	s.text = text
	s.forced = &category
	if s.err != nil {
		return feedback.Classification{}, s.err
	}
	out := s.classification
	out.Category = category
	return out, nil
}

func (s *stubProvider) Name() string  { return "stub" }
func (s *stubProvider) Model() string { return "stub-model" }

func TestClassifyTimesProviderCall(t *testing.T) {
	stub := &stubProvider{classification: feedback.Classification{
		Category: feedback.CategoryBugReport,
		Urgency:  feedback.UrgencyHigh,
	}}
	svc := New(stub)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		if calls > 1 {
			return current.Add(250 * time.Millisecond)
		}
		return current
	}

	got, err := svc.Classify(context.Background(), "login is broken", nil)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if got.Classification.Category != feedback.CategoryBugReport {
		t.Fatalf("unexpected category: %q", got.Classification.Category)
	}
	if got.ProcessingTime != 0.25 {
		t.Fatalf("expected 0.25s processing time, got %v", got.ProcessingTime)
	}
	if got.Provider != "stub" || got.Model != "stub-model" {
		t.Fatalf("unexpected provenance: %s/%s", got.Provider, got.Model)
	}
	if stub.text != "login is broken" {
		t.Fatalf("expected text passed through, got %q", stub.text)
	}
}

func TestClassifyForcedCategory(t *testing.T) {
	stub := &stubProvider{classification: feedback.Classification{
		Category: feedback.CategoryGeneralInquiry,
		Urgency:  feedback.UrgencyLow,
	}}
	svc := New(stub)

	forced := feedback.CategoryFeatureRequest
	got, err := svc.Classify(context.Background(), "add dark mode", &forced)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if stub.forced == nil || *stub.forced != forced {
		t.Fatalf("expected forced category passed to provider")
	}
	if got.Classification.Category != forced {
		t.Fatalf("expected forced category in result, got %q", got.Classification.Category)
	}
}

func TestClassifyPropagatesProviderError(t *testing.T) {
	wantErr := errors.New("upstream down")
	svc := New(&stubProvider{err: wantErr})

	_, err := svc.Classify(context.Background(), "some text", nil)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}
