package llm

import (
	"context"
	"strings"

	"feedbacktriage/internal/feedback"
)

// Noop classifies with keyword heuristics and never leaves the process.
// It is the explicit development default; it is never substituted for a
// failing remote provider.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (n *Noop) Name() string  { return "noop" }
func (n *Noop) Model() string { return "keyword-heuristic" }

func (n *Noop) AnalyzeFeedback(_ context.Context, text string) (feedback.Classification, error) {
	category, urgency := classifyByKeywords(text)
	return feedback.Classification{
		Category:  category,
		Urgency:   urgency,
		Reasoning: "keyword heuristic",
	}, nil
}

func (n *Noop) AnalyzeFeedbackWithCategory(_ context.Context, text string, category feedback.Category) (feedback.Classification, error) {
	_, urgency := classifyByKeywords(text)
	return feedback.Classification{
		Category:  category,
		Urgency:   urgency,
		Reasoning: "keyword heuristic",
	}, nil
}

func classifyByKeywords(text string) (feedback.Category, feedback.Urgency) {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "crash", "broken", "error", "can't", "cannot", "doesn't work", "not working", "bug"):
		urgency := feedback.UrgencyMedium
		if containsAny(lower, "urgent", "critical", "asap", "immediately", "lost") {
			urgency = feedback.UrgencyCritical
		} else if containsAny(lower, "blocked", "meeting", "deadline") {
			urgency = feedback.UrgencyHigh
		}
		return feedback.CategoryBugReport, urgency
	case containsAny(lower, "add ", "feature", "would be great", "could you", "suggestion", "please support"):
		return feedback.CategoryFeatureRequest, feedback.UrgencyLow
	case containsAny(lower, "thank", "love", "great", "amazing", "awesome", "excellent"):
		return feedback.CategoryPraise, feedback.UrgencyNotUrgent
	default:
		return feedback.CategoryGeneralInquiry, feedback.UrgencyLow
	}
}

func containsAny(text string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}
