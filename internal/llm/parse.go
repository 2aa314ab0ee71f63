package llm

import (
	"encoding/json"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"feedbacktriage/internal/feedback"
)

// classificationSchema validates a full reply: the model must pick one of
// the four categories and an integer urgency.
var classificationSchema = jsonschema.MustCompileString("classification.json", `{
	"type": "object",
	"required": ["category", "urgency_score"],
	"properties": {
		"category": {
			"type": "string",
			"enum": ["Bug Report", "Feature Request", "Praise/Positive Feedback", "General Inquiry"]
		},
		"urgency_score": {"type": "integer", "minimum": 1, "maximum": 5},
		"reasoning": {"type": "string"},
		"confidence_score": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

// urgencySchema validates a reply when the category was supplied by the
// caller. Whatever category the model echoes back is ignored, so only the
// urgency is constrained.
var urgencySchema = jsonschema.MustCompileString("urgency.json", `{
	"type": "object",
	"required": ["urgency_score"],
	"properties": {
		"urgency_score": {"type": "integer", "minimum": 1, "maximum": 5},
		"reasoning": {"type": "string"},
		"confidence_score": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`)

type classificationReply struct {
	Category        string   `json:"category"`
	UrgencyScore    int      `json:"urgency_score"`
	Reasoning       string   `json:"reasoning"`
	ConfidenceScore *float64 `json:"confidence_score"`
}

// stripFences removes a markdown code fence wrapper, with or without a
// language tag. Models add these despite being told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// parseClassification turns raw model output into a classification. When
// forced is non-nil the reply's category field is discarded and the forced
// category used instead.
func parseClassification(provider, content string, forced *feedback.Category) (feedback.Classification, error) {
	raw := stripFences(content)

	var generic any
	if err := json.Unmarshal([]byte(raw), &generic); err != nil {
		return feedback.Classification{}, &InvalidResponseError{
			Provider: provider,
			Reason:   "reply is not valid JSON: " + err.Error(),
			Raw:      content,
		}
	}

	schema := classificationSchema
	if forced != nil {
		schema = urgencySchema
	}
	if err := schema.Validate(generic); err != nil {
		return feedback.Classification{}, &InvalidResponseError{
			Provider: provider,
			Reason:   "reply failed schema validation: " + err.Error(),
			Raw:      content,
		}
	}

	var reply classificationReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return feedback.Classification{}, &InvalidResponseError{
			Provider: provider,
			Reason:   "reply did not decode: " + err.Error(),
			Raw:      content,
		}
	}

	category := feedback.Category(reply.Category)
	if forced != nil {
		category = *forced
	}
	urgency, err := feedback.ParseUrgency(reply.UrgencyScore)
	if err != nil {
		return feedback.Classification{}, &InvalidResponseError{
			Provider: provider,
			Reason:   err.Error(),
			Raw:      content,
		}
	}

	return feedback.Classification{
		Category:   category,
		Urgency:    urgency,
		Reasoning:  reply.Reasoning,
		Confidence: reply.ConfidenceScore,
	}, nil
}
