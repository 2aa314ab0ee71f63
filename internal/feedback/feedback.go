package feedback

import "fmt"

// Category is the closed set of feedback categories. The string values are
// the wire representation used in API payloads, LLM replies and storage.
type Category string

const (
	CategoryBugReport      Category = "Bug Report"
	CategoryFeatureRequest Category = "Feature Request"
	CategoryPraise         Category = "Praise/Positive Feedback"
	CategoryGeneralInquiry Category = "General Inquiry"
)

func Categories() []Category {
	return []Category{CategoryBugReport, CategoryFeatureRequest, CategoryPraise, CategoryGeneralInquiry}
}

func ParseCategory(value string) (Category, error) {
	switch Category(value) {
	case CategoryBugReport, CategoryFeatureRequest, CategoryPraise, CategoryGeneralInquiry:
		return Category(value), nil
	default:
		return "", fmt.Errorf("unknown feedback category: %q", value)
	}
}

// Urgency is the closed 1..5 urgency scale, 1 lowest and 5 highest.
type Urgency int

const (
	UrgencyNotUrgent Urgency = 1
	UrgencyLow       Urgency = 2
	UrgencyMedium    Urgency = 3
	UrgencyHigh      Urgency = 4
	UrgencyCritical  Urgency = 5
)

func ParseUrgency(value int) (Urgency, error) {
	if value < int(UrgencyNotUrgent) || value > int(UrgencyCritical) {
		return 0, fmt.Errorf("urgency score out of range: %d", value)
	}
	return Urgency(value), nil
}

func (u Urgency) String() string {
	switch u {
	case UrgencyNotUrgent:
		return "Not Urgent"
	case UrgencyLow:
		return "Low"
	case UrgencyMedium:
		return "Medium"
	case UrgencyHigh:
		return "High"
	case UrgencyCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Urgency(%d)", int(u))
	}
}

// Classification is the normalized result of one provider call. Confidence is
// nil when the model omitted it.
type Classification struct {
	Category   Category
	Urgency    Urgency
	Reasoning  string
	Confidence *float64
}
