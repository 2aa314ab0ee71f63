package llm

import (
	"fmt"

	"feedbacktriage/internal/feedback"
)

const systemPrompt = "You are a feedback analysis agent that returns only valid JSON."

const classifyPromptHeader = `You are a feedback analysis agent. Your job is to analyze user feedback and classify it into categories and urgency levels.

CATEGORIES:
1. Bug Report: Identifies a technical issue or something that is broken
2. Feature Request: Suggests a new feature or enhancement
3. Praise/Positive Feedback: Expresses satisfaction or appreciation
4. General Inquiry: Questions or comments that don't fit other categories

URGENCY SCALE (1-5):
1: Not Urgent - Minor issues, general questions, positive feedback
2: Low - Small improvements, non-critical issues
3: Medium - Moderate impact, affects some users
4: High - Significant impact, affects many users, time-sensitive
5: Critical - Severe issues, blocks core functionality, urgent business need

EXAMPLES FOR REFERENCE:

Example 1:
Feedback: "I can't log in to my account, the password reset link is broken. I need to access my files urgently for a client meeting!"
Analysis: {
  "category": "Bug Report",
  "urgency_score": 4,
  "reasoning": "Login functionality is broken affecting user's ability to work with time pressure",
  "confidence_score": 0.95
}

Example 2:
Feedback: "Could you add a dark mode feature? It would be great for late-night work sessions."
Analysis: {
  "category": "Feature Request",
  "urgency_score": 2,
  "reasoning": "Nice-to-have feature request without urgency",
  "confidence_score": 0.98
}

Example 3:
Feedback: "The app is amazing! Thank you for all the improvements. The load time is so much faster now."
Analysis: {
  "category": "Praise/Positive Feedback",
  "urgency_score": 1,
  "reasoning": "Positive feedback expressing satisfaction",
  "confidence_score": 0.99
}

Example 4:
Feedback: "How do I export my data to CSV? I checked the menu but couldn't find the option."
Analysis: {
  "category": "General Inquiry",
  "urgency_score": 2,
  "reasoning": "User question about existing functionality",
  "confidence_score": 0.92
}

Example 5:
Feedback: "URGENT: The app crashes every time I try to save my work. I've lost 3 hours of progress!"
Analysis: {
  "category": "Bug Report",
  "urgency_score": 5,
  "reasoning": "Critical bug causing data loss with high user frustration",
  "confidence_score": 0.97
}

Now analyze this feedback and respond with ONLY valid JSON including confidence_score (0-1):

{
  "category": "one of the four categories above",
  "urgency_score": 1-5,
  "reasoning": "brief explanation of your decision",
  "confidence_score": 0.0-1.0
}

Feedback to analyze:
`

// classifyPrompt asks for both category and urgency.
func classifyPrompt(text string) string {
	return classifyPromptHeader + text
}

// urgencyPrompt asks only for urgency; the category was chosen by the
// caller and is embedded verbatim.
func urgencyPrompt(text string, category feedback.Category) string {
	return fmt.Sprintf(`You are analyzing feedback urgency. The category %q has been manually selected.
Analyze ONLY the urgency level (1-5) for this feedback.

URGENCY (1-5): 1=Not Urgent, 2=Low, 3=Medium, 4=High, 5=Critical

Respond with ONLY valid JSON:
{
  "category": %q,
  "urgency_score": 1-5,
  "reasoning": "brief explanation",
  "confidence_score": 0.0-1.0
}

Feedback to analyze:
%s`, category, category, text)
}
