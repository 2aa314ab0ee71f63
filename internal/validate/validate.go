package validate

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMinLength = 10
	DefaultMaxLength = 1000

	maxRepeatedRun     = 10
	maxCapsPercentage  = 70.0
	specialCharDensity = 0.1
)

// Pattern tables are compiled once and shared; they are read-only.
var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
	controlPattern    = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]")

	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(union\s+select|drop\s+table|delete\s+from|insert\s+into)`),
		regexp.MustCompile(`(?i)(or\s+1\s*=\s*1|and\s+1\s*=\s*1)`),
		regexp.MustCompile(`(?i)(exec\s*\(|execute\s*\()`),
		regexp.MustCompile(`(?i)(script\s*>|javascript:|vbscript:)`),
	}

	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?i)<iframe[^>]*>.*?</iframe>`),
		regexp.MustCompile(`(?i)eval\s*\(`),
		regexp.MustCompile(`(?i)alert\s*\(`),
	}

	specialCharPattern = regexp.MustCompile(`[<>"';\\]`)

	spamPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(free\s+money|click\s+here|buy\s+now)`),
		regexp.MustCompile(`(?i)(viagra|cialis|casino|poker)`),
		regexp.MustCompile(`(\$\$\$|!{3,}|\.{10,})`),
		regexp.MustCompile(`(?i)(win\s+\$|make\s+money\s+fast)`),
	}

	punctuationPattern = regexp.MustCompile(`[.!?,:;]`)
	urlPattern         = regexp.MustCompile(`https?://\S+`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// Result reports the outcome of validating one piece of feedback text.
// Valid is false exactly when Errors is non-empty; Warnings never block.
type Result struct {
	Valid          bool
	Errors         []string
	Warnings       []string
	CleanedText    string
	OriginalLength int
	CleanedLength  int
}

type Validator struct {
	MinLength int
	MaxLength int
}

func New(minLength, maxLength int) *Validator {
	if minLength <= 0 {
		minLength = DefaultMinLength
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Validator{MinLength: minLength, MaxLength: maxLength}
}

// ValidateFeedbackText cleans the raw text and runs the security, quality and
// content scans over the cleaned form. Security and length violations are
// blocking errors; quality and content findings are advisory warnings.
func (v *Validator) ValidateFeedbackText(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{
			Valid:          false,
			Errors:         []string{"Feedback text cannot be empty"},
			CleanedText:    "",
			OriginalLength: utf8.RuneCountInString(raw),
		}
	}

	cleaned := Clean(raw)
	length := utf8.RuneCountInString(cleaned)

	var errs []string
	if length < v.MinLength {
		errs = append(errs, fmt.Sprintf("Feedback must be at least %d characters long", v.MinLength))
	}
	if length > v.MaxLength {
		errs = append(errs, fmt.Sprintf("Feedback must not exceed %d characters", v.MaxLength))
	}
	errs = append(errs, checkSecurity(cleaned)...)

	var warnings []string
	warnings = append(warnings, checkQuality(cleaned)...)
	warnings = append(warnings, checkContent(cleaned)...)

	return Result{
		Valid:          len(errs) == 0,
		Errors:         errs,
		Warnings:       warnings,
		CleanedText:    cleaned,
		OriginalLength: utf8.RuneCountInString(raw),
		CleanedLength:  length,
	}
}

// Clean normalizes raw feedback text: HTML entities are decoded, tags
// stripped, whitespace runs collapsed, and control characters removed.
// Cleaning an already-clean string is a no-op.
func Clean(text string) string {
	text = html.UnescapeString(text)
	text = tagPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	text = controlPattern.ReplaceAllString(text, "")
	return text
}

// checkSecurity stops at the first match within each pattern class, but the
// classes contribute errors independently.
func checkSecurity(text string) []string {
	var issues []string

	for _, pattern := range sqlInjectionPatterns {
		if pattern.MatchString(text) {
			issues = append(issues, "Text contains potentially malicious SQL patterns")
			break
		}
	}

	for _, pattern := range xssPatterns {
		if pattern.MatchString(text) {
			issues = append(issues, "Text contains potentially malicious script content")
			break
		}
	}

	if length := utf8.RuneCountInString(text); length > 0 {
		special := len(specialCharPattern.FindAllString(text, -1))
		if float64(special)/float64(length) > specialCharDensity {
			issues = append(issues, "Text contains excessive special characters")
		}
	}

	return issues
}

func checkQuality(text string) []string {
	var warnings []string

	if r, ok := longestRun(text); ok {
		warnings = append(warnings, fmt.Sprintf("Text contains excessive repeated characters: %c", r))
	}

	runes := []rune(text)
	if len(runes) > 0 {
		caps := 0
		for _, r := range runes {
			if unicode.IsUpper(r) {
				caps++
			}
		}
		pct := float64(caps) / float64(len(runes)) * 100
		if pct > maxCapsPercentage {
			warnings = append(warnings, fmt.Sprintf("Text contains excessive capitalization (%.1f%%)", pct))
		}
	}

	words := strings.Fields(text)
	if len(words) > 5 {
		short := 0
		for _, w := range words {
			if utf8.RuneCountInString(w) <= 2 {
				short++
			}
		}
		if float64(short)/float64(len(words)) > 0.5 {
			warnings = append(warnings, "Text contains many very short words")
		}
	}

	if utf8.RuneCountInString(text) > 50 && !punctuationPattern.MatchString(text) {
		warnings = append(warnings, "Long text without punctuation may be unclear")
	}

	return warnings
}

func checkContent(text string) []string {
	var warnings []string

	spamMatches := 0
	for _, pattern := range spamPatterns {
		if pattern.MatchString(text) {
			spamMatches++
		}
	}
	if spamMatches >= 2 {
		warnings = append(warnings, "Text may contain spam-like content")
	}

	if len(urlPattern.FindAllString(text, -1)) > 2 {
		warnings = append(warnings, "Text contains multiple URLs")
	}
	if len(emailPattern.FindAllString(text, -1)) > 1 {
		warnings = append(warnings, "Text contains multiple email addresses")
	}

	return warnings
}

// longestRun reports the first rune repeated in a run of at least
// maxRepeatedRun consecutive occurrences. RE2 has no backreferences, so this
// is a plain scan.
func longestRun(text string) (rune, bool) {
	var prev rune
	count := 0
	for _, r := range text {
		if r == prev {
			count++
		} else {
			prev = r
			count = 1
		}
		if count >= maxRepeatedRun {
			return r, true
		}
	}
	return 0, false
}
