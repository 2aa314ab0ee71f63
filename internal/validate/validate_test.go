package validate

import (
	"strings"
	"testing"
)

func TestEmptyTextRejectedWithEmptinessError(t *testing.T) {
	v := New(0, 0)
	for _, input := range []string{"", "   ", "\t\n  "} {
		res := v.ValidateFeedbackText(input)
		if res.Valid {
			t.Fatalf("expected %q to be invalid", input)
		}
		if len(res.Errors) != 1 || res.Errors[0] != "Feedback text cannot be empty" {
			t.Fatalf("expected emptiness error, got %v", res.Errors)
		}
	}
}

func TestTagsOnlyInputFailsLengthCheckNotEmptiness(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("<div>   </div>")
	if res.Valid {
		t.Fatalf("expected tags-only input to be invalid")
	}
	if res.CleanedText != "" {
		t.Fatalf("expected empty cleaned text, got %q", res.CleanedText)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "at least") {
		t.Fatalf("expected length error, got %v", res.Errors)
	}
}

func TestShortTextAfterCleaningFailsLength(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("<b><i><u>hi there</u></i></b>")
	if res.Valid {
		t.Fatalf("expected short cleaned text to be invalid")
	}
	if res.CleanedText != "hi there" {
		t.Fatalf("unexpected cleaned text: %q", res.CleanedText)
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "at least 10") {
		t.Fatalf("expected min length error, got %v", res.Errors)
	}
}

func TestOverlongTextRejected(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText(strings.Repeat("a", 1001))
	if res.Valid {
		t.Fatalf("expected overlong text to be invalid")
	}
	found := false
	for _, e := range res.Errors {
		if strings.Contains(e, "must not exceed 1000") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected max length error, got %v", res.Errors)
	}
}

func TestSQLInjectionPatternBlocks(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("search breaks when I type 1=1 OR 1=1 into the filter box")
	if res.Valid {
		t.Fatalf("expected SQL-like input to be invalid")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Text contains potentially malicious SQL patterns" {
		t.Fatalf("expected SQL security error, got %v", res.Errors)
	}
}

func TestSecurityClassesAccumulateIndependently(t *testing.T) {
	// "javascript:" appears in both the SQL-like and script-like pattern
	// tables, so one input can raise both errors; within a class only one
	// error is raised no matter how many patterns match.
	v := New(0, 0)
	res := v.ValidateFeedbackText("clicking the link runs javascript:alert(document.title) somehow")
	if res.Valid {
		t.Fatalf("expected script-like input to be invalid")
	}
	if len(res.Errors) != 2 {
		t.Fatalf("expected one error per security class, got %v", res.Errors)
	}
	if res.Errors[0] != "Text contains potentially malicious SQL patterns" ||
		res.Errors[1] != "Text contains potentially malicious script content" {
		t.Fatalf("unexpected error ordering: %v", res.Errors)
	}
}

func TestExcessiveSpecialCharactersBlock(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText(`this has ;;;;; and ''''' marks`)
	if res.Valid {
		t.Fatalf("expected special-char heavy input to be invalid")
	}
	if len(res.Errors) != 1 || res.Errors[0] != "Text contains excessive special characters" {
		t.Fatalf("expected special character error, got %v", res.Errors)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	inputs := []string{
		"plain feedback with no markup at all",
		"<p>Tom &amp; Jerry crashed the app, please fix soon.</p>",
		"  spaced   out\t\ttext   with\nnewlines  ",
		"control\x00chars\x1fstripped",
	}
	for _, input := range inputs {
		once := Clean(input)
		twice := Clean(once)
		if once != twice {
			t.Fatalf("clean not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestCleanNormalizes(t *testing.T) {
	got := Clean("<p>Tom &amp; Jerry   crashed</p>\n<p>the app.</p>")
	want := "Tom & Jerry crashed the app."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestQualityWarningsDoNotBlock(t *testing.T) {
	v := New(0, 0)

	res := v.ValidateFeedbackText("THIS IS ABSOLUTELY UNACCEPTABLE BEHAVIOR FROM THE APP!")
	if !res.Valid {
		t.Fatalf("expected caps-heavy input to remain valid, errors=%v", res.Errors)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "capitalization") {
		t.Fatalf("expected capitalization warning, got %v", res.Warnings)
	}

	res = v.ValidateFeedbackText("loooooooooooong wait times every single day, please look.")
	if !res.Valid {
		t.Fatalf("expected repeated-run input to remain valid, errors=%v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "repeated characters") {
		t.Fatalf("expected repeated character warning, got %v", res.Warnings)
	}

	res = v.ValidateFeedbackText("this is a long feedback message without any punctuation at all which keeps going")
	if !res.Valid {
		t.Fatalf("expected unpunctuated input to remain valid, errors=%v", res.Errors)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "punctuation") {
		t.Fatalf("expected punctuation warning, got %v", res.Warnings)
	}
}

func TestSpamSignalsWarnOnly(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("Click here to win $ prizes, free money for everyone today.")
	if !res.Valid {
		t.Fatalf("expected spam-like input to remain valid, errors=%v", res.Errors)
	}
	found := false
	for _, w := range res.Warnings {
		if w == "Text may contain spam-like content" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected spam warning, got %v", res.Warnings)
	}
}

func TestURLAndEmailWarnings(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("see https://a.example https://b.example and https://c.example for details.")
	if !res.Valid {
		t.Fatalf("expected link-heavy input to remain valid, errors=%v", res.Errors)
	}
	foundURL := false
	for _, w := range res.Warnings {
		if w == "Text contains multiple URLs" {
			foundURL = true
		}
	}
	if !foundURL {
		t.Fatalf("expected URL warning, got %v", res.Warnings)
	}

	res = v.ValidateFeedbackText("contact me at one@example.com or two@example.com about this bug.")
	if !res.Valid {
		t.Fatalf("expected email-heavy input to remain valid, errors=%v", res.Errors)
	}
	foundEmail := false
	for _, w := range res.Warnings {
		if w == "Text contains multiple email addresses" {
			foundEmail = true
		}
	}
	if !foundEmail {
		t.Fatalf("expected email warning, got %v", res.Warnings)
	}
}

func TestLengthsAreRuneCounts(t *testing.T) {
	v := New(0, 0)
	res := v.ValidateFeedbackText("<b>héllo wörld, ünicode tëxt</b>")
	if !res.Valid {
		t.Fatalf("expected unicode input to be valid, errors=%v", res.Errors)
	}
	if res.CleanedLength != len([]rune(res.CleanedText)) {
		t.Fatalf("cleaned length %d does not match rune count %d", res.CleanedLength, len([]rune(res.CleanedText)))
	}
	if res.OriginalLength <= res.CleanedLength {
		t.Fatalf("expected original length to exceed cleaned length after tag stripping")
	}
}

func TestConfiguredBounds(t *testing.T) {
	v := New(5, 20)
	if res := v.ValidateFeedbackText("tiny"); res.Valid {
		t.Fatalf("expected 4-rune text to fail min=5")
	}
	if res := v.ValidateFeedbackText("well over the configured twenty rune maximum"); res.Valid {
		t.Fatalf("expected text to fail max=20")
	}
	if res := v.ValidateFeedbackText("just right."); !res.Valid {
		t.Fatalf("expected in-bounds text to pass, errors=%v", res.Errors)
	}
}
