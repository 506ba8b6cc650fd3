package speech

import (
	"regexp"
	"strings"
)

// Normalization rules, applied in a fixed order so later rules can clean
// artifacts left by earlier ones (paragraph collapsing leaves stray spaces
// before periods, bullet stripping leaves double spaces, and so on).
var (
	// A paragraph break after sentence punctuation becomes a plain space;
	// after a comma or semicolon the break swallows the punctuation and
	// becomes a sentence boundary; anywhere else it becomes one outright,
	// so downstream punctuation-based chunking still sees a boundary.
	punctuatedParagraph = regexp.MustCompile(`([.!?:])[ \t]*\n{2,}`)
	softPunctParagraph  = regexp.MustCompile(`[,;][ \t]*\n{2,}`)
	bareParagraph       = regexp.MustCompile(`\n{2,}`)

	// A lone asterisk framed by whitespace is a list marker; any asterisk
	// left after that is an emphasis marker to drop in place.
	bulletMarker = regexp.MustCompile(`\s+\*\s+`)

	colonSpacing       = regexp.MustCompile(`:\s+`)
	openParenGap       = regexp.MustCompile(`\(\s+`)
	closeParenGap      = regexp.MustCompile(`\s+\)`)
	commaGap           = regexp.MustCompile(`\s+,`)
	periodGap          = regexp.MustCompile(`\s+\.`)
	apostropheLeadGap  = regexp.MustCompile(`\s+'`)
	apostropheTrailGap = regexp.MustCompile(`'\s+`)
	quoteLeadGap       = regexp.MustCompile(`\s+"`)
	quoteTrailGap      = regexp.MustCompile(`"\s+`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Normalize turns raw generated text into clean, speakable prose. It is
// pure, deterministic and total: it never fails, and whitespace-only input
// yields an empty string, which callers treat as "no content".
func Normalize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := strings.ReplaceAll(raw, "**", "")

	text = punctuatedParagraph.ReplaceAllString(text, "$1 ")
	text = softPunctParagraph.ReplaceAllString(text, ". ")
	text = bareParagraph.ReplaceAllString(text, ". ")
	text = strings.ReplaceAll(text, "\n", " ")

	text = bulletMarker.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "*", "")

	text = colonSpacing.ReplaceAllString(text, ": ")
	text = openParenGap.ReplaceAllString(text, "(")
	text = closeParenGap.ReplaceAllString(text, ")")
	text = commaGap.ReplaceAllString(text, ",")
	text = periodGap.ReplaceAllString(text, ".")
	text = apostropheLeadGap.ReplaceAllString(text, "'")
	text = apostropheTrailGap.ReplaceAllString(text, "'")
	text = quoteLeadGap.ReplaceAllString(text, `"`)
	text = quoteTrailGap.ReplaceAllString(text, `"`)

	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
