package services

import (
	"regexp"
	"strings"
)

var (
	// Keeps \t, \n and \r.
	controlCharsRegex  = regexp.MustCompile(`[\x00-\x08\x0B-\x0C\x0E-\x1F\x7F]`)
	zeroWidthRegex     = regexp.MustCompile(`[\x{200B}-\x{200F}\x{FEFF}]`)
	lineSeparatorRegex = regexp.MustCompile(`[\x{2028}\x{2029}\x{0085}]`)
	trailingSpaceRegex = regexp.MustCompile(`[ \t]+\n`)
	excessiveNewlines  = regexp.MustCompile(`\n{4,}`)
)

// TextSanitizer cleans model output before it is displayed or saved.
// Markdown structure (headings, bullets, rules) is left alone.
type TextSanitizer struct{}

func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{}
}

func (ts *TextSanitizer) SanitizeText(text string) string {
	if text == "" {
		return ""
	}

	sanitized := strings.ReplaceAll(text, "\r\n", "\n")
	sanitized = strings.ReplaceAll(sanitized, "\r", "\n")
	sanitized = controlCharsRegex.ReplaceAllString(sanitized, "")
	sanitized = zeroWidthRegex.ReplaceAllString(sanitized, "")
	sanitized = strings.ReplaceAll(sanitized, "\u00a0", " ")
	sanitized = lineSeparatorRegex.ReplaceAllString(sanitized, "\n")
	sanitized = trailingSpaceRegex.ReplaceAllString(sanitized, "\n")
	sanitized = excessiveNewlines.ReplaceAllString(sanitized, "\n\n\n")

	return strings.TrimSpace(sanitized)
}
