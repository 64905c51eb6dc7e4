package ipa

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalVoice normalizes an espeak voice tag. Well-formed BCP 47 tags are
// canonicalized and lowercased ("EN_us" becomes "en-us"); anything else is
// passed through lowercased so espeak-specific voice names keep working.
func CanonicalVoice(tag string) string {
	trimmed := strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if trimmed == "" {
		return ""
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToLower(trimmed)
	}
	return strings.ToLower(parsed.String())
}
