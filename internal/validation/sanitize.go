package validation

import (
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

var codeFencePattern = regexp.MustCompile("```(?:json)?\\n?")

// Sanitize strips wrapping the model adds around its JSON despite being told
// not to: code fences, leading prose before the first '{', trailing prose
// after the last '}', and surrounding whitespace.
func Sanitize(raw string) string {
	cleaned := codeFencePattern.ReplaceAllString(raw, "")

	if first := strings.Index(cleaned, "{"); first > 0 {
		cleaned = cleaned[first:]
	}
	if last := strings.LastIndex(cleaned, "}"); last >= 0 && last < len(cleaned)-1 {
		cleaned = cleaned[:last+1]
	}
	return strings.TrimSpace(cleaned)
}

// MissingSections reports which required top-level sections are absent or null in raw.
func MissingSections(raw []byte) []string {
	var missing []string
	for _, key := range RequiredSections {
		r := gjson.GetBytes(raw, key)
		if !r.Exists() || r.Type == gjson.Null {
			missing = append(missing, key)
		}
	}
	return missing
}
