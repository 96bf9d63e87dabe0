package extract

import (
	"regexp"
	"strings"
)

// versionPattern matches 2 to 4 dotted digit groups with an optional
// pre-release or build suffix, e.g. 14.2, 2.10.1, 1.0.0-rc.1, 3.4+build7
var versionPattern = regexp.MustCompile(`(?i)\b\d+\.\d+(?:\.\d+)?(?:\.\d+)?(?:[-+][a-z0-9.]+)?\b`)

// Versions returns the unique version tokens of text in first-seen order
func Versions(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	seen := make(map[string]bool)
	for _, v := range versionPattern.FindAllString(text, -1) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
