// internal/notify/render/render.go

// Package render substitutes {{key}} placeholders into template strings.
package render

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Interpolate replaces every {{key}} occurrence with the matching value.
// Key matching is case-insensitive. Unknown placeholders are left verbatim
// so a missing variable is visible in a rendered preview instead of
// silently blank. Substitution is single-pass: values containing {{ or }}
// are never re-expanded.
func Interpolate(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}

	lookup := make(map[string]string, len(vars))
	for k, v := range vars {
		lookup[strings.ToLower(k)] = v
	}

	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := lookup[strings.ToLower(key)]; ok {
			return value
		}
		return match
	})
}
