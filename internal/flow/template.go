package flow

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {{variableName}} with optional inner whitespace.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Interpolate replaces {{name}} placeholders in template with values from the
// variable bag. Placeholders whose variable is not set are left verbatim.
func Interpolate(template string, variables map[string]string) string {
	if template == "" || !strings.Contains(template, "{{") {
		return template
	}
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if value, ok := variables[name]; ok {
			return value
		}
		return match
	})
}
