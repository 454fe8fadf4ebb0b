package rules

import (
	"regexp"
	"strconv"
)

var placeholder = regexp.MustCompile(`\{(\d+)\}`)

// Format substitutes {N} placeholders with args[N]. Placeholders without a
// matching argument are left untouched.
func Format(template string, args ...string) string {
	return placeholder.ReplaceAllStringFunc(template, func(token string) string {
		n, err := strconv.Atoi(token[1 : len(token)-1])
		if err != nil || n >= len(args) {
			return token
		}
		return args[n]
	})
}
