// Package sanitizer strips or filters markup from strings that end up
// inside generated HTML responses.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	inlinePolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		inlinePolicy = bluemonday.NewPolicy()
		inlinePolicy.AllowElements("strong", "b", "em", "i", "code", "br")
	})
}

// Text removes every HTML tag from s and returns plain text that is safe to
// embed in a page body. Entities produced by the policy are kept escaped.
func Text(s string) string {
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}

// Inline keeps a handful of inline formatting tags and drops everything else.
func Inline(s string) string {
	initPolicies()
	return inlinePolicy.Sanitize(s)
}

// Unescaped returns the plain text of s with HTML entities decoded.
// Use for contexts that escape on their own, such as html/template data.
func Unescaped(s string) string {
	return html.UnescapeString(Text(s))
}
