// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize cleans user-supplied text before it is stored.
// Message bodies keep light formatting; titles and notes are plain text.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richOnce   sync.Once
	richPolicy *bluemonday.Policy

	plainPolicy = bluemonday.StrictPolicy()
)

func rich() *bluemonday.Policy {
	richOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "br", "strong", "b", "em", "i", "u", "s",
			"ul", "ol", "li", "blockquote", "pre", "code")
		p.AllowStandardURLs()
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		richPolicy = p
	})
	return richPolicy
}

// Sanitize keeps basic formatting and links and removes everything else,
// including scripts, event handlers, and javascript: URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(rich().Sanitize(s))
}

// StripTags removes all markup and returns plain text. Entities produced by
// the sanitizer are decoded so the stored text reads as typed.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like sequence.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}
