// Package htmlsanitize turns stored course and activity labels into plain
// text before they are shown.
//
// Labels are typed by course editors and may contain markup. The report
// only ever shows them as text, so every tag is dropped (script and style
// bodies included) and entities are decoded once; the template engine
// escapes the result again on output.
package htmlsanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func strict() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Label returns s with all markup removed and runs of whitespace collapsed.
func Label(s string) string {
	if s == "" {
		return ""
	}
	if IsPlainText(s) && !strings.Contains(s, "&") {
		return collapse(s)
	}
	clean := html.UnescapeString(strict().Sanitize(s))
	return collapse(clean)
}

// IsPlainText reports whether s contains no tag-like content.
func IsPlainText(s string) bool {
	return !strings.ContainsAny(s, "<>")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
