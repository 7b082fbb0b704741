// Package navigation keeps redirects inside the report.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
)

// BackURLOptions configures SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the path a return URL must equal or sit under.
	AllowedPrefix string

	// ExcludedSubpaths are rejected even under AllowedPrefix
	// (action endpoints that must not be redirect targets).
	ExcludedSubpaths []string

	// Fallback is used when the request names no acceptable return URL.
	Fallback string
}

// ReportBackURL accepts report pages (with their page_<id> query) and
// rejects the delete and JSON endpoints.
var ReportBackURL = BackURLOptions{
	AllowedPrefix:    "/ltiusage",
	ExcludedSubpaths: []string{"/activities/", "/api/"},
	Fallback:         "/ltiusage",
}

// SafeBackURL reads "return" from the query, then the form, and returns it
// if it is a local URL permitted by opts. Otherwise it returns opts.Fallback.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	raw := query.Get(r, "return")
	if raw == "" {
		raw = strings.TrimSpace(r.FormValue("return"))
	}
	return Check(raw, opts)
}

// Check applies opts to one candidate return URL.
func Check(raw string, opts BackURLOptions) string {
	ret := urlutil.SafeReturn(strings.TrimSpace(raw), "", "")
	if ret == "" || !underPrefix(ret, opts.AllowedPrefix) {
		return opts.Fallback
	}
	for _, ex := range opts.ExcludedSubpaths {
		if strings.Contains(ret, ex) {
			return opts.Fallback
		}
	}
	return ret
}

func underPrefix(ret, prefix string) bool {
	if prefix == "" {
		return true
	}
	if ret == prefix {
		return true
	}
	rest := strings.TrimPrefix(ret, prefix)
	return rest != ret && (rest[0] == '/' || rest[0] == '?')
}
