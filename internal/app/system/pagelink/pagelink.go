// Package pagelink encodes and decodes pager link targets.
//
// A pager link names the table group it belongs to and the zero-based page
// it leads to as a single query parameter, page_<groupID>=<pageIndex>. The
// same encoding is produced by the server when it renders a pager and
// parsed back by whoever follows the link (the fragment handler or the
// pager controller), so both sides agree on where a link goes.
package pagelink

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const prefix = "page_"

var linkPattern = regexp.MustCompile(`(?:^|[?&;])page_(\d+)=(\d+)`)

// Target is a decoded pager destination.
type Target struct {
	GroupID int64
	Page    int
}

// Param returns the query parameter name used for a group's page index.
func Param(groupID int64) string {
	return prefix + strconv.FormatInt(groupID, 10)
}

// Encode sets the group's page parameter on base and returns the result.
// Other query parameters on base are kept. If base cannot be parsed as a
// URL the parameter is appended textually.
func Encode(base string, groupID int64, page int) string {
	if page < 0 {
		page = 0
	}
	u, err := url.Parse(base)
	if err != nil {
		sep := "?"
		if strings.Contains(base, "?") {
			sep = "&"
		}
		return base + sep + Param(groupID) + "=" + strconv.Itoa(page)
	}
	q := u.Query()
	q.Set(Param(groupID), strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}

// Decode extracts the first page_<groupID>=<pageIndex> pair from href.
// It reports false when href carries no such pair or the numbers do not
// fit; callers treat that as "not a pager link" and do nothing.
func Decode(href string) (Target, bool) {
	m := linkPattern.FindStringSubmatch(href)
	if m == nil {
		return Target{}, false
	}
	groupID, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Target{}, false
	}
	page, err := strconv.Atoi(m[2])
	if err != nil {
		return Target{}, false
	}
	return Target{GroupID: groupID, Page: page}, true
}

// FromQuery returns the page index for groupID from a parsed query string,
// or 0 when the parameter is absent or malformed.
func FromQuery(values url.Values, groupID int64) int {
	s := strings.TrimSpace(values.Get(Param(groupID)))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PagesFromQuery collects every page_<groupID> parameter present in values.
// Malformed entries are skipped.
func PagesFromQuery(values url.Values) map[int64]int {
	out := make(map[int64]int)
	for key := range values {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		groupID, err := strconv.ParseInt(strings.TrimPrefix(key, prefix), 10, 64)
		if err != nil || groupID < 0 {
			continue
		}
		out[groupID] = FromQuery(values, groupID)
	}
	return out
}
