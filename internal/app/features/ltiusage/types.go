// internal/app/features/ltiusage/types.go
package ltiusage

import (
	"net/url"
	"strconv"

	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"github.com/dalemusser/ltiusage/internal/app/system/labels"
	"github.com/dalemusser/ltiusage/internal/app/system/pagerwidget"
	"github.com/dalemusser/ltiusage/internal/app/system/viewdata"
)

const (
	listPath     = "/ltiusage"
	fragmentPath = "/ltiusage/groups/"
	tableTarget  = "x-table-wrap"
)

// rowVM is one table row.
type rowVM struct {
	usagepages.Row
	VisibleLabel string
}

// controlVM is one pager control. Href is the full-page link (works
// without JavaScript); HXGet is the fragment the control swaps in.
type controlVM struct {
	pagerwidget.Control
	HXGet string
}

// groupVM is one table group: a tool type, one page of its activities
// and the pager.
type groupVM struct {
	ID        int64
	Name      string
	Total     int
	Rows      []rowVM
	CanDelete bool
	Controls  []controlVM
	Indicator string

	// Anchor is the element id the fragment replaces.
	Anchor string
	// ReturnURL brings the delete form back to this page.
	ReturnURL string
	CSRFToken string
	S         labels.Strings
}

// listData is the view model for the full report.
type listData struct {
	viewdata.BaseVM

	S      labels.Strings
	Groups []groupVM
}

// groupAnchor is the DOM id of a table group.
func groupAnchor(id int64) string {
	return "ltiusage-group-" + strconv.FormatInt(id, 10)
}

// fragmentURL is the HTMX endpoint for one group.
func fragmentURL(id int64) string {
	return fragmentPath + strconv.FormatInt(id, 10)
}

// buildGroupVM turns a page into its view model. query is the current
// full-page query; the other groups' page parameters are kept in every
// link so navigating one table does not reset the others.
func buildGroupVM(res usagepages.PageResult, query url.Values, csrfToken string, s labels.Strings) groupVM {
	base := listPath
	if enc := query.Encode(); enc != "" {
		base += "?" + enc
	}

	widget := pagerwidget.Build(res.PagerMeta(), base)
	controls := make([]controlVM, 0, len(widget.Controls))
	indicator := ""
	for _, c := range widget.Controls {
		cv := controlVM{Control: c}
		if c.Kind == pagerwidget.KindIndicator {
			indicator = c.Label
		} else {
			cv.HXGet = pagelink.Encode(fragmentURL(res.GroupID), res.GroupID, c.Page)
		}
		controls = append(controls, cv)
	}

	rows := make([]rowVM, 0, len(res.Rows))
	for _, r := range res.Rows {
		label := s.No
		if r.Visible == 1 {
			label = s.Yes
		}
		rows = append(rows, rowVM{Row: r, VisibleLabel: label})
	}

	return groupVM{
		ID:        res.GroupID,
		Name:      res.GroupName,
		Total:     res.Total,
		Rows:      rows,
		CanDelete: res.CanDelete,
		Controls:  controls,
		Indicator: indicator,
		Anchor:    groupAnchor(res.GroupID),
		ReturnURL: pagelink.Encode(base, res.GroupID, res.Page),
		CSRFToken: csrfToken,
		S:         s,
	}
}
