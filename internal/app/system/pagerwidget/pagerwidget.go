// Package pagerwidget builds the pager shown under each usage table.
//
// The widget is regenerated from pagination metadata every time a page is
// rendered; nothing is patched in place. The server templates and the pager
// controller both call Build, so a pager produced by the first render and
// one produced after a fetch have the same controls in the same order.
package pagerwidget

import (
	"fmt"

	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
)

// Kind identifies a pager control.
type Kind string

const (
	KindFirst     Kind = "first"
	KindPrev      Kind = "prev"
	KindIndicator Kind = "indicator"
	KindNext      Kind = "next"
	KindLast      Kind = "last"
)

// Meta is the pagination metadata a widget is built from.
// Page, Prev, Next are zero-based.
type Meta struct {
	GroupID    int64
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Prev       int
	Next       int
}

// Control is one element of the pager. Indicator controls carry only a
// Label. Navigable controls carry an Href encoded with pagelink; a Disabled
// control still has an Href but must not be followed.
type Control struct {
	Kind     Kind
	Label    string
	Href     string
	Page     int
	Disabled bool
}

// Navigable reports whether following the control should load a page.
func (c Control) Navigable() bool {
	return c.Kind != KindIndicator && !c.Disabled && c.Href != ""
}

// Widget is a fully built pager for one table group.
type Widget struct {
	GroupID  int64
	Controls []Control
}

// Build produces the pager for meta. base is the URL the page links are
// encoded onto (see pagelink.Encode).
//
// Order: first, previous (only if there is one), "Page X of Y",
// next (only if there is one), last.
func Build(meta Meta, base string) Widget {
	totalPages := meta.TotalPages
	if totalPages < 1 {
		totalPages = 1
	}
	last := totalPages - 1

	link := func(page int) string { return pagelink.Encode(base, meta.GroupID, page) }

	controls := make([]Control, 0, 5)
	controls = append(controls, Control{
		Kind:     KindFirst,
		Label:    "« First",
		Href:     link(0),
		Page:     0,
		Disabled: meta.Page <= 0,
	})
	if meta.HasPrev {
		controls = append(controls, Control{
			Kind:  KindPrev,
			Label: "‹ Previous",
			Href:  link(meta.Prev),
			Page:  meta.Prev,
		})
	}
	controls = append(controls, Control{
		Kind:  KindIndicator,
		Label: Indicator(meta.Page, totalPages),
	})
	if meta.HasNext {
		controls = append(controls, Control{
			Kind:  KindNext,
			Label: "Next ›",
			Href:  link(meta.Next),
			Page:  meta.Next,
		})
	}
	controls = append(controls, Control{
		Kind:     KindLast,
		Label:    "Last »",
		Href:     link(last),
		Page:     last,
		Disabled: meta.Page >= last,
	})

	return Widget{GroupID: meta.GroupID, Controls: controls}
}

// Indicator returns the "Page X of Y" text for a zero-based page.
func Indicator(page, totalPages int) string {
	return fmt.Sprintf("Page %d of %d", page+1, totalPages)
}

// Find returns the first control of the given kind.
func (w Widget) Find(kind Kind) (Control, bool) {
	for _, c := range w.Controls {
		if c.Kind == kind {
			return c, true
		}
	}
	return Control{}, false
}

// Text renders the widget as a single line, e.g. for terminals and logs.
// Disabled controls are shown in brackets.
func (w Widget) Text() string {
	out := ""
	for i, c := range w.Controls {
		if i > 0 {
			out += "  "
		}
		if c.Disabled {
			out += "[" + c.Label + "]"
			continue
		}
		out += c.Label
	}
	return out
}
