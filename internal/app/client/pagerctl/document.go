// Package pagerctl drives the paginated usage tables outside the browser.
//
// A Document holds one TableGroup per tool type, each showing one page of
// rows and the pager built for that page. A Controller installed on the
// Document turns pager clicks into page fetches and swaps the new rows and
// pager in when the fetch completes.
package pagerctl

import (
	"sync"

	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/pagerwidget"
)

// State is the fetch state of one table group.
type State int

const (
	Idle State = iota
	Loading
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Error:
		return "error"
	}
	return "unknown"
}

// RowView is one rendered row. DeleteLink is set only when the response
// that produced the row allowed deleting.
type RowView struct {
	Course      string
	Name        string
	Visible     bool
	Link        string
	DeleteLink  string
	ActivityRef int64
}

// TableGroup is the rendered state of one group. Read it through
// Document.Group, which returns a copy.
type TableGroup struct {
	ID        int64
	Name      string
	Total     int
	CanDelete bool
	Rows      []RowView
	Pager     pagerwidget.Widget
	State     State
	Busy      bool
	Err       string

	inflight int
}

// ClickEvent is a click on a pager control inside a group.
type ClickEvent struct {
	// GroupID is the group whose pager holds the control.
	GroupID int64
	// Href is the control's link target.
	Href string
	// Disabled is set for controls marked disabled or sitting in a
	// disabled item.
	Disabled bool

	defaultPrevented   bool
	propagationStopped bool
}

// ClickOn returns the event for clicking c in group groupID.
func ClickOn(groupID int64, c pagerwidget.Control) *ClickEvent {
	return &ClickEvent{GroupID: groupID, Href: c.Href, Disabled: c.Disabled || c.Kind == pagerwidget.KindIndicator}
}

func (e *ClickEvent) PreventDefault()          { e.defaultPrevented = true }
func (e *ClickEvent) StopPropagation()         { e.propagationStopped = true }
func (e *ClickEvent) DefaultPrevented() bool   { return e.defaultPrevented }
func (e *ClickEvent) PropagationStopped() bool { return e.propagationStopped }

// Document is the set of table groups on one report page plus its single
// pager-click subscription.
type Document struct {
	// Base is the page URL pager links are encoded onto.
	Base string

	mu     sync.Mutex
	groups map[int64]*TableGroup
	order  []int64

	slotMu  sync.Mutex
	slot    func(*ClickEvent)
	slotGen uint64

	// fallback sees events nobody claimed (the "navigation" a click would
	// cause without a controller).
	fallback func(*ClickEvent)
}

// NewDocument builds a document from the initial listing.
func NewDocument(base string, groups []usagepages.PageResult) *Document {
	d := &Document{Base: base, groups: make(map[int64]*TableGroup, len(groups))}
	for _, res := range groups {
		g := &TableGroup{ID: res.GroupID}
		render(g, res, base)
		d.groups[res.GroupID] = g
		d.order = append(d.order, res.GroupID)
	}
	return d
}

// OnUnhandled sets the handler for clicks that no subscriber claimed.
func (d *Document) OnUnhandled(fn func(*ClickEvent)) {
	d.slotMu.Lock()
	d.fallback = fn
	d.slotMu.Unlock()
}

// subscribe installs fn as the pager-click handler, replacing any
// previous one. The returned token removes fn through unsubscribe.
func (d *Document) subscribe(fn func(*ClickEvent)) uint64 {
	d.slotMu.Lock()
	defer d.slotMu.Unlock()
	d.slotGen++
	d.slot = fn
	return d.slotGen
}

// unsubscribe clears the handler installed under token. A handler
// installed since then is left alone.
func (d *Document) unsubscribe(token uint64) {
	d.slotMu.Lock()
	defer d.slotMu.Unlock()
	if d.slotGen == token {
		d.slot = nil
	}
}

// Dispatch delivers a click to the installed handler.
func (d *Document) Dispatch(ev *ClickEvent) {
	d.slotMu.Lock()
	fn, fallback := d.slot, d.fallback
	d.slotMu.Unlock()

	if fn != nil {
		fn(ev)
	}
	if !ev.propagationStopped && !ev.defaultPrevented && fallback != nil {
		fallback(ev)
	}
}

// GroupIDs returns the group ids in display order.
func (d *Document) GroupIDs() []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int64(nil), d.order...)
}

// Group returns a copy of one group's state.
func (d *Document) Group(id int64) (TableGroup, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[id]
	if !ok {
		return TableGroup{}, false
	}
	return g.snapshot(), true
}

func (g *TableGroup) snapshot() TableGroup {
	out := *g
	out.Rows = append([]RowView(nil), g.Rows...)
	out.Pager.Controls = append([]pagerwidget.Control(nil), g.Pager.Controls...)
	return out
}

// begin marks a group busy for one more fetch.
func (d *Document) begin(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[id]
	if !ok {
		return false
	}
	g.inflight++
	g.State = Loading
	g.Busy = true
	return true
}

// apply swaps in the rows and pager for res in one step.
func (d *Document) apply(res usagepages.PageResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[res.GroupID]
	if !ok {
		return
	}
	render(g, res, d.Base)
	g.Err = ""
	d.finish(g, Idle)
}

// fail records msg and leaves rows and pager as they were.
func (d *Document) fail(id int64, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.groups[id]
	if !ok {
		return
	}
	g.Err = msg
	d.finish(g, Error)
}

func (d *Document) finish(g *TableGroup, s State) {
	if g.inflight > 0 {
		g.inflight--
	}
	g.Busy = g.inflight > 0
	if g.Busy {
		g.State = Loading
		return
	}
	g.State = s
}

// render replaces g's rows and pager from res. The delete control follows
// res.CanDelete only.
func render(g *TableGroup, res usagepages.PageResult, base string) {
	rows := make([]RowView, 0, len(res.Rows))
	for _, r := range res.Rows {
		v := RowView{
			Course:      r.Course,
			Name:        r.Name,
			Visible:     r.Visible == 1,
			Link:        r.Link,
			ActivityRef: r.ActivityRef,
		}
		if res.CanDelete && r.ShowDelete {
			v.DeleteLink = r.DeleteLink
		}
		rows = append(rows, v)
	}
	g.Name = res.GroupName
	g.Total = res.Total
	g.CanDelete = res.CanDelete
	g.Rows = rows
	g.Pager = pagerwidget.Build(res.PagerMeta(), base)
}
