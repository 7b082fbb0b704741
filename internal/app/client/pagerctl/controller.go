package pagerctl

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/ltiusage/internal/app/store/queries/usagepages"
	"github.com/dalemusser/ltiusage/internal/app/system/pagelink"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds one page fetch.
	DefaultTimeout = 15 * time.Second
	// DefaultSettleDelay is the pause between a swap and the scroll.
	DefaultSettleDelay = 10 * time.Millisecond
	// DefaultScrollOffset is the gap kept above a scrolled-to table.
	DefaultScrollOffset = 20
)

// Fetcher loads one page of one group. *usageclient.Client satisfies it.
type Fetcher interface {
	FetchPage(ctx context.Context, groupID int64, page int) (usagepages.PageResult, error)
}

// Controller turns pager clicks into fetches and redraws.
type Controller struct {
	Fetch        Fetcher
	Timeout      time.Duration
	SettleDelay  time.Duration
	ScrollOffset int

	// Scroll brings a group into view with offset pixels (or lines) above it.
	Scroll func(groupID int64, offset int)
	// Changed is called after a group's state changes.
	Changed func(groupID int64)

	Log *zap.Logger

	mu  sync.Mutex
	doc *Document
	sub uint64
	wg  sync.WaitGroup
}

// New returns a controller with the default timeout, settle delay and
// scroll offset.
func New(f Fetcher, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		Fetch:        f,
		Timeout:      DefaultTimeout,
		SettleDelay:  DefaultSettleDelay,
		ScrollOffset: DefaultScrollOffset,
		Log:          logger,
	}
}

// Init installs the controller on doc. Calling it again, on the same or
// another controller, replaces the handler rather than adding one. A
// controller moved to a new document stops handling clicks on the old one.
func (c *Controller) Init(doc *Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc != nil && c.doc != doc {
		c.doc.unsubscribe(c.sub)
	}
	c.doc = doc
	c.sub = doc.subscribe(func(ev *ClickEvent) { c.handle(doc, ev) })
}

// Wait blocks until every fetch and pending scroll has completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// handle claims every pager click so none reaches navigation, then
// fetches only for enabled controls whose link names their own group.
func (c *Controller) handle(doc *Document, ev *ClickEvent) {
	ev.PreventDefault()
	ev.StopPropagation()

	if ev.Disabled {
		return
	}
	t, ok := pagelink.Decode(ev.Href)
	if !ok || t.GroupID != ev.GroupID {
		c.Log.Debug("ignoring pager link", zap.Int64("group_id", ev.GroupID), zap.String("href", ev.Href))
		return
	}
	if !doc.begin(t.GroupID) {
		return
	}
	c.notify(t.GroupID)

	c.wg.Add(1)
	go c.load(doc, t)
}

func (c *Controller) load(doc *Document, t pagelink.Target) {
	defer c.wg.Done()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := c.Fetch.FetchPage(ctx, t.GroupID, t.Page)
	if err != nil {
		c.Log.Warn("page fetch failed",
			zap.Int64("group_id", t.GroupID),
			zap.Int("page", t.Page),
			zap.Error(err))
		doc.fail(t.GroupID, "Could not load this page. Try again.")
		c.notify(t.GroupID)
		return
	}
	if res.GroupID != t.GroupID {
		c.Log.Warn("page fetch returned another group",
			zap.Int64("want", t.GroupID), zap.Int64("got", res.GroupID))
		doc.fail(t.GroupID, "Could not load this page. Try again.")
		c.notify(t.GroupID)
		return
	}

	doc.apply(res)
	c.notify(t.GroupID)
	c.scrollLater(t.GroupID)
}

func (c *Controller) scrollLater(groupID int64) {
	if c.Scroll == nil {
		return
	}
	c.wg.Add(1)
	time.AfterFunc(c.SettleDelay, func() {
		defer c.wg.Done()
		c.Scroll(groupID, c.ScrollOffset)
	})
}

func (c *Controller) notify(groupID int64) {
	if c.Changed != nil {
		c.Changed(groupID)
	}
}
