package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/pkg/model"
)

var (
	// ErrSuperseded is returned by a fetch whose result was discarded because a
	// newer request was issued on the same controller.
	ErrSuperseded = errors.New("request superseded by a newer one")
	// ErrSessionClosed is returned by a controller after Close.
	ErrSessionClosed = errors.New("session closed")
)

const unavailableMessage = "Vehicle listings are temporarily unavailable. Please try again."

// Controller owns the search state, the displayed vehicle list and the reveal
// tracker of one catalog session.
//
// Every fetch is stamped with a sequence number. A completion is installed only
// if its number is still the latest issued, so results arriving out of order
// can never overwrite a newer list. Superseded fetches are also canceled.
type Controller struct {
	id       string
	catalog  Catalog
	notifier notify.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	machine  *fsm.FSM
	input    string // query of the displayed list
	retry    string // last submitted input
	vehicles []Vehicle
	present  map[string]struct{}
	tracker  *RevealTracker
	issued   uint64
	applied  uint64
	pending  bool
	cancel   context.CancelFunc
	lastErr  *ViewError
	subs     map[uint64]chan Update
	nextSub  uint64
	closed   bool
}

// NewController creates an idle controller. Call Activate to load the catalog.
func NewController(id string, catalog Catalog, notifier notify.Notifier) *Controller {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	c := &Controller{
		id:       id,
		catalog:  catalog,
		notifier: notifier,
		logger:   slog.Default().With("component", "catalog-controller", "session", id),
		vehicles: []Vehicle{},
		present:  make(map[string]struct{}),
		tracker:  NewRevealTracker(),
		subs:     make(map[uint64]chan Update),
	}
	c.machine = newSearchMachine(func(src, dst string) {
		c.logger.Debug("Search state changed", "from", src, "to", dst)
	})
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Activate enters browsing and loads the whole catalog.
func (c *Controller) Activate(ctx context.Context) (View, error) {
	return c.Submit(ctx, "")
}

// Submit applies a search input. An empty input returns to browsing once the
// full catalog has loaded. Any other input enters filtered mode, clears the list
// right away and runs a prefix search.
//
// The returned view reflects the controller after the fetch settles. When a newer
// Submit overtook this one, ErrSuperseded is returned with the current view.
func (c *Controller) Submit(ctx context.Context, input string) (View, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return View{}, ErrSessionClosed
	}

	c.retry = input
	seq, fetchCtx := c.beginLocked(ctx)
	if input != "" {
		c.input = input
		c.transitionLocked(ctx, eventFilter)
		c.installLocked([]Vehicle{})
	}
	c.broadcastLocked(nil)
	c.mu.Unlock()

	var vehicles []Vehicle
	var err error
	if input == "" {
		vehicles, err = c.catalog.LoadAll(fetchCtx)
	} else {
		vehicles, err = c.catalog.SearchByNamePrefix(fetchCtx, input)
	}
	return c.complete(ctx, seq, input, vehicles, err)
}

// Retry re-runs the last submission.
func (c *Controller) Retry(ctx context.Context) (View, error) {
	c.mu.Lock()
	input := c.retry
	c.mu.Unlock()
	return c.Submit(ctx, input)
}

// MarkLoaded records that the primary image of vehicle id finished loading.
// seq is the View.Seq the image was rendered for; 0 means the current set.
// Events for another result set or for vehicles not displayed are ignored.
// It reports whether the vehicle became revealed.
func (c *Controller) MarkLoaded(id string, seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || (seq != 0 && seq != c.applied) {
		return false
	}
	if _, ok := c.present[id]; !ok {
		return false
	}
	if !c.tracker.MarkLoaded(id) {
		return false
	}
	c.broadcastLocked(nil)
	return true
}

// View returns a snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Subscribe returns a channel receiving a snapshot after every change, starting
// with the current one. Slow receivers only see the latest snapshot. The channel
// is closed by the returned cancel func or by Close.
func (c *Controller) Subscribe() (<-chan Update, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Update, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- Update{View: c.viewLocked()}

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (c *Controller) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close cancels any in-flight fetch and closes all subscriptions.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Controller) beginLocked(ctx context.Context) (uint64, context.Context) {
	if c.cancel != nil {
		c.cancel()
	}
	c.issued++
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.pending = true
	return c.issued, fetchCtx
}

func (c *Controller) transitionLocked(ctx context.Context, event string) {
	if err := c.machine.Event(context.WithoutCancel(ctx), event); isFsmRealError(err) {
		c.logger.Error("Search state transition failed", "event", event, "error", err)
	}
}

// installLocked replaces the list. The reveal set always starts empty for a new list.
func (c *Controller) installLocked(vehicles []Vehicle) {
	c.vehicles = vehicles
	clear(c.present)
	for _, v := range vehicles {
		c.present[v.ID] = struct{}{}
	}
	c.tracker.Reset()
}

// complete settles fetch seq. A failed browse leaves the state, query and list
// untouched, so the view keeps describing the list it shows.
func (c *Controller) complete(ctx context.Context, seq uint64, input string, vehicles []Vehicle, err error) (View, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return View{}, ErrSessionClosed
	}
	if seq != c.issued {
		staleDiscards.Inc()
		c.logger.Debug("Discarding stale result", "seq", seq, "latest", c.issued)
		view := c.viewLocked()
		c.mu.Unlock()
		return view, ErrSuperseded
	}

	c.cancel()
	c.cancel = nil
	c.pending = false

	var notice *notify.Notification
	switch {
	case err == nil:
		if c.lastErr != nil {
			notice = c.noticeLocked(notify.KindRecovered, "", "Vehicle listings are available again.", false)
		}
		c.lastErr = nil
		c.applied = seq
		if input == "" {
			c.input = ""
			c.transitionLocked(ctx, eventBrowse)
		}
		c.installLocked(vehicles)
	case errors.Is(err, model.ErrCanceled):
		// The caller went away. Nothing to install or report.
	default:
		c.lastErr = &ViewError{Code: CodeStoreUnavailable, Message: unavailableMessage, Retryable: true}
		notice = c.noticeLocked(notify.KindStoreUnavailable, CodeStoreUnavailable, unavailableMessage, true)
	}

	c.broadcastLocked(notice)
	view := c.viewLocked()
	c.mu.Unlock()

	if notice != nil {
		if nerr := c.notifier.Notify(context.WithoutCancel(ctx), *notice); nerr != nil {
			c.logger.Warn("Failed to deliver notification", "kind", notice.Kind, "error", nerr)
		}
	}
	return view, err
}

func (c *Controller) noticeLocked(kind notify.Kind, code, msg string, retryable bool) *notify.Notification {
	return &notify.Notification{
		Kind:      kind,
		Session:   c.id,
		Code:      code,
		Message:   msg,
		Retryable: retryable,
		Time:      time.Now(),
	}
}

func (c *Controller) viewLocked() View {
	cards := make([]Card, len(c.vehicles))
	for i, v := range c.vehicles {
		cards[i] = Card{
			Vehicle:  v,
			Primary:  v.PrimaryImage(),
			Revealed: c.tracker.IsLoaded(v.ID),
		}
	}
	view := View{
		Session:     c.id,
		State:       State(c.machine.Current()),
		Query:       c.input,
		Seq:         c.applied,
		Pending:     c.pending,
		Cards:       cards,
		Revealed:    c.tracker.Len(),
		RevealedIDs: c.tracker.Snapshot(),
	}
	if c.lastErr != nil {
		e := *c.lastErr
		view.Error = &e
	}
	return view
}

// broadcastLocked hands the current snapshot to every subscriber without blocking.
// A pending snapshot is replaced; its notice is carried over if the new one has none.
func (c *Controller) broadcastLocked(notice *notify.Notification) {
	if len(c.subs) == 0 {
		return
	}
	u := Update{View: c.viewLocked(), Notice: notice}
	for _, ch := range c.subs {
		out := u
		select {
		case ch <- out:
			continue
		default:
		}
		select {
		case old := <-ch:
			if out.Notice == nil {
				out.Notice = old.Notice
			}
		default:
		}
		select {
		case ch <- out:
		default:
		}
	}
}
