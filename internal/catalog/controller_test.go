package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/showroom/internal/notify"
	"github.com/syntrixbase/showroom/pkg/model"
)

func newLoaderController(t *testing.T, names ...string) *Controller {
	t.Helper()
	return NewController("s1", newTestLoader(newCarStore(t, names...)), nil)
}

func TestController_ActivateBrowses(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	assert.Equal(t, StateIdle, c.View().State)

	view, err := c.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateBrowsing, view.State)
	assert.Equal(t, []string{"GOL", "COROLLA", "CIVIC"}, cardNames(view))
	assert.False(t, view.Pending)
	assert.Nil(t, view.Error)
	assert.Equal(t, uint64(1), view.Seq)
	assert.Equal(t, "s1", view.Session)
}

func TestController_PrefixSearchShowsMatches(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	_, err := c.Activate(context.Background())
	require.NoError(t, err)

	view, err := c.Submit(context.Background(), "co")
	require.NoError(t, err)
	assert.Equal(t, StateFiltered, view.State)
	assert.Equal(t, "co", view.Query)
	assert.Equal(t, []string{"COROLLA"}, cardNames(view))
	assert.Equal(t, 0, view.Revealed)
}

func TestController_NoMatchIsEmptyList(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	_, err := c.Activate(context.Background())
	require.NoError(t, err)

	view, err := c.Submit(context.Background(), "xyz")
	require.NoError(t, err)
	assert.Equal(t, StateFiltered, view.State)
	assert.NotNil(t, view.Cards)
	assert.Empty(t, view.Cards)
	assert.Nil(t, view.Error)
}

func TestController_NewSearchClearsReveals(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	view, err := c.Activate(context.Background())
	require.NoError(t, err)

	for _, card := range view.Cards {
		assert.True(t, c.MarkLoaded(card.ID, view.Seq))
	}
	view = c.View()
	assert.Equal(t, 3, view.Revealed)
	for _, card := range view.Cards {
		assert.True(t, card.Revealed)
	}

	view, err = c.Submit(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, []string{"GOL"}, cardNames(view))
	assert.False(t, view.Cards[0].Revealed)
	assert.NotContains(t, c.View().RevealedIDs, view.Cards[0].ID)
	assert.Equal(t, 0, view.Revealed)
}

func TestController_EmptyInputReturnsToBrowsing(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	_, err := c.Submit(context.Background(), "co")
	require.NoError(t, err)

	view, err := c.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, StateBrowsing, view.State)
	assert.Equal(t, []string{"GOL", "COROLLA", "CIVIC"}, cardNames(view))
}

func TestController_RevealResetOnEveryReplacement(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "COROLLA", "GOL")
	for _, input := range []string{"", "co", "co", "", "c", ""} {
		view, err := c.Submit(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 0, view.Revealed, input)
		for _, card := range view.Cards {
			c.MarkLoaded(card.ID, 0)
		}
		assert.Equal(t, len(view.Cards), c.View().Revealed)
	}
}

func TestController_MarkLoadedIdempotent(t *testing.T) {
	c := newLoaderController(t, "GOL")
	view, err := c.Activate(context.Background())
	require.NoError(t, err)
	id := view.Cards[0].ID

	assert.True(t, c.MarkLoaded(id, 0))
	assert.False(t, c.MarkLoaded(id, 0))
	assert.Contains(t, c.View().RevealedIDs, id)
	assert.Equal(t, 1, c.View().Revealed)
}

func TestController_MarkLoadedIgnoresForeignEvents(t *testing.T) {
	c := newLoaderController(t, "CIVIC", "GOL")
	first, err := c.Activate(context.Background())
	require.NoError(t, err)

	assert.False(t, c.MarkLoaded("not-displayed", 0))

	second, err := c.Submit(context.Background(), "gol")
	require.NoError(t, err)
	require.Len(t, second.Cards, 1)

	// A late image callback rendered for the first list names a car that is
	// also in the second list. It must not reveal it.
	assert.False(t, c.MarkLoaded(second.Cards[0].ID, first.Seq))
	assert.NotContains(t, c.View().RevealedIDs, second.Cards[0].ID)
	assert.True(t, c.MarkLoaded(second.Cards[0].ID, second.Seq))
}

// "c" then "co"; the "co" result arrives first, the "c" result later.
func TestController_LatestRequestWinsOutOfOrder(t *testing.T) {
	g := newGatedCatalog()
	c := NewController("s1", g, nil)

	type outcome struct {
		view View
		err  error
	}
	first := make(chan outcome, 1)
	second := make(chan outcome, 1)

	go func() {
		v, err := c.Submit(context.Background(), "c")
		first <- outcome{v, err}
	}()
	reqC := <-g.requests
	assert.Equal(t, "c", reqC.prefix)

	go func() {
		v, err := c.Submit(context.Background(), "co")
		second <- outcome{v, err}
	}()
	reqCO := <-g.requests
	assert.Equal(t, "co", reqCO.prefix)

	reqCO.reply <- fetchResult{vehicles: vehiclesNamed("COROLLA")}
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, []string{"COROLLA"}, cardNames(got.view))

	reqC.reply <- fetchResult{vehicles: vehiclesNamed("CIVIC", "COROLLA")}
	stale := <-first
	assert.ErrorIs(t, stale.err, ErrSuperseded)

	view := c.View()
	assert.Equal(t, []string{"COROLLA"}, cardNames(view))
	assert.Equal(t, "co", view.Query)
	assert.False(t, view.Pending)
}

// The reverse order: the stale result arrives first and must not be shown.
func TestController_StaleResultNeverInstalled(t *testing.T) {
	g := newGatedCatalog()
	c := NewController("s1", g, nil)

	first := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), "c")
		first <- err
	}()
	reqC := <-g.requests

	second := make(chan View, 1)
	go func() {
		v, _ := c.Submit(context.Background(), "co")
		second <- v
	}()
	reqCO := <-g.requests

	reqC.reply <- fetchResult{vehicles: vehiclesNamed("CIVIC", "COROLLA")}
	assert.ErrorIs(t, <-first, ErrSuperseded)

	view := c.View()
	assert.Empty(t, view.Cards)
	assert.True(t, view.Pending)
	assert.Equal(t, StateFiltered, view.State)

	reqCO.reply <- fetchResult{vehicles: vehiclesNamed("COROLLA")}
	assert.Equal(t, []string{"COROLLA"}, cardNames(<-second))
}

func TestController_SupersededFetchIsCanceled(t *testing.T) {
	block := make(chan context.Context, 1)
	cat := &ctxCatalog{seen: block}
	c := NewController("s1", cat, nil)

	go func() { _, _ = c.Submit(context.Background(), "c") }()
	firstCtx := <-block

	go func() { _, _ = c.Submit(context.Background(), "co") }()
	<-block

	select {
	case <-firstCtx.Done():
	case <-time.After(time.Second):
		t.Fatal("superseded fetch context was not canceled")
	}
	c.Close()
}

// ctxCatalog hands each call's context to the test and blocks until it is done.
type ctxCatalog struct {
	seen chan context.Context
}

func (c *ctxCatalog) LoadAll(ctx context.Context) ([]Vehicle, error) {
	return c.SearchByNamePrefix(ctx, "")
}

func (c *ctxCatalog) SearchByNamePrefix(ctx context.Context, _ string) ([]Vehicle, error) {
	c.seen <- ctx
	<-ctx.Done()
	return nil, model.ErrCanceled
}

func TestController_StoreUnavailableKeepsListAndNotifies(t *testing.T) {
	store := &flakyStore{DocumentStore: newCarStore(t, "CIVIC", "GOL")}
	n := new(MockNotifier)
	n.On("Notify", mock.Anything, mock.MatchedBy(func(x notify.Notification) bool {
		return x.Kind == notify.KindStoreUnavailable && x.Session == "s1" && x.Code == CodeStoreUnavailable && x.Retryable
	})).Return(nil).Once()
	n.On("Notify", mock.Anything, mock.MatchedBy(func(x notify.Notification) bool {
		return x.Kind == notify.KindRecovered
	})).Return(nil).Once()

	c := NewController("s1", newTestLoader(store), n)
	before, err := c.Activate(context.Background())
	require.NoError(t, err)
	c.MarkLoaded(before.Cards[0].ID, 0)

	store.fail.Store(true)
	view, err := c.Submit(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	require.NotNil(t, view.Error)
	assert.Equal(t, CodeStoreUnavailable, view.Error.Code)
	assert.True(t, view.Error.Retryable)
	assert.Equal(t, cardNames(before), cardNames(view))
	assert.Equal(t, 1, view.Revealed)
	assert.False(t, view.Pending)

	store.fail.Store(false)
	view, err = c.Retry(context.Background())
	require.NoError(t, err)
	assert.Nil(t, view.Error)
	assert.Equal(t, StateBrowsing, view.State)
	assert.Equal(t, 0, view.Revealed)

	n.AssertExpectations(t)
}

func TestController_RetryRepeatsLastSubmission(t *testing.T) {
	store := &flakyStore{DocumentStore: newCarStore(t, "CIVIC", "COROLLA", "GOL")}
	c := NewController("s1", newTestLoader(store), nil)

	store.fail.Store(true)
	view, err := c.Submit(context.Background(), "co")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Empty(t, view.Cards)
	assert.Equal(t, StateFiltered, view.State)

	store.fail.Store(false)
	view, err = c.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"COROLLA"}, cardNames(view))
	assert.Equal(t, "co", view.Query)
}

func TestController_FailedBrowseKeepsFilteredView(t *testing.T) {
	store := &flakyStore{DocumentStore: newCarStore(t, "CIVIC", "COROLLA", "GOL")}
	c := NewController("s1", newTestLoader(store), nil)

	_, err := c.Submit(context.Background(), "ci")
	require.NoError(t, err)

	store.fail.Store(true)
	view, err := c.Submit(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Equal(t, StateFiltered, view.State)
	assert.Equal(t, "ci", view.Query)
	assert.Equal(t, []string{"CIVIC"}, cardNames(view))
	require.NotNil(t, view.Error)

	// Retry repeats the browse, not the displayed filter.
	store.fail.Store(false)
	view, err = c.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateBrowsing, view.State)
	assert.Equal(t, "", view.Query)
	assert.Equal(t, []string{"GOL", "COROLLA", "CIVIC"}, cardNames(view))
}

func TestController_FailedFirstLoadStaysIdle(t *testing.T) {
	store := &flakyStore{DocumentStore: newCarStore(t, "GOL")}
	store.fail.Store(true)
	c := NewController("s1", newTestLoader(store), nil)

	view, err := c.Activate(context.Background())
	assert.ErrorIs(t, err, model.ErrStoreUnavailable)
	assert.Equal(t, StateIdle, view.State)
	assert.Empty(t, view.Cards)
	require.NotNil(t, view.Error)
}

func TestController_CallerCanceled(t *testing.T) {
	c := newLoaderController(t, "GOL")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	view, err := c.Activate(ctx)
	assert.ErrorIs(t, err, model.ErrCanceled)
	assert.Nil(t, view.Error)
	assert.False(t, view.Pending)
}

func TestController_Subscribe(t *testing.T) {
	c := newLoaderController(t, "GOL")
	updates, cancel := c.Subscribe()
	defer cancel()

	initial := <-updates
	assert.Equal(t, StateIdle, initial.View.State)

	_, err := c.Activate(context.Background())
	require.NoError(t, err)

	// Slow receivers only see the latest snapshot.
	u := <-updates
	assert.Equal(t, []string{"GOL"}, cardNames(u.View))
	assert.False(t, u.View.Pending)
	assert.Equal(t, 1, c.Subscribers())

	cancel()
	_, ok := <-updates
	assert.False(t, ok)
	assert.Equal(t, 0, c.Subscribers())
}

func TestController_SubscribeReceivesNotice(t *testing.T) {
	store := &flakyStore{DocumentStore: newCarStore(t, "GOL")}
	store.fail.Store(true)
	c := NewController("s1", newTestLoader(store), nil)

	updates, cancel := c.Subscribe()
	defer cancel()
	<-updates

	_, err := c.Activate(context.Background())
	require.Error(t, err)

	u := <-updates
	require.NotNil(t, u.Notice)
	assert.Equal(t, notify.KindStoreUnavailable, u.Notice.Kind)
	require.NotNil(t, u.View.Error)
}

func TestController_Close(t *testing.T) {
	c := newLoaderController(t, "GOL")
	updates, _ := c.Subscribe()
	<-updates

	c.Close()
	_, ok := <-updates
	assert.False(t, ok)

	_, err := c.Submit(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.False(t, c.MarkLoaded("car-0", 0))

	closedUpdates, _ := c.Subscribe()
	_, ok = <-closedUpdates
	assert.False(t, ok)
	c.Close()
}
