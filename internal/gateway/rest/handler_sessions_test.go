package rest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntrixbase/showroom/internal/catalog"
	"github.com/syntrixbase/showroom/internal/server"
	"github.com/syntrixbase/showroom/internal/server/ratelimit"
)

func TestCreateSession(t *testing.T) {
	mux, _, sessions := newTestServer(t, []string{"CIVIC", "COROLLA", "GOL"})

	rr := do(t, mux, "POST", "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	view := decodeView(t, rr)

	assert.NotEmpty(t, view.Session)
	assert.Equal(t, "/api/v1/sessions/"+view.Session, rr.Header().Get("Location"))
	assert.Equal(t, catalog.StateBrowsing, view.State)
	assert.Equal(t, []string{"GOL", "COROLLA", "CIVIC"}, cardNames(view))
	assert.False(t, view.Pending)
	assert.Nil(t, view.Error)
	assert.Equal(t, 1, sessions.Len())
}

func TestCreateSession_StoreUnavailable(t *testing.T) {
	mux, store, sessions := newTestServer(t, []string{"CIVIC"})
	store.down.Store(true)

	view := createSession(t, mux)
	require.NotNil(t, view.Error)
	assert.Equal(t, catalog.CodeStoreUnavailable, view.Error.Code)
	assert.True(t, view.Error.Retryable)
	assert.Empty(t, view.Cards)
	assert.Equal(t, 1, sessions.Len())

	store.down.Store(false)
	rr := do(t, mux, "POST", "/api/v1/sessions/"+view.Session+"/retry", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	assert.Nil(t, view.Error)
	assert.Equal(t, []string{"CIVIC"}, cardNames(view))
}

func TestCreateSession_ClientGoneDropsSession(t *testing.T) {
	mux, store, sessions := newTestServer(t, []string{"CIVIC"})
	store.stall.Store(true)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("POST", "/api/v1/sessions", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		mux.ServeHTTP(rr, req)
	}()

	require.Eventually(t, func() bool { return sessions.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("create did not return after cancel")
	}

	assert.Equal(t, server.StatusClientClosedRequest, rr.Code)
	assert.Empty(t, rr.Header().Get("Location"))
	assert.Equal(t, 0, sessions.Len())
}

func TestRoutes_CarryRequestDeadline(t *testing.T) {
	mux, store, _ := newTestServer(t, []string{"CIVIC"}, WithRequestTimeout(50*time.Millisecond))
	view := createSession(t, mux)
	store.stall.Store(true)

	start := time.Now()
	rr := do(t, mux, "POST", "/api/v1/sessions/"+view.Session+"/search", SearchRequest{Query: "ci"})

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, ErrCodeStoreUnavailable, decodeAPIError(t, rr).Code)
}

func TestCreateSession_RateLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Enabled: true, Requests: 1, Window: time.Minute})
	t.Cleanup(limiter.(ratelimit.Stoppable).Stop)
	mux, _, _ := newTestServer(t, nil, WithSessionRateLimiter(limiter, time.Minute))

	createSession(t, mux)
	rr := do(t, mux, "POST", "/api/v1/sessions", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
}

func TestGetSession(t *testing.T) {
	mux, _, _ := newTestServer(t, []string{"CIVIC"})
	created := createSession(t, mux)

	rr := do(t, mux, "GET", "/api/v1/sessions/"+created.Session, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, created.Session, decodeView(t, rr).Session)

	rr = do(t, mux, "GET", "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, ErrCodeNotFound, decodeAPIError(t, rr).Code)
}

func TestDeleteSession(t *testing.T) {
	mux, _, sessions := newTestServer(t, []string{"CIVIC"})
	created := createSession(t, mux)

	rr := do(t, mux, "DELETE", "/api/v1/sessions/"+created.Session, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, 0, sessions.Len())

	rr = do(t, mux, "DELETE", "/api/v1/sessions/"+created.Session, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearch(t *testing.T) {
	mux, _, _ := newTestServer(t, []string{"CIVIC", "COROLLA", "GOL"})
	created := createSession(t, mux)
	path := "/api/v1/sessions/" + created.Session + "/search"

	rr := do(t, mux, "POST", path, SearchRequest{Query: "co"})
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeView(t, rr)
	assert.Equal(t, catalog.StateFiltered, view.State)
	assert.Equal(t, "co", view.Query)
	assert.Equal(t, []string{"COROLLA"}, cardNames(view))

	rr = do(t, mux, "POST", path, SearchRequest{Query: "XYZ"})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	assert.Empty(t, view.Cards)
	assert.Nil(t, view.Error)

	rr = do(t, mux, "POST", path, SearchRequest{Query: ""})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	assert.Equal(t, catalog.StateBrowsing, view.State)
	assert.Len(t, view.Cards, 3)
}

func TestSearch_BadRequests(t *testing.T) {
	mux, _, _ := newTestServer(t, []string{"CIVIC"})
	created := createSession(t, mux)
	path := "/api/v1/sessions/" + created.Session + "/search"

	rr := do(t, mux, "POST", path, "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, ErrCodeBadRequest, decodeAPIError(t, rr).Code)

	big := fmt.Sprintf(`{"query":"%s"}`, strings.Repeat("a", DefaultMaxBodySize))
	rr = do(t, mux, "POST", path, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.Equal(t, ErrCodeRequestTooLarge, decodeAPIError(t, rr).Code)

	rr = do(t, mux, "POST", "/api/v1/sessions/nope/search", SearchRequest{Query: "a"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearch_StoreUnavailable(t *testing.T) {
	mux, store, _ := newTestServer(t, []string{"CIVIC", "COROLLA"})
	created := createSession(t, mux)
	store.down.Store(true)

	rr := do(t, mux, "POST", "/api/v1/sessions/"+created.Session+"/search", SearchRequest{Query: "c"})
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Equal(t, ErrCodeStoreUnavailable, decodeAPIError(t, rr).Code)

	rr = do(t, mux, "GET", "/api/v1/sessions/"+created.Session, nil)
	view := decodeView(t, rr)
	require.NotNil(t, view.Error)
	assert.Equal(t, catalog.CodeStoreUnavailable, view.Error.Code)

	rr = do(t, mux, "POST", "/api/v1/sessions/"+created.Session+"/retry", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestImageLoaded(t *testing.T) {
	mux, _, _ := newTestServer(t, []string{"CIVIC", "COROLLA"})
	created := createSession(t, mux)
	base := "/api/v1/sessions/" + created.Session

	rr := do(t, mux, "POST", fmt.Sprintf("%s/images/car-0/loaded?seq=%d", base, created.Seq), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	// Unknown vehicles and other result sets are accepted and ignored.
	rr = do(t, mux, "POST", base+"/images/car-9/loaded", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = do(t, mux, "POST", fmt.Sprintf("%s/images/car-1/loaded?seq=%d", base, created.Seq+5), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	view := decodeView(t, do(t, mux, "GET", base, nil))
	assert.Equal(t, 1, view.Revealed)
	assert.Equal(t, []string{"car-0"}, view.RevealedIDs)
	for _, c := range view.Cards {
		assert.Equal(t, c.ID == "car-0", c.Revealed, c.ID)
	}

	// A new search resets the reveal set.
	rr = do(t, mux, "POST", base+"/search", SearchRequest{Query: "civ"})
	require.Equal(t, http.StatusOK, rr.Code)
	view = decodeView(t, rr)
	assert.Equal(t, 0, view.Revealed)
	require.Len(t, view.Cards, 1)
	assert.False(t, view.Cards[0].Revealed)

	rr = do(t, mux, "POST", base+"/images/car-0/loaded?seq=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
