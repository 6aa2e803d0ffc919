package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wtfmahe/PeeP/internal/logging"
)

func TestBridge_ForwardsFilteredChanges(t *testing.T) {
	feed := NewMemoryFeed()
	srv := httptest.NewServer(NewBridge(feed, nil, logging.Discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?table=peeps&event=INSERT&filter=to_user_id=eq.me"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, feed.Publish(ctx, mustChange(t, "peeps", Insert, row{ToUserID: "other"})))
	require.NoError(t, feed.Publish(ctx, mustChange(t, "peeps", Insert, row{ToUserID: "me", Count: 7})))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Change
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "peeps", got.Table)
	assert.Equal(t, Insert, got.Type)

	var r row
	require.NoError(t, got.Decode(&r))
	assert.Equal(t, "me", r.ToUserID)
	assert.Equal(t, 7, r.Count)
}

func TestBridge_ClientCloseReleasesSubscription(t *testing.T) {
	feed := NewMemoryFeed()
	srv := httptest.NewServer(NewBridge(feed, nil, logging.Discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?table=user_status"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return feed.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBridge_RejectsBadFilter(t *testing.T) {
	srv := httptest.NewServer(NewBridge(NewMemoryFeed(), nil, logging.Discard()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "?event=INSERT")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBridge_Authorizer(t *testing.T) {
	feed := NewMemoryFeed()
	authorize := func(_ *http.Request, filter Filter) (func(Change) bool, error) {
		if filter.Table != "peeps" {
			return nil, ErrForbidden
		}
		return func(c Change) bool {
			var r row
			return c.Decode(&r) == nil && r.Count > 0
		}, nil
	}
	srv := httptest.NewServer(NewBridge(feed, authorize, logging.Discard()))
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(base+"?table=user_status", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, feed.Subscribers())

	conn, _, err := websocket.DefaultDialer.Dial(base+"?table=peeps", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return feed.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, feed.Publish(ctx, mustChange(t, "peeps", Insert, row{ToUserID: "hidden"})))
	require.NoError(t, feed.Publish(ctx, mustChange(t, "peeps", Insert, row{ToUserID: "shown", Count: 1})))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Change
	require.NoError(t, conn.ReadJSON(&got))
	var r row
	require.NoError(t, got.Decode(&r))
	assert.Equal(t, "shown", r.ToUserID)
}
