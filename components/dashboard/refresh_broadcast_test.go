package dashboard

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := WidgetEvent{AreaCode: AreaSidebar, Reason: "alert.read"}
	if err := hook.WidgetUpdated(context.Background(), event); err != nil {
		t.Fatalf("WidgetUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.AreaCode != event.AreaCode {
			t.Fatalf("expected area %s, got %s", event.AreaCode, e.AreaCode)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookDropsForSlowSubscribers(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer+4; i++ {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "refresh"}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBroadcastHookCloseEndsSubscriptions(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	assert.Equal(t, 1, hook.Subscribers())
	hook.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hook.Subscribers())
	cancel()

	late, _ := hook.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{
		AreaCode: AreaSidebar,
		Instance: WidgetInstance{ID: "3", DefinitionID: WidgetAlertsPanel},
		Reason:   "alert.read",
	}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg RefreshMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "dashboard.refresh", msg.Type)
	assert.Equal(t, "alert.read", msg.Event.Reason)
	assert.Equal(t, "3", msg.Event.Instance.ID)
}

func TestBroadcastHookServeSSE(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeSSE))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "preferences"}))

	reader := bufio.NewReader(resp.Body)
	var data string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			break
		}
	}
	var msg RefreshMessage
	require.NoError(t, json.Unmarshal([]byte(data), &msg))
	assert.Equal(t, "preferences", msg.Event.Reason)
}

func TestBroadcastHookFiltersByArea(t *testing.T) {
	hook := NewBroadcastHook()
	sidebar, cancel := hook.Subscribe(AreaSidebar, " ")
	defer cancel()
	all, cancelAll := hook.Subscribe()
	defer cancelAll()

	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaMain}))
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{AreaCode: AreaSidebar}))

	assert.Len(t, sidebar, 1)
	assert.Len(t, all, 2)
	assert.Equal(t, AreaSidebar, (<-sidebar).AreaCode)
}

func TestBroadcastHookCountsDroppedEvents(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	defer cancel()
	for i := 0; i < subscriberBuffer+3; i++ {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "refresh"}))
	}
	assert.Equal(t, uint64(3), hook.Dropped())
}

func TestRefreshMessageCarriesDataType(t *testing.T) {
	msg := NewRefreshMessage(WidgetEvent{Instance: WidgetInstance{Configuration: map[string]any{"data_type": "market"}}})
	assert.Equal(t, "market", msg.DataType)
	assert.Empty(t, NewRefreshMessage(WidgetEvent{Instance: WidgetInstance{ID: "alerts"}}).DataType)
}

func TestRequestAreasSplitsValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/stream?area=a,b&area=c", nil)
	assert.Equal(t, []string{"a", "b", "c"}, requestAreas(r))
}
