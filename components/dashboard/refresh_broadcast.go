package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	subscriberBuffer = 8
	pingInterval     = 30 * time.Second
	writeTimeout     = 5 * time.Second
)

// RefreshMessage is the wire envelope pushed to dashboard clients. DataType is set
// when the widget draws a dataset so clients can refetch only that series.
type RefreshMessage struct {
	Type     string      `json:"type"`
	Event    WidgetEvent `json:"event"`
	DataType string      `json:"data_type,omitempty"`
	At       time.Time   `json:"at"`
}

// NewRefreshMessage wraps an event for transport.
func NewRefreshMessage(event WidgetEvent) RefreshMessage {
	msg := RefreshMessage{Type: "dashboard.refresh", Event: event, At: time.Now().UTC()}
	if _, ok := event.Instance.Configuration["data_type"]; ok {
		msg.DataType = string(instanceDataType(event.Instance))
	}
	return msg
}

type subscriber struct {
	ch    chan WidgetEvent
	areas map[string]bool
}

func (s subscriber) wants(event WidgetEvent) bool {
	return len(s.areas) == 0 || s.areas[event.AreaCode]
}

// BroadcastHook fans widget events (alert reads, dataset refreshes, preference saves)
// out to in-process subscribers. A full subscriber buffer drops the event.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]subscriber
	next    int
	closed  bool
	dropped atomic.Uint64
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]subscriber)}
}

// WidgetUpdated delivers event to every subscriber watching its area.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe returns a channel of widget events and a cancel func. With areas set only
// events for those areas are delivered. After Close the returned channel is already closed.
func (h *BroadcastHook) Subscribe(areas ...string) (<-chan WidgetEvent, func()) {
	sub := subscriber{ch: make(chan WidgetEvent, subscriberBuffer)}
	for _, area := range areas {
		if area = strings.TrimSpace(area); area != "" {
			if sub.areas == nil {
				sub.areas = map[string]bool{}
			}
			sub.areas[area] = true
		}
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := h.next
	h.next++
	h.subs[id] = sub
	return sub.ch, func() { h.unsubscribe(id) }
}

func (h *BroadcastHook) unsubscribe(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports how many events were discarded because a subscriber was behind.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

// Close ends every subscription. Streams return once their channel drains.
func (h *BroadcastHook) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}

// requestAreas reads repeated or comma separated ?area= values.
func requestAreas(r *http.Request) []string {
	var out []string
	for _, v := range r.URL.Query()["area"] {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams refresh messages as JSON,
// pinging idle connections so proxies keep them open.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(requestAreas(r)...)
	defer cancel()
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(NewRefreshMessage(event)); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams refresh messages as Server-Sent Events with increasing ids.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(requestAreas(r)...)
	defer cancel()

	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}
	if _, err := fmt.Fprint(w, "retry: 3000\n\n"); err != nil {
		return
	}
	flush()

	for seq := 1; ; seq++ {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(NewRefreshMessage(event))
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: refresh\ndata: %s\n\n", seq, payload); err != nil {
				return
			}
			flush()
		}
	}
}
