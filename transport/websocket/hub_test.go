package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub.watchers == nil {
		t.Error("Hub watchers map is nil")
	}
	if hub.events == nil || hub.join == nil || hub.leave == nil || hub.done == nil {
		t.Error("Hub channels not initialized")
	}
}

func TestHubAddRemove(t *testing.T) {
	hub := NewHub()
	first := newWatcher(nil, "a1b2")
	second := newWatcher(nil, "a1b2")

	hub.add(first)
	hub.add(second)
	if len(hub.watchers["a1b2"]) != 2 {
		t.Fatalf("Expected 2 watchers, got %d", len(hub.watchers["a1b2"]))
	}

	hub.remove(first)
	if _, ok := hub.watchers["a1b2"][second]; !ok {
		t.Error("second watcher should still be registered")
	}
	if _, open := <-first.outbox; open {
		t.Error("Expected first outbox to be closed")
	}

	hub.remove(second)
	if _, exists := hub.watchers["a1b2"]; exists {
		t.Error("Session should be cleaned up after last watcher leaves")
	}

	// Removing twice is a no-op
	hub.remove(second)
}

func TestHubDeliver(t *testing.T) {
	hub := NewHub()
	watching := newWatcher(nil, "a1b2")
	other := newWatcher(nil, "c3d4")
	hub.add(watching)
	hub.add(other)

	sent := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hub.deliver(Message{
		SessionID: "a1b2",
		Event:     EventRunCompleted,
		At:        sent,
		Data:      map[string]interface{}{"algorithm": "astar"},
	})

	select {
	case frame := <-watching.outbox:
		var msg struct {
			SessionID string                 `json:"session_id"`
			Event     string                 `json:"event"`
			At        time.Time              `json:"at"`
			Data      map[string]interface{} `json:"data"`
		}
		if err := json.Unmarshal(frame, &msg); err != nil {
			t.Fatalf("Failed to unmarshal frame: %v", err)
		}
		if msg.SessionID != "a1b2" || msg.Event != EventRunCompleted || !msg.At.Equal(sent) {
			t.Errorf("Unexpected message: %+v", msg)
		}
		if msg.Data["algorithm"] != "astar" {
			t.Errorf("Expected algorithm astar, got %v", msg.Data["algorithm"])
		}
	default:
		t.Fatal("Watcher did not receive the event")
	}

	select {
	case <-other.outbox:
		t.Error("Watcher of another session should not receive the event")
	default:
	}
}

func TestHubDropsSlowWatcher(t *testing.T) {
	hub := NewHub()
	slow := &watcher{sessionID: "a1b2", outbox: make(chan []byte)}
	hub.add(slow)

	hub.deliver(Message{SessionID: "a1b2", Event: EventMapUpdated})

	if _, exists := hub.watchers["a1b2"]; exists {
		t.Error("Expected slow watcher to be dropped")
	}
}

func TestHubPublishQueues(t *testing.T) {
	hub := NewHub()

	hub.RunCompleted("a1b2", "record")
	hub.MapUpdated("a1b2", "metadata")

	for _, want := range []string{EventRunCompleted, EventMapUpdated} {
		select {
		case msg := <-hub.events:
			if msg.Event != want || msg.SessionID != "a1b2" {
				t.Errorf("Expected %s for a1b2, got %+v", want, msg)
			}
			if msg.At.IsZero() {
				t.Error("Expected event timestamp")
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("No %s event queued", want)
		}
	}
}

func TestHubFoldsSessionCase(t *testing.T) {
	hub := NewHub()
	w := newWatcher(nil, "999c")
	hub.add(w)

	hub.RunCompleted("999C", "record")
	msg := <-hub.events
	if msg.SessionID != "999c" {
		t.Fatalf("Expected event for 999c, got %q", msg.SessionID)
	}
	hub.deliver(msg)

	select {
	case <-w.outbox:
	default:
		t.Error("Watcher did not receive an event published with an upper-case ID")
	}

	upper := newWatcher(nil, " A1B2 ")
	if upper.sessionID != "a1b2" {
		t.Errorf("Expected watcher key a1b2, got %q", upper.sessionID)
	}
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Stop()
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}

	// Publishing on a stopped hub must not block once the buffer is full
	finished := make(chan struct{})
	go func() {
		for i := 0; i < eventBuffer+1; i++ {
			hub.Publish("a1b2", EventMapUpdated, nil)
		}
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a stopped hub")
	}
}

func TestWebSocketEventDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=a1b2"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	// Give some time for registration
	time.Sleep(50 * time.Millisecond)

	hub.RunCompleted("a1b2", map[string]interface{}{"id": "run-1", "status": "success"})
	hub.MapUpdated("a1b2", map[string]interface{}{"valid": true})

	for _, want := range []string{EventRunCompleted, EventMapUpdated} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read WebSocket message: %v", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if msg.SessionID != "a1b2" || msg.Event != want {
			t.Errorf("Expected %s for a1b2, got %+v", want, msg)
		}
	}
}
