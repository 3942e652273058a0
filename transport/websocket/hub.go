package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames; anything larger is a misbehaving peer.
	maxMessageSize = 512

	// Per-watcher backlog. A watcher that falls this far behind is dropped.
	watcherBacklog = 32

	// Pending events buffered before publishing blocks.
	eventBuffer = 64
)

// Events pushed to session watchers
const (
	EventRunCompleted = "run_completed"
	EventMapUpdated   = "map_updated"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Watchers are read-only; any origin may subscribe
		return true
	},
}

// Message is one event frame sent to the watchers of a session
type Message struct {
	SessionID string      `json:"session_id"`
	Event     string      `json:"event"`
	At        time.Time   `json:"at"`
	Data      interface{} `json:"data,omitempty"`
}

// watcher is one connection following a session's missions
type watcher struct {
	conn      *websocket.Conn
	sessionID string
	outbox    chan []byte
}

func newWatcher(conn *websocket.Conn, sessionID string) *watcher {
	return &watcher{conn: conn, sessionID: sessionKey(sessionID), outbox: make(chan []byte, watcherBacklog)}
}

// sessionKey folds IDs so watchers and publishers agree regardless of case
func sessionKey(sessionID string) string {
	return strings.ToLower(strings.TrimSpace(sessionID))
}

// Hub fans mission events out to the watchers of each session.
// All watcher bookkeeping happens on the Run goroutine.
type Hub struct {
	watchers map[string]map[*watcher]struct{}

	events chan Message
	join   chan *watcher
	leave  chan *watcher

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. Call Run to start delivering events.
func NewHub() *Hub {
	return &Hub{
		watchers: make(map[string]map[*watcher]struct{}),
		events:   make(chan Message, eventBuffer),
		join:     make(chan *watcher),
		leave:    make(chan *watcher),
		done:     make(chan struct{}),
	}
}

// Run delivers events until Stop is called, then disconnects every watcher.
func (h *Hub) Run() {
	for {
		select {
		case w := <-h.join:
			h.add(w)
		case w := <-h.leave:
			h.remove(w)
		case msg := <-h.events:
			h.deliver(msg)
		case <-h.done:
			for _, set := range h.watchers {
				for w := range set {
					h.remove(w)
				}
			}
			return
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and subscribes the connection to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	wt := newWatcher(conn, sessionID)
	select {
	case h.join <- wt:
	case <-h.done:
		conn.Close()
		return
	}

	go wt.writeLoop()
	go h.readLoop(wt)
}

// Publish queues event for the watchers of sessionID. It never blocks after Stop.
func (h *Hub) Publish(sessionID, event string, data interface{}) {
	msg := Message{SessionID: sessionKey(sessionID), Event: event, At: time.Now().UTC(), Data: data}
	select {
	case h.events <- msg:
	case <-h.done:
	}
}

// RunCompleted announces a finished run on a session
func (h *Hub) RunCompleted(sessionID string, record interface{}) {
	h.Publish(sessionID, EventRunCompleted, record)
}

// MapUpdated announces a changed session map
func (h *Hub) MapUpdated(sessionID string, metadata interface{}) {
	h.Publish(sessionID, EventMapUpdated, metadata)
}

func (h *Hub) add(w *watcher) {
	set, ok := h.watchers[w.sessionID]
	if !ok {
		set = make(map[*watcher]struct{})
		h.watchers[w.sessionID] = set
	}
	set[w] = struct{}{}
	log.Printf("Session %s: watcher joined (%d watching)", w.sessionID, len(set))
}

// remove forgets w and closes its outbox, which makes writeLoop hang up
func (h *Hub) remove(w *watcher) {
	set := h.watchers[w.sessionID]
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	close(w.outbox)
	if len(set) == 0 {
		delete(h.watchers, w.sessionID)
	}
	log.Printf("Session %s: watcher left (%d watching)", w.sessionID, len(set))
}

func (h *Hub) deliver(msg Message) {
	set := h.watchers[msg.SessionID]
	if len(set) == 0 {
		return
	}

	frame, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Session %s: cannot encode %s event: %v", msg.SessionID, msg.Event, err)
		return
	}

	for w := range set {
		select {
		case w.outbox <- frame:
		default:
			log.Printf("Session %s: dropping watcher with a full backlog", msg.SessionID)
			h.remove(w)
		}
	}
}

// readLoop consumes control frames and reports the watcher gone when the peer hangs up
func (h *Hub) readLoop(w *watcher) {
	defer func() {
		select {
		case h.leave <- w:
		case <-h.done:
		}
		w.conn.Close()
	}()

	w.conn.SetReadLimit(maxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		return w.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Session %s: watcher read error: %v", w.sessionID, err)
			}
			return
		}
	}
}

// writeLoop sends queued frames and keeps the connection alive with pings
func (w *watcher) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case frame, open := <-w.outbox:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// One event per frame so watchers can decode each independently
			if err := w.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
