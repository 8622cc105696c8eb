package eventsvc

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anwesha-dev/campusflow-ai/core"
	"github.com/anwesha-dev/campusflow-ai/core/fee"
)

const (
	writeWait     = 5 * time.Second
	broadcastSize = 64
)

// Hub fans payment flow events out to the connected websocket clients.
type Hub struct {
	logger     core.Logger
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	quit       chan struct{}
	done       chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
}

var _ fee.Notifier = (*Hub)(nil)

func NewHub(logger core.Logger) *Hub {
	return &Hub{
		logger:     logger,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, broadcastSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop in its own goroutine.
func (h *Hub) Start() {
	h.startOnce.Do(func() { go h.run() })
}

func (h *Hub) run() {
	defer close(h.done)
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
			h.logger.Debug(fmt.Sprintf("websocket client connected: %d client(s)", len(h.clients)))
		case conn := <-h.unregister:
			if h.clients[conn] {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			h.logger.Debug(fmt.Sprintf("websocket client disconnected: %d client(s)", len(h.clients)))
		case msg := <-h.broadcast:
			for conn := range h.clients {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Warn(fmt.Sprintf("writing to websocket client: %v", err), err)
					delete(h.clients, conn)
					_ = conn.Close()
				}
			}
		case <-h.quit:
			for conn := range h.clients {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
					time.Now().Add(writeWait),
				)
				_ = conn.Close()
				delete(h.clients, conn)
			}
			return
		}
	}
}

// Stop closes every client and ends the loop.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
		h.startOnce.Do(func() { close(h.done) }) // never started
		<-h.done
	})
}

// Register hands conn over to the hub, which then owns writes to it.
// It returns false once the hub is stopped.
func (h *Hub) Register(conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Notify queues evt for broadcast. Events are dropped when the queue is full.
func (h *Hub) Notify(evt fee.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error(fmt.Sprintf("marshalling %s event: %v", evt.Type, err), err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn(fmt.Sprintf("dropping %s event: broadcast queue full", evt.Type))
	}
}
