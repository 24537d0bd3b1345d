package services

import (
	"sync"
)

// Event types pushed over the SSE stream
const (
	EventNotification   = "notification"
	EventBoardElement   = "board_element"
	EventImportProgress = "import_progress"
)

// Event is a real-time update pushed to connected clients. UserID 0
// broadcasts to everyone; otherwise only that user's connections
// receive it.
type Event struct {
	Type    string      `json:"type"` // notification, board_element, import_progress
	UserID  uint        `json:"-"`
	RefID   uint        `json:"ref_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

type sseClient struct {
	userID uint
	ch     chan Event
}

// SSEHub manages SSE client connections and event broadcasting
type SSEHub struct {
	clients map[string]*sseClient
	mu      sync.RWMutex
}

// NewSSEHub creates a new SSE hub instance
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*sseClient),
	}
}

// Subscribe registers a new client connection for a user and returns a
// channel for receiving events
func (h *SSEHub) Subscribe(clientID string, userID uint) <-chan Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan Event, 100)
	h.clients[clientID] = &sseClient{userID: userID, ch: ch}
	return ch
}

// Unsubscribe removes a client from the hub
func (h *SSEHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.ch)
		delete(h.clients, clientID)
	}
}

// Publish delivers an event to its target user's connections, or to all
// connections when the event has no target
func (h *SSEHub) Publish(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if event.UserID != 0 && c.userID != event.UserID {
			continue
		}
		// Non-blocking send - drop event if client buffer is full
		select {
		case c.ch <- event:
		default:
			// Client is slow, skip this event
		}
	}
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Global SSE Hub instance
var globalSSEHub *SSEHub
var sseHubOnce sync.Once

// GetSSEHub returns the global SSE hub singleton
func GetSSEHub() *SSEHub {
	sseHubOnce.Do(func() {
		globalSSEHub = NewSSEHub()
	})
	return globalSSEHub
}

// PublishNotificationEvent pushes an in-app notification to its recipient
func PublishNotificationEvent(recipientID uint, notificationID uint, payload interface{}) {
	GetSSEHub().Publish(Event{
		Type:    EventNotification,
		UserID:  recipientID,
		RefID:   notificationID,
		Payload: payload,
	})
}

// PublishBoardEvent broadcasts a board element change to all clients
func PublishBoardEvent(boardID uint, payload interface{}) {
	GetSSEHub().Publish(Event{
		Type:    EventBoardElement,
		RefID:   boardID,
		Payload: payload,
	})
}

// PublishImportEvent pushes CSV import progress to the user who started it
func PublishImportEvent(userID uint, jobID uint, payload interface{}) {
	GetSSEHub().Publish(Event{
		Type:    EventImportProgress,
		UserID:  userID,
		RefID:   jobID,
		Payload: payload,
	})
}
