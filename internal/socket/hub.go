package socket

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Hub tracks every connected WebSocket client, keyed by actor id, plus the
// set of trips each client watches for live updates.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
	// watchers maps a trip id to the actor ids subscribed to it.
	watchers map[string]map[string]struct{}
	log      logrus.FieldLogger
}

func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:  make(map[string]*websocket.Conn),
		watchers: make(map[string]map[string]struct{}),
		log:      log,
	}
}

// Register adds a client connection.
func (h *Hub) Register(actorID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[actorID] = conn
	h.log.WithField("actor_id", actorID).Info("websocket client registered")
}

// Unregister removes a client and all its trip subscriptions.
func (h *Hub) Unregister(actorID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[actorID]; !ok {
		return
	}
	delete(h.clients, actorID)
	for tripID, subs := range h.watchers {
		delete(subs, actorID)
		if len(subs) == 0 {
			delete(h.watchers, tripID)
		}
	}
	h.log.WithField("actor_id", actorID).Info("websocket client unregistered")
}

// Watch subscribes a connected client to live updates for a trip.
func (h *Hub) Watch(actorID, tripID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[actorID]; !ok {
		return
	}
	if h.watchers[tripID] == nil {
		h.watchers[tripID] = make(map[string]struct{})
	}
	h.watchers[tripID][actorID] = struct{}{}
}

// Unwatch drops a trip subscription.
func (h *Hub) Unwatch(actorID, tripID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.watchers[tripID]; ok {
		delete(subs, actorID)
		if len(subs) == 0 {
			delete(h.watchers, tripID)
		}
	}
}

// Send delivers a message to one client. An offline client is not an error.
func (h *Hub) Send(actorID string, message []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conn, ok := h.clients[actorID]
	if !ok {
		h.log.WithField("actor_id", actorID).Debug("websocket client offline, message dropped")
		return nil
	}
	return conn.WriteMessage(websocket.TextMessage, message)
}

// BroadcastTrip sends a message to every client watching the trip.
func (h *Hub) BroadcastTrip(tripID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for actorID := range h.watchers[tripID] {
		conn, ok := h.clients[actorID]
		if !ok {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.log.WithFields(logrus.Fields{"actor_id": actorID, "trip_id": tripID}).
				WithError(err).Warn("websocket write failed")
		}
	}
}
