// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/metrics"
	"github.com/tomtom215/rollcall/internal/models"
)

var (
	// ErrStationOffline is returned when no browser is attached to a station.
	ErrStationOffline = errors.New("station has no connected browser")

	// ErrClientBackpressure is returned when a client's send buffer is full.
	ErrClientBackpressure = errors.New("client send buffer full")
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// DefaultRequestTimeout bounds camera requests whose context has no deadline.
const DefaultRequestTimeout = 15 * time.Second

// outbound is a queued broadcast. An empty station targets every client.
type outbound struct {
	station string
	msg     Message
}

// Hub maintains the set of active clients, broadcasts messages to them and
// routes camera replies to each station's RemoteCamera.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	camMu          sync.Mutex
	cameras        map[string]*RemoteCamera
	requestTimeout time.Duration
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:      make(chan outbound, 256),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		clients:        make(map[*Client]bool),
		cameras:        make(map[string]*RemoteCamera),
		requestTimeout: DefaultRequestTimeout,
	}
}

// SetRequestTimeout overrides DefaultRequestTimeout for cameras created afterwards.
func (h *Hub) SetRequestTimeout(d time.Duration) {
	h.camMu.Lock()
	h.requestTimeout = d
	h.camMu.Unlock()
}

// Serve runs the hub until ctx is cancelled. It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String names the service in supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// RunWithContext runs the hub loop. Shutdown is checked first, then client
// lifecycle events, then broadcasts, so client state is consistent before
// any message is delivered.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case out := <-h.broadcast:
			h.broadcastToClients(out)
		}
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Inc()
	logging.Info().Int("total_clients", total).Str("station", client.station).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	// Slow clients are dropped by broadcastToClients before they unregister.
	if client.station != "" {
		if cam := h.cameraFor(client.station); cam != nil {
			cam.clientGone(client.id)
		}
	}
	if !ok {
		return
	}
	metrics.WSConnections.Dec()
	logging.Info().Int("total_clients", total).Str("station", client.station).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	reason := ShutdownReasonContextCanceled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = ShutdownReasonContextDeadline
	}

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// sortedClientsLocked returns clients ordered by ID. Callers hold h.mu.
func (h *Hub) sortedClientsLocked() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients delivers a message in client ID order. Clients whose
// buffer is full are dropped.
func (h *Hub) broadcastToClients(out outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var toRemove []*Client
	for _, client := range h.sortedClientsLocked() {
		if out.station != "" && client.station != "" && client.station != out.station {
			continue
		}
		select {
		case client.send <- out.msg:
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		metrics.WSConnections.Dec()
		metrics.WSErrors.WithLabelValues("slow_client").Inc()
	}
}

// closeAllClients closes every client in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	clients := h.sortedClientsLocked()
	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	metrics.WSConnections.Sub(float64(len(clients)))
	for _, client := range clients {
		if cam := h.cameraFor(client.station); cam != nil {
			cam.clientGone(client.id)
		}
	}
}

func (h *Hub) enqueue(out outbound) {
	select {
	case h.broadcast <- out:
	default:
		logging.Warn().Str("message_type", out.msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// BroadcastJSON sends a message to all connected clients
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	h.enqueue(outbound{msg: Message{Type: messageType, Data: data}})
}

// BroadcastToStation sends a message to a station's clients and to observers.
func (h *Hub) BroadcastToStation(station, messageType string, data interface{}) {
	h.enqueue(outbound{station: station, msg: Message{Type: messageType, Data: data}})
}

// BroadcastStationView publishes a station's view after a transition.
func (h *Hub) BroadcastStationView(view models.StationView) {
	h.BroadcastToStation(view.Station, MessageTypeStationView, view)
}

// BroadcastSessionExpired tells every browser that the backend session ended.
func (h *Hub) BroadcastSessionExpired(message string) {
	h.BroadcastJSON(MessageTypeSessionExpired, SessionExpiredData{Message: message})
	logging.Warn().Int("clients", h.GetClientCount()).Msg("broadcast session_expired")
}

// BroadcastRaw forwards a JSON document as the data of a message.
func (h *Hub) BroadcastRaw(messageType string, data []byte) {
	if !json.Valid(data) {
		logging.Warn().Str("message_type", messageType).Msg("dropping invalid JSON broadcast")
		return
	}
	h.BroadcastJSON(messageType, json.RawMessage(data))
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StationClientCount returns the number of clients attached to a station.
func (h *Hub) StationClientCount(station string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.station == station {
			n++
		}
	}
	return n
}

// sendTo delivers msg to one client if it is still registered.
func (h *Hub) sendTo(client *Client, msg Message) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client] {
		return ErrStationOffline
	}
	select {
	case client.send <- msg:
		return nil
	default:
		return ErrClientBackpressure
	}
}

// sendToStation delivers msg to the newest client attached to station and
// returns that client's ID.
func (h *Hub) sendToStation(station string, msg Message) (uint64, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var target *Client
	for client := range h.clients {
		if client.station == station && (target == nil || client.id > target.id) {
			target = client
		}
	}
	if target == nil {
		return 0, ErrStationOffline
	}
	select {
	case target.send <- msg:
		return target.id, nil
	default:
		return 0, ErrClientBackpressure
	}
}

// Camera returns the camera bridge for a station, creating it on first use.
// Only the station registry calls it, so bridges exist only for stations the
// registry admitted.
func (h *Hub) Camera(station string) *RemoteCamera {
	h.camMu.Lock()
	defer h.camMu.Unlock()

	cam, ok := h.cameras[station]
	if !ok {
		cam = newRemoteCamera(station, h, h.requestTimeout)
		h.cameras[station] = cam
	}
	return cam
}

// cameraFor returns the station's bridge or nil. Browser traffic never
// creates one.
func (h *Hub) cameraFor(station string) *RemoteCamera {
	h.camMu.Lock()
	defer h.camMu.Unlock()
	return h.cameras[station]
}

// handleInbound routes a browser message. It runs on the client's read goroutine.
func (h *Hub) handleInbound(client *Client, msg inboundMessage) {
	switch msg.Type {
	case MessageTypePing:
		_ = h.sendTo(client, Message{Type: MessageTypePong, ID: msg.ID})

	case MessageTypeCameraDevices, MessageTypeCameraOpened, MessageTypeCameraFailed:
		if client.station == "" {
			return
		}
		if cam := h.cameraFor(client.station); cam != nil {
			cam.resolve(msg)
		}

	case MessageTypeDecode:
		if client.station == "" {
			return
		}
		var data DecodeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			metrics.WSErrors.WithLabelValues("invalid_message").Inc()
			return
		}
		if cam := h.cameraFor(client.station); cam != nil {
			cam.deliver(data)
		}

	default:
		logging.Debug().Str("type", msg.Type).Str("station", client.station).Msg("ignoring unknown websocket message")
	}
}
