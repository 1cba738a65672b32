// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/logging"
	ws "github.com/tomtom215/rollcall/internal/websocket"
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts browsers whose Origin is an allowed CORS
// origin. Requests without an Origin header are rejected.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.corsOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades a door station (?station=<id>) or an observer (no
// station) and attaches it to the hub. A station is admitted to the registry
// before the upgrade and receives its current view right after connecting.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.checkWebSocketOrigin(r) {
		respondError(w, r, http.StatusForbidden, ErrCodeForbidden, "Origin not allowed", nil)
		return
	}

	station := r.URL.Query().Get("station")
	var ctrl *checkin.Controller
	if station != "" {
		var err error
		if ctrl, err = h.stations.Get(station); err != nil {
			respondErr(w, r, err, nil)
			return
		}
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, station)
	h.hub.Register <- client
	client.Start()

	if ctrl != nil {
		h.hub.BroadcastStationView(ctrl.View())
	}
}

// sanitizeLogValue strips control characters and truncates client-supplied
// values before they are logged.
func sanitizeLogValue(s string) string {
	const maxLen = 200
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	if len(s) > maxLen {
		s = s[:maxLen] + "..."
	}
	return s
}
