// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package websocket

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/rollcall/internal/camera"
	"github.com/tomtom215/rollcall/internal/logging"
)

//nolint:gochecknoinits // quiet logger for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

const testTimeout = 5 * time.Second

// startHub runs a hub behind an httptest server that upgrades /?station=<id>.
func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, r.URL.Query().Get("station"))
		hub.Register <- client
		client.Start()
	}))

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return hub, srv
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(testTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// fakeBrowser plays the station page: it answers camera requests and queues
// every other message.
type fakeBrowser struct {
	t    *testing.T
	conn *websocket.Conn
	wmu  sync.Mutex

	devices  []camera.Device
	openErr  string
	silent   bool
	opened   chan string
	received chan inboundMessage
}

func connectBrowser(t *testing.T, hub *Hub, srv *httptest.Server, station string, configure func(*fakeBrowser)) *fakeBrowser {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if station != "" {
		url += "/?station=" + station
	}
	before := hub.GetClientCount()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	b := &fakeBrowser{
		t:        t,
		conn:     conn,
		devices:  []camera.Device{{ID: "front", Label: "Front Camera"}, {ID: "back", Label: "Back Camera"}},
		opened:   make(chan string, 8),
		received: make(chan inboundMessage, 64),
	}
	if configure != nil {
		configure(b)
	}
	go b.run()
	t.Cleanup(func() { _ = conn.Close() })

	waitFor(t, "client registration", func() bool { return hub.GetClientCount() > before })
	return b
}

func (b *fakeBrowser) run() {
	defer close(b.received)
	for {
		_, data, err := b.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case b.silent && (msg.Type == MessageTypeCameraEnumerate || msg.Type == MessageTypeCameraOpen):
			b.received <- msg
		case msg.Type == MessageTypeCameraEnumerate:
			b.write(Message{Type: MessageTypeCameraDevices, ID: msg.ID, Data: DevicesData{Devices: b.devices}})
		case msg.Type == MessageTypeCameraOpen:
			if b.openErr != "" {
				b.write(Message{Type: MessageTypeCameraFailed, ID: msg.ID, Data: FailedData{Message: b.openErr}})
				continue
			}
			b.opened <- msg.ID
			b.write(Message{Type: MessageTypeCameraOpened, ID: msg.ID})
		default:
			b.received <- msg
		}
	}
}

func (b *fakeBrowser) write(msg Message) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if err := b.conn.WriteJSON(msg); err != nil {
		b.t.Logf("browser write: %v", err)
	}
}

func (b *fakeBrowser) decode(streamID, code string) {
	b.write(Message{Type: MessageTypeDecode, Data: DecodeData{StreamID: streamID, Code: code}})
}

// next returns the next queued message of the given type.
func (b *fakeBrowser) next(msgType string) inboundMessage {
	b.t.Helper()
	timeout := time.After(testTimeout)
	for {
		select {
		case msg, ok := <-b.received:
			if !ok {
				b.t.Fatalf("connection closed waiting for %s", msgType)
			}
			if msg.Type == msgType {
				return msg
			}
		case <-timeout:
			b.t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

// expectNone fails if a message of msgType arrives within d.
func (b *fakeBrowser) expectNone(msgType string, d time.Duration) {
	b.t.Helper()
	timeout := time.After(d)
	for {
		select {
		case msg, ok := <-b.received:
			if !ok {
				return
			}
			if msg.Type == msgType {
				b.t.Fatalf("unexpected %s message: %s", msgType, msg.Data)
			}
		case <-timeout:
			return
		}
	}
}
