package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
	"github.com/sketchwars/sketchwars-backend/internal/game"
	"github.com/sketchwars/sketchwars-backend/internal/store"
)

type wsFixture struct {
	server   *httptest.Server
	registry *Registry
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	st := store.NewMemory(nil)
	if err := st.CreateRoom(ctx, "room-1", internal.DefaultRoomConfig()); err != nil {
		t.Fatalf("create room: %v", err)
	}

	registry := NewRegistry(500*time.Millisecond, time.Minute, zerolog.Nop())
	queue := NewQueue()
	broadcaster := NewBroadcaster(registry, queue, zerolog.Nop())
	sessions := game.NewSessionManager(ctx, game.Deps{
		Broadcast: broadcaster,
		Words:     st,
		Store:     st,
		Stats:     st,
		Roster:    registry,
		Log:       zerolog.Nop(),
	}, st)
	t.Cleanup(sessions.Shutdown)

	h := &Handler{
		Sessions:  sessions,
		Registry:  registry,
		Broadcast: broadcaster,
		Queue:     queue,
		Rooms:     st,
		Log:       zerolog.Nop(),
	}
	r := mux.NewRouter()
	r.HandleFunc("/ws/{roomId}", h.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{server: srv, registry: registry}
}

func (fx *wsFixture) dial(t *testing.T, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(fx.server.URL, "http") + "/ws/room-1?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", query, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// awaitEvent reads until a message of the wanted type arrives, returning its
// raw data payload.
func awaitEvent(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg internal.Message[json.RawMessage]
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if msg.Type == event {
			return msg.Data
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, action string, data any) {
	t.Helper()
	if err := conn.WriteJSON(internal.Message[any]{Type: action, Data: data}); err != nil {
		t.Fatalf("send %s: %v", action, err)
	}
}

func TestWSJoinReadyStart(t *testing.T) {
	fx := newWSFixture(t)

	alice := fx.dial(t, "username=alice&player_id=pa")
	awaitEvent(t, alice, internal.EvtPlayerJoined)
	awaitEvent(t, alice, internal.EvtSessionSnapshot)

	bob := fx.dial(t, "username=bob&player_id=pb")
	awaitEvent(t, bob, internal.EvtSessionSnapshot)

	send(t, alice, internal.ActReady, true)
	send(t, bob, internal.ActReady, true)

	var ready internal.PlayerReadyData
	for !ready.CanStart {
		raw := awaitEvent(t, bob, internal.EvtPlayerReady)
		if err := json.Unmarshal(raw, &ready); err != nil {
			t.Fatalf("decode ready: %v", err)
		}
	}

	send(t, alice, internal.ActStart, nil)
	raw := awaitEvent(t, bob, internal.EvtStateChanged)
	var state internal.GameStateData
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Phase != internal.PhaseStarting {
		t.Fatalf("phase = %s, want starting", state.Phase)
	}
}

func TestWSRejectionNotification(t *testing.T) {
	fx := newWSFixture(t)
	alice := fx.dial(t, "username=alice&player_id=pa")
	awaitEvent(t, alice, internal.EvtSessionSnapshot)

	// Starting alone is rejected with a machine-readable code.
	send(t, alice, internal.ActReady, true)
	awaitEvent(t, alice, internal.EvtPlayerReady)
	send(t, alice, internal.ActStart, nil)

	raw := awaitEvent(t, alice, internal.EvtNotification)
	var note internal.NotificationData
	if err := json.Unmarshal(raw, &note); err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if note.Code != "NOT_ENOUGH_PLAYERS" {
		t.Fatalf("code = %s, want NOT_ENOUGH_PLAYERS", note.Code)
	}
}

func TestWSReconnectResumesMembership(t *testing.T) {
	fx := newWSFixture(t)

	alice := fx.dial(t, "username=alice&player_id=pa")
	awaitEvent(t, alice, internal.EvtSessionSnapshot)
	alice.Close()

	waitFor(t, time.Second, func() bool {
		_, ok := fx.registry.Sink("pa")
		return !ok
	})
	if !fx.registry.Known("pa") {
		t.Fatal("membership dropped immediately on disconnect")
	}

	again := fx.dial(t, "username=alice&player_id=pa")
	awaitEvent(t, again, internal.EvtReconnected)
	awaitEvent(t, again, internal.EvtSessionSnapshot)
	if fx.registry.RoomSize("room-1") != 1 {
		t.Fatalf("room size = %d after reconnect, want 1", fx.registry.RoomSize("room-1"))
	}
}

func TestWSUnknownRoomRejectedBeforeUpgrade(t *testing.T) {
	fx := newWSFixture(t)
	url := fx.server.URL + "/ws/ghost-room?username=alice"
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
