package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeSink struct {
	mu        sync.Mutex
	sent      []string
	fail      bool
	failAfter int
	closed    bool
}

func (f *fakeSink) Send(event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail || (f.failAfter > 0 && len(f.sent) >= f.failAfter) {
		return errSinkDown
	}
	f.sent = append(f.sent, event)
	return nil
}

func (f *fakeSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSink) events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

var errSinkDown = &sinkError{}

type sinkError struct{}

func (*sinkError) Error() string { return "sink down" }

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", d)
}

func TestRegistryReconnectWithinGraceKeepsMembership(t *testing.T) {
	r := NewRegistry(100*time.Millisecond, time.Minute, zerolog.Nop())
	var evicted []string
	var mu sync.Mutex
	r.OnEvict = func(_, playerID string) {
		mu.Lock()
		evicted = append(evicted, playerID)
		mu.Unlock()
	}

	sink := &fakeSink{}
	if got := r.Register("room-1", "p1", "alice", sink); got {
		t.Fatal("first register reported reconnection")
	}
	r.Disconnect("p1", sink)
	if !r.Known("p1") {
		t.Fatal("membership dropped before grace expired")
	}

	if got := r.Register("room-1", "p1", "alice", &fakeSink{}); !got {
		t.Fatal("register within grace not reported as reconnection")
	}

	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(evicted) != 0 {
		t.Fatalf("player evicted despite reconnecting: %v", evicted)
	}
	if !r.Known("p1") {
		t.Fatal("reconnected player lost membership")
	}
}

func TestRegistryEvictsAfterGrace(t *testing.T) {
	r := NewRegistry(40*time.Millisecond, time.Minute, zerolog.Nop())
	var mu sync.Mutex
	var evicted []string
	r.OnEvict = func(_, playerID string) {
		mu.Lock()
		evicted = append(evicted, playerID)
		mu.Unlock()
	}

	sink := &fakeSink{}
	r.Register("room-1", "p1", "alice", sink)
	r.Disconnect("p1", sink)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(evicted) == 1
	})
	if r.Known("p1") {
		t.Fatal("evicted player still known")
	}
	if r.RoomSize("room-1") != 0 {
		t.Fatal("empty room still counted")
	}
}

func TestRegistryStaleDisconnectKeepsReplacement(t *testing.T) {
	r := NewRegistry(40*time.Millisecond, time.Minute, zerolog.Nop())
	var mu sync.Mutex
	var evicted []string
	r.OnEvict = func(_, playerID string) {
		mu.Lock()
		evicted = append(evicted, playerID)
		mu.Unlock()
	}

	old := &fakeSink{}
	r.Register("room-1", "p1", "alice", old)
	replacement := &fakeSink{}
	if !r.Register("room-1", "p1", "alice", replacement) {
		t.Fatal("re-register over a live socket not reported as reconnection")
	}

	// The replaced socket's read loop tears down after the new registration.
	r.Disconnect("p1", old)

	sink, ok := r.Sink("p1")
	if !ok || sink != replacement {
		t.Fatal("stale teardown unseated the live replacement connection")
	}
	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	n := len(evicted)
	mu.Unlock()
	if n != 0 {
		t.Fatalf("player evicted despite a live connection: %v", evicted)
	}

	// The replacement's own teardown still arms the grace window.
	r.Disconnect("p1", replacement)
	if _, ok := r.Sink("p1"); ok {
		t.Fatal("disconnect of the live connection ignored")
	}
}

func TestRegistryRoomSwitchDropsOldMembership(t *testing.T) {
	r := NewRegistry(50*time.Millisecond, time.Minute, zerolog.Nop())
	var mu sync.Mutex
	left := map[string]string{}
	r.OnEvict = func(roomID, playerID string) {
		mu.Lock()
		left[playerID] = roomID
		mu.Unlock()
	}

	sink := &fakeSink{}
	r.Register("room-a", "p1", "alice", sink)
	r.Disconnect("p1", sink)

	if got := r.Register("room-b", "p1", "alice", &fakeSink{}); got {
		t.Fatal("room switch reported as reconnection")
	}
	if n := r.RoomSize("room-a"); n != 0 {
		t.Fatalf("old room still has %d member(s)", n)
	}
	if room, _ := r.PlayerRoom("p1"); room != "room-b" {
		t.Fatalf("player room = %s, want room-b", room)
	}
	mu.Lock()
	gone := left["p1"]
	mu.Unlock()
	if gone != "room-a" {
		t.Fatalf("departure callback fired for %q, want room-a", gone)
	}

	// The old room's grace timer must not fire against the new membership.
	time.Sleep(120 * time.Millisecond)
	if !r.Known("p1") || r.RoomSize("room-b") != 1 {
		t.Fatal("new membership lost after the old grace window elapsed")
	}
}

func TestRegistryRoomSinksSkipDisconnected(t *testing.T) {
	r := NewRegistry(time.Minute, time.Minute, zerolog.Nop())
	bob := &fakeSink{}
	r.Register("room-1", "p1", "alice", &fakeSink{})
	r.Register("room-1", "p2", "bob", bob)
	r.Register("room-1", "p3", "carol", &fakeSink{})
	r.Disconnect("p2", bob)

	if got := len(r.RoomSinks("room-1", "")); got != 2 {
		t.Fatalf("room sinks = %d, want 2", got)
	}
	if got := len(r.RoomSinks("room-1", "p1")); got != 1 {
		t.Fatalf("room sinks except p1 = %d, want 1", got)
	}
	// p2 is still a member while inside the grace window.
	if r.RoomSize("room-1") != 3 {
		t.Fatalf("room size = %d, want 3", r.RoomSize("room-1"))
	}
}

func TestRegistryReadiness(t *testing.T) {
	r := NewRegistry(time.Minute, time.Minute, zerolog.Nop())
	r.Register("room-1", "p1", "alice", &fakeSink{})
	r.Register("room-1", "p2", "bob", &fakeSink{})

	readyCount, total := r.SetReady("p1", true)
	if readyCount != 1 || total != 2 {
		t.Fatalf("ready=%d total=%d, want 1/2", readyCount, total)
	}
	r.SetReady("p2", true)
	if got := len(r.ReadyPlayers("room-1")); got != 2 {
		t.Fatalf("ready players = %d, want 2", got)
	}

	r.ResetReady("room-1")
	if got := len(r.ReadyPlayers("room-1")); got != 0 {
		t.Fatalf("ready players after reset = %d, want 0", got)
	}
	for _, m := range r.ActivePlayers("room-1") {
		if m.Ready {
			t.Fatalf("member %s still ready after reset", m.PlayerID)
		}
	}
}

func TestRegistryIdleFlagAfterMissedBeats(t *testing.T) {
	r := NewRegistry(time.Minute, time.Minute, zerolog.Nop())
	var mu sync.Mutex
	var idle []string
	r.OnIdle = func(_, playerID string) {
		mu.Lock()
		idle = append(idle, playerID)
		mu.Unlock()
	}
	sink := &fakeSink{}
	r.Register("room-1", "p1", "alice", sink)

	for i := 0; i < missedBeatsBeforeIdle; i++ {
		r.beat()
	}
	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(idle) == 1 && idle[0] == "p1"
	})

	// Activity clears the flag; the next run of missed beats re-raises it.
	r.Touch("p1")
	r.beat()
	mu.Lock()
	n := len(idle)
	mu.Unlock()
	if n != 1 {
		t.Fatalf("idle raised again after touch: %d callbacks", n)
	}
}
