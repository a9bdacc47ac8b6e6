package transport

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBroadcastFixture() (*Broadcaster, *Registry, *Queue) {
	r := NewRegistry(time.Minute, time.Minute, zerolog.Nop())
	q := NewQueue()
	return NewBroadcaster(r, q, zerolog.Nop()), r, q
}

func TestBroadcasterToRoomReachesConnectedOnly(t *testing.T) {
	b, r, _ := newBroadcastFixture()
	alice := &fakeSink{}
	bob := &fakeSink{}
	r.Register("room-1", "p1", "alice", alice)
	r.Register("room-1", "p2", "bob", bob)
	r.Disconnect("p2", bob)

	b.ToRoom("room-1", "state_changed", nil)
	if got := alice.events(); len(got) != 1 || got[0] != "state_changed" {
		t.Fatalf("alice got %v", got)
	}
	if got := bob.events(); len(got) != 0 {
		t.Fatalf("disconnected bob got %v", got)
	}
}

func TestBroadcasterQueuesUnicastForGracePlayer(t *testing.T) {
	b, r, q := newBroadcastFixture()
	first := &fakeSink{}
	r.Register("room-1", "p1", "alice", first)
	r.Disconnect("p1", first)

	b.ToPlayer("p1", "word_assigned", "perro")
	b.ToPlayer("p1", "timer_update", 30)
	if q.Len("p1") != 2 {
		t.Fatalf("queued = %d, want 2", q.Len("p1"))
	}

	// Reconnect and flush: backlog replays in order.
	sink := &fakeSink{}
	r.Register("room-1", "p1", "alice", sink)
	if n := b.Flush("p1"); n != 2 {
		t.Fatalf("flushed %d, want 2", n)
	}
	got := sink.events()
	if len(got) != 2 || got[0] != "word_assigned" || got[1] != "timer_update" {
		t.Fatalf("replay order wrong: %v", got)
	}
	if q.Len("p1") != 0 {
		t.Fatal("backlog not cleared after flush")
	}
}

func TestBroadcasterDropsUnicastForUnknownPlayer(t *testing.T) {
	b, _, q := newBroadcastFixture()
	b.ToPlayer("ghost", "word_assigned", "perro")
	if q.Len("ghost") != 0 {
		t.Fatal("queued a message for a player with no membership")
	}
}

func TestBroadcasterQueuesOnSendFailure(t *testing.T) {
	b, r, q := newBroadcastFixture()
	sink := &fakeSink{fail: true}
	r.Register("room-1", "p1", "alice", sink)

	b.ToPlayer("p1", "guess_result", nil)
	if q.Len("p1") != 1 {
		t.Fatalf("queued = %d, want 1 after send failure", q.Len("p1"))
	}
}

func TestFlushKeepsRemainderOrderAfterFailure(t *testing.T) {
	b, r, q := newBroadcastFixture()
	first := &fakeSink{}
	r.Register("room-1", "p1", "alice", first)
	r.Disconnect("p1", first)
	b.ToPlayer("p1", "word_assigned", nil)
	b.ToPlayer("p1", "timer_update", nil)
	b.ToPlayer("p1", "state_changed", nil)

	// The sink dies after one delivery; the unsent tail stays queued.
	flaky := &fakeSink{failAfter: 1}
	r.Register("room-1", "p1", "alice", flaky)
	if n := b.Flush("p1"); n != 1 {
		t.Fatalf("flushed %d, want 1", n)
	}
	if q.Len("p1") != 2 {
		t.Fatalf("queued = %d, want 2 after partial flush", q.Len("p1"))
	}

	// Anything queued after the failed flush replays behind the remainder.
	b.ToPlayer("p1", "score_updated", nil)

	good := &fakeSink{}
	r.Register("room-1", "p1", "alice", good)
	if n := b.Flush("p1"); n != 3 {
		t.Fatalf("flushed %d, want 3", n)
	}
	got := good.events()
	want := []string{"timer_update", "state_changed", "score_updated"}
	if len(got) != len(want) {
		t.Fatalf("replayed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("replay order %v, want %v", got, want)
		}
	}
}
