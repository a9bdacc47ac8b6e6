package transport

import (
	"github.com/rs/zerolog"
)

// Broadcaster fans events out over the registry. Room broadcasts are
// best-effort to whoever is connected; unicasts to a known but unreachable
// player are queued for replay on reconnect.
type Broadcaster struct {
	registry *Registry
	queue    *Queue
	log      zerolog.Logger
}

func NewBroadcaster(registry *Registry, queue *Queue, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		registry: registry,
		queue:    queue,
		log:      log.With().Str("component", "broadcaster").Logger(),
	}
}

func (b *Broadcaster) ToRoom(roomID, event string, payload any) {
	b.fanOut(roomID, "", event, payload)
}

func (b *Broadcaster) ToRoomExcept(roomID, exceptPlayerID, event string, payload any) {
	b.fanOut(roomID, exceptPlayerID, event, payload)
}

func (b *Broadcaster) fanOut(roomID, except, event string, payload any) {
	for _, sink := range b.registry.RoomSinks(roomID, except) {
		if err := sink.Send(event, payload); err != nil {
			b.log.Debug().Err(err).Str("room", roomID).Str("event", event).Msg("room send failed")
		}
	}
}

func (b *Broadcaster) ToPlayer(playerID, event string, payload any) {
	if sink, ok := b.registry.Sink(playerID); ok {
		err := sink.Send(event, payload)
		if err == nil {
			return
		}
		b.log.Debug().Err(err).Str("player", playerID).Str("event", event).Msg("unicast failed, queueing")
	}
	// Queue only for players still holding membership; anyone else is gone for
	// good and the message has no future reader.
	if b.registry.Known(playerID) {
		b.queue.Enqueue(playerID, event, payload)
	}
}

// Flush replays a reconnected player's backlog in order and reports how many
// messages were delivered.
func (b *Broadcaster) Flush(playerID string) int {
	sink, ok := b.registry.Sink(playerID)
	if !ok {
		return 0
	}
	msgs := b.queue.Drain(playerID)
	for i, m := range msgs {
		if err := sink.Send(m.Event, m.Payload); err != nil {
			// Put the rest back at the head; the next flush replays from
			// where this one stopped.
			b.queue.Requeue(playerID, msgs[i:])
			return i
		}
	}
	return len(msgs)
}
