package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sketchwars/sketchwars-backend/internal"
)

// missedBeatsBeforeIdle is how many unanswered heartbeats flag a player idle.
const missedBeatsBeforeIdle = 3

type playerConn struct {
	entry  internal.ConnectionEntry
	sink   Sink
	ready  bool
	missed int
	idle   bool
	evict  *time.Timer
}

// Registry tracks every player's connection and room membership. A dropped
// connection keeps its membership for the grace window; only when that window
// expires is the player evicted. It doubles as the game layer's roster.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[string]*playerConn
	byPlayer map[string]*playerConn

	grace     time.Duration
	heartbeat time.Duration
	log       zerolog.Logger

	// OnEvict and OnIdle fire outside the registry lock.
	OnEvict func(roomID, playerID string)
	OnIdle  func(roomID, playerID string)
}

func NewRegistry(grace, heartbeat time.Duration, log zerolog.Logger) *Registry {
	if grace <= 0 {
		grace = internal.DefaultGraceWindow
	}
	if heartbeat <= 0 {
		heartbeat = internal.DefaultHeartbeatInterval
	}
	return &Registry{
		rooms:     make(map[string]map[string]*playerConn),
		byPlayer:  make(map[string]*playerConn),
		grace:     grace,
		heartbeat: heartbeat,
		log:       log.With().Str("component", "registry").Logger(),
	}
}

// Register binds a sink to a player in a room. Returns true when this is a
// reconnection inside the grace window.
func (r *Registry) Register(roomID, playerID, username string, sink Sink) bool {
	r.mu.Lock()

	if pc, ok := r.byPlayer[playerID]; ok && pc.entry.RoomID == roomID {
		if pc.evict != nil {
			pc.evict.Stop()
			pc.evict = nil
		}
		if pc.sink != nil {
			pc.sink.Close()
		}
		pc.sink = sink
		pc.entry.ID = uuid.NewString()
		pc.entry.Connected = true
		pc.entry.LastActivity = time.Now().UTC()
		pc.missed = 0
		pc.idle = false
		r.mu.Unlock()
		r.log.Info().Str("room", roomID).Str("player", playerID).Msg("player reconnected")
		return true
	}

	// A known player registering into a different room leaves the old one
	// immediately; the armed grace timer must not outlive the membership.
	var leftRoom string
	if pc, ok := r.byPlayer[playerID]; ok {
		if pc.evict != nil {
			pc.evict.Stop()
		}
		if pc.sink != nil {
			pc.sink.Close()
		}
		leftRoom = pc.entry.RoomID
		r.removeLocked(leftRoom, playerID)
	}

	pc := &playerConn{
		entry: internal.ConnectionEntry{
			ID:           uuid.NewString(),
			PlayerID:     playerID,
			Username:     username,
			RoomID:       roomID,
			Connected:    true,
			LastActivity: time.Now().UTC(),
		},
		sink: sink,
	}
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]*playerConn)
	}
	r.rooms[roomID][playerID] = pc
	r.byPlayer[playerID] = pc
	r.mu.Unlock()

	if leftRoom != "" {
		r.log.Info().Str("from", leftRoom).Str("to", roomID).Str("player", playerID).Msg("player switched rooms")
		if r.OnEvict != nil {
			r.OnEvict(leftRoom, playerID)
		}
	}
	r.log.Info().Str("room", roomID).Str("player", playerID).Msg("player joined")
	return false
}

// Disconnect marks the connection lost and arms the grace timer. Membership
// survives until the timer fires or the player reconnects. The sink names
// which connection is tearing down: a read loop whose socket was already
// replaced by a reconnect must not unseat the replacement.
func (r *Registry) Disconnect(playerID string, sink Sink) {
	r.mu.Lock()
	pc, ok := r.byPlayer[playerID]
	if !ok || !pc.entry.Connected || pc.sink != sink {
		r.mu.Unlock()
		return
	}
	pc.entry.Connected = false
	pc.sink = nil
	roomID := pc.entry.RoomID
	pc.evict = time.AfterFunc(r.grace, func() { r.evictExpired(roomID, playerID) })
	r.mu.Unlock()
	r.log.Info().Str("room", roomID).Str("player", playerID).Dur("grace", r.grace).Msg("connection lost, grace window armed")
}

func (r *Registry) evictExpired(roomID, playerID string) {
	r.mu.Lock()
	pc, ok := r.byPlayer[playerID]
	if !ok || pc.entry.Connected {
		r.mu.Unlock()
		return
	}
	r.removeLocked(roomID, playerID)
	r.mu.Unlock()

	r.log.Info().Str("room", roomID).Str("player", playerID).Msg("grace window expired, player evicted")
	if r.OnEvict != nil {
		r.OnEvict(roomID, playerID)
	}
}

// Remove drops a player immediately, bypassing the grace window.
func (r *Registry) Remove(playerID string) {
	r.mu.Lock()
	pc, ok := r.byPlayer[playerID]
	if !ok {
		r.mu.Unlock()
		return
	}
	if pc.evict != nil {
		pc.evict.Stop()
	}
	if pc.sink != nil {
		pc.sink.Close()
	}
	r.removeLocked(pc.entry.RoomID, playerID)
	r.mu.Unlock()
}

func (r *Registry) removeLocked(roomID, playerID string) {
	delete(r.byPlayer, playerID)
	if members, ok := r.rooms[roomID]; ok {
		delete(members, playerID)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
}

// Sink returns the live sink for a player, if any.
func (r *Registry) Sink(playerID string) (Sink, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.byPlayer[playerID]
	if !ok || !pc.entry.Connected || pc.sink == nil {
		return nil, false
	}
	return pc.sink, true
}

// Known reports whether the player still holds membership, connected or not.
func (r *Registry) Known(playerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byPlayer[playerID]
	return ok
}

// RoomSinks snapshots the live sinks of a room, optionally skipping one player.
func (r *Registry) RoomSinks(roomID, except string) []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var sinks []Sink
	for id, pc := range r.rooms[roomID] {
		if id == except || !pc.entry.Connected || pc.sink == nil {
			continue
		}
		sinks = append(sinks, pc.sink)
	}
	return sinks
}

// PlayerRoom returns the room a player belongs to.
func (r *Registry) PlayerRoom(playerID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pc, ok := r.byPlayer[playerID]
	if !ok {
		return "", false
	}
	return pc.entry.RoomID, true
}

// RoomSize counts members of a room, including players inside the grace window.
func (r *Registry) RoomSize(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// SetReady flips a player's readiness and reports the room's ready count.
func (r *Registry) SetReady(playerID string, ready bool) (readyCount, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pc, ok := r.byPlayer[playerID]
	if !ok {
		return 0, 0
	}
	pc.ready = ready
	for _, m := range r.rooms[pc.entry.RoomID] {
		total++
		if m.ready {
			readyCount++
		}
	}
	return readyCount, total
}

// RecordLatency stores a round-trip measurement from a heartbeat reply.
func (r *Registry) RecordLatency(playerID string, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pc, ok := r.byPlayer[playerID]; ok && latency >= 0 {
		pc.entry.Latency = latency
	}
}

// Touch records activity on a player's connection and clears the idle flag.
func (r *Registry) Touch(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pc, ok := r.byPlayer[playerID]; ok {
		pc.entry.LastActivity = time.Now().UTC()
		pc.missed = 0
		pc.idle = false
	}
}

// ActivePlayers implements the roster view for the game layer. Players inside
// the grace window are still members, flagged as disconnected.
func (r *Registry) ActivePlayers(roomID string) []internal.RoomMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []internal.RoomMember
	for _, pc := range r.rooms[roomID] {
		members = append(members, internal.RoomMember{
			PlayerID:  pc.entry.PlayerID,
			Username:  pc.entry.Username,
			Ready:     pc.ready,
			Connected: pc.entry.Connected,
		})
	}
	return members
}

func (r *Registry) ReadyPlayers(roomID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, pc := range r.rooms[roomID] {
		if pc.ready {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Registry) ResetReady(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pc := range r.rooms[roomID] {
		pc.ready = false
	}
}

// RunHeartbeat pings every live connection on the heartbeat interval and flags
// players idle after enough unanswered beats. Blocks until ctx is done.
func (r *Registry) RunHeartbeat(ctx context.Context) {
	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.beat()
		}
	}
}

func (r *Registry) beat() {
	type idleHit struct{ roomID, playerID string }
	var newlyIdle []idleHit

	r.mu.Lock()
	now := time.Now().UnixMilli()
	for id, pc := range r.byPlayer {
		if !pc.entry.Connected || pc.sink == nil {
			continue
		}
		pc.missed++
		if pc.missed >= missedBeatsBeforeIdle && !pc.idle {
			pc.idle = true
			newlyIdle = append(newlyIdle, idleHit{pc.entry.RoomID, id})
		}
		go pc.sink.Send(internal.EvtHeartbeat, internal.HeartbeatData{SentAt: now})
	}
	r.mu.Unlock()

	for _, hit := range newlyIdle {
		r.log.Info().Str("room", hit.roomID).Str("player", hit.playerID).Msg("player flagged idle")
		if r.OnIdle != nil {
			r.OnIdle(hit.roomID, hit.playerID)
		}
	}
}
