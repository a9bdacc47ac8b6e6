package transport

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sketchwars/sketchwars-backend/internal"
)

// Sink is the write side of one player's connection. Implementations must be
// safe for concurrent Send calls.
type Sink interface {
	Send(event string, payload any) error
	Close() error
}

// wsSink wraps a gorilla connection. The mutex serializes writers; gorilla
// connections support only one concurrent writer.
type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func newWSSink(conn *websocket.Conn) *wsSink {
	return &wsSink{conn: conn}
}

func (s *wsSink) Send(event string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(internal.Message[any]{Type: event, Data: payload})
}

func (s *wsSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}
