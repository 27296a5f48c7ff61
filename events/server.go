// Package events implements the push process: it holds every client's TCP
// connection open, receives event frames from the API over the bus port,
// and fans each event out to the connections of its recipients.
package events

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tuicubserv/bus"
)

// UserResolver maps a client's bind token to the owning user.
type UserResolver interface {
	UserIDForToken(token string) (uuid.UUID, error)
}

// Notifier reports a bound connection's loss back to the API.
type Notifier interface {
	UserDisconnected(userID uuid.UUID)
}

// Server multiplexes the client connections and the API bus. The
// connection map is the only shared state; it is mutated on bind and on
// connection loss, and read on fan-out.
type Server struct {
	resolver UserResolver
	notifier Notifier
	// busToken is the hex digest every bus envelope must carry.
	busToken string
	log      *zap.Logger

	mu    sync.Mutex
	conns map[uuid.UUID]*connection
}

func NewServer(resolver UserResolver, notifier Notifier, busToken string, log *zap.Logger) *Server {
	return &Server{
		resolver: resolver,
		notifier: notifier,
		busToken: busToken,
		log:      log,
		conns:    make(map[uuid.UUID]*connection),
	}
}

// ServeClients accepts game client connections until the listener closes.
func (s *Server) ServeClients(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleClient(conn)
	}
}

// ServeBus accepts API bus connections until the listener closes.
func (s *Server) ServeBus(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handleBus(conn)
	}
}

// handleBus reads envelopes line by line. Frames with a bad token are
// dropped; valid ones fan out to every bound recipient, preserving arrival
// order per recipient.
func (s *Server) handleBus(conn net.Conn) {
	defer conn.Close()
	s.log.Info("bus connect", zap.String("remote", conn.RemoteAddr().String()))

	scanner := newLineScanner(conn)
	for scanner.Scan() {
		var envelope bus.Envelope
		if err := json.Unmarshal(scanner.Bytes(), &envelope); err != nil {
			s.log.Warn("bus frame decode", zap.Error(err))
			continue
		}
		if subtle.ConstantTimeCompare([]byte(envelope.Token), []byte(s.busToken)) != 1 {
			s.log.Warn("bus frame rejected",
				zap.String("event", envelope.Message.Event.Name))
			continue
		}
		line, err := json.Marshal(envelope.Message.Event)
		if err != nil {
			s.log.Error("bus frame encode", zap.Error(err))
			continue
		}
		for _, userID := range envelope.Message.Recipents {
			s.deliver(userID, envelope.Message.Event.Name, append(line, '\n'))
		}
	}
	s.log.Info("bus disconnect", zap.String("remote", conn.RemoteAddr().String()))
}

// deliver queues one event line for a recipient. An unbound recipient is
// skipped; a recipient whose queue is full is dropped rather than letting
// a slow client stall the fan-out.
func (s *Server) deliver(userID uuid.UUID, eventName string, line []byte) {
	s.mu.Lock()
	c := s.conns[userID]
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.done:
	case c.send <- line:
		s.log.Info("event sent",
			zap.String("user_id", userID.String()),
			zap.String("connection_id", c.id.String()),
			zap.String("event_name", eventName))
	default:
		s.log.Warn("slow client dropped",
			zap.String("user_id", userID.String()),
			zap.String("connection_id", c.id.String()))
		c.close()
	}
}

// bind links a connection to its user, replacing any previous connection
// for the same user.
func (s *Server) bind(c *connection, userID uuid.UUID) {
	s.mu.Lock()
	s.conns[userID] = c
	s.mu.Unlock()
}

// unbind removes the connection's map entry and reports whether it was
// still the bound one. A connection replaced by a newer bind is not.
func (s *Server) unbind(c *connection, userID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns[userID] != c {
		return false
	}
	delete(s.conns, userID)
	return true
}
