package events

import (
	"bufio"
	"encoding/json"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sendQueueSize bounds the per-client outbound queue. A client that falls
// this far behind is dropped.
const sendQueueSize = 64

// maxLineBytes caps a single line on either port.
const maxLineBytes = 1 << 20

// connection is one client socket. Writes go through the send channel so
// the fan-out never blocks on a single socket. The send channel is never
// closed; writePump exits through done instead, so a concurrent fan-out
// can always enqueue safely.
type connection struct {
	id   uuid.UUID
	conn net.Conn
	send chan []byte
	done chan struct{}

	closeOnce sync.Once
}

func (c *connection) close() {
	c.closeOnce.Do(func() {
		c.conn.Close()
		close(c.done)
	})
}

// writePump drains the send queue onto the socket. A write error closes
// the connection; the read loop then observes the loss.
func (c *connection) writePump() {
	for {
		select {
		case line := <-c.send:
			if _, err := c.conn.Write(line); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// bindRequest is the first line a client sends.
type bindRequest struct {
	Token *string `json:"token"`
}

// handleClient owns one client connection from accept to loss. The first
// line carrying a resolvable token binds the connection to its user; every
// later line is ignored. Losing a bound connection notifies the API.
func (s *Server) handleClient(conn net.Conn) {
	c := &connection{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendQueueSize),
		done: make(chan struct{}),
	}
	log := s.log.With(zap.String("connection_id", c.id.String()))
	log.Info("client connect")

	go c.writePump()
	defer c.close()

	var userID uuid.UUID
	bound := false

	scanner := newLineScanner(conn)
	for scanner.Scan() {
		if bound {
			continue
		}
		var request bindRequest
		if err := json.Unmarshal(scanner.Bytes(), &request); err != nil || request.Token == nil {
			log.Warn("bind request decode failed")
			continue
		}
		id, err := s.resolver.UserIDForToken(*request.Token)
		if err != nil {
			log.Warn("bind token rejected", zap.Error(err))
			continue
		}
		userID = id
		bound = true
		s.bind(c, userID)
		log.Info("client bound", zap.String("user_id", userID.String()))
	}

	if bound && s.unbind(c, userID) {
		log.Info("client disconnect", zap.String("user_id", userID.String()))
		s.notifier.UserDisconnected(userID)
		return
	}
	log.Info("client disconnect")
}

func newLineScanner(conn net.Conn) *bufio.Scanner {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	return scanner
}
