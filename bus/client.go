package bus

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

const dialTimeout = 5 * time.Second

// Client writes envelopes to the events process. It connects lazily on the
// first send and redials after a failed write; delivery is best-effort and
// a send never fails the request that triggered it.
type Client struct {
	addr  string
	token string
	log   *zap.Logger
	dial  func(addr string) (net.Conn, error)

	mu   sync.Mutex
	conn net.Conn
}

func NewClient(addr, token string, log *zap.Logger) *Client {
	return &Client{
		addr:  addr,
		token: token,
		log:   log,
		dial: func(addr string) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, dialTimeout)
		},
	}
}

// Send writes one frame per message, in order. A failed write abandons the
// rest of the batch; with the events process down, retrying each remaining
// frame would stack dial timeouts inside the request that triggered it.
func (c *Client) Send(messages ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, message := range messages {
		line, err := json.Marshal(Envelope{Token: c.token, Message: message})
		if err != nil {
			c.log.Error("encode bus frame", zap.Error(err))
			continue
		}
		if err := c.write(append(line, '\n')); err != nil {
			c.log.Warn("send bus frame",
				zap.String("event", message.Event.Name),
				zap.Error(err))
			return
		}
	}
}

// Close drops the connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// write sends one frame, dialing if needed. A failed write drops the
// connection so the next send redials.
func (c *Client) write(frame []byte) error {
	if c.conn == nil {
		conn, err := c.dial(c.addr)
		if err != nil {
			return err
		}
		c.conn = conn
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
