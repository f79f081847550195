// Package bus publishes reasoner outputs to NATS subjects.
package bus

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// Conn is the part of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON body of one published output.
type Message struct {
	SessionID string `json:"session_id"`
	Seq       int    `json:"seq"`
	Clock     int64  `json:"clock"`
	Command   string `json:"command"`
	navm.Output
}

// Publisher sends each output to "<subject>.<type>", with the type
// lower-cased.
type Publisher struct {
	conn    Conn
	subject string

	mu     sync.Mutex
	closed bool
	close  func()
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject string) *Publisher {
	return &Publisher{conn: conn, subject: subject}
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url, subject string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("narsvm"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := NewPublisher(nc, subject)
	p.close = func() {
		_ = nc.Drain()
	}
	return p, nil
}

// Subject returns the subject an output of type t is published on.
func (p *Publisher) Subject(t navm.OutputType) string {
	return p.subject + "." + strings.ToLower(string(t))
}

// Publish sends one message.
func (p *Publisher) Publish(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("publish: publisher closed")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := p.conn.Publish(p.Subject(msg.Type), data); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Type, err)
	}
	return nil
}

// Close drains an owned connection. Later publishes fail.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.close != nil {
		p.close()
	}
}
