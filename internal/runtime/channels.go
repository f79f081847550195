package runtime

import (
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/danielpatrickdp/narsvm/internal/bus"
	"github.com/danielpatrickdp/narsvm/internal/logging"
	"github.com/danielpatrickdp/narsvm/internal/navm"
)

// Emission is one output together with where it came from.
type Emission struct {
	SessionID string
	Seq       int
	Clock     int64
	Command   string
	Output    navm.Output
}

// Channel receives every output a session emits, in order.
type Channel interface {
	Emit(e Emission) error
}

// #region writer

// WriterChannel prints "[TYPE] content" lines.
type WriterChannel struct {
	w io.Writer
}

func NewWriterChannel(w io.Writer) *WriterChannel {
	return &WriterChannel{w: w}
}

func (c *WriterChannel) Emit(e Emission) error {
	_, err := fmt.Fprintln(c.w, e.Output.String())
	return err
}

// #endregion writer

// #region record

// RecordChannel appends outputs to the output log.
type RecordChannel struct {
	db *sql.DB
}

func NewRecordChannel(db *sql.DB) *RecordChannel {
	return &RecordChannel{db: db}
}

func (c *RecordChannel) Emit(e Emission) error {
	return logging.LogOutput(c.db, logging.OutputEntry{
		SessionID: e.SessionID,
		Seq:       e.Seq,
		Clock:     e.Clock,
		Command:   e.Command,
		Type:      string(e.Output.Type),
		Content:   e.Output.Content,
		Narsese:   e.Output.Narsese,
	})
}

// #endregion record

// #region bus

// BusChannel publishes outputs through a NATS publisher.
type BusChannel struct {
	p *bus.Publisher
}

func NewBusChannel(p *bus.Publisher) *BusChannel {
	return &BusChannel{p: p}
}

func (c *BusChannel) Emit(e Emission) error {
	return c.p.Publish(bus.Message{
		SessionID: e.SessionID,
		Seq:       e.Seq,
		Clock:     e.Clock,
		Command:   e.Command,
		Output:    e.Output,
	})
}

// #endregion bus

// #region collect

// CollectChannel keeps every emission in memory.
type CollectChannel struct {
	mu        sync.Mutex
	emissions []Emission
}

func (c *CollectChannel) Emit(e Emission) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emissions = append(c.emissions, e)
	return nil
}

// Emissions returns a copy of everything collected so far.
func (c *CollectChannel) Emissions() []Emission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Emission(nil), c.emissions...)
}

// Outputs returns the collected outputs without their metadata.
func (c *CollectChannel) Outputs() []navm.Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	outs := make([]navm.Output, len(c.emissions))
	for i, e := range c.emissions {
		outs[i] = e.Output
	}
	return outs
}

// #endregion collect
