// Package events provides settlement event sinks: asynchronous fan-out
// of committed order transitions to the audit store, Kafka, and the
// WebSocket feed.
package events

import (
	"context"
	"log"
	"sync"
	"time"

	"swapchain/internal/domain"
	"swapchain/internal/settlement"
	"swapchain/internal/storage"
)

// auditWriteTimeout bounds a single audit insert.
const auditWriteTimeout = 10 * time.Second

// AuditSink persists settlement events to an append-only store in the
// background. Publish never blocks the settlement engine: events are
// buffered and dropped (with a log line) when the buffer is full.
type AuditSink struct {
	store  storage.SettlementEventStore
	logger *log.Logger

	ch   chan domain.SettlementEvent
	done chan struct{}
	wg   sync.WaitGroup

	// onDrop is called for each dropped event; nil disables.
	onDrop func()
}

// AuditSinkConfig configures an AuditSink.
type AuditSinkConfig struct {
	// BufferSize is the event buffer capacity. Defaults to 1024.
	BufferSize int
	// Logger defaults to the standard logger.
	Logger *log.Logger
	// OnDrop is invoked once per dropped event (e.g. a metrics counter).
	OnDrop func()
}

// NewAuditSink creates and starts an audit sink writing to store.
func NewAuditSink(store storage.SettlementEventStore, cfg AuditSinkConfig) *AuditSink {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &AuditSink{
		store:  store,
		logger: logger,
		ch:     make(chan domain.SettlementEvent, size),
		done:   make(chan struct{}),
		onDrop: cfg.OnDrop,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Publish enqueues an event for persistence. Non-blocking.
func (s *AuditSink) Publish(e domain.SettlementEvent) {
	select {
	case s.ch <- e:
	default:
		s.logger.Printf("audit buffer full, dropping event %s for order %d", e.Type, e.OrderID)
		if s.onDrop != nil {
			s.onDrop()
		}
	}
}

// Close drains the buffer and stops the writer.
func (s *AuditSink) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *AuditSink) run() {
	defer s.wg.Done()

	for {
		select {
		case e := <-s.ch:
			s.write(e)
		case <-s.done:
			// Drain whatever is still buffered.
			for {
				select {
				case e := <-s.ch:
					s.write(e)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditSink) write(e domain.SettlementEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.store.Insert(ctx, &e); err != nil {
		s.logger.Printf("audit insert for order %d failed: %v", e.OrderID, err)
	}
}

// Verify interface compliance at compile time.
var _ settlement.EventSink = (*AuditSink)(nil)
