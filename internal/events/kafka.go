package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"swapchain/internal/domain"
	"swapchain/internal/settlement"
)

// kafkaWriteTimeout bounds a single produce call.
const kafkaWriteTimeout = 10 * time.Second

// messageWriter is the subset of kafka.Writer the sink needs.
// Satisfied by *kafka.Writer; replaced in tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// kafkaEvent is the wire representation of a settlement event.
type kafkaEvent struct {
	Type       string `json:"type"`
	OrderID    uint64 `json:"order_id"`
	Maker      string `json:"maker"`
	Taker      string `json:"taker,omitempty"`
	TokenIn    string `json:"token_in"`
	TokenOut   string `json:"token_out"`
	AmountIn   uint64 `json:"amount_in"`
	AmountOut  uint64 `json:"amount_out"`
	Status     string `json:"status"`
	OccurredAt int64  `json:"occurred_at"`
}

// KafkaSink publishes settlement events to a Kafka topic, keyed by
// order id so all transitions of one order land in one partition, in
// order. Publish never blocks the settlement engine.
type KafkaSink struct {
	writer messageWriter
	logger *log.Logger

	ch   chan domain.SettlementEvent
	done chan struct{}
	wg   sync.WaitGroup

	onDrop func()
}

// KafkaSinkConfig configures a KafkaSink.
type KafkaSinkConfig struct {
	Brokers []string
	Topic   string
	// BufferSize is the event buffer capacity. Defaults to 1024.
	BufferSize int
	// Logger defaults to the standard logger.
	Logger *log.Logger
	// OnDrop is invoked once per dropped event.
	OnDrop func()
}

// NewKafkaSink creates and starts a Kafka sink.
func NewKafkaSink(cfg KafkaSinkConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, fmt.Errorf("kafka sink: brokers and topic are required")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}

	return newKafkaSink(writer, cfg), nil
}

// newKafkaSink wires the sink around a writer. Split out for tests.
func newKafkaSink(writer messageWriter, cfg KafkaSinkConfig) *KafkaSink {
	size := cfg.BufferSize
	if size <= 0 {
		size = 1024
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &KafkaSink{
		writer: writer,
		logger: logger,
		ch:     make(chan domain.SettlementEvent, size),
		done:   make(chan struct{}),
		onDrop: cfg.OnDrop,
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// Publish enqueues an event for delivery. Non-blocking.
func (s *KafkaSink) Publish(e domain.SettlementEvent) {
	select {
	case s.ch <- e:
	default:
		s.logger.Printf("kafka buffer full, dropping event %s for order %d", e.Type, e.OrderID)
		if s.onDrop != nil {
			s.onDrop()
		}
	}
}

// Close drains the buffer, stops the producer and closes the writer.
func (s *KafkaSink) Close() error {
	close(s.done)
	s.wg.Wait()
	return s.writer.Close()
}

func (s *KafkaSink) run() {
	defer s.wg.Done()

	for {
		select {
		case e := <-s.ch:
			s.produce(e)
		case <-s.done:
			for {
				select {
				case e := <-s.ch:
					s.produce(e)
				default:
					return
				}
			}
		}
	}
}

func (s *KafkaSink) produce(e domain.SettlementEvent) {
	payload, err := json.Marshal(kafkaEvent{
		Type:       string(e.Type),
		OrderID:    uint64(e.OrderID),
		Maker:      string(e.Maker),
		Taker:      string(e.Taker),
		TokenIn:    string(e.TokenIn),
		TokenOut:   string(e.TokenOut),
		AmountIn:   e.AmountIn,
		AmountOut:  e.AmountOut,
		Status:     string(e.Status),
		OccurredAt: e.OccurredAt,
	})
	if err != nil {
		s.logger.Printf("marshal event for order %d: %v", e.OrderID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), kafkaWriteTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(e.OrderID), 10)),
		Value: payload,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.logger.Printf("produce event %s for order %d: %v", e.Type, e.OrderID, err)
	}
}

// Verify interface compliance at compile time.
var _ settlement.EventSink = (*KafkaSink)(nil)
