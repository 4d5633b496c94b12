package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"petfy/internal/ports/events"

	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publica eventos en un topic, con key = sessionId para mantener
// el orden por sesión dentro de una partición.
type Producer struct {
	writer  messageWriter
	timeout time.Duration
}

func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{writer: newWriter(brokers, topic), timeout: 2 * time.Second}
}

// newWriter publica de a un evento por request: el lote no espera a llenarse.
func newWriter(brokers []string, topic string) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

func (p *Producer) Publish(ctx context.Context, e events.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafkago.Message{
		Key:   []byte(e.SessionID),
		Value: b,
		Time:  e.At,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(e.Type)},
			{Key: "request_id", Value: []byte(strconv.FormatInt(e.RequestID, 10))},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
