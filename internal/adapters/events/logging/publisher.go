package logging

import (
	"context"

	"petfy/internal/platform/logger"
	"petfy/internal/ports/events"
)

// Publisher escribe los eventos en el log (default cuando no hay Kafka).
type Publisher struct {
	log logger.Logger
}

func NewPublisher(log logger.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{log: log}
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	fields := map[string]any{
		"type":       e.Type,
		"session_id": e.SessionID,
		"at":         e.At,
	}
	if e.RequestID != 0 {
		fields["request_id"] = e.RequestID
	}
	if e.Data != nil {
		fields["data"] = e.Data
	}
	p.log.Info("event", fields)
	return nil
}
