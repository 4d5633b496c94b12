package events

import (
	"context"
	"time"
)

// Tipos de evento del dominio.
const (
	WalkCreated   = "walk.created"
	WalkUpdated   = "walk.updated"
	WalkCancelled = "walk.cancelled"
	WalkConfirmed = "walk.confirmed"
	WalkAccepted  = "walk.accepted"
	WalkStarted   = "walk.started"
	WalkFinished  = "walk.finished"
	ChatMessage   = "chat.message"
	WalkerApplied = "walker.applied"
)

type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"sessionId"`
	RequestID int64     `json:"requestId,omitempty"`
	At        time.Time `json:"at"`
	Data      any       `json:"data,omitempty"`
}

// Publisher publica eventos hacia afuera (Kafka, logs).
// Un fallo de publicación nunca debe romper la operación que lo originó.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop descarta todo.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
