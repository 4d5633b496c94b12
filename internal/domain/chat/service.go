package chat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"petfy/internal/domain/session"
	"petfy/internal/platform/logger"
	"petfy/internal/platform/metrics"
	"petfy/internal/ports/events"
	"petfy/internal/ports/kv"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

const DefaultReplyDelay = 2500 * time.Millisecond

type Service struct {
	hub *Hub
	pub events.Publisher
	log logger.Logger

	delay time.Duration
	now   func() time.Time
	pick  func(n int) int
	after func(d time.Duration, f func())

	wg sync.WaitGroup
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option { return func(s *Service) { s.pub = p } }
func WithLogger(l logger.Logger) Option       { return func(s *Service) { s.log = l } }
func WithReplyDelay(d time.Duration) Option   { return func(s *Service) { s.delay = d } }

func NewService(hub *Hub, opts ...Option) *Service {
	s := &Service{
		hub:   hub,
		pub:   events.Nop{},
		log:   logger.Nop(),
		delay: DefaultReplyDelay,
		now:   time.Now,
		pick:  rand.Intn,
		after: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Hub() *Hub { return s.hub }

// Conversation identifica un chat: solicitud + nombre del paseador.
type Conversation struct {
	RequestID int64
	Walker    string
}

func (c Conversation) key() string {
	return kv.ChatKey(c.RequestID, c.walker())
}

func (c Conversation) walker() string {
	w := strings.TrimSpace(c.Walker)
	if w == "" {
		return DefaultWalker
	}
	return w
}

// viewerIsWalker: quien mira es el paseador si su username coincide con el nombre del chat.
func viewerIsWalker(sess *session.Session, c Conversation) bool {
	u, ok := sess.CurrentUser()
	return ok && u.Username == c.walker()
}

// Key es la clave de almacenamiento de la conversación.
func (s *Service) Key(c Conversation) string { return c.key() }

// Load devuelve la conversación guardada o, si no hay, el saludo del paseador.
func (s *Service) Load(ctx context.Context, sess *session.Session, c Conversation) ([]Message, error) {
	msgs, found, err := s.read(ctx, sess, c)
	if err != nil {
		return nil, err
	}
	if found {
		return msgs, nil
	}
	return []Message{{
		ID:        1,
		Text:      greeting(c.walker(), viewerIsWalker(sess, c)),
		Sender:    SenderWalker,
		Timestamp: s.now(),
	}}, nil
}

// read: JSON corrupto cuenta como conversación inexistente.
func (s *Service) read(ctx context.Context, sess *session.Session, c Conversation) ([]Message, bool, error) {
	var msgs []Message
	found, err := kv.ReadJSON(ctx, sess.Store(), c.key(), &msgs)
	if errors.Is(err, kv.ErrMalformed) {
		s.log.Warn("malformed chat discarded", map[string]any{"session_id": sess.ID(), "key": c.key()})
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return msgs, found, nil
}

// Send agrega el mensaje, guarda la conversación completa y agenda la respuesta
// automática de la otra parte.
func (s *Service) Send(ctx context.Context, sess *session.Session, c Conversation, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrInvalidInput
	}

	asWalker := viewerIsWalker(sess, c)
	msg := Message{
		ID:        s.now().UnixMilli(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: s.now(),
	}
	if asWalker {
		msg.Sender = SenderWalker
	}

	err := sess.Update(func() error {
		msgs, err := s.Load(ctx, sess, c)
		if err != nil {
			return err
		}
		return kv.WriteJSON(ctx, sess.Store(), c.key(), append(msgs, msg))
	})
	if err != nil {
		return Message{}, err
	}
	s.appended(ctx, sess.ID(), c, msg)

	epoch := sess.Epoch()
	s.wg.Add(1)
	s.after(s.delay, func() {
		defer s.wg.Done()
		s.reply(sess, c, asWalker, epoch)
	})
	return msg, nil
}

func (s *Service) reply(sess *session.Session, c Conversation, toWalker bool, epoch uint64) {
	ctx := context.Background()

	msg := Message{Timestamp: s.now()}
	if toWalker {
		msg.Sender = SenderUser
		msg.ID = s.now().UnixMilli()
		msg.Text = clientReplies[s.pick(len(clientReplies))]
	} else {
		msg.Sender = SenderWalker
		msg.ID = s.now().UnixMilli() + 1
		msg.Text = walkerReplies[s.pick(len(walkerReplies))]
	}

	written := false
	err := sess.Update(func() error {
		// la sesión cerró (logout) mientras esperábamos
		if sess.Epoch() != epoch {
			return nil
		}
		msgs, _, err := s.read(ctx, sess, c)
		if err != nil {
			return err
		}
		written = true
		return kv.WriteJSON(ctx, sess.Store(), c.key(), append(msgs, msg))
	})
	if err != nil {
		s.log.Error("chat reply failed", map[string]any{"session_id": sess.ID(), "key": c.key(), "err": err})
		return
	}
	if written {
		s.appended(ctx, sess.ID(), c, msg)
	}
}

func (s *Service) appended(ctx context.Context, sessionID string, c Conversation, m Message) {
	metrics.ChatMessages.WithLabelValues(string(m.Sender)).Inc()
	s.hub.Broadcast(sessionID, c.key(), m)

	err := s.pub.Publish(ctx, events.Event{
		Type:      events.ChatMessage,
		SessionID: sessionID,
		RequestID: c.RequestID,
		At:        m.Timestamp.UTC(),
		Data:      map[string]any{"walker": c.walker(), "sender": m.Sender},
	})
	if err != nil {
		s.log.Warn("publish event failed", map[string]any{"type": events.ChatMessage, "err": err})
	}
}

// Wait bloquea hasta que se escriban las respuestas pendientes (shutdown y tests).
func (s *Service) Wait() {
	s.wg.Wait()
}
