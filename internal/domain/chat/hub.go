package chat

import "sync"

// Hub reparte los mensajes nuevos de una conversación a los suscriptores
// (streams websocket). Un suscriptor lento pierde mensajes en vez de frenar al resto.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]chan Message
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan Message)}
}

func topic(sessionID, chatKey string) string {
	return sessionID + "/" + chatKey
}

// Subscribe devuelve el canal de la conversación y la función para soltarlo.
func (h *Hub) Subscribe(sessionID, chatKey string) (<-chan Message, func()) {
	t := topic(sessionID, chatKey)
	ch := make(chan Message, 16)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	if h.subs[t] == nil {
		h.subs[t] = make(map[int]chan Message)
	}
	h.subs[t][id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[t], id)
			if len(h.subs[t]) == 0 {
				delete(h.subs, t)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Broadcast(sessionID, chatKey string, m Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[topic(sessionID, chatKey)] {
		select {
		case ch <- m:
		default:
		}
	}
}
