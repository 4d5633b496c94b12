package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"petfy/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/chat", func(pr chi.Router) {
		pr.Get("/", getChatHandler(svc))
		pr.Post("/", sendHandler(svc))
		pr.Get("/ws", streamHandler(svc))
	})
}

type chatResponse struct {
	RequestID int64     `json:"requestId"`
	Walker    string    `json:"walker"`
	IsWalker  bool      `json:"isWalker"`
	Messages  []Message `json:"messages"`
}

type sendRequest struct {
	RequestID int64  `json:"requestId"`
	Walker    string `json:"walker"`
	Text      string `json:"text"`
}

// conversationFromQuery lee ?requestId=&walker=.
func conversationFromQuery(r *http.Request) (Conversation, bool) {
	q := r.URL.Query()
	id, err := strconv.ParseInt(strings.TrimSpace(q.Get("requestId")), 10, 64)
	if err != nil {
		return Conversation{}, false
	}
	return Conversation{RequestID: id, Walker: q.Get("walker")}, true
}

// getChatHandler godoc
// @Summary Conversación de una solicitud (o saludo inicial)
// @Tags chat
// @Produce json
// @Param requestId query int true "Solicitud"
// @Param walker query string false "Paseador"
// @Success 200 {object} chatResponse
// @Router /chat [get]
func getChatHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		c, ok := conversationFromQuery(r)
		if !ok {
			http.Error(w, "requestId required", http.StatusBadRequest)
			return
		}

		msgs, err := svc.Load(r.Context(), sess, c)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, chatResponse{
			RequestID: c.RequestID,
			Walker:    c.walker(),
			IsWalker:  viewerIsWalker(sess, c),
			Messages:  msgs,
		})
	}
}

// sendHandler godoc
// @Summary Enviar mensaje (la respuesta automática llega después)
// @Tags chat
// @Accept json
// @Produce json
// @Param body body sendRequest true "Mensaje"
// @Success 201 {object} Message
// @Router /chat [post]
func sendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		msg, err := svc.Send(r.Context(), sess, Conversation{RequestID: req.RequestID, Walker: req.Walker}, req.Text)
		if errors.Is(err, ErrInvalidInput) {
			http.Error(w, "text required", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsIncoming struct {
	Text string `json:"text"`
}

// streamHandler abre un websocket sobre la conversación: empuja cada mensaje nuevo
// y acepta {"text": "..."} como envío.
func streamHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.GetSession(r.Context())

		c, ok := conversationFromQuery(r)
		if !ok {
			http.Error(w, "requestId required", http.StatusBadRequest)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		ch, unsubscribe := svc.Hub().Subscribe(sess.ID(), c.key())
		defer unsubscribe()

		var writeMu sync.Mutex
		send := func(v any) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return conn.WriteJSON(v)
		}

		history, err := svc.Load(r.Context(), sess, c)
		if err != nil || send(history) != nil {
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				var in wsIncoming
				if err := conn.ReadJSON(&in); err != nil {
					return
				}
				if _, err := svc.Send(r.Context(), sess, c, in.Text); err != nil && !errors.Is(err, ErrInvalidInput) {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				if err := send(m); err != nil {
					return
				}
			}
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
