package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"petfy/internal/domain/session"
	"petfy/internal/domain/walks"
	"petfy/internal/platform/logger"
	"petfy/internal/ports/kv"
)

const dateLayout = "2006-01-02"

type Service struct {
	repo walks.Repository
	log  logger.Logger
}

func NewService(repo walks.Repository, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, log: log}
}

// Finalized devuelve los paseos con isCompleted=true (o los de ejemplo si no hay),
// con las calificaciones guardadas aplicadas. from (YYYY-MM-DD, opcional) deja
// solo los paseos de esa fecha en adelante.
func (s *Service) Finalized(ctx context.Context, sess *session.Session, from string) (View, error) {
	var since time.Time
	if from = strings.TrimSpace(from); from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return View{}, &Error{Kind: ErrInvalidDate, Message: "from must be YYYY-MM-DD"}
		}
		since = t
	}

	all, err := s.repo.Load(ctx, sess.Store())
	if err != nil {
		return View{}, err
	}

	var out []Walk
	for _, r := range all {
		if !r.Completed() {
			continue
		}
		out = append(out, Walk{
			ID:      r.ID,
			Date:    r.Date,
			Time:    r.StartTime,
			Walker:  r.Walker,
			Status:  StatusFinalized,
			Address: r.Address,
		})
	}

	view := View{}
	if len(out) == 0 {
		out = defaultWalks()
		view.Examples = true
	}

	ratings, err := s.walkRatings(ctx, sess)
	if err != nil {
		return View{}, err
	}
	for i := range out {
		if v, ok := ratings[strconv.FormatInt(out[i].ID, 10)]; ok && v > 0 {
			out[i].Rating = &v
		}
	}

	view.Walks = make([]Walk, 0, len(out))
	for _, w := range out {
		if !since.IsZero() {
			d, err := time.Parse(dateLayout, w.Date)
			if err != nil || d.Before(since) {
				continue
			}
		}
		view.Walks = append(view.Walks, w)
	}

	if r, ok, err := s.AppRating(ctx, sess); err != nil {
		return View{}, err
	} else if ok {
		view.AppRating = &r
	}
	return view, nil
}

// walkRatings lee {"<id>": estrellas}; JSON corrupto cuenta como vacío.
func (s *Service) walkRatings(ctx context.Context, sess *session.Session) (map[string]int, error) {
	ratings := map[string]int{}
	_, err := kv.ReadJSON(ctx, sess.Store(), kv.KeyWalkRatings, &ratings)
	if errors.Is(err, kv.ErrMalformed) {
		s.log.Warn("malformed walk ratings discarded", map[string]any{"session_id": sess.ID()})
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, err
	}
	return ratings, nil
}

func validStars(stars int) error {
	if stars < 1 || stars > 5 {
		return &Error{Kind: ErrInvalidInput, Message: MsgSelectRating}
	}
	return nil
}

// ThanksMessage arma el mensaje de agradecimiento ("estrella" o "estrellas").
func ThanksMessage(what string, stars int) string {
	suffix := ""
	if stars > 1 {
		suffix = "s"
	}
	return fmt.Sprintf("¡Gracias por calificar %s con %d estrella%s!", what, stars, suffix)
}

// RateWalk guarda la calificación de un paseo (pisa la anterior).
func (s *Service) RateWalk(ctx context.Context, sess *session.Session, walkID int64, stars int) error {
	if err := validStars(stars); err != nil {
		return err
	}

	return sess.Update(func() error {
		ratings, err := s.walkRatings(ctx, sess)
		if err != nil {
			return err
		}
		ratings[strconv.FormatInt(walkID, 10)] = stars
		return kv.WriteJSON(ctx, sess.Store(), kv.KeyWalkRatings, ratings)
	})
}

// RateApp guarda la calificación de la app como entero en appRating.
func (s *Service) RateApp(ctx context.Context, sess *session.Session, stars int) error {
	if err := validStars(stars); err != nil {
		return err
	}
	return sess.Store().Set(ctx, kv.KeyAppRating, []byte(strconv.Itoa(stars)))
}

// AppRating devuelve la calificación guardada; ok=false si no hay o no parsea.
func (s *Service) AppRating(ctx context.Context, sess *session.Session) (int, bool, error) {
	raw, err := sess.Store().Get(ctx, kv.KeyAppRating)
	if errors.Is(err, kv.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, false, nil
	}
	return n, true, nil
}
