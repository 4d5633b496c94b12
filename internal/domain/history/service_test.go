package history

import (
	"context"
	"errors"
	"testing"

	"petfy/internal/adapters/storage/memory"
	"petfy/internal/domain/session"
	"petfy/internal/domain/walks"
	"petfy/internal/ports/kv"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	m := session.NewManager(memory.NewStore(), nil)
	s, err := m.Open(context.Background(), session.NewID())
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}

func TestFinalized_FallsBackToExampleWalks(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	svc := NewService(walks.NewKVRepository(), nil)

	// pendientes/confirmadas no cuentan como finalizadas
	if err := kv.WriteJSON(ctx, sess.Store(), kv.KeyWalkRequests, []walks.WalkRequest{
		{ID: 5, Date: "2025-10-21", StartTime: "09:00", Walker: "Sofia", Status: walks.StatusConfirmed},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	view, err := svc.Finalized(ctx, sess, "")
	if err != nil {
		t.Fatalf("finalized: %v", err)
	}
	if !view.Examples || len(view.Walks) != 2 {
		t.Fatalf("expected 2 example walks, got %+v", view)
	}
	if view.Walks[0].ID != 1 || view.Walks[0].Walker != "Martin" || view.Walks[1].Address != "Av. Santa Fe 5678, CABA" {
		t.Fatalf("unexpected examples: %+v", view.Walks)
	}
	if view.AppRating != nil {
		t.Fatalf("expected no app rating")
	}
}

func TestFinalized_CompletedWalksWithRatingsAndFilter(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	svc := NewService(walks.NewKVRepository(), nil)

	done := true
	if err := kv.WriteJSON(ctx, sess.Store(), kv.KeyWalkRequests, []walks.WalkRequest{
		{ID: 10, Date: "2025-10-01", StartTime: "08:00", Address: "Calle 1", Walker: "Azul", Status: walks.StatusConfirmed, IsCompleted: &done},
		{ID: 11, Date: "2025-10-15", StartTime: "18:30", Address: "Calle 2", Walker: "Tomas", Status: walks.StatusConfirmed, IsCompleted: &done},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.RateWalk(ctx, sess, 11, 4); err != nil {
		t.Fatalf("rate walk: %v", err)
	}

	view, err := svc.Finalized(ctx, sess, "2025-10-10")
	if err != nil {
		t.Fatalf("finalized: %v", err)
	}
	if view.Examples || len(view.Walks) != 1 {
		t.Fatalf("expected one real walk, got %+v", view)
	}
	w := view.Walks[0]
	if w.ID != 11 || w.Time != "18:30" || w.Status != StatusFinalized || w.Rating == nil || *w.Rating != 4 {
		t.Fatalf("unexpected walk: %+v", w)
	}
}

func TestFinalized_InvalidFrom(t *testing.T) {
	sess := newTestSession(t)
	svc := NewService(walks.NewKVRepository(), nil)

	if _, err := svc.Finalized(context.Background(), sess, "20/10/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestRateWalk_ExampleWalkAndBounds(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	svc := NewService(walks.NewKVRepository(), nil)

	if err := svc.RateWalk(ctx, sess, 1, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 0 stars, got %v", err)
	}
	if err := svc.RateWalk(ctx, sess, 1, 6); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for 6 stars, got %v", err)
	}

	if err := svc.RateWalk(ctx, sess, 1, 5); err != nil {
		t.Fatalf("rate: %v", err)
	}
	if err := svc.RateWalk(ctx, sess, 1, 2); err != nil {
		t.Fatalf("re-rate: %v", err)
	}

	view, _ := svc.Finalized(ctx, sess, "")
	if view.Walks[0].Rating == nil || *view.Walks[0].Rating != 2 {
		t.Fatalf("expected rating 2 on example walk, got %+v", view.Walks[0])
	}
	if view.Walks[1].Rating != nil {
		t.Fatalf("walk 2 must stay unrated")
	}

	raw, _ := sess.Store().Get(ctx, kv.KeyWalkRatings)
	if string(raw) != `{"1":2}` {
		t.Fatalf("unexpected stored ratings %s", raw)
	}
}

func TestRateApp(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)
	svc := NewService(walks.NewKVRepository(), nil)

	if _, ok, _ := svc.AppRating(ctx, sess); ok {
		t.Fatalf("expected no rating yet")
	}
	if err := svc.RateApp(ctx, sess, 3); err != nil {
		t.Fatalf("rate app: %v", err)
	}

	raw, _ := sess.Store().Get(ctx, kv.KeyAppRating)
	if string(raw) != "3" {
		t.Fatalf("appRating must be stored as plain integer, got %q", raw)
	}

	view, _ := svc.Finalized(ctx, sess, "")
	if view.AppRating == nil || *view.AppRating != 3 {
		t.Fatalf("expected app rating in view")
	}
}

func TestThanksMessage(t *testing.T) {
	if got := ThanksMessage("el paseo", 1); got != "¡Gracias por calificar el paseo con 1 estrella!" {
		t.Fatalf("unexpected %q", got)
	}
	if got := ThanksMessage("nuestra app", 4); got != "¡Gracias por calificar nuestra app con 4 estrellas!" {
		t.Fatalf("unexpected %q", got)
	}
}
