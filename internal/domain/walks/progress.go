package walks

import (
	"context"

	"petfy/internal/domain/session"
	"petfy/internal/ports/events"
)

// El progreso de un paseo vive solo en memoria, como en la pantalla del paseador.

// Progress devuelve el estado del paseo (not_started si nunca se tocó).
func (s *Service) Progress(sess *session.Session, id int64) WalkProgress {
	s.progMu.Lock()
	defer s.progMu.Unlock()

	if p, ok := s.progress[sess.ID()][id]; ok {
		return *p
	}
	return WalkProgress{RequestID: id, Status: ProgressNotStarted}
}

// StartWalk: not_started -> in_progress.
func (s *Service) StartWalk(ctx context.Context, sess *session.Session, id int64) (WalkProgress, error) {
	return s.advance(ctx, sess, id, ProgressNotStarted, ProgressInProgress, events.WalkStarted)
}

// FinishWalk: in_progress -> finished.
func (s *Service) FinishWalk(ctx context.Context, sess *session.Session, id int64) (WalkProgress, error) {
	return s.advance(ctx, sess, id, ProgressInProgress, ProgressFinished, events.WalkFinished)
}

func (s *Service) advance(ctx context.Context, sess *session.Session, id int64, from, to Progress, evt string) (WalkProgress, error) {
	me, err := acceptorName(sess)
	if err != nil {
		return WalkProgress{}, err
	}

	r, err := s.Get(ctx, sess, id)
	if err != nil {
		return WalkProgress{}, err
	}
	if r.Status != StatusConfirmed || r.Walker != me {
		return WalkProgress{}, &Error{Kind: ErrBadState, Message: "walk is not confirmed by you"}
	}

	s.progMu.Lock()
	bySession, ok := s.progress[sess.ID()]
	if !ok {
		bySession = make(map[int64]*WalkProgress)
		s.progress[sess.ID()] = bySession
	}
	p, ok := bySession[id]
	if !ok {
		p = &WalkProgress{RequestID: id, Status: ProgressNotStarted}
		bySession[id] = p
	}

	now := s.now()
	if now.Before(p.DisabledUntil) {
		s.progMu.Unlock()
		return WalkProgress{}, ErrCooldown
	}
	if p.Status != from {
		s.progMu.Unlock()
		return WalkProgress{}, ErrBadState
	}

	p.Status = to
	p.DisabledUntil = now.Add(s.cooldown)
	out := *p
	s.progMu.Unlock()

	s.publish(ctx, evt, sess.ID(), id, nil)
	return out, nil
}

func (s *Service) forgetProgress(sessionID string, id int64) {
	s.progMu.Lock()
	defer s.progMu.Unlock()
	delete(s.progress[sessionID], id)
}

// ForgetSession descarta el progreso de una sesión (hook de logout).
func (s *Service) ForgetSession(_ context.Context, sessionID string) {
	s.progMu.Lock()
	defer s.progMu.Unlock()
	delete(s.progress, sessionID)
}
