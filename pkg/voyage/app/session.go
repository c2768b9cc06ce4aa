package app

import (
	"errors"

	"github.com/BrandonKowalski/voyage/pkg/voyage/model"
	"github.com/BrandonKowalski/voyage/pkg/voyage/statestore"
	"github.com/BrandonKowalski/voyage/pkg/voyage/value"
)

// session is the signed in user, mirrored to the store when there is one.
type session struct {
	root *Root
	user *value.Value[model.UserID]
}

func newSession(r *Root) *session {
	s := &session{root: r, user: value.New[model.UserID]("")}
	if r.store == nil {
		return s
	}
	id, err := r.store.User(r.ctx)
	switch {
	case err == nil:
		s.user.Set(id)
	case !errors.Is(err, statestore.ErrNotFound):
		r.logger.Warn("could not load session", "error", err)
	}
	return s
}

func (s *session) User() model.UserID {
	return s.user.Get()
}

func (s *session) SetUser(id model.UserID) {
	s.user.Set(id)
	if s.root.store == nil {
		return
	}
	if err := s.root.store.SetUser(s.root.ctx, id); err != nil {
		s.root.logger.Error("could not persist session", "error", err)
	}
}
