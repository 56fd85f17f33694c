package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/itchan-dev/tunetag/shared/domain"
	"github.com/itchan-dev/tunetag/shared/logger"
)

// AuthState is the identity of the current session. Empty User means nobody
// is logged in; empty Error means the last action succeeded.
type AuthState struct {
	User     domain.UserId
	Username domain.Username
	Error    string
}

type AuthStore struct {
	api AuthAPI
	log *slog.Logger

	mu    sync.RWMutex
	state AuthState
}

func NewAuthStore(api AuthAPI) *AuthStore {
	return &AuthStore{api: api, log: logger.For("auth")}
}

func (s *AuthStore) State() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *AuthStore) Err() string {
	return s.State().Error
}

// CurrentUser implements Session.
func (s *AuthStore) CurrentUser() (domain.UserId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User, s.state.User != ""
}

func (s *AuthStore) Register(ctx context.Context, username domain.Username, password domain.Password) {
	user, err := s.api.Register(ctx, username, password)
	s.setIdentity(username, user, err)
}

func (s *AuthStore) Login(ctx context.Context, username domain.Username, password domain.Password) {
	s.log.Debug("attempting to log in", "username", username)
	user, err := s.api.Login(ctx, username, password)
	s.setIdentity(username, user, err)
}

// setIdentity applies a register/login outcome: any failure drops the
// identity entirely.
func (s *AuthStore) setIdentity(username domain.Username, user domain.UserId, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = AuthState{Error: err.Error()}
		return
	}
	s.state = AuthState{User: user, Username: username}
}

// DeleteUser removes the account and ends the session. On failure the
// session is kept.
func (s *AuthStore) DeleteUser(ctx context.Context, username domain.Username, password domain.Password) {
	err := s.api.DeleteUser(ctx, username, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
		return
	}
	s.state = AuthState{}
}

func (s *AuthStore) ChangePassword(ctx context.Context, username domain.Username, oldPassword, newPassword domain.Password) {
	err := s.api.ChangePassword(ctx, username, oldPassword, newPassword)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Error = errorMessage(err)
}

// Logout forgets the session locally. The backend is not involved.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = AuthState{}
}

// GetUserByID resolves a user id to its username.
func (s *AuthStore) GetUserByID(ctx context.Context, userId domain.UserId) (domain.Username, bool) {
	username, err := s.api.GetUserById(ctx, userId)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state.Error = err.Error()
		return "", false
	}
	s.state.Error = ""
	return username, true
}
