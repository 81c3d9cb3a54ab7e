// Package session holds the durable login session used by the operations
// CLI. The session survives process restarts through a Store; a missing or
// malformed stored session degrades to anonymous, never to an error.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/kudzaic/educ8/core/user"
)

var ErrAuthenticationFailed = errors.New("authentication failed")

// State is the session lifecycle. A new Session starts Uninitialized and
// only leaves that state through Restore, Login or Logout.
type State int

const (
	Uninitialized State = iota
	Restoring
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

type Session struct {
	usrSvc user.Service
	store  Store

	mu    sync.Mutex
	state State
	usr   user.User
}

func New(usrSvc user.Service, store Store) *Session {
	return &Session{usrSvc: usrSvc, store: store, state: Uninitialized}
}

// Restore loads a previously persisted session. Absent or unreadable state
// leaves the session anonymous.
func (s *Session) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Restoring
	data, err := s.store.Load()
	if err != nil || len(data) == 0 {
		s.state = Anonymous
		return
	}
	var usr user.User
	if err := json.Unmarshal(data, &usr); err != nil || usr.ID == "" {
		// a corrupt session is treated as no session at all
		_ = s.store.Clear()
		s.state = Anonymous
		return
	}
	s.usr = usr
	s.state = Authenticated
}

// Login authenticates the credentials against the user service and persists
// the session. On failure the current session is left untouched.
func (s *Session) Login(ctx context.Context, username, password string) (user.User, error) {
	usr, err := s.usrSvc.GetByUsernameOrEmail(ctx, username)
	if err != nil {
		return user.User{}, ErrAuthenticationFailed
	}
	if !usr.Active() {
		return user.User{}, ErrAuthenticationFailed
	}
	if err := usr.CheckPassword(password); err != nil {
		return user.User{}, ErrAuthenticationFailed
	}
	if usr, err = s.usrSvc.SetLastLogin(ctx, usr); err != nil {
		return user.User{}, errors.Wrap(err, "updating last login")
	}

	data, err := json.Marshal(usr)
	if err != nil {
		return user.User{}, errors.Wrap(err, "encoding session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(data); err != nil {
		return user.User{}, errors.Wrap(err, "persisting session")
	}
	s.usr = usr
	s.state = Authenticated
	return usr, nil
}

// Logout clears the session in memory and in the store. Logging out of an
// anonymous session is a no-op.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.usr = user.User{}
	s.state = Anonymous
	return s.store.Clear()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the authenticated user, if any.
func (s *Session) User() (user.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usr, s.state == Authenticated
}
