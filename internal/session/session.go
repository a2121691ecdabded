// Package session holds the per-interaction login state of an ATM user:
// who is logged in, how many PIN attempts have failed, and whether the
// session is blocked. Sessions live in process memory only; a restart, or
// a new session, starts over at LoggedOut with no failed attempts.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/baharkarakas/atm-backend/internal/models"
	"github.com/shopspring/decimal"
)

// MaxAttempts is the number of consecutive failed logins that block a session.
const MaxAttempts = 3

type State string

const (
	LoggedOut State = "logged_out"
	LoggedIn  State = "logged_in"
	Blocked   State = "blocked"
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrAlreadyLoggedIn = errors.New("already logged in")
	ErrSessionBlocked  = errors.New("card blocked, please contact bank")
	ErrSessionNotFound = errors.New("session not found")

	// ErrAuthFailure is what an authenticate callback returns for a
	// credential mismatch. Only this error counts as a failed attempt.
	ErrAuthFailure = errors.New("invalid credentials")
)

// LoginResult describes the outcome of one login attempt.
type LoginResult struct {
	User         models.User
	AttemptsLeft int
	Blocked      bool
}

type Session struct {
	id string

	mu       sync.Mutex
	state    State
	user     *models.User
	failed   int
	lastSeen time.Time
}

func New(id string) *Session {
	return &Session{id: id, state: LoggedOut, lastSeen: time.Now()}
}

func (s *Session) ID() string { return s.id }

// Snapshot is a consistent copy of the session's state.
type Snapshot struct {
	ID             string       `json:"session_id"`
	State          State        `json:"state"`
	FailedAttempts int          `json:"failed_attempts"`
	User           *models.User `json:"user,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{ID: s.id, State: s.state, FailedAttempts: s.failed}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

// Login runs one login attempt. authenticate is only invoked from LoggedOut;
// a blocked session refuses the attempt without looking at credentials.
// The session lock is held for the whole attempt.
func (s *Session) Login(authenticate func() (models.User, error)) (LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()

	switch s.state {
	case Blocked:
		return LoginResult{Blocked: true}, ErrSessionBlocked
	case LoggedIn:
		return LoginResult{User: *s.user, AttemptsLeft: MaxAttempts}, ErrAlreadyLoggedIn
	}

	u, err := authenticate()
	if err == nil {
		s.state = LoggedIn
		s.user = &u
		s.failed = 0
		return LoginResult{User: u, AttemptsLeft: MaxAttempts}, nil
	}
	if !errors.Is(err, ErrAuthFailure) {
		return LoginResult{AttemptsLeft: MaxAttempts - s.failed}, err
	}

	s.failed++
	res := LoginResult{AttemptsLeft: MaxAttempts - s.failed}
	if s.failed >= MaxAttempts {
		s.state = Blocked
		res.Blocked = true
	}
	return res, err
}

// Exit returns the session to LoggedOut from any state and clears the
// failed-attempt counter. It is the only way out of Blocked.
func (s *Session) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = LoggedOut
	s.user = nil
	s.failed = 0
	s.lastSeen = time.Now()
}

// CurrentUser returns the logged-in user as last cached by the session.
func (s *Session) CurrentUser() (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != LoggedIn || s.user == nil {
		return models.User{}, ErrNotLoggedIn
	}
	return *s.user, nil
}

// SetBalance refreshes the cached balance after a committed mutation.
// It is a no-op once the user has exited.
func (s *Session) SetBalance(userID int64, b decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil && s.user.ID == userID {
		s.user.Balance = b
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
