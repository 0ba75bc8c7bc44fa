// Package session holds the signed-in user's context: identity, bearer token
// and the last dashboard range. It is created on login, torn down on logout,
// and persisted through a Store so it survives between commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"

	"monexel/internal/core"
	"monexel/internal/log"
)

// Persisted keys.
const (
	KeyUserEmail = "userEmail"
	KeyUserID    = "userId"
	KeyJWT       = "jwt"
	KeyStartDate = "startDate"
	KeyEndDate   = "endDate"
)

var allKeys = []string{KeyUserEmail, KeyUserID, KeyJWT, KeyStartDate, KeyEndDate}

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrExpired     = errors.New("session expired, please sign in again")
)

// Store is the key/value persistence behind a Manager.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Session is the identity of the signed-in user.
type Session struct {
	Email     string
	UserID    core.UserID
	Token     string
	ExpiresAt time.Time
}

// Expired reports whether the token's exp claim is in the past. Tokens
// without exp never expire client-side.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type Manager struct {
	store  Store
	logger *log.Logger
	now    func() time.Time

	mu  sync.RWMutex
	cur *Session
	rng core.DateRange
}

func NewManager(store Store, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		store:  store,
		logger: logger.WithComponent(log.ComponentSession),
		now:    time.Now,
	}
}

// Restore loads persisted state. A corrupt user id is treated as signed out.
func (m *Manager) Restore(ctx context.Context) error {
	values := make(map[string]string, len(allKeys))
	for _, k := range allKeys {
		v, ok, err := m.store.Get(ctx, k)
		if err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		if ok {
			values[k] = v
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rng = core.DateRange{}
	if d, err := core.ParseDate(values[KeyStartDate]); err == nil {
		m.rng.Start = d
	}
	if d, err := core.ParseDate(values[KeyEndDate]); err == nil {
		m.rng.End = d
	}

	m.cur = nil
	token := values[KeyJWT]
	if token == "" {
		return nil
	}
	id, err := core.ParseUserID(values[KeyUserID])
	if err != nil {
		m.logger.WarnContext(ctx, "Ignoring persisted session with invalid user id", log.FieldError, err.Error())
		return nil
	}
	m.cur = &Session{
		Email:     values[KeyUserEmail],
		UserID:    id,
		Token:     token,
		ExpiresAt: tokenExpiry(token),
	}
	return nil
}

// Begin starts a session from a sign-in response and persists it.
func (m *Manager) Begin(ctx context.Context, res core.LoginResult) (Session, error) {
	if res.JWT == "" {
		return Session{}, fmt.Errorf("begin session: empty token")
	}
	if res.ID <= 0 {
		return Session{}, fmt.Errorf("begin session: %w", core.ErrInvalidUserID)
	}

	s := Session{
		Email:     res.Email,
		UserID:    res.ID,
		Token:     res.JWT,
		ExpiresAt: tokenExpiry(res.JWT),
	}
	err := m.store.SetMany(ctx, map[string]string{
		KeyUserEmail: s.Email,
		KeyUserID:    s.UserID.String(),
		KeyJWT:       s.Token,
	})
	if err != nil {
		return Session{}, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.cur = &s
	m.mu.Unlock()

	fields := log.NewFields().WithOperation(log.OpSignIn).WithUser(int64(s.UserID))
	m.logger.InfoContext(ctx, "Session started", fields.ToSlice()...)
	return s, nil
}

// End clears every persisted key, including the dashboard range.
func (m *Manager) End(ctx context.Context) error {
	m.mu.Lock()
	m.cur = nil
	m.rng = core.DateRange{}
	m.mu.Unlock()

	if err := m.store.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.logger.InfoContext(ctx, "Session ended", log.FieldOperation, log.OpSignOut)
	return nil
}

// Current returns the active session or ErrNotSignedIn / ErrExpired.
func (m *Manager) Current() (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cur == nil {
		return Session{}, ErrNotSignedIn
	}
	if m.cur.Expired(m.now()) {
		return *m.cur, ErrExpired
	}
	return *m.cur, nil
}

// UserID returns the signed-in user's id, zero when signed out.
func (m *Manager) UserID() core.UserID {
	s, err := m.Current()
	if err != nil {
		return 0
	}
	return s.UserID
}

// Token implements api.TokenSource. It is empty when signed out or expired.
func (m *Manager) Token() string {
	s, err := m.Current()
	if err != nil {
		return ""
	}
	return s.Token
}

// Range returns the last persisted dashboard range.
func (m *Manager) Range() core.DateRange {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rng
}

// SaveRange persists the dashboard range. Empty ends are removed.
func (m *Manager) SaveRange(ctx context.Context, rng core.DateRange) error {
	m.mu.Lock()
	m.rng = rng
	m.mu.Unlock()

	set := map[string]string{}
	var del []string
	for key, d := range map[string]core.Date{KeyStartDate: rng.Start, KeyEndDate: rng.End} {
		if d.IsEmpty() {
			del = append(del, key)
		} else {
			set[key] = d.String()
		}
	}
	if len(set) > 0 {
		if err := m.store.SetMany(ctx, set); err != nil {
			return fmt.Errorf("persist range: %w", err)
		}
	}
	if err := m.store.Delete(ctx, del...); err != nil {
		return fmt.Errorf("persist range: %w", err)
	}
	return nil
}

// tokenExpiry reads exp without verifying the signature; the server is the
// one that validates tokens.
func tokenExpiry(token string) time.Time {
	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(claims.ExpiresAt, 0)
}
