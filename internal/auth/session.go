// Package auth keeps the patient's API session in the OS keyring.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DarkZangetsu/medcare/internal/api"
	"github.com/DarkZangetsu/medcare/internal/keyring"
	"github.com/DarkZangetsu/medcare/internal/logger"
	"github.com/DarkZangetsu/medcare/internal/models"
)

// ErrNotLoggedIn is returned by operations that need a stored token.
var ErrNotLoggedIn = errors.New("not logged in, run 'medcare login' first")

// Authenticator is the part of the remote API used to open a session.
type Authenticator interface {
	Login(ctx context.Context, phone, password string) (string, models.User, error)
	Register(ctx context.Context, in api.RegisterInput) (string, models.User, error)
}

// Canceller drops every pending notification on logout.
type Canceller interface {
	CancelAll(ctx context.Context) error
}

// Status describes the stored token without verifying its signature.
type Status struct {
	LoggedIn  bool
	Expired   bool
	Subject   string
	ExpiresAt time.Time
}

// Session is an api.TokenSource backed by the keyring. The token is cached
// after the first read.
type Session struct {
	mu     sync.Mutex
	token  string
	loaded bool
	now    func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// Token returns the stored token, or an empty string when nobody is logged in.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return s.token, nil
	}
	token, err := keyring.GetToken()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	s.token = token
	s.loaded = true
	return s.token, nil
}

func (s *Session) save(token string) error {
	if err := keyring.SetToken(token); err != nil {
		return err
	}
	s.mu.Lock()
	s.token = token
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *Session) Login(ctx context.Context, a Authenticator, phone, password string) (models.User, error) {
	token, user, err := a.Login(ctx, phone, password)
	if err != nil {
		return models.User{}, err
	}
	if err := s.save(token); err != nil {
		return models.User{}, err
	}
	logger.Info("Logged in", "user", user.ID)
	return user, nil
}

func (s *Session) Register(ctx context.Context, a Authenticator, in api.RegisterInput) (models.User, error) {
	token, user, err := a.Register(ctx, in)
	if err != nil {
		return models.User{}, err
	}
	if token != "" {
		if err := s.save(token); err != nil {
			return models.User{}, err
		}
	}
	logger.Info("Registered", "user", user.ID)
	return user, nil
}

// Logout cancels every pending notification and forgets the token. The
// token is removed even when cancellation fails.
func (s *Session) Logout(ctx context.Context, c Canceller) error {
	var cancelErr error
	if c != nil {
		if cancelErr = c.CancelAll(ctx); cancelErr != nil {
			logger.Warn("Failed to cancel notifications on logout", "error", cancelErr)
		}
	}

	if err := keyring.DeleteToken(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	s.mu.Lock()
	s.token = ""
	s.loaded = true
	s.mu.Unlock()
	logger.Info("Logged out")

	return cancelErr
}

// Status inspects the stored token's claims.
func (s *Session) Status() (Status, error) {
	token, err := s.Token()
	if err != nil {
		return Status{}, err
	}
	if token == "" {
		return Status{}, nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Status{}, fmt.Errorf("stored token is malformed: %w", err)
	}

	st := Status{LoggedIn: true}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		st.Subject = sub
	} else if username, ok := claims["username"].(string); ok {
		st.Subject = username
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		st.ExpiresAt = exp.Time
		st.Expired = !s.now().Before(exp.Time)
	}
	return st, nil
}
