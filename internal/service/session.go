package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"books-storefront/internal/client"
	"books-storefront/internal/dto"
	"books-storefront/internal/metrics"
	"books-storefront/internal/model"
	"books-storefront/internal/repository"

	"github.com/labstack/gommon/log"
)

// CurrentUserKey is the single storage key holding the persisted session.
const CurrentUserKey = "currentUser"

type SessionService interface {
	SignIn(ctx context.Context, username, password string) (*model.Session, error)
	Register(ctx context.Context, username, email, password string) (string, error)
	SignOut(ctx context.Context) error
	Restore(ctx context.Context) (*model.Session, error)
	Current() *model.Session
	OnChange(fn func(*model.Session))
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error)
}

type sessionServiceImpl struct {
	marketplace client.MarketplaceClient
	storage     repository.LocalStorage
	logger      *log.Logger
	now         func() time.Time

	mu        sync.RWMutex
	current   *model.Session
	listeners []func(*model.Session)
}

func NewSessionService(
	marketplace client.MarketplaceClient,
	storage repository.LocalStorage,
	logger *log.Logger,
) SessionService {
	return &sessionServiceImpl{
		marketplace: marketplace,
		storage:     storage,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *sessionServiceImpl) SignIn(ctx context.Context, username, password string) (*model.Session, error) {
	req := dto.LoginRequest{Username: username, Password: password}
	if err := validateStruct(req, "Please fill in all fields"); err != nil {
		return nil, err
	}

	session, err := s.marketplace.Login(ctx, req)
	if err != nil {
		metrics.SessionEvents.WithLabelValues("signin", "failed").Inc()
		s.logger.Warnf("sign in %s: %v", username, err)
		return nil, backendError(ErrAuthFailed, err, "Sign in failed. Please try again.")
	}
	metrics.SessionEvents.WithLabelValues("signin", "ok").Inc()

	s.persist(ctx, session)
	s.set(session)
	return session, nil
}

// Register creates the account without signing in.
func (s *sessionServiceImpl) Register(ctx context.Context, username, email, password string) (string, error) {
	req := dto.RegisterRequest{Username: username, Email: email, Password: password}
	if err := validateStruct(req, "Please fill in all fields"); err != nil {
		return "", err
	}

	if err := s.marketplace.Register(ctx, req); err != nil {
		metrics.SessionEvents.WithLabelValues("register", "failed").Inc()
		s.logger.Warnf("register %s: %v", username, err)
		return "", backendError(ErrAuthFailed, err, "Registration failed. Please try again.")
	}
	metrics.SessionEvents.WithLabelValues("register", "ok").Inc()

	return "Registration successful! Please sign in.", nil
}

func (s *sessionServiceImpl) SignOut(ctx context.Context) error {
	err := s.storage.Remove(ctx, CurrentUserKey)
	if err != nil {
		s.logger.Errorf("remove persisted session: %v", err)
	}
	metrics.SessionEvents.WithLabelValues("signout", "ok").Inc()
	s.set(nil)
	return err
}

// Restore loads the persisted session. Undecodable or expired values are deleted.
func (s *sessionServiceImpl) Restore(ctx context.Context) (*model.Session, error) {
	raw, ok, err := s.storage.Get(ctx, CurrentUserKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.set(nil)
		return nil, nil
	}

	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil || session.Username == "" {
		s.logger.Warnf("discarding unreadable persisted session")
		s.discard(ctx)
		return nil, nil
	}
	if session.Expired(s.now()) {
		s.logger.Infof("persisted session for %s expired", session.Username)
		s.discard(ctx)
		return nil, nil
	}

	s.set(&session)
	return &session, nil
}

func (s *sessionServiceImpl) Current() *model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	cp := *s.current
	return &cp
}

func (s *sessionServiceImpl) OnChange(fn func(*model.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *sessionServiceImpl) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	req := dto.PasswordResetRequest{Email: email}
	if err := validateStruct(req, "Please enter your email address."); err != nil {
		return "", err
	}

	msg, err := s.marketplace.RequestPasswordReset(ctx, req)
	if err != nil {
		return "", backendError(ErrBackend, err, "Failed to connect to server.")
	}
	return msg, nil
}

func (s *sessionServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) (string, error) {
	req := dto.PasswordResetConfirmRequest{Token: token, NewPassword: newPassword}
	if err := validateStruct(req, "Token and new password required"); err != nil {
		return "", err
	}

	msg, err := s.marketplace.ConfirmPasswordReset(ctx, req)
	if err != nil {
		return "", backendError(ErrBackend, err, "Failed to connect to server.")
	}
	return msg, nil
}

func (s *sessionServiceImpl) persist(ctx context.Context, session *model.Session) {
	raw, err := json.Marshal(session)
	if err != nil {
		s.logger.Errorf("marshal session: %v", err)
		return
	}
	if err := s.storage.Set(ctx, CurrentUserKey, string(raw)); err != nil {
		s.logger.Errorf("persist session: %v", err)
	}
}

func (s *sessionServiceImpl) discard(ctx context.Context) {
	if err := s.storage.Remove(ctx, CurrentUserKey); err != nil {
		s.logger.Errorf("remove persisted session: %v", err)
	}
	s.set(nil)
}

// set replaces the in-memory session and notifies listeners outside the lock.
func (s *sessionServiceImpl) set(session *model.Session) {
	s.mu.Lock()
	s.current = session
	listeners := make([]func(*model.Session), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, fn := range listeners {
		var cp *model.Session
		if session != nil {
			v := *session
			cp = &v
		}
		fn(cp)
	}
}
