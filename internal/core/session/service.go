package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/propdesk/propdesk/internal/core/validation"
)

type Service struct {
	store  Store
	auth   Authenticator
	tokens *Tokens
	logger *slog.Logger
}

func NewService(store Store, auth Authenticator, tokens *Tokens, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		auth:   auth,
		tokens: tokens,
		logger: logger.With("component", "session"),
	}
}

// Resolve returns the session id carried by cookie, minting a new one when
// the cookie is missing or invalid. fresh reports whether a new cookie
// value must be sent.
func (s *Service) Resolve(cookie string) (sid, value string, fresh bool, err error) {
	if cookie != "" {
		if sid, err := s.tokens.Parse(cookie); err == nil {
			return sid, cookie, false, nil
		}
	}

	sid = uuid.NewString()
	value, err = s.tokens.Issue(sid)
	if err != nil {
		return "", "", false, fmt.Errorf("issue session cookie: %w", err)
	}
	return sid, value, true, nil
}

func (s *Service) Current(ctx context.Context, sid string) (Values, error) {
	return s.store.Load(ctx, sid)
}

// Login stores the token, name and email returned by the API under sid.
func (s *Service) Login(ctx context.Context, sid, email, password string) (Values, error) {
	email = strings.TrimSpace(email)
	ve := &validation.ValidationErrors{}
	if email == "" {
		ve.Errors = append(ve.Errors, validation.ValidationError{Field: "email", Message: "Email is required"})
	}
	if password == "" {
		ve.Errors = append(ve.Errors, validation.ValidationError{Field: "password", Message: "Password is required"})
	}
	if len(ve.Errors) > 0 {
		return Values{}, ve
	}

	v, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return Values{}, err
	}
	if err := s.store.Save(ctx, sid, v); err != nil {
		return Values{}, err
	}

	s.logger.Info("user signed in", "email", v.Email)
	return v, nil
}

// Logout tells the API to revoke the token and clears the session. The
// local entries are removed even when the API call fails.
func (s *Service) Logout(ctx context.Context, sid string) error {
	v, err := s.store.Load(ctx, sid)
	if err != nil {
		return err
	}
	if v.LoggedIn() {
		if err := s.auth.Logout(ctx, v.Token); err != nil {
			s.logger.Warn("api logout failed, clearing session anyway", "error", err)
		}
	}
	return s.store.Delete(ctx, sid)
}
