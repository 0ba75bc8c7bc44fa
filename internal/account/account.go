// Package account runs the sign-in, registration, profile and password
// reset flows on top of the user service and the session.
package account

import (
	"context"
	"errors"
	"strings"

	"monexel/internal/core"
	"monexel/internal/log"
	"monexel/internal/notify"
	"monexel/internal/session"
)

const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgRegistered         = "Registration successful!"
	MsgRegisterFailed     = "Registration failed! Please try again."
	MsgProfileUpdated     = "Profile updated successfully!"
	MsgProfileFailed      = "Failed to update profile."
	MsgPasswordUpdated    = "Password updated successfully!"
	MsgResetFailed        = "Failed to reset password. Please try again."
)

type UserService interface {
	SignIn(ctx context.Context, creds core.Credentials) (core.LoginResult, error)
	SignOut(ctx context.Context) (string, error)
	Register(ctx context.Context, r core.Registration) (core.User, error)
	Update(ctx context.Context, u core.User) (core.User, error)
	Profile(ctx context.Context, email string) (core.User, error)
	ForgotPassword(ctx context.Context, r core.PasswordReset) (string, error)
}

type Sessions interface {
	Begin(ctx context.Context, res core.LoginResult) (session.Session, error)
	End(ctx context.Context) error
	Current() (session.Session, error)
}

type Service struct {
	users    UserService
	sessions Sessions
	notifier notify.Notifier
	logger   *log.Logger
}

func NewService(users UserService, sessions Sessions, notifier notify.Notifier, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	if notifier == nil {
		notifier = notify.NewLog(logger)
	}
	return &Service{
		users:    users,
		sessions: sessions,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentAccount),
	}
}

// reject reports a validation failure to the user and returns it.
func (s *Service) reject(err error) error {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		s.notifier.Error(verr.Msg)
	}
	return err
}

// Login signs in and starts a session.
func (s *Service) Login(ctx context.Context, email, password string) (session.Session, error) {
	creds := core.Credentials{Email: strings.TrimSpace(email), Password: password}
	res, err := s.users.SignIn(ctx, creds)
	if err != nil {
		s.logger.WarnContext(ctx, "Sign in failed",
			log.NewFields().WithOperation(log.OpSignIn).WithError(err).ToSlice()...)
		s.notifier.Error(MsgInvalidCredentials)
		return session.Session{}, err
	}
	return s.sessions.Begin(ctx, res)
}

// Logout tells the server and then clears local state. Local teardown
// happens even when the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := s.users.SignOut(ctx); err != nil {
		s.logger.WarnContext(ctx, "Server sign out failed",
			log.NewFields().WithOperation(log.OpSignOut).WithError(err).ToSlice()...)
	}
	return s.sessions.End(ctx)
}

func (s *Service) Register(ctx context.Context, r core.Registration) (core.User, error) {
	r.Email = strings.TrimSpace(r.Email)
	if err := ValidateRegistration(r); err != nil {
		return core.User{}, s.reject(err)
	}
	u, err := s.users.Register(ctx, r)
	if err != nil {
		s.logger.ErrorContext(ctx, "Registration failed", log.FieldError, err.Error())
		s.notifier.Error(MsgRegisterFailed)
		return core.User{}, err
	}
	s.notifier.Success(MsgRegistered)
	return u, nil
}

// Profile loads the signed-in user's profile.
func (s *Service) Profile(ctx context.Context) (core.User, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return core.User{}, err
	}
	u, err := s.users.Profile(ctx, sess.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error fetching profile", log.FieldError, err.Error())
		return core.User{}, err
	}
	return u, nil
}

// UpdateProfile validates and saves u. The id and email default to the
// signed-in user's.
func (s *Service) UpdateProfile(ctx context.Context, u core.User) (core.User, error) {
	sess, err := s.sessions.Current()
	if err != nil {
		return core.User{}, err
	}
	if err := ValidateProfile(u); err != nil {
		return core.User{}, s.reject(err)
	}
	if u.ID == 0 {
		u.ID = sess.UserID
	}
	if u.Email == "" {
		u.Email = sess.Email
	}

	saved, err := s.users.Update(ctx, u)
	if err != nil {
		s.logger.ErrorContext(ctx, "Update failed",
			log.NewFields().WithOperation(log.OpUpdate).WithUser(int64(u.ID)).WithError(err).ToSlice()...)
		s.notifier.Error(MsgProfileFailed)
		return core.User{}, err
	}
	s.notifier.Success(MsgProfileUpdated)
	return saved, nil
}

// ResetPassword sets a new password for email. Proving ownership of the
// address is left to the caller.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword string) error {
	r := core.PasswordReset{Email: strings.TrimSpace(email), NewPassword: newPassword}
	if err := ValidatePasswordReset(r); err != nil {
		return s.reject(err)
	}
	if _, err := s.users.ForgotPassword(ctx, r); err != nil {
		s.logger.ErrorContext(ctx, "Password reset failed", log.FieldError, err.Error())
		s.notifier.Error(MsgResetFailed)
		return err
	}
	s.notifier.Success(MsgPasswordUpdated)
	return nil
}
