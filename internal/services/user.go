package services

import (
	"context"
	"fmt"
	"net/url"

	"monexel/internal/api"
	"monexel/internal/core"
)

type User struct {
	client *api.Client
}

func NewUser(c *api.Client) *User {
	return &User{client: c}
}

func (s *User) SignIn(ctx context.Context, creds core.Credentials) (core.LoginResult, error) {
	var out core.LoginResult
	err := s.client.Post(ctx, "/api/users/signin", creds, &out)
	return out, err
}

// SignOut returns the server's confirmation text.
func (s *User) SignOut(ctx context.Context) (string, error) {
	var msg string
	err := s.client.Get(ctx, "/api/users/signout", &msg)
	return msg, err
}

func (s *User) Register(ctx context.Context, r core.Registration) (core.User, error) {
	var out core.User
	err := s.client.Post(ctx, "/api/users/createUser", r, &out)
	return out, err
}

func (s *User) List(ctx context.Context) ([]core.User, error) {
	var out []core.User
	err := s.client.Get(ctx, "/api/users/getAllUsers", &out)
	return out, err
}

func (s *User) Get(ctx context.Context, id core.UserID) (core.User, error) {
	var out core.User
	err := s.client.Get(ctx, fmt.Sprintf("/api/users/getUserId/%d", id), &out)
	return out, err
}

func (s *User) Update(ctx context.Context, u core.User) (core.User, error) {
	var out core.User
	err := s.client.Put(ctx, fmt.Sprintf("/api/users/updateUser/%d", u.ID), u, &out)
	return out, err
}

func (s *User) Profile(ctx context.Context, email string) (core.User, error) {
	var out core.User
	err := s.client.Get(ctx, "/api/users/profile?email="+url.QueryEscape(email), &out)
	return out, err
}

func (s *User) ForgotPassword(ctx context.Context, r core.PasswordReset) (string, error) {
	var msg string
	err := s.client.Put(ctx, "/api/users/forgot-password", r, &msg)
	return msg, err
}
