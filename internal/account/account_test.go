package account

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monexel/internal/core"
	"monexel/internal/notify"
	"monexel/internal/session"
	"monexel/internal/storage"
)

type fakeUsers struct {
	signInErr  error
	signOutErr error
	err        error

	signOuts   int
	registered []core.Registration
	updated    []core.User
	resets     []core.PasswordReset
	profile    core.User
}

func (f *fakeUsers) SignIn(ctx context.Context, creds core.Credentials) (core.LoginResult, error) {
	if f.signInErr != nil {
		return core.LoginResult{}, f.signInErr
	}
	return core.LoginResult{Email: creds.Email, JWT: "token", ID: 7}, nil
}

func (f *fakeUsers) SignOut(ctx context.Context) (string, error) {
	f.signOuts++
	return "signed out", f.signOutErr
}

func (f *fakeUsers) Register(ctx context.Context, r core.Registration) (core.User, error) {
	if f.err != nil {
		return core.User{}, f.err
	}
	f.registered = append(f.registered, r)
	return core.User{ID: 9, Name: r.Name, Email: r.Email}, nil
}

func (f *fakeUsers) Update(ctx context.Context, u core.User) (core.User, error) {
	if f.err != nil {
		return core.User{}, f.err
	}
	f.updated = append(f.updated, u)
	return u, nil
}

func (f *fakeUsers) Profile(ctx context.Context, email string) (core.User, error) {
	return f.profile, f.err
}

func (f *fakeUsers) ForgotPassword(ctx context.Context, r core.PasswordReset) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.resets = append(f.resets, r)
	return "ok", nil
}

func newService(t *testing.T) (*Service, *fakeUsers, *session.Manager, *notify.Recorder) {
	t.Helper()
	users := &fakeUsers{}
	sessions := session.NewManager(storage.NewMemoryRepository(), nil)
	notes := &notify.Recorder{}
	return NewService(users, sessions, notes, nil), users, sessions, notes
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		ok       bool
	}{
		{"abc12@", true},
		{"Passw0rd!", true},
		{"abc12", false},
		{"abcdef@", false},
		{"123456@", false},
		{"abc123", false},
		{"abc 12@", false},
		{"abc12#", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, MsgPassword)
		})
	}
}

func TestValidateNameAndPhone(t *testing.T) {
	assert.NoError(t, ValidateName("Asha Rao"))
	assert.EqualError(t, ValidateName("R2D2"), MsgName)
	assert.EqualError(t, ValidateName(""), MsgName)

	assert.NoError(t, ValidatePhone("9876543210"))
	assert.EqualError(t, ValidatePhone("98765"), MsgPhone)
	assert.EqualError(t, ValidatePhone("98765432100"), MsgPhone)
	assert.EqualError(t, ValidatePhone("98765-4321"), MsgPhone)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("asha@example.com"))
	assert.EqualError(t, ValidateEmail("not-an-email"), MsgEmail)
}

func TestValidatePasswordReset(t *testing.T) {
	assert.NoError(t, ValidatePasswordReset(core.PasswordReset{Email: "a@example.com", NewPassword: "secret"}))
	assert.EqualError(t, ValidatePasswordReset(core.PasswordReset{Email: "a@example.com", NewPassword: "short"}), MsgResetPassword)
	assert.EqualError(t, ValidatePasswordReset(core.PasswordReset{Email: "nope", NewPassword: "secret"}), MsgEmail)
}

func TestLoginAndLogout(t *testing.T) {
	svc, users, sessions, _ := newService(t)
	ctx := context.Background()

	sess, err := svc.Login(ctx, " asha@example.com ", "pw")
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", sess.Email)
	assert.Equal(t, core.UserID(7), sessions.UserID())

	users.signOutErr = errors.New("server down")
	require.NoError(t, svc.Logout(ctx))
	assert.Equal(t, 1, users.signOuts)
	_, err = sessions.Current()
	assert.ErrorIs(t, err, session.ErrNotSignedIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, users, sessions, notes := newService(t)
	users.signInErr = errors.New("401")

	_, err := svc.Login(context.Background(), "asha@example.com", "bad")
	require.Error(t, err)
	assert.Zero(t, sessions.UserID())

	last, _ := notes.Last()
	assert.Equal(t, notify.Message{Level: notify.LevelError, Text: MsgInvalidCredentials}, last)
}

func TestRegister(t *testing.T) {
	valid := core.Registration{Name: "Asha Rao", Email: "asha@example.com", Password: "abc12@", PhoneNumber: "9876543210"}

	t.Run("valid", func(t *testing.T) {
		svc, users, _, notes := newService(t)
		u, err := svc.Register(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", u.Name)
		assert.Len(t, users.registered, 1)
		last, _ := notes.Last()
		assert.Equal(t, MsgRegistered, last.Text)
	})

	t.Run("invalid phone never reaches the server", func(t *testing.T) {
		svc, users, _, notes := newService(t)
		r := valid
		r.PhoneNumber = "123"
		_, err := svc.Register(context.Background(), r)

		var verr *core.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "phoneNumber", verr.Field)
		assert.Empty(t, users.registered)
		last, _ := notes.Last()
		assert.Equal(t, MsgPhone, last.Text)
	})

	t.Run("server failure", func(t *testing.T) {
		svc, users, _, notes := newService(t)
		users.err = errors.New("conflict")
		_, err := svc.Register(context.Background(), valid)
		require.Error(t, err)
		last, _ := notes.Last()
		assert.Equal(t, MsgRegisterFailed, last.Text)
	})
}

func TestUpdateProfile(t *testing.T) {
	svc, users, _, notes := newService(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, core.User{Name: "Asha", PhoneNumber: "9876543210"})
	assert.ErrorIs(t, err, session.ErrNotSignedIn)

	_, err = svc.Login(ctx, "asha@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, core.User{Name: "Asha 2", PhoneNumber: "9876543210"})
	assert.EqualError(t, err, MsgName)
	assert.Empty(t, users.updated)

	saved, err := svc.UpdateProfile(ctx, core.User{Name: "Asha Rao", PhoneNumber: "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, core.UserID(7), saved.ID)
	assert.Equal(t, "asha@example.com", saved.Email)

	last, _ := notes.Last()
	assert.Equal(t, MsgProfileUpdated, last.Text)
}

func TestProfile(t *testing.T) {
	svc, users, _, _ := newService(t)
	ctx := context.Background()
	users.profile = core.User{ID: 7, Name: "Asha Rao", Email: "asha@example.com"}

	_, err := svc.Profile(ctx)
	assert.ErrorIs(t, err, session.ErrNotSignedIn)

	_, err = svc.Login(ctx, "asha@example.com", "pw")
	require.NoError(t, err)
	u, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", u.Name)
}

func TestResetPassword(t *testing.T) {
	svc, users, _, notes := newService(t)
	ctx := context.Background()

	assert.EqualError(t, svc.ResetPassword(ctx, "asha@example.com", "123"), MsgResetPassword)
	assert.Empty(t, users.resets)

	require.NoError(t, svc.ResetPassword(ctx, "asha@example.com", "newpass"))
	assert.Equal(t, []core.PasswordReset{{Email: "asha@example.com", NewPassword: "newpass"}}, users.resets)
	last, _ := notes.Last()
	assert.Equal(t, MsgPasswordUpdated, last.Text)

	users.err = errors.New("boom")
	assert.Error(t, svc.ResetPassword(ctx, "asha@example.com", "newpass"))
	last, _ = notes.Last()
	assert.Equal(t, MsgResetFailed, last.Text)
}
