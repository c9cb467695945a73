package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/auth"
	"authgate/internal/repository"
	"authgate/internal/repository/sqlite"
)

func newTestService(t *testing.T) UserService {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepository(db)
	require.NoError(t, users.Init(context.Background()))

	return NewUserService(users, auth.NewTokenService("test-secret", time.Hour))
}

func TestSignupAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	assert.NotEmpty(t, signedUp.Token)
	assert.NotEmpty(t, signedUp.User.ID)
	assert.Equal(t, "a@b.com", signedUp.User.Email)

	loggedIn, err := svc.Login(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, loggedIn.User.ID)
	assert.NotEmpty(t, loggedIn.Token)
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.com", "weak")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	// a rejected signup leaves no user behind
	_, err = svc.Login(ctx, "a@b.com", "weak")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "a@b.com", "Other1Password")
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestSignup_RequiresEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Signup(context.Background(), "   ", "Valid1Password")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)

	_, unknownErr := svc.Login(ctx, "nobody@b.com", "Valid1Password")
	_, wrongErr := svc.Login(ctx, "a@b.com", "Wrong1Password")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr, wrongErr)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	id := signedUp.User.ID

	require.NoError(t, svc.ChangePassword(ctx, id, "Valid1Password", "Valid2Password"))

	_, err = svc.Login(ctx, "a@b.com", "Valid1Password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@b.com", "Valid2Password")
	assert.NoError(t, err)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, signedUp.User.ID, "Wrong1Password", "Valid2Password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// old password still works
	_, err = svc.Login(ctx, "a@b.com", "Valid1Password")
	assert.NoError(t, err)
}

func TestChangePassword_PolicyCheckedBeforeFetch(t *testing.T) {
	svc := newTestService(t)

	err := svc.ChangePassword(context.Background(), "no-such-id", "Valid1Password", "weak")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestUpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	id := signedUp.User.ID

	email := "new@b.com"
	password := "Valid2Password"
	require.NoError(t, svc.UpdateUser(ctx, id, &email, &password))

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "new@b.com", got.Email)

	_, err = svc.Login(ctx, "new@b.com", "Valid2Password")
	assert.NoError(t, err)

	weak := "weak"
	assert.ErrorIs(t, svc.UpdateUser(ctx, id, nil, &weak), auth.ErrPasswordTooShort)
	assert.NoError(t, svc.UpdateUser(ctx, id, nil, nil))
}

func TestGetAndDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	id := signedUp.User.ID

	byEmail, err := svc.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	require.NoError(t, svc.DeleteUser(ctx, id))

	_, err = svc.GetByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, id), repository.ErrUserNotFound)
}

func TestAvatarKeyRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.Signup(ctx, "a@b.com", "Valid1Password")
	require.NoError(t, err)
	id := signedUp.User.ID

	key, err := svc.AvatarKey(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, svc.SetAvatarKey(ctx, id, "avatars/"+id))

	key, err = svc.AvatarKey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "avatars/"+id, key)
}
