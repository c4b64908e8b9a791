package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/auth"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db/controller/user"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/errs"
)

func TestAuthenticate(t *testing.T) {
	f := setup(t)
	p := auth.NewLocalProvider(f.db)

	u := f.user(t, "Clerk@Mary.test", nil)

	got, err := p.Authenticate(f.ctx, " clerk@mary.test ", password)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = p.Authenticate(f.ctx, "clerk@mary.test", "wrong password")
	require.ErrorIs(t, err, auth.ErrInvalidPassword)

	_, err = p.Authenticate(f.ctx, "nobody@mary.test", password)
	require.ErrorIs(t, err, auth.ErrUserNotFound)

	require.NoError(t, user.SetActive(f.db, u.ID, false))

	_, err = p.Authenticate(f.ctx, "clerk@mary.test", password)
	require.ErrorIs(t, err, auth.ErrUserAccountDisabled)
}

func TestAuthenticateUnknownEmailComparesHash(t *testing.T) {
	f := setup(t)
	p := auth.NewLocalProvider(f.db)

	for range 2 {
		_, err := p.Authenticate(f.ctx, "nobody@mary.test", password)
		require.ErrorIs(t, err, auth.ErrUserNotFound)
	}

	assert.True(t, strings.HasPrefix(auth.AbsentHash(), "$argon2id$"))
}

func TestChangePassword(t *testing.T) {
	f := setup(t)
	p := auth.NewLocalProvider(f.db)

	u := f.user(t, "clerk@mary.test", nil)

	require.ErrorIs(t, p.ChangePassword(f.ctx, u.ID, "wrong password", "new password 1"), auth.ErrInvalidOldPassword)
	require.ErrorIs(t, p.ChangePassword(f.ctx, u.ID, password, "short"), errs.ErrValidation)
	require.NoError(t, p.ChangePassword(f.ctx, u.ID, password, "new password 1"))

	_, err := p.Authenticate(f.ctx, "clerk@mary.test", "new password 1")
	require.NoError(t, err)

	require.ErrorIs(t, p.ChangePassword(f.ctx, 4242, password, "new password 1"), errs.ErrNotFound)
}
