package admin

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/3Eeeecho/go-secureprint/internal/config"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/utils"
	"github.com/3Eeeecho/go-secureprint/internal/pkg/xerr"
	"github.com/3Eeeecho/go-secureprint/internal/repositories"
	"github.com/3Eeeecho/go-secureprint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWT = config.JWTConfig{SecretKey: "test-secret", Issuer: "go-secureprint", ExpiresIn: 7 * 24 * time.Hour}

func newAuthService(t *testing.T) AuthService {
	db := testutil.NewTestDB(t)
	return NewAuthService(repositories.NewUserRepository(db), testJWT)
}

func TestSignupThenLogin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, "alice@example.com", "s3cret", "Alice")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "s3cret", user.PasswordHash)

	token, err := svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	claims, err := utils.ParseToken(token, testJWT.SecretKey)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestSignup_Duplicate(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "bob@example.com", "pw", "")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "bob@example.com", "other", "Bob")
	assert.ErrorIs(t, err, xerr.ErrUserAlreadyExists)
}

func TestSignup_MissingFields(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "", "pw", "")
	assert.ErrorIs(t, err, xerr.ErrInvalidParams)

	_, err = svc.Signup(ctx, "x@example.com", "", "")
	assert.ErrorIs(t, err, xerr.ErrInvalidParams)

	_, err = svc.Signup(ctx, "long@example.com", strings.Repeat("p", 73), "")
	assert.ErrorIs(t, err, xerr.ErrInvalidParams)
}

func TestLogin_WrongPasswordAlwaysFails(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "carol@example.com", "right", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = svc.Login(ctx, "carol@example.com", "wrong")
		assert.ErrorIs(t, err, xerr.ErrInvalidCredentials)
	}

	_, err = svc.Login(ctx, "carol@example.com", "right")
	assert.NoError(t, err)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, xerr.ErrInvalidCredentials)
}
