package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/ideas-service/internal/auth"
	"github.com/spec-kit/ideas-service/internal/config"
	"github.com/spec-kit/ideas-service/internal/domain"
	"github.com/spec-kit/ideas-service/internal/events"
	"github.com/spec-kit/ideas-service/internal/testutil"
	apperrors "github.com/spec-kit/ideas-service/pkg/util/errorutil"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type authFixture struct {
	svc      *AuthService
	users    *testutil.UserStore
	tokens   *auth.TokenManager
	clock    *testClock
	recorded *[]events.Event
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "service-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
	}
}

func newAuthFixture(t *testing.T, throttle *auth.LoginThrottle) *authFixture {
	t.Helper()
	clock := &testClock{now: time.Now().Truncate(time.Second)}
	tokens := auth.NewTokenManager(auth.MustLoadSecret("service-secret"), auth.WithClock(clock.Now))
	users := testutil.NewUserStore()

	dispatcher := events.NewInMemoryDispatcher()
	var recorded []events.Event
	record := func(_ context.Context, e events.Event) error {
		recorded = append(recorded, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventUserRegistered, events.EventUserLoggedIn,
		events.EventLoginFailed, events.EventTokenRefreshed,
	} {
		dispatcher.Subscribe(et, record)
	}

	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:   users,
		Tokens:     tokens,
		Throttle:   throttle,
		Dispatcher: dispatcher,
	})
	return &authFixture{svc: svc, users: users, tokens: tokens, clock: clock, recorded: &recorded}
}

func (f *authFixture) register(t *testing.T) *domain.Session {
	t.Helper()
	session, err := f.svc.Register(context.Background(), RegisterInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return session
}

func requireDomainError(t *testing.T, err error, status int, code string) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, status, de.HTTPStatus)
	assert.Equal(t, code, de.Code)
	return de
}

func TestRegister_OpensSession(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)

	assert.NotEmpty(t, session.User.ID)
	assert.Equal(t, "Ada", session.User.Name)
	assert.Equal(t, "ada@example.com", session.User.Email)

	access, err := f.tokens.ParseToken(session.AccessToken, domain.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, access.UserID)

	refresh, err := f.tokens.ParseToken(session.RefreshToken, domain.TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, refresh.UserID)
	assert.True(t, session.RefreshExpiresAt.After(session.AccessExpiresAt))

	stored, err := f.users.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "correct horse"))

	require.Len(t, *f.recorded, 1)
	assert.Equal(t, events.EventUserRegistered, (*f.recorded)[0].Type)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.register(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Other", Email: "ada@example.com", Password: "pw"})
	requireDomainError(t, err, http.StatusBadRequest, apperrors.CodeConflict)
}

type racingUserStore struct {
	*testutil.UserStore
}

func (s racingUserStore) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (s racingUserStore) Create(context.Context, *domain.User) error {
	return testutil.UniqueViolation
}

func TestRegister_UniqueViolationIsConflict(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.svc.users = racingUserStore{UserStore: f.users}

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	requireDomainError(t, err, http.StatusBadRequest, apperrors.CodeConflict)
}

func TestRegister_StoreFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.users.Err = errors.New("connection refused")

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "pw"})
	requireDomainError(t, err, http.StatusInternalServerError, apperrors.CodeInternal)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t, nil)
	registered := f.register(t)

	session, err := f.svc.Login(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, registered.User, session.User)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.register(t)

	_, unknownErr := f.svc.Login(context.Background(), "nobody@example.com", "correct horse")
	_, wrongErr := f.svc.Login(context.Background(), "ada@example.com", "wrong")

	unknown := requireDomainError(t, unknownErr, http.StatusUnauthorized, apperrors.CodeInvalidCredentials)
	wrong := requireDomainError(t, wrongErr, http.StatusUnauthorized, apperrors.CodeInvalidCredentials)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, unknown.Details, wrong.Details)

	var reasons []string
	for _, e := range *f.recorded {
		if e.Type == events.EventLoginFailed {
			reasons = append(reasons, e.Payload.(events.LoginFailedPayload).Reason)
		}
	}
	assert.Equal(t, []string{"unknown_email", "wrong_password"}, reasons)
}

func TestLogin_LookupFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.users.Err = errors.New("connection refused")

	_, err := f.svc.Login(context.Background(), "ada@example.com", "pw")
	requireDomainError(t, err, http.StatusInternalServerError, apperrors.CodeInternal)
}

func newServiceThrottle(t *testing.T, max int) (*auth.LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewLoginThrottle(client, max, time.Minute), srv
}

func TestLogin_ThrottledAfterRepeatedFailures(t *testing.T) {
	throttle, _ := newServiceThrottle(t, 2)
	f := newAuthFixture(t, throttle)
	f.register(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(ctx, "ada@example.com", "wrong")
		requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	requireDomainError(t, err, http.StatusTooManyRequests, apperrors.CodeTooManyRequests)
}

func TestLogin_SuccessResetsThrottle(t *testing.T) {
	throttle, _ := newServiceThrottle(t, 2)
	f := newAuthFixture(t, throttle)
	f.register(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	_, err = f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, "ada@example.com", "wrong")
	requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeInvalidCredentials)
	_, err = f.svc.Login(ctx, "ada@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestLogin_ThrottleUnavailableFailsOpen(t *testing.T) {
	throttle, srv := newServiceThrottle(t, 2)
	f := newAuthFixture(t, throttle)
	f.register(t)
	srv.Close()

	_, err := f.svc.Login(context.Background(), "ada@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestRefresh_RenewsAccessOnly(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)

	f.clock.Advance(2 * time.Minute)
	_, err := f.tokens.ParseToken(session.AccessToken, domain.TokenTypeAccess)
	require.Equal(t, auth.TokenExpired, auth.TokenErrorKindOf(err))

	refreshed, err := f.svc.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, session.User, refreshed.User)
	assert.Empty(t, refreshed.RefreshToken)
	assert.True(t, refreshed.AccessExpiresAt.After(session.AccessExpiresAt))

	claims, err := f.tokens.ParseToken(refreshed.AccessToken, domain.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	// the same refresh token keeps working until its own expiry
	_, err = f.svc.Refresh(context.Background(), session.RefreshToken)
	assert.NoError(t, err)
}

func TestRefresh_Rejections(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)
	ctx := context.Background()

	_, err := f.svc.Refresh(ctx, "")
	de := requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	assert.Equal(t, MsgNoRefreshToken, de.Message)

	for name, token := range map[string]string{
		"garbage":      "not-a-jwt",
		"access token": session.AccessToken,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Refresh(ctx, token)
			de := requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
			assert.Equal(t, MsgInvalidRefreshToken, de.Message)
		})
	}
}

func TestRefresh_ExpiredRefreshToken(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)

	f.clock.Advance(31 * 24 * time.Hour)
	_, err := f.svc.Refresh(context.Background(), session.RefreshToken)
	de := requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	assert.Equal(t, MsgInvalidRefreshToken, de.Message)
}

func TestRefresh_DeletedUser(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)
	require.NoError(t, f.users.Delete(context.Background(), session.User.ID))

	_, err := f.svc.Refresh(context.Background(), session.RefreshToken)
	de := requireDomainError(t, err, http.StatusUnauthorized, apperrors.CodeUnauthorized)
	assert.Equal(t, MsgInvalidRefreshToken, de.Message)
}

func TestRefresh_LookupFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	session := f.register(t)
	f.users.Err = errors.New("connection refused")

	_, err := f.svc.Refresh(context.Background(), session.RefreshToken)
	requireDomainError(t, err, http.StatusInternalServerError, apperrors.CodeInternal)
}
