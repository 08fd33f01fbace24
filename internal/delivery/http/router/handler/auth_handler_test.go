package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"authsvc/config"
	"authsvc/internal/delivery/http/session"
	"authsvc/internal/delivery/http/validator"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/errors"
	mockUsecase "authsvc/internal/mocks/usecase"
	"authsvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	echo     *echo.Echo
	users    *mockUsecase.MockUserUsecase
	sessions *mockUsecase.MockSessionUsecase
	identity *mockUsecase.MockIdentityUsecase
	auth     *AuthHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	e := echo.New()
	e.Validator = validator.New()

	cfg := &config.Config{GoogleOAuth: &config.GoogleOAuthConfig{SuccessRedirect: "/app"}}
	f := &handlerFixture{
		echo:     e,
		users:    mockUsecase.NewMockUserUsecase(t),
		sessions: mockUsecase.NewMockSessionUsecase(t),
		identity: mockUsecase.NewMockIdentityUsecase(t),
	}
	f.auth = NewAuthHandler(f.users, f.sessions, f.identity, session.NewCookieWriter(cfg), cfg,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	return f
}

func (f *handlerFixture) context(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	return f.echo.NewContext(req, rec), rec
}

func testPair() *entity.TokenPair {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	return &entity.TokenPair{
		AccessToken:      "access",
		RefreshToken:     "refresh",
		AccessExpiresAt:  now.Add(15 * time.Minute),
		RefreshExpiresAt: now.Add(7 * 24 * time.Hour),
	}
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()

	var appErr domainerrors.AppError
	require.True(t, errors.As(err, &appErr), "expected an AppError, got %v", err)
	assert.Equal(t, code, appErr.ErrorCode())
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("writes cookies on success", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.users.EXPECT().Login(mock.Anything, &usecase.LoginInput{Email: "a@x.com", Password: "pw"}).
			Return(&usecase.LoginOutput{User: &entity.User{ID: uuid.New(), Email: "a@x.com"}, Tokens: testPair()}, nil).Once()

		c, rec := f.context(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"pw"}`)

		require.NoError(t, f.auth.Login(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Result().Cookies(), 4)
	})

	t.Run("invalid body never reaches the use case", func(t *testing.T) {
		f := newHandlerFixture(t)

		c, rec := f.context(http.MethodPost, "/auth/login", `{"email":"not-an-email"}`)

		err := f.auth.Login(c)
		requireCode(t, err, "VALIDATION_FAILED")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("bad credentials write no cookies", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.users.EXPECT().Login(mock.Anything, mock.Anything).Return(nil, domainerrors.ErrInvalidCredentials).Once()

		c, rec := f.context(http.MethodPost, "/auth/login", `{"email":"a@x.com","password":"pw"}`)

		err := f.auth.Login(c)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("reads the refresh cookie", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.sessions.EXPECT().Refresh(mock.Anything, "from-cookie").Return(testPair(), nil).Once()

		c, rec := f.context(http.MethodPost, "/auth/refresh", "")
		c.Request().AddCookie(&http.Cookie{Name: session.CookieRefreshToken, Value: "from-cookie"})

		require.NoError(t, f.auth.Refresh(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, rec.Result().Cookies(), 4)
	})

	t.Run("falls back to the body", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.sessions.EXPECT().Refresh(mock.Anything, "from-body").Return(testPair(), nil).Once()

		c, _ := f.context(http.MethodPost, "/auth/refresh", `{"refreshToken":" from-body "}`)

		require.NoError(t, f.auth.Refresh(c))
	})

	t.Run("missing token", func(t *testing.T) {
		f := newHandlerFixture(t)

		c, _ := f.context(http.MethodPost, "/auth/refresh", "")

		requireCode(t, f.auth.Refresh(c), "REFRESH_TOKEN_INVALID")
	})

	t.Run("deleted user reads as an invalid refresh token", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.sessions.EXPECT().Refresh(mock.Anything, "orphan").
			Return(nil, domainerrors.ErrUserNotFound.WrapMessage("user for refresh token")).Once()

		c, _ := f.context(http.MethodPost, "/auth/refresh", "")
		c.Request().Header.Set(session.HeaderRefreshToken, "orphan")

		err := f.auth.Refresh(c)
		requireCode(t, err, "REFRESH_TOKEN_INVALID")
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newHandlerFixture(t)

	c, rec := f.context(http.MethodPost, "/auth/logout", "")

	require.NoError(t, f.auth.Logout(c))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 4)
	for _, ck := range cookies {
		assert.Empty(t, ck.Value, ck.Name)
		assert.Negative(t, ck.MaxAge, ck.Name)
	}
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	t.Run("redirects to the provider", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.identity.EXPECT().AuthorizationURL(mock.Anything).Return("https://accounts.example/auth?state=s1", nil).Once()

		c, rec := f.context(http.MethodGet, "/auth/google", "")

		require.NoError(t, f.auth.GoogleLogin(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://accounts.example/auth?state=s1", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("returns the url as json", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.identity.EXPECT().AuthorizationURL(mock.Anything).Return("https://accounts.example/auth?state=s1", nil).Once()

		c, rec := f.context(http.MethodGet, "/auth/google?redirect=false", "")

		require.NoError(t, f.auth.GoogleLogin(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "accounts.example")
	})
}

func TestAuthHandler_GoogleCallback(t *testing.T) {
	t.Run("success redirects with cookies", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.identity.EXPECT().HandleCallback(mock.Anything, "code-1", "state-1").
			Return(&usecase.LoginOutput{User: &entity.User{ID: uuid.New()}, Tokens: testPair()}, nil).Once()

		c, rec := f.context(http.MethodGet, "/auth/google/callback?code=code-1&state=state-1", "")

		require.NoError(t, f.auth.GoogleCallback(c))
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/app", rec.Header().Get(echo.HeaderLocation))
		assert.Len(t, rec.Result().Cookies(), 4)
	})

	t.Run("provider error skips the exchange", func(t *testing.T) {
		f := newHandlerFixture(t)

		c, rec := f.context(http.MethodGet, "/auth/google/callback?error=access_denied", "")

		requireCode(t, f.auth.GoogleCallback(c), "OAUTH_FAILED")
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("link failure writes no cookies", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.identity.EXPECT().HandleCallback(mock.Anything, "code-1", "state-1").
			Return(nil, domainerrors.ErrIdentityLinkFailed.WithCause(errors.New("db down"))).Once()

		c, rec := f.context(http.MethodGet, "/auth/google/callback?code=code-1&state=state-1", "")

		requireCode(t, f.auth.GoogleCallback(c), "IDENTITY_LINK_FAILED")
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestUserHandler_MeRequiresClaims(t *testing.T) {
	f := newHandlerFixture(t)
	h := NewUserHandler(f.users, session.NewCookieWriter(nil))

	c, _ := f.context(http.MethodGet, "/user/me", "")

	requireCode(t, h.Me(c), "TOKEN_INVALID")
}
