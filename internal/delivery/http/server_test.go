package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"authsvc/config"
	apimiddleware "authsvc/internal/delivery/http/middleware"
	"authsvc/internal/delivery/http/router"
	"authsvc/internal/delivery/http/router/handler"
	"authsvc/internal/delivery/http/session"
	"authsvc/internal/domain/entity"
	"authsvc/internal/infra/auth"
	"authsvc/internal/infra/auth/google"
	"authsvc/internal/infra/cache/redis"
	mockSvc "authsvc/internal/mocks/service"
	"authsvc/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type testApp struct {
	echo     *echo.Echo
	store    *memoryStore
	clock    *fakeClock
	provider *httptest.Server
	idTokens *mockSvc.MockIDTokenVerifier
}

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Details string `json:"details"`
	} `json:"error"`
}

type tokensBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// newProvider stands in for Google: it accepts code "good-code" and reports user g-1 / a@x.com.
func newProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))

			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-access","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":             "g-1",
			"email":          "a@x.com",
			"verified_email": true,
			"name":           "A X",
			"given_name":     "A",
			"family_name":    "X",
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	provider := newProvider(t)

	cfg := &config.Config{
		SecretKey: config.SecretKeyConfig{Global: "integration-secret"},
		Cookie:    &config.CookieConfig{MaxAge: 7 * 24 * time.Hour},
		GoogleOAuth: &config.GoogleOAuthConfig{
			ClientID:        "test_client_id",
			ClientSecret:    "test_secret",
			RedirectURI:     "http://localhost:8080/auth/google/callback",
			AuthURL:         provider.URL + "/auth",
			TokenURL:        provider.URL + "/token",
			UserInfoURL:     provider.URL + "/userinfo",
			StateTTL:        10 * time.Minute,
			SuccessRedirect: "/profile",
		},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"

	tokens, err := auth.NewJWTService(auth.JWTOptions{
		GlobalSecret: []byte(cfg.SecretKey.Global),
		AccessTTL:    15 * time.Minute,
		RefreshTTL:   7 * 24 * time.Hour,
		Issuer:       "authsvc-test",
		Now:          clock.Now,
	})
	require.NoError(t, err)

	oauthClient, err := google.NewOAuthClient(cfg, logger)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMemoryStore()
	hasher := auth.NewBcryptHasherWithOptions(bcrypt.MinCost, auth.DefaultPasswordPolicy())
	idTokens := mockSvc.NewMockIDTokenVerifier(t)

	sessions := impl.NewSessionService(impl.SessionServiceParams{UserRepo: store, TokenService: tokens, Logger: logger})
	users := impl.NewUserService(impl.UserServiceParams{
		TxManager: store,
		UserRepo:  store,
		Hasher:    hasher,
		Sessions:  sessions,
		Logger:    logger,
	})
	identity := impl.NewIdentityService(impl.IdentityServiceParams{
		TxManager:       store,
		UserRepo:        store,
		Hasher:          hasher,
		OAuthProvider:   oauthClient,
		IDTokenVerifier: idTokens,
		StateStore:      redis.NewStateStore(client),
		Sessions:        sessions,
		Config:          cfg,
		Logger:          logger,
	})
	cookies := session.NewCookieWriter(cfg)

	e := newEcho(cfg, logger, router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(users, sessions, identity, cookies, cfg, logger),
		UserHandler:    handler.NewUserHandler(users, cookies),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(sessions, cookies, logger),
	})

	return &testApp{echo: e, store: store, clock: clock, provider: provider, idTokens: idTokens}
}

func (a *testApp) do(method, target, body string, headers map[string]string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, ck := range cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	rec := httptest.NewRecorder()
	a.echo.ServeHTTP(rec, req)

	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())

	return env
}

func errorCodeOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error, rec.Body.String())

	return env.Error.Code
}

func cookieMap(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck
	}

	return out
}

// googleLogin runs the redirect and callback legs and returns the cookies set by the callback.
func (a *testApp) googleLogin(t *testing.T) map[string]*http.Cookie {
	t.Helper()

	rec := a.do(http.MethodGet, "/auth/google", "", nil)
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get(echo.HeaderLocation))
	require.NoError(t, err)
	assert.Equal(t, a.provider.URL+"/auth", location.Scheme+"://"+location.Host+location.Path)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	rec = a.do(http.MethodGet, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), "", nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/profile", rec.Header().Get(echo.HeaderLocation))

	return cookieMap(rec)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestGoogleLogin_NewThenReturningUser(t *testing.T) {
	app := newTestApp(t)

	cookies := app.googleLogin(t)
	require.Len(t, cookies, 4)
	assert.True(t, cookies[session.CookieAccessToken].HttpOnly)
	assert.True(t, cookies[session.CookieRefreshToken].HttpOnly)
	assert.False(t, cookies[session.CookieReadableAccessToken].HttpOnly)
	assert.False(t, cookies[session.CookieReadableRefreshToken].HttpOnly)
	assert.Equal(t, 7*24*60*60, cookies[session.CookieAccessToken].MaxAge)

	stored, err := app.store.FindByExternalIDOrEmail(t.Context(), "g-1", "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "a@x.com", stored.Username)
	assert.Equal(t, "g-1", stored.ExternalID)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.Profile)
	assert.Equal(t, "A", stored.Profile.FirstName)
	assert.Equal(t, "X", stored.Profile.LastName)

	rec := app.do(http.MethodGet, "/user/me", "", nil, cookies[session.CookieAccessToken])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me map[string]any
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &me))
	assert.Equal(t, "a@x.com", me["email"])
	assert.Equal(t, true, me["externalLinked"])

	app.googleLogin(t)
	assert.Len(t, app.store.users, 1)
}

func TestGoogleCallback_StateIsSingleUse(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/auth/google?redirect=false", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &body))
	location, err := url.Parse(body["url"])
	require.NoError(t, err)
	state := location.Query().Get("state")

	first := app.do(http.MethodGet, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), "", nil)
	require.Equal(t, http.StatusFound, first.Code)

	replay := app.do(http.MethodGet, "/auth/google/callback?code=good-code&state="+url.QueryEscape(state), "", nil)
	assert.Equal(t, http.StatusBadRequest, replay.Code)
	assert.Equal(t, "OAUTH_STATE_INVALID", errorCodeOf(t, replay))
	assert.Empty(t, replay.Result().Cookies())
}

func TestGoogleCallback_ProviderErrorWritesNoCookies(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/auth/google/callback?error=access_denied", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "OAUTH_FAILED", errorCodeOf(t, rec))
	assert.Empty(t, rec.Result().Cookies())
}

func TestTransparentRefresh(t *testing.T) {
	app := newTestApp(t)
	cookies := app.googleLogin(t)

	app.clock.Advance(16 * time.Minute)

	rec := app.do(http.MethodGet, "/user/me", "", nil, cookies[session.CookieAccessToken])
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "TOKEN_EXPIRED", errorCodeOf(t, rec))

	rec = app.do(http.MethodGet, "/user/me", "", nil,
		cookies[session.CookieAccessToken], cookies[session.CookieRefreshToken])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	renewed := cookieMap(rec)
	require.Len(t, renewed, 4)
	assert.NotEqual(t, cookies[session.CookieAccessToken].Value, renewed[session.CookieAccessToken].Value)

	rec = app.do(http.MethodGet, "/user/me", "", nil, renewed[session.CookieAccessToken])
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPasswordLifecycle(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"Str0ng!Pass"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/auth/register", `{"username":"alice2","email":"alice@example.com","password":"Str0ng!Pass"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "USER_ALREADY_EXISTS", errorCodeOf(t, rec))

	rec = app.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCodeOf(t, rec))

	rec = app.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"Str0ng!Pass"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 4)
	var login struct {
		Tokens tokensBody `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &login))
	oldRefresh := login.Tokens.RefreshToken

	rec = app.do(http.MethodPut, "/user/password", `{"currentPassword":"Str0ng!Pass","newPassword":"N3w!Secret"}`,
		map[string]string{"Authorization": "Bearer " + login.Tokens.AccessToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var changed tokensBody
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &changed))

	rec = app.do(http.MethodPost, "/auth/refresh", "", map[string]string{session.HeaderRefreshToken: oldRefresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "REFRESH_TOKEN_INVALID", errorCodeOf(t, rec))

	rec = app.do(http.MethodPost, "/auth/refresh", `{"refreshToken":"`+changed.RefreshToken+`"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = app.do(http.MethodPost, "/auth/login", `{"email":"alice@example.com","password":"N3w!Secret"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/auth/register", `{"username":"al","email":"nope","password":"x"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email must be a valid email")
}

func TestAdminRoute(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/auth/register", `{"username":"root","email":"root@example.com","password":"Str0ng!Pass"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	login := func() string {
		rec := app.do(http.MethodPost, "/auth/login", `{"email":"root@example.com","password":"Str0ng!Pass"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		return cookieMap(rec)[session.CookieAccessToken].Value
	}

	rec = app.do(http.MethodGet, "/admin/ping", "", map[string]string{session.HeaderAccessToken: login()})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	app.store.setRole("root@example.com", entity.RoleAdmin)

	rec = app.do(http.MethodGet, "/admin/ping", "", map[string]string{session.HeaderAccessToken: login()})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGoogleIDToken(t *testing.T) {
	t.Run("unverified email writes no cookies", func(t *testing.T) {
		app := newTestApp(t)
		app.idTokens.EXPECT().VerifyIDToken(mock.Anything, "native-token").Return(&entity.ExternalProfile{
			ExternalID: "g-2",
			Email:      "b@x.com",
		}, nil).Once()

		rec := app.do(http.MethodPost, "/auth/google/id-token", `{"idToken":"native-token"}`, nil)

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "OAUTH_EMAIL_UNVERIFIED", errorCodeOf(t, rec))
		assert.Empty(t, rec.Result().Cookies())
		assert.Empty(t, app.store.users)
	})

	t.Run("verified email signs in", func(t *testing.T) {
		app := newTestApp(t)
		app.idTokens.EXPECT().VerifyIDToken(mock.Anything, "native-token").Return(&entity.ExternalProfile{
			ExternalID:    "g-2",
			Email:         "b@x.com",
			EmailVerified: true,
		}, nil).Once()

		rec := app.do(http.MethodPost, "/auth/google/id-token", `{"idToken":"native-token"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, rec.Result().Cookies(), 4)
	})
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodPost, "/auth/logout", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	for name, ck := range cookieMap(rec) {
		assert.Empty(t, ck.Value, name)
	}
}
