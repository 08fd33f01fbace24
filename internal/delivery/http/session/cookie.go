// Package session moves token pairs between HTTP requests and responses.
package session

import (
	"net/http"
	"strings"
	"time"

	"authsvc/config"
	"authsvc/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// Cookie and header names. The x- cookies are HttpOnly for the browser app,
// the r- cookies are readable by scripts in embedded and native clients.
const (
	CookieAccessToken          = "x-token"
	CookieRefreshToken         = "x-refresh-token"
	CookieReadableAccessToken  = "r-token"
	CookieReadableRefreshToken = "r-refresh-token"

	HeaderAccessToken  = "x-token"
	HeaderRefreshToken = "x-refresh-token"

	bearerPrefix = "Bearer "
)

// CookieWriter writes and clears the four token cookies.
type CookieWriter struct {
	maxAge   time.Duration
	domain   string
	secure   bool
	sameSite http.SameSite
}

// NewCookieWriter builds a CookieWriter from the cookie section of the config.
func NewCookieWriter(cfg *config.Config) *CookieWriter {
	w := &CookieWriter{maxAge: 7 * 24 * time.Hour, sameSite: http.SameSiteLaxMode}
	if cfg == nil || cfg.Cookie == nil {
		return w
	}

	if cfg.Cookie.MaxAge > 0 {
		w.maxAge = cfg.Cookie.MaxAge
	}
	w.domain = cfg.Cookie.Domain
	w.secure = cfg.Cookie.Secure
	w.sameSite = parseSameSite(cfg.Cookie.SameSite)

	return w
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Write sets all four cookies and mirrors the pair in response headers.
func (w *CookieWriter) Write(c echo.Context, pair *entity.TokenPair) {
	maxAge := int(w.maxAge.Seconds())

	c.SetCookie(w.cookie(CookieAccessToken, pair.AccessToken, maxAge, true))
	c.SetCookie(w.cookie(CookieRefreshToken, pair.RefreshToken, maxAge, true))
	c.SetCookie(w.cookie(CookieReadableAccessToken, pair.AccessToken, maxAge, false))
	c.SetCookie(w.cookie(CookieReadableRefreshToken, pair.RefreshToken, maxAge, false))

	c.Response().Header().Set(HeaderAccessToken, pair.AccessToken)
	c.Response().Header().Set(HeaderRefreshToken, pair.RefreshToken)
}

// Clear expires all four cookies.
func (w *CookieWriter) Clear(c echo.Context) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		c.SetCookie(w.cookie(name, "", -1, true))
	}
	for _, name := range []string{CookieReadableAccessToken, CookieReadableRefreshToken} {
		c.SetCookie(w.cookie(name, "", -1, false))
	}
}

func (w *CookieWriter) cookie(name, value string, maxAge int, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   w.domain,
		MaxAge:   maxAge,
		Secure:   w.secure,
		HttpOnly: httpOnly,
		SameSite: w.sameSite,
	}
}

// AccessTokenFrom looks at the x-token header, then an Authorization bearer token, then the x-token cookie.
func AccessTokenFrom(c echo.Context) string {
	req := c.Request()
	if token := strings.TrimSpace(req.Header.Get(HeaderAccessToken)); token != "" {
		return token
	}
	if auth := req.Header.Get(echo.HeaderAuthorization); len(auth) > len(bearerPrefix) &&
		strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}

	return cookieValue(c, CookieAccessToken)
}

// RefreshTokenFrom looks at the x-refresh-token header, then the x-refresh-token cookie.
func RefreshTokenFrom(c echo.Context) string {
	if token := strings.TrimSpace(c.Request().Header.Get(HeaderRefreshToken)); token != "" {
		return token
	}

	return cookieValue(c, CookieRefreshToken)
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
