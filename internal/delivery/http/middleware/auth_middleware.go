package middleware

import (
	"log/slog"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/delivery/http/session"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware authenticates requests from their access token and refreshes expired sessions in place.
type AuthMiddleware struct {
	sessions usecase.SessionUsecase
	cookies  *session.CookieWriter
	logger   *slog.Logger
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessions usecase.SessionUsecase, cookies *session.CookieWriter, logger *slog.Logger) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, cookies: cookies, logger: logger}
}

// Authenticate verifies the access token. When it has expired and a refresh token is present,
// the pair is rotated, written back to the client and the request continues with the new claims.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		accessToken := session.AccessTokenFrom(c)
		if accessToken == "" {
			return domainerrors.ErrTokenInvalid.WrapMessage("missing access token")
		}

		claims, err := m.sessions.Authenticate(ctx, accessToken)
		if err != nil {
			if !errors.Is(err, domainerrors.ErrTokenExpired) {
				return err
			}

			refreshToken := session.RefreshTokenFrom(c)
			if refreshToken == "" {
				return err
			}

			pair, refreshErr := m.sessions.Refresh(ctx, refreshToken)
			if refreshErr != nil {
				deliverycontext.GetLoggerOrDefault(ctx, m.logger).Info("Transparent refresh failed", slog.Any("error", refreshErr))

				return domainerrors.ErrTokenExpired.WithCause(refreshErr)
			}
			m.cookies.Write(c, pair)

			claims, err = m.sessions.Authenticate(ctx, pair.AccessToken)
			if err != nil {
				return err
			}
		}

		deliverycontext.SetClaims(c, claims)

		return next(c)
	}
}

// RequireRole rejects authenticated users without the given role.
// It must be used after Authenticate.
func (m *AuthMiddleware) RequireRole(role entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := deliverycontext.GetClaims(c); !ok {
				return domainerrors.ErrTokenInvalid.WrapMessage("role check without authentication")
			}
			if deliverycontext.GetRole(c) != role.String() {
				return domainerrors.ErrForbidden.WrapMessage("requires role " + role.String())
			}

			return next(c)
		}
	}
}
