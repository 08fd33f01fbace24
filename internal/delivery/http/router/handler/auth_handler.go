// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"authsvc/config"
	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/delivery/http/response"
	"authsvc/internal/delivery/http/session"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

const defaultSuccessRedirect = "/profile"

// AuthHandler serves login, refresh, logout and the Google sign-in endpoints.
type AuthHandler struct {
	users           usecase.UserUsecase
	sessions        usecase.SessionUsecase
	identity        usecase.IdentityUsecase
	cookies         *session.CookieWriter
	successRedirect string
	logger          *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(
	users usecase.UserUsecase,
	sessions usecase.SessionUsecase,
	identity usecase.IdentityUsecase,
	cookies *session.CookieWriter,
	cfg *config.Config,
	logger *slog.Logger,
) *AuthHandler {
	successRedirect := defaultSuccessRedirect
	if cfg != nil && cfg.GoogleOAuth != nil && cfg.GoogleOAuth.SuccessRedirect != "" {
		successRedirect = cfg.GoogleOAuth.SuccessRedirect
	}

	return &AuthHandler{
		users:           users,
		sessions:        sessions,
		identity:        identity,
		cookies:         cookies,
		successRedirect: successRedirect,
		logger:          logger,
	}
}

func (h *AuthHandler) log(c echo.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(c.Request().Context(), h.logger)
}

// bindAndValidate decodes the body into req and runs the struct validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domainerrors.ErrValidationFailed.WrapMessage("malformed request body")
	}

	return c.Validate(req)
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.users.Register(c.Request().Context(), &usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserResponse(output.User), "User registered successfully")
}

// Login verifies credentials and writes the session cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.users.Login(c.Request().Context(), &usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.Write(c, output.Tokens)

	return response.Success(c, http.StatusOK, &loginResponse{
		User:   toUserResponse(output.User),
		Tokens: toTokenResponse(output.Tokens),
	}, "Login successful")
}

// Refresh rotates the token pair. The refresh token comes from the header, the cookie or the body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := session.RefreshTokenFrom(c)
	if refreshToken == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			refreshToken = strings.TrimSpace(req.RefreshToken)
		}
	}
	if refreshToken == "" {
		return domainerrors.ErrRefreshTokenInvalid.WrapMessage("missing refresh token")
	}

	pair, err := h.sessions.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		if errors.Is(err, domainerrors.ErrUserNotFound) {
			// A refresh token for a deleted account is just an invalid credential to the client.
			return domainerrors.ErrRefreshTokenInvalid.WithCause(err)
		}

		return errors.WithStack(err)
	}

	h.cookies.Write(c, pair)

	return response.Success(c, http.StatusOK, toTokenResponse(pair), "Token refreshed successfully")
}

// Logout expires the session cookies. Tokens already handed out stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.cookies.Clear(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// GoogleLogin starts the authorization-code flow. With ?redirect=false the URL is returned as JSON.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	authURL, err := h.identity.AuthorizationURL(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	if c.QueryParam("redirect") == "false" {
		return response.Success(c, http.StatusOK, map[string]string{"url": authURL}, "Google OAuth URL generated successfully")
	}

	return c.Redirect(http.StatusFound, authURL)
}

// GoogleCallback completes the authorization-code flow, writes cookies and redirects to the app.
// Nothing is written when linking fails.
func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		h.log(c).Info("Provider denied authorization", slog.String("reason", providerErr))

		return domainerrors.ErrOAuthFailed.WrapMessage("provider returned " + providerErr)
	}

	output, err := h.identity.HandleCallback(c.Request().Context(), c.QueryParam("code"), c.QueryParam("state"))
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.Write(c, output.Tokens)

	return c.Redirect(http.StatusFound, h.successRedirect)
}

// GoogleIDToken signs in a native client holding a Google ID token.
func (h *AuthHandler) GoogleIDToken(c echo.Context) error {
	var req idTokenRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	output, err := h.identity.HandleIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.Write(c, output.Tokens)

	return response.Success(c, http.StatusOK, &loginResponse{
		User:   toUserResponse(output.User),
		Tokens: toTokenResponse(output.Tokens),
	}, "Google sign-in successful")
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
