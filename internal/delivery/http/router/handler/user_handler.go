package handler

import (
	"net/http"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/delivery/http/response"
	"authsvc/internal/delivery/http/session"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UserHandler serves the authenticated user's own account.
type UserHandler struct {
	users   usecase.UserUsecase
	cookies *session.CookieWriter
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(users usecase.UserUsecase, cookies *session.CookieWriter) *UserHandler {
	return &UserHandler{users: users, cookies: cookies}
}

// Me returns the current user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid.WrapMessage("no authenticated user")
	}

	user, err := h.users.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "Profile retrieved successfully")
}

// UpdateProfile replaces the current user's first and last name.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid.WrapMessage("no authenticated user")
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), userID, &usecase.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "Profile updated successfully")
}

// ChangePassword stores a new password and hands the caller a fresh pair.
// Refresh tokens held by every other client stop working.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrTokenInvalid.WrapMessage("no authenticated user")
	}

	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	pair, err := h.users.ChangePassword(c.Request().Context(), userID, &usecase.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.cookies.Write(c, pair)

	return response.Success(c, http.StatusOK, toTokenResponse(pair), "Password changed successfully")
}

// AdminPing confirms that the caller holds the admin role.
func (h *UserHandler) AdminPing(c echo.Context) error {
	userID, _ := deliverycontext.GetUserID(c)

	return response.Success(c, http.StatusOK, map[string]string{"userId": userID.String(), "role": deliverycontext.GetRole(c)}, "pong")
}
