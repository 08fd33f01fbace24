// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// sessionService implements the SessionUsecase interface.
// Its only state is its collaborators, and each refresh costs one credential store read.
type sessionService struct {
	userRepo     repository.UserRepository
	tokenService service.TokenService
	logger       *slog.Logger
}

// SessionServiceParams holds dependencies for sessionService, injected by Fx.
type SessionServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(params SessionServiceParams) usecase.SessionUsecase {
	return &sessionService{
		userRepo:     params.UserRepo,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Authenticate verifies an access token. Expired and Invalid are returned as distinct errors.
func (srv *sessionService) Authenticate(ctx context.Context, accessToken string) (*service.Claims, error) {
	claims, err := srv.tokenService.VerifyAccessToken(accessToken)
	if err != nil {
		srv.log(ctx).Debug("Access token rejected", slog.Bool("expired", errors.Is(err, domainerrors.ErrTokenExpired)))

		return nil, err
	}

	return claims, nil
}

// Refresh rotates both tokens after verifying refreshToken against the user's current password hash.
func (srv *sessionService) Refresh(ctx context.Context, refreshToken string) (*entity.TokenPair, error) {
	// The signature needs the per-user secret, so the subject is read first.
	userID, err := srv.tokenService.SubjectOf(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid.WithCause(err)
	}

	user, err := srv.userRepo.FindWithPasswordHash(ctx, userID)
	if err != nil {
		srv.log(ctx).Error("Failed to load user for refresh", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load user for refresh")
	}
	if user == nil {
		srv.log(ctx).Info("Refresh token subject not found", slog.Any("userID", userID))

		return nil, domainerrors.ErrUserNotFound.WrapMessage("refresh token subject no longer exists")
	}

	previous, err := srv.tokenService.VerifyRefreshToken(refreshToken, user.PasswordHash)
	if err != nil {
		srv.log(ctx).Info("Refresh token rejected", slog.Any("userID", userID), slog.Bool("expired", errors.Is(err, domainerrors.ErrTokenExpired)))

		return nil, err
	}

	if !user.IsActive {
		return nil, domainerrors.ErrAccountInactive.WrapMessage("refresh denied")
	}

	pair, err := srv.tokenService.RotateTokenPair(user, previous)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token pair")
	}

	srv.log(ctx).Debug("Token pair refreshed", slog.Any("userID", userID))

	return pair, nil
}

// Issue loads the user with its password hash and signs a new pair.
func (srv *sessionService) Issue(ctx context.Context, userID uuid.UUID) (*entity.TokenPair, error) {
	user, err := srv.userRepo.FindWithPasswordHash(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user for token issuance")
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("cannot issue tokens")
	}

	pair, err := srv.tokenService.IssueTokenPair(user)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token pair")
	}

	return pair, nil
}
