package impl

import (
	"context"
	"log/slog"
	"strings"

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

// userService implements the UserUsecase interface.
type userService struct {
	txManager repository.TransactionManager
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	sessions  usecase.SessionUsecase
	logger    *slog.Logger
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Sessions  usecase.SessionUsecase
	Logger    *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager: params.TxManager,
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		sessions:  params.Sessions,
		logger:    params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an active account with the user role.
func (srv *userService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	email := normalizeEmail(input.Email)
	srv.log(ctx).Info("Starting registration", slog.String("email", email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		return nil, errors.Wrap(err, "password strength validation failed")
	}

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	var registered *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		existing, err := userRepo.FindByEmail(ctx, email)
		if err != nil {
			return errors.Wrap(err, "failed to check existing email")
		}
		if existing != nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		}

		user := &entity.User{
			Username:     strings.TrimSpace(input.Username),
			Email:        email,
			PasswordHash: hash,
			Role:         entity.RoleUser,
			IsActive:     true,
		}
		userID, err := userRepo.Create(ctx, user)
		if err != nil {
			return errors.Wrap(err, "failed to create user")
		}
		user.ID = userID
		user.PasswordHash = ""
		registered = user

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registered.ID))

	return &usecase.RegisterOutput{User: registered}, nil
}

// Login verifies local credentials and issues a token pair.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	email := normalizeEmail(input.Email)

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user by email")
	}
	if user == nil || !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login rejected", slog.String("email", email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("login failed")
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountInactive.WrapMessage("login denied")
	}

	tokens, err := srv.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens")
	}
	user.PasswordHash = ""

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{User: user, Tokens: tokens}, nil
}

// ChangePassword replaces the password hash. Every refresh token signed with the old hash stops verifying.
func (srv *userService) ChangePassword(ctx context.Context, userID uuid.UUID, input *usecase.ChangePasswordInput) (*entity.TokenPair, error) {
	user, err := srv.userRepo.FindWithPasswordHash(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load user")
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("cannot change password")
	}
	if !srv.hasher.Check(input.CurrentPassword, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("current password does not match")
	}

	if err := srv.hasher.ValidatePasswordStrength(input.NewPassword); err != nil {
		return nil, errors.Wrap(err, "password strength validation failed")
	}

	hash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	if err := srv.userRepo.UpdatePasswordHash(ctx, userID, hash); err != nil {
		srv.log(ctx).Error("Failed to store new password hash", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to update password")
	}

	srv.log(ctx).Info("Password changed, outstanding refresh tokens revoked", slog.Any("userID", userID))

	tokens, err := srv.sessions.Issue(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens after password change")
	}

	return tokens, nil
}

// GetProfile returns the user without its password hash.
func (srv *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find user")
	}
	if user == nil {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup")
	}

	return user, nil
}

// UpdateProfile replaces the profile fields and returns the updated user.
func (srv *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpdateProfileInput) (*entity.User, error) {
	var updated *entity.User
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		if err := userRepo.UpdateProfile(ctx, userID, &entity.UserProfile{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
		}); err != nil {
			return errors.Wrap(err, "failed to update profile")
		}

		user, err := userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to reload user")
		}
		if user == nil {
			return domainerrors.ErrUserNotFound.WrapMessage("profile update")
		}
		updated = user

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute profile update transaction")
	}

	return updated, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
