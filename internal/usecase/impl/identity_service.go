package impl

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	"authsvc/config"
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

const (
	stateBytes      = 32
	defaultStateTTL = 10 * time.Minute
)

// identityService implements the IdentityUsecase interface.
type identityService struct {
	txManager            repository.TransactionManager
	userRepo             repository.UserRepository
	hasher               service.PasswordHasher
	oauthProvider        service.OAuthProvider
	idTokenVerifier      service.IDTokenVerifier
	stateStore           service.StateStore
	sessions             usecase.SessionUsecase
	stateTTL             time.Duration
	allowUnverifiedEmail bool
	logger               *slog.Logger
}

// IdentityServiceParams holds dependencies for identityService, injected by Fx.
type IdentityServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	UserRepo        repository.UserRepository
	Hasher          service.PasswordHasher
	OAuthProvider   service.OAuthProvider
	IDTokenVerifier service.IDTokenVerifier
	StateStore      service.StateStore
	Sessions        usecase.SessionUsecase
	Config          *config.Config
	Logger          *slog.Logger
}

// NewIdentityService is the constructor for identityService.
func NewIdentityService(params IdentityServiceParams) usecase.IdentityUsecase {
	stateTTL := defaultStateTTL
	allowUnverified := false
	if params.Config != nil && params.Config.GoogleOAuth != nil {
		if params.Config.GoogleOAuth.StateTTL > 0 {
			stateTTL = params.Config.GoogleOAuth.StateTTL
		}
		allowUnverified = params.Config.GoogleOAuth.AllowUnverifiedEmail
	}

	return &identityService{
		txManager:            params.TxManager,
		userRepo:             params.UserRepo,
		hasher:               params.Hasher,
		oauthProvider:        params.OAuthProvider,
		idTokenVerifier:      params.IDTokenVerifier,
		stateStore:           params.StateStore,
		sessions:             params.Sessions,
		stateTTL:             stateTTL,
		allowUnverifiedEmail: allowUnverified,
		logger:               params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *identityService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// LinkOrCreate resolves the local user for an external profile.
func (srv *identityService) LinkOrCreate(ctx context.Context, profile *entity.ExternalProfile) (*entity.User, error) {
	if profile == nil || strings.TrimSpace(profile.ExternalID) == "" || strings.TrimSpace(profile.Email) == "" {
		return nil, domainerrors.ErrValidationFailed.WrapMessage("external profile requires an external id and an email")
	}
	if !profile.EmailVerified && !srv.allowUnverifiedEmail {
		srv.log(ctx).Info("Rejected external login with unverified email", slog.String("externalID", profile.ExternalID))

		return nil, domainerrors.ErrOAuthEmailUnverified.WrapMessage("external login refused")
	}

	// Local accounts store lower-cased emails; match them the same way.
	normalized := *profile
	normalized.Email = normalizeEmail(profile.Email)
	profile = &normalized

	user, err := srv.resolve(ctx, profile)
	if isCreateRace(err) {
		// Another request created or linked the same identity first. Lookup and link again.
		srv.log(ctx).Warn("Concurrent first login detected, retrying as link", slog.String("externalID", profile.ExternalID))
		user, err = srv.resolve(ctx, profile)
	}
	if err != nil {
		if errors.Is(err, domainerrors.ErrIdentityConflict) {
			return nil, err
		}
		srv.log(ctx).Error("Failed to link external identity", slog.String("externalID", profile.ExternalID), slog.Any("error", err))

		return nil, domainerrors.ErrIdentityLinkFailed.WithCause(err)
	}

	return user, nil
}

func isCreateRace(err error) bool {
	return errors.Is(err, domainerrors.ErrUserAlreadyExists) || errors.Is(err, domainerrors.ErrIdentityAlreadyLinked)
}

func (srv *identityService) resolve(ctx context.Context, profile *entity.ExternalProfile) (*entity.User, error) {
	existing, err := srv.userRepo.FindByExternalIDOrEmail(ctx, profile.ExternalID, profile.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up user by external id or email")
	}

	switch {
	case existing == nil:
		return srv.createLinkedUser(ctx, profile)
	case existing.ExternalID == profile.ExternalID:
		return existing, nil
	case existing.HasExternalIdentity():
		srv.log(ctx).Warn("Email already linked to a different external identity", slog.Any("userID", existing.ID))

		return nil, domainerrors.ErrIdentityConflict.WrapMessage("email is linked to another external account")
	}

	err = srv.userRepo.LinkExternalIdentity(ctx, newExternalIdentity(existing.ID, profile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to link external identity to existing user")
	}
	existing.ExternalID = profile.ExternalID

	srv.log(ctx).Info("Linked external identity to existing user", slog.Any("userID", existing.ID))

	return existing, nil
}

func (srv *identityService) createLinkedUser(ctx context.Context, profile *entity.ExternalProfile) (*entity.User, error) {
	// The account authenticates only through the provider, so the credential is a placeholder
	// seeded by the external id and salted with a random suffix.
	placeholder, err := srv.hasher.Hash(profile.ExternalID + ":" + uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash placeholder credential")
	}

	var created *entity.User
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		userID, err := userRepo.Create(ctx, &entity.User{
			Username:     profile.Email,
			Email:        profile.Email,
			PasswordHash: placeholder,
			Role:         entity.RoleUser,
			IsActive:     true,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create user")
		}

		if err := userRepo.UpdateProfile(ctx, userID, &entity.UserProfile{
			FirstName: profile.GivenName,
			LastName:  profile.FamilyName,
		}); err != nil {
			return errors.Wrap(err, "failed to store profile")
		}

		if err := userRepo.LinkExternalIdentity(ctx, newExternalIdentity(userID, profile)); err != nil {
			return errors.Wrap(err, "failed to link external identity")
		}

		created, err = userRepo.FindByID(ctx, userID)
		if err != nil {
			return errors.Wrap(err, "failed to reload user")
		}
		if created == nil {
			return domainerrors.ErrUserNotFound.WrapMessage("user vanished after creation")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Created user from external identity", slog.Any("userID", created.ID))

	return created, nil
}

func newExternalIdentity(userID uuid.UUID, profile *entity.ExternalProfile) *entity.ExternalIdentity {
	return &entity.ExternalIdentity{
		ExternalID:  profile.ExternalID,
		DisplayName: profile.DisplayName,
		UserID:      userID,
		Provider:    entity.ProviderTypeGoogle,
	}
}

// AuthorizationURL stores a fresh state and returns the provider consent URL.
func (srv *identityService) AuthorizationURL(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate oauth state")
	}

	if err := srv.stateStore.Save(ctx, state, srv.stateTTL); err != nil {
		srv.log(ctx).Error("Failed to save oauth state", slog.Any("error", err))

		return "", errors.Wrap(err, "failed to save oauth state")
	}

	return srv.oauthProvider.AuthCodeURL(state), nil
}

func newState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.WithStack(err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HandleCallback completes the authorization-code flow.
func (srv *identityService) HandleCallback(ctx context.Context, code, state string) (*usecase.LoginOutput, error) {
	ok, err := srv.stateStore.Consume(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to consume oauth state")
	}
	if !ok {
		return nil, domainerrors.ErrOAuthStateInvalid.WrapMessage("unknown or reused state")
	}

	if strings.TrimSpace(code) == "" {
		return nil, domainerrors.ErrOAuthFailed.WrapMessage("missing authorization code")
	}

	profile, err := srv.oauthProvider.Exchange(ctx, code)
	if err != nil {
		srv.log(ctx).Info("Authorization code exchange failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}

	return srv.login(ctx, profile)
}

// HandleIDToken logs in a native client presenting a provider ID token.
func (srv *identityService) HandleIDToken(ctx context.Context, idToken string) (*usecase.LoginOutput, error) {
	profile, err := srv.idTokenVerifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		srv.log(ctx).Info("ID token rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to verify id token")
	}

	return srv.login(ctx, profile)
}

func (srv *identityService) login(ctx context.Context, profile *entity.ExternalProfile) (*usecase.LoginOutput, error) {
	user, err := srv.LinkOrCreate(ctx, profile)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domainerrors.ErrAccountInactive.WrapMessage("external login denied")
	}

	tokens, err := srv.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens after external login")
	}

	srv.log(ctx).Info("External login succeeded", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{User: user, Tokens: tokens}, nil
}
