// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/errors"
	"authsvc/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnPasswordHash      = "password_hash"
	assocExternalIdentities = "ExternalIdentities"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single user by their unique ID without the password hash.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, false, "id = ?", id)
}

// FindByEmail retrieves a single user by email, including the password hash for login.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, true, "email = ?", email)
}

// FindWithPasswordHash retrieves a user by ID including the password hash.
func (repo *userRepository) FindWithPasswordHash(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, true, "id = ?", id)
}

// FindByExternalIDOrEmail resolves the linked user first and falls back to the email owner.
func (repo *userRepository) FindByExternalIDOrEmail(ctx context.Context, externalID, email string) (*entity.User, error) {
	if externalID != "" {
		var identity model.ExternalIdentityModel
		err := repo.db.WithContext(ctx).
			Where("external_id = ?", externalID).
			Take(&identity).Error
		switch {
		case err == nil:
			return repo.findOne(ctx, false, "id = ?", identity.UserID)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find external identity")
		}
	}

	if email == "" {
		return nil, nil
	}

	return repo.findOne(ctx, false, "email = ?", email)
}

// Create persists a new user. The ID is generated here when the caller left it empty.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) (uuid.UUID, error) {
	userM := fromUserDomain(user)
	if userM.ID == uuid.Nil {
		userM.ID = uuid.New()
	}

	if err := repo.db.WithContext(ctx).Omit(clause.Associations).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return uuid.Nil, domainerrors.ErrUserAlreadyExists.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return uuid.Nil, domainerrors.ErrUserCreationFailed.WrapMessage("missing required user information")
		}
		if isCheckConstraintViolation(err) {
			return uuid.Nil, domainerrors.ErrUserCreationFailed.WrapMessage("user data violates a check constraint")
		}

		return uuid.Nil, domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return userM.ID, nil
}

// LinkExternalIdentity stores the link between a provider subject id and a user.
func (repo *userRepository) LinkExternalIdentity(ctx context.Context, identity *entity.ExternalIdentity) error {
	identityM := fromExternalIdentityDomain(identity)

	if err := repo.db.WithContext(ctx).Create(identityM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrIdentityAlreadyLinked.WrapMessage("external identity already linked")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("cannot link identity to unknown user")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to link external identity")
	}

	return nil
}

// UpdateProfile replaces the first and last name of a user.
func (repo *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, profile *entity.UserProfile) error {
	if profile == nil {
		profile = &entity.UserProfile{}
	}

	return repo.updateColumns(ctx, id, map[string]any{
		"first_name": profile.FirstName,
		"last_name":  profile.LastName,
	}, "failed to update user profile")
}

// UpdatePasswordHash stores a new password hash.
func (repo *userRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if passwordHash == "" {
		return domainerrors.ErrUserUpdateFailed.WrapMessage("password hash must not be empty")
	}

	return repo.updateColumns(ctx, id, map[string]any{
		columnPasswordHash: passwordHash,
	}, "failed to update password hash")
}

func (repo *userRepository) updateColumns(ctx context.Context, id uuid.UUID, columns map[string]any, details string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, details)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrUserNotFound.WrapMessage(details)
	}

	return nil
}

// findOne loads a user with its external identities. A missing row yields nil, nil.
func (repo *userRepository) findOne(ctx context.Context, withPasswordHash bool, query string, args ...any) (*entity.User, error) {
	tx := repo.db.WithContext(ctx).Preload(assocExternalIdentities)
	if !withPasswordHash {
		tx = tx.Omit(columnPasswordHash)
	}

	var userM model.UserModel
	if err := tx.Where(query, args...).Take(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	user := &entity.User{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         entity.RoleFromString(data.Role),
		IsActive:     data.IsActive,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}

	if data.FirstName != "" || data.LastName != "" {
		user.Profile = &entity.UserProfile{
			FirstName: data.FirstName,
			LastName:  data.LastName,
		}
	}

	for _, identity := range data.ExternalIdentities {
		if identity.Provider == entity.ProviderTypeGoogle.String() {
			user.ExternalID = identity.ExternalID

			break
		}
	}

	return user
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
// External identities are written through LinkExternalIdentity only.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	role := data.Role
	if !role.IsValid() {
		role = entity.RoleUser
	}

	userM := &model.UserModel{
		ID:           data.ID,
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		Role:         role.String(),
		IsActive:     data.IsActive,
	}
	if data.Profile != nil {
		userM.FirstName = data.Profile.FirstName
		userM.LastName = data.Profile.LastName
	}

	return userM
}

func fromExternalIdentityDomain(data *entity.ExternalIdentity) *model.ExternalIdentityModel {
	if data == nil {
		return nil
	}

	provider := data.Provider
	if provider == "" {
		provider = entity.ProviderTypeGoogle
	}

	return &model.ExternalIdentityModel{
		ExternalID:  data.ExternalID,
		UserID:      data.UserID,
		Provider:    provider.String(),
		DisplayName: data.DisplayName,
	}
}
