package http

import (
	"context"
	"sync"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"

	"github.com/google/uuid"
)

// memoryStore is an in-memory credential store enforcing the same uniqueness rules as the database.
type memoryStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]entity.User
	identities map[string]uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[uuid.UUID]entity.User{}, identities: map[string]uuid.UUID{}}
}

func (s *memoryStore) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(s)
}

func (s *memoryStore) UserRepo() repository.UserRepository {
	return s
}

func (s *memoryStore) snapshot(u entity.User, withHash bool) *entity.User {
	if !withHash {
		u.PasswordHash = ""
	}
	if u.Profile != nil {
		profile := *u.Profile
		u.Profile = &profile
	}

	return &u
}

func (s *memoryStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	return s.snapshot(u, false), nil
}

func (s *memoryStore) findByEmail(email string) (entity.User, bool) {
	for _, u := range s.users {
		if u.Email == email {
			return u, true
		}
	}

	return entity.User{}, false
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.findByEmail(email)
	if !ok {
		return nil, nil
	}

	return s.snapshot(u, true), nil
}

func (s *memoryStore) FindByExternalIDOrEmail(_ context.Context, externalID, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.identities[externalID]; ok {
		return s.snapshot(s.users[id], false), nil
	}
	if u, ok := s.findByEmail(email); ok {
		return s.snapshot(u, false), nil
	}

	return nil, nil
}

func (s *memoryStore) FindWithPasswordHash(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}

	return s.snapshot(u, true), nil
}

func (s *memoryStore) Create(_ context.Context, user *entity.User) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.findByEmail(user.Email); exists {
		return uuid.Nil, domainerrors.ErrUserAlreadyExists.WrapMessage("duplicate email")
	}

	u := *user
	u.ID = uuid.New()
	s.users[u.ID] = u

	return u.ID, nil
}

func (s *memoryStore) LinkExternalIdentity(_ context.Context, identity *entity.ExternalIdentity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.identities[identity.ExternalID]; exists {
		return domainerrors.ErrIdentityAlreadyLinked.WrapMessage("duplicate external id")
	}

	u, ok := s.users[identity.UserID]
	if !ok {
		return domainerrors.ErrUserNotFound.WrapMessage("link target missing")
	}
	u.ExternalID = identity.ExternalID
	s.users[u.ID] = u
	s.identities[identity.ExternalID] = u.ID

	return nil
}

func (s *memoryStore) UpdateProfile(_ context.Context, id uuid.UUID, profile *entity.UserProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domainerrors.ErrUserNotFound.WrapMessage("profile update")
	}
	p := *profile
	u.Profile = &p
	s.users[id] = u

	return nil
}

func (s *memoryStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return domainerrors.ErrUserNotFound.WrapMessage("password update")
	}
	u.PasswordHash = passwordHash
	s.users[id] = u

	return nil
}

func (s *memoryStore) setRole(email string, role entity.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.findByEmail(email); ok {
		u.Role = role
		s.users[u.ID] = u
	}
}
