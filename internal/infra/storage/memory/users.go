package memory

import (
	"context"
	"sync"

	domainauth "drively/internal/domain/auth"
	"drively/internal/domain/user"
)

// UserRepository keeps accounts in memory, indexed by id and normalized
// email. Save enforces email uniqueness.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[user.ID]*user.User
	byEmail map[string]user.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[user.ID]*user.User),
		byEmail: make(map[string]user.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id user.ID) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := user.NormalizeEmail(u.Email)
	if existing, ok := r.byEmail[email]; ok && existing != u.ID {
		return user.ErrEmailAlreadyUsed
	}
	r.byID[u.ID] = u
	r.byEmail[email] = u.ID
	return nil
}

// AuthSessionStore keeps bearer-token sessions in memory.
type AuthSessionStore struct {
	mu    sync.RWMutex
	items map[domainauth.Token]*domainauth.Session
}

func NewAuthSessionStore() *AuthSessionStore {
	return &AuthSessionStore{items: make(map[domainauth.Token]*domainauth.Session)}
}

func (s *AuthSessionStore) Put(ctx context.Context, session *domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[session.Token] = session
	return nil
}

func (s *AuthSessionStore) ByToken(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.items[token]
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *AuthSessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}
