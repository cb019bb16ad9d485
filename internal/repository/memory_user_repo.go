package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"translation-api/internal/domain"
)

// MemoryUserRepository guarda usuarios en memoria. Un único mutex serializa
// las escrituras, así que cada operación es atómica como en Postgres.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryUserRepository) Create(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := emailKey(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrDuplicate
	}
	if _, exists := r.byID[user.ID]; exists {
		return ErrDuplicate
	}
	r.byID[user.ID] = user
	r.byEmail[key] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tokenHash == "" {
		return domain.User{}, ErrNotFound
	}
	for _, user := range r.byID {
		if user.ResetTokenHash == tokenHash {
			return user, nil
		}
	}
	return domain.User{}, ErrNotFound
}

func (r *MemoryUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return r.update(ctx, id, func(u *domain.User) {
		exp := expiresAt.UTC()
		u.ResetTokenHash = tokenHash
		u.ResetTokenExpiresAt = &exp
	})
}

func (r *MemoryUserRepository) ClearResetToken(ctx context.Context, id, tokenHash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok || user.ResetTokenHash != tokenHash {
		return ErrNotFound
	}
	clearReset(&user)
	user.UpdatedAt = time.Now().UTC()
	r.byID[id] = user
	return nil
}

func (r *MemoryUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if tokenHash == "" {
		return domain.User{}, ErrNotFound
	}
	for id, user := range r.byID {
		if user.ResetTokenHash != tokenHash || user.ResetTokenExpiresAt == nil {
			continue
		}
		if !user.ResetTokenExpiresAt.After(now) {
			return domain.User{}, ErrNotFound
		}
		user.PasswordHash = passwordHash
		clearReset(&user)
		user.UpdatedAt = now.UTC()
		r.byID[id] = user
		return user, nil
	}
	return domain.User{}, ErrNotFound
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.update(ctx, id, func(u *domain.User) {
		u.PasswordHash = passwordHash
		clearReset(u)
	})
}

func (r *MemoryUserRepository) update(ctx context.Context, id string, mutate func(u *domain.User)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&user)
	user.UpdatedAt = time.Now().UTC()
	r.byID[id] = user
	return nil
}

func clearReset(u *domain.User) {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
}
