package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"translation-api/internal/config"
	"translation-api/internal/domain"
	"translation-api/internal/repository"
)

// UserService es el CredentialStore: registra usuarios y verifica passwords.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
	hasher passwordHasher
	now    func() time.Time

	dummyMu   sync.Mutex
	dummyHash string
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, cfg config.AuthConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
		hasher: newPasswordHasher(cfg.HashCost),
		now:    time.Now,
	}
}

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := normalizeEmail(input.Email)
	if firstName == "" || lastName == "" || email == "" || strings.TrimSpace(input.Password) == "" {
		return domain.User{}, fmt.Errorf("%w: please provide all required fields", ErrValidation)
	}
	if !isValidEmail(email) {
		return domain.User{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}

	passwordHash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// El índice único sobre email hace la verificación y la inserción en un solo paso.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate devuelve ErrInvalidCredentials tanto si el email no existe como
// si el password no coincide.
func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Mismo costo de bcrypt que un usuario real.
			dummy, err := s.dummyPasswordHash(ctx)
			if err != nil {
				return domain.User{}, err
			}
			if _, err := s.hasher.Matches(ctx, dummy, password); err != nil {
				return domain.User{}, err
			}
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, fmt.Errorf("get user by email: %w", err)
	}

	ok, err := s.hasher.Matches(ctx, user.PasswordHash, password)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// ChangePassword reemplaza el password de un usuario autenticado. También
// descarta cualquier reseteo pendiente.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" || currentPassword == "" {
		return fmt.Errorf("%w: current and new password are required", ErrValidation)
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Matches(ctx, user.PasswordHash, currentPassword)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.Info("password changed", zap.String("user_id", user.ID))
	return nil
}

// dummyPasswordHash genera una vez un hash de un password aleatorio con el
// costo configurado. Si falla no queda cacheado y se reintenta.
func (s *UserService) dummyPasswordHash(ctx context.Context) (string, error) {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()
	if s.dummyHash != "" {
		return s.dummyHash, nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		s.logger.Error("generate dummy password failed", zap.Error(err))
		return "", fmt.Errorf("generate dummy password: %w", err)
	}
	hash, err := s.hasher.Hash(ctx, hex.EncodeToString(buf))
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("hash dummy password failed", zap.Error(err))
		}
		return "", err
	}
	s.dummyHash = hash
	return hash, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
