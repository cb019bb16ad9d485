package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"translation-api/internal/config"
	"translation-api/internal/email"
	"translation-api/internal/repository"
)

const (
	// 20 bytes = 160 bits de entropía.
	resetSecretBytes = 20
	defaultResetTTL  = time.Hour
	deliveryTimeout  = 30 * time.Second
)

// PasswordResetService maneja el secreto de reseteo de un solo uso. El
// secreto crudo solo viaja por el Sender; en la base queda su SHA-256.
type PasswordResetService struct {
	logger *zap.Logger
	users  repository.UserRepository
	sender email.Sender
	hasher passwordHasher
	ttl    time.Duration
	random io.Reader
	now    func() time.Time

	deliveryTimeout time.Duration
}

func NewPasswordResetService(logger *zap.Logger, users repository.UserRepository, sender email.Sender, cfg config.AuthConfig) *PasswordResetService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sender == nil {
		sender = email.NewDisabledSender("email sender not configured")
	}
	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &PasswordResetService{
		logger: logger,
		users:  users,
		sender: sender,
		hasher: newPasswordHasher(cfg.HashCost),
		ttl:    ttl,
		random: rand.Reader,
		now:    time.Now,

		deliveryTimeout: deliveryTimeout,
	}
}

// RequestReset responde igual exista o no la cuenta. Solo falla ante input
// vacío o si el almacenamiento no está disponible.
func (s *PasswordResetService) RequestReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return fmt.Errorf("%w: please provide email", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email: %w", err)
	}

	secret, err := s.newSecret()
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}
	expiresAt := s.now().UTC().Add(s.ttl)

	if err := s.users.SetResetToken(ctx, user.ID, hashResetSecret(secret), expiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("store reset token: %w", err)
	}

	// El envío no bloquea el ack: la latencia del SMTP delataría la cuenta.
	go s.deliver(context.WithoutCancel(ctx), user.ID, user.Email, secret, expiresAt)

	s.logger.Info("password reset requested", zap.String("user_id", user.ID))
	return nil
}

func (s *PasswordResetService) deliver(ctx context.Context, userID, toEmail, secret string, expiresAt time.Time) {
	ctx, cancel := context.WithTimeout(ctx, s.deliveryTimeout)
	defer cancel()
	if err := s.sender.SendPasswordReset(ctx, toEmail, secret, expiresAt); err != nil {
		s.logger.Warn("send password reset failed", zap.Error(err), zap.String("user_id", userID))
	}
}

// ConsumeReset cambia el password si rawSecret coincide con un reseteo
// vigente. La coincidencia y la limpieza ocurren en una sola escritura.
func (s *PasswordResetService) ConsumeReset(ctx context.Context, rawSecret, newPassword string) error {
	rawSecret = strings.TrimSpace(rawSecret)
	if rawSecret == "" || strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: please provide token and new password", ErrValidation)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	tokenHash := hashResetSecret(rawSecret)
	now := s.now().UTC()

	// Lookup barato antes de pagar bcrypt por secretos inventados.
	pending, err := s.users.GetByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("get user by reset token: %w", err)
	}
	if pending.ResetTokenExpiresAt == nil {
		return ErrResetTokenInvalid
	}
	if !pending.ResetTokenExpiresAt.After(now) {
		if err := s.users.ClearResetToken(ctx, pending.ID, tokenHash); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("clear expired reset token failed", zap.Error(err), zap.String("user_id", pending.ID))
		}
		return ErrResetTokenExpired
	}

	passwordHash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	// La escritura condicional decide entre consumos concurrentes.
	user, err := s.users.ConsumeResetToken(ctx, tokenHash, passwordHash, now)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("consume reset token: %w", err)
	}
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return nil
}

func (s *PasswordResetService) newSecret() (string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
