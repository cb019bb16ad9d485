package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"translation-api/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const pgUniqueViolation = "23505"

// UserRepository define el contrato de persistencia para usuarios.
// Cada escritura afecta a un único registro de forma atómica.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error)
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	// ClearResetToken limpia el reseteo pendiente solo si sigue siendo tokenHash.
	ClearResetToken(ctx context.Context, id, tokenHash string) error
	// ConsumeResetToken reemplaza el hash de password y limpia el reseteo solo
	// si tokenHash coincide y no expiró en now. Devuelve ErrNotFound si no hubo match.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

const userColumns = `id, first_name, last_name, email, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

func (r *PgUserRepository) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (id, first_name, last_name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *PgUserRepository) GetByResetTokenHash(ctx context.Context, tokenHash string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1`
	return scanUser(r.pool.QueryRow(ctx, query, tokenHash))
}

func (r *PgUserRepository) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = now()
		WHERE id = $3
	`
	return r.execOne(ctx, query, tokenHash, expiresAt, id)
}

func (r *PgUserRepository) ClearResetToken(ctx context.Context, id, tokenHash string) error {
	const query = `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1 AND reset_token_hash = $2
	`
	return r.execOne(ctx, query, id, tokenHash)
}

// Match, cambio de password y limpieza del reseteo en un único UPDATE.
const consumeResetTokenQuery = `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $3
		WHERE reset_token_hash = $2 AND reset_token_expires_at > $3
		RETURNING ` + userColumns

func (r *PgUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, consumeResetTokenQuery, passwordHash, tokenHash, now))
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $2
	`
	return r.execOne(ctx, query, passwordHash, id)
}

func (r *PgUserRepository) execOne(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u         domain.User
		resetHash *string
		resetExp  *time.Time
	)
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.Email,
		&u.PasswordHash,
		&resetHash,
		&resetExp,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("scan user: %w", err)
	}
	if resetHash != nil && resetExp != nil {
		u.ResetTokenHash = *resetHash
		exp := resetExp.UTC()
		u.ResetTokenExpiresAt = &exp
	}
	return u, nil
}
