package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"translation-api/internal/domain"
)

type TranslationRepository interface {
	Create(ctx context.Context, t domain.Translation) error
	GetByID(ctx context.Context, id string) (domain.Translation, error)
	ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Translation, error)
	Delete(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) (int64, error)
}

type PgTranslationRepository struct {
	pool *pgxpool.Pool
}

func NewPgTranslationRepository(pool *pgxpool.Pool) *PgTranslationRepository {
	return &PgTranslationRepository{pool: pool}
}

func (r *PgTranslationRepository) Create(ctx context.Context, t domain.Translation) error {
	const query = `
		INSERT INTO translations (id, user_id, source_text, translated_text, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.SourceText,
		t.TranslatedText,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert translation: %w", err)
	}
	return nil
}

func (r *PgTranslationRepository) GetByID(ctx context.Context, id string) (domain.Translation, error) {
	const query = `
		SELECT id, user_id, source_text, translated_text, created_at
		FROM translations
		WHERE id = $1
	`
	var t domain.Translation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.SourceText,
		&t.TranslatedText,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Translation{}, ErrNotFound
	}
	if err != nil {
		return domain.Translation{}, fmt.Errorf("get translation: %w", err)
	}
	return t, nil
}

func (r *PgTranslationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Translation, error) {
	const query = `
		SELECT id, user_id, source_text, translated_text, created_at
		FROM translations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Translation, 0)
	for rows.Next() {
		var t domain.Translation
		if err := rows.Scan(&t.ID, &t.UserID, &t.SourceText, &t.TranslatedText, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PgTranslationRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM translations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete translation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgTranslationRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM translations WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear translations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MemoryTranslationRepository implementa TranslationRepository en memoria.
type MemoryTranslationRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Translation
}

func NewMemoryTranslationRepository() *MemoryTranslationRepository {
	return &MemoryTranslationRepository{items: make(map[string]domain.Translation)}
}

func (r *MemoryTranslationRepository) Create(ctx context.Context, t domain.Translation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[t.ID]; exists {
		return ErrDuplicate
	}
	r.items[t.ID] = t
	return nil
}

func (r *MemoryTranslationRepository) GetByID(ctx context.Context, id string) (domain.Translation, error) {
	if err := ctx.Err(); err != nil {
		return domain.Translation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return domain.Translation{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryTranslationRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]domain.Translation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	items := make([]domain.Translation, 0)
	for _, t := range r.items {
		if t.UserID == userID {
			items = append(items, t)
		}
	}
	r.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r *MemoryTranslationRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *MemoryTranslationRepository) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.items {
		if t.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}
