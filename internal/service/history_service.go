package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"translation-api/internal/domain"
	"translation-api/internal/repository"
)

const historyLimit = 50

// HistoryService administra el historial de traducciones de cada usuario.
type HistoryService struct {
	logger       *zap.Logger
	translations repository.TranslationRepository
	now          func() time.Time
}

func NewHistoryService(logger *zap.Logger, translations repository.TranslationRepository) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		logger:       logger,
		translations: translations,
		now:          time.Now,
	}
}

// List devuelve las 50 traducciones más recientes, la más nueva primero.
func (s *HistoryService) List(ctx context.Context, userID string) ([]domain.Translation, error) {
	items, err := s.translations.ListByUserID(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	if items == nil {
		items = []domain.Translation{}
	}
	return items, nil
}

func (s *HistoryService) Save(ctx context.Context, userID, sourceText, translatedText string) (domain.Translation, error) {
	if strings.TrimSpace(sourceText) == "" || strings.TrimSpace(translatedText) == "" {
		return domain.Translation{}, fmt.Errorf("%w: please provide source and translated text", ErrValidation)
	}
	t := domain.Translation{
		ID:             uuid.NewString(),
		UserID:         userID,
		SourceText:     sourceText,
		TranslatedText: translatedText,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.translations.Create(ctx, t); err != nil {
		return domain.Translation{}, fmt.Errorf("save translation: %w", err)
	}
	return t, nil
}

// Delete borra una entrada propia. Si la entrada es de otro usuario devuelve
// ErrForbidden, no ErrNotFound.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	t, err := s.translations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get translation: %w", err)
	}
	if t.UserID != userID {
		return ErrForbidden
	}
	if err := s.translations.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete translation: %w", err)
	}
	return nil
}

func (s *HistoryService) Clear(ctx context.Context, userID string) (int64, error) {
	n, err := s.translations.DeleteByUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	s.logger.Info("history cleared", zap.String("user_id", userID), zap.Int64("deleted", n))
	return n, nil
}
