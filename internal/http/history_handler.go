package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"translation-api/internal/service"
)

// HistoryHandler expone el historial de traducciones del usuario autenticado.
type HistoryHandler struct {
	logger  *zap.Logger
	history *service.HistoryService
}

func NewHistoryHandler(logger *zap.Logger, history *service.HistoryService) *HistoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryHandler{logger: logger, history: history}
}

// List maneja GET /api/history.
func (h *HistoryHandler) List(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	items, err := h.history.List(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("list history failed", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// Save maneja POST /api/history.
func (h *HistoryHandler) Save(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	var req struct {
		SourceText     string `json:"sourceText" binding:"required"`
		TranslatedText string `json:"translatedText" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide source and translated text"})
		return
	}

	entry, err := h.history.Save(c.Request.Context(), user.ID, req.SourceText, req.TranslatedText)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
			return
		}
		h.logger.Error("save history failed", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Delete maneja DELETE /api/history/:id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	err := h.history.Delete(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "translation not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		default:
			h.logger.Error("delete history failed", zap.Error(err), zap.String("user_id", user.ID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "translation removed"})
}

// Clear maneja DELETE /api/history.
func (h *HistoryHandler) Clear(c *gin.Context) {
	user, ok := GetAuthUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	n, err := h.history.Clear(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Error("clear history failed", zap.Error(err), zap.String("user_id", user.ID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "history cleared", "deleted": n})
}
