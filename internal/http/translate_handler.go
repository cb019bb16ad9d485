package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"translation-api/internal/translate"
)

type TranslateHandler struct {
	logger     *zap.Logger
	translator translate.Translator
}

func NewTranslateHandler(logger *zap.Logger, translator translate.Translator) *TranslateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranslateHandler{logger: logger, translator: translator}
}

// Translate maneja POST /api/translate.
func (h *TranslateHandler) Translate(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please provide text to translate"})
		return
	}

	translated, err := h.translator.Translate(c.Request.Context(), req.Text)
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if user, ok := GetAuthUser(c); ok {
			fields = append(fields, zap.String("user_id", user.ID))
		}
		h.logger.Error("translate failed", fields...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "translation service error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"translatedText": translated})
}
