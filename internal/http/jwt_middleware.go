package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"translation-api/internal/domain"
	"translation-api/internal/service"
)

const authUserKey = "auth_user"

// TokenVerifier valida un bearer token y devuelve el id del usuario.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder resuelve el id del token a un usuario vigente.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (domain.User, error)
}

// JWTAuthMiddleware protege rutas que requieren un usuario autenticado. Todas
// las fallas del token responden el mismo 401.
func JWTAuthMiddleware(tokens TokenVerifier, users UserFinder, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if tokens == nil || users == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, logger, service.ErrTokenMissing)
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			unauthorized(c, logger, err)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				unauthorized(c, logger, err)
				return
			}
			logger.Error("auth user lookup failed", zap.Error(err), zap.String("user_id", userID))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server error"})
			return
		}

		c.Set(authUserKey, user)
		c.Request = c.Request.WithContext(service.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

// GetAuthUser obtiene el usuario autenticado desde el contexto de gin.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(c *gin.Context, logger *zap.Logger, reason error) {
	logger.Debug("request not authorized", zap.Error(reason), zap.String("path", c.Request.URL.Path))
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
}
