package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas base. authMW
// protege todo lo que requiere sesión.
func NewRouter(
	logger *zap.Logger,
	userH *UserHandler,
	historyH *HistoryHandler,
	translateH *TranslateHandler,
	authMW gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", userH.Register)
	auth.POST("/login", userH.Login)
	auth.POST("/forgot-password", userH.ForgotPassword)
	auth.POST("/reset-password", userH.ResetPassword)

	users := api.Group("/users", authMW)
	users.GET("/me", userH.Me)
	users.PUT("/me/password", userH.ChangePassword)

	api.POST("/translate", authMW, translateH.Translate)

	history := api.Group("/history", authMW)
	history.GET("", historyH.List)
	history.POST("", historyH.Save)
	history.DELETE("", historyH.Clear)
	history.DELETE("/:id", historyH.Delete)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
