package http

import (
	"net/http"

	"github.com/go-chi/cors"
)

// WithCORS envuelve el router para que los preflight lleguen antes que gin,
// que no tiene rutas OPTIONS.
func WithCORS(next http.Handler, origins []string) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
