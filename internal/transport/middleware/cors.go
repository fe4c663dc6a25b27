package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser clients on other origins to reach the API. The
// timesheet editor is a separate frontend, so this is permissive by
// default.
func CORS(next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Trace-ID"},
		ExposedHeaders:   []string{"X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	})(next)
}
