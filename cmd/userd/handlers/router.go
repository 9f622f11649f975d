package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/FrancescoXX/userstack/internal/db"
	"github.com/FrancescoXX/userstack/internal/events"
	"github.com/FrancescoXX/userstack/internal/logging"
)

// NewRouter wires the user REST surface, the health check, and the
// optional change feed behind the CORS middleware.
func NewRouter(repo *db.Repository, feed *events.Hub, allowedOrigins []string) http.Handler {
	h := NewUserHandler(repo, feed)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users", h.ListUsers)
	mux.HandleFunc("POST /api/users", h.CreateUser)
	mux.HandleFunc("PUT /api/users/{id}", h.UpdateUser)
	mux.HandleFunc("DELETE /api/users/{id}", h.DeleteUser)
	mux.HandleFunc("GET /api/health", h.Health)
	if feed != nil {
		mux.Handle("GET /api/events", feed)
	}

	return CORS(allowedOrigins, requestLog(mux))
}

// requestLog logs every request with its correlation id. A missing
// X-Request-ID gets one assigned so store and server logs line up.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		start := time.Now()
		next.ServeHTTP(w, r)

		logging.Debug("request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	})
}
