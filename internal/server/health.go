package server

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler answers 200 when db responds to a ping and 503 otherwise.
func HealthHandler(db Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			RespondError(w, http.StatusServiceUnavailable, "Database unavailable.", map[string]string{"database": "down"})
			return
		}
		RespondSuccess(w, http.StatusOK, "OK", map[string]string{"database": "up"})
	})
}
