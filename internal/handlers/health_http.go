package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

// Health reports 503 when the database does not answer a ping within 2s.
func Health(ping func(context.Context) error, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Warn().Err(err).Msg("health: database ping failed")
				utils.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
				return
			}
		}
		utils.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}
