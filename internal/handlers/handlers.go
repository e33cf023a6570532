package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/middleware"
	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/pdfreport"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

const maxJSONBody = 32 << 20 // photos and videos travel inline

// fail maps service errors onto status codes; anything unexpected is logged
// and reported as 500.
func fail(w http.ResponseWriter, log zerolog.Logger, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, pdfreport.ErrNoReports):
		status = http.StatusUnprocessableEntity
	default:
		log.Error().Err(err).Msg("request failed")
		utils.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	utils.Error(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// actor returns the authenticated user or writes 401.
func actor(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	u, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "authentication required")
	}
	return u, ok
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
