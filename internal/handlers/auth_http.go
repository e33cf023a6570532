package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/middleware"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type AuthHTTP struct {
	svc    *service.AuthService
	users  repository.UserRepository
	log    zerolog.Logger
	secure bool
}

func NewAuthHTTP(s *service.AuthService, users repository.UserRepository, log zerolog.Logger, secureCookie bool) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users, log: log, secure: secureCookie}
}

// POST /api/auth/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if !decode(w, r, &in) {
			return
		}

		token, u, err := h.svc.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			fail(w, h.log, err)
			return
		}

		// Browser clients can rely on the cookie; API clients use the bearer token.
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secure,
			Expires:  time.Now().Add(h.svc.TTL()),
		})

		utils.JSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"token_type":   "bearer",
			"user":         u,
		})
	}
}

// POST /api/auth/logout
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/auth/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetString(r.Context(), middleware.CtxUserID)
		if !ok || uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}
