package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type UserHTTP struct {
	svc *service.UserService
	log zerolog.Logger
}

func NewUserHTTP(s *service.UserService, log zerolog.Logger) *UserHTTP {
	return &UserHTTP{svc: s, log: log}
}

// GET /api/users
func (h *UserHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := h.svc.List(r.Context())
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, users)
	}
}

// POST /api/users {username, password, role}
func (h *UserHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if !decode(w, r, &in) {
			return
		}
		u, err := h.svc.Create(r.Context(), in.Username, in.Password, in.Role)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusCreated, u)
	}
}

// DELETE /api/users/{id}
func (h *UserHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		if err := h.svc.Delete(r.Context(), me, chi.URLParam(r, "id")); err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
	}
}
