package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

const maxUpload = 10 << 20

type ClientHTTP struct {
	svc *service.ClientService
	log zerolog.Logger
}

func NewClientHTTP(s *service.ClientService, log zerolog.Logger) *ClientHTTP {
	return &ClientHTTP{svc: s, log: log}
}

// GET /api/clients
// Admins see every client; employees see the clients assigned to them.
func (h *ClientHTTP) List() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		me, ok := actor(w, r)
		if !ok {
			return
		}
		items, err := h.svc.List(r.Context(), me)
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// GET /api/clients/all
func (h *ClientHTTP) All() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := h.svc.All(r.Context())
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, items)
	}
}

// POST /api/clients {name, address, employee_id}
func (h *ClientHTTP) Create() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name       string  `json:"name"`
			Address    string  `json:"address"`
			EmployeeID *string `json:"employee_id"`
		}
		if !decode(w, r, &in) {
			return
		}
		c, warning, err := h.svc.Create(r.Context(), in.Name, in.Address, optional(in.EmployeeID))
		if err != nil {
			fail(w, h.log, err)
			return
		}
		if warning != "" {
			w.Header().Set("X-Warning", warning)
		}
		utils.JSON(w, http.StatusCreated, c)
	}
}

// DELETE /api/clients/{id}
func (h *ClientHTTP) Delete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]string{"message": "Client deleted successfully"})
	}
}

// POST /api/clients/import-excel (multipart: file, employee_id)
func (h *ClientHTTP) ImportExcel() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
		if err := r.ParseMultipartForm(maxUpload); err != nil {
			utils.Error(w, http.StatusBadRequest, "expected multipart form with a file field")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "missing file")
			return
		}
		defer file.Close()

		emp := r.FormValue("employee_id")
		n, err := h.svc.Import(r.Context(), file, optional(&emp))
		if err != nil {
			fail(w, h.log, err)
			return
		}
		utils.JSON(w, http.StatusOK, map[string]any{
			"message": fmt.Sprintf("Successfully imported %d clients", n),
			"count":   n,
		})
	}
}
