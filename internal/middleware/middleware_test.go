package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type lookup map[string]*models.User

func (l lookup) GetByID(_ context.Context, id string) (*models.User, error) { return l[id], nil }

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r.Context())
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(u.Username + ":" + u.Role))
	})
}

func TestWithAuth(t *testing.T) {
	cfg := config.Config{SessionSecret: "s"}
	users := lookup{"u1": {ID: "u1", Username: "maria", Role: models.RoleAdmin}}
	h := WithAuth(zerolog.Nop(), cfg, users)(echoUser())

	// role in token is stale; the stored account wins
	tok, _ := utils.SignJWT("s", "u1", "maria", models.RoleEmployee, time.Hour)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rr, req)
	if rr.Body.String() != "maria:admin" {
		t.Fatalf("body = %q", rr.Body.String())
	}

	gone, _ := utils.SignJWT("s", "u2", "old", models.RoleAdmin, time.Hour)
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: gone})
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("deleted user authenticated: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent || rr.Header().Get("Set-Cookie") == "" {
		t.Fatalf("bad token should clear cookie, got %d %q", rr.Code, rr.Header().Get("Set-Cookie"))
	}
}

func TestRequireRoles(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	cases := []struct {
		uid, role string
		want      int
	}{
		{"", "", http.StatusUnauthorized},
		{"u1", models.RoleEmployee, http.StatusForbidden},
		{"u1", models.RoleAdmin, http.StatusOK},
	}
	for _, tc := range cases {
		ctx := context.WithValue(context.Background(), CtxUserID, tc.uid)
		ctx = context.WithValue(ctx, CtxRole, tc.role)
		rr := httptest.NewRecorder()
		RequireAuth(RequireAdmin(ok)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))
		if rr.Code != tc.want {
			t.Fatalf("uid=%q role=%q: status %d, want %d", tc.uid, tc.role, rr.Code, tc.want)
		}
	}
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
}
