package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "uid"
	CtxRole     ctxKey = "role"
	CtxUsername ctxKey = "username"
)

const SessionCookie = "session"

// UserLookup resolves the account behind a token so deleted users and role
// changes take effect before the token expires.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

func WithAuth(log zerolog.Logger, cfg config.Config, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Read JWT from Authorization: Bearer or cookie "session"
			var tok string
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimPrefix(h, "Bearer ")
			} else if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			}

			if tok == "" {
				next.ServeHTTP(w, r) // unauthenticated; handlers can decide
				return
			}

			claims, err := utils.ParseJWT(cfg.SessionSecret, tok)
			if err != nil {
				// clear broken/expired cookie so it stops being sent
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			uid, role, name := claims.UserID, claims.Role, claims.Username
			if users != nil {
				u, err := users.GetByID(r.Context(), uid)
				if err != nil {
					log.Error().Err(err).Str("uid", uid).Msg("auth: user lookup failed")
					utils.Error(w, http.StatusInternalServerError, "internal error")
					return
				}
				if u == nil {
					next.ServeHTTP(w, r)
					return
				}
				role, name = u.Role, u.Username
			}

			ctx := context.WithValue(r.Context(), CtxUserID, uid)
			ctx = context.WithValue(ctx, CtxRole, role)
			ctx = context.WithValue(ctx, CtxUsername, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser rebuilds the authenticated user from the request context.
func CurrentUser(ctx context.Context) (models.User, bool) {
	uid, ok := utils.GetString(ctx, CtxUserID)
	if !ok || uid == "" {
		return models.User{}, false
	}
	role, _ := utils.GetString(ctx, CtxRole)
	name, _ := utils.GetString(ctx, CtxUsername)
	return models.User{ID: uid, Username: name, Role: role}, true
}
