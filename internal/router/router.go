package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/handlers"
	"github.com/rogomes75/ROG-Report-V9/internal/middleware"
	"github.com/rogomes75/ROG-Report-V9/internal/pdfreport"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
)

// New wires services and handlers over store. The returned Autosaver must be
// shut down after the HTTP server so pending field edits reach the database.
func New(log zerolog.Logger, store repository.Store, cfg config.Config) (http.Handler, *handlers.Autosaver) {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Total-Count", "X-Warning", "X-Skipped-Images", "X-Page-Count"},
		AllowCredentials: true,
	}))
	rate := cfg.RateLimit
	if rate <= 0 {
		rate = 200
	}
	r.Use(httprate.LimitByIP(rate, time.Minute))
	r.Use(middleware.WithAuth(log, cfg, store.Users))

	// Health
	r.Get("/healthz", handlers.Health(store.Ping, log))

	// Services + handlers
	clock := service.Clock{Loc: cfg.Location()}
	authSvc := service.NewAuthService(store.Users, cfg.SessionSecret, cfg.TokenTTL, clock, log)
	userSvc := service.NewUserService(store.Users, clock)
	clientSvc := service.NewClientService(store.Clients, store.Users, clock, log)
	reportSvc := service.NewReportService(store.Reports, store.Clients, clock, log)

	auto := handlers.NewAutosaver(reportSvc, cfg.AutosaveDelay, log)
	gen := pdfreport.NewGenerator(log, cfg.PDFAttribution)

	ah := handlers.NewAuthHTTP(authSvc, store.Users, log, cfg.Env != "dev")
	uh := handlers.NewUserHTTP(userSvc, log)
	ch := handlers.NewClientHTTP(clientSvc, log)
	rh := handlers.NewReportsHTTP(reportSvc, auto, gen, cfg.Location(), log)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", ah.Login())
			r.Post("/logout", ah.Logout())
			r.With(middleware.RequireAuth).Get("/me", ah.Me())
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth, middleware.RequireAdmin)
			r.Get("/", uh.List())
			r.Post("/", uh.Create())
			r.Delete("/{id}", uh.Delete())
		})

		r.Route("/clients", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", ch.List())
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/all", ch.All())
				r.Post("/", ch.Create())
				r.Post("/import-excel", ch.ImportExcel())
				r.Delete("/{id}", ch.Delete())
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", rh.List())
			r.Post("/", rh.Create())
			r.Get("/summary", rh.Summary())
			r.With(middleware.RequireAdmin).Get("/export.pdf", rh.ExportPDF())
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", rh.Get())
				r.Put("/", rh.Update())
				r.Patch("/autosave", rh.Autosave())
				r.With(middleware.RequireAdmin).Delete("/", rh.Delete())
			})
		})
	})

	return r, auto
}
