package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/database"
	"github.com/rogomes75/ROG-Report-V9/internal/router"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/pkg/logger"
)

func main() {
	// config + logger
	cfg := config.Load()
	l := logger.New(cfg.Env)

	// db
	store, err := database.Open(context.Background(), cfg, l)
	if err != nil {
		l.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("db connect failed")
	}
	defer store.Close()

	// seed admin
	auth := service.NewAuthService(store.Users, cfg.SessionSecret, cfg.TokenTTL, service.Clock{Loc: cfg.Location()}, l)
	created, err := auth.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		l.Fatal().Err(err).Msg("seed admin failed")
	}
	if created {
		l.Info().Str("username", cfg.AdminUsername).Msg("admin user created")
	}

	// http
	r, autosave := router.New(l, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second, // pdf export
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		l.Info().Str("addr", srv.Addr).Str("tz", cfg.Location().String()).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	if err := autosave.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("pending autosaves not written")
	}
	l.Info().Msg("shutdown complete")
}
