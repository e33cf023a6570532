package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rogomes75/ROG-Report-V9/internal/config"
	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository/sqlstore"
	"github.com/rogomes75/ROG-Report-V9/internal/router"
	"github.com/rogomes75/ROG-Report-V9/internal/service"
	"github.com/rogomes75/ROG-Report-V9/internal/utils"
)

func init() { utils.BcryptCost = bcrypt.MinCost }

// serve starts the real API over an in-memory store with one completed and
// one open report, and points the CLI at it.
func serve(t *testing.T) (config.Config, string) {
	t.Helper()
	db, err := sqlstore.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	st := sqlstore.New(db)
	t.Cleanup(st.Close)

	cfg := config.Config{
		Env:            "test",
		SessionSecret:  "s",
		TokenTTL:       time.Hour,
		Timezone:       "UTC",
		AutosaveDelay:  10 * time.Millisecond,
		RateLimit:      10000,
		AdminUsername:  "admin",
		AdminPassword:  "admin123",
		PDFAttribution: "test",
	}
	log := zerolog.Nop()
	clock := service.Clock{Loc: time.UTC}
	ctx := context.Background()
	auth := service.NewAuthService(st.Users, cfg.SessionSecret, cfg.TokenTTL, clock, log)
	if _, err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		t.Fatalf("seed: %v", err)
	}
	admin, _, _ := st.Users.GetByUsername(ctx, "admin")

	clients := service.NewClientService(st.Clients, st.Users, clock, log)
	c, _, err := clients.Create(ctx, "Smith Pool", "12 Palm Ave", nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	svc := service.NewReportService(st.Reports, st.Clients, clock, log)
	open, _ := svc.Create(ctx, *admin, service.CreateReportInput{ClientID: c.ID, Description: "Cloudy", Priority: "URGENT"})
	done, _ := svc.Create(ctx, *admin, service.CreateReportInput{ClientID: c.ID, Description: "Heater", Priority: "URGENT"})
	status := models.StatusCompleted
	total := 300.0
	if _, err := svc.Update(ctx, *admin, done.ID, models.ReportPatch{Status: &status, TotalCost: &total}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	h, auto := router.New(log, st, cfg)
	t.Cleanup(func() { _ = auto.Shutdown(context.Background()) })
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("POOL_API_URL", srv.URL)
	t.Setenv("POOL_USERNAME", "")
	t.Setenv("POOL_PASSWORD", "")
	return cfg, open.ID
}

func TestList(t *testing.T) {
	cfg, _ := serve(t)
	var out bytes.Buffer
	if err := run(context.Background(), cfg, zerolog.Nop(), []string{"list", "-scope", "completed"}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "Smith Pool") || !strings.Contains(s, "300.00") {
		t.Fatalf("output:\n%s", s)
	}
	if !strings.Contains(s, "1 reports") {
		t.Fatalf("completed scope leaked open reports:\n%s", s)
	}
	if err := run(context.Background(), cfg, zerolog.Nop(), []string{"list", "-scope", "nope"}, &out); err == nil {
		t.Fatalf("invalid scope accepted")
	}
}

func TestSetWritesThrough(t *testing.T) {
	cfg, openID := serve(t)
	var out bytes.Buffer
	err := run(context.Background(), cfg, zerolog.Nop(), []string{"set", "-id", openID, "-field", "parts_cost", "-value", "40"}, &out)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !strings.Contains(out.String(), "parts_cost = 40.00") || !strings.Contains(out.String(), "gross profit -40.00") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	if err := run(context.Background(), cfg, zerolog.Nop(), []string{"list", "-scope", "active"}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "-40.00") {
		t.Fatalf("update not persisted:\n%s", out.String())
	}
}

func TestExport(t *testing.T) {
	cfg, _ := serve(t)
	now := time.Now().UTC()
	from, to := now.AddDate(0, 0, -1).Format("2006-01-02"), now.AddDate(0, 0, 1).Format("2006-01-02")
	path := filepath.Join(t.TempDir(), "out.pdf")

	var out bytes.Buffer
	err := run(context.Background(), cfg, zerolog.Nop(), []string{"export", "-start", from, "-end", to, "-o", path}, &out)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("pdf not written: %v", err)
	}
	if !strings.Contains(out.String(), "1 pages") {
		t.Fatalf("output = %q", out.String())
	}

	err = run(context.Background(), cfg, zerolog.Nop(), []string{"export", "-start", "2001-01-01", "-end", "2001-01-02", "-o", path}, &out)
	if err == nil {
		t.Fatalf("empty range exported")
	}
}

func TestUnknownCommand(t *testing.T) {
	cfg, _ := serve(t)
	if err := run(context.Background(), cfg, zerolog.Nop(), []string{"frobnicate"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("unknown command accepted")
	}
}
