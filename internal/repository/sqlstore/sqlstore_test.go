package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
	"github.com/rogomes75/ROG-Report-V9/internal/repository"
)

func setupStore(t *testing.T) repository.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := OpenSQLite(dsn, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	st := New(db)
	t.Cleanup(st.Close)
	return st
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)

	u := &models.User{ID: "u1", Username: "maria", Role: models.RoleEmployee, CreatedAt: time.Now()}
	if err := st.Users.Create(ctx, u, "hash"); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, hash, err := st.Users.GetByUsername(ctx, "maria")
	if err != nil || got == nil {
		t.Fatalf("get by username: %v %v", got, err)
	}
	if hash != "hash" || got.ID != "u1" || got.Role != models.RoleEmployee {
		t.Fatalf("unexpected user %+v hash=%q", got, hash)
	}
	if missing, _, err := st.Users.GetByUsername(ctx, "nobody"); err != nil || missing != nil {
		t.Fatalf("missing user should be nil, nil; got %v %v", missing, err)
	}
	dup := &models.User{ID: "u2", Username: "maria", Role: models.RoleAdmin}
	if err := st.Users.Create(ctx, dup, "x"); err == nil {
		t.Fatalf("duplicate username accepted")
	}
	ok, err := st.Users.Delete(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, _ := st.Users.Delete(ctx, "u1"); ok {
		t.Fatalf("second delete reported a row")
	}
}

func TestClientRepoListScoped(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	e1 := "e1"
	cs := []models.Client{
		{ID: "c1", Name: "Zeta Pool", EmployeeID: &e1},
		{ID: "c2", Name: "Alpha Pool"},
		{ID: "c3", Name: "Mid Pool", EmployeeID: &e1},
	}
	if err := st.Clients.CreateMany(ctx, cs); err != nil {
		t.Fatalf("create many: %v", err)
	}
	all, err := st.Clients.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Alpha Pool" || all[2].Name != "Zeta Pool" {
		t.Fatalf("not sorted by name: %+v", all)
	}
	mine, _ := st.Clients.List(ctx, "e1")
	if len(mine) != 2 || mine[0].ID != "c3" {
		t.Fatalf("employee scope: %+v", mine)
	}
	if n, _ := st.Clients.CountByName(ctx, "Mid Pool"); n != 1 {
		t.Fatalf("count = %d", n)
	}
	if c, err := st.Clients.Get(ctx, "nope"); c != nil || err != nil {
		t.Fatalf("missing client: %v %v", c, err)
	}
}

func TestReportRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	total := 150.0

	for i, id := range []string{"r1", "r2", "r3"} {
		r := &models.ServiceReport{
			ID:          id,
			ClientName:  "Oak",
			EmployeeID:  "e1",
			Status:      models.StatusReported,
			Photos:      []string{"data:image/png;base64,AAAA"},
			RequestDate: base,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		if id == "r2" {
			r.EmployeeID = "e2"
			r.TotalCost = &total
		}
		if err := st.Reports.Create(ctx, r); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list, err := st.Reports.List(ctx, repository.ReportFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "r3" || list[2].ID != "r1" {
		t.Fatalf("expected newest first, got %v %v %v", list[0].ID, list[1].ID, list[2].ID)
	}
	own, _ := st.Reports.List(ctx, repository.ReportFilter{EmployeeID: "e2"})
	if len(own) != 1 || own[0].ID != "r2" || own[0].TotalCost == nil || *own[0].TotalCost != 150 {
		t.Fatalf("employee filter: %+v", own)
	}

	before, _ := st.Reports.Get(ctx, "r2")
	got, err := st.Reports.Modify(ctx, "r2", func(r *models.ServiceReport) ([]string, error) {
		r.TotalCost = nil
		r.Status = models.StatusCompleted
		r.Description = "not listed, not written"
		r.ModificationHistory = append(r.ModificationHistory, models.Modification{ModifiedBy: "admin", Changes: []string{"status"}})
		return []string{"total_cost", "status", "modification_history"}, nil
	})
	if err != nil || got == nil {
		t.Fatalf("modify: %v", err)
	}
	again, _ := st.Reports.Get(ctx, "r2")
	if again.TotalCost != nil {
		t.Fatalf("modify did not clear total_cost")
	}
	if again.Description != before.Description {
		t.Fatalf("unlisted column written: %q", again.Description)
	}
	if r, err := st.Reports.Modify(ctx, "nope", func(*models.ServiceReport) ([]string, error) {
		t.Fatalf("mutator called for a missing row")
		return nil, nil
	}); r != nil || err != nil {
		t.Fatalf("missing row: %v %v", r, err)
	}
	if len(again.ModificationHistory) != 1 || again.ModificationHistory[0].Changes[0] != "status" {
		t.Fatalf("history not persisted: %+v", again.ModificationHistory)
	}
	if len(again.Photos) != 1 {
		t.Fatalf("photos not persisted")
	}
	done, _ := st.Reports.List(ctx, repository.ReportFilter{Status: models.StatusCompleted})
	if len(done) != 1 {
		t.Fatalf("status filter = %d", len(done))
	}

	if ok, err := st.Reports.Delete(ctx, "r2"); !ok || err != nil {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if r, err := st.Reports.Get(ctx, "r2"); r != nil || err != nil {
		t.Fatalf("deleted report still readable")
	}
}
