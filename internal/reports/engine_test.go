package reports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	reports   []models.ServiceReport
	listErr   error
	updateErr error
	patches   []models.ReportPatch
}

func (s *fakeStore) ListReports(context.Context) ([]models.ServiceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]models.ServiceReport, len(s.reports))
	for i := range s.reports {
		out[i] = s.reports[i].Clone()
	}
	return out, nil
}

func (s *fakeStore) UpdateReport(_ context.Context, id string, p models.ReportPatch) (*models.ServiceReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, p)
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	for i := range s.reports {
		if s.reports[i].ID == id {
			p.Apply(&s.reports[i])
			r := s.reports[i].Clone()
			return &r, nil
		}
	}
	return nil, errors.New("not found")
}

func newTestEngine(t *testing.T, st *fakeStore) (*Engine, *fakeTimers) {
	t.Helper()
	ft := &fakeTimers{}
	e := NewEngine(st, zerolog.Nop(), time.Second,
		WithTimerFunc(ft.after),
		WithClock(func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }),
	)
	t.Cleanup(e.Close)
	return e, ft
}

func TestEngineLoadScopes(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, _ := newTestEngine(t, st)

	if err := e.Load(context.Background(), ScopeActive); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ids(e.Reports(Criteria{})); got != "135" {
		t.Fatalf("active = %q", got)
	}
	if err := e.Load(context.Background(), ScopeCompleted); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := ids(e.Reports(Criteria{})); got != "24" {
		t.Fatalf("completed = %q", got)
	}
	if e.Scope() != ScopeCompleted {
		t.Fatalf("scope = %s", e.Scope())
	}
}

func TestEngineLoadFailureKeepsSet(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, _ := newTestEngine(t, st)
	if err := e.Load(context.Background(), ScopeAll); err != nil {
		t.Fatalf("load: %v", err)
	}
	st.listErr = errors.New("network")
	if err := e.Load(context.Background(), ScopeActive); err == nil {
		t.Fatalf("expected error")
	}
	if got := ids(e.Reports(Criteria{})); got != "12345" {
		t.Fatalf("set changed after failed load: %q", got)
	}
	if e.Scope() != ScopeAll {
		t.Fatalf("scope changed after failed load")
	}
}

func TestEngineUpdateFieldDebounced(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, ft := newTestEngine(t, st)
	_ = e.Load(context.Background(), ScopeAll)

	for _, v := range []string{"a", "ab", "abc"} {
		if err := e.UpdateField("1", FieldAdminNotes, v); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	r, _ := e.Get("1")
	if r.AdminNotes != "abc" {
		t.Fatalf("local value = %q", r.AdminNotes)
	}
	if !e.Dirty(Key{"1", FieldAdminNotes}) {
		t.Fatalf("expected dirty before flush")
	}

	ft.fireAll()
	if len(st.patches) != 1 || st.patches[0].AdminNotes == nil || *st.patches[0].AdminNotes != "abc" {
		t.Fatalf("patches = %+v", st.patches)
	}
	if e.Dirty(Key{"1", FieldAdminNotes}) {
		t.Fatalf("still dirty after successful flush")
	}
}

func TestEngineCostUpdatesGrossProfit(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, ft := newTestEngine(t, st)
	_ = e.Load(context.Background(), ScopeAll)

	if err := e.UpdateField("2", FieldTotalCost, "300"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := e.UpdateField("2", FieldPartsCost, 120.25); err != nil {
		t.Fatalf("update: %v", err)
	}
	r, _ := e.Get("2")
	if r.GrossProfit == nil || *r.GrossProfit != 179.75 {
		t.Fatalf("gross profit = %v", r.GrossProfit)
	}
	ft.fireAll()
	if len(st.patches) != 2 {
		t.Fatalf("expected one patch per field, got %d", len(st.patches))
	}
}

func TestEngineFailedFlushReverts(t *testing.T) {
	st := &fakeStore{reports: sample(), updateErr: errors.New("500")}
	e, ft := newTestEngine(t, st)
	_ = e.Load(context.Background(), ScopeAll)
	before, _ := e.Get("3")

	if err := e.UpdateField("3", FieldDescription, "rewritten"); err != nil {
		t.Fatalf("update: %v", err)
	}
	ft.fireAll()

	after, _ := e.Get("3")
	if after.Description != before.Description {
		t.Fatalf("description = %q, want reverted %q", after.Description, before.Description)
	}
	if e.Dirty(Key{"3", FieldDescription}) {
		t.Fatalf("key still dirty after revert")
	}
}

// heldStore fails its first update, but only once the test releases it.
type heldStore struct {
	*fakeStore
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (h *heldStore) UpdateReport(ctx context.Context, id string, p models.ReportPatch) (*models.ServiceReport, error) {
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.entered)
		<-h.release
		return nil, errors.New("503")
	}
	return h.fakeStore.UpdateReport(ctx, id, p)
}

func TestEngineFailedFlushKeepsNewerInFlightEdit(t *testing.T) {
	st := &heldStore{fakeStore: &fakeStore{reports: sample()}, entered: make(chan struct{}), release: make(chan struct{})}
	ft := &fakeTimers{}
	e := NewEngine(st, zerolog.Nop(), time.Second, WithTimerFunc(ft.after))
	t.Cleanup(e.Close)
	_ = e.Load(context.Background(), ScopeAll)
	key := Key{"1", FieldAdminNotes}

	_ = e.UpdateField("1", FieldAdminNotes, "first")
	firstDone := make(chan struct{})
	go func() { ft.fireAll(); close(firstDone) }()
	<-st.entered

	// the newer edit fires while the first flush still holds the key
	_ = e.UpdateField("1", FieldAdminNotes, "second")
	secondDone := make(chan struct{})
	go func() { ft.fireAll(); close(secondDone) }()

	close(st.release)
	<-firstDone
	<-secondDone

	local, _ := e.Get("1")
	if local.AdminNotes != "second" {
		t.Fatalf("local = %q, want second", local.AdminNotes)
	}
	stored, _ := st.fakeStore.ListReports(context.Background())
	if stored[0].AdminNotes != "second" {
		t.Fatalf("server = %q, want second", stored[0].AdminNotes)
	}
	if e.Dirty(key) {
		t.Fatalf("key dirty after the newest edit was saved")
	}
}

func TestEngineReloadKeepsOptimisticValue(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, _ := newTestEngine(t, st)
	_ = e.Load(context.Background(), ScopeAll)

	_ = e.UpdateField("4", FieldEmployeeNotes, "typing")
	if err := e.Load(context.Background(), ScopeAll); err != nil {
		t.Fatalf("reload: %v", err)
	}
	r, _ := e.Get("4")
	if r.EmployeeNotes != "typing" {
		t.Fatalf("reload lost unsaved edit: %q", r.EmployeeNotes)
	}
}

func TestEngineCloseDropsPending(t *testing.T) {
	st := &fakeStore{reports: sample()}
	ft := &fakeTimers{}
	e := NewEngine(st, zerolog.Nop(), time.Second, WithTimerFunc(ft.after))
	_ = e.Load(context.Background(), ScopeAll)
	_ = e.UpdateField("1", FieldAdminNotes, "never sent")

	e.Close()
	ft.fireAll()
	if len(st.patches) != 0 {
		t.Fatalf("closed engine wrote %d patches", len(st.patches))
	}
	if err := e.UpdateField("1", FieldAdminNotes, "x"); !errors.Is(err, ErrDebouncerStopped) {
		t.Fatalf("update after close: %v", err)
	}
}

func TestEngineFlushAndUnknown(t *testing.T) {
	st := &fakeStore{reports: sample()}
	e, _ := newTestEngine(t, st)
	_ = e.Load(context.Background(), ScopeAll)

	if err := e.UpdateField("missing", FieldDescription, "x"); !errors.Is(err, ErrUnknownReport) {
		t.Fatalf("unknown id: %v", err)
	}
	if err := e.UpdateField("1", FieldTotalCost, "abc"); err == nil {
		t.Fatalf("expected invalid amount error")
	}
	_ = e.UpdateField("5", FieldDescription, "now")
	if err := e.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if len(st.patches) != 1 {
		t.Fatalf("patches = %d", len(st.patches))
	}
}
