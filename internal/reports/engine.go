package reports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

// Store is the narrow read/write view of the reports backend.
type Store interface {
	ListReports(ctx context.Context) ([]models.ServiceReport, error)
	UpdateReport(ctx context.Context, id string, patch models.ReportPatch) (*models.ServiceReport, error)
}

var ErrUnknownReport = errors.New("report not in working set")

// Engine owns one view's working set: the reports of a scope keyed by id,
// plus the fetch order. Edits are applied locally first and persisted through
// a per-(report, field) debouncer.
type Engine struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
	deb   *Debouncer

	mu        sync.RWMutex
	scope     Scope
	byID      map[string]*models.ServiceReport
	order     []string
	confirmed map[Key]any    // last value known to be persisted, per dirty key
	latest    map[Key]uint64 // seq of the newest edit per dirty key
	seq       uint64
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithTimerFunc(f TimerFunc) EngineOption {
	return func(e *Engine) { e.deb.SetTimerFunc(f) }
}

func NewEngine(store Store, log zerolog.Logger, delay time.Duration, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		log:       log,
		now:       time.Now,
		scope:     ScopeAll,
		byID:      map[string]*models.ServiceReport{},
		confirmed: map[Key]any{},
		latest:    map[Key]uint64{},
	}
	e.deb = NewDebouncer(delay, e.persist, log)
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load fetches every report and keeps the requested side of the partition.
// On failure the current working set is left as it was.
func (e *Engine) Load(ctx context.Context, scope Scope) error {
	all, err := e.store.ListReports(ctx)
	if err != nil {
		e.log.Warn().Err(err).Str("scope", string(scope)).Msg("load reports failed; keeping previous set")
		return fmt.Errorf("load reports: %w", err)
	}
	set := InScope(all, scope)

	byID := make(map[string]*models.ServiceReport, len(set))
	order := make([]string, 0, len(set))
	for i := range set {
		r := set[i].Clone()
		byID[r.ID] = &r
		order = append(order, r.ID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// keep optimistic values the server has not seen yet
	for k := range e.confirmed {
		if r, ok := byID[k.ReportID]; ok {
			if old, ok := e.byID[k.ReportID]; ok {
				_ = SetField(r, k.Field, FieldValue(*old, k.Field))
			}
		}
	}
	e.scope, e.byID, e.order = scope, byID, order
	return nil
}

func (e *Engine) Scope() Scope {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scope
}

// Reports returns copies of the working set matching c, in fetch order.
func (e *Engine) Reports(c Criteria) []models.ServiceReport {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.ServiceReport, 0, len(e.order))
	for _, id := range e.order {
		r := e.byID[id]
		if c.empty() || c.Match(*r) {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (e *Engine) Views(c Criteria) []View {
	return DecorateAll(e.Reports(c), e.now())
}

func (e *Engine) Get(id string) (models.ServiceReport, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.byID[id]
	if !ok {
		return models.ServiceReport{}, false
	}
	return r.Clone(), true
}

// UpdateField writes v locally and schedules its persistence.
func (e *Engine) UpdateField(id string, f Field, v any) error {
	nv, err := f.Normalize(v)
	if err != nil {
		return err
	}
	key := Key{ReportID: id, Field: f}

	e.mu.Lock()
	r, ok := e.byID[id]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownReport, id)
	}
	if _, dirty := e.confirmed[key]; !dirty {
		e.confirmed[key] = FieldValue(*r, f)
	}
	if err := SetField(r, f, nv); err != nil {
		e.mu.Unlock()
		return err
	}
	e.seq++
	seq := e.seq
	e.latest[key] = seq
	e.mu.Unlock()

	return e.deb.Schedule(Edit{Key: key, Value: nv, Seq: seq})
}

// Dirty reports whether k has a local value the server has not confirmed.
func (e *Engine) Dirty(k Key) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.confirmed[k]
	return ok
}

func (e *Engine) persist(ctx context.Context, ed Edit) error {
	patch, err := PatchFor(ed.Field, ed.Value)
	if err == nil {
		_, err = e.store.UpdateReport(ctx, ed.ReportID, patch)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// A newer edit may be waiting for its timer or already flushing; it owns
	// the local value and will resend it.
	newer := e.latest[ed.Key] != ed.Seq
	if err != nil {
		if !newer {
			if r, ok := e.byID[ed.ReportID]; ok {
				_ = SetField(r, ed.Field, e.confirmed[ed.Key])
			}
			delete(e.confirmed, ed.Key)
			delete(e.latest, ed.Key)
		}
		return err
	}
	if newer {
		e.confirmed[ed.Key] = ed.Value
	} else {
		delete(e.confirmed, ed.Key)
		delete(e.latest, ed.Key)
	}
	return nil
}

// Flush persists every pending edit immediately.
func (e *Engine) Flush(ctx context.Context) error { return e.deb.Flush(ctx) }

// Close tears the view down: pending edits are dropped, not written.
func (e *Engine) Close() { e.deb.Stop() }
