package reports

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rogomes75/ROG-Report-V9/internal/models"
)

const DefaultDelay = time.Second

// Key identifies one debounced slot: a single field of a single report.
type Key struct {
	ReportID string
	Field    Field
}

// Edit is the latest value written to a slot, with the user who wrote it.
// Seq orders edits of one slot; the Engine stamps it.
type Edit struct {
	Key
	Value any
	Actor models.User
	Seq   uint64
}

// FlushFunc persists one coalesced edit.
type FlushFunc func(ctx context.Context, e Edit) error

// TimerFunc schedules fn after d and returns a stop function, like time.AfterFunc.
type TimerFunc func(d time.Duration, fn func()) (stop func() bool)

func realTimer(d time.Duration, fn func()) func() bool {
	return time.AfterFunc(d, fn).Stop
}

var ErrDebouncerStopped = errors.New("debouncer stopped")

type pendingEdit struct {
	edit Edit
	seq  uint64
	stop func() bool
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Debouncer coalesces bursts of edits per Key: every Schedule restarts the
// quiet window for its key, and only the last value is flushed. Flushes for
// the same key never overlap; different keys flush independently.
type Debouncer struct {
	delay time.Duration
	flush FlushFunc
	log   zerolog.Logger
	after TimerFunc

	mu      sync.Mutex
	pending map[Key]*pendingEdit
	locks   map[Key]*keyLock
	seq     uint64
	stopped bool
	wg      sync.WaitGroup
}

func NewDebouncer(delay time.Duration, flush FlushFunc, log zerolog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		delay:   delay,
		flush:   flush,
		log:     log,
		after:   realTimer,
		pending: map[Key]*pendingEdit{},
		locks:   map[Key]*keyLock{},
	}
}

// SetTimerFunc swaps the scheduler; used by tests to fire timers by hand.
func (d *Debouncer) SetTimerFunc(f TimerFunc) {
	d.mu.Lock()
	d.after = f
	d.mu.Unlock()
}

// Schedule records e as the pending value for its key, cancelling any
// earlier timer for the same key.
func (d *Debouncer) Schedule(e Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrDebouncerStopped
	}
	if p, ok := d.pending[e.Key]; ok {
		p.stop()
	}
	d.seq++
	seq := d.seq
	key := e.Key
	p := &pendingEdit{edit: e, seq: seq}
	p.stop = d.after(d.delay, func() { d.fire(key, seq) })
	d.pending[key] = p
	return nil
}

func (d *Debouncer) fire(key Key, seq uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	_ = d.run(context.Background(), p.edit)
}

func (d *Debouncer) run(ctx context.Context, e Edit) error {
	kl := d.acquire(e.Key)
	defer d.release(e.Key, kl)

	if err := d.flush(ctx, e); err != nil {
		d.log.Warn().Err(err).
			Str("report_id", e.ReportID).
			Str("field", string(e.Field)).
			Msg("debounced flush failed")
		return err
	}
	d.log.Debug().Str("report_id", e.ReportID).Str("field", string(e.Field)).Msg("debounced flush")
	return nil
}

func (d *Debouncer) acquire(k Key) *keyLock {
	d.mu.Lock()
	kl, ok := d.locks[k]
	if !ok {
		kl = &keyLock{}
		d.locks[k] = kl
	}
	kl.refs++
	d.mu.Unlock()
	kl.mu.Lock()
	return kl
}

func (d *Debouncer) release(k Key, kl *keyLock) {
	kl.mu.Unlock()
	d.mu.Lock()
	kl.refs--
	if kl.refs == 0 {
		delete(d.locks, k)
	}
	d.mu.Unlock()
}

// Pending returns the waiting edits for one report.
func (d *Debouncer) Pending(reportID string) []Edit {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Edit
	for k, p := range d.pending {
		if k.ReportID == reportID {
			out = append(out, p.edit)
		}
	}
	return out
}

func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush cancels every timer and persists all pending edits now.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	edits := make([]Edit, 0, len(d.pending))
	for k, p := range d.pending {
		p.stop()
		edits = append(edits, p.edit)
		delete(d.pending, k)
	}
	d.mu.Unlock()

	var errs []error
	for _, e := range edits {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := d.run(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop drops all pending edits without persisting them and waits for
// in-flight flushes. Later Schedule calls fail with ErrDebouncerStopped.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for k, p := range d.pending {
		p.stop()
		delete(d.pending, k)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Overlay applies pending edits onto r so reads see optimistic values.
func Overlay(r *models.ServiceReport, edits []Edit) {
	for _, e := range edits {
		_ = SetField(r, e.Field, e.Value)
	}
}
