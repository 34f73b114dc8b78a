package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-intake/internal/patient"
	"github.com/WailSalutem-Health-Care/patient-intake/internal/telemetry"
)

const opLoad = "load"

var ErrClosed = errors.New("coordinator is closed")

// Searcher runs the patient query behind Load
type Searcher interface {
	Search(ctx context.Context, query string) ([]patient.Patient, error)
}

// Presenter receives task results. Calls go through the dispatcher, so a
// GUI can marshal them onto its own goroutine. SetBusy may be delivered while
// the coordinator holds a lock and must not call back into it synchronously.
type Presenter interface {
	SetBusy(busy bool)
	ShowPatients(query string, patients []patient.Patient)
	ShowSuccess(op string)
	ShowFailure(op string, f Failure)
}

// State of the load slot
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

type Option func(*Coordinator)

func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithDispatcher sets how presenter calls are delivered. The default calls
// the presenter directly from the worker goroutine.
func WithDispatcher(dispatch func(func())) Option {
	return func(c *Coordinator) { c.dispatch = dispatch }
}

// WithContext sets the context every task runs with
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.ctx = ctx }
}

// Coordinator runs service calls off the presentation goroutine.
//
// At most one load runs at a time. A load requested while another runs is
// parked in a single pending slot, replacing whatever waited there, and
// starts as soon as the running one finishes. Loads are never cancelled.
// Mutations run immediately and reload the last query when they succeed.
type Coordinator struct {
	search   Searcher
	ui       Presenter
	log      *zap.Logger
	metrics  *telemetry.Metrics
	dispatch func(func())
	ctx      context.Context

	mu        sync.Mutex
	pending   chan string
	loading   bool
	loadState State
	lastQuery *string
	closed    bool

	busyMu sync.Mutex
	busy   int

	wg sync.WaitGroup
}

func New(search Searcher, ui Presenter, opts ...Option) *Coordinator {
	c := &Coordinator{
		search:   search,
		ui:       ui,
		log:      zap.NewNop(),
		dispatch: func(fn func()) { fn() },
		ctx:      context.Background(),
		pending:  make(chan string, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load requests the patient list for query
func (c *Coordinator) Load(query string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	c.lastQuery = &query

	if c.loading {
		select {
		case dropped := <-c.pending:
			c.log.Debug("pending load replaced", zap.String("dropped_query", dropped), zap.String("query", query))
		default:
		}
		c.pending <- query
		return nil
	}

	c.loading = true
	c.wg.Add(1)
	c.begin()
	go c.runLoads(query)
	return nil
}

// Reload repeats the most recent load, if there was one
func (c *Coordinator) Reload() error {
	c.mu.Lock()
	last := c.lastQuery
	c.mu.Unlock()

	if last == nil {
		return nil
	}
	return c.Load(*last)
}

func (c *Coordinator) LoadState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadState
}

func (c *Coordinator) runLoads(query string) {
	defer c.wg.Done()
	defer c.end()

	for {
		c.setLoadState(StateRunning)

		var patients []patient.Patient
		err := c.run(opLoad, func(ctx context.Context) error {
			var err error
			patients, err = c.search.Search(ctx, query)
			return err
		})

		if err != nil {
			c.setLoadState(StateFailed)
			c.fail(opLoad, err)
		} else {
			c.setLoadState(StateSucceeded)
			q := query
			c.dispatch(func() { c.ui.ShowPatients(q, patients) })
		}

		c.mu.Lock()
		select {
		case next := <-c.pending:
			c.mu.Unlock()
			query = next
		default:
			c.loading = false
			c.loadState = StateIdle
			c.mu.Unlock()
			return
		}
	}
}

func (c *Coordinator) setLoadState(s State) {
	c.mu.Lock()
	c.loadState = s
	c.mu.Unlock()
}

// Mutate runs a create, update or delete. On success the presenter is told
// and the last load is repeated so the list reflects the change.
func (c *Coordinator) Mutate(op string, fn func(ctx context.Context) error) *Future[struct{}] {
	return submit(c, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, func(struct{}) {
		c.dispatch(func() { c.ui.ShowSuccess(op) })
		if err := c.Reload(); err != nil {
			c.log.Debug("reload after mutation skipped", zap.String("operation", op), zap.Error(err))
		}
	})
}

// Run executes fn in the background with the busy indicator held. A failure
// is classified and shown; the value is left to the caller.
func Run[T any](c *Coordinator, op string, fn func(ctx context.Context) (T, error)) *Future[T] {
	return submit(c, op, fn, nil)
}

func submit[T any](c *Coordinator, op string, fn func(ctx context.Context) (T, error), onSuccess func(T)) *Future[T] {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return failedFuture[T](ErrClosed)
	}
	c.wg.Add(1)
	c.mu.Unlock()

	c.begin()
	return Submit(func() (T, error) {
		defer c.wg.Done()
		defer c.end()

		var value T
		err := c.run(op, func(ctx context.Context) error {
			var err error
			value, err = fn(ctx)
			return err
		})
		if err != nil {
			c.fail(op, err)
			var zero T
			return zero, err
		}
		if onSuccess != nil {
			onSuccess(value)
		}
		return value, nil
	})
}

// run executes one task with logging and metrics
func (c *Coordinator) run(op string, fn func(ctx context.Context) error) error {
	log := c.log.With(zap.String("task_id", uuid.NewString()), zap.String("operation", op))
	start := time.Now()

	err := safely(c.ctx, fn)

	duration := time.Since(start)
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
		log.Warn("task failed", zap.Duration("duration", duration), zap.Error(err))
	} else {
		log.Debug("task finished", zap.Duration("duration", duration))
	}
	c.metrics.RecordTask(c.ctx, op, outcome, float64(duration.Microseconds())/1000)
	return err
}

func safely(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (c *Coordinator) fail(op string, err error) {
	f := Classify(err)
	c.dispatch(func() { c.ui.ShowFailure(op, f) })
}

// begin and end bracket every task; the presenter sees one SetBusy(true)
// when the first task starts and one SetBusy(false) when the last ends
func (c *Coordinator) begin() {
	c.busyMu.Lock()
	defer c.busyMu.Unlock()

	c.busy++
	if c.busy == 1 {
		c.dispatch(func() { c.ui.SetBusy(true) })
	}
}

func (c *Coordinator) end() {
	c.busyMu.Lock()
	defer c.busyMu.Unlock()

	c.busy--
	if c.busy == 0 {
		c.dispatch(func() { c.ui.SetBusy(false) })
	}
}

// Busy reports whether any task is running or pending
func (c *Coordinator) Busy() bool {
	c.busyMu.Lock()
	defer c.busyMu.Unlock()
	return c.busy > 0
}

// Wait blocks until every started task, including replayed loads, is done
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// Close rejects new work and waits for running tasks to finish
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
}
