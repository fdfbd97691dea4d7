package core

import (
	"context"
	"errors"
	"math"
	"slices"

	"github.com/rs/zerolog"
)

const (
	DefaultSpeed = 2.0
	MinSpeed     = 0.001
)

// Simulator is a single printer fed by a FIFO wait queue. The clock only
// moves through Advance and RunToCompletion, one whole second per tick.
//
// A Simulator is not safe for concurrent use.
type Simulator struct {
	store  Store
	logger zerolog.Logger

	clock  int
	speed  float64
	nextID int64

	waiting   []Job
	busy      bool
	current   Job
	remaining int
	done      []Job
}

type Option func(*Simulator)

func WithSpeed(secondsPerPage float64) Option {
	return func(s *Simulator) {
		s.SetSpeed(secondsPerPage)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) {
		s.logger = logger
	}
}

func NewSimulator(store Store, opts ...Option) *Simulator {
	if store == nil {
		store = nopStore{}
	}

	s := &Simulator{
		store:  store,
		logger: zerolog.Nop(),
		speed:  DefaultSpeed,
		nextID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit appends a job to the tail of the wait queue. On a persistence
// failure the job is still queued and its id is returned with the error.
func (s *Simulator) Submit(user, doc string, pages int) (int64, error) {
	if pages <= 0 {
		return 0, invalidArgument("page count must be positive, got %d", pages)
	}

	job := Job{
		ID:         s.nextID,
		User:       user,
		Doc:        doc,
		Pages:      pages,
		SubmitTime: s.clock,
		StartTime:  Unset,
		FinishTime: Unset,
	}
	s.nextID++
	s.waiting = append(s.waiting, job)

	s.logger.Debug().
		Int64("job_id", job.ID).
		Int("pages", pages).
		Int("clock", s.clock).
		Msg("job submitted")

	return job.ID, s.saveWaiting()
}

// Cancel removes a waiting job. Jobs that are running, done or unknown
// report false and nothing is written.
func (s *Simulator) Cancel(id int64) (bool, error) {
	idx := slices.IndexFunc(s.waiting, func(j Job) bool { return j.ID == id })
	if idx < 0 {
		return false, nil
	}
	s.waiting = slices.Delete(s.waiting, idx, idx+1)

	s.logger.Debug().Int64("job_id", id).Msg("job cancelled")

	return true, s.saveWaiting()
}

// SetSpeed sets the printing cost in seconds per page. Non-positive values
// are clamped to MinSpeed. The job already printing keeps its countdown.
func (s *Simulator) SetSpeed(secondsPerPage float64) {
	if !(secondsPerPage > 0) {
		secondsPerPage = MinSpeed
	}
	s.speed = secondsPerPage
}

// Advance runs steps ticks in order. ctx is checked between ticks, so an
// interrupted call always stops on a tick boundary.
func (s *Simulator) Advance(ctx context.Context, steps int) error {
	if steps <= 0 {
		return invalidArgument("step count must be positive, got %d", steps)
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunToCompletion ticks until the printer is idle and the queue is empty.
func (s *Simulator) RunToCompletion(ctx context.Context) error {
	for s.busy || len(s.waiting) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.tick(); err != nil {
			return err
		}
	}
	return nil
}

// tick applies one second of simulated time. All in-memory changes are made
// before any projection is written.
func (s *Simulator) tick() error {
	dispatched := false
	if !s.busy {
		if len(s.waiting) == 0 {
			s.clock++
			return nil
		}
		s.dispatch()
		dispatched = true
	}

	s.remaining--
	s.clock++

	finished := false
	if s.remaining <= 0 {
		s.complete()
		finished = true
	}

	var errs []error
	if dispatched {
		errs = append(errs, s.saveWaiting())
	}
	// heartbeat: running is rewritten on every busy tick so the file tracks
	// the remaining seconds.
	errs = append(errs, s.saveRunning())
	if finished {
		errs = append(errs, s.saveDone())
	}
	return errors.Join(errs...)
}

func (s *Simulator) dispatch() {
	s.current = s.waiting[0]
	s.waiting = slices.Delete(s.waiting, 0, 1)
	s.current.StartTime = s.clock
	s.remaining = s.printSeconds(s.current.Pages)
	s.busy = true

	s.logger.Debug().
		Int64("job_id", s.current.ID).
		Str("user", s.current.User).
		Str("doc", s.current.Doc).
		Int("pages", s.current.Pages).
		Int("clock", s.clock).
		Int("remaining", s.remaining).
		Msg("job started")
}

func (s *Simulator) complete() {
	s.current.FinishTime = s.clock
	s.done = append(s.done, s.current)
	s.busy = false
	s.remaining = 0

	s.logger.Debug().
		Int64("job_id", s.current.ID).
		Int("wait", s.current.WaitTime()).
		Int("duration", s.current.Duration()).
		Int("clock", s.clock).
		Msg("job completed")

	s.current = Job{}
}

// printSeconds rounds up so that no job finishes early.
func (s *Simulator) printSeconds(pages int) int {
	return int(math.Ceil(float64(pages) * s.speed))
}

func (s *Simulator) Clock() int {
	return s.clock
}

func (s *Simulator) Speed() float64 {
	return s.speed
}

func (s *Simulator) Busy() bool {
	return s.busy
}

// NextID is the id the next submission will get.
func (s *Simulator) NextID() int64 {
	return s.nextID
}

// Current returns the printing job and its remaining seconds. ok is false
// when the printer is idle.
func (s *Simulator) Current() (job Job, remaining int, ok bool) {
	if !s.busy {
		return Job{}, 0, false
	}
	return s.current, s.remaining, true
}

func (s *Simulator) QueueLen() int {
	return len(s.waiting)
}

// Waiting returns a copy of the wait queue in FIFO order.
func (s *Simulator) Waiting() []Job {
	return slices.Clone(s.waiting)
}

// Done returns a copy of the completed jobs in completion order.
func (s *Simulator) Done() []Job {
	return slices.Clone(s.done)
}

func (s *Simulator) Stats() QueueStats {
	stats := QueueStats{Done: len(s.done)}
	if stats.Done == 0 {
		return stats
	}

	var sumWait, sumDuration int
	for _, j := range s.done {
		sumWait += j.WaitTime()
		sumDuration += j.Duration()
	}
	stats.MeanWait = float64(sumWait) / float64(stats.Done)
	stats.MeanDuration = float64(sumDuration) / float64(stats.Done)
	return stats
}

// Lookup finds a job by id. Ids that were issued but are nowhere any more
// were cancelled.
func (s *Simulator) Lookup(id int64) (Job, JobStatus, bool) {
	if s.busy && s.current.ID == id {
		return s.current, JobStatusRunning, true
	}
	for _, j := range s.waiting {
		if j.ID == id {
			return j, JobStatusWaiting, true
		}
	}
	for _, j := range s.done {
		if j.ID == id {
			return j, JobStatusDone, true
		}
	}
	if id > 0 && id < s.nextID {
		return Job{ID: id}, JobStatusCancelled, true
	}
	return Job{}, "", false
}

// SaveAll writes all three projections.
func (s *Simulator) SaveAll() error {
	return errors.Join(s.saveWaiting(), s.saveRunning(), s.saveDone())
}

func (s *Simulator) saveWaiting() error {
	return s.persist(ResourceWaiting, s.store.SaveWaiting(s.Waiting()))
}

func (s *Simulator) saveRunning() error {
	if !s.busy {
		return s.persist(ResourceRunning, s.store.SaveRunning(nil, 0))
	}
	job := s.current
	return s.persist(ResourceRunning, s.store.SaveRunning(&job, s.remaining))
}

func (s *Simulator) saveDone() error {
	return s.persist(ResourceDone, s.store.SaveDone(s.Done()))
}

func (s *Simulator) persist(resource Resource, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Error().Err(err).Str("resource", string(resource)).Int("clock", s.clock).Msg("failed to persist jobs")
	return &PersistenceError{Resource: resource, Err: err}
}

type nopStore struct{}

func (nopStore) SaveWaiting([]Job) error { return nil }

func (nopStore) SaveRunning(*Job, int) error { return nil }

func (nopStore) SaveDone([]Job) error { return nil }
