// Package scheduler runs keyed one-shot jobs (deferred matching, unfreeze).
//
// At most one job is live per id. Scheduling an id that is already live
// supersedes the earlier job. A job is removed from the live set before its
// callback runs, so a callback may reschedule its own id.
package scheduler

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Saifkhan77806/LoveTown/internal/clock"
)

// Job describes a live job.
type Job struct {
	ID     string    `json:"id"`
	FireAt time.Time `json:"fireAt"`
}

type entry struct {
	Job
	callback func()
	timer    clock.Timer
}

type Scheduler struct {
	clock  clock.Clock
	logger *slog.Logger

	mu     sync.Mutex
	jobs   map[string]*entry
	closed bool
}

func New(clk clock.Clock, logger *slog.Logger) *Scheduler {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{clock: clk, logger: logger, jobs: make(map[string]*entry)}
}

// Schedule arranges for cb to run once at fireAt. A fireAt in the past runs
// the job as soon as possible. It returns false for an empty id, a nil
// callback, or after Shutdown.
func (s *Scheduler) Schedule(id string, fireAt time.Time, cb func()) bool {
	if id == "" || cb == nil {
		return false
	}

	e := &entry{Job: Job{ID: id, FireAt: fireAt}, callback: cb}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	prev := s.jobs[id]
	s.jobs[id] = e
	s.mu.Unlock()

	if prev != nil {
		s.stop(prev)
		s.logger.Debug("job superseded", "job", id)
	}

	// AfterFunc may run the callback before returning, so the lock is not held
	t := s.clock.AfterFunc(fireAt.Sub(s.clock.Now()), func() { s.fire(e) })

	s.mu.Lock()
	if s.jobs[id] == e {
		e.timer = t
	}
	s.mu.Unlock()

	s.logger.Debug("job scheduled", "job", id, "fire_at", fireAt)
	return true
}

// Cancel removes a live job. Unknown or already fired ids return false.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	e, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()

	if ok {
		s.stop(e)
		s.logger.Debug("job cancelled", "job", id)
	}
	return ok
}

// List returns the ids of live jobs, sorted.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Jobs returns the live jobs ordered by fire time, then id.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, e := range s.jobs {
		jobs = append(jobs, e.Job)
	}
	s.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		if jobs[i].FireAt.Equal(jobs[j].FireAt) {
			return jobs[i].ID < jobs[j].ID
		}
		return jobs[i].FireAt.Before(jobs[j].FireAt)
	})
	return jobs
}

// Shutdown stops every pending job. Later Schedule calls return false.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	s.closed = true
	pending := s.jobs
	s.jobs = make(map[string]*entry)
	s.mu.Unlock()

	for _, e := range pending {
		s.stop(e)
	}
	s.logger.Info("scheduler stopped", "dropped_jobs", len(pending))
}

func (s *Scheduler) fire(e *entry) {
	s.mu.Lock()
	if s.jobs[e.ID] != e {
		// cancelled or superseded after the timer was armed
		s.mu.Unlock()
		return
	}
	delete(s.jobs, e.ID)
	s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", e.ID, "panic", r)
		}
	}()
	s.logger.Debug("job fired", "job", e.ID)
	e.callback()
}

func (s *Scheduler) stop(e *entry) {
	s.mu.Lock()
	t := e.timer
	s.mu.Unlock()
	if t != nil {
		t.Stop()
	}
}
