/*
scheduler.go - Periodic autosave

PURPOSE:
  Periodically persists the record store so an unclean exit loses at most
  one interval of edits. The final save at shutdown is done by main.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Each tick calls Save; failures are logged and recorded, never fatal
  - LastRun/LastError expose the outcome of the latest save

CONFIGURATION:
  - Interval: How often to save (PAYROLL_AUTOSAVE, 0 disables)

USAGE:
  scheduler := NewAutosaveScheduler(save, 5*time.Minute, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: SaveData endpoint (manual save)
  - records/store/file.go: SaveFile
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AutosaveScheduler persists state on a fixed interval.
type AutosaveScheduler struct {
	Save     PersistFunc
	Interval time.Duration
	Logger   *zap.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	stateMu   sync.Mutex
	lastRun   time.Time
	lastError error
	runs      int
}

// NewAutosaveScheduler creates a new scheduler. A nil logger is replaced
// with a no-op one.
func NewAutosaveScheduler(save PersistFunc, interval time.Duration, logger *zap.Logger) *AutosaveScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutosaveScheduler{
		Save:     save,
		Interval: interval,
		Logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start begins the scheduler. It is a no-op when Interval is not positive
// or the scheduler is already running.
func (s *AutosaveScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Interval <= 0 || s.Save == nil {
		s.Logger.Info("Autosave disabled")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)

	go s.run()

	s.Logger.Info("Autosave started", zap.Duration("interval", s.Interval))
}

// Stop stops the scheduler and waits for an in-flight save.
func (s *AutosaveScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("Autosave stopped")
	}
}

func (s *AutosaveScheduler) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ticker.C:
			s.RunNow()
		case <-s.stop:
			return
		}
	}
}

// RunNow saves immediately and records the outcome.
func (s *AutosaveScheduler) RunNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.Save(ctx)

	s.stateMu.Lock()
	s.lastRun = time.Now()
	s.lastError = err
	s.runs++
	s.stateMu.Unlock()

	if err != nil {
		s.Logger.Error("Autosave failed", zap.Error(err))
		return err
	}
	s.Logger.Debug("Autosaved")
	return nil
}

// LastRun returns when the latest save finished and its error.
func (s *AutosaveScheduler) LastRun() (time.Time, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.lastRun, s.lastError
}

// Runs returns how many saves have been attempted.
func (s *AutosaveScheduler) Runs() int {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.runs
}

// GetNextRunTime returns when the next scheduled save will occur.
func (s *AutosaveScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(s.Interval)
}
