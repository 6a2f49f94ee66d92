package scheduler

import (
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// DefaultRepromptInterval is how often the location reminder fires.
const DefaultRepromptInterval = 20 * time.Second

// PromptTimer runs a single recurring job. Starting it while it is already
// active replaces the running job, so at most one job exists at any time.
type PromptTimer struct {
	mu        sync.Mutex
	scheduler *gocron.Scheduler
	job       *gocron.Job
	interval  time.Duration
	fire      func()
}

// NewPromptTimer creates a stopped timer that calls fire every interval once started.
func NewPromptTimer(interval time.Duration, fire func()) *PromptTimer {
	if interval <= 0 {
		interval = DefaultRepromptInterval
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	s.StartAsync()

	return &PromptTimer{
		scheduler: s,
		interval:  interval,
		fire:      fire,
	}
}

// Start schedules the job, cancelling any job that is already active.
// The first run happens one interval from now.
func (t *PromptTimer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	job, err := t.scheduler.Every(t.interval).WaitForSchedule().Do(t.fire)
	if err != nil {
		return err
	}
	t.job = job
	log.Printf("DEBUG: prompt timer started (every %s)", t.interval)
	return nil
}

// Stop cancels the active job, if any.
func (t *PromptTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *PromptTimer) stopLocked() {
	if t.job == nil {
		return
	}
	t.scheduler.RemoveByReference(t.job)
	t.job = nil
	log.Println("DEBUG: prompt timer cancelled")
}

// Active reports whether a job is scheduled.
func (t *PromptTimer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.job != nil
}

// Jobs returns how many jobs the underlying scheduler holds.
func (t *PromptTimer) Jobs() int {
	return t.scheduler.Len()
}

// Interval returns the configured period.
func (t *PromptTimer) Interval() time.Duration {
	return t.interval
}

// Close stops the scheduler for good.
func (t *PromptTimer) Close() {
	t.Stop()
	if t.scheduler != nil {
		t.scheduler.Stop()
	}
}
