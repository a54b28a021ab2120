package job

import (
	"sync"
	"time"
)

// Stage is the position of an in-flight job.
type Stage string

const (
	// StageQueued means the job waits for a concurrency slot.
	StageQueued Stage = "queued"
	// StageRunning means the job is executing.
	StageRunning Stage = "running"
)

// ActiveJob is a snapshot of one in-flight job.
type ActiveJob struct {
	ProcessingID string
	GenerationID string
	Kind         Kind
	Stage        Stage
	ScheduledAt  time.Time
}

// Registry tracks jobs between scheduling and termination.
// Finished jobs are dropped; there is no history.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]ActiveJob
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]ActiveJob),
	}
}

// Add records a newly scheduled job as queued.
func (r *Registry) Add(processingID string, d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[processingID] = ActiveJob{
		ProcessingID: processingID,
		GenerationID: d.GenerationID,
		Kind:         d.Kind,
		Stage:        StageQueued,
		ScheduledAt:  time.Now(),
	}
}

// Start marks a job as running.
func (r *Registry) Start(processingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[processingID]; ok {
		j.Stage = StageRunning
		r.jobs[processingID] = j
	}
}

// Remove drops a finished job.
func (r *Registry) Remove(processingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, processingID)
}

// Counts returns the number of queued and running jobs.
func (r *Registry) Counts() (queued, running int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.jobs {
		if j.Stage == StageQueued {
			queued++
		} else {
			running++
		}
	}
	return queued, running
}

// List returns a snapshot of all in-flight jobs.
func (r *Registry) List() []ActiveJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]ActiveJob, 0, len(r.jobs))
	for _, j := range r.jobs {
		result = append(result, j)
	}
	return result
}
