package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MoeCondones/Transcription-Tool/internal/pipeline"
)

// JobStatus follows the upload/poll protocol: clients poll until they see
// done or error.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusDone       JobStatus = "done"
	StatusError      JobStatus = "error"
)

// jobTTL is how long finished jobs and their work directories stick around
const jobTTL = 30 * time.Minute

// Job is an in-flight transcription request
type Job struct {
	ID         string
	Status     JobStatus
	Filename   string
	Instrument string
	WorkDir    string
	Error      string
	Transcript string // transcript JSON once done
	CreatedAt  time.Time
}

// JobManager runs transcription jobs and tracks their state, mirroring it
// into the store so polls survive a restart.
type JobManager struct {
	mu         sync.RWMutex
	jobs       map[string]*Job
	store      *Store
	scriptsDir string
	logger     *slog.Logger
}

// NewJobManager creates a new job manager
func NewJobManager(scriptsDir string, store *Store, logger *slog.Logger) *JobManager {
	return &JobManager{
		jobs:       make(map[string]*Job),
		store:      store,
		scriptsDir: scriptsDir,
		logger:     logger,
	}
}

// Create registers a new queued job with its own work directory
func (m *JobManager) Create(filename, instrument string) (*Job, error) {
	workDir, err := os.MkdirTemp("", "saxnotes-job-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	job := &Job{
		ID:         fmt.Sprintf("%d", time.Now().UnixNano()),
		Status:     StatusQueued,
		Filename:   filename,
		Instrument: instrument,
		WorkDir:    workDir,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	if err := m.persist(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get retrieves a job by ID, falling back to the store for jobs from a
// previous process lifetime. The returned Job is a snapshot: Process keeps
// mutating the tracked job under the manager's lock, so live pointers must
// never escape to handlers.
func (m *JobManager) Get(id string) *Job {
	m.mu.RLock()
	if job, ok := m.jobs[id]; ok {
		snapshot := *job
		m.mu.RUnlock()
		return &snapshot
	}
	m.mu.RUnlock()

	rec, err := m.store.Get(id)
	if err != nil {
		m.logger.Error("job lookup", slog.Any("error", err))
		return nil
	}
	if rec == nil {
		return nil
	}
	return &Job{
		ID:         rec.ID,
		Status:     rec.Status,
		Filename:   rec.Filename,
		Instrument: rec.Instrument,
		WorkDir:    rec.WorkDir,
		Error:      rec.Error,
		Transcript: rec.Transcript,
		CreatedAt:  rec.CreatedAt,
	}
}

// Process runs the transcription pipeline for a job. Meant to be called
// in its own goroutine; state transitions land in the store.
func (m *JobManager) Process(job *Job, inputPath string) {
	defer func() {
		time.AfterFunc(jobTTL, func() {
			os.RemoveAll(job.WorkDir)
			m.mu.Lock()
			delete(m.jobs, job.ID)
			m.mu.Unlock()
			if _, err := m.store.DeleteOlderThan(time.Now().Add(-jobTTL)); err != nil {
				m.logger.Error("prune jobs", slog.Any("error", err))
			}
		})
	}()

	m.setStatus(job, StatusProcessing, "")

	orch := pipeline.NewOrchestrator(m.scriptsDir, io.Discard, false)
	cfg := pipeline.DefaultConfig()
	cfg.InputPath = inputPath
	cfg.Instrument = job.Instrument
	cfg.JSONPath = job.WorkDir + "/transcript.json"
	cfg.MusicXMLPath = job.WorkDir + "/score.musicxml"
	cfg.MIDIPath = job.WorkDir + "/score.mid"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	t, err := orch.Run(ctx, cfg)
	if err != nil {
		m.logger.Error("job failed", slog.String("id", job.ID), slog.Any("error", err))
		m.setStatus(job, StatusError, err.Error())
		return
	}

	data, err := os.ReadFile(cfg.JSONPath)
	if err != nil {
		m.setStatus(job, StatusError, fmt.Sprintf("read transcript: %v", err))
		return
	}

	m.mu.Lock()
	job.Transcript = string(data)
	m.mu.Unlock()
	m.setStatus(job, StatusDone, "")

	m.logger.Info("job done",
		slog.String("id", job.ID),
		slog.Int("notes", len(t.Notes)),
		slog.String("instrument", t.Meta.Instrument))
}

func (m *JobManager) setStatus(job *Job, status JobStatus, errMsg string) {
	m.mu.Lock()
	job.Status = status
	job.Error = errMsg
	m.mu.Unlock()

	if err := m.persist(job); err != nil {
		m.logger.Error("persist job", slog.String("id", job.ID), slog.Any("error", err))
	}
}

func (m *JobManager) persist(job *Job) error {
	m.mu.RLock()
	rec := JobRecord{
		ID:         job.ID,
		Status:     job.Status,
		Filename:   job.Filename,
		Instrument: job.Instrument,
		Error:      job.Error,
		Transcript: job.Transcript,
		WorkDir:    job.WorkDir,
		CreatedAt:  job.CreatedAt,
	}
	m.mu.RUnlock()
	return m.store.Put(&rec)
}
