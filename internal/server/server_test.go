package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStore(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	rec := &JobRecord{
		ID:         "42",
		Status:     StatusQueued,
		Filename:   "solo.wav",
		Instrument: "alto",
		CreatedAt:  time.Now(),
	}

	t.Run("PutGet", func(t *testing.T) {
		if err := store.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := store.Get("42")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got == nil || got.Status != StatusQueued || got.Filename != "solo.wav" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		rec.Status = StatusDone
		rec.Transcript = `{"meta":{},"notes":[]}`
		if err := store.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, _ := store.Get("42")
		if got.Status != StatusDone || got.Transcript == "" {
			t.Errorf("update not applied: %+v", got)
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		got, err := store.Get("no-such-job")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("Prune", func(t *testing.T) {
		old := &JobRecord{ID: "old", Status: StatusDone, CreatedAt: time.Now().Add(-2 * time.Hour)}
		if err := store.Put(old); err != nil {
			t.Fatalf("Put: %v", err)
		}
		n, err := store.DeleteOlderThan(time.Now().Add(-time.Hour))
		if err != nil {
			t.Fatalf("DeleteOlderThan: %v", err)
		}
		if n != 1 {
			t.Errorf("pruned %d jobs, want 1", n)
		}
		if got, _ := store.Get("old"); got != nil {
			t.Error("pruned job still present")
		}
	})
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(Config{Port: 0, ScriptsDir: t.TempDir(), DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestJobManagerGetSnapshot(t *testing.T) {
	s := newTestServer(t)

	job, err := s.jobs.Create("solo.wav", "alto")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("CopyNotLivePointer", func(t *testing.T) {
		got := s.jobs.Get(job.ID)
		if got == job {
			t.Fatal("Get returned the tracked job pointer")
		}
		got.Status = StatusError
		got.Transcript = "scribble"

		again := s.jobs.Get(job.ID)
		if again.Status != StatusQueued || again.Transcript != "" {
			t.Errorf("mutating a snapshot leaked into the manager: %+v", again)
		}
	})

	// status polls race against Process's state transitions in normal
	// operation; the race detector flags this if Get ever hands out the
	// live pointer again
	t.Run("ConcurrentStatusPoll", func(t *testing.T) {
		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 100; i++ {
				s.jobs.setStatus(job, StatusProcessing, "working")
				s.jobs.setStatus(job, StatusDone, "")
			}
		}()
		for i := 0; i < 100; i++ {
			got := s.jobs.Get(job.ID)
			_ = got.Status
			_ = got.Error
			_ = got.Transcript
		}
		<-done
	})
}

func TestHandleStatus(t *testing.T) {
	s := newTestServer(t)

	t.Run("Unknown", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transcriptions/12345", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("Done", func(t *testing.T) {
		job, err := s.jobs.Create("solo.wav", "tenor")
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		job.Status = StatusDone
		job.Transcript = `{"meta":{"tempo":120,"key":"C major","meter":"4/4","instrument":"tenor"},"notes":[]}`
		if err := s.jobs.persist(job); err != nil {
			t.Fatalf("persist: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+job.ID, nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}

		var resp statusResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != StatusDone {
			t.Errorf("job status = %q, want done", resp.Status)
		}
		if len(resp.Transcript) == 0 {
			t.Error("done response missing transcript")
		}
	})
}

func TestHandleExport(t *testing.T) {
	s := newTestServer(t)

	job, err := s.jobs.Create("solo.wav", "alto")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	t.Run("NotFinished", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+job.ID+"/export/json", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", w.Code)
		}
	})

	job.Status = StatusDone
	job.Transcript = `{"meta":{"tempo":100},"notes":[]}`
	if err := s.jobs.persist(job); err != nil {
		t.Fatalf("persist: %v", err)
	}

	t.Run("JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+job.ID+"/export/json", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if w.Body.String() != job.Transcript {
			t.Errorf("body = %s", w.Body.String())
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+job.ID+"/export/docx", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("PrunedWorkFile", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/transcriptions/"+job.ID+"/export/midi", nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		if w.Code != http.StatusGone {
			t.Errorf("status = %d, want 410", w.Code)
		}
	})
}
