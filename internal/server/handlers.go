package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
)

const maxUploadSize = 100 * 1024 * 1024 // 100MB

// statusResponse is the poll payload. Transcript is included inline once
// the job is done.
type statusResponse struct {
	ID         string          `json:"id"`
	Status     JobStatus       `json:"status"`
	Filename   string          `json:"filename,omitempty"`
	Error      string          `json:"error,omitempty"`
	Transcript json.RawMessage `json:"transcript,omitempty"`
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleCreate accepts a multipart audio upload plus an instrument hint
// and queues a transcription job.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "file too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing audio file")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".wav" && ext != ".mp3" {
		s.writeError(w, http.StatusBadRequest, "unsupported format: please upload a WAV or MP3 file")
		return
	}

	instrument := r.FormValue("instrumentHint")
	if instrument == "" {
		instrument = "auto"
	}

	job, err := s.jobs.Create(header.Filename, instrument)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to create job")
		return
	}

	inputPath := filepath.Join(job.WorkDir, "input"+ext)
	dst, err := os.Create(inputPath)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		s.writeError(w, http.StatusInternalServerError, "failed to save file")
		return
	}
	dst.Close()

	go s.jobs.Process(job, inputPath)

	w.Header().Set("Location", fmt.Sprintf("/transcriptions/%s", job.ID))
	s.writeJSON(w, http.StatusAccepted, map[string]string{"id": job.ID})
}

// handleStatus reports job state; clients poll until done or error
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.Get(chi.URLParam(r, "id"))
	if job == nil {
		s.writeError(w, http.StatusNotFound, "unknown transcription id")
		return
	}

	resp := statusResponse{
		ID:       job.ID,
		Status:   job.Status,
		Filename: job.Filename,
		Error:    job.Error,
	}
	if job.Status == StatusDone && job.Transcript != "" {
		resp.Transcript = json.RawMessage(job.Transcript)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleExport serves a finished job's output in the requested format
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	job := s.jobs.Get(chi.URLParam(r, "id"))
	if job == nil {
		s.writeError(w, http.StatusNotFound, "unknown transcription id")
		return
	}
	if job.Status != StatusDone {
		s.writeError(w, http.StatusConflict, "transcription not finished")
		return
	}

	switch chi.URLParam(r, "format") {
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(job.Transcript))
	case "musicxml":
		s.serveWorkFile(w, r, job, "score.musicxml", "application/vnd.recordare.musicxml+xml")
	case "midi":
		s.serveWorkFile(w, r, job, "score.mid", "audio/midi")
	default:
		s.writeError(w, http.StatusNotFound, "unknown export format")
	}
}

// serveWorkFile serves a file from the job's work directory; transcripts
// outlive their work dirs, so a pruned file is a 410, not a crash.
func (s *Server) serveWorkFile(w http.ResponseWriter, r *http.Request, job *Job, name, contentType string) {
	path := filepath.Join(job.WorkDir, name)
	if _, err := os.Stat(path); err != nil {
		s.writeError(w, http.StatusGone, "export no longer available")
		return
	}
	w.Header().Set("Content-Type", contentType)
	http.ServeFile(w, r, path)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
