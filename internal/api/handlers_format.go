package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"docweave/internal/pagetext"
	"docweave/internal/pipeline"

	"github.com/go-chi/chi/v5"
)

// handleFormat accepts a document (multipart "file", or a raw "text" field of
// page-marked OCR text) and queues a formatting job.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	sourceText, filename, err := s.readSource(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(sourceText) == "" {
		jsonError(w, "document contains no text", http.StatusBadRequest)
		return
	}

	maxTokens := s.cfg.MaxChunkTokens
	if v := r.FormValue("max_tokens"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxTokens = n
		}
	}

	job := pipeline.NewJob(filename, r.FormValue("title"), sourceText, maxTokens)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": fmt.Sprintf("/api/format/%s/status", job.ID),
	})
}

// readSource pulls the source text out of the request: an uploaded file
// converted via pagetext, or the raw "text" form field.
func (s *Server) readSource(r *http.Request) (text, filename string, err error) {
	file, header, ferr := r.FormFile("file")
	if ferr != nil {
		raw := r.FormValue("text")
		if raw == "" {
			return "", "", fmt.Errorf("either a file upload or a text field is required")
		}
		return raw, "inline.txt", nil
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !pagetext.IsSupportedExtension(filename) {
		return "", "", fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	limited := io.LimitReader(file, s.cfg.MaxUploadBytes+1)
	text, err = pagetext.FromFile(limited, filename)
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	if int64(len(text)) > s.cfg.MaxUploadBytes {
		return "", "", fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return text, filename, nil
}

func (s *Server) handleFormatStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

// handleFormatResult returns the merged document for a finished job. The
// document exists for partial runs too; only the success ratio differs.
func (s *Server) handleFormatResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	switch job.Snapshot().Status {
	case pipeline.StatusCompleted, pipeline.StatusPartial:
	default:
		jsonError(w, fmt.Sprintf("job not finished (status %s)", job.Snapshot().Status), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, job.Result())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
