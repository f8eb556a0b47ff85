package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/docaffix/internal/affix"
	"github.com/dgallion1/docaffix/internal/page"
	"github.com/dgallion1/docaffix/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleAffix splices an affix into a single uploaded page and returns it.
func (s *Server) handleAffix(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if !pipeline.IsPage(filename) {
		jsonError(w, fmt.Sprintf("not an article page: %s", filename), http.StatusBadRequest)
		return
	}

	start := time.Now()
	p, err := page.Parse(bytes.NewReader(data))
	if err != nil {
		s.orchestrator.Stats().Record(time.Since(start), pipeline.OutcomeFailed)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	opts := s.orchestrator.Options()
	res := affix.Apply(p, opts.Page, opts.Affix)
	s.orchestrator.Stats().Record(time.Since(start), outcomeOf(res))

	s.writePage(w, p, res)
}

// handlePreview renders an uploaded Markdown document into a page with its
// affix filled in.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".md" && ext != ".markdown" {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	opts := s.orchestrator.Options()
	p, err := page.FromMarkdown(data, title, opts.Page)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	res := affix.Apply(p, opts.Page, opts.Affix)
	s.writePage(w, p, res)
}

type batchRequest struct {
	Root string `json:"root"`
}

// handleBatch queues a job that processes every page below a directory.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	root := resolveRoot(s.cfg.PagesRoot, req.Root)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		jsonError(w, fmt.Sprintf("root is not a directory: %s", req.Root), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(root)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/affix/%s/status", job.ID),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// readUpload reads the multipart "file" field. It writes the error response
// itself and reports ok=false when the request is unusable.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", nil, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	data, err := readLimited(file, s.cfg.MaxUploadBytes)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return sanitizeFilename(header.Filename), data, true
}

func readLimited(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func (s *Server) writePage(w http.ResponseWriter, p *page.Page, res affix.Result) {
	var buf bytes.Buffer
	if err := p.Write(&buf); err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Affix-Headings", strconv.Itoa(res.Headings))
	h.Set("X-Affix-Items", strconv.Itoa(res.Items))
	h.Set("X-Affix-Conceptual", strconv.FormatBool(res.Conceptual))
	h.Set("X-Affix-Placeholder", strconv.FormatBool(res.Placeholder))
	w.Write(buf.Bytes())
}

func outcomeOf(res affix.Result) pipeline.Outcome {
	switch {
	case !res.Placeholder:
		return pipeline.OutcomeSkipped
	case res.Empty:
		return pipeline.OutcomeEmptied
	}
	return pipeline.OutcomeUpdated
}

// resolveRoot joins rel onto base without letting it climb above base.
func resolveRoot(base, rel string) string {
	return filepath.Join(base, filepath.Clean("/"+rel))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
