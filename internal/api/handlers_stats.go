package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/dgallion1/docaffix/internal/pipeline"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"pages":       s.orchestrator.Stats().Snapshot(),
	})
}

// handleListPages lists the pages a batch job on root would process.
func (s *Server) handleListPages(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("root")
	root := resolveRoot(s.cfg.PagesRoot, rel)

	pages, err := pipeline.Discover(root)
	if err != nil {
		jsonError(w, "failed to list pages: "+err.Error(), http.StatusBadRequest)
		return
	}

	out := make([]string, 0, len(pages))
	for _, p := range pages {
		if rp, err := filepath.Rel(root, p); err == nil {
			out = append(out, filepath.ToSlash(rp))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"root": rel, "pages": out})
}
