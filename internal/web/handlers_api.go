package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
)

// PreviewResponse is the body of POST /api/preview.
type PreviewResponse struct {
	File    string              `json:"file"`
	Columns []string            `json:"columns"`
	Rows    int                 `json:"rows"`
	Sample  []map[string]string `json:"sample"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string      `json:"status"`
	Core   core.Status `json:"core"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, HealthResponse{Status: "ok", Core: s.service.Status()})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Preview.HistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "VAL001",
			})
			return
		}
		limit = min(n, s.cfg.Preview.HistoryLimit)
	}

	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, runs)
}

// handleAPIPreview parses an uploaded file without touching any workspace.
func (s *Server) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	files, err := s.formFiles(w, r)
	if err == nil && len(files) == 0 {
		err = errNoFile
	}
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	ctx := withRequestMetadata(r, nil)
	table, err := s.service.Inspect(ctx, files[0])
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	resp := PreviewResponse{
		File:    files[0].Name(),
		Columns: table.Columns,
		Rows:    table.Len(),
		Sample:  make([]map[string]string, 0, s.service.SampleSize()),
	}
	for _, row := range table.Slice(0, s.service.SampleSize()) {
		resp.Sample = append(resp.Sample, row)
	}

	logging.FromContext(ctx).Info("api preview",
		"file", resp.File,
		"rows", resp.Rows,
		"columns", len(resp.Columns),
	)
	writeJSON(w, resp)
}

