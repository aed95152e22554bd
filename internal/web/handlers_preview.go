package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/JonMunkholm/csvpreview/internal/core"
	"github.com/JonMunkholm/csvpreview/internal/logging"
	"github.com/JonMunkholm/csvpreview/internal/preview"
)

// multipartOverhead is allowed on top of the file size limit for the rest
// of the form.
const multipartOverhead = 1 << 20

// uploadedFile adapts a multipart part to preview.SelectedFile.
type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) Name() string                 { return f.header.Filename }
func (f uploadedFile) Size() int64                  { return f.header.Size }
func (f uploadedFile) Open() (io.ReadCloser, error) { return f.header.Open() }

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := Page(ws.Snapshot(s.service.SampleSize())).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, ws.Snapshot(s.service.SampleSize()))
}

// handleFile is the file-input change event. A form without a file is an
// empty selection and changes nothing.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	ws, err := s.workspace(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	ctx := withRequestMetadata(r, ws)
	logger := logging.FromContext(ctx)

	files, err := s.formFiles(w, r)
	if err != nil {
		ws.Banner.Notify(err)
		logger.Warn("preview form rejected", "error", err)
		s.patchWorkspace(datastar.NewSSE(w, r), ws)
		return
	}

	res, err := s.service.Preview(ctx, ws, files)
	if res.Skipped || res.Superseded {
		// Leave the page as it is; a newer request owns the UI.
		datastar.NewSSE(w, r)
		return
	}
	if err != nil {
		logger.Info("preview failed", "error", err, "code", core.MapError(err).Code)
	}
	s.patchWorkspace(datastar.NewSSE(w, r), ws)
}

// formFiles reads the "csv" part of a multipart form. A missing part is an
// empty selection.
func (s *Server) formFiles(w http.ResponseWriter, r *http.Request) ([]preview.SelectedFile, error) {
	limit := s.cfg.Upload.MaxFileSize
	if limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &preview.ReadError{Name: "upload", Err: preview.ErrFileTooLarge}
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, &preview.ReadError{Name: "upload", Err: err}
	}

	headers := r.MultipartForm.File["csv"]
	files := make([]preview.SelectedFile, 0, len(headers))
	for _, h := range headers {
		files = append(files, uploadedFile{header: h})
	}
	return files, nil
}

func (s *Server) handleSlide(w http.ResponseWriter, r *http.Request) {
	var signals previewSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ws, err := s.workspace(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if _, _, err := ws.Slide(signals.Lo, signals.Hi); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	snap := ws.Snapshot(s.service.SampleSize())
	sse := datastar.NewSSE(w, r)
	s.patch(sse, RangeFields(snap), Recipients(snap))
	if err := sse.MarshalAndPatchSignals(signalsOf(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var signals previewSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ws, err := s.workspace(w, r)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := ws.SetEmailKey(signals.EmailKey); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	snap := ws.Snapshot(s.service.SampleSize())
	s.patch(datastar.NewSSE(w, r), Recipients(snap))
}

// patchWorkspace sends every fragment and the signals, so the page matches
// the workspace whatever the pipeline did.
func (s *Server) patchWorkspace(sse *datastar.ServerSentEventGenerator, ws *core.Workspace) {
	snap := ws.Snapshot(s.service.SampleSize())
	s.patch(sse,
		ErrorAlert(snap.Error),
		FileStatus(snap),
		ColumnSelect(snap),
		RangeSlider(snap),
		RangeFields(snap),
		Recipients(snap),
	)
	if err := sse.MarshalAndPatchSignals(signalsOf(snap)); err != nil {
		_ = sse.ConsoleError(err)
	}
}

func (s *Server) patch(sse *datastar.ServerSentEventGenerator, fragments ...templ.Component) {
	for _, f := range fragments {
		if err := sse.PatchElementTempl(f); err != nil {
			_ = sse.ConsoleError(err)
			return
		}
	}
}
