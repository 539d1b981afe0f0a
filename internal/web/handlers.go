package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/salesops/crm-import/internal/core"
	"github.com/salesops/crm-import/internal/logging"
)

// readCSVBody extracts CSV text from the request: either a multipart form
// with a "file" field, or the raw request body. Bytes are transcoded to
// UTF-8 (Shift_JIS uploads included) before parsing.
func (s *Server) readCSVBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := r.FormFile("file")
		if err != nil {
			if isBodyTooLarge(err) {
				writeTooLarge(w, maxSize)
				return "", false
			}
			writeError(w, http.StatusBadRequest, "no file provided")
			return "", false
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			if isBodyTooLarge(err) {
				writeTooLarge(w, maxSize)
				return "", false
			}
			writeError(w, http.StatusBadRequest, "failed to read file")
			return "", false
		}
		return core.DecodeText(data), true
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			writeTooLarge(w, maxSize)
			return "", false
		}
		writeError(w, http.StatusBadRequest, "failed to read file")
		return "", false
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "no file provided")
		return "", false
	}
	return core.DecodeText(data), true
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeTooLarge(w http.ResponseWriter, maxSize int64) {
	writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %dMB limit", maxSize/(1024*1024)))
}

// validateResponse is the body of POST /api/imports/validate.
type validateResponse struct {
	Valid  bool                   `json:"valid"`
	Rows   int                    `json:"rows"`
	Errors []core.ValidationError `json:"errors"`
}

// handleValidate runs the pre-submission validation report without
// submitting anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readCSVBody(w, r)
	if !ok {
		return
	}

	rows, errs := s.service.Validate(text)
	if errs == nil {
		errs = []core.ValidationError{}
	}
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:  len(errs) == 0,
		Rows:   len(rows),
		Errors: errs,
	})
}

// handleValidationErrorsCSV returns the validation report as a downloadable
// CSV so the operator can fix the source file.
func (s *Server) handleValidationErrorsCSV(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readCSVBody(w, r)
	if !ok {
		return
	}

	_, errs := s.service.Validate(text)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="validation_errors.csv"`)
	_, _ = io.WriteString(w, core.ValidationErrorsCSV(errs))
}

// startImportResponse is the body of POST /api/imports on acceptance.
type startImportResponse struct {
	ImportID string `json:"importId"`
}

// handleStartImport validates the upload and starts a background import
// session. Validation errors block the whole batch and are returned with
// 422; nothing is submitted.
func (s *Server) handleStartImport(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readCSVBody(w, r)
	if !ok {
		return
	}

	sessionID, errs, err := s.service.StartImport(text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(errs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, validateResponse{
			Valid:  false,
			Errors: errs,
		})
		return
	}

	logging.FromContext(r.Context()).Info("import started", "session_id", sessionID)
	writeJSON(w, http.StatusAccepted, startImportResponse{ImportID: sessionID})
}

// handleProgress streams import progress via Server-Sent Events.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing import ID")
		return
	}

	progressCh, err := s.service.SubscribeProgress(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				fmt.Fprintf(w, "event: complete\ndata: {}\n\n")
				flusher.Flush()
				return
			}

			writeSSE(w, "progress", progress)
			flusher.Flush()

		case <-r.Context().Done():
			// Client disconnected; the import itself keeps running.
			return
		}
	}
}

// resultResponse is the body of GET /api/imports/{sessionID}/result.
type resultResponse struct {
	Result   *core.ImportResult   `json:"result"`
	Sections []core.ResultSection `json:"sections"`
}

// handleResult returns the final categorized result, blocking until the
// session completes. Fatal sessions get the generic failure notice instead
// of a partial result.
func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "missing import ID")
		return
	}

	result, err := s.service.GetResult(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, core.ErrImportFailed) {
			writeError(w, http.StatusInternalServerError, core.FatalNotice)
			return
		}
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		Result:   result,
		Sections: result.Sections(),
	})
}

// handleDownloadTemplate serves the CSV import template.
func (s *Server) handleDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="company_import_template.csv"`)
	_, _ = io.WriteString(w, core.TemplateCSV())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
