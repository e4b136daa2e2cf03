package web

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/sheetguard/internal/core"
	"github.com/JonMunkholm/sheetguard/internal/gridsource"
	"github.com/JonMunkholm/sheetguard/internal/logging"
	"github.com/JonMunkholm/sheetguard/internal/validation"
	"github.com/JonMunkholm/sheetguard/internal/web/views"
)

const (
	// multipartMemory is the part of a multipart form kept in memory; the
	// rest spills to temporary files.
	multipartMemory = 32 << 20

	// multipartOverhead allows for form boundaries and fields around the file.
	multipartOverhead = 1 << 20

	// maxExportBody bounds the error list posted for CSV export.
	maxExportBody = 64 << 20
)

// readUpload extracts the "file" part of a multipart request, plus the
// optional "sheet" field for workbooks. The returned cleanup closes the
// file and removes temporary parts.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (core.Upload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Analysis.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return core.Upload{}, nil, fmt.Errorf("%w: %v", gridsource.ErrFileTooLarge, err)
		}
		return core.Upload{}, nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		r.MultipartForm.RemoveAll()
		return core.Upload{}, nil, fmt.Errorf("%w: %v", core.ErrNoFile, err)
	}

	cleanup := func() {
		file.Close()
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.FromContext(r.Context()).Warn("remove multipart files", "error", err)
		}
	}
	up := core.Upload{
		Name:  header.Filename,
		Size:  header.Size,
		Body:  file,
		Sheet: r.FormValue("sheet"),
	}
	return up, cleanup, nil
}

// handleAnalyze validates an uploaded file against a profile. A file that
// cannot be read is still a 200 with success false in the body.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	up, cleanup, err := s.readUpload(w, r)
	if err != nil {
		fail(w, r, err)
		return
	}
	defer cleanup()

	result, err := s.service.Analyze(withClient(r), chi.URLParam(r, "profileID"), up)
	if err != nil {
		fail(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.ResultSummary(result).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render result", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// exportRequest is the body of an export call: the errors of a result and,
// optionally, the analysed file name used to name the download.
type exportRequest struct {
	FileName string                   `json:"fileName"`
	Errors   []validation.ErrorRecord `json:"errors"`
}

// handleExport turns posted error records into a CSV download. lang=pt
// switches the header row to Portuguese.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, maxExportBody, &req); err != nil {
		fail(w, r, err)
		return
	}

	headers := validation.DefaultCSVHeaders
	if strings.EqualFold(r.URL.Query().Get("lang"), "pt") {
		headers = validation.PortugueseCSVHeaders
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, exportName(req.FileName)))
	if err := validation.WriteCSV(w, req.Errors, headers); err != nil {
		logging.FromContext(r.Context()).Error("write csv export", "error", err)
	}
}

// exportName derives the download name from the analysed file's name.
func exportName(fileName string) string {
	base := filepath.Base(fileName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "validation-errors.csv"
	}
	return stem + "-errors.csv"
}

// handleHistory lists recent analyses as JSON, or as a list fragment for HTMX.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := views.HistoryList(entries).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render history", "error", err)
		}
		return
	}
	if entries == nil {
		entries = []validation.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
