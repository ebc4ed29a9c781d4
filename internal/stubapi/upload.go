package stubapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// handleBulkUpload accepts a multipart spreadsheet, imports its rows and
// reports a per-row result list.
func (s *Server) handleBulkUpload(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "only .xlsx uploads are supported"})
		return
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "could not read spreadsheet"})
		return
	}
	defer func() {
		_ = f.Close()
	}()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil || len(rows) < 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "spreadsheet has no data rows"})
		return
	}

	headers := rows[0]
	results := make([]map[string]any, 0, len(rows)-1)
	processed := 0
	s.mu.Lock()
	for i, row := range rows[1:] {
		rec := record{"_id": uuid.NewString(), "status": "Active"}
		empty := true
		for col, cell := range row {
			if col >= len(headers) || cell == "" {
				continue
			}
			rec[strings.ToLower(strings.TrimSpace(headers[col]))] = cell
			empty = false
		}
		if empty {
			results = append(results, map[string]any{"row": i + 2, "status": "failed", "message": "empty row"})
			continue
		}
		s.collections[collection] = append(s.collections[collection], rec)
		processed++
		results = append(results, map[string]any{"row": i + 2, "status": "success", "message": "imported"})
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"total":     len(rows) - 1,
		"processed": processed,
		"results":   results,
	})
}
