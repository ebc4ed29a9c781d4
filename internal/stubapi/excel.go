package stubapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
)

// handleExport streams the collection as a spreadsheet, honoring the same
// q/filter parameters the list endpoints accept.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	query := r.URL.Query()
	q := strings.ToLower(query.Get("q"))

	s.mu.Lock()
	var rows []record
	for _, rec := range s.collections[collection] {
		if q != "" && !matchesQuery(rec, q) {
			continue
		}
		if !matchesFilters(rec, query) {
			continue
		}
		rows = append(rows, rec)
	}
	rows = cloneRows(rows)
	s.mu.Unlock()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	sheet := f.GetSheetName(0)

	headers := columnSet(rows)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for rowIdx, rec := range rows {
		for colIdx, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(sheet, cell, rec[h])
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", collection))
	if err := f.Write(w); err != nil {
		s.logger.Warn("write export", "error", err)
	}
}

func matchesQuery(rec record, q string) bool {
	for _, v := range rec {
		if str, ok := v.(string); ok && strings.Contains(strings.ToLower(str), q) {
			return true
		}
	}
	return false
}

func matchesFilters(rec record, query map[string][]string) bool {
	for key, values := range query {
		if key == "q" || key == "page" || key == "limit" || len(values) == 0 || values[0] == "" {
			continue
		}
		if !strings.EqualFold(recString(rec, key), values[0]) {
			return false
		}
	}
	return true
}

func columnSet(rows []record) []string {
	seen := map[string]bool{}
	for _, rec := range rows {
		for k := range rec {
			seen[k] = true
		}
	}
	headers := make([]string, 0, len(seen))
	for k := range seen {
		headers = append(headers, k)
	}
	sort.Strings(headers)
	return headers
}
