package stubapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// SeedLines replaces the approvable line items of one workflow document.
func (s *Server) SeedLines(collection, id string, lines []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record, 0, len(lines))
	for _, line := range lines {
		rec := record{}
		for k, v := range line {
			rec[k] = v
		}
		if _, ok := rec["_id"]; !ok {
			rec["_id"] = uuid.NewString()
		}
		if _, ok := rec["status"]; !ok {
			rec["status"] = "pending"
		}
		out = append(out, rec)
	}
	s.lines[collection+"/"+id] = out
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rows := cloneRows(s.lines[collection+"/"+id])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	s.decideLine(w, r, "approved", false)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	s.decideLine(w, r, "rejected", true)
}

// decideLine applies an approve or reject action to one line. Rejections
// demand a remark; the client checks this too, so the stub enforcing it
// keeps the two in agreement.
func (s *Server) decideLine(w http.ResponseWriter, r *http.Request, status string, remarkRequired bool) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	lineID := chi.URLParam(r, "line")

	var payload struct {
		Remark string `json:"remark"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		return
	}
	if remarkRequired && payload.Remark == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "a remark is required to reject"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := collection + "/" + id
	for i, line := range s.lines[key] {
		if recString(line, "_id") != lineID {
			continue
		}
		line["status"] = status
		line["remark"] = payload.Remark
		s.lines[key][i] = line
		s.revisions[key] = append(s.revisions[key], record{
			"number":    len(s.revisions[key]) + 1,
			"status":    status,
			"remark":    payload.Remark,
			"createdAt": s.now().UTC().Format(time.RFC3339),
		})
		writeJSON(w, http.StatusOK, map[string]any{"data": line})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "line not found"})
}

func (s *Server) handleRevisions(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	rows := cloneRows(s.revisions[collection+"/"+id])
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": rows})
}
