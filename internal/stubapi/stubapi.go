// Package stubapi implements the platform REST contract in memory. The
// console consumes the hosted API as an opaque collaborator; this stub
// exists so development and tests have a conforming endpoint to talk to.
package stubapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/google/uuid"
)

type record map[string]any

// Blockers simulates server-side relationship constraints: deleting or
// deactivating a blocked record fails with the linked payload.
type Blockers struct {
	Message        string           `json:"message"`
	LinkedUsers    []map[string]any `json:"linkedUsers,omitempty"`
	LinkedBranches []map[string]any `json:"linkedBranches,omitempty"`
}

// Server is the in-memory API stub.
type Server struct {
	mu          sync.Mutex
	collections map[string][]record
	lines       map[string][]record
	revisions   map[string][]record
	blocked     map[string]Blockers
	logger      *slog.Logger
	router      chi.Router
	now         func() time.Time
}

// New builds a stub server with an empty store.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		collections: map[string][]record{},
		lines:       map[string][]record{},
		revisions:   map[string][]record{},
		blocked:     map[string]Blockers{},
		logger:      logger,
		now:         time.Now,
	}
	r := chi.NewRouter()
	r.Use(httprate.LimitByIP(300, time.Minute))
	r.Get("/excel/{collection}/export-data", s.handleExport)
	r.Route("/{collection}", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/search", s.handleSearch)
		r.Get("/filter", s.handleFilter)
		r.Delete("/bulk", s.handleBulkDelete)
		r.Post("/bulk-upload", s.handleBulkUpload)
		r.Get("/{id}", s.handleGet)
		r.Put("/{id}", s.handleUpdate)
		r.Patch("/{id}", s.handleUpdate)
		r.Delete("/{id}", s.handleDelete)
		r.Get("/{id}/lines", s.handleLines)
		r.Post("/{id}/lines/{line}/approve", s.handleApprove)
		r.Post("/{id}/lines/{line}/reject", s.handleReject)
		r.Get("/{id}/revisions", s.handleRevisions)
	})
	s.router = r
	return s
}

// Handler exposes the stub as an http.Handler.
func (s *Server) Handler() http.Handler { return s.router }

// Seed replaces a collection's rows, assigning ids where missing.
func (s *Server) Seed(collection string, rows []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]record, 0, len(rows))
	for _, row := range rows {
		rec := record{}
		for k, v := range row {
			rec[k] = v
		}
		if _, ok := rec["_id"]; !ok {
			rec["_id"] = uuid.NewString()
		}
		out = append(out, rec)
	}
	s.collections[collection] = out
}

// Block registers relationship blockers for one record.
func (s *Server) Block(collection, id string, b Blockers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocked[collection+"/"+id] = b
}

// Rows returns a copy of a collection's rows, ordered by id for stable
// assertions.
func (s *Server) Rows(collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.collections[collection]
	out := make([]map[string]any, 0, len(rows))
	for _, rec := range rows {
		copied := map[string]any{}
		for k, v := range rec {
			copied[k] = v
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := out[i]["_id"].(string)
		b, _ := out[j]["_id"].(string)
		return a < b
	})
	return out
}

// cloneRows deep-copies records so responses can be encoded outside the
// lock while updates keep mutating the stored maps.
func cloneRows(rows []record) []record {
	out := make([]record, 0, len(rows))
	for _, rec := range rows {
		copied := make(record, len(rec))
		for k, v := range rec {
			copied[k] = v
		}
		out = append(out, copied)
	}
	return out
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	s.mu.Lock()
	rows := cloneRows(s.collections[collection])
	s.mu.Unlock()
	writePage(w, r, rows)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.collections[collection] {
		if recString(rec, "_id") == id {
			writeJSON(w, http.StatusOK, map[string]any{"data": rec})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "record not found"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	q := strings.ToLower(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "search query is required"})
		return
	}
	s.mu.Lock()
	var rows []record
	for _, rec := range s.collections[collection] {
		for _, v := range rec {
			str, ok := v.(string)
			if ok && strings.Contains(strings.ToLower(str), q) {
				rows = append(rows, rec)
				break
			}
		}
	}
	rows = cloneRows(rows)
	s.mu.Unlock()
	writePage(w, r, rows)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	query := r.URL.Query()
	s.mu.Lock()
	var rows []record
	for _, rec := range s.collections[collection] {
		match := true
		for key, values := range query {
			if key == "page" || key == "limit" || len(values) == 0 || values[0] == "" {
				continue
			}
			if !strings.EqualFold(recString(rec, key), values[0]) {
				match = false
				break
			}
		}
		if match {
			rows = append(rows, rec)
		}
	}
	rows = cloneRows(rows)
	s.mu.Unlock()
	writePage(w, r, rows)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var payload record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		return
	}
	payload["_id"] = uuid.NewString()
	payload["createdAt"] = s.now().UTC().Format(time.RFC3339)
	if _, ok := payload["status"]; !ok {
		payload["status"] = "Active"
	}
	s.mu.Lock()
	s.collections[collection] = append(s.collections[collection], payload)
	created := cloneRows([]record{payload})[0]
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"data": created})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	var payload record
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		return
	}

	if status, ok := payload["status"].(string); ok && strings.EqualFold(status, "Inactive") {
		if b, blocked := s.blocker(collection, id); blocked {
			writeBlocked(w, b)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rec := range s.collections[collection] {
		if recString(rec, "_id") != id {
			continue
		}
		for k, v := range payload {
			if k == "_id" {
				continue
			}
			rec[k] = v
		}
		rec["modifiedAt"] = s.now().UTC().Format(time.RFC3339)
		s.collections[collection][i] = rec
		writeJSON(w, http.StatusOK, map[string]any{"data": rec})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "record not found"})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")
	if b, blocked := s.blocker(collection, id); blocked {
		writeBlocked(w, b)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.collections[collection]
	for i, rec := range rows {
		if recString(rec, "_id") == id {
			s.collections[collection] = append(rows[:i:i], rows[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted successfully"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "record not found"})
}

func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "ids are required"})
		return
	}
	wanted := map[string]bool{}
	for _, id := range payload.IDs {
		wanted[id] = true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.collections[collection][:0]
	removed := 0
	for _, rec := range s.collections[collection] {
		if wanted[recString(rec, "_id")] {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	s.collections[collection] = kept
	writeJSON(w, http.StatusOK, map[string]any{"message": strconv.Itoa(removed) + " records deleted"})
}

func (s *Server) blocker(collection, id string) (Blockers, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blocked[collection+"/"+id]
	return b, ok
}

func recString(rec record, key string) string {
	v, _ := rec[key].(string)
	return v
}

func writeBlocked(w http.ResponseWriter, b Blockers) {
	payload := map[string]any{"message": b.Message}
	if len(b.LinkedUsers) > 0 {
		payload["linkedUsers"] = b.LinkedUsers
		payload["linkedUsersCount"] = len(b.LinkedUsers)
	}
	if len(b.LinkedBranches) > 0 {
		payload["linkedBranches"] = b.LinkedBranches
		payload["linkedBranchesCount"] = len(b.LinkedBranches)
	}
	writeJSON(w, http.StatusBadRequest, payload)
}

func writePage(w http.ResponseWriter, r *http.Request, rows []record) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	total := len(rows)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       rows[start:end],
		"totalPages": totalPages,
		"totalCount": total,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
