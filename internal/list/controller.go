// Package list implements the generic paginated list-and-mutation
// controller that every master-data screen instantiates. One controller owns
// the paging, search, filter and selection state for a single entity
// collection, issues the HTTP requests through its Fetcher port and reports
// outcomes through its Notifier port.
package list

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/export"
)

// Fetcher is what the controller needs from the entity's API collection.
// *api.Collection satisfies it.
type Fetcher interface {
	List(ctx context.Context, page, limit int) (api.Page, error)
	Search(ctx context.Context, q string, page, limit int) (api.Page, error)
	Filter(ctx context.Context, fields map[string]string, page, limit int) (api.Page, error)
	Create(ctx context.Context, draft api.Record) (api.Record, error)
	Update(ctx context.Context, id string, draft api.Record) (api.Record, error)
	SetStatus(ctx context.Context, id, status string, carry api.Record) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) error
	Export(ctx context.Context, params url.Values) ([]byte, error)
}

// Config declares the per-entity knobs of a controller instance.
type Config struct {
	Title        string
	ExportPrefix string
	Limit        int

	SearchEnabled bool
	FilterEnabled bool
	FilterFields  []string

	// StatusCarry lists fields the server demands be resent on a status
	// toggle (e.g. name).
	StatusCarry []string

	// Validate checks a draft before create/update requests. Failures are
	// surfaced inline and no request is issued.
	Validate func(draft api.Record, editing bool) error

	// SearchDebounce delays keystroke-driven search submission. Zero means
	// search runs only on explicit submit.
	SearchDebounce time.Duration
}

// Modal is the create/edit modal state.
type Modal struct {
	Open    bool
	Editing bool
	Draft   api.Record
}

// State is a render snapshot of the controller.
type State struct {
	Rows       []api.Record
	Page       int
	TotalPages int
	TotalCount int

	SearchQuery string
	SearchMode  bool
	Filters     map[string]string
	FilterMode  bool

	SelectedIDs map[string]bool
	SelectAll   bool

	Loading     bool
	Downloading bool
	Modal       Modal
}

// Controller owns one entity collection's list state. Methods are safe for
// concurrent use; fetch responses carry a sequence number so a superseded
// request can never overwrite newer state.
type Controller struct {
	cfg    Config
	coll   Fetcher
	notify Notifier
	logger *slog.Logger

	exportDir string
	now       func() time.Time

	mu          sync.Mutex
	rows        []api.Record
	page        int
	totalPages  int
	totalCount  int
	searchQuery string
	searchMode  bool
	filters     map[string]string
	filterMode  bool
	selected    map[string]bool
	selectAll   bool
	loading     bool
	downloading bool
	modal       Modal
	seq         uint64

	searchDebounce *Debouncer
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithExportDir sets where downloaded spreadsheets are written.
func WithExportDir(dir string) Option {
	return func(c *Controller) { c.exportDir = dir }
}

// WithClock overrides the clock used for export filenames.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New constructs a controller for one entity collection.
func New(cfg Config, coll Fetcher, notify Notifier, opts ...Option) *Controller {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	c := &Controller{
		cfg:        cfg,
		coll:       coll,
		notify:     notify,
		logger:     slog.Default(),
		exportDir:  ".",
		now:        time.Now,
		page:       1,
		totalPages: 1,
		filters:    map[string]string{},
		selected:   map[string]bool{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if cfg.SearchDebounce > 0 {
		c.searchDebounce = NewDebouncer(cfg.SearchDebounce)
	}
	return c
}

// Snapshot returns a copy of the current state for rendering.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := State{
		Rows:        append([]api.Record(nil), c.rows...),
		Page:        c.page,
		TotalPages:  c.totalPages,
		TotalCount:  c.totalCount,
		SearchQuery: c.searchQuery,
		SearchMode:  c.searchMode,
		Filters:     map[string]string{},
		FilterMode:  c.filterMode,
		SelectedIDs: map[string]bool{},
		SelectAll:   c.selectAll,
		Loading:     c.loading,
		Downloading: c.downloading,
		Modal:       Modal{Open: c.modal.Open, Editing: c.modal.Editing, Draft: c.modal.Draft.Clone()},
	}
	for k, v := range c.filters {
		st.Filters[k] = v
	}
	for id := range c.selected {
		st.SelectedIDs[id] = true
	}
	return st
}

// Config returns the entity configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// FetchPage loads one page of the plain listing and leaves search and filter
// mode.
func (c *Controller) FetchPage(ctx context.Context, page int) error {
	c.mu.Lock()
	c.searchMode = false
	c.filterMode = false
	c.mu.Unlock()
	return c.runFetch(ctx, page, func(ctx context.Context, p int) (api.Page, error) {
		return c.coll.List(ctx, p, c.cfg.Limit)
	})
}

// SetSearchQuery records the live search box value. Clearing the box while
// in search mode immediately reverts to the plain first page, without an
// explicit submission.
func (c *Controller) SetSearchQuery(ctx context.Context, q string) {
	c.mu.Lock()
	wasSearching := c.searchMode
	c.searchQuery = q
	c.mu.Unlock()

	if q == "" && wasSearching {
		if err := c.FetchPage(ctx, 1); err != nil {
			c.logger.Warn("revert to plain listing", slog.Any("error", err))
		}
		return
	}
	if q != "" && c.searchDebounce != nil {
		c.searchDebounce.Trigger(func() {
			_ = c.Search(ctx, q)
		})
	}
}

// Search submits a query against the dedicated search endpoint. Blank
// queries are a no-op.
func (c *Controller) Search(ctx context.Context, q string) error {
	if strings.TrimSpace(q) == "" {
		return nil
	}
	c.mu.Lock()
	c.searchQuery = q
	c.searchMode = true
	c.filterMode = false
	c.mu.Unlock()
	return c.runFetch(ctx, 1, func(ctx context.Context, p int) (api.Page, error) {
		return c.coll.Search(ctx, q, p, c.cfg.Limit)
	})
}

// SetFilter records one filter field value.
func (c *Controller) SetFilter(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.filters, key)
		return
	}
	c.filters[key] = value
}

// ApplyFilters submits the non-empty filter fields. Entering filter mode
// leaves search mode; with no fields set it reverts to the plain listing.
func (c *Controller) ApplyFilters(ctx context.Context) error {
	c.mu.Lock()
	fields := map[string]string{}
	for k, v := range c.filters {
		if v != "" {
			fields[k] = v
		}
	}
	c.mu.Unlock()
	if len(fields) == 0 {
		return c.FetchPage(ctx, 1)
	}
	c.mu.Lock()
	c.filterMode = true
	c.searchMode = false
	c.searchQuery = ""
	c.mu.Unlock()
	return c.runFetch(ctx, 1, func(ctx context.Context, p int) (api.Page, error) {
		return c.coll.Filter(ctx, fields, p, c.cfg.Limit)
	})
}

// ClearFilters drops all filter fields and reloads the plain first page.
func (c *Controller) ClearFilters(ctx context.Context) error {
	c.mu.Lock()
	c.filters = map[string]string{}
	c.mu.Unlock()
	return c.FetchPage(ctx, 1)
}

// GoToPage clamps the target page to [1, totalPages] and re-invokes the
// active fetch variant.
func (c *Controller) GoToPage(ctx context.Context, page int) error {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	if page > c.totalPages {
		page = c.totalPages
	}
	c.mu.Unlock()
	return c.refetch(ctx, page)
}

// NextPage advances one page.
func (c *Controller) NextPage(ctx context.Context) error {
	c.mu.Lock()
	page := c.page + 1
	c.mu.Unlock()
	return c.GoToPage(ctx, page)
}

// PreviousPage steps back one page.
func (c *Controller) PreviousPage(ctx context.Context) error {
	c.mu.Lock()
	page := c.page - 1
	c.mu.Unlock()
	return c.GoToPage(ctx, page)
}

// ToggleSelectAll selects every row id on the current page, or clears the
// selection when it was already full.
func (c *Controller) ToggleSelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectAll = !c.selectAll
	c.selected = map[string]bool{}
	if c.selectAll {
		for _, row := range c.rows {
			if id := row.ID(); id != "" {
				c.selected[id] = true
			}
		}
	}
}

// ToggleRowSelect adds or removes one id from the selection.
func (c *Controller) ToggleRowSelect(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected[id] {
		delete(c.selected, id)
		c.selectAll = false
		return
	}
	c.selected[id] = true
	if len(c.selected) == len(c.rows) && len(c.rows) > 0 {
		c.selectAll = true
	}
}

// SelectedIDs returns the selected ids in stable order.
func (c *Controller) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.selected))
	for id := range c.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OpenCreateModal seeds an empty draft.
func (c *Controller) OpenCreateModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal{Open: true, Editing: false, Draft: api.Record{}}
}

// OpenEditModal seeds the draft with a shallow copy of the row.
func (c *Controller) OpenEditModal(row api.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal{Open: true, Editing: true, Draft: row.Clone()}
}

// SetDraftField writes one field of the modal draft.
func (c *Controller) SetDraftField(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.modal.Open {
		return
	}
	if c.modal.Draft == nil {
		c.modal.Draft = api.Record{}
	}
	c.modal.Draft[key] = value
}

// CloseModal discards the draft.
func (c *Controller) CloseModal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modal = Modal{}
}

// SubmitModal routes the draft to create or update based on the editing
// flag and the presence of an id, then refetches the active view.
func (c *Controller) SubmitModal(ctx context.Context) error {
	c.mu.Lock()
	modal := c.modal
	c.mu.Unlock()
	if !modal.Open {
		return nil
	}

	draft := modal.Draft.Clone()
	if draft == nil {
		draft = api.Record{}
	}
	if c.cfg.Validate != nil {
		if err := c.cfg.Validate(draft, modal.Editing); err != nil {
			c.notify.Inline(err.Error())
			return err
		}
	}

	var err error
	if modal.Editing && draft.ID() != "" {
		_, err = c.coll.Update(ctx, draft.ID(), draft)
	} else {
		_, err = c.coll.Create(ctx, draft)
	}
	if err != nil {
		c.notify.Toast(ToastError, api.Reason(err, "Failed to save record"))
		return err
	}

	c.CloseModal()
	if modal.Editing {
		c.notify.Toast(ToastSuccess, c.cfg.Title+" updated successfully")
	} else {
		c.notify.Toast(ToastSuccess, c.cfg.Title+" created successfully")
	}
	return c.refetchCurrent(ctx)
}

// DeleteRow confirms and deletes one record, then refetches. Deletes the
// server rejects because of linked records surface every blocking identity.
func (c *Controller) DeleteRow(ctx context.Context, id string) error {
	if !c.notify.Confirm("Delete "+c.cfg.Title, "This record will be permanently deleted. This action cannot be undone.") {
		return nil
	}
	if err := c.coll.Delete(ctx, id); err != nil {
		c.notify.Dialog(deleteFailureDialog(c.cfg.Title, err))
		return err
	}
	c.notify.Dialog(Dialog{Title: "Deleted", Body: c.cfg.Title + " deleted successfully"})
	return c.refetchCurrent(ctx)
}

// BulkDelete deletes the selected rows in one request. An empty selection
// performs no request and surfaces an error toast.
func (c *Controller) BulkDelete(ctx context.Context) error {
	ids := c.SelectedIDs()
	if len(ids) == 0 {
		c.notify.Toast(ToastError, "Select at least one record to delete")
		return nil
	}
	if !c.notify.Confirm("Delete selected", fmt.Sprintf("Delete %d selected records? This action cannot be undone.", len(ids))) {
		return nil
	}
	if err := c.coll.BulkDelete(ctx, ids); err != nil {
		c.notify.Dialog(deleteFailureDialog(c.cfg.Title, err))
		return err
	}
	c.notify.Dialog(Dialog{Title: "Deleted", Body: fmt.Sprintf("%d records deleted successfully", len(ids))})
	return c.refetchCurrent(ctx)
}

// NextStatus maps a status onto the value a toggle submits. Only Active and
// Inactive are ever produced.
func NextStatus(current string) string {
	if strings.EqualFold(current, "Active") {
		return "Inactive"
	}
	return "Active"
}

// ToggleStatus flips the row's status via the dedicated endpoint, resending
// the configured carry fields, then refetches.
func (c *Controller) ToggleStatus(ctx context.Context, id string) error {
	c.mu.Lock()
	var row api.Record
	for _, r := range c.rows {
		if r.ID() == id {
			row = r
			break
		}
	}
	c.mu.Unlock()
	if row == nil {
		return fmt.Errorf("list: row %s not on current page", id)
	}

	next := NextStatus(row.String("status"))
	if err := c.coll.SetStatus(ctx, id, next, row.Pick(c.cfg.StatusCarry...)); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Blocked() {
			c.notify.Dialog(blockedDialog("Cannot deactivate "+c.cfg.Title, apiErr))
		} else {
			c.notify.Toast(ToastError, api.Reason(err, "Failed to update status"))
		}
		return err
	}
	c.notify.Toast(ToastSuccess, "Status changed to "+next)
	return c.refetchCurrent(ctx)
}

// DownloadExcel fetches the export blob, carrying the active search or
// filter parameters, and writes it as <prefix>_data_<YYYY-MM-DD>.xlsx.
func (c *Controller) DownloadExcel(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.downloading {
		c.mu.Unlock()
		return "", nil
	}
	c.downloading = true
	params := url.Values{}
	if c.searchMode && c.searchQuery != "" {
		params.Set("q", c.searchQuery)
	}
	if c.filterMode {
		for k, v := range c.filters {
			if v != "" {
				params.Set(k, v)
			}
		}
	}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.downloading = false
		c.mu.Unlock()
	}()

	blob, err := c.coll.Export(ctx, params)
	if err != nil {
		c.notify.Toast(ToastError, api.Reason(err, "Failed to download export"))
		return "", err
	}

	path, err := export.Save(c.exportDir, c.cfg.ExportPrefix, blob, c.now())
	if err != nil {
		c.notify.Toast(ToastError, "Failed to save export: "+err.Error())
		return "", err
	}
	c.notify.Toast(ToastSuccess, "Exported "+filepath.Base(path))
	return path, nil
}

// refetchCurrent re-invokes the active fetch variant at the current page.
func (c *Controller) refetchCurrent(ctx context.Context) error {
	c.mu.Lock()
	page := c.page
	c.mu.Unlock()
	return c.refetch(ctx, page)
}

func (c *Controller) refetch(ctx context.Context, page int) error {
	c.mu.Lock()
	searchMode, filterMode := c.searchMode, c.filterMode
	q := c.searchQuery
	fields := map[string]string{}
	for k, v := range c.filters {
		if v != "" {
			fields[k] = v
		}
	}
	c.mu.Unlock()

	switch {
	case searchMode:
		return c.runFetch(ctx, page, func(ctx context.Context, p int) (api.Page, error) {
			return c.coll.Search(ctx, q, p, c.cfg.Limit)
		})
	case filterMode:
		return c.runFetch(ctx, page, func(ctx context.Context, p int) (api.Page, error) {
			return c.coll.Filter(ctx, fields, p, c.cfg.Limit)
		})
	default:
		return c.runFetch(ctx, page, func(ctx context.Context, p int) (api.Page, error) {
			return c.coll.List(ctx, p, c.cfg.Limit)
		})
	}
}

// runFetch performs one fetch under a sequence guard: if another fetch
// started after this one, its response wins and ours is discarded.
func (c *Controller) runFetch(ctx context.Context, page int, do func(context.Context, int) (api.Page, error)) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	pg, err := do(ctx, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// A newer fetch superseded this one.
		return nil
	}
	c.loading = false
	c.selected = map[string]bool{}
	c.selectAll = false
	if err != nil {
		c.rows = nil
		c.totalPages = 1
		c.totalCount = 0
		c.page = 1
		c.notify.Inline(api.Reason(err, "Failed to load "+c.cfg.Title+" records"))
		return err
	}

	c.rows = pg.Rows
	c.totalCount = pg.TotalCount
	c.totalPages = pg.TotalPages
	if c.totalPages < 1 {
		c.totalPages = 1
	}
	c.page = page
	if c.page > c.totalPages {
		c.page = c.totalPages
	}
	if c.page < 1 {
		c.page = 1
	}
	c.notify.Inline("")
	return nil
}

func deleteFailureDialog(title string, err error) Dialog {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if apiErr.Blocked() {
			return blockedDialog("Cannot delete "+title, apiErr)
		}
		if errors.Is(apiErr, api.ErrNotFound) {
			return Dialog{Title: "Not found", Body: title + " record was not found", Error: true}
		}
	}
	return Dialog{Title: "Delete failed", Body: api.Reason(err, "Failed to delete record"), Error: true}
}

// blockedDialog lists every linked identity verbatim, not just the counts.
func blockedDialog(title string, apiErr *api.Error) Dialog {
	var b strings.Builder
	b.WriteString(apiErr.Message)
	if len(apiErr.LinkedUsers) > 0 {
		b.WriteString(fmt.Sprintf("\n\nLinked users (%d):", linkedCount(apiErr.LinkedUsersCount, len(apiErr.LinkedUsers))))
		for _, ref := range apiErr.LinkedUsers {
			b.WriteString("\n  - " + ref.Label())
		}
	}
	if len(apiErr.LinkedBranches) > 0 {
		b.WriteString(fmt.Sprintf("\n\nLinked branches (%d):", linkedCount(apiErr.LinkedBranchesCount, len(apiErr.LinkedBranches))))
		for _, ref := range apiErr.LinkedBranches {
			b.WriteString("\n  - " + ref.Label())
		}
	}
	return Dialog{Title: title, Body: b.String(), Error: true}
}

func linkedCount(reported, actual int) int {
	if reported > 0 {
		return reported
	}
	return actual
}
