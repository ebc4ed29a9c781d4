package list

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
)

type fetchCall struct {
	kind string
	page int
	q    string
}

// memoryFetcher serves pages from an in-memory row set and records every
// call the controller makes.
type memoryFetcher struct {
	mu    sync.Mutex
	rows  []api.Record
	limit int
	calls []fetchCall

	listErr   error
	deleteErr error
	statusErr error

	created  []api.Record
	updated  map[string]api.Record
	deleted  []string
	bulk     [][]string
	statuses []string
	exported []url.Values
	blob     []byte
	carries  []api.Record

	// blockPage, when set, makes List for that page wait on release before
	// returning.
	blockPage int
	release   chan struct{}
}

func newMemoryFetcher(n, limit int) *memoryFetcher {
	f := &memoryFetcher{limit: limit, updated: map[string]api.Record{}, blob: []byte("xlsx-bytes")}
	for i := 0; i < n; i++ {
		f.rows = append(f.rows, api.Record{
			"_id":    fmt.Sprintf("id-%02d", i),
			"name":   fmt.Sprintf("Row %02d", i),
			"status": "Active",
		})
	}
	return f
}

func (f *memoryFetcher) record(call fetchCall) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *memoryFetcher) countCalls(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.kind == kind {
			n++
		}
	}
	return n
}

func (f *memoryFetcher) lastCall() fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return fetchCall{}
	}
	return f.calls[len(f.calls)-1]
}

func (f *memoryFetcher) page(page int) api.Page {
	total := len(f.rows)
	totalPages := (total + f.limit - 1) / f.limit
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * f.limit
	if start > total {
		start = total
	}
	end := start + f.limit
	if end > total {
		end = total
	}
	return api.Page{Rows: f.rows[start:end], Page: page, TotalPages: totalPages, TotalCount: total}
}

func (f *memoryFetcher) List(ctx context.Context, page, limit int) (api.Page, error) {
	f.record(fetchCall{kind: "list", page: page})
	f.mu.Lock()
	release := f.release
	blocked := f.blockPage == page && release != nil
	f.mu.Unlock()
	if blocked {
		<-release
	}
	if f.listErr != nil {
		return api.Page{}, f.listErr
	}
	return f.page(page), nil
}

func (f *memoryFetcher) Search(ctx context.Context, q string, page, limit int) (api.Page, error) {
	f.record(fetchCall{kind: "search", page: page, q: q})
	return f.page(page), nil
}

func (f *memoryFetcher) Filter(ctx context.Context, fields map[string]string, page, limit int) (api.Page, error) {
	f.record(fetchCall{kind: "filter", page: page})
	return f.page(page), nil
}

func (f *memoryFetcher) Create(ctx context.Context, draft api.Record) (api.Record, error) {
	f.record(fetchCall{kind: "create"})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, draft)
	return draft, nil
}

func (f *memoryFetcher) Update(ctx context.Context, id string, draft api.Record) (api.Record, error) {
	f.record(fetchCall{kind: "update"})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = draft
	return draft, nil
}

func (f *memoryFetcher) SetStatus(ctx context.Context, id, status string, carry api.Record) error {
	f.record(fetchCall{kind: "status"})
	if f.statusErr != nil {
		return f.statusErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.carries = append(f.carries, carry)
	return nil
}

func (f *memoryFetcher) Delete(ctx context.Context, id string) error {
	f.record(fetchCall{kind: "delete"})
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *memoryFetcher) BulkDelete(ctx context.Context, ids []string) error {
	f.record(fetchCall{kind: "bulk"})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = append(f.bulk, ids)
	return nil
}

func (f *memoryFetcher) Export(ctx context.Context, params url.Values) ([]byte, error) {
	f.record(fetchCall{kind: "export"})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exported = append(f.exported, params)
	return f.blob, nil
}

// recordingNotifier captures everything the controller reports.
type recordingNotifier struct {
	mu       sync.Mutex
	toasts   []string
	kinds    []ToastKind
	dialogs  []Dialog
	inlines  []string
	confirms []string
	answer   bool
}

func (n *recordingNotifier) Toast(kind ToastKind, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.toasts = append(n.toasts, message)
}

func (n *recordingNotifier) Dialog(d Dialog) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dialogs = append(n.dialogs, d)
}

func (n *recordingNotifier) Inline(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.inlines = append(n.inlines, message)
}

func (n *recordingNotifier) Confirm(title, body string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirms = append(n.confirms, title)
	return n.answer
}

func (n *recordingNotifier) lastInline() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.inlines) == 0 {
		return ""
	}
	return n.inlines[len(n.inlines)-1]
}

func newTestController(t *testing.T, rows int) (*Controller, *memoryFetcher, *recordingNotifier) {
	t.Helper()
	fetcher := newMemoryFetcher(rows, 10)
	notify := &recordingNotifier{answer: true}
	ctrl := New(Config{
		Title:        "State",
		ExportPrefix: "states",
		Limit:        10,
		StatusCarry:  []string{"name"},
	}, fetcher, notify, WithExportDir(t.TempDir()))
	return ctrl, fetcher, notify
}

func TestGoToPageIssuesExactlyOneFetchPerPage(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 45)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	totalPages := ctrl.Snapshot().TotalPages
	require.Equal(t, 5, totalPages)

	for page := 1; page <= totalPages; page++ {
		before := fetcher.countCalls("list")
		require.NoError(t, ctrl.GoToPage(ctx, page))
		require.Equal(t, before+1, fetcher.countCalls("list"))
		require.Equal(t, page, fetcher.lastCall().page)
		require.Equal(t, page, ctrl.Snapshot().Page)
	}
}

func TestGoToPageClampsOutOfRange(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 45)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	require.NoError(t, ctrl.GoToPage(ctx, 99))
	require.Equal(t, 5, fetcher.lastCall().page)
	require.Equal(t, 5, ctrl.Snapshot().Page)

	require.NoError(t, ctrl.GoToPage(ctx, -3))
	require.Equal(t, 1, fetcher.lastCall().page)
	require.Equal(t, 1, ctrl.Snapshot().Page)
}

func TestSearchClearReverts(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 30)
	ctx := context.Background()
	require.NoError(t, ctrl.Search(ctx, "pump"))
	require.True(t, ctrl.Snapshot().SearchMode)

	ctrl.SetSearchQuery(ctx, "")

	st := ctrl.Snapshot()
	require.False(t, st.SearchMode)
	require.Equal(t, 1, st.Page)
	last := fetcher.lastCall()
	require.Equal(t, "list", last.kind)
	require.Equal(t, 1, last.page)
}

func TestBlankSearchIsNoOp(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 30)
	require.NoError(t, ctrl.Search(context.Background(), "   "))
	require.Empty(t, fetcher.calls)
	require.False(t, ctrl.Snapshot().SearchMode)
}

func TestSearchAndFilterAreMutuallyExclusive(t *testing.T) {
	ctrl, _, _ := newTestController(t, 30)
	ctx := context.Background()

	require.NoError(t, ctrl.Search(ctx, "pump"))
	st := ctrl.Snapshot()
	require.True(t, st.SearchMode)
	require.False(t, st.FilterMode)

	ctrl.SetFilter("region", "West")
	require.NoError(t, ctrl.ApplyFilters(ctx))
	st = ctrl.Snapshot()
	require.True(t, st.FilterMode)
	require.False(t, st.SearchMode)

	require.NoError(t, ctrl.Search(ctx, "pump"))
	st = ctrl.Snapshot()
	require.True(t, st.SearchMode)
	require.False(t, st.FilterMode)
}

func TestApplyFiltersWithNoFieldsRevertsToPlainListing(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 30)
	require.NoError(t, ctrl.ApplyFilters(context.Background()))
	require.Equal(t, "list", fetcher.lastCall().kind)
	require.False(t, ctrl.Snapshot().FilterMode)
}

func TestMutationRefetchesActiveVariant(t *testing.T) {
	ctx := context.Background()

	t.Run("plain listing", func(t *testing.T) {
		ctrl, fetcher, _ := newTestController(t, 30)
		require.NoError(t, ctrl.FetchPage(ctx, 2))
		ctrl.OpenCreateModal()
		ctrl.SetDraftField("name", "New State")
		require.NoError(t, ctrl.SubmitModal(ctx))
		last := fetcher.lastCall()
		require.Equal(t, "list", last.kind)
		require.Equal(t, 2, last.page)
	})

	t.Run("search mode", func(t *testing.T) {
		ctrl, fetcher, _ := newTestController(t, 30)
		require.NoError(t, ctrl.Search(ctx, "row"))
		require.NoError(t, ctrl.GoToPage(ctx, 2))
		require.NoError(t, ctrl.DeleteRow(ctx, "id-05"))
		last := fetcher.lastCall()
		require.Equal(t, "search", last.kind)
		require.Equal(t, "row", last.q)
		require.Equal(t, 2, last.page)
	})

	t.Run("filter mode", func(t *testing.T) {
		ctrl, fetcher, _ := newTestController(t, 30)
		ctrl.SetFilter("region", "West")
		require.NoError(t, ctrl.ApplyFilters(ctx))
		require.NoError(t, ctrl.ToggleStatus(ctx, "id-03"))
		require.Equal(t, "filter", fetcher.lastCall().kind)
	})
}

func TestBulkDeleteGuardsEmptySelection(t *testing.T) {
	ctrl, fetcher, notify := newTestController(t, 30)
	require.NoError(t, ctrl.BulkDelete(context.Background()))
	require.Empty(t, fetcher.calls)
	require.Equal(t, []ToastKind{ToastError}, notify.kinds)
}

func TestBulkDeleteSendsSelectedIDs(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))
	ctrl.ToggleRowSelect("id-01")
	ctrl.ToggleRowSelect("id-03")
	require.NoError(t, ctrl.BulkDelete(ctx))
	require.Equal(t, [][]string{{"id-01", "id-03"}}, fetcher.bulk)
	// Mutation refetches.
	require.Equal(t, "list", fetcher.lastCall().kind)
}

func TestToggleSelectAllTwiceRestoresEmptySelection(t *testing.T) {
	ctrl, _, _ := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	ctrl.ToggleSelectAll()
	st := ctrl.Snapshot()
	require.True(t, st.SelectAll)
	require.Len(t, st.SelectedIDs, 5)

	ctrl.ToggleSelectAll()
	st = ctrl.Snapshot()
	require.False(t, st.SelectAll)
	require.Empty(t, st.SelectedIDs)
}

func TestSelectionClearsOnPageNavigation(t *testing.T) {
	ctrl, _, _ := newTestController(t, 30)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))
	ctrl.ToggleRowSelect("id-02")
	require.NoError(t, ctrl.NextPage(ctx))
	require.Empty(t, ctrl.Snapshot().SelectedIDs)
}

func TestDeleteBlockedRendersEveryLinkedIdentity(t *testing.T) {
	ctrl, fetcher, notify := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	fetcher.deleteErr = &api.Error{
		Status:  400,
		Message: "In use",
		LinkedUsers: []api.LinkedRef{
			{Name: "A", EmployeeID: "E1"},
			{Name: "B", EmployeeID: "E2"},
			{Name: "C", EmployeeID: "E3"},
		},
		LinkedUsersCount: 3,
	}

	require.Error(t, ctrl.DeleteRow(ctx, "id-00"))
	require.Len(t, notify.dialogs, 1)
	body := notify.dialogs[0].Body
	require.Contains(t, body, "In use")
	require.Contains(t, body, "A (E1)")
	require.Contains(t, body, "B (E2)")
	require.Contains(t, body, "C (E3)")
	require.Contains(t, body, "Linked users (3)")
}

func TestDeleteDeclinedByConfirmMakesNoRequest(t *testing.T) {
	ctrl, fetcher, notify := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))
	notify.answer = false

	require.NoError(t, ctrl.DeleteRow(ctx, "id-00"))
	require.Equal(t, 0, fetcher.countCalls("delete"))
}

func TestDownloadExcelWritesDatedFilename(t *testing.T) {
	dir := t.TempDir()
	fetcher := newMemoryFetcher(5, 10)
	notify := &recordingNotifier{answer: true}
	fixed := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	ctrl := New(Config{Title: "State", ExportPrefix: "states", Limit: 10}, fetcher, notify,
		WithExportDir(dir),
		WithClock(func() time.Time { return fixed }),
	)

	path, err := ctrl.DownloadExcel(context.Background())
	require.NoError(t, err)
	require.Equal(t, "states_data_2026-08-29.xlsx", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("xlsx-bytes"), data)
}

func TestDownloadExcelCarriesActiveSearchParams(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 30)
	ctx := context.Background()
	require.NoError(t, ctrl.Search(ctx, "pump"))

	_, err := ctrl.DownloadExcel(ctx)
	require.NoError(t, err)
	require.Len(t, fetcher.exported, 1)
	require.Equal(t, "pump", fetcher.exported[0].Get("q"))
}

func TestNextStatusIsSymmetric(t *testing.T) {
	require.Equal(t, "Inactive", NextStatus("Active"))
	require.Equal(t, "Active", NextStatus("Inactive"))
	require.Equal(t, "Active", NextStatus("Pending"))
}

func TestToggleStatusSendsOppositeAndCarryFields(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	require.NoError(t, ctrl.ToggleStatus(ctx, "id-02"))
	require.Equal(t, []string{"Inactive"}, fetcher.statuses)
	require.Len(t, fetcher.carries, 1)
	require.Equal(t, "Row 02", fetcher.carries[0].String("name"))
}

func TestFetchFailureResetsStateAndReportsInline(t *testing.T) {
	ctrl, fetcher, notify := newTestController(t, 30)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	fetcher.listErr = &api.Error{Status: 500, Message: "boom"}
	require.Error(t, ctrl.FetchPage(ctx, 2))

	st := ctrl.Snapshot()
	require.Empty(t, st.Rows)
	require.Equal(t, 1, st.TotalPages)
	require.Equal(t, 0, st.TotalCount)
	require.False(t, st.Loading)
	require.Equal(t, "boom", notify.lastInline())
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 45)
	ctx := context.Background()

	release := make(chan struct{})
	fetcher.mu.Lock()
	fetcher.blockPage = 1
	fetcher.release = release
	fetcher.mu.Unlock()

	slow := make(chan error, 1)
	go func() {
		slow <- ctrl.FetchPage(ctx, 1)
	}()

	// Wait for the slow fetch to be in flight.
	require.Eventually(t, func() bool {
		return fetcher.countCalls("list") == 1
	}, time.Second, 5*time.Millisecond)

	// The newer fetch completes first; it must win.
	require.NoError(t, ctrl.FetchPage(ctx, 3))
	require.Equal(t, 3, ctrl.Snapshot().Page)

	close(release)
	<-slow
	require.Equal(t, 3, ctrl.Snapshot().Page, "stale page-1 response must not overwrite page 3")
}

func TestValidateFailureSkipsRequestAndSurfacesInline(t *testing.T) {
	fetcher := newMemoryFetcher(0, 10)
	notify := &recordingNotifier{answer: true}
	ctrl := New(Config{
		Title: "State",
		Limit: 10,
		Validate: func(draft api.Record, editing bool) error {
			return fmt.Errorf("State Name is required")
		},
	}, fetcher, notify)

	ctrl.OpenCreateModal()
	require.Error(t, ctrl.SubmitModal(context.Background()))
	require.Empty(t, fetcher.created)
	require.Equal(t, "State Name is required", notify.lastInline())
	require.True(t, ctrl.Snapshot().Modal.Open, "modal stays open on validation failure")
}

func TestSubmitModalRoutesCreateVersusUpdate(t *testing.T) {
	ctrl, fetcher, _ := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	ctrl.OpenCreateModal()
	ctrl.SetDraftField("name", "Fresh")
	require.NoError(t, ctrl.SubmitModal(ctx))
	require.Len(t, fetcher.created, 1)
	require.Empty(t, fetcher.updated)
	require.False(t, ctrl.Snapshot().Modal.Open)

	row := ctrl.Snapshot().Rows[0]
	ctrl.OpenEditModal(row)
	ctrl.SetDraftField("name", "Renamed")
	require.NoError(t, ctrl.SubmitModal(ctx))
	require.Len(t, fetcher.created, 1)
	require.Contains(t, fetcher.updated, row.ID())
	require.Equal(t, "Renamed", fetcher.updated[row.ID()].String("name"))
}

func TestEditDraftIsAShallowCopy(t *testing.T) {
	ctrl, _, _ := newTestController(t, 5)
	ctx := context.Background()
	require.NoError(t, ctrl.FetchPage(ctx, 1))

	row := ctrl.Snapshot().Rows[0]
	ctrl.OpenEditModal(row)
	ctrl.SetDraftField("name", "Changed")
	require.Equal(t, "Row 00", row.String("name"))
}
