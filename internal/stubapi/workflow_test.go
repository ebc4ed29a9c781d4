package stubapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/approval"
)

func newWorkflowStub(t *testing.T) (*Server, *approval.Client) {
	t.Helper()
	stub := New(nil)
	stub.Seed("proposals", []map[string]any{
		{"_id": "pr-1", "proposalno": "QT-2026-014", "status": "pending"},
	})
	stub.SeedLines("proposals", "pr-1", []map[string]any{
		{"_id": "ln-1", "description": "Boom lift service", "quantity": 2.0, "price": 1500.0, "discount": 10.0},
		{"_id": "ln-2", "description": "Spare kit", "quantity": 1.0, "price": 800.0},
	})
	srv := httptest.NewServer(stub.Handler())
	t.Cleanup(srv.Close)
	return stub, approval.NewClient(api.NewClient(srv.URL), "proposals")
}

func TestLinesListsSeededItems(t *testing.T) {
	_, wf := newWorkflowStub(t)
	lines, err := wf.Lines(context.Background(), "pr-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "ln-1", lines[0].ID)
	require.Equal(t, "pending", lines[0].Status)
	require.Equal(t, 10.0, lines[0].Discount)
}

func TestLinesForUnknownDocumentIsEmpty(t *testing.T) {
	_, wf := newWorkflowStub(t)
	lines, err := wf.Lines(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestApproveUpdatesLineAndRecordsRevision(t *testing.T) {
	_, wf := newWorkflowStub(t)
	ctx := context.Background()

	require.NoError(t, wf.Approve(ctx, "pr-1", "ln-1", "within band"))

	lines, err := wf.Lines(ctx, "pr-1")
	require.NoError(t, err)
	require.Equal(t, "approved", lines[0].Status)
	require.Equal(t, "within band", lines[0].Remark)
	require.Equal(t, "pending", lines[1].Status)

	revs, err := wf.Revisions(ctx, "pr-1")
	require.NoError(t, err)
	require.Len(t, revs, 1)
	require.Equal(t, 1, revs[0].Number)
	require.Equal(t, "approved", revs[0].Status)
	require.NotEmpty(t, revs[0].CreatedAt)
}

func TestRejectWithoutRemarkIsRefusedServerSide(t *testing.T) {
	stub, _ := newWorkflowStub(t)
	srv := httptest.NewServer(stub.Handler())
	defer srv.Close()

	// Bypass the client's own remark guard to exercise the server check.
	client := api.NewClient(srv.URL)
	err := client.Do(context.Background(), "POST", "proposals/pr-1/lines/ln-1/reject", nil, map[string]string{"remark": ""}, nil)
	require.Error(t, err)

	require.NoError(t, approval.NewClient(client, "proposals").Reject(context.Background(), "pr-1", "ln-1", "discount too high"))
}

func TestDecisionOnUnknownLineIs404(t *testing.T) {
	_, wf := newWorkflowStub(t)
	err := wf.Approve(context.Background(), "pr-1", "ln-99", "")
	require.ErrorIs(t, err, api.ErrNotFound)
}
