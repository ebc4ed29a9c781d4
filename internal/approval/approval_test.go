package approval

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
)

func TestLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proposals/p-1/lines", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[
			{"_id":"ln-1","description":"Boom lift service","quantity":2,"price":1500,"discount":10,"status":"pending"},
			{"_id":"ln-2","description":"Spare kit","quantity":1,"price":800,"status":"approved"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(api.NewClient(srv.URL), "proposals")
	lines, err := c.Lines(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "ln-1", lines[0].ID)
	require.Equal(t, 10.0, lines[0].Discount)
	require.Equal(t, "approved", lines[1].Status)
}

func TestApproveSendsRemark(t *testing.T) {
	var gotPath string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(api.NewClient(srv.URL), "oncall-orders")
	require.NoError(t, c.Approve(context.Background(), "o-1", "ln-9", "within band"))
	require.Equal(t, "/oncall-orders/o-1/lines/ln-9/approve", gotPath)
	require.Equal(t, "within band", gotBody["remark"])
}

func TestRejectRequiresRemark(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(api.NewClient(srv.URL), "proposals")
	err := c.Reject(context.Background(), "p-1", "ln-1", "")
	require.ErrorIs(t, err, ErrRemarkRequired)
	require.False(t, called, "no request may be issued without a remark")

	require.NoError(t, c.Reject(context.Background(), "p-1", "ln-1", "discount too high"))
	require.True(t, called)
}

func TestRevisions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proposals/p-1/revisions", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"number":1,"status":"rejected","remark":"rework"},{"number":2,"status":"pending"}]}`))
	}))
	defer srv.Close()

	c := NewClient(api.NewClient(srv.URL), "proposals")
	revs, err := c.Revisions(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, revs, 2)
	require.Equal(t, "rework", revs[0].Remark)
}
