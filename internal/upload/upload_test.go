package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
)

func testEntity() catalog.Entity {
	e, ok := catalog.Lookup("cities")
	if !ok {
		panic("cities entity missing from registry")
	}
	return e
}

func writeSheet(t *testing.T, headers []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, h))
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	path := filepath.Join(t.TempDir(), "upload.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestPreflightRejectsUnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.ErrorIs(t, Preflight(testEntity(), path, 0), ErrUnsupportedType)
}

func TestPreflightRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,state\na,b\n"), 0o644))
	require.ErrorIs(t, Preflight(testEntity(), path, 4), ErrTooLarge)
}

func TestPreflightRejectsMissingHeaders(t *testing.T) {
	path := writeSheet(t, []string{"name"}, [][]string{{"Kochi"}})
	err := Preflight(testEntity(), path, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing columns: state")
}

func TestPreflightRejectsEmptySheet(t *testing.T) {
	path := writeSheet(t, []string{"name", "state"}, nil)
	require.ErrorIs(t, Preflight(testEntity(), path, 0), ErrEmptySheet)
}

func TestPreflightAcceptsValidSheet(t *testing.T) {
	path := writeSheet(t, []string{"Name", "State"}, [][]string{{"Kochi", "Kerala"}})
	require.NoError(t, Preflight(testEntity(), path, 0))
}

func TestRunSubmitsAfterPreflight(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cities/bulk-upload", r.URL.Path)
		_, _, err := r.FormFile("file")
		require.NoError(t, err)
		_, _ = w.Write([]byte(`{"total":1,"processed":1,"results":[{"row":2,"status":"success"}]}`))
	}))
	defer srv.Close()

	path := writeSheet(t, []string{"name", "state"}, [][]string{{"Kochi", "Kerala"}})
	client := api.NewClient(srv.URL)

	report, err := Run(context.Background(), client, testEntity(), path, 0, nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Processed)
	require.Equal(t, 0, report.Failed())
}

func TestRunStopsOnPreflightFailure(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "rows.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := Run(context.Background(), api.NewClient(srv.URL), testEntity(), path, 0, nil)
	require.ErrorIs(t, err, ErrUnsupportedType)
	require.False(t, called)
}

func TestWriteTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, WriteTemplate(testEntity(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, []string{"name", "state"}, rows[0])
}

func TestWriteTemplateRequiresUploadSupport(t *testing.T) {
	e, ok := catalog.Lookup("states")
	require.True(t, ok)
	require.Error(t, WriteTemplate(e, filepath.Join(t.TempDir(), "t.xlsx")))
}
