// Package upload implements the bulk-import flow: client-side pre-flight
// checks, multipart submission with progress, and the per-row result list.
package upload

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
)

var (
	// ErrUnsupportedType indicates a file extension outside xlsx/xls/csv.
	ErrUnsupportedType = errors.New("upload: unsupported file type, expected .xlsx, .xls or .csv")
	// ErrTooLarge indicates the file exceeds the configured size limit.
	ErrTooLarge = errors.New("upload: file exceeds the size limit")
	// ErrEmptySheet indicates a spreadsheet with no data rows.
	ErrEmptySheet = errors.New("upload: spreadsheet has no data rows")
)

// DefaultMaxBytes is the upload size limit when none is configured.
const DefaultMaxBytes int64 = 5 << 20

// Preflight validates the file before any request is issued: extension,
// size, and for xlsx files the header row against the entity's expected
// columns. Failures surface inline, never as a request error.
func Preflight(entity catalog.Entity, path string, maxBytes int64) error {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xls", ".csv":
	default:
		return ErrUnsupportedType
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("upload: stat %s: %w", path, err)
	}
	if info.Size() > maxBytes {
		return ErrTooLarge
	}

	if ext == ".xlsx" && len(entity.UploadHeaders) > 0 {
		return checkHeaders(entity, path)
	}
	return nil
}

func checkHeaders(entity catalog.Entity, path string) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("upload: open spreadsheet: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("upload: read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return ErrEmptySheet
	}

	header := map[string]bool{}
	for _, cell := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(cell))] = true
	}
	var missing []string
	for _, want := range entity.UploadHeaders {
		if !header[strings.ToLower(want)] {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("upload: missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Run validates and submits the file to the entity's bulk-upload endpoint.
func Run(ctx context.Context, client *api.Client, entity catalog.Entity, path string, maxBytes int64, progress api.ProgressFunc) (api.UploadReport, error) {
	if err := Preflight(entity, path, maxBytes); err != nil {
		return api.UploadReport{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return api.UploadReport{}, fmt.Errorf("upload: open %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return client.Collection(entity.Path).BulkUpload(ctx, filepath.Base(path), file, progress)
}

// WriteTemplate generates an empty spreadsheet carrying the entity's
// expected header row, for operators to fill in before uploading.
func WriteTemplate(entity catalog.Entity, path string) error {
	if len(entity.UploadHeaders) == 0 {
		return fmt.Errorf("upload: %s has no bulk-upload support", entity.Name)
	}
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	sheet := f.GetSheetName(0)
	for i, header := range entity.UploadHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
