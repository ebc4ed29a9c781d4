package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadResult is the per-row outcome of a bulk upload.
type UploadResult struct {
	Row     int    `json:"row"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UploadReport summarizes a bulk upload.
type UploadReport struct {
	Total     int            `json:"total"`
	Processed int            `json:"processed"`
	Results   []UploadResult `json:"results"`
}

// Failed counts rows the server rejected.
func (r UploadReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Status != "success" {
			n++
		}
	}
	return n
}

// ProgressFunc receives upload progress as bytes sent out of total.
type ProgressFunc func(sent, total int64)

// BulkUpload posts a spreadsheet file to the collection's bulk-upload
// endpoint. Progress is reported as the request body is consumed.
func (col *Collection) BulkUpload(ctx context.Context, filename string, file io.Reader, progress ProgressFunc) (UploadReport, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadReport{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadReport{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadReport{}, err
	}

	total := int64(body.Len())
	var reader io.Reader = body
	if progress != nil {
		reader = &progressReader{r: body, total: total, report: progress}
	}

	target := fmt.Sprintf("%s/%s/bulk-upload", col.client.baseURL, col.path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, reader)
	if err != nil {
		return UploadReport{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total
	col.client.decorate(req)

	resp, err := col.client.httpClient.Do(req)
	if err != nil {
		return UploadReport{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return UploadReport{}, err
	}
	if resp.StatusCode >= 400 {
		return UploadReport{}, decodeError(resp.StatusCode, respBody)
	}

	var report UploadReport
	if err := json.Unmarshal(respBody, &report); err != nil {
		return UploadReport{}, err
	}
	return report, nil
}

type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
