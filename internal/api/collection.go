package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Collection issues requests for one entity collection. Paths follow the
// hosted API layout: /{collection}, /{collection}/search,
// /{collection}/filter, /{collection}/bulk and /excel/{collection}/export-data.
type Collection struct {
	client *Client
	path   string
}

// Path returns the collection path segment.
func (col *Collection) Path() string { return col.path }

// List fetches one page of the plain listing.
func (col *Collection) List(ctx context.Context, page, limit int) (Page, error) {
	return col.page(ctx, col.path, pageQuery(page, limit))
}

// Search fetches one page of the dedicated search endpoint.
func (col *Collection) Search(ctx context.Context, q string, page, limit int) (Page, error) {
	query := pageQuery(page, limit)
	query.Set("q", q)
	return col.page(ctx, col.path+"/search", query)
}

// Filter fetches one page filtered by the given non-empty fields.
func (col *Collection) Filter(ctx context.Context, fields map[string]string, page, limit int) (Page, error) {
	query := pageQuery(page, limit)
	for k, v := range fields {
		if v != "" {
			query.Set(k, v)
		}
	}
	return col.page(ctx, col.path+"/filter", query)
}

func (col *Collection) page(ctx context.Context, path string, query url.Values) (Page, error) {
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	body, err := col.client.raw(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return Page{}, err
	}
	return decodePage(body, page, limit)
}

// Create posts a new record built from the modal draft.
func (col *Collection) Create(ctx context.Context, draft Record) (Record, error) {
	return col.mutate(ctx, http.MethodPost, col.path, draft)
}

// Update replaces the record with the given id.
func (col *Collection) Update(ctx context.Context, id string, draft Record) (Record, error) {
	return col.mutate(ctx, http.MethodPut, fmt.Sprintf("%s/%s", col.path, id), draft)
}

// SetStatus issues the dedicated status toggle, resending any fields the
// server demands alongside the new status.
func (col *Collection) SetStatus(ctx context.Context, id, status string, carry Record) error {
	payload := carry.Clone()
	if payload == nil {
		payload = Record{}
	}
	payload["status"] = status
	return col.client.Do(ctx, http.MethodPatch, fmt.Sprintf("%s/%s", col.path, id), nil, payload, nil)
}

// Delete removes one record. Blocked deletes surface as *Error with
// linked-relationship detail.
func (col *Collection) Delete(ctx context.Context, id string) error {
	return col.client.Do(ctx, http.MethodDelete, fmt.Sprintf("%s/%s", col.path, id), nil, nil, nil)
}

// BulkDelete removes the given ids in a single request.
func (col *Collection) BulkDelete(ctx context.Context, ids []string) error {
	payload := map[string][]string{"ids": ids}
	return col.client.Do(ctx, http.MethodDelete, col.path+"/bulk", nil, payload, nil)
}

// Export fetches the spreadsheet blob, carrying the active search or filter
// parameters so the export matches what the table shows.
func (col *Collection) Export(ctx context.Context, params url.Values) ([]byte, error) {
	return col.client.raw(ctx, http.MethodGet, fmt.Sprintf("excel/%s/export-data", col.path), params, nil)
}

func (col *Collection) mutate(ctx context.Context, method, path string, draft Record) (Record, error) {
	body, err := col.client.raw(ctx, method, path, nil, draft)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data Record `json:"data"`
	}
	if err := unmarshalLoose(body, &out); err != nil || out.Data == nil {
		// Some collections return the record at the top level.
		var rec Record
		if err := unmarshalLoose(body, &rec); err == nil {
			return rec, nil
		}
		return nil, nil
	}
	return out.Data, nil
}

func unmarshalLoose(body []byte, out any) error {
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func pageQuery(page, limit int) url.Values {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))
	return query
}
