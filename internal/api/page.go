package api

import (
	"encoding/json"
	"math"
	"strings"
)

// Page is one page of records with the server's pagination metadata.
type Page struct {
	Rows       []Record
	Page       int
	TotalPages int
	TotalCount int
}

// decodePage normalizes the list envelope. The hosted API is inconsistent
// across collections: rows arrive under "data", "rows" or "records", and the
// total count under collection-specific keys ("totalStates",
// "totalDiscountRecords", ...). When totalPages is absent it is recomputed
// from the count and the requested limit.
func decodePage(body []byte, page, limit int) (Page, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Page{}, err
	}

	// TotalPages starts at zero so an envelope without the field falls
	// through to the client-side recompute below.
	out := Page{Page: page}
	for _, key := range []string{"data", "rows", "records"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &out.Rows); err == nil {
			break
		}
		out.Rows = nil
	}

	if raw, ok := envelope["totalPages"]; ok {
		_ = json.Unmarshal(raw, &out.TotalPages)
	}
	out.TotalCount = findTotal(envelope)

	if out.TotalPages <= 0 {
		out.TotalPages = totalPagesFor(out.TotalCount, limit)
	}
	if out.Page > out.TotalPages {
		out.Page = out.TotalPages
	}
	return out, nil
}

// findTotal scans for the count field: "totalCount" and "total" first, then
// any other numeric "total*" key except totalPages.
func findTotal(envelope map[string]json.RawMessage) int {
	var n int
	for _, key := range []string{"totalCount", "total"} {
		if raw, ok := envelope[key]; ok && json.Unmarshal(raw, &n) == nil {
			return n
		}
	}
	for key, raw := range envelope {
		if key == "totalPages" || !strings.HasPrefix(key, "total") {
			continue
		}
		if json.Unmarshal(raw, &n) == nil {
			return n
		}
	}
	return 0
}

// totalPagesFor computes the page count client-side, never below 1.
func totalPagesFor(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
