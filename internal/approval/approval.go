// Package approval drives the proposal and on-call approval screens. The
// approval state machine lives server-side; this client only issues the
// per-line approve/reject actions and renders whatever state comes back.
package approval

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
)

// ErrRemarkRequired indicates a rejection submitted without a remark.
var ErrRemarkRequired = errors.New("approval: a remark is required to reject")

// Line is one approvable line item of a proposal or on-call order.
type Line struct {
	ID          string  `json:"_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount"`
	Status      string  `json:"status"`
	Remark      string  `json:"remark"`
}

// Revision is one saved revision of a workflow document.
type Revision struct {
	Number    int    `json:"number"`
	Status    string `json:"status"`
	Remark    string `json:"remark"`
	CreatedAt string `json:"createdAt"`
}

// Client issues workflow actions for one collection (proposals or
// on-call orders).
type Client struct {
	api  *api.Client
	path string
}

// NewClient scopes a workflow client to a collection path.
func NewClient(apiClient *api.Client, path string) *Client {
	return &Client{api: apiClient, path: path}
}

// Lines fetches the approvable line items of one document.
func (c *Client) Lines(ctx context.Context, id string) ([]Line, error) {
	var out struct {
		Data []Line `json:"data"`
	}
	err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%s/lines", c.path, id), nil, nil, &out)
	return out.Data, err
}

// Approve marks one line approved, with an optional remark.
func (c *Client) Approve(ctx context.Context, id, lineID, remark string) error {
	payload := map[string]string{"remark": remark}
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("%s/%s/lines/%s/approve", c.path, id, lineID), nil, payload, nil)
}

// Reject marks one line rejected. The server requires a remark; the check
// runs client-side so no request is issued without one.
func (c *Client) Reject(ctx context.Context, id, lineID, remark string) error {
	if remark == "" {
		return ErrRemarkRequired
	}
	payload := map[string]string{"remark": remark}
	return c.api.Do(ctx, http.MethodPost, fmt.Sprintf("%s/%s/lines/%s/reject", c.path, id, lineID), nil, payload, nil)
}

// Revisions fetches the document's revision history.
func (c *Client) Revisions(ctx context.Context, id string) ([]Revision, error) {
	var out struct {
		Data []Revision `json:"data"`
	}
	err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("%s/%s/revisions", c.path, id), nil, nil, &out)
	return out.Data, err
}
