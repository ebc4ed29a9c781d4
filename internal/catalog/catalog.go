// Package catalog declares the master-data entities the console manages.
// Each entity is pure configuration; the generic list controller is
// instantiated from it, collapsing what used to be one hand-written screen
// per collection into a single declarative table.
package catalog

import (
	"sort"
	"time"
)

// FieldKind constrains how a draft field is validated and edited.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldSelect FieldKind = "select"
)

// Field describes one editable field of an entity.
type Field struct {
	Key      string
	Label    string
	Kind     FieldKind
	Required bool
	Options  []string
}

// Column describes one table column.
type Column struct {
	Key   string
	Title string
	Width int
}

// Entity is the declarative configuration for one collection.
type Entity struct {
	Name         string // registry key
	Title        string // singular display name
	Path         string // REST collection path segment
	ExportPrefix string

	Search         bool
	SearchDebounce time.Duration
	FilterFields   []string
	StatusToggle   bool
	StatusCarry    []string
	BulkUpload     bool
	UploadHeaders  []string
	Export         bool
	Workflow       bool

	Columns []Column
	Fields  []Field
}

// Registry returns all managed entities in menu order.
func Registry() []Entity {
	return registry
}

// Lookup finds an entity by name.
func Lookup(name string) (Entity, bool) {
	for _, e := range registry {
		if e.Name == name {
			return e, true
		}
	}
	return Entity{}, false
}

// Names returns the registry keys sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

var registry = []Entity{
	{
		Name: "equipment", Title: "Equipment", Path: "equipment", ExportPrefix: "equipment",
		Search: true, FilterFields: []string{"materialgroup", "status"},
		StatusToggle: true, StatusCarry: []string{"name"},
		BulkUpload: true, UploadHeaders: []string{"materialcode", "name", "materialgroup"}, Export: true,
		Columns: []Column{
			{Key: "materialcode", Title: "Material Code", Width: 16},
			{Key: "name", Title: "Name", Width: 28},
			{Key: "materialgroup", Title: "Group", Width: 14},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "materialcode", Label: "Material Code", Kind: FieldText, Required: true},
			{Key: "name", Label: "Name", Kind: FieldText, Required: true},
			{Key: "materialgroup", Label: "Material Group", Kind: FieldText},
		},
	},
	{
		Name: "customers", Title: "Customer", Path: "customers", ExportPrefix: "customers",
		Search: true, FilterFields: []string{"region", "city", "status"},
		StatusToggle: true, StatusCarry: []string{"customername"},
		BulkUpload: true, UploadHeaders: []string{"customercode", "customername", "region", "city"}, Export: true,
		Columns: []Column{
			{Key: "customercode", Title: "Code", Width: 12},
			{Key: "customername", Title: "Customer", Width: 28},
			{Key: "region", Title: "Region", Width: 12},
			{Key: "city", Title: "City", Width: 14},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "customercode", Label: "Customer Code", Kind: FieldText, Required: true},
			{Key: "customername", Label: "Customer Name", Kind: FieldText, Required: true},
			{Key: "region", Label: "Region", Kind: FieldText, Required: true},
			{Key: "city", Label: "City", Kind: FieldText},
			{Key: "telephone", Label: "Telephone", Kind: FieldNumber},
		},
	},
	{
		Name: "dealers", Title: "Dealer", Path: "dealers", ExportPrefix: "dealers",
		Search: true, FilterFields: []string{"dealercity", "status"},
		StatusToggle: true, StatusCarry: []string{"name"},
		BulkUpload: true, UploadHeaders: []string{"dealercode", "name", "dealercity"}, Export: true,
		Columns: []Column{
			{Key: "dealercode", Title: "Code", Width: 12},
			{Key: "name", Title: "Dealer", Width: 28},
			{Key: "dealercity", Title: "City", Width: 14},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "dealercode", Label: "Dealer Code", Kind: FieldText, Required: true},
			{Key: "name", Label: "Dealer Name", Kind: FieldText, Required: true},
			{Key: "dealercity", Label: "City", Kind: FieldText},
		},
	},
	{
		Name: "warranty-codes", Title: "Warranty Code", Path: "warranty-codes", ExportPrefix: "warranty_codes",
		Search: true, StatusToggle: true, StatusCarry: []string{"warrantycode"}, Export: true,
		Columns: []Column{
			{Key: "warrantycode", Title: "Code", Width: 12},
			{Key: "description", Title: "Description", Width: 36},
			{Key: "months", Title: "Months", Width: 8},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "warrantycode", Label: "Warranty Code", Kind: FieldText, Required: true},
			{Key: "description", Label: "Description", Kind: FieldText, Required: true},
			{Key: "months", Label: "Months", Kind: FieldNumber, Required: true},
		},
	},
	{
		Name: "spares", Title: "Spare", Path: "spares", ExportPrefix: "spares",
		Search: true, FilterFields: []string{"subgroup", "status"},
		StatusToggle: true, StatusCarry: []string{"description"},
		BulkUpload: true, UploadHeaders: []string{"materialcode", "description", "subgroup", "rate"}, Export: true,
		Columns: []Column{
			{Key: "materialcode", Title: "Material Code", Width: 16},
			{Key: "description", Title: "Description", Width: 30},
			{Key: "subgroup", Title: "Subgroup", Width: 12},
			{Key: "rate", Title: "Rate", Width: 10},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "materialcode", Label: "Material Code", Kind: FieldText, Required: true},
			{Key: "description", Label: "Description", Kind: FieldText, Required: true},
			{Key: "subgroup", Label: "Subgroup", Kind: FieldText},
			{Key: "rate", Label: "Rate", Kind: FieldNumber, Required: true},
		},
	},
	{
		Name: "format-masters", Title: "Format Master", Path: "format-masters", ExportPrefix: "format_masters",
		Search: true, StatusToggle: true, StatusCarry: []string{"name"}, Export: true,
		Columns: []Column{
			{Key: "name", Title: "Name", Width: 28},
			{Key: "formatno", Title: "Format No", Width: 14},
			{Key: "revision", Title: "Revision", Width: 10},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "name", Label: "Name", Kind: FieldText, Required: true},
			{Key: "formatno", Label: "Format No", Kind: FieldText, Required: true},
			{Key: "revision", Label: "Revision", Kind: FieldText},
		},
	},
	{
		Name: "branches", Title: "Branch", Path: "branches", ExportPrefix: "branches",
		Search: true, FilterFields: []string{"region", "state", "status"},
		StatusToggle: true, StatusCarry: []string{"name"}, Export: true,
		Columns: []Column{
			{Key: "branchcode", Title: "Code", Width: 10},
			{Key: "name", Title: "Branch", Width: 26},
			{Key: "region", Title: "Region", Width: 12},
			{Key: "state", Title: "State", Width: 14},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "branchcode", Label: "Branch Code", Kind: FieldText, Required: true},
			{Key: "name", Label: "Branch Name", Kind: FieldText, Required: true},
			{Key: "region", Label: "Region", Kind: FieldText, Required: true},
			{Key: "state", Label: "State", Kind: FieldText, Required: true},
		},
	},
	{
		Name: "regions", Title: "Region", Path: "regions", ExportPrefix: "regions",
		Search: true, StatusToggle: true, StatusCarry: []string{"name"}, Export: true,
		Columns: []Column{
			{Key: "name", Title: "Region", Width: 24},
			{Key: "code", Title: "Code", Width: 10},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "name", Label: "Region Name", Kind: FieldText, Required: true},
			{Key: "code", Label: "Code", Kind: FieldText},
		},
	},
	{
		// Deleting or deactivating a state the server still references is
		// rejected with a linked users/branches payload.
		Name: "states", Title: "State", Path: "states", ExportPrefix: "states",
		Search: true, StatusToggle: true, StatusCarry: []string{"name"}, Export: true,
		Columns: []Column{
			{Key: "name", Title: "State", Width: 24},
			{Key: "region", Title: "Region", Width: 14},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "name", Label: "State Name", Kind: FieldText, Required: true},
			{Key: "region", Label: "Region", Kind: FieldText, Required: true},
		},
	},
	{
		Name: "cities", Title: "City", Path: "cities", ExportPrefix: "cities",
		Search: true, FilterFields: []string{"state", "status"},
		StatusToggle: true, StatusCarry: []string{"name"},
		BulkUpload: true, UploadHeaders: []string{"name", "state"}, Export: true,
		Columns: []Column{
			{Key: "name", Title: "City", Width: 22},
			{Key: "state", Title: "State", Width: 16},
			{Key: "status", Title: "Status", Width: 10},
		},
		Fields: []Field{
			{Key: "name", Label: "City Name", Kind: FieldText, Required: true},
			{Key: "state", Label: "State", Kind: FieldText, Required: true},
		},
	},
	{
		Name: "activity-logs", Title: "Activity Log", Path: "activity-logs", ExportPrefix: "activity_logs",
		Search: true, SearchDebounce: 500 * time.Millisecond,
		FilterFields: []string{"module", "action", "user"},
		Columns: []Column{
			{Key: "createdAt", Title: "When", Width: 20},
			{Key: "user", Title: "User", Width: 18},
			{Key: "module", Title: "Module", Width: 14},
			{Key: "action", Title: "Action", Width: 12},
			{Key: "detail", Title: "Detail", Width: 32},
		},
	},
	{
		Name: "proposals", Title: "Proposal", Path: "proposals", ExportPrefix: "proposals",
		Search: true, FilterFields: []string{"status", "region"}, Export: true, Workflow: true,
		Columns: []Column{
			{Key: "proposalno", Title: "Proposal No", Width: 16},
			{Key: "customername", Title: "Customer", Width: 24},
			{Key: "discount", Title: "Discount", Width: 10},
			{Key: "status", Title: "Status", Width: 14},
		},
	},
	{
		Name: "oncall-orders", Title: "On-Call Order", Path: "oncall-orders", ExportPrefix: "oncall_orders",
		Search: true, FilterFields: []string{"status", "region"}, Export: true, Workflow: true,
		Columns: []Column{
			{Key: "orderno", Title: "Order No", Width: 16},
			{Key: "customername", Title: "Customer", Width: 24},
			{Key: "spares", Title: "Spares", Width: 10},
			{Key: "status", Title: "Status", Width: 14},
		},
	},
}
