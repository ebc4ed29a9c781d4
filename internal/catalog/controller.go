package catalog

import (
	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/list"
)

// ControllerConfig maps the entity onto the generic list controller
// configuration.
func (e Entity) ControllerConfig(limit int) list.Config {
	cfg := list.Config{
		Title:          e.Title,
		ExportPrefix:   e.ExportPrefix,
		Limit:          limit,
		SearchEnabled:  e.Search,
		FilterEnabled:  len(e.FilterFields) > 0,
		FilterFields:   e.FilterFields,
		StatusCarry:    e.StatusCarry,
		SearchDebounce: e.SearchDebounce,
	}
	if len(e.Fields) > 0 {
		cfg.Validate = e.ValidateDraft
	}
	return cfg
}

// NewController builds a ready list controller for this entity.
func (e Entity) NewController(client *api.Client, notify list.Notifier, limit int, opts ...list.Option) *list.Controller {
	return list.New(e.ControllerConfig(limit), client.Collection(e.Path), notify, opts...)
}
