package catalog

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
)

var validate = validator.New()

// ValidateDraft checks a modal draft against the entity's field specs
// before any request is issued. Failures list every offending field.
func (e Entity) ValidateDraft(draft api.Record, editing bool) error {
	var problems []string
	for _, f := range e.Fields {
		value := draft.String(f.Key)
		if f.Required {
			if err := validate.Var(value, "required"); err != nil {
				problems = append(problems, f.Label+" is required")
				continue
			}
		}
		if value == "" {
			continue
		}
		switch f.Kind {
		case FieldNumber:
			if err := validate.Var(value, "numeric"); err != nil {
				problems = append(problems, f.Label+" must be a number")
			}
		case FieldSelect:
			if len(f.Options) > 0 {
				if err := validate.Var(value, "oneof="+strings.Join(f.Options, " ")); err != nil {
					problems = append(problems, f.Label+" must be one of "+strings.Join(f.Options, ", "))
				}
			}
		}
	}
	if len(problems) > 0 {
		// Surfaced inline in the form, so no package prefix.
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
