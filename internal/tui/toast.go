package tui

import (
	"time"

	"github.com/fieldgrid/fieldgrid-console/internal/list"
)

const toastLifetime = 4 * time.Second

type toast struct {
	kind     list.ToastKind
	message  string
	deadline time.Time
}

// pruneToasts drops expired toasts and reports whether any remain.
func pruneToasts(toasts []toast, now time.Time) []toast {
	kept := toasts[:0]
	for _, t := range toasts {
		if now.Before(t.deadline) {
			kept = append(kept, t)
		}
	}
	return kept
}

func renderToast(t toast) string {
	switch t.kind {
	case list.ToastSuccess:
		return toastSuccessStyle.Render("✓ " + t.message)
	case list.ToastError:
		return toastErrorStyle.Render("✗ " + t.message)
	default:
		return toastInfoStyle.Render("ℹ " + t.message)
	}
}
