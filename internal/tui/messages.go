package tui

import "github.com/fieldgrid/fieldgrid-console/internal/list"

// toastMsg carries a transient notification into the event loop.
type toastMsg struct {
	kind    list.ToastKind
	message string
}

// dialogMsg opens a blocking dialog.
type dialogMsg struct {
	dialog list.Dialog
}

// inlineMsg sets or clears the inline page message.
type inlineMsg struct {
	message string
}

// confirmMsg asks the operator a yes/no question; the answer goes back on
// reply so the calling goroutine can continue.
type confirmMsg struct {
	title string
	body  string
	reply chan<- bool
}

// refreshMsg tells the active screen to re-snapshot its controller.
type refreshMsg struct{}

// countsMsg delivers the per-entity record counts shown on the menu.
type countsMsg struct {
	counts map[string]int
}

// tickMsg drives toast expiry.
type tickMsg struct{}
