package list

// ToastKind classifies a transient notification.
type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastInfo    ToastKind = "info"
)

// Dialog is a blocking notification, used for destructive-action outcomes
// and relationship-blocker detail.
type Dialog struct {
	Title string
	Body  string
	Error bool
}

// Notifier is the controller's outbound notification port. The terminal UI
// implements it; tests record calls. Three channels mirror how the screens
// signal errors: transient toasts, blocking dialogs and inline page messages.
type Notifier interface {
	Toast(kind ToastKind, message string)
	Dialog(d Dialog)
	Inline(message string)
	Confirm(title, body string) bool
}
