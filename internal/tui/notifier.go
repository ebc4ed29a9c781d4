package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fieldgrid/fieldgrid-console/internal/list"
)

// notifier bridges controller notifications into the bubbletea event loop.
// Confirm blocks the calling command goroutine until the operator answers.
type notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func newNotifier() *notifier {
	return &notifier{}
}

// attach wires the running program's Send. Messages raised before attach
// are dropped, which only happens before the first frame.
func (n *notifier) attach(send func(tea.Msg)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = send
}

func (n *notifier) post(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (n *notifier) Toast(kind list.ToastKind, message string) {
	n.post(toastMsg{kind: kind, message: message})
}

func (n *notifier) Dialog(d list.Dialog) {
	n.post(dialogMsg{dialog: d})
}

func (n *notifier) Inline(message string) {
	n.post(inlineMsg{message: message})
}

func (n *notifier) Confirm(title, body string) bool {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send == nil {
		return false
	}
	reply := make(chan bool, 1)
	send(confirmMsg{title: title, body: body, reply: reply})
	return <-reply
}
