// Package tui is the console's terminal UI: an entity menu, one generic
// list screen per collection, and overlay dialogs, toasts and inline
// messages driven by the list controller's notification port.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/sync/errgroup"

	"github.com/fieldgrid/fieldgrid-console/internal/api"
	"github.com/fieldgrid/fieldgrid-console/internal/app"
	"github.com/fieldgrid/fieldgrid-console/internal/catalog"
	"github.com/fieldgrid/fieldgrid-console/internal/list"
	"github.com/fieldgrid/fieldgrid-console/internal/session"
)

type pendingConfirm struct {
	title string
	body  string
	reply chan<- bool
}

// App is the root bubbletea model.
type App struct {
	cfg    *app.Config
	sess   *session.Session
	client *api.Client
	logger *slog.Logger
	notify *notifier

	entities []catalog.Entity
	counts   map[string]int
	menuIdx  int

	screens map[string]*listScreen
	active  *listScreen

	dialog  *list.Dialog
	confirm *pendingConfirm
	toasts  []toast
	inline  string

	width  int
	height int
}

// NewApp wires the root model.
func NewApp(cfg *app.Config, sess *session.Session, client *api.Client, logger *slog.Logger) *App {
	return &App{
		cfg:      cfg,
		sess:     sess,
		client:   client,
		logger:   logger,
		notify:   newNotifier(),
		entities: catalog.Registry(),
		counts:   map[string]int{},
		screens:  map[string]*listScreen{},
		width:    100,
		height:   30,
	}
}

// Run starts the program and blocks until exit.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	a.notify.attach(p.Send)
	_, err := p.Run()
	return err
}

// Init schedules the menu counts load and the toast expiry tick.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCounts(), tick())
}

// loadCounts fans out one single-row list request per entity so the menu
// can show record counts. The requests populate disjoint keys, so they run
// concurrently.
func (a *App) loadCounts() tea.Cmd {
	entities := a.entities
	client := a.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		var mu sync.Mutex
		counts := map[string]int{}
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, entity := range entities {
			g.Go(func() error {
				page, err := client.Collection(entity.Path).List(ctx, 1, 1)
				if err != nil {
					// Counts are cosmetic; the entity screen reports its
					// own load failures.
					return nil
				}
				mu.Lock()
				counts[entity.Name] = page.TotalCount
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
		return countsMsg{counts: counts}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg{} })
}

// Update is the single event-loop entry point.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil
	case tickMsg:
		a.toasts = pruneToasts(a.toasts, time.Now())
		return a, tick()
	case toastMsg:
		a.toasts = append(a.toasts, toast{kind: msg.kind, message: msg.message, deadline: time.Now().Add(toastLifetime)})
		return a, nil
	case dialogMsg:
		d := msg.dialog
		a.dialog = &d
		return a, nil
	case inlineMsg:
		a.inline = msg.message
		return a, nil
	case confirmMsg:
		a.confirm = &pendingConfirm{title: msg.title, body: msg.body, reply: msg.reply}
		return a, nil
	case countsMsg:
		for k, v := range msg.counts {
			a.counts[k] = v
		}
		return a, nil
	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	if a.active != nil {
		if cmd, handled := a.active.update(msg); handled {
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Overlays swallow all keys.
	if a.confirm != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			a.confirm.reply <- true
			a.confirm = nil
		case "n", "N", "esc":
			a.confirm.reply <- false
			a.confirm = nil
		}
		return a, nil
	}
	if a.dialog != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			a.dialog = nil
		}
		return a, nil
	}

	if a.active != nil {
		if cmd, handled := a.active.update(msg); handled {
			return a, cmd
		}
		switch msg.String() {
		case "esc":
			a.active = nil
			a.inline = ""
			return a, a.loadCounts()
		case "q", "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	// Menu keys.
	switch msg.String() {
	case "up", "k":
		if a.menuIdx > 0 {
			a.menuIdx--
		}
	case "down", "j":
		if a.menuIdx < len(a.entities)-1 {
			a.menuIdx++
		}
	case "enter":
		return a, a.openEntity(a.entities[a.menuIdx])
	case "q", "ctrl+c", "esc":
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) openEntity(entity catalog.Entity) tea.Cmd {
	screen, ok := a.screens[entity.Name]
	if !ok {
		ctrl := entity.NewController(a.client, a.notify, a.cfg.PageLimit,
			list.WithLogger(a.logger),
			list.WithExportDir(a.cfg.ExportDir),
		)
		screen = newListScreen(entity, ctrl, a.sess)
		a.screens[entity.Name] = screen
	}
	a.active = screen
	a.inline = ""
	return screen.initCmd()
}

// View renders the active screen with any overlay on top.
func (a *App) View() string {
	var b strings.Builder

	if a.active != nil {
		b.WriteString(a.active.view(a.width))
	} else {
		b.WriteString(a.menuView())
	}

	if a.inline != "" {
		b.WriteString("\n" + inlineErrStyle.Render(wordwrap.String(a.inline, max(20, a.width-4))))
	}
	for _, t := range a.toasts {
		b.WriteString("\n" + renderToast(t))
	}

	if a.confirm != nil {
		return a.overlay(a.confirm.title, a.confirm.body+"\n\n[y] confirm   [n] cancel", false)
	}
	if a.dialog != nil {
		return a.overlay(a.dialog.Title, a.dialog.Body+"\n\n[enter] close", a.dialog.Error)
	}
	return b.String()
}

func (a *App) overlay(title, body string, isErr bool) string {
	style := dialogStyle
	if isErr {
		style = dialogErrStyle
	}
	content := titleStyle.Render(title) + "\n\n" + wordwrap.String(body, max(30, a.width/2))
	return style.Render(content)
}

func (a *App) menuView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fieldgrid console"))
	b.WriteString(footerStyle.Render(fmt.Sprintf("   %s (%s)\n\n", a.sess.User.Name, a.sess.Role())))
	for i, entity := range a.entities {
		cursor := "  "
		if i == a.menuIdx {
			cursor = "> "
		}
		line := cursor + pad(entity.Title, 24)
		if count, ok := a.counts[entity.Name]; ok {
			line += footerStyle.Render(fmt.Sprintf("%d records", count))
		}
		if i == a.menuIdx {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + footerStyle.Render("↑/↓ move · enter open · q quit"))
	return b.String()
}
