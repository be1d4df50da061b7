package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathstudent/internal/progress"
	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/screens/badgecase"
	"github.com/abhisek/mathstudent/internal/screens/history"
	sessionscreen "github.com/abhisek/mathstudent/internal/screens/session"
	"github.com/abhisek/mathstudent/internal/screens/sharecode"
	"github.com/abhisek/mathstudent/internal/shuffle"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/components"
	"github.com/abhisek/mathstudent/internal/ui/layout"
)

// startSessionMsg asks the home screen to open a session.
type startSessionMsg struct {
	BlockID string
	Level   int
}

// HomeScreen is the dashboard: one entry per catalog block followed by
// the navigation entries.
type HomeScreen struct {
	trainer *trainer.Trainer
	events  store.EventRepo // optional
	rng     shuffle.Rand

	dash   trainer.Dashboard
	menu   components.Menu
	levels map[string]int // selected level per block, starred mode only
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen. events may be nil, in which case the
// history entry is disabled.
func New(tr *trainer.Trainer, events store.EventRepo, rng shuffle.Rand) *HomeScreen {
	h := &HomeScreen{
		trainer: tr,
		events:  events,
		rng:     rng,
		levels:  make(map[string]int),
	}
	h.Refresh()
	h.menu = components.NewMenu(h.menuItems())
	return h
}

// Refresh reloads the dashboard from the trainer.
func (h *HomeScreen) Refresh() {
	h.dash = h.trainer.Dashboard()
	for _, b := range h.dash.Blocks {
		if lv, ok := h.levels[b.ID]; !ok || lv > b.UnlockedLevel {
			h.levels[b.ID] = b.UnlockedLevel
		}
	}
	h.menu.SetItems(h.menuItems())
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	var items []components.MenuItem
	for _, b := range h.dash.Blocks {
		id := b.ID
		items = append(items, components.MenuItem{
			Label:  b.Icon + " " + b.Title,
			Detail: blockDetail(b, h.dash.Mode),
			Action: func() tea.Cmd {
				return func() tea.Msg { return startSessionMsg{BlockID: id, Level: h.levels[id]} }
			},
		})
	}
	items = append(items,
		components.MenuItem{Label: "BADGES", Action: func() tea.Cmd {
			return push(badgecase.New(h.trainer))
		}},
		components.MenuItem{Label: "HISTORY", Disabled: h.events == nil, Action: func() tea.Cmd {
			return push(history.New(h.events, h.trainer.Catalog()))
		}},
		components.MenuItem{Label: "SHARE CODE", Action: func() tea.Cmd {
			return push(sharecode.New(h.trainer))
		}},
		components.MenuItem{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	)
	return items
}

func push(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Dashboard"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
	}
	if h.dash.Mode == progress.ModeStarred {
		hints = append(hints, layout.KeyHint{Key: "←→", Description: "Level"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// selectedBlock returns the block under the cursor, if any.
func (h *HomeScreen) selectedBlock() (trainer.BlockSummary, bool) {
	if h.menu.Selected < len(h.dash.Blocks) {
		return h.dash.Blocks[h.menu.Selected], true
	}
	return trainer.BlockSummary{}, false
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startSessionMsg:
		if _, err := h.trainer.StartSession(context.Background(), msg.BlockID, msg.Level); err != nil {
			// The trainer already raised a notice.
			return h, nil
		}
		return h, push(sessionscreen.New(h.trainer, h.rng))

	case tea.KeyMsg:
		if h.dash.Mode == progress.ModeStarred {
			if b, ok := h.selectedBlock(); ok {
				switch msg.String() {
				case "left", "h":
					h.levels[b.ID] = max(h.levels[b.ID]-1, 1)
					return h, nil
				case "right", "l":
					h.levels[b.ID] = min(h.levels[b.ID]+1, b.UnlockedLevel)
					return h, nil
				}
			}
		}
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	sections := []string{renderTitle(cw)}
	if !layout.IsCompactHeight(height) {
		sections = append(sections, renderStatsBar(h.dash, len(h.trainer.Badges()), cw))
	}
	sections = append(sections, h.menu.View())

	if b, ok := h.selectedBlock(); ok {
		detail := renderProgress(b, cw)
		if h.dash.Mode == progress.ModeStarred {
			detail = renderLevels(b, h.levels[b.ID], cw) + "\n" + detail
		}
		sections = append(sections, detail)
	}

	return renderFrame(strings.Join(sections, "\n\n"), width, height)
}
