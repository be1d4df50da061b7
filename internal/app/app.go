package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstudent/internal/router"
	"github.com/abhisek/mathstudent/internal/screen"
	"github.com/abhisek/mathstudent/internal/screens/home"
	"github.com/abhisek/mathstudent/internal/shuffle"
	"github.com/abhisek/mathstudent/internal/store"
	"github.com/abhisek/mathstudent/internal/trainer"
	"github.com/abhisek/mathstudent/internal/ui/layout"
)

// noticeTick is how often the model re-renders so expired notices disappear.
const noticeTick = time.Second

// Options configures the interactive app.
type Options struct {
	Trainer *trainer.Trainer
	Events  store.EventRepo // optional, enables the history screen
	Rand    shuffle.Rand    // optional, defaults to shuffle.Global
}

type tickMsg time.Time

// AppModel is the root Bubble Tea model.
type AppModel struct {
	trainer *trainer.Trainer
	router  *router.Router
	stats   layout.HeaderStats
	width   int
	height  int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	rng := opts.Rand
	if rng == nil {
		rng = shuffle.Global
	}
	m := AppModel{
		trainer: opts.Trainer,
		router:  router.New(home.New(opts.Trainer, opts.Events, rng)),
	}
	m.refreshStats()
	return m
}

func tick() tea.Cmd {
	return tea.Tick(noticeTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *AppModel) refreshStats() {
	d := m.trainer.Dashboard()
	m.stats = layout.HeaderStats{Streak: d.Streak, Badges: len(d.Badges)}
}

func (m AppModel) Init() tea.Cmd {
	return tick()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		return m, tick()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.trainer.Abandon(context.Background())
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	m.refreshStats()
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	v.SetContent(m.render())
	return v
}

// render composes the frame for the current window size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.stats, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)
	if notices := m.trainer.Notices(); len(notices) > 0 {
		n := notices[len(notices)-1]
		footer = layout.RenderNotice(string(n.Kind), n.Message, m.width) + "\n" + footer
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(m.height-headerHeight-footerHeight, 0)

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
