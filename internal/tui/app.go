// Package tui implements the whiz terminal user interface on top of the
// session coordinator. The coordinator owns all chat state; the TUI holds
// only render state and turns store notifications into frames.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/datawhiz/whiz/internal/api"
	"github.com/datawhiz/whiz/internal/config"
	"github.com/datawhiz/whiz/internal/credentials"
	"github.com/datawhiz/whiz/internal/logging"
	"github.com/datawhiz/whiz/internal/session"
)

// Config carries the dependencies the TUI needs to run.
type Config struct {
	App         *config.Config
	Client      *api.Client
	Credentials *credentials.Store
}

// Run starts the TUI and blocks until the user quits.
func Run(cfg Config) error {
	model, err := NewModel(cfg)
	if err != nil {
		return err
	}
	defer model.Close()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

// Model is the root bubbletea model. It routes messages to the view
// matching the session's current view state.
type Model struct {
	coordinator *session.Coordinator
	client      *api.Client
	creds       *credentials.Store

	sess      session.Session
	sessionCh <-chan session.Session
	unsub     func()

	landing *landingView
	chat    *chatView
	profile *profileView

	width  int
	height int
}

// NewModel wires the coordinator, store subscription, and views.
func NewModel(cfg Config) (*Model, error) {
	if cfg.Client == nil || cfg.Credentials == nil {
		return nil, fmt.Errorf("tui requires an API client and credential store")
	}

	timing := session.DefaultTiming()
	if cfg.App != nil {
		timing = session.Timing{
			TickInterval:    cfg.App.Upload.TickInterval,
			ProgressStep:    cfg.App.Upload.ProgressStep,
			ExtractionDelay: cfg.App.Upload.ExtractionDelay,
		}
	}

	store := session.NewStore(session.New())
	coordinator := session.NewCoordinator(store, cfg.Client, timing)
	sessionCh, unsub := store.Subscribe()

	m := &Model{
		coordinator: coordinator,
		client:      cfg.Client,
		creds:       cfg.Credentials,
		sess:        store.Snapshot(),
		sessionCh:   sessionCh,
		unsub:       unsub,
	}
	m.landing = newLandingView(m)
	m.chat = newChatView(m)
	m.profile = newProfileView(m)

	logger := logging.Component("tui")
	logger.Debug().Msg("tui initialized")
	return m, nil
}

// Close releases the store subscription and waits for in-flight uploads.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.coordinator.Wait()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		listenSession(m.sessionCh),
		m.chat.Init(),
		m.profile.Init(),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.chat.resize(typed.Width, typed.Height)
		return m, nil

	case sessionChangedMsg:
		m.sess = session.Session(typed)
		m.chat.sessionChanged(m.sess)
		return m, listenSession(m.sessionCh)

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	return m, m.activeView().Update(msg)
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}
	body := m.activeView().View(m.width, contentHeight)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

type viewModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(width, height int) string
}

func (m *Model) activeView() viewModel {
	switch m.sess.View() {
	case session.ViewChat:
		return m.chat
	case session.ViewProfile:
		return m.profile
	default:
		return m.landing
	}
}

// handleGlobalKey handles keys that work in every view. Keys are ignored
// while a text editor (composer, rename, upload prompt, password form)
// has focus so typing never triggers navigation.
func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.editorFocused() {
		return nil, false
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit, true
	case "n":
		m.coordinator.NewChat()
		return nil, true
	case "p":
		if m.sess.View() != session.ViewProfile {
			m.coordinator.ShowProfile()
			return m.profile.load(), true
		}
		return nil, true
	case "esc":
		if m.sess.View() != session.ViewLanding {
			m.coordinator.ShowLanding()
			return nil, true
		}
		return nil, false
	}
	return nil, false
}

func (m *Model) editorFocused() bool {
	switch m.sess.View() {
	case session.ViewChat:
		return m.chat.editorFocused()
	case session.ViewProfile:
		return m.profile.editorFocused()
	default:
		return false
	}
}

func (m *Model) renderHeader() string {
	title := headerStyle.Render("whiz")
	account := headerDimStyle.Render(m.creds.Email())
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(account)
	if gap < 1 {
		gap = 1
	}
	return title + lipgloss.NewStyle().Width(gap).Render("") + account
}

func (m *Model) renderFooter() string {
	var hints string
	switch m.sess.View() {
	case session.ViewChat:
		hints = m.chat.footerHints()
	case session.ViewProfile:
		hints = m.profile.footerHints()
	default:
		hints = "n new chat • enter open • p profile • q quit"
	}
	return footerStyle.Render(hints)
}
