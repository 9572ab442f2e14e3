package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/datawhiz/whiz/internal/models"
)

// landingView is the start screen: a greeting plus the chat list, shown
// whenever no chat is focused.
type landingView struct {
	root     *Model
	selected int // index into the chat list
}

func newLandingView(root *Model) *landingView {
	return &landingView{root: root}
}

func (v *landingView) Init() tea.Cmd { return nil }

func (v *landingView) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	chats := v.root.sess.Chats()
	switch key.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j", "tab":
		if v.selected < len(chats)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(chats) {
			v.root.coordinator.Select(chats[v.selected].ID)
		}
	case "d":
		if v.selected < len(chats) {
			v.root.coordinator.Delete(chats[v.selected].ID)
			if v.selected > 0 {
				v.selected--
			}
		}
	}
	return nil
}

func (v *landingView) View(width, height int) string {
	chats := v.root.sess.Chats()
	if v.selected >= len(chats) {
		v.selected = 0
	}

	title := landingTitleStyle.Render("Chat with your data")
	hint := landingHintStyle.Render("Press n to start a new chat.")

	lines := []string{title, hint, ""}
	for i, chat := range chats {
		style := sidebarItemStyle
		marker := "  "
		if i == v.selected {
			style = sidebarSelectedStyle
			marker = "> "
		}
		lines = append(lines, style.Render(marker+chat.Title))
		if preview := chatPreview(chat); preview != "" {
			lines = append(lines, sidebarPreviewStyle.Render("    "+preview))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// chatPreview is the sidebar summary of a chat: its most recent message,
// truncated to keep the list compact.
func chatPreview(chat models.Chat) string {
	last, ok := chat.LastMessage()
	if !ok {
		return ""
	}
	return truncateRunes(last.Text, previewRuneLimit)
}

const previewRuneLimit = 48

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
