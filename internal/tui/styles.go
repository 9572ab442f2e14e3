package tui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	headerDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Padding(0, 1)

	sidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(lipgloss.Color("238")).
			PaddingRight(1)

	sidebarItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252"))

	sidebarSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	sidebarPreviewStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("241"))

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	botLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	attachmentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	landingTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				MarginBottom(1)

	landingHintStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("248"))

	profileLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Width(10)
)
