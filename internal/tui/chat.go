package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/datawhiz/whiz/internal/api"
	"github.com/datawhiz/whiz/internal/models"
	"github.com/datawhiz/whiz/internal/session"
)

const sidebarWidth = 28

type chatFocus int

const (
	focusComposer chatFocus = iota
	focusSidebar
)

type chatMode int

const (
	modeNormal chatMode = iota
	modeRename
	modeUpload
)

// uploadTracker follows one running upload's event stream.
type uploadTracker struct {
	events   <-chan session.UploadEvent
	name     string
	progress int
}

// chatView renders the selected chat: sidebar, transcript, composer.
type chatView struct {
	root *Model

	composer textinput.Model
	rename   textinput.Model
	upload   textinput.Model
	spin     spinner.Model
	bar      progress.Model
	viewport viewport.Model

	focus   chatFocus
	mode    chatMode
	sending map[int]bool
	uploads map[int]*uploadTracker
	errs    map[int]string // last failure per chat, shown only while that chat is selected

	width  int
	height int
	ready  bool
}

func newChatView(root *Model) *chatView {
	composer := textinput.New()
	composer.Placeholder = "Ask a question about your data..."
	composer.CharLimit = 2000
	composer.Focus()

	rename := textinput.New()
	rename.Placeholder = "Chat title"
	rename.CharLimit = models.MaxTitleLength

	upload := textinput.New()
	upload.Placeholder = "Path to a .csv, .xlsx, or .json file"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	return &chatView{
		root:     root,
		composer: composer,
		rename:   rename,
		upload:   upload,
		spin:     sp,
		bar:      progress.New(progress.WithDefaultGradient()),
		sending:  make(map[int]bool),
		uploads:  make(map[int]*uploadTracker),
		errs:     make(map[int]string),
	}
}

func (v *chatView) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, v.spin.Tick)
}

func (v *chatView) editorFocused() bool {
	return v.mode != modeNormal || v.focus == focusComposer
}

func (v *chatView) resize(width, height int) {
	v.width = width
	v.height = height

	transcriptWidth := width - sidebarWidth - 3
	if transcriptWidth < 10 {
		transcriptWidth = 10
	}
	transcriptHeight := height - 6
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	if !v.ready {
		v.viewport = viewport.New(transcriptWidth, transcriptHeight)
		v.ready = true
	} else {
		v.viewport.Width = transcriptWidth
		v.viewport.Height = transcriptHeight
	}
	v.composer.Width = transcriptWidth - 4
	v.bar.Width = transcriptWidth - 4
	v.refreshTranscript()
}

// sessionChanged re-renders the transcript after any store mutation.
func (v *chatView) sessionChanged(sess session.Session) {
	for id := range v.sending {
		if _, ok := sess.Chat(id); !ok {
			delete(v.sending, id)
		}
	}
	for id := range v.errs {
		if _, ok := sess.Chat(id); !ok {
			delete(v.errs, id)
		}
	}
	v.refreshTranscript()
}

func (v *chatView) refreshTranscript() {
	if !v.ready {
		return
	}
	chat, ok := v.root.sess.SelectedChat()
	if !ok {
		v.viewport.SetContent("")
		return
	}
	v.viewport.SetContent(v.renderTranscript(chat))
	v.viewport.GotoBottom()
}

func (v *chatView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spin, cmd = v.spin.Update(typed)
		return cmd

	case progress.FrameMsg:
		model, cmd := v.bar.Update(typed)
		if bar, ok := model.(progress.Model); ok {
			v.bar = bar
		}
		return cmd

	case sendResultMsg:
		delete(v.sending, typed.chatID)
		if typed.err != nil {
			v.errs[typed.chatID] = api.UserMessage(typed.err, "failed to send message")
		}
		return nil

	case renameResultMsg:
		if typed.err != nil {
			v.errs[typed.chatID] = api.UserMessage(typed.err, "failed to rename chat")
		}
		return nil

	case uploadEventMsg:
		tracker, ok := v.uploads[typed.ChatID]
		if !ok {
			return nil
		}
		tracker.progress = typed.Progress
		return listenUpload(typed.ChatID, tracker.events)

	case uploadDoneMsg:
		delete(v.uploads, typed.chatID)
		return nil

	case tea.KeyMsg:
		return v.handleKey(typed)
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *chatView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case modeRename:
		return v.handleRenameKey(msg)
	case modeUpload:
		return v.handleUploadKey(msg)
	}

	if v.focus == focusComposer {
		return v.handleComposerKey(msg)
	}
	return v.handleSidebarKey(msg)
}

func (v *chatView) handleComposerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		return v.submit()
	case "tab":
		v.focus = focusSidebar
		v.composer.Blur()
		return nil
	case "esc":
		v.focus = focusSidebar
		v.composer.Blur()
		return nil
	}

	var cmd tea.Cmd
	v.composer, cmd = v.composer.Update(msg)
	return cmd
}

func (v *chatView) handleSidebarKey(msg tea.KeyMsg) tea.Cmd {
	chats := v.root.sess.Chats()
	selectedID, _ := v.root.sess.SelectedChatID()

	switch msg.String() {
	case "tab":
		v.focus = focusComposer
		return v.composer.Focus()
	case "up", "k":
		if i := chatIndex(chats, selectedID); i > 0 {
			v.root.coordinator.Select(chats[i-1].ID)
		}
		return nil
	case "down", "j":
		if i := chatIndex(chats, selectedID); i >= 0 && i < len(chats)-1 {
			v.root.coordinator.Select(chats[i+1].ID)
		}
		return nil
	case "enter":
		v.focus = focusComposer
		return v.composer.Focus()
	case "r":
		chat, ok := v.root.sess.SelectedChat()
		if !ok {
			return nil
		}
		v.mode = modeRename
		v.rename.SetValue(chat.Title)
		v.rename.CursorEnd()
		return v.rename.Focus()
	case "d":
		if selectedID != 0 {
			v.root.coordinator.Delete(selectedID)
		}
		return nil
	case "u":
		v.mode = modeUpload
		v.upload.SetValue("")
		return v.upload.Focus()
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return cmd
}

func (v *chatView) handleRenameKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		v.mode = modeNormal
		v.rename.Blur()
		chatID, ok := v.root.sess.SelectedChatID()
		if !ok {
			return nil
		}
		title, err := models.ValidateTitle(v.rename.Value())
		if err != nil {
			v.errs[chatID] = err.Error()
			return nil
		}
		delete(v.errs, chatID)
		return renameCmd(v.root.coordinator, chatID, title)
	case "esc":
		v.mode = modeNormal
		v.rename.Blur()
		return nil
	}

	var cmd tea.Cmd
	v.rename, cmd = v.rename.Update(msg)
	return cmd
}

func (v *chatView) handleUploadKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		v.mode = modeNormal
		v.upload.Blur()
		return v.startUpload(strings.TrimSpace(v.upload.Value()))
	case "esc":
		v.mode = modeNormal
		v.upload.Blur()
		return nil
	}

	var cmd tea.Cmd
	v.upload, cmd = v.upload.Update(msg)
	return cmd
}

// submit sends the composer text through the coordinator.
func (v *chatView) submit() tea.Cmd {
	chatID, ok := v.root.sess.SelectedChatID()
	if !ok {
		return nil
	}
	text := strings.TrimSpace(v.composer.Value())
	if text == "" {
		return nil
	}
	if v.sending[chatID] {
		return nil
	}

	v.composer.SetValue("")
	delete(v.errs, chatID)
	v.sending[chatID] = true
	return sendCmd(v.root.coordinator, chatID, text)
}

func (v *chatView) startUpload(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	chatID, ok := v.root.sess.SelectedChatID()
	if !ok {
		return nil
	}

	file, err := fileRefFromPath(path)
	if err != nil {
		v.errs[chatID] = err.Error()
		return nil
	}

	events, err := v.root.coordinator.StartUpload(chatID, file)
	if err != nil {
		v.errs[chatID] = err.Error()
		return nil
	}

	delete(v.errs, chatID)
	v.uploads[chatID] = &uploadTracker{events: events, name: file.Name}
	return listenUpload(chatID, events)
}

func (v *chatView) View(width, height int) string {
	sidebar := v.renderSidebar(height)
	main := v.renderMain(width-sidebarWidth-3, height)
	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
}

func (v *chatView) renderSidebar(height int) string {
	chats := v.root.sess.Chats()
	selectedID, _ := v.root.sess.SelectedChatID()

	var lines []string
	for _, chat := range chats {
		style := sidebarItemStyle
		marker := "  "
		if chat.ID == selectedID {
			style = sidebarSelectedStyle
			marker = "> "
		}

		title := chat.Title
		if chat.ID == selectedID && v.mode == modeRename {
			lines = append(lines, style.Render(marker)+v.rename.View())
			continue
		}
		lines = append(lines, style.Render(marker+truncateRunes(title, sidebarWidth-4)))
		if preview := chatPreview(chat); preview != "" {
			lines = append(lines, sidebarPreviewStyle.Render("    "+truncateRunes(preview, sidebarWidth-6)))
		}
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return sidebarStyle.Width(sidebarWidth).Height(height).Render(body)
}

func (v *chatView) renderMain(width, height int) string {
	chat, ok := v.root.sess.SelectedChat()
	if !ok {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			landingHintStyle.Render("No chat selected. Press n to start one."))
	}

	sections := []string{v.viewport.View()}

	chatID := chat.ID
	if tracker, running := v.uploads[chatID]; running {
		label := attachmentStyle.Render(fmt.Sprintf("Uploading %s ", tracker.name))
		sections = append(sections, label+v.bar.ViewAs(float64(tracker.progress)/100))
	}
	if v.sending[chatID] {
		sections = append(sections, v.spin.View()+" thinking...")
	}
	if errText := v.errs[chatID]; errText != "" {
		sections = append(sections, errorStyle.Render(errText))
	}

	var prompt string
	switch v.mode {
	case modeUpload:
		prompt = "Upload: " + v.upload.View()
	default:
		prompt = v.composer.View()
	}
	sections = append(sections, prompt)

	return lipgloss.NewStyle().PaddingLeft(1).Render(
		lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderTranscript formats the chat history for the viewport.
func (v *chatView) renderTranscript(chat models.Chat) string {
	var b strings.Builder
	for i, msg := range chat.Messages {
		if i > 0 {
			b.WriteString("\n")
		}

		label := botLabelStyle.Render("bot")
		if msg.Sender == models.SenderUser {
			label = userLabelStyle.Render("you")
		}
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = " " + timestampStyle.Render(msg.CreatedAt.Format("15:04"))
		}
		b.WriteString(label + stamp + "\n")
		b.WriteString(msg.Text + "\n")

		for _, att := range msg.Attachments {
			b.WriteString(attachmentStyle.Render("  📎 "+att.Filename) + "\n")
		}
	}
	return b.String()
}

func (v *chatView) footerHints() string {
	switch v.mode {
	case modeRename:
		return "enter save • esc cancel"
	case modeUpload:
		return "enter upload • esc cancel"
	}
	if v.focus == focusComposer {
		return "enter send • tab sidebar • esc unfocus"
	}
	return "tab compose • r rename • d delete • u upload • n new • p profile • esc landing • q quit"
}

func chatIndex(chats []models.Chat, id int) int {
	for i, chat := range chats {
		if chat.ID == id {
			return i
		}
	}
	return -1
}

// fileRefFromPath resolves an upload candidate on disk.
func fileRefFromPath(path string) (models.FileRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.FileRef{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return models.FileRef{}, fmt.Errorf("%s is a directory", path)
	}
	return models.FileRef{
		Name: filepath.Base(path),
		Path: path,
		Size: info.Size(),
	}, nil
}
