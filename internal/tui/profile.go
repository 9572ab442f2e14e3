package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/datawhiz/whiz/internal/api"
	"github.com/datawhiz/whiz/internal/models"
)

type profileMode int

const (
	profileModeShow profileMode = iota
	profileModePassword
	profileModeConfirmDelete
)

// profileView shows the account: fetched profile fields plus the
// change-password and delete-account flows.
type profileView struct {
	root *Model

	profile *models.Profile
	loading bool
	errText string
	notice  string

	mode       profileMode
	pwInputs   [3]textinput.Model // old, new, confirm
	pwFocus    int
	signingOut bool
}

func newProfileView(root *Model) *profileView {
	labels := [3]string{"Current password", "New password", "Confirm new password"}
	var inputs [3]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Placeholder = labels[i]
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		inputs[i] = in
	}
	return &profileView{root: root, pwInputs: inputs}
}

func (v *profileView) Init() tea.Cmd { return nil }

// load fetches the profile; called when the view is opened.
func (v *profileView) load() tea.Cmd {
	v.loading = true
	v.errText = ""
	v.notice = ""
	client := v.root.client
	return func() tea.Msg {
		profile, err := client.Profile(context.Background())
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (v *profileView) editorFocused() bool {
	return v.mode != profileModeShow
}

func (v *profileView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case profileLoadedMsg:
		v.loading = false
		if typed.err != nil {
			v.errText = api.UserMessage(typed.err, "failed to load profile")
			return nil
		}
		v.profile = typed.profile
		if typed.profile.AvatarURL != "" {
			_ = v.root.creds.SetAvatar(typed.profile.AvatarURL)
		}
		return nil

	case passwordChangedMsg:
		if typed.err != nil {
			v.errText = api.UserMessage(typed.err, "failed to change password")
			return nil
		}
		v.mode = profileModeShow
		v.notice = "Password changed."
		v.resetPasswordForm()
		return nil

	case accountDeletedMsg:
		if typed.err != nil {
			v.errText = api.UserMessage(typed.err, "failed to delete account")
			return nil
		}
		_ = v.root.creds.Clear()
		return tea.Quit

	case tea.KeyMsg:
		return v.handleKey(typed)
	}
	return nil
}

func (v *profileView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case profileModePassword:
		return v.handlePasswordKey(msg)
	case profileModeConfirmDelete:
		switch msg.String() {
		case "y":
			client := v.root.client
			return func() tea.Msg {
				return accountDeletedMsg{err: client.DeleteAccount(context.Background())}
			}
		case "n", "esc":
			v.mode = profileModeShow
		}
		return nil
	}

	switch msg.String() {
	case "c":
		v.mode = profileModePassword
		v.errText = ""
		v.notice = ""
		v.pwFocus = 0
		return v.focusPasswordField(0)
	case "D":
		v.mode = profileModeConfirmDelete
		return nil
	case "s":
		if v.signingOut {
			return nil
		}
		v.signingOut = true
		_ = v.root.creds.Clear()
		return tea.Quit
	}
	return nil
}

func (v *profileView) handlePasswordKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.mode = profileModeShow
		v.resetPasswordForm()
		return nil
	case "tab", "down":
		return v.focusPasswordField((v.pwFocus + 1) % len(v.pwInputs))
	case "shift+tab", "up":
		return v.focusPasswordField((v.pwFocus + len(v.pwInputs) - 1) % len(v.pwInputs))
	case "enter":
		if v.pwFocus < len(v.pwInputs)-1 {
			return v.focusPasswordField(v.pwFocus + 1)
		}
		return v.submitPasswordChange()
	}

	var cmd tea.Cmd
	v.pwInputs[v.pwFocus], cmd = v.pwInputs[v.pwFocus].Update(msg)
	return cmd
}

func (v *profileView) submitPasswordChange() tea.Cmd {
	oldPw := v.pwInputs[0].Value()
	newPw := v.pwInputs[1].Value()
	confirm := v.pwInputs[2].Value()

	if oldPw == "" || newPw == "" {
		v.errText = "All password fields are required."
		return nil
	}
	if newPw != confirm {
		v.errText = "New passwords do not match."
		return nil
	}

	v.errText = ""
	client := v.root.client
	return func() tea.Msg {
		return passwordChangedMsg{err: client.ChangePassword(context.Background(), oldPw, newPw, confirm)}
	}
}

func (v *profileView) focusPasswordField(i int) tea.Cmd {
	v.pwFocus = i
	var cmd tea.Cmd
	for j := range v.pwInputs {
		if j == i {
			cmd = v.pwInputs[j].Focus()
		} else {
			v.pwInputs[j].Blur()
		}
	}
	return cmd
}

func (v *profileView) resetPasswordForm() {
	for i := range v.pwInputs {
		v.pwInputs[i].SetValue("")
		v.pwInputs[i].Blur()
	}
	v.pwFocus = 0
}

func (v *profileView) View(width, height int) string {
	var lines []string

	switch {
	case v.loading:
		lines = append(lines, "Loading profile...")
	case v.profile != nil:
		p := v.profile
		lines = append(lines,
			landingTitleStyle.Render(p.DisplayName()),
			profileLabelStyle.Render("Username")+p.Username,
			profileLabelStyle.Render("Email")+p.Email,
		)
		if p.DateJoined != "" {
			lines = append(lines, profileLabelStyle.Render("Joined")+p.DateJoined)
		}
	default:
		lines = append(lines, "Profile unavailable.")
	}

	switch v.mode {
	case profileModePassword:
		lines = append(lines, "", landingHintStyle.Render("Change password"))
		for i := range v.pwInputs {
			lines = append(lines, v.pwInputs[i].View())
		}
	case profileModeConfirmDelete:
		lines = append(lines, "", errorStyle.Render("Delete this account and all its data? (y/n)"))
	}

	if v.notice != "" {
		lines = append(lines, "", noticeStyle.Render(v.notice))
	}
	if v.errText != "" {
		lines = append(lines, "", errorStyle.Render(v.errText))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

func (v *profileView) footerHints() string {
	switch v.mode {
	case profileModePassword:
		return "tab next field • enter submit • esc cancel"
	case profileModeConfirmDelete:
		return "y confirm • n cancel"
	}
	return "c change password • D delete account • s sign out • esc back • q quit"
}
