package tui

import (
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/datawhiz/whiz/internal/credentials"
	"github.com/datawhiz/whiz/internal/models"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestPasswordFormValidation(t *testing.T) {
	v := newProfileView(&Model{})

	v.mode = profileModePassword
	v.pwInputs[0].SetValue("")
	v.pwInputs[1].SetValue("new")
	v.pwInputs[2].SetValue("new")
	require.Nil(t, v.submitPasswordChange())
	require.Equal(t, "All password fields are required.", v.errText)

	v.pwInputs[0].SetValue("old")
	v.pwInputs[1].SetValue("new")
	v.pwInputs[2].SetValue("different")
	require.Nil(t, v.submitPasswordChange())
	require.Equal(t, "New passwords do not match.", v.errText)
}

func TestPasswordFormFocusCycle(t *testing.T) {
	v := newProfileView(&Model{})
	v.mode = profileModePassword
	_ = v.focusPasswordField(0)

	_ = v.handlePasswordKey(keyMsg("tab"))
	require.Equal(t, 1, v.pwFocus)
	_ = v.handlePasswordKey(keyMsg("tab"))
	require.Equal(t, 2, v.pwFocus)
	_ = v.handlePasswordKey(keyMsg("tab"))
	require.Equal(t, 0, v.pwFocus)
}

func TestEscCancelsPasswordForm(t *testing.T) {
	v := newProfileView(&Model{})
	v.mode = profileModePassword
	v.pwInputs[0].SetValue("secret")

	_ = v.handlePasswordKey(keyMsg("esc"))
	require.Equal(t, profileModeShow, v.mode)
	require.Empty(t, v.pwInputs[0].Value())
}

func TestProfileFetchCachesAvatar(t *testing.T) {
	dir := t.TempDir()
	creds, err := credentials.Open(filepath.Join(dir, "credentials.db"), filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)
	defer creds.Close()

	v := newProfileView(&Model{creds: creds})
	_ = v.Update(profileLoadedMsg{profile: &models.Profile{
		Username:  "ada",
		Email:     "ada@example.com",
		AvatarURL: "/media/avatars/ada.png",
	}})

	require.Equal(t, "/media/avatars/ada.png", creds.Avatar())
}

func TestDeleteConfirmCancel(t *testing.T) {
	v := newProfileView(&Model{})

	_ = v.handleKey(keyMsg("D"))
	require.Equal(t, profileModeConfirmDelete, v.mode)
	require.True(t, v.editorFocused())

	_ = v.handleKey(keyMsg("n"))
	require.Equal(t, profileModeShow, v.mode)
}
