package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/datawhiz/whiz/internal/models"
	"github.com/datawhiz/whiz/internal/session"
)

// sessionChangedMsg delivers the latest session snapshot from the store
// subscription. Intermediate snapshots may be coalesced away; only the
// newest matters for rendering.
type sessionChangedMsg session.Session

// sendResultMsg reports completion of a message send.
type sendResultMsg struct {
	chatID int
	err    error
}

// renameResultMsg reports completion of a chat rename.
type renameResultMsg struct {
	chatID int
	err    error
}

// uploadEventMsg wraps one upload progress event.
type uploadEventMsg session.UploadEvent

// uploadDoneMsg signals that an upload's event stream has closed.
type uploadDoneMsg struct {
	chatID int
}

// profileLoadedMsg delivers the fetched account profile.
type profileLoadedMsg struct {
	profile *models.Profile
	err     error
}

// passwordChangedMsg reports the change-password outcome.
type passwordChangedMsg struct {
	err error
}

// accountDeletedMsg reports the delete-account outcome.
type accountDeletedMsg struct {
	err error
}

// listenSession waits for the next store notification.
func listenSession(ch <-chan session.Session) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return sessionChangedMsg(snap)
	}
}

// sendCmd runs a send through the coordinator off the UI goroutine.
func sendCmd(c *session.Coordinator, chatID int, text string) tea.Cmd {
	return func() tea.Msg {
		err := c.Send(context.Background(), chatID, text)
		return sendResultMsg{chatID: chatID, err: err}
	}
}

func renameCmd(c *session.Coordinator, chatID int, title string) tea.Cmd {
	return func() tea.Msg {
		err := c.Rename(context.Background(), chatID, title)
		return renameResultMsg{chatID: chatID, err: err}
	}
}

// listenUpload waits for the next upload event; when the stream closes it
// emits uploadDoneMsg so the progress bar can be cleared.
func listenUpload(chatID int, events <-chan session.UploadEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return uploadDoneMsg{chatID: chatID}
		}
		return uploadEventMsg(ev)
	}
}
