package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datawhiz/whiz/internal/models"
	"github.com/datawhiz/whiz/internal/session"
)

func TestChatPreviewTruncation(t *testing.T) {
	chat := models.Chat{
		ID:    1,
		Title: "Chat 1",
		Messages: []models.Message{
			{ID: 1, Sender: models.SenderBot, Text: strings.Repeat("x", 100)},
		},
	}

	preview := chatPreview(chat)
	require.Equal(t, previewRuneLimit+1, len([]rune(preview))) // 48 runes + ellipsis
	require.True(t, strings.HasSuffix(preview, "…"))

	chat.Messages[0].Text = "short answer"
	require.Equal(t, "short answer", chatPreview(chat))

	require.Empty(t, chatPreview(models.Chat{ID: 2, Title: "empty"}))
}

func TestTruncateRunesMultibyte(t *testing.T) {
	require.Equal(t, "héllo", truncateRunes("héllo", 10))
	require.Equal(t, "hél…", truncateRunes("héllo wörld", 3))
}

func TestChatIndex(t *testing.T) {
	chats := []models.Chat{{ID: 3}, {ID: 7}, {ID: 9}}
	require.Equal(t, 0, chatIndex(chats, 3))
	require.Equal(t, 2, chatIndex(chats, 9))
	require.Equal(t, -1, chatIndex(chats, 4))
	require.Equal(t, -1, chatIndex(nil, 1))
}

func TestRenderTranscriptContent(t *testing.T) {
	v := &chatView{}
	chat := models.Chat{
		ID:    1,
		Title: "Chat 1",
		Messages: []models.Message{
			{ID: 1, Sender: models.SenderBot, Text: "Hello! Upload a file or ask a question about your data.", CreatedAt: time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)},
			{ID: 2, Sender: models.SenderUser, Text: "what is the mean of column A?", Attachments: []models.Attachment{{ID: 1, Filename: "data.csv"}}},
		},
	}

	out := v.renderTranscript(chat)
	require.Contains(t, out, "Hello! Upload a file or ask a question about your data.")
	require.Contains(t, out, "what is the mean of column A?")
	require.Contains(t, out, "data.csv")
	require.Contains(t, out, "09:30")
}

func TestSendErrorShownOnlyForItsChat(t *testing.T) {
	s := session.New()
	s, first := s.CreateChat("Chat 1", session.WelcomeText)
	s, second := s.CreateChat("Chat 2", session.WelcomeText)

	root := &Model{sess: s.SelectChat(first)}
	v := newChatView(root)
	v.resize(80, 24)

	// A send for the second chat fails while the first is on screen.
	_ = v.Update(sendResultMsg{chatID: second, err: errors.New("boom")})

	out := v.renderMain(60, 20)
	require.NotContains(t, out, "failed to send message")

	root.sess = s.SelectChat(second)
	out = v.renderMain(60, 20)
	require.Contains(t, out, "failed to send message")
}

func TestChatErrorClearedWhenChatDeleted(t *testing.T) {
	s := session.New()
	s, id := s.CreateChat("Chat 1", session.WelcomeText)

	root := &Model{sess: s.SelectChat(id)}
	v := newChatView(root)
	v.resize(80, 24)

	_ = v.Update(sendResultMsg{chatID: id, err: errors.New("boom")})
	require.NotEmpty(t, v.errs[id])

	root.sess = s.DeleteChat(id)
	v.sessionChanged(root.sess)
	require.Empty(t, v.errs)
}

func TestFileRefFromPath(t *testing.T) {
	_, err := fileRefFromPath("/nonexistent/data.csv")
	require.Error(t, err)

	dir := t.TempDir()
	_, err = fileRefFromPath(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "directory")
}
