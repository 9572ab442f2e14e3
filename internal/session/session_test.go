package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/datawhiz/whiz/internal/models"
)

func TestCreateChatIDsStrictlyIncreasing(t *testing.T) {
	s := New()

	var ids []int
	for i := 0; i < 10; i++ {
		var id int
		s, id = s.CreateChat(fmt.Sprintf("Chat %d", s.NextChatID()), WelcomeText)
		ids = append(ids, id)
	}

	seen := make(map[int]bool)
	prev := 0
	for _, id := range ids {
		require.Greater(t, id, prev, "ids must be strictly increasing")
		require.False(t, seen[id], "ids must be unique")
		seen[id] = true
		prev = id
	}

	// Deleting chats must not allow id reuse.
	s = s.DeleteChat(ids[len(ids)-1])
	_, id := s.CreateChat("another", WelcomeText)
	require.Greater(t, id, ids[len(ids)-1])
}

func TestCreateChatSeedsWelcomeMessage(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)

	chat, ok := s.Chat(id)
	require.True(t, ok)
	require.Len(t, chat.Messages, 1)
	require.Equal(t, models.SenderBot, chat.Messages[0].Sender)
	require.Equal(t, WelcomeText, chat.Messages[0].Text)
	require.Equal(t, 1, chat.Messages[0].ID)
}

func TestSelectChat(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)

	require.Equal(t, ViewLanding, s.View())
	_, selected := s.SelectedChatID()
	require.False(t, selected)

	s = s.SelectChat(id)
	require.Equal(t, ViewChat, s.View())
	got, ok := s.SelectedChatID()
	require.True(t, ok)
	require.Equal(t, id, got)

	// Selecting an unknown id is a no-op.
	before := s
	s = s.SelectChat(999)
	require.Equal(t, before, s)
}

func TestRenameChat(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)

	s = s.RenameChat(id, "Budget Q3")
	chat, _ := s.Chat(id)
	require.Equal(t, "Budget Q3", chat.Title)

	// Blank and whitespace-only titles leave the chat unchanged.
	s = s.RenameChat(id, "   ")
	chat, _ = s.Chat(id)
	require.Equal(t, "Budget Q3", chat.Title)

	s = s.RenameChat(id, "")
	chat, _ = s.Chat(id)
	require.Equal(t, "Budget Q3", chat.Title)

	// Unknown ids are a silent no-op.
	before := s
	s = s.RenameChat(999, "nope")
	require.Equal(t, before, s)

	// Titles are trimmed on the way in.
	s = s.RenameChat(id, "  Trimmed  ")
	chat, _ = s.Chat(id)
	require.Equal(t, "Trimmed", chat.Title)
}

func TestDeleteSelectedChatSelectsFirstRemaining(t *testing.T) {
	s := New()
	var a, b, c int
	s, a = s.CreateChat("A", WelcomeText)
	s, b = s.CreateChat("B", WelcomeText)
	s, c = s.CreateChat("C", WelcomeText)

	s = s.SelectChat(b)
	s = s.DeleteChat(b)

	got, ok := s.SelectedChatID()
	require.True(t, ok)
	require.Equal(t, a, got, "first remaining chat in display order must be selected")
	require.Equal(t, ViewChat, s.View())
	require.Len(t, s.Chats(), 2)

	// Deleting an unselected chat keeps the selection.
	s = s.DeleteChat(c)
	got, ok = s.SelectedChatID()
	require.True(t, ok)
	require.Equal(t, a, got)
}

func TestDeleteLastChatFallsBackToLanding(t *testing.T) {
	s, id := New().CreateChat("only", WelcomeText)
	s = s.SelectChat(id)

	s = s.DeleteChat(id)

	_, ok := s.SelectedChatID()
	require.False(t, ok, "selection must be cleared")
	require.Equal(t, ViewLanding, s.View())
	require.Empty(t, s.Chats())
}

func TestDeleteUnknownChatIsNoop(t *testing.T) {
	s, id := New().CreateChat("only", WelcomeText)
	s = s.SelectChat(id)

	before := s
	s = s.DeleteChat(999)
	require.Equal(t, before, s)
}

func TestAppendMessagesAtomicBurst(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)

	s = s.AppendMessages(id,
		Draft{Sender: models.SenderUser, Text: "hello"},
		Draft{Sender: models.SenderBot, Text: PlaceholderReply},
	)

	chat, _ := s.Chat(id)
	require.Len(t, chat.Messages, 3)
	require.Equal(t, []int{1, 2, 3}, messageIDs(chat))
	require.Equal(t, "hello", chat.Messages[1].Text)
	require.Equal(t, models.SenderUser, chat.Messages[1].Sender)
	require.Equal(t, PlaceholderReply, chat.Messages[2].Text)
}

func TestAppendMessagesUnknownChatDropsSilently(t *testing.T) {
	s, _ := New().CreateChat("Chat 1", WelcomeText)

	before := s
	s = s.AppendMessages(999, Draft{Sender: models.SenderBot, Text: "ghost"})
	require.Equal(t, before, s)
}

func TestAppendMessagesDoesNotMutateInput(t *testing.T) {
	s1, id := New().CreateChat("Chat 1", WelcomeText)

	s2 := s1.AppendMessages(id, Draft{Sender: models.SenderUser, Text: "hello"})
	s3 := s1.AppendMessages(id, Draft{Sender: models.SenderUser, Text: "other"})

	// The original snapshot is untouched and both descendants diverge
	// from the same base without sharing appended messages.
	chat1, _ := s1.Chat(id)
	require.Len(t, chat1.Messages, 1)

	chat2, _ := s2.Chat(id)
	chat3, _ := s3.Chat(id)
	require.Equal(t, "hello", chat2.Messages[1].Text)
	require.Equal(t, "other", chat3.Messages[1].Text)
}

func TestAttachFile(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)

	file := models.FileRef{Name: "sales.csv", Path: "/tmp/sales.csv", Size: 42}
	s = s.AttachFile(id, file)

	chat, _ := s.Chat(id)
	require.NotNil(t, chat.AttachedFile)
	require.Equal(t, "sales.csv", chat.AttachedFile.Name)
	require.Len(t, chat.Messages, 1, "attach must not alter messages")

	// Unknown ids leave the session unchanged.
	before := s
	s = s.AttachFile(999, file)
	require.Equal(t, before, s)
}

func TestProfileAndLandingTransitions(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)
	s = s.SelectChat(id)

	s = s.ShowProfile()
	require.Equal(t, ViewProfile, s.View())
	require.Len(t, s.Chats(), 1, "chats stay in memory behind the profile overlay")

	s = s.ShowLanding()
	require.Equal(t, ViewLanding, s.View())

	// Returning to the chat view requires an explicit re-select.
	s = s.SelectChat(id)
	require.Equal(t, ViewChat, s.View())
}

func messageIDs(chat models.Chat) []int {
	ids := make([]int, len(chat.Messages))
	for i, m := range chat.Messages {
		ids[i] = m.ID
	}
	return ids
}
