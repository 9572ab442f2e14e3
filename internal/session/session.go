// Package session owns the in-memory chat workspace state: the chat
// registry, the view state, and the coordinator that merges asynchronous
// operation results back into it.
//
// Session is a value type. Every transition returns a new Session computed
// from the receiver; nothing is mutated in place. The Store serializes
// transitions so that message-id derivation (max existing + 1) can never
// observe a stale snapshot.
package session

import (
	"strings"
	"time"

	"github.com/datawhiz/whiz/internal/models"
)

// View identifies which top-level screen is displayed.
type View string

const (
	// ViewLanding is the start screen, shown when no chat is focused.
	ViewLanding View = "landing"

	// ViewProfile is the profile overlay; chats stay in memory behind it.
	ViewProfile View = "profile"

	// ViewChat shows the selected chat's message history.
	ViewChat View = "chat"
)

// WelcomeText seeds every newly created chat with a bot greeting, so a
// chat never starts empty.
const WelcomeText = "Hello! Upload a file or ask a question about your data."

// PlaceholderReply is the interim bot reply appended after a successful send.
const PlaceholderReply = "This is a placeholder response."

// Draft is a message about to be appended; the session assigns its id.
type Draft struct {
	Sender      models.Sender
	Text        string
	Attachments []models.Attachment
}

// Session is the complete in-memory snapshot of the workspace: all chats
// in insertion order, the current view, and the current selection.
type Session struct {
	chats          []models.Chat
	selectedChatID int // 0 means no selection; chat ids start at 1
	view           View
	nextChatID     int
}

// New returns the initial session: no chats, landing view.
func New() Session {
	return Session{
		view:       ViewLanding,
		nextChatID: 1,
	}
}

// Chats returns the chats in insertion order. The returned slice is a
// shared snapshot; callers must not modify it.
func (s Session) Chats() []models.Chat {
	return s.chats
}

// Chat looks up a chat by id.
func (s Session) Chat(id int) (models.Chat, bool) {
	for _, chat := range s.chats {
		if chat.ID == id {
			return chat, true
		}
	}
	return models.Chat{}, false
}

// SelectedChatID returns the selected chat id, if any chat is selected.
func (s Session) SelectedChatID() (int, bool) {
	if s.selectedChatID == 0 {
		return 0, false
	}
	return s.selectedChatID, true
}

// SelectedChat returns the selected chat, if any.
func (s Session) SelectedChat() (models.Chat, bool) {
	if s.selectedChatID == 0 {
		return models.Chat{}, false
	}
	return s.Chat(s.selectedChatID)
}

// View returns the current view.
func (s Session) View() View {
	return s.view
}

// NextChatID returns the id the next created chat will receive.
func (s Session) NextChatID() int {
	return s.nextChatID
}

// CreateChat allocates a new chat seeded with one bot welcome message and
// appends it to the end of the registry. The selection is untouched.
func (s Session) CreateChat(title, welcomeText string) (Session, int) {
	id := s.nextChatID

	chat := models.Chat{
		ID:    id,
		Title: title,
		Messages: []models.Message{
			{
				ID:        1,
				Sender:    models.SenderBot,
				Text:      welcomeText,
				CreatedAt: time.Now(),
			},
		},
	}

	next := s
	next.chats = append(cloneChats(s.chats), chat)
	next.nextChatID = id + 1
	return next, id
}

// SelectChat focuses a chat and switches to the chat view. Selecting an
// unknown id is a no-op.
func (s Session) SelectChat(id int) Session {
	if _, ok := s.Chat(id); !ok {
		return s
	}
	next := s
	next.selectedChatID = id
	next.view = ViewChat
	return next
}

// RenameChat replaces a chat's title. Blank titles (after trimming) and
// unknown ids leave the session unchanged.
func (s Session) RenameChat(id int, newTitle string) Session {
	trimmed := strings.TrimSpace(newTitle)
	if trimmed == "" {
		return s
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}

	chats := cloneChats(s.chats)
	chats[idx].Title = trimmed

	next := s
	next.chats = chats
	return next
}

// DeleteChat removes a chat. If it was selected, the first remaining chat
// (in display order) becomes selected and the view stays on chat; with no
// chats left, the selection is cleared and the view falls back to landing.
func (s Session) DeleteChat(id int) Session {
	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}

	chats := make([]models.Chat, 0, len(s.chats)-1)
	chats = append(chats, s.chats[:idx]...)
	chats = append(chats, s.chats[idx+1:]...)

	next := s
	next.chats = chats

	if s.selectedChatID == id {
		if len(chats) > 0 {
			next.selectedChatID = chats[0].ID
			next.view = ViewChat
		} else {
			next.selectedChatID = 0
			next.view = ViewLanding
		}
	}
	return next
}

// AppendMessages appends one or more messages to a chat as a single state
// transition, so multi-message bursts are never observed interleaved with
// another append to the same chat. Message ids continue from the chat's
// current maximum. Unknown ids drop the append silently.
func (s Session) AppendMessages(id int, drafts ...Draft) Session {
	if len(drafts) == 0 {
		return s
	}

	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}

	chats := cloneChats(s.chats)
	chat := chats[idx]

	nextID := chat.NextMessageID()
	messages := make([]models.Message, len(chat.Messages), len(chat.Messages)+len(drafts))
	copy(messages, chat.Messages)

	now := time.Now()
	for _, draft := range drafts {
		messages = append(messages, models.Message{
			ID:          nextID,
			Sender:      draft.Sender,
			Text:        draft.Text,
			Attachments: draft.Attachments,
			CreatedAt:   now,
		})
		nextID++
	}

	chat.Messages = messages
	chats[idx] = chat

	next := s
	next.chats = chats
	return next
}

// AttachFile records a file reference on a chat without touching its
// messages. Unknown ids leave the session unchanged.
func (s Session) AttachFile(id int, file models.FileRef) Session {
	idx := s.indexOf(id)
	if idx < 0 {
		return s
	}

	chats := cloneChats(s.chats)
	ref := file
	chats[idx].AttachedFile = &ref

	next := s
	next.chats = chats
	return next
}

// ShowProfile switches to the profile overlay. Chats and selection are
// kept in memory behind it.
func (s Session) ShowProfile() Session {
	next := s
	next.view = ViewProfile
	return next
}

// ShowLanding returns to the landing screen. The selection is kept but the
// chat view is left; getting back to a chat requires an explicit re-select.
func (s Session) ShowLanding() Session {
	next := s
	next.view = ViewLanding
	return next
}

func (s Session) indexOf(id int) int {
	for i, chat := range s.chats {
		if chat.ID == id {
			return i
		}
	}
	return -1
}

// cloneChats copies the chat slice so transitions never alias the input.
// Message slices inside each chat are shared until an append clones them;
// messages themselves are immutable.
func cloneChats(chats []models.Chat) []models.Chat {
	if len(chats) == 0 {
		return nil
	}
	out := make([]models.Chat, len(chats))
	copy(out, chats)
	return out
}
