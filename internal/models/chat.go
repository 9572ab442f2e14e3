package models

import (
	"path/filepath"
	"strings"
)

// MaxTitleLength is the longest a chat title may be after trimming.
const MaxTitleLength = 32

// Chat title errors.
var (
	ErrEmptyTitle   = &ValidationError{Field: "title", Message: "title must not be blank"}
	ErrTitleTooLong = &ValidationError{Field: "title", Message: "title must be at most 32 characters"}
)

// FileRef points at a local file the user attached to a chat.
type FileRef struct {
	// Name is the base file name shown in the UI.
	Name string `json:"name"`

	// Path is the local filesystem path the file is read from.
	Path string `json:"path"`

	// Size is the file size in bytes, if known.
	Size int64 `json:"size,omitempty"`
}

// Chat is a named conversation thread. A chat always holds at least one
// message (the bot welcome) from the moment it is created.
type Chat struct {
	// ID is unique within the session and strictly increasing
	// in allocation order.
	ID int `json:"id"`

	// Title is the user-editable chat name (1..32 characters).
	Title string `json:"title"`

	// Messages is the ordered history; slice order is display order.
	Messages []Message `json:"messages"`

	// AttachedFile is the data file currently attached, if any.
	AttachedFile *FileRef `json:"attached_file,omitempty"`
}

// LastMessage returns the most recent message, if any.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastMessageBy returns the most recent message from the given sender.
func (c Chat) LastMessageBy(sender Sender) (Message, bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Sender == sender {
			return c.Messages[i], true
		}
	}
	return Message{}, false
}

// NextMessageID derives the next message id as max(existing)+1,
// defaulting to 1 for an empty history. Callers must only invoke this
// while holding the session store lock; two appends computed from a
// stale snapshot would collide.
func (c Chat) NextMessageID() int {
	next := 1
	for _, m := range c.Messages {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}

// ValidateTitle checks a proposed chat title and returns the trimmed form.
func ValidateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ErrEmptyTitle
	}
	if len([]rune(trimmed)) > MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return trimmed, nil
}

// AcceptedUploadExtensions are the data file types the workspace accepts.
var AcceptedUploadExtensions = []string{".csv", ".xlsx", ".json"}

// ValidateUpload checks that a file reference names an acceptable data file.
func ValidateUpload(file FileRef) error {
	validation := &ValidationErrors{}
	if strings.TrimSpace(file.Name) == "" {
		validation.AddMessage("name", "file name is required")
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	accepted := false
	for _, candidate := range AcceptedUploadExtensions {
		if ext == candidate {
			accepted = true
			break
		}
	}
	if !accepted {
		validation.AddMessage("name", "file must be CSV, Excel, or JSON")
	}
	return validation.Err()
}
