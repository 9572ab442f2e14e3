package models

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationErrorsIs(t *testing.T) {
	validation := &ValidationErrors{}
	validation.Add("title", ErrEmptyTitle)

	err := validation.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected errors.Is to match ErrEmptyTitle, got %v", err)
	}
}

func TestValidationErrorsNestedFields(t *testing.T) {
	nested := &ValidationErrors{}
	nested.AddMessage("name", "file name is required")

	validation := &ValidationErrors{}
	validation.Add("upload", nested)

	err := validation.Err()
	if err == nil {
		t.Fatal("expected error")
	}

	list, ok := err.(*ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors type, got %T", err)
	}
	if len(list.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(list.Errors))
	}
	if list.Errors[0].Field != "upload.name" {
		t.Fatalf("expected field upload.name, got %q", list.Errors[0].Field)
	}
}

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain", input: "Budget Q3", want: "Budget Q3"},
		{name: "trims whitespace", input: "  Budget Q3  ", want: "Budget Q3"},
		{name: "empty", input: "", wantErr: ErrEmptyTitle},
		{name: "whitespace only", input: "   \t ", wantErr: ErrEmptyTitle},
		{name: "at limit", input: strings.Repeat("x", 32), want: strings.Repeat("x", 32)},
		{name: "over limit", input: strings.Repeat("x", 33), wantErr: ErrTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTitle(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateUpload(t *testing.T) {
	if err := ValidateUpload(FileRef{Name: "sales.csv", Path: "/tmp/sales.csv"}); err != nil {
		t.Fatalf("csv should be accepted: %v", err)
	}
	if err := ValidateUpload(FileRef{Name: "report.XLSX", Path: "/tmp/report.XLSX"}); err != nil {
		t.Fatalf("xlsx should be accepted case-insensitively: %v", err)
	}
	if err := ValidateUpload(FileRef{Name: "notes.txt", Path: "/tmp/notes.txt"}); err == nil {
		t.Fatal("txt should be rejected")
	}
	if err := ValidateUpload(FileRef{Name: ""}); err == nil {
		t.Fatal("empty name should be rejected")
	}
}

func TestChatNextMessageID(t *testing.T) {
	empty := Chat{ID: 1, Title: "Chat 1"}
	if got := empty.NextMessageID(); got != 1 {
		t.Fatalf("expected 1 for empty chat, got %d", got)
	}

	chat := Chat{
		ID:    1,
		Title: "Chat 1",
		Messages: []Message{
			{ID: 1, Sender: SenderBot, Text: "welcome"},
			{ID: 5, Sender: SenderUser, Text: "hello"},
			{ID: 3, Sender: SenderBot, Text: "reply"},
		},
	}
	if got := chat.NextMessageID(); got != 6 {
		t.Fatalf("expected 6, got %d", got)
	}
}

func TestChatLastMessageBy(t *testing.T) {
	chat := Chat{
		Messages: []Message{
			{ID: 1, Sender: SenderBot, Text: "welcome"},
			{ID: 2, Sender: SenderUser, Text: "hello"},
			{ID: 3, Sender: SenderBot, Text: "reply"},
		},
	}

	msg, ok := chat.LastMessageBy(SenderUser)
	if !ok || msg.ID != 2 {
		t.Fatalf("expected user message 2, got %+v ok=%v", msg, ok)
	}
	msg, ok = chat.LastMessageBy(SenderBot)
	if !ok || msg.ID != 3 {
		t.Fatalf("expected bot message 3, got %+v ok=%v", msg, ok)
	}
	_, ok = Chat{}.LastMessageBy(SenderUser)
	if ok {
		t.Fatal("empty chat should have no last message")
	}
}
