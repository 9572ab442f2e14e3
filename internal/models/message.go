// Package models defines the value types shared across the DataWhiz client.
package models

import (
	"time"
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Attachment is a file reference resolved by the server for a sent message.
type Attachment struct {
	// ID is the server-assigned attachment id.
	ID int `json:"id"`

	// Filename is the original file name.
	Filename string `json:"filename"`

	// Locator is where the stored file can be retrieved from.
	Locator string `json:"locator"`
}

// Message is one turn in a chat. Messages are immutable once created:
// transitions in the session package only ever append new ones.
type Message struct {
	// ID is unique within the owning chat and strictly increasing
	// in creation order.
	ID int `json:"id"`

	// Sender is who authored the message.
	Sender Sender `json:"sender"`

	// Text is the message body.
	Text string `json:"text"`

	// Attachments are files carried by the message, in upload order.
	Attachments []Attachment `json:"attachments,omitempty"`

	// CreatedAt is when the message was created locally.
	CreatedAt time.Time `json:"created_at"`
}

// MessageReceipt is the server's echo of a sent message: the stored text
// plus any resolved attachment metadata.
type MessageReceipt struct {
	Text        string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
}
