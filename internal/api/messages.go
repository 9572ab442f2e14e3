package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/datawhiz/whiz/internal/models"
)

// sendMessageResponse is the server's reply to a posted message. Unknown
// fields are ignored; the ad hoc shape is narrowed here at the boundary.
type sendMessageResponse struct {
	ID      int    `json:"id"`
	Content string `json:"content"`
	Sender  string `json:"sender"`
	Files   []struct {
		ID       int    `json:"id"`
		Filename string `json:"filename"`
		Locator  string `json:"locator"`
	} `json:"files"`
}

// SendMessage posts a user message to the chat's message endpoint as a
// multipart payload of content, sender and any attached files, and
// returns the echoed message with resolved attachment metadata.
func (c *Client) SendMessage(ctx context.Context, chatID int, text string, files []models.FileRef) (*models.MessageReceipt, error) {
	const op = "send-message"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writer.WriteField("content", text); err != nil {
		return nil, fmt.Errorf("failed to build %s payload: %w", op, err)
	}
	if err := writer.WriteField("sender", string(models.SenderUser)); err != nil {
		return nil, fmt.Errorf("failed to build %s payload: %w", op, err)
	}

	for _, file := range files {
		if err := appendFilePart(writer, file); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize %s payload: %w", op, err)
	}

	path := fmt.Sprintf("/chats/%d/messages", chatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req, op)
	if err != nil {
		return nil, err
	}

	var resp sendMessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", op, err)
	}

	receipt := &models.MessageReceipt{Text: resp.Content}
	for _, f := range resp.Files {
		receipt.Attachments = append(receipt.Attachments, models.Attachment{
			ID:       f.ID,
			Filename: f.Filename,
			Locator:  f.Locator,
		})
	}
	return receipt, nil
}

// RenameChat asks the server to rename a chat; any 2xx is success.
func (c *Client) RenameChat(ctx context.Context, chatID int, title string) error {
	path := fmt.Sprintf("/chats/%d/rename", chatID)
	payload := map[string]string{"title": title}
	return c.sendJSON(ctx, http.MethodPatch, path, "rename-chat", payload, nil)
}

// appendFilePart streams a local file into the multipart payload.
func appendFilePart(writer *multipart.Writer, file models.FileRef) error {
	name := file.Name
	if name == "" {
		name = filepath.Base(file.Path)
	}

	part, err := writer.CreateFormFile("files", name)
	if err != nil {
		return fmt.Errorf("failed to add file %s: %w", name, err)
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", file.Path, err)
	}
	defer f.Close()

	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read file %s: %w", file.Path, err)
	}
	return nil
}
