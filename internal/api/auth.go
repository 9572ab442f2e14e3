package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/datawhiz/whiz/internal/models"
)

// TokenPair is the access/refresh token pair issued at sign-in.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// SignUpRequest carries the registration form.
type SignUpRequest struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	Username        string
	AvatarPath      string
}

// SignIn exchanges credentials for a token pair.
func (c *Client) SignIn(ctx context.Context, email, password string) (*TokenPair, error) {
	payload := map[string]string{"email": email, "password": password}

	var pair TokenPair
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", "sign-in", payload, &pair); err != nil {
		return nil, err
	}
	if pair.Access == "" {
		return nil, &TransportError{Op: "sign-in", Detail: "server returned no access token"}
	}
	return &pair, nil
}

// SignUp registers a new account. The caller signs in afterwards.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	const op = "sign-up"

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"email":      req.Email,
		"password":   req.Password,
		"password2":  req.ConfirmPassword,
		"first_name": req.FirstName,
		"last_name":  req.LastName,
	}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to build %s payload: %w", op, err)
		}
	}

	if req.AvatarPath != "" {
		part, err := writer.CreateFormFile("avatar", filepath.Base(req.AvatarPath))
		if err != nil {
			return fmt.Errorf("failed to add avatar: %w", err)
		}
		f, err := os.Open(req.AvatarPath)
		if err != nil {
			return fmt.Errorf("failed to open avatar %s: %w", req.AvatarPath, err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to read avatar %s: %w", req.AvatarPath, err)
		}
		f.Close()
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s payload: %w", op, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/auth/register"), &buf)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	_, err = c.do(httpReq, op)
	return err
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.getJSON(ctx, "/auth/profile", "profile", &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ChangePassword changes the account password. A 400 with a detail
// message (wrong old password, mismatched confirmation) comes back as a
// TransportError carrying that detail.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	payload := map[string]string{
		"old_password":  oldPassword,
		"new_password":  newPassword,
		"new_password2": confirm,
	}
	return c.sendJSON(ctx, http.MethodPost, "/auth/change-password", "change-password", payload, nil)
}

// DeleteAccount permanently deletes the account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url("/auth/delete-account"), nil)
	if err != nil {
		return fmt.Errorf("failed to build delete-account request: %w", err)
	}
	_, err = c.do(req, "delete-account")
	return err
}
