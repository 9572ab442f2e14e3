// Package credentials persists the client-local session: the auth flag,
// the signed-in email, the access/refresh token pair, and the cached
// avatar path. Tokens are sealed at rest with XChaCha20-Poly1305 using a
// per-machine key created on first use.
package credentials

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/chacha20poly1305"
	_ "modernc.org/sqlite"

	"github.com/datawhiz/whiz/internal/logging"
)

// Storage keys, mirroring the browser client's localStorage layout.
const (
	keyAuth         = "auth"
	keyEmail        = "user_email"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyAvatar       = "avatar"
)

// Store errors.
var (
	ErrNotSignedIn = errors.New("not signed in")
)

// TokenPair is the stored access/refresh token pair.
type TokenPair struct {
	Access  string
	Refresh string
}

// Store is the sqlite-backed credential store.
type Store struct {
	db    *sql.DB
	keyFn func() ([]byte, error) // lazily loads or creates the sealing key
}

// Open opens (creating if needed) the credential store at dbPath, sealing
// tokens with the key at keyPath.
func Open(dbPath, keyPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create credential directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to credential store: %w", err)
	}

	store := &Store{
		db:    db,
		keyFn: func() ([]byte, error) { return loadOrCreateKey(keyPath) },
	}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := logging.Component("credentials")
	logger.Debug().Str("path", dbPath).Msg("credential store opened")
	return store, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS credentials (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed to create credential schema: %w", err)
	}
	return nil
}

// SetSession stores a signed-in session: auth flag, email, sealed tokens.
func (s *Store) SetSession(email string, pair TokenPair) error {
	access, err := s.seal(pair.Access)
	if err != nil {
		return err
	}
	refresh, err := s.seal(pair.Refresh)
	if err != nil {
		return err
	}

	entries := map[string]string{
		keyAuth:         "true",
		keyEmail:        email,
		keyAccessToken:  access,
		keyRefreshToken: refresh,
	}
	for key, value := range entries {
		if err := s.put(key, value); err != nil {
			return err
		}
	}
	return nil
}

// TokenPair returns the stored tokens, unsealed.
func (s *Store) TokenPair() (TokenPair, error) {
	access, err := s.get(keyAccessToken)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.get(keyRefreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	if access == "" {
		return TokenPair{}, ErrNotSignedIn
	}

	openedAccess, err := s.open(access)
	if err != nil {
		return TokenPair{}, err
	}
	openedRefresh, err := s.open(refresh)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: openedAccess, Refresh: openedRefresh}, nil
}

// AccessToken implements api.TokenSource.
func (s *Store) AccessToken() (string, error) {
	pair, err := s.TokenPair()
	if err != nil {
		return "", err
	}
	return pair.Access, nil
}

// Email returns the signed-in email, or "" when signed out.
func (s *Store) Email() string {
	email, err := s.get(keyEmail)
	if err != nil {
		return ""
	}
	return email
}

// Authenticated reports whether a session is stored.
func (s *Store) Authenticated() bool {
	flag, err := s.get(keyAuth)
	return err == nil && flag == "true"
}

// SetAvatar caches the avatar file path.
func (s *Store) SetAvatar(path string) error {
	return s.put(keyAvatar, path)
}

// Avatar returns the cached avatar path, or "".
func (s *Store) Avatar() string {
	path, err := s.get(keyAvatar)
	if err != nil {
		return ""
	}
	return path
}

// Clear signs out: every stored key is removed.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM credentials`)
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

func (s *Store) put(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *Store) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// seal encrypts a token for storage.
func (s *Store) seal(plaintext string) (string, error) {
	key, err := s.keyFn()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// open decrypts a stored token.
func (s *Store) open(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	key, err := s.keyFn()
	if err != nil {
		return "", err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("failed to init cipher: %w", err)
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode stored token: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return "", errors.New("stored token is truncated")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("failed to unseal stored token: %w", err)
	}
	return string(plaintext), nil
}

// loadOrCreateKey reads the sealing key, generating one on first use.
func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("sealing key at %s has wrong size", path)
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read sealing key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate sealing key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write sealing key: %w", err)
	}
	return key, nil
}
