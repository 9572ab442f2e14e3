package credentials

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "credentials.db"), filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	require.False(t, store.Authenticated())
	_, err := store.TokenPair()
	require.ErrorIs(t, err, ErrNotSignedIn)

	pair := TokenPair{Access: "access-abc", Refresh: "refresh-xyz"}
	require.NoError(t, store.SetSession("ada@example.com", pair))

	require.True(t, store.Authenticated())
	require.Equal(t, "ada@example.com", store.Email())

	got, err := store.TokenPair()
	require.NoError(t, err)
	require.Equal(t, pair, got)

	token, err := store.AccessToken()
	require.NoError(t, err)
	require.Equal(t, "access-abc", token)
}

func TestTokensSealedAtRest(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "credentials.db")
	store, err := Open(dbPath, filepath.Join(dir, "credentials.key"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SetSession("ada@example.com", TokenPair{
		Access:  "secret-access-token",
		Refresh: "secret-refresh-token",
	}))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var raw string
	require.NoError(t, db.QueryRow(
		`SELECT value FROM credentials WHERE key = 'access_token'`).Scan(&raw))
	require.NotEmpty(t, raw)
	require.False(t, strings.Contains(raw, "secret-access-token"))
}

func TestClearSignsOut(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetSession("ada@example.com", TokenPair{Access: "a", Refresh: "r"}))
	require.NoError(t, store.SetAvatar("/tmp/avatar.png"))
	require.NoError(t, store.Clear())

	require.False(t, store.Authenticated())
	require.Empty(t, store.Email())
	require.Empty(t, store.Avatar())
	_, err := store.TokenPair()
	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "credentials.db")
	keyPath := filepath.Join(dir, "credentials.key")

	store, err := Open(dbPath, keyPath)
	require.NoError(t, err)
	require.NoError(t, store.SetSession("ada@example.com", TokenPair{Access: "a1", Refresh: "r1"}))
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath, keyPath)
	require.NoError(t, err)
	defer reopened.Close()

	pair, err := reopened.TokenPair()
	require.NoError(t, err)
	require.Equal(t, TokenPair{Access: "a1", Refresh: "r1"}, pair)
}

func TestKeyFilePermissions(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "credentials.key")
	store, err := Open(filepath.Join(dir, "credentials.db"), keyPath)
	require.NoError(t, err)
	require.NoError(t, store.SetSession("ada@example.com", TokenPair{Access: "a", Refresh: "r"}))
	defer store.Close()

	info, err := os.Stat(keyPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAvatarCache(t *testing.T) {
	store := openTestStore(t)
	require.Empty(t, store.Avatar())
	require.NoError(t, store.SetAvatar("/home/ada/.config/whiz/avatar.png"))
	require.Equal(t, "/home/ada/.config/whiz/avatar.png", store.Avatar())
}
