package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datawhiz/whiz/internal/models"
)

func TestStoreApplySerializesAppends(t *testing.T) {
	s, id := New().CreateChat("Chat 1", WelcomeText)
	store := NewStore(s)

	// Concurrent appends all derive their message ids inside Apply, so
	// they can never collide even though they race to start.
	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			store.Apply(func(s Session) Session {
				return s.AppendMessages(id, Draft{Sender: models.SenderUser, Text: "m"})
			})
		}()
	}
	wg.Wait()

	chat, ok := store.Snapshot().Chat(id)
	require.True(t, ok)
	require.Len(t, chat.Messages, writers+1)

	prev := 0
	for _, m := range chat.Messages {
		require.Greater(t, m.ID, prev, "message ids must be strictly increasing")
		prev = m.ID
	}
}

func TestStoreSubscribeReceivesLatest(t *testing.T) {
	store := NewStore(New())

	ch, cancel := store.Subscribe()
	defer cancel()

	store.Apply(func(s Session) Session {
		next, _ := s.CreateChat("Chat 1", WelcomeText)
		return next
	})

	select {
	case snap := <-ch:
		require.Len(t, snap.Chats(), 1)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestStoreSubscribeCoalesces(t *testing.T) {
	store := NewStore(New())

	ch, cancel := store.Subscribe()
	defer cancel()

	// The subscriber never drains between these; only the latest
	// snapshot must survive.
	for i := 0; i < 5; i++ {
		store.Apply(func(s Session) Session {
			next, _ := s.CreateChat("chat", WelcomeText)
			return next
		})
	}

	snap := <-ch
	require.Len(t, snap.Chats(), 5)

	select {
	case extra := <-ch:
		t.Fatalf("expected coalesced channel to be empty, got snapshot with %d chats", len(extra.Chats()))
	default:
	}
}

func TestStoreSubscribeLatestMatchesSnapshotAfterConcurrentApplies(t *testing.T) {
	// Notification order must follow mutation order even when Applies
	// race: after all writers settle, the coalesced pending value is the
	// final session, never an older intermediate one.
	for trial := 0; trial < 20; trial++ {
		s, id := New().CreateChat("Chat 1", WelcomeText)
		store := NewStore(s)

		ch, cancel := store.Subscribe()

		const writers = 32
		var wg sync.WaitGroup
		wg.Add(writers)
		for i := 0; i < writers; i++ {
			go func() {
				defer wg.Done()
				store.Apply(func(s Session) Session {
					return s.AppendMessages(id, Draft{Sender: models.SenderUser, Text: "m"})
				})
			}()
		}
		wg.Wait()

		var latest Session
		select {
		case latest = <-ch:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for notification")
		}

		want, ok := store.Snapshot().Chat(id)
		require.True(t, ok)
		got, ok := latest.Chat(id)
		require.True(t, ok)
		require.Len(t, want.Messages, writers+1)
		require.Len(t, got.Messages, len(want.Messages),
			"subscriber's latest snapshot must match the store after quiescence")

		cancel()
	}
}

func TestStoreUnsubscribeStopsDelivery(t *testing.T) {
	store := NewStore(New())

	ch, cancel := store.Subscribe()
	cancel()

	store.Apply(func(s Session) Session {
		next, _ := s.CreateChat("chat", WelcomeText)
		return next
	})

	select {
	case <-ch:
		t.Fatal("cancelled subscriber must not be notified")
	default:
	}
}
