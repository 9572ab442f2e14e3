package session

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/datawhiz/whiz/internal/logging"
)

// Store holds the single live Session value. Every mutation goes through
// Apply, which computes a total replacement from the latest value under
// the lock; this serializes all transitions, which is what makes the
// max-existing-id-plus-one message allocation collision-free and lets
// async completions re-validate against the current state.
type Store struct {
	mu      sync.Mutex
	session Session
	subs    map[int]chan Session
	nextSub int
	logger  zerolog.Logger
}

// NewStore creates a store seeded with the given session.
func NewStore(initial Session) *Store {
	return &Store{
		session: initial,
		subs:    make(map[int]chan Session),
		logger:  logging.Component("session-store"),
	}
}

// Snapshot returns the current session value.
func (st *Store) Snapshot() Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session
}

// Apply replaces the session with fn(current) and returns the new value.
// fn must be pure: it runs under the store lock and must not block.
//
// Subscribers are notified while the lock is still held. push never
// blocks, and delivering under the lock keeps notifications in mutation
// order; pushing after unlock would let two concurrent Applies race and
// leave an older snapshot as a subscriber's coalesced latest value.
func (st *Store) Apply(fn func(Session) Session) Session {
	st.mu.Lock()
	next := fn(st.session)
	st.session = next
	for _, ch := range st.subs {
		push(ch, next)
	}
	st.mu.Unlock()

	st.logger.Debug().
		Int("chats", len(next.chats)).
		Str("view", string(next.view)).
		Msg("session updated")

	return next
}

// Subscribe registers for change notifications. The channel is buffered
// and coalescing: a slow reader only ever sees the latest snapshot. The
// returned cancel function releases the subscription.
func (st *Store) Subscribe() (<-chan Session, func()) {
	ch := make(chan Session, 1)

	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = ch
	st.mu.Unlock()

	cancel := func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
	return ch, cancel
}

// push delivers a snapshot without blocking, dropping a stale pending
// value if the subscriber has not drained it yet.
func push(ch chan Session, snap Session) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
