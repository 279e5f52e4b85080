package telegram

import (
	"context"
	"log"
	"sync"
	"time"

	"shopping-lists/internal/assistant"
)

// ConversationStore keeps conversations across restarts. The busy gate of
// an assistant is never stored.
type ConversationStore interface {
	Load(ctx context.Context, chatID int64) (assistant.Conversation, bool, error)
	Save(ctx context.Context, chatID int64, conv assistant.Conversation) error
	Delete(ctx context.Context, chatID int64) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// session is one chat's conversation with the assistant.
type session struct {
	assistant *assistant.Assistant
	lastSeen  time.Time
}

// Sessions keeps one assistant per chat. A session idle for longer than
// ttl is dropped and the chat starts over with a fresh greeting.
type Sessions struct {
	mu           sync.Mutex
	ttl          time.Duration
	newAssistant func(opts ...assistant.Option) *assistant.Assistant
	sessions     map[int64]*session
	store        ConversationStore
	now          func() time.Time
}

// NewSessions creates an empty registry. A ttl of zero never expires
// sessions. store may be nil, in which case conversations live in memory only.
func NewSessions(ttl time.Duration, newAssistant func(opts ...assistant.Option) *assistant.Assistant, store ConversationStore) *Sessions {
	return &Sessions{
		ttl:          ttl,
		newAssistant: newAssistant,
		sessions:     make(map[int64]*session),
		store:        store,
		now:          time.Now,
	}
}

func (s *Sessions) expired(sess *session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.lastSeen) > s.ttl && !sess.assistant.Pending()
}

// Get returns the assistant of chatID. A chat with no active session in
// memory resumes its stored conversation, or starts a new one.
func (s *Sessions) Get(ctx context.Context, chatID int64) *assistant.Assistant {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[chatID]
	if !ok || s.expired(sess, now) {
		sess = &session{assistant: s.resume(ctx, chatID)}
		s.sessions[chatID] = sess
	}
	sess.lastSeen = now
	return sess.assistant
}

func (s *Sessions) resume(ctx context.Context, chatID int64) *assistant.Assistant {
	if s.store == nil {
		return s.newAssistant()
	}
	conv, ok, err := s.store.Load(ctx, chatID)
	if err != nil {
		log.Printf("Error loading session for chat %d: %v", chatID, err)
		return s.newAssistant()
	}
	if !ok {
		return s.newAssistant()
	}
	return s.newAssistant(assistant.WithConversation(conv))
}

// Save stores the current conversation of chatID.
func (s *Sessions) Save(ctx context.Context, chatID int64, a *assistant.Assistant) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(ctx, chatID, a.Conversation())
}

// Reset forgets the conversation of chatID. The next Get starts over.
func (s *Sessions) Reset(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, chatID)
}

// CleanupExpired removes idle sessions and returns how many were removed
// from memory. Expired stored conversations are removed too.
func (s *Sessions) CleanupExpired() int {
	s.mu.Lock()
	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()

	if s.store != nil {
		n, err := s.store.CleanupExpired(context.Background())
		if err != nil {
			log.Printf("Error cleaning stored sessions: %v", err)
		} else if n > 0 {
			log.Printf("Removed %d expired stored sessions", n)
		}
	}
	return removed
}

// Len returns the number of sessions held.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
