package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"shopping-lists/internal/assistant"
	sessiondb "shopping-lists/internal/telegram/session_db"
)

// SessionRepository persists each chat's conversation so a staged list or
// menu survives a restart of the bot.
type SessionRepository struct {
	queries *sessiondb.Queries
	db      *sql.DB
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionRepository stores conversations that expire ttl after their
// last message.
func NewSessionRepository(db *sql.DB, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		queries: sessiondb.New(db),
		db:      db,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Load returns the stored conversation of chatID. ok is false when the chat
// has none or it has expired.
func (r *SessionRepository) Load(ctx context.Context, chatID int64) (assistant.Conversation, bool, error) {
	row, err := r.queries.GetActiveSession(ctx, sessiondb.GetActiveSessionParams{
		ChatID:    chatID,
		ExpiresAt: r.now().UnixMilli(),
	})
	if err == sql.ErrNoRows {
		return assistant.Conversation{}, false, nil
	}
	if err != nil {
		return assistant.Conversation{}, false, fmt.Errorf("failed to load session %d: %w", chatID, err)
	}

	var conv assistant.Conversation
	if err := json.Unmarshal([]byte(row.Conversation), &conv); err != nil {
		return assistant.Conversation{}, false, fmt.Errorf("failed to decode session %d: %w", chatID, err)
	}
	return conv, true, nil
}

// Save stores conv and pushes the expiry of chatID forward.
func (r *SessionRepository) Save(ctx context.Context, chatID int64, conv assistant.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to encode session %d: %w", chatID, err)
	}

	now := r.now()
	err = r.queries.UpsertSession(ctx, sessiondb.UpsertSessionParams{
		ChatID:       chatID,
		Conversation: string(data),
		UpdatedAt:    now.UnixMilli(),
		ExpiresAt:    now.Add(r.ttl).UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to save session %d: %w", chatID, err)
	}
	return nil
}

// Delete forgets the conversation of chatID.
func (r *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.queries.DeleteSession(ctx, chatID); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", chatID, err)
	}
	return nil
}

// CleanupExpired removes expired conversations and returns how many rows
// were deleted.
func (r *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := r.queries.CleanupExpiredSessions(ctx, r.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return n, nil
}
