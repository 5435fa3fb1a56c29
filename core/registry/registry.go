// Package registry defines the participant registry: which users of a chat
// belong to which outage schedule group.
package registry

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no member matches the given chat and user.
var ErrNotFound = errors.New("registry: member not found")

// Member is one registered participant of a chat.
type Member struct {
	ChatID       int64
	UserID       int64
	Name         string
	Group        string
	RegisteredAt time.Time
}

// Store persists chat members. Register upserts on (chat, user).
type Store interface {
	Register(ctx context.Context, m Member) error
	Member(ctx context.Context, chatID, userID int64) (Member, error)
	// ChatMembers returns the members of a chat ordered by registration time.
	ChatMembers(ctx context.Context, chatID int64) ([]Member, error)
	Remove(ctx context.Context, chatID, userID int64) error
	// Chats returns the distinct chat IDs that have registered members.
	Chats(ctx context.Context) ([]int64, error)
	Close() error
}
