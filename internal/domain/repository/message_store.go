package repository

import (
	"context"
	"time"

	"expertchat/internal/domain/entity"
)

// MessageStore is the shared, externally-owned message store. Any connected
// process may issue partial updates against a message; the store itself
// provides no transactions, so callers must keep their writes convergent
// (identical inputs produce identical target values).
type MessageStore interface {
	// AppendMessage creates the message under a generated key and stamps its
	// creation and expiry times. Returns the generated ID.
	AppendMessage(ctx context.Context, roomID string, message *entity.Message) (string, error)

	// UpdateMessageFields merges the given fields into an existing message.
	// There is no optimistic-concurrency token; last write wins.
	UpdateMessageFields(ctx context.Context, roomID, messageID string, fields map[string]interface{}) error

	GetMessage(ctx context.Context, roomID, messageID string) (*entity.Message, error)

	// ListMessages returns the live window: messages whose expiresAt is at or
	// after activeAt, oldest first.
	ListMessages(ctx context.Context, roomID string, activeAt time.Time) ([]*entity.Message, error)

	// SubscribeMessages delivers the full live window on every change, not a
	// diff. Consumers must treat each delivery as a restatement of all
	// visible messages. The returned func tears the subscription down.
	SubscribeMessages(ctx context.Context, roomID string, activeAt time.Time, fn func([]*entity.Message)) (func(), error)

	// ListUnansweredQuestions returns questions that reached the terminal
	// unanswered state across all rooms, newest first.
	ListUnansweredQuestions(ctx context.Context) ([]*entity.Message, error)

	SetPresence(ctx context.Context, roomID string, user *entity.RoomUser) error
	RemovePresence(ctx context.Context, roomID, uid string) error
	ListPresence(ctx context.Context, roomID string) ([]*entity.RoomUser, error)
}
