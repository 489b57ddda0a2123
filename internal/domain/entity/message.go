package entity

import "time"

// MessageTTL is how long a message stays inside the live room window.
// Expired messages are filtered out by the store query, not deleted.
const MessageTTL = 48 * time.Hour

const replyPreviewLimit = 50

// Escalation statuses written by the timer engine, plus the two terminal
// resolutions. Transitions are monotonic: pending -> urgent -> unanswered,
// with answered reachable from any pre-terminal state.
const (
	MessageStatusPending    = "pending"
	MessageStatusUrgent     = "urgent"
	MessageStatusAnswered   = "answered"
	MessageStatusUnanswered = "unanswered"
)

// Display statuses handed to clients for visual treatment.
const (
	DisplayStatusNone       = "none"
	DisplayStatusPending    = "pending"
	DisplayStatusUrgent     = "urgent"
	DisplayStatusUnanswered = "unanswered"
	DisplayStatusAnswered   = "answered"
)

// ReplyRef is a denormalized snapshot of the message being replied to, taken
// at send time. It is never refreshed; the original may expire from the live
// window while the preview stays displayable.
type ReplyRef struct {
	ID         string `json:"id" firestore:"id"`
	SenderName string `json:"sender_name" firestore:"senderName"`
	Content    string `json:"content" firestore:"content"`
}

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	RoomID     string    `json:"room_id" firestore:"roomId"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	SenderName string    `json:"sender_name" firestore:"senderName"`
	SenderType string    `json:"sender_type" firestore:"senderType"` // "user", "consultant", "resident", "guest"
	Content    string    `json:"content" firestore:"content"`
	Country    string    `json:"country" firestore:"country"`
	Category   string    `json:"category" firestore:"category"` // "study", "travel", "visa"
	RoomType   string    `json:"room_type" firestore:"roomType"`
	Timestamp  time.Time `json:"timestamp" firestore:"timestamp"`
	ExpiresAt  time.Time `json:"expires_at" firestore:"expiresAt"`
	ReplyTo    *ReplyRef `json:"reply_to,omitempty" firestore:"replyTo,omitempty"`

	// Question-tracking fields. Status and IsUnanswered are authoritative in
	// the store; local timers only derive them.
	Status                 string `json:"status,omitempty" firestore:"status,omitempty"`
	HasConsultantReply     bool   `json:"has_consultant_reply" firestore:"hasConsultantReply"`
	IsUnanswered           bool   `json:"is_unanswered" firestore:"isUnanswered"`
	RepliedAfterUnanswered bool   `json:"replied_after_unanswered,omitempty" firestore:"repliedAfterUnanswered,omitempty"`

	AnsweredBy   string     `json:"answered_by,omitempty" firestore:"answeredBy,omitempty"`
	AnsweredAt   *time.Time `json:"answered_at,omitempty" firestore:"answeredAt,omitempty"`
	UnansweredAt *time.Time `json:"unanswered_at,omitempty" firestore:"unansweredAt,omitempty"`
	LateReplyBy  string     `json:"late_reply_by,omitempty" firestore:"lateReplyBy,omitempty"`
	LateReplyAt  *time.Time `json:"late_reply_at,omitempty" firestore:"lateReplyAt,omitempty"`
}

// NewReplyRef builds the denormalized reply preview for a target message.
func NewReplyRef(target *Message) *ReplyRef {
	preview := target.Content
	if len(preview) > replyPreviewLimit {
		preview = preview[:replyPreviewLimit] + "..."
	}

	return &ReplyRef{
		ID:         target.ID,
		SenderName: target.SenderName,
		Content:    preview,
	}
}

// DisplayStatus maps the stored question-tracking fields to the status badge
// clients render. Once a question went unanswered it stays unanswered even if
// a late reply arrived afterwards.
func (m *Message) DisplayStatus() string {
	if m.IsUnanswered {
		return DisplayStatusUnanswered
	}
	if m.HasConsultantReply {
		return DisplayStatusAnswered
	}

	switch m.Status {
	case MessageStatusPending:
		return DisplayStatusPending
	case MessageStatusUrgent:
		return DisplayStatusUrgent
	case MessageStatusUnanswered:
		return DisplayStatusUnanswered
	}
	return DisplayStatusNone
}

// Resolved reports whether the message needs no further timer tracking.
func (m *Message) Resolved() bool {
	return m.HasConsultantReply || m.IsUnanswered
}
