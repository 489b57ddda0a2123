package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"
	"time"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	"expertchat/internal/domain/service"
	"expertchat/internal/infrastructure/ratelimit"
	ws "expertchat/internal/infrastructure/websocket"
	"expertchat/pkg/errors"
)

type ChatUseCase struct {
	store       repository.MessageStore
	userRepo    repository.UserRepository
	wsManager   *ws.Manager
	rateLimiter *ratelimit.RateLimiter
	guestLimit  int

	mu       sync.Mutex
	sessions map[string]*roomSession
}

func NewChatUseCase(
	store repository.MessageStore,
	userRepo repository.UserRepository,
	wsManager *ws.Manager,
	guestLimit int,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		store:       store,
		userRepo:    userRepo,
		wsManager:   wsManager,
		rateLimiter: rateLimiter,
		guestLimit:  guestLimit,
		sessions:    make(map[string]*roomSession),
	}
}

type SendMessageInput struct {
	RoomID    string
	Content   string
	ReplyToID string
}

// JoinRoom registers the user's presence and makes sure a live session
// (subscription + timer engine) exists for the room.
func (uc *ChatUseCase) JoinRoom(ctx context.Context, roomID string, user *entity.User) error {
	if err := uc.store.SetPresence(ctx, roomID, &entity.RoomUser{
		UID:         user.ID,
		DisplayName: user.DisplayName,
		UserType:    user.UserType,
		JoinedAt:    time.Now(),
	}); err != nil {
		log.Printf("JoinRoom: failed to set presence for %s in %s: %v", user.ID, roomID, err)
		return err
	}

	uc.mu.Lock()
	session, ok := uc.sessions[roomID]
	if !ok {
		var err error
		session, err = openRoomSession(context.Background(), roomID, uc.store, uc.wsManager)
		if err != nil {
			uc.mu.Unlock()
			log.Printf("JoinRoom: failed to open session for %s: %v", roomID, err)
			return errors.Internal("Failed to open room", err)
		}
		uc.sessions[roomID] = session
	}
	session.members++
	uc.mu.Unlock()

	uc.broadcastPresence(ctx, roomID)
	return nil
}

// LeaveRoom removes the user's presence. When the last member leaves, the
// session is torn down: every outstanding timer is cancelled and the store
// subscription is dropped.
func (uc *ChatUseCase) LeaveRoom(ctx context.Context, roomID, uid string) {
	if err := uc.store.RemovePresence(ctx, roomID, uid); err != nil {
		log.Printf("LeaveRoom: failed to remove presence for %s in %s: %v", uid, roomID, err)
	}

	uc.mu.Lock()
	if session, ok := uc.sessions[roomID]; ok {
		session.members--
		if session.members <= 0 {
			session.close()
			delete(uc.sessions, roomID)
		}
	}
	uc.mu.Unlock()

	uc.broadcastPresence(ctx, roomID)
}

// SendMessage validates the send against role rules, appends the message, and
// runs the reply linker and timer tracking.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sender *entity.User, input SendMessageInput) (*MessageResponse, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest("Message content is required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(sender.ID, "send_message")
	if !allowed {
		log.Printf("SendMessage rate limited: user %s must wait %v", sender.ID, waitTime)
		return nil, errors.TooManyRequests("Too many messages. Please slow down", waitTime)
	}

	// Industry Experts may only write in reply to an existing message.
	if sender.IsConsultant() && input.ReplyToID == "" {
		return nil, errors.Forbidden("Experts can only reply to existing messages", nil)
	}

	if sender.IsGuest() && sender.MessageCount >= uc.guestLimit {
		return nil, errors.GuestLimit("Guest message limit reached. Sign up to keep chatting")
	}

	var replyTarget *entity.Message
	if input.ReplyToID != "" {
		target, err := uc.store.GetMessage(ctx, input.RoomID, input.ReplyToID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				return nil, errors.BadRequest("Reply target no longer exists", err)
			}
			return nil, err
		}
		replyTarget = target
	}

	country, category := splitRoomID(input.RoomID)
	message := &entity.Message{
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		SenderType: sender.UserType,
		Content:    content,
		Country:    country,
		Category:   category,
		RoomType:   entity.RoomTypeFor(category),
	}
	if replyTarget != nil {
		message.ReplyTo = entity.NewReplyRef(replyTarget)
	}

	if _, err := uc.store.AppendMessage(ctx, input.RoomID, message); err != nil {
		log.Printf("SendMessage: append failed for user %s in %s: %v", sender.ID, input.RoomID, err)
		return nil, err
	}

	if sender.IsConsultant() && replyTarget != nil && service.IsQuestion(replyTarget.Content) {
		uc.linkReply(ctx, input.RoomID, replyTarget, sender.ID)
	}

	// New questions from non-experts start their escalation clock right away;
	// the room snapshot will re-deliver them, which Reconcile treats as a
	// no-op for already-tracked ids.
	if service.IsQuestion(content) && !sender.IsConsultant() {
		uc.mu.Lock()
		if session, ok := uc.sessions[input.RoomID]; ok {
			session.engine.Track(message)
		}
		uc.mu.Unlock()
	}

	if sender.IsGuest() {
		count, err := uc.userRepo.IncrementMessageCount(ctx, sender.ID)
		if err != nil {
			log.Printf("SendMessage: failed to bump guest counter for %s: %v", sender.ID, err)
		} else {
			sender.MessageCount = count
		}
	}

	return &MessageResponse{Message: message, DisplayStatus: message.DisplayStatus()}, nil
}

// linkReply resolves the replied-to question. A question that already went
// unanswered stays frozen in that state; the reply is recorded as late
// instead of reopening it.
func (uc *ChatUseCase) linkReply(ctx context.Context, roomID string, target *entity.Message, replierID string) {
	now := time.Now()

	if !target.IsUnanswered {
		err := uc.store.UpdateMessageFields(ctx, roomID, target.ID, map[string]interface{}{
			"hasConsultantReply": true,
			"status":             entity.MessageStatusAnswered,
			"answeredAt":         now,
			"answeredBy":         replierID,
		})
		if err != nil {
			log.Printf("linkReply: failed to mark %s answered: %v", target.ID, err)
			return
		}

		uc.mu.Lock()
		if session, ok := uc.sessions[roomID]; ok {
			session.engine.Resolve(target.ID)
		}
		uc.mu.Unlock()
		return
	}

	err := uc.store.UpdateMessageFields(ctx, roomID, target.ID, map[string]interface{}{
		"hasConsultantReply":     true,
		"repliedAfterUnanswered": true,
		"lateReplyAt":            now,
		"lateReplyBy":            replierID,
	})
	if err != nil {
		log.Printf("linkReply: failed to record late reply on %s: %v", target.ID, err)
	}
}

// ListRoomMessages returns the room's live window (expired messages are
// filtered out by the store query) with display statuses attached.
func (uc *ChatUseCase) ListRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]*MessageResponse, int64, error) {
	messages, err := uc.store.ListMessages(ctx, roomID, time.Now())
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(messages))

	start := offset
	if start > len(messages) {
		start = len(messages)
	}
	end := len(messages)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return newMessageResponses(messages[start:end]), total, nil
}

// ListUnansweredQuestions powers the expert dashboard.
func (uc *ChatUseCase) ListUnansweredQuestions(ctx context.Context, caller *entity.User) ([]*MessageResponse, error) {
	if !caller.IsConsultant() {
		return nil, errors.Forbidden("Only experts can view the unanswered queue", nil)
	}

	messages, err := uc.store.ListUnansweredQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return newMessageResponses(messages), nil
}

func (uc *ChatUseCase) RoomUsers(ctx context.Context, roomID string) ([]*entity.RoomUser, error) {
	return uc.store.ListPresence(ctx, roomID)
}

func (uc *ChatUseCase) broadcastPresence(ctx context.Context, roomID string) {
	users, err := uc.store.ListPresence(ctx, roomID)
	if err != nil {
		log.Printf("Failed to list presence for %s: %v", roomID, err)
		return
	}

	payload, err := json.Marshal(roomPayload{
		Type:      "presence",
		RoomID:    roomID,
		Users:     users,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Printf("Failed to marshal presence payload for %s: %v", roomID, err)
		return
	}
	uc.wsManager.BroadcastToRoom(roomID, payload)
}

// splitRoomID pulls country and category back out of a "{country}-{category}-{type}"
// room id. Unknown shapes yield empty parts; the message still lands in the room.
func splitRoomID(roomID string) (country, category string) {
	parts := strings.Split(roomID, "-")
	if len(parts) < 3 {
		return "", ""
	}
	return parts[0], parts[1]
}
