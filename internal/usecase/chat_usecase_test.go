package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expertchat/internal/domain/entity"
	ws "expertchat/internal/infrastructure/websocket"
	"expertchat/pkg/errors"
)

func newChatTest(t *testing.T) (*ChatUseCase, *memoryStore, *memoryUserRepo) {
	t.Helper()
	store := newMemoryStore()
	userRepo := newMemoryUserRepo()
	uc := NewChatUseCase(store, userRepo, ws.NewManager(), 5)
	return uc, store, userRepo
}

func regularUser(id string) *entity.User {
	return &entity.User{ID: id, DisplayName: "Dimas", UserType: entity.UserTypeUser}
}

func expertUser(id string) *entity.User {
	return &entity.User{ID: id, DisplayName: "Sarah", UserType: entity.UserTypeConsultant}
}

func guestUser(id string, count int) *entity.User {
	return &entity.User{ID: id, DisplayName: "Guest", UserType: entity.UserTypeGuest, MessageCount: count}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	uc, store, _ := newChatTest(t)

	_, err := uc.SendMessage(context.Background(), regularUser("u1"), SendMessageInput{
		RoomID:  testRoomID,
		Content: "   ",
	})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
	assert.Equal(t, 0, store.updateCount())
}

func TestSendMessageStampsRoomFields(t *testing.T) {
	uc, store, _ := newChatTest(t)

	resp, err := uc.SendMessage(context.Background(), regularUser("u1"), SendMessageInput{
		RoomID:  "id-study-general",
		Content: "Hello everyone",
	})
	require.NoError(t, err)

	assert.Equal(t, "id", resp.Country)
	assert.Equal(t, "study", resp.Category)
	assert.Equal(t, entity.RoomTypeGeneral, resp.RoomType)
	assert.Equal(t, entity.DisplayStatusNone, resp.DisplayStatus)

	stored, err := store.GetMessage(context.Background(), "id-study-general", resp.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, stored.Timestamp.Add(entity.MessageTTL), stored.ExpiresAt, time.Second)
}

func TestSendMessageGuestCapEnforced(t *testing.T) {
	uc, store, userRepo := newChatTest(t)

	guest := guestUser("guest-1", 5)
	require.NoError(t, userRepo.Create(context.Background(), guest))

	_, err := uc.SendMessage(context.Background(), guest, SendMessageInput{
		RoomID:  testRoomID,
		Content: "One more question?",
	})

	assert.True(t, errors.Is(err, "GUEST_LIMIT_REACHED"))
	assert.Empty(t, store.messages[testRoomID])
}

func TestSendMessageIncrementsGuestCounter(t *testing.T) {
	uc, _, userRepo := newChatTest(t)

	guest := guestUser("guest-1", 4)
	require.NoError(t, userRepo.Create(context.Background(), guest))

	_, err := uc.SendMessage(context.Background(), guest, SendMessageInput{
		RoomID:  testRoomID,
		Content: "Last free question?",
	})
	require.NoError(t, err)

	assert.Equal(t, 5, guest.MessageCount)

	stored, err := userRepo.GetByID(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, 5, stored.MessageCount)
}

func TestSendMessageExpertMustReply(t *testing.T) {
	uc, _, _ := newChatTest(t)

	_, err := uc.SendMessage(context.Background(), expertUser("c1"), SendMessageInput{
		RoomID:  testRoomID,
		Content: "Generally the embassy takes two weeks",
	})

	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSendMessageRejectsMissingReplyTarget(t *testing.T) {
	uc, _, _ := newChatTest(t)

	_, err := uc.SendMessage(context.Background(), expertUser("c1"), SendMessageInput{
		RoomID:    testRoomID,
		Content:   "Two weeks usually",
		ReplyToID: "ghost",
	})

	assert.True(t, errors.Is(err, "BAD_REQUEST"))
}

func TestExpertReplyMarksQuestionAnswered(t *testing.T) {
	uc, store, _ := newChatTest(t)

	question := &entity.Message{
		SenderID:   "u1",
		SenderName: "Dimas",
		SenderType: entity.UserTypeUser,
		Content:    strings.Repeat("Is a bank statement required for the application? ", 3),
		Status:     entity.MessageStatusUrgent,
	}
	id, err := store.AppendMessage(context.Background(), testRoomID, question)
	require.NoError(t, err)

	resp, err := uc.SendMessage(context.Background(), expertUser("c1"), SendMessageInput{
		RoomID:    testRoomID,
		Content:   "Yes, covering the last three months",
		ReplyToID: id,
	})
	require.NoError(t, err)

	// Denormalized preview, truncated at 50 characters.
	require.NotNil(t, resp.ReplyTo)
	assert.Equal(t, id, resp.ReplyTo.ID)
	assert.Equal(t, "Dimas", resp.ReplyTo.SenderName)
	assert.Len(t, resp.ReplyTo.Content, 53)
	assert.True(t, strings.HasSuffix(resp.ReplyTo.Content, "..."))

	target, err := store.GetMessage(context.Background(), testRoomID, id)
	require.NoError(t, err)
	assert.True(t, target.HasConsultantReply)
	assert.Equal(t, entity.MessageStatusAnswered, target.Status)
	assert.Equal(t, "c1", target.AnsweredBy)
	assert.NotNil(t, target.AnsweredAt)
	assert.Equal(t, entity.DisplayStatusAnswered, target.DisplayStatus())
}

func TestLateExpertReplyPreservesUnanswered(t *testing.T) {
	uc, store, _ := newChatTest(t)

	question := &entity.Message{
		SenderID:   "u1",
		SenderName: "Dimas",
		SenderType: entity.UserTypeUser,
		Content:    "Can I extend a tourist visa in-country?",
	}
	id, err := store.AppendMessage(context.Background(), testRoomID, question)
	require.NoError(t, err)

	store.mu.Lock()
	store.messages[testRoomID][id].Status = entity.MessageStatusUnanswered
	store.messages[testRoomID][id].IsUnanswered = true
	store.mu.Unlock()

	_, err = uc.SendMessage(context.Background(), expertUser("c1"), SendMessageInput{
		RoomID:    testRoomID,
		Content:   "Only once, and you must apply before it lapses",
		ReplyToID: id,
	})
	require.NoError(t, err)

	target, err := store.GetMessage(context.Background(), testRoomID, id)
	require.NoError(t, err)
	assert.True(t, target.HasConsultantReply)
	assert.True(t, target.RepliedAfterUnanswered)
	assert.Equal(t, "c1", target.LateReplyBy)
	assert.NotNil(t, target.LateReplyAt)

	// The terminal state is frozen: the badge stays unanswered.
	assert.True(t, target.IsUnanswered)
	assert.Equal(t, entity.MessageStatusUnanswered, target.Status)
	assert.Equal(t, entity.DisplayStatusUnanswered, target.DisplayStatus())
}

func TestSendMessageRateLimited(t *testing.T) {
	uc, _, _ := newChatTest(t)
	sender := regularUser("u1")

	for i := 0; i < 10; i++ {
		_, err := uc.SendMessage(context.Background(), sender, SendMessageInput{
			RoomID:  testRoomID,
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	_, err := uc.SendMessage(context.Background(), sender, SendMessageInput{
		RoomID:  testRoomID,
		Content: "message 11",
	})
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestListRoomMessagesExcludesExpired(t *testing.T) {
	uc, store, _ := newChatTest(t)

	fresh := &entity.Message{SenderID: "u1", Content: "Still visible"}
	id, err := store.AppendMessage(context.Background(), testRoomID, fresh)
	require.NoError(t, err)

	expired := &entity.Message{SenderID: "u1", Content: "Two days old"}
	_, err = store.AppendMessage(context.Background(), testRoomID, expired)
	require.NoError(t, err)
	store.mu.Lock()
	store.messages[testRoomID][expired.ID].ExpiresAt = time.Now().Add(-time.Minute)
	store.mu.Unlock()

	messages, total, err := uc.ListRoomMessages(context.Background(), testRoomID, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
}

func TestUnansweredQueueRequiresExpert(t *testing.T) {
	uc, store, _ := newChatTest(t)

	m := &entity.Message{SenderID: "u1", Content: "Anyone? Is IELTS mandatory?", IsUnanswered: true}
	_, err := store.AppendMessage(context.Background(), testRoomID, m)
	require.NoError(t, err)

	_, err = uc.ListUnansweredQuestions(context.Background(), regularUser("u1"))
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	queue, err := uc.ListUnansweredQuestions(context.Background(), expertUser("c1"))
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, entity.DisplayStatusUnanswered, queue[0].DisplayStatus)
}

func TestJoinLeaveRoomSessionLifecycle(t *testing.T) {
	uc, store, _ := newChatTest(t)
	ctx := context.Background()

	require.NoError(t, uc.JoinRoom(ctx, testRoomID, regularUser("u1")))
	require.NoError(t, uc.JoinRoom(ctx, testRoomID, regularUser("u2")))

	uc.mu.Lock()
	require.Len(t, uc.sessions, 1)
	session := uc.sessions[testRoomID]
	assert.Equal(t, 2, session.members)
	uc.mu.Unlock()

	users, err := uc.RoomUsers(ctx, testRoomID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	// A question sent while the session is live starts its escalation clock.
	_, err = uc.SendMessage(ctx, regularUser("u1"), SendMessageInput{
		RoomID:  testRoomID,
		Content: "Do I need travel insurance?",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, session.engine.TrackedCount())

	// Snapshot delivery replays the same question; still one timer set.
	store.push(testRoomID)
	assert.Equal(t, 1, session.engine.TrackedCount())

	uc.LeaveRoom(ctx, testRoomID, "u1")
	uc.mu.Lock()
	assert.Len(t, uc.sessions, 1)
	uc.mu.Unlock()

	uc.LeaveRoom(ctx, testRoomID, "u2")
	uc.mu.Lock()
	assert.Empty(t, uc.sessions)
	uc.mu.Unlock()

	// Session teardown drained the engine.
	assert.Equal(t, 0, session.engine.TrackedCount())

	users, err = uc.RoomUsers(ctx, testRoomID)
	require.NoError(t, err)
	assert.Empty(t, users)
}
