package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	"expertchat/pkg/errors"
)

// memoryStore is an in-memory stand-in for the shared message store. It
// mirrors the store contract the Firestore adapter provides: generated keys,
// field-merge updates, full-window subscription callbacks.
type memoryStore struct {
	mu          sync.Mutex
	messages    map[string]map[string]*entity.Message
	presence    map[string]map[string]*entity.RoomUser
	updates     []fieldUpdate
	subscribers map[string][]func([]*entity.Message)
	failUpdates bool
	nextID      int
}

type fieldUpdate struct {
	RoomID    string
	MessageID string
	Fields    map[string]interface{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		messages:    make(map[string]map[string]*entity.Message),
		presence:    make(map[string]map[string]*entity.RoomUser),
		subscribers: make(map[string][]func([]*entity.Message)),
	}
}

var _ repository.MessageStore = (*memoryStore)(nil)

func (s *memoryStore) AppendMessage(ctx context.Context, roomID string, message *entity.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", s.nextID)
	}

	now := time.Now()
	message.RoomID = roomID
	message.Timestamp = now
	message.ExpiresAt = now.Add(entity.MessageTTL)

	if s.messages[roomID] == nil {
		s.messages[roomID] = make(map[string]*entity.Message)
	}
	copied := *message
	s.messages[roomID][message.ID] = &copied
	return message.ID, nil
}

func (s *memoryStore) UpdateMessageFields(ctx context.Context, roomID, messageID string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failUpdates {
		return errors.Internal("Failed to update message fields", nil)
	}

	s.updates = append(s.updates, fieldUpdate{RoomID: roomID, MessageID: messageID, Fields: fields})

	m, ok := s.messages[roomID][messageID]
	if !ok {
		return nil
	}
	for k, v := range fields {
		switch k {
		case "status":
			m.Status = v.(string)
		case "isUnanswered":
			m.IsUnanswered = v.(bool)
		case "hasConsultantReply":
			m.HasConsultantReply = v.(bool)
		case "repliedAfterUnanswered":
			m.RepliedAfterUnanswered = v.(bool)
		case "answeredBy":
			m.AnsweredBy = v.(string)
		case "lateReplyBy":
			m.LateReplyBy = v.(string)
		case "answeredAt":
			t := v.(time.Time)
			m.AnsweredAt = &t
		case "unansweredAt":
			t := v.(time.Time)
			m.UnansweredAt = &t
		case "lateReplyAt":
			t := v.(time.Time)
			m.LateReplyAt = &t
		}
	}
	return nil
}

func (s *memoryStore) GetMessage(ctx context.Context, roomID, messageID string) (*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[roomID][messageID]
	if !ok {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *m
	return &copied, nil
}

func (s *memoryStore) ListMessages(ctx context.Context, roomID string, activeAt time.Time) ([]*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.windowLocked(roomID, activeAt), nil
}

func (s *memoryStore) SubscribeMessages(ctx context.Context, roomID string, activeAt time.Time, fn func([]*entity.Message)) (func(), error) {
	s.mu.Lock()
	s.subscribers[roomID] = append(s.subscribers[roomID], fn)
	idx := len(s.subscribers[roomID]) - 1
	s.mu.Unlock()

	cancelled := false
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !cancelled {
			s.subscribers[roomID][idx] = nil
			cancelled = true
		}
	}, nil
}

// push re-delivers the full live window to every subscriber, the way the
// real store does on any change.
func (s *memoryStore) push(roomID string) {
	s.mu.Lock()
	window := s.windowLocked(roomID, time.Now())
	subs := append([]func([]*entity.Message){}, s.subscribers[roomID]...)
	s.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(window)
		}
	}
}

func (s *memoryStore) ListUnansweredQuestions(ctx context.Context) ([]*entity.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.Message
	for _, room := range s.messages {
		for _, m := range room {
			if m.IsUnanswered {
				copied := *m
				out = append(out, &copied)
			}
		}
	}
	return out, nil
}

func (s *memoryStore) SetPresence(ctx context.Context, roomID string, user *entity.RoomUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presence[roomID] == nil {
		s.presence[roomID] = make(map[string]*entity.RoomUser)
	}
	s.presence[roomID][user.UID] = user
	return nil
}

func (s *memoryStore) RemovePresence(ctx context.Context, roomID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.presence[roomID], uid)
	return nil
}

func (s *memoryStore) ListPresence(ctx context.Context, roomID string) ([]*entity.RoomUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.RoomUser
	for _, u := range s.presence[roomID] {
		out = append(out, u)
	}
	return out, nil
}

func (s *memoryStore) windowLocked(roomID string, activeAt time.Time) []*entity.Message {
	var out []*entity.Message
	for _, m := range s.messages[roomID] {
		if m.ExpiresAt.Before(activeAt) {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	return out
}

func (s *memoryStore) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func (s *memoryStore) lastUpdate() fieldUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[len(s.updates)-1]
}

// memoryUserRepo is an in-memory UserRepository.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

var _ repository.UserRepository = (*memoryUserRepo)(nil)

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*entity.User)}
}

func (r *memoryUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memoryUserRepo) IncrementMessageCount(ctx context.Context, id string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, errors.NotFound("User", nil)
	}
	u.MessageCount++
	return u.MessageCount, nil
}
