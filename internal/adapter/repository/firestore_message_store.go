package repository

import (
	"context"
	"log"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	"expertchat/pkg/errors"
)

type firestoreMessageStore struct {
	client *firestore.Client
}

func NewFirestoreMessageStore(client *firestore.Client) repository.MessageStore {
	return &firestoreMessageStore{
		client: client,
	}
}

func (s *firestoreMessageStore) messages(roomID string) *firestore.CollectionRef {
	return s.client.Collection("rooms").Doc(roomID).Collection("messages")
}

func (s *firestoreMessageStore) AppendMessage(ctx context.Context, roomID string, message *entity.Message) (string, error) {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}

	now := time.Now()
	message.RoomID = roomID
	message.Timestamp = now
	message.ExpiresAt = now.Add(entity.MessageTTL)

	_, err := s.messages(roomID).Doc(message.ID).Set(ctx, message)
	if err != nil {
		return "", errors.Internal("Failed to append message", err)
	}

	return message.ID, nil
}

func (s *firestoreMessageStore) UpdateMessageFields(ctx context.Context, roomID, messageID string, fields map[string]interface{}) error {
	_, err := s.messages(roomID).Doc(messageID).Set(ctx, fields, firestore.MergeAll)
	if err != nil {
		return errors.Internal("Failed to update message fields", err)
	}
	return nil
}

func (s *firestoreMessageStore) GetMessage(ctx context.Context, roomID, messageID string) (*entity.Message, error) {
	doc, err := s.messages(roomID).Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (s *firestoreMessageStore) ListMessages(ctx context.Context, roomID string, activeAt time.Time) ([]*entity.Message, error) {
	query := s.messages(roomID).Where("expiresAt", ">=", activeAt)

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating messages for room %s: %v", roomID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			log.Printf("Error parsing message data for room %s: %v", roomID, err)
			continue // Skip bad data instead of failing
		}

		messages = append(messages, &message)
	}

	sortByTimestamp(messages)
	return messages, nil
}

func (s *firestoreMessageStore) SubscribeMessages(ctx context.Context, roomID string, activeAt time.Time, fn func([]*entity.Message)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)

	query := s.messages(roomID).Where("expiresAt", ">=", activeAt)
	snapshots := query.Snapshots(subCtx)

	go func() {
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled {
					return
				}
				log.Printf("Firestore snapshot stream for room %s ended: %v", roomID, err)
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("Firestore error reading snapshot for room %s: %v", roomID, err)
				continue
			}

			var messages []*entity.Message
			for _, doc := range docs {
				var message entity.Message
				if err := doc.DataTo(&message); err != nil {
					log.Printf("Error parsing message data for room %s: %v", roomID, err)
					continue
				}
				messages = append(messages, &message)
			}

			sortByTimestamp(messages)
			fn(messages)
		}
	}()

	return cancel, nil
}

func (s *firestoreMessageStore) ListUnansweredQuestions(ctx context.Context) ([]*entity.Message, error) {
	query := s.client.CollectionGroup("messages").Where("isUnanswered", "==", true)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to query unanswered questions", err)
	}

	var messages []*entity.Message
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			continue // Skip malformed documents
		}
		messages = append(messages, &message)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
	return messages, nil
}

func (s *firestoreMessageStore) SetPresence(ctx context.Context, roomID string, user *entity.RoomUser) error {
	_, err := s.client.Collection("rooms").Doc(roomID).Collection("users").Doc(user.UID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to set presence", err)
	}
	return nil
}

func (s *firestoreMessageStore) RemovePresence(ctx context.Context, roomID, uid string) error {
	_, err := s.client.Collection("rooms").Doc(roomID).Collection("users").Doc(uid).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove presence", err)
	}
	return nil
}

func (s *firestoreMessageStore) ListPresence(ctx context.Context, roomID string) ([]*entity.RoomUser, error) {
	docs, err := s.client.Collection("rooms").Doc(roomID).Collection("users").Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list room users", err)
	}

	var users []*entity.RoomUser
	for _, doc := range docs {
		var user entity.RoomUser
		if err := doc.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].JoinedAt.Before(users[j].JoinedAt)
	})
	return users, nil
}

func sortByTimestamp(messages []*entity.Message) {
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
}
