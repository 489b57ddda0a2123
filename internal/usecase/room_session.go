package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	ws "expertchat/internal/infrastructure/websocket"
)

// roomSession owns the server side of one live room: the store subscription,
// the timer engine derived from it, and the member count. The timer set's
// lifetime is tied one-to-one to the subscription: created on subscribe,
// drained on unsubscribe.
type roomSession struct {
	roomID      string
	engine      *TimerEngine
	unsubscribe func()
	members     int
}

// roomPayload is what connected clients receive on every snapshot delivery.
type roomPayload struct {
	Type      string             `json:"type"`
	RoomID    string             `json:"room_id"`
	Messages  []*MessageResponse `json:"messages,omitempty"`
	Users     []*entity.RoomUser `json:"users,omitempty"`
	Timestamp string             `json:"timestamp"`
}

// MessageResponse pairs a message with the status badge derived for display.
type MessageResponse struct {
	*entity.Message
	DisplayStatus string `json:"display_status"`
}

func newMessageResponses(messages []*entity.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, &MessageResponse{Message: m, DisplayStatus: m.DisplayStatus()})
	}
	return out
}

func openRoomSession(ctx context.Context, roomID string, store repository.MessageStore, manager *ws.Manager) (*roomSession, error) {
	session := &roomSession{
		roomID: roomID,
		engine: NewTimerEngine(store, roomID),
	}

	unsubscribe, err := store.SubscribeMessages(ctx, roomID, time.Now(), func(messages []*entity.Message) {
		session.engine.Reconcile(messages)

		payload, err := json.Marshal(roomPayload{
			Type:      "messages",
			RoomID:    roomID,
			Messages:  newMessageResponses(messages),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("Failed to marshal room payload for %s: %v", roomID, err)
			return
		}
		manager.BroadcastToRoom(roomID, payload)
	})
	if err != nil {
		return nil, err
	}

	session.unsubscribe = unsubscribe
	return session, nil
}

func (s *roomSession) close() {
	s.engine.Stop()
	s.unsubscribe()
}
