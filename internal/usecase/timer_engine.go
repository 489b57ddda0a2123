package usecase

import (
	"context"
	"sync"
	"time"

	"expertchat/internal/domain/entity"
	"expertchat/internal/domain/repository"
	"expertchat/internal/domain/service"
	"expertchat/pkg/logger"
)

// Escalation thresholds, measured from message creation.
const (
	PendingAfter    = 30 * time.Second
	UrgentAfter     = 60 * time.Second
	UnansweredAfter = 120 * time.Second
)

// TimerEngine escalates unanswered questions through pending -> urgent ->
// unanswered over wall-clock time, writing each transition back to the shared
// store. One engine is owned by one room subscription; its timer set is
// created with the subscription and drained when the subscription goes away.
//
// The engine's state is purely derived: the authoritative status lives in the
// store, which any connected process may write. Concurrent writers converge
// because every writer computes the same target values from the same message
// timestamp and thresholds.
type TimerEngine struct {
	store  repository.MessageStore
	roomID string

	mu      sync.Mutex
	timers  map[string][]*time.Timer
	stopped bool
}

func NewTimerEngine(store repository.MessageStore, roomID string) *TimerEngine {
	return &TimerEngine{
		store:  store,
		roomID: roomID,
		timers: make(map[string][]*time.Timer),
	}
}

// Reconcile processes one snapshot delivery. The store restates the full
// live window on every change, so this must be safe to re-run against the
// same messages: already-tracked and already-resolved messages are skipped,
// and stale timer sets for remotely-resolved messages are cancelled.
func (e *TimerEngine) Reconcile(messages []*entity.Message) {
	for _, m := range messages {
		e.mu.Lock()
		_, tracked := e.timers[m.ID]
		e.mu.Unlock()

		if tracked && m.Resolved() {
			e.Resolve(m.ID)
			continue
		}

		if !tracked && service.IsQuestion(m.Content) && !m.Resolved() &&
			m.Status != entity.MessageStatusUnanswered {
			e.Track(m)
		}
	}
}

// Track schedules the escalation timers for a question message. Thresholds
// already in the past are written out immediately, so a message first
// observed late (reconnect, or created before this process subscribed) still
// converges to the correct status.
func (e *TimerEngine) Track(m *entity.Message) {
	if !service.IsQuestion(m.Content) || m.HasConsultantReply || m.IsUnanswered {
		return
	}

	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.cancelLocked(m.ID)

	elapsed := time.Since(m.Timestamp)
	id := m.ID

	var timers []*time.Timer
	type catchUp struct {
		status string
		fields map[string]interface{}
	}
	var immediate []catchUp

	if elapsed < PendingAfter {
		timers = append(timers, time.AfterFunc(PendingAfter-elapsed, func() {
			e.fire(id, entity.MessageStatusPending, nil)
		}))
	} else if elapsed < UrgentAfter && m.Status == "" {
		immediate = append(immediate, catchUp{status: entity.MessageStatusPending})
	}

	if elapsed < UrgentAfter {
		timers = append(timers, time.AfterFunc(UrgentAfter-elapsed, func() {
			e.fire(id, entity.MessageStatusUrgent, nil)
		}))
	} else if elapsed < UnansweredAfter && m.Status != entity.MessageStatusUrgent {
		immediate = append(immediate, catchUp{status: entity.MessageStatusUrgent})
	}

	if elapsed < UnansweredAfter {
		timers = append(timers, time.AfterFunc(UnansweredAfter-elapsed, func() {
			e.fire(id, entity.MessageStatusUnanswered, terminalFields())
			e.Resolve(id)
		}))
	} else if !m.IsUnanswered {
		immediate = append(immediate, catchUp{
			status: entity.MessageStatusUnanswered,
			fields: terminalFields(),
		})
	}

	// An empty timer set still marks the message as tracked, so replayed
	// snapshots do not repeat the catch-up writes.
	e.timers[id] = timers
	e.mu.Unlock()

	for _, c := range immediate {
		e.writeStatus(id, c.status, c.fields)
	}
}

// Resolve cancels and forgets every pending timer for the message. Called
// when a qualifying reply lands or when a snapshot shows the message was
// resolved by another client.
func (e *TimerEngine) Resolve(messageID string) {
	e.mu.Lock()
	e.cancelLocked(messageID)
	e.mu.Unlock()
}

// Stop drains the whole timer set. The engine is unusable afterwards.
func (e *TimerEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopped = true
	for id := range e.timers {
		e.cancelLocked(id)
	}
}

// TrackedCount reports how many messages currently hold a timer set.
func (e *TimerEngine) TrackedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

func (e *TimerEngine) cancelLocked(messageID string) {
	for _, t := range e.timers[messageID] {
		t.Stop()
	}
	delete(e.timers, messageID)
}

// fire runs from a timer callback. A message resolved between scheduling and
// firing has had its entry removed, so the write is skipped.
func (e *TimerEngine) fire(messageID, status string, fields map[string]interface{}) {
	e.mu.Lock()
	_, tracked := e.timers[messageID]
	stopped := e.stopped
	e.mu.Unlock()

	if stopped || !tracked {
		return
	}

	e.writeStatus(messageID, status, fields)
}

// writeStatus issues the transition write. Failures are logged and swallowed:
// the store's next snapshot is authoritative and a later observation (from
// this or another client) re-derives the correction.
func (e *TimerEngine) writeStatus(messageID, status string, extra map[string]interface{}) {
	fields := map[string]interface{}{"status": status}
	for k, v := range extra {
		fields[k] = v
	}

	if err := e.store.UpdateMessageFields(context.Background(), e.roomID, messageID, fields); err != nil {
		logger.Error("Failed to update message %s in room %s to %s: %v", messageID, e.roomID, status, err)
	}
}

func terminalFields() map[string]interface{} {
	return map[string]interface{}{
		"isUnanswered": true,
		"unansweredAt": time.Now(),
	}
}
