package engine_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mtlprog/taskpulse/internal/domain"
	"github.com/mtlprog/taskpulse/internal/messaging"
)

// memStore is an in-memory implementation of every engine storage interface.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	settings   map[string]*domain.AISettings
	tasks      []*domain.Task
	audit      []*domain.AuditLogEntry
	messages   []*domain.Message
	lastActive map[string]time.Time

	failTaskUpdate bool
	failAudit      bool
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*domain.User{},
		settings:   map[string]*domain.AISettings{},
		lastActive: map[string]time.Time{},
	}
}

func (m *memStore) GetByID(_ context.Context, userID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) ListOpenByAssignee(_ context.Context, assigneeID string) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Task
	for _, t := range m.tasks {
		if t.AssigneeID == assigneeID && t.Status.IsOpen() {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) ApplyUpdate(_ context.Context, taskID, assigneeID string, u domain.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTaskUpdate {
		return errors.New("database unavailable")
	}
	for _, t := range m.tasks {
		if t.ID != taskID {
			continue
		}
		if t.AssigneeID != assigneeID {
			return domain.ErrTaskNotOwned
		}
		if u.Status != nil {
			t.Status = *u.Status
		}
		if u.Deadline != nil {
			t.Deadline = *u.Deadline
		}
		if u.BlockerReason != nil {
			t.BlockerReason = u.BlockerReason
		} else if u.ClearBlockerReason {
			t.BlockerReason = nil
		}
		return nil
	}
	return domain.ErrTaskNotFound
}

func (m *memStore) task(id string) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type memSettings struct{ *memStore }

func (s memSettings) GetByUserID(_ context.Context, userID string) (*domain.AISettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[userID]
	if !ok {
		return nil, domain.ErrSettingsNotFound
	}
	return v, nil
}

// TouchLastActive only updates an existing row, like the Postgres repository.
func (s memSettings) TouchLastActive(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.settings[userID]
	if !ok {
		return nil
	}
	v.LastActiveAt = &at
	s.lastActive[userID] = at
	return nil
}

type memAudit struct{ *memStore }

func (a memAudit) Create(_ context.Context, e *domain.AuditLogEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failAudit {
		return errors.New("audit table locked")
	}
	a.audit = append(a.audit, e)
	return nil
}

type memMessages struct{ *memStore }

func (mm memMessages) Create(_ context.Context, msg *domain.Message) error {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.messages = append(mm.messages, msg)
	return nil
}

func (mm memMessages) ListRecentByUser(_ context.Context, userID string, limit int) ([]*domain.Message, error) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	var out []*domain.Message
	for _, msg := range mm.messages {
		if msg.UserID != nil && *msg.UserID == userID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// recordingDispatcher captures sends and returns a fixed result.
type recordingDispatcher struct {
	result messaging.SendResult
	sent   []sentMessage
}

type sentMessage struct {
	handle string
	body   string
}

func (d *recordingDispatcher) Send(_ context.Context, handle, body string) messaging.SendResult {
	d.sent = append(d.sent, sentMessage{handle: handle, body: body})
	return d.result
}
