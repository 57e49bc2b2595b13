package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/domains/schedule"
)

// In-memory repositories. They back the test suites and small
// single-process deployments that do not need a database file.

type MemoryContactRepository struct {
	mu       sync.RWMutex
	byChatID map[string]*contact.Contact
}

func NewMemoryContactRepository() *MemoryContactRepository {
	return &MemoryContactRepository{byChatID: make(map[string]*contact.Contact)}
}

func (r *MemoryContactRepository) GetByChatID(_ context.Context, chatID string) (*contact.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byChatID[chatID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryContactRepository) GetByID(_ context.Context, id string) (*contact.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.byChatID {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryContactRepository) Create(_ context.Context, c *contact.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	r.byChatID[c.ChatID] = &cp
	return nil
}

func (r *MemoryContactRepository) Update(_ context.Context, c *contact.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	r.byChatID[c.ChatID] = &cp
	return nil
}

func (r *MemoryContactRepository) MarkOptOut(_ context.Context, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if c, ok := r.byChatID[chatID]; ok {
		c.OptOut = true
		c.UpdatedAt = now
		return nil
	}
	r.byChatID[chatID] = &contact.Contact{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Stage:     contact.StageStart,
		LeadType:  contact.LeadUnknown,
		OptOut:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return nil
}

type MemoryMessageRepository struct {
	mu   sync.RWMutex
	rows []message.Message
}

func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{}
}

func (r *MemoryMessageRepository) ExistsByProviderID(_ context.Context, providerMessageID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.rows {
		if m.ProviderMessageID == providerMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryMessageRepository) Append(_ context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rows {
		if existing.ProviderMessageID == m.ProviderMessageID {
			return message.ErrDuplicate
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	r.rows = append(r.rows, *m)
	return nil
}

func (r *MemoryMessageRepository) Recent(_ context.Context, contactID string, limit int) ([]message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var all []message.Message
	for _, m := range r.rows {
		if m.ContactID == contactID {
			all = append(all, m)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (r *MemoryMessageRepository) History(_ context.Context, limit int) ([]message.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]message.Message, len(r.rows))
	copy(all, r.rows)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]message.HistoryEntry, 0, len(all))
	for _, m := range all {
		out = append(out, message.HistoryEntry{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			Direction: m.Direction,
			Text:      m.Text,
		})
	}
	return out, nil
}

// All returns a copy of every stored message, oldest-first. Test helper.
func (r *MemoryMessageRepository) All() []message.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]message.Message, len(r.rows))
	copy(out, r.rows)
	return out
}

type MemorySettingsRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{values: make(map[string]string)}
}

func (r *MemorySettingsRepository) GetAll(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out, nil
}

func (r *MemorySettingsRepository) Set(_ context.Context, key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

type MemoryScheduleRepository struct {
	mu   sync.RWMutex
	rows map[string]*schedule.ScheduledMessage
}

func NewMemoryScheduleRepository() *MemoryScheduleRepository {
	return &MemoryScheduleRepository{rows: make(map[string]*schedule.ScheduledMessage)}
}

func (r *MemoryScheduleRepository) Insert(_ context.Context, m *schedule.ScheduledMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = schedule.StatusPending
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	r.rows[m.ID] = &cp
	return nil
}

func (r *MemoryScheduleRepository) DuePending(_ context.Context, now time.Time, limit int) ([]schedule.ScheduledMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var due []schedule.ScheduledMessage
	for _, m := range r.rows {
		if m.Status == schedule.StatusPending && !m.ScheduledAt.After(now) {
			due = append(due, *m)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *MemoryScheduleRepository) MarkSent(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok {
		m.Status = schedule.StatusSent
		m.SentAt = &at
	}
	return nil
}

func (r *MemoryScheduleRepository) MarkFailed(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.rows[id]; ok {
		m.Status = schedule.StatusFailed
		m.SentAt = &at
	}
	return nil
}

// Get returns one row by id. Test helper.
func (r *MemoryScheduleRepository) Get(id string) *schedule.ScheduledMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if m, ok := r.rows[id]; ok {
		cp := *m
		return &cp
	}
	return nil
}

// AllRows returns a copy of every scheduled message. Test helper.
func (r *MemoryScheduleRepository) AllRows() []schedule.ScheduledMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]schedule.ScheduledMessage, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, *m)
	}
	return out
}
