package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/recruiterhub/wabot/channel"
	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/domains/schedule"
)

// FollowupScheduler delivers due scheduled messages. One loop instance
// may run per process; the REST cron endpoint calls RunOnce directly.
type FollowupScheduler struct {
	schedules schedule.IScheduleRepository
	contacts  contact.IContactRepository
	adapter   channel.Adapter

	PollInterval time.Duration
	BatchLimit   int
	SendPause    time.Duration

	running atomic.Bool
}

func NewFollowupScheduler(
	schedules schedule.IScheduleRepository,
	contacts contact.IContactRepository,
	adapter channel.Adapter,
) *FollowupScheduler {
	return &FollowupScheduler{
		schedules:    schedules,
		contacts:     contacts,
		adapter:      adapter,
		PollInterval: 60 * time.Second,
		BatchLimit:   50,
		SendPause:    time.Second,
	}
}

// RunOnce processes one batch of due pending rows. Every row transitions
// to sent or failed exactly once; rows are never re-enqueued.
func (s *FollowupScheduler) RunOnce(ctx context.Context) (sent, failed int) {
	now := time.Now().UTC()
	due, err := s.schedules.DuePending(ctx, now, s.BatchLimit)
	if err != nil {
		logrus.WithError(err).Error("[SCHEDULER] Failed to load due messages")
		return 0, 0
	}

	for i, row := range due {
		if ctx.Err() != nil {
			return sent, failed
		}
		if i > 0 {
			// Spread sends out instead of bursting the whole batch.
			select {
			case <-ctx.Done():
				return sent, failed
			case <-time.After(s.SendPause):
			}
		}
		if s.deliver(ctx, row) {
			sent++
		} else {
			failed++
		}
	}
	return sent, failed
}

func (s *FollowupScheduler) deliver(ctx context.Context, row schedule.ScheduledMessage) bool {
	now := time.Now().UTC()

	c, err := s.contacts.GetByID(ctx, row.ContactID)
	if err != nil || c == nil {
		logrus.Warnf("[SCHEDULER] Contact %s not found for scheduled message %s", row.ContactID, row.ID)
		s.mark(ctx, row.ID, false, now)
		return false
	}
	if c.OptOut {
		logrus.Infof("[SCHEDULER] Contact %s opted out, dropping scheduled message %s", c.ChatID, row.ID)
		s.mark(ctx, row.ID, false, now)
		return false
	}

	if err := s.adapter.SendMessage(ctx, c.ChatID, row.MessageText); err != nil {
		logrus.WithError(err).Errorf("[SCHEDULER] Send failed for scheduled message %s", row.ID)
		s.mark(ctx, row.ID, false, now)
		return false
	}

	s.mark(ctx, row.ID, true, now)
	return true
}

func (s *FollowupScheduler) mark(ctx context.Context, id string, ok bool, at time.Time) {
	var err error
	if ok {
		err = s.schedules.MarkSent(ctx, id, at)
	} else {
		err = s.schedules.MarkFailed(ctx, id, at)
	}
	if err != nil {
		logrus.WithError(err).Errorf("[SCHEDULER] Failed to mark scheduled message %s", id)
	}
}

// StartLoop runs RunOnce on a fixed interval until the context is
// cancelled. A second concurrent call is a no-op.
func (s *FollowupScheduler) StartLoop(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		logrus.Warn("[SCHEDULER] Loop already running, ignoring start")
		return
	}
	defer s.running.Store(false)

	logrus.Infof("[SCHEDULER] Loop started, interval %s", s.PollInterval)
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Info("[SCHEDULER] Loop stopped")
			return
		case <-ticker.C:
			sent, failed := s.RunOnce(ctx)
			if sent > 0 || failed > 0 {
				logrus.Infof("[SCHEDULER] Batch done: %d sent, %d failed", sent, failed)
			}
		}
	}
}
