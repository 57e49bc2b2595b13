// Package usecase wires the stores, the language-model client and the
// channel transport into the per-message reply pipeline and the
// follow-up scheduler.
package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/recruiterhub/wabot/botengine"
	"github.com/recruiterhub/wabot/channel"
	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/domains/schedule"
	"github.com/recruiterhub/wabot/domains/settings"
	"github.com/recruiterhub/wabot/pkg/textutil"
)

// Outcome summarizes one pipeline run for the transport layer.
type Outcome string

const (
	OutcomeReplied   Outcome = "replied"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeOptedOut  Outcome = "opted_out"
)

// clarifyingReply replaces a model reply that normalized to nothing.
const clarifyingReply = "Понял тебя. Напиши, пожалуйста, из какой ты страны и какая работа интересует."

// recentWindow bounds how many stored messages are loaded as prompt context.
const recentWindow = 30

// defaultFollowupDelayHours applies when the setting is missing or unparseable.
const defaultFollowupDelayHours = 24

// ReplyGenerator produces a validated reply for one inbound message.
// botengine.Client is the production implementation.
type ReplyGenerator interface {
	Generate(ctx context.Context, req botengine.GenerateRequest) botengine.GenerateResult
}

// PipelineService runs the full inbound-message pipeline: opt-out
// handling, contact upsert, dedup, model call, reply dispatch, state
// update and side-effect scheduling.
type PipelineService struct {
	contacts  contact.IContactRepository
	messages  message.IMessageRepository
	settings  settings.ISettingsRepository
	schedules schedule.IScheduleRepository
	engine    ReplyGenerator
	adapter   channel.Adapter
	humanizer *botengine.Humanizer
}

func NewPipelineService(
	contacts contact.IContactRepository,
	messages message.IMessageRepository,
	settingsRepo settings.ISettingsRepository,
	schedules schedule.IScheduleRepository,
	engine ReplyGenerator,
	adapter channel.Adapter,
	humanizer *botengine.Humanizer,
) *PipelineService {
	return &PipelineService{
		contacts:  contacts,
		messages:  messages,
		settings:  settingsRepo,
		schedules: schedules,
		engine:    engine,
		adapter:   adapter,
		humanizer: humanizer,
	}
}

// HandleIncoming processes one inbound message end to end. The returned
// error is non-nil only for store failures on the critical path and for
// a failed reply send; everything else resolves to an Outcome.
func (s *PipelineService) HandleIncoming(ctx context.Context, msg channel.IncomingMessage) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[PIPELINE] Panic while processing %s: %v", msg.MessageID, r)
			outcome = OutcomeIgnored
			err = fmt.Errorf("internal pipeline failure")
		}
	}()

	if msg.FromMe {
		return OutcomeIgnored, nil
	}
	text := textutil.Normalize(msg.Text)
	if msg.ChatID == "" || msg.MessageID == "" || text == "" {
		return OutcomeIgnored, nil
	}

	if textutil.HasOptOut(text) {
		if err := s.contacts.MarkOptOut(ctx, msg.ChatID); err != nil {
			return OutcomeIgnored, fmt.Errorf("opt-out upsert failed: %w", err)
		}
		logrus.Infof("[PIPELINE] Contact %s opted out", msg.ChatID)
		return OutcomeOptedOut, nil
	}

	c, err := s.contacts.GetByChatID(ctx, msg.ChatID)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("contact lookup failed: %w", err)
	}
	isNew := c == nil
	if isNew {
		c = &contact.Contact{
			ChatID:   msg.ChatID,
			Stage:    contact.StageStart,
			LeadType: contact.LeadUnknown,
		}
		if err := s.contacts.Create(ctx, c); err != nil {
			return OutcomeIgnored, fmt.Errorf("contact create failed: %w", err)
		}
	} else if c.OptOut {
		return OutcomeIgnored, nil
	}

	// Providers may redeliver events; the unique index on the provider
	// message id is the authoritative gate, the pre-check just avoids the
	// model call.
	if exists, err := s.messages.ExistsByProviderID(ctx, msg.MessageID); err != nil {
		return OutcomeIgnored, fmt.Errorf("dedup check failed: %w", err)
	} else if exists {
		return OutcomeDuplicate, nil
	}

	if err := s.messages.Append(ctx, &message.Message{
		ContactID:         c.ID,
		Direction:         message.DirectionIn,
		ProviderMessageID: msg.MessageID,
		Text:              text,
	}); err != nil {
		if err == message.ErrDuplicate {
			return OutcomeDuplicate, nil
		}
		return OutcomeIgnored, fmt.Errorf("inbound append failed: %w", err)
	}

	cfg, err := s.settings.GetAll(ctx)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("settings load failed: %w", err)
	}
	recent, err := s.messages.Recent(ctx, c.ID, recentWindow)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("history load failed: %w", err)
	}

	exchanges := make([]botengine.Exchange, 0, len(recent))
	for _, m := range recent {
		exchanges = append(exchanges, botengine.Exchange{
			Inbound: m.Direction == message.DirectionIn,
			Text:    m.Text,
		})
	}

	result := s.engine.Generate(ctx, botengine.GenerateRequest{
		SystemPrompt: composeSystemPrompt(cfg),
		UserText:     text,
		Memory: botengine.Memory{
			Summary: c.Summary,
			Recent:  exchanges,
		},
		Stage: c.Stage,
	})

	reply := textutil.Normalize(result.Reply)
	if reply == "" {
		reply = clarifyingReply
	}
	if result.NeedLink {
		if link := pickLink(cfg, result.LeadType); link != "" {
			reply = reply + "\n\nАнкета/регистрация: " + link
		}
	}

	s.humanizePreSend(ctx, msg.ChatID)

	if err := s.adapter.SendMessage(ctx, msg.ChatID, reply); err != nil {
		return OutcomeIgnored, fmt.Errorf("reply send failed: %w", err)
	}

	if err := s.messages.Append(ctx, &message.Message{
		ContactID:         c.ID,
		Direction:         message.DirectionOut,
		ProviderMessageID: "out:" + msg.MessageID,
		Text:              reply,
	}); err != nil && err != message.ErrDuplicate {
		logrus.WithError(err).Error("[PIPELINE] Outbound append failed")
	}

	if result.NextStage != "" {
		c.Stage = result.NextStage
	}
	c.AppendSummary(result.MemoryUpdate)
	c.LeadType = result.LeadType
	if err := s.contacts.Update(ctx, c); err != nil {
		logrus.WithError(err).Error("[PIPELINE] Contact update failed")
	}

	if isNew {
		s.notifyAdmin(ctx, cfg, msg.ChatID, text)
		s.scheduleFollowup(ctx, cfg, c.ID)
	}

	return OutcomeReplied, nil
}

// composeSystemPrompt appends the optional tone and link lines to the
// base prompt, skipping the ones that are not configured.
func composeSystemPrompt(cfg map[string]string) string {
	parts := []string{cfg[settings.KeySystemPrompt]}
	if v := cfg[settings.KeyTone]; v != "" {
		parts = append(parts, "\nТон общения: "+v)
	}
	if v := cfg[settings.KeySiteURL]; v != "" {
		parts = append(parts, "\nОсновной сайт: "+v)
	}
	if v := cfg[settings.KeyCandidateLink]; v != "" {
		parts = append(parts, "\nСсылка для кандидата: "+v)
	}
	if v := cfg[settings.KeyAgencyLink]; v != "" {
		parts = append(parts, "\nСсылка для агентства: "+v)
	}
	return strings.Join(parts, "\n")
}

// pickLink chooses the registration link by lead type, falling back to
// the generic site URL.
func pickLink(cfg map[string]string, lead contact.LeadType) string {
	var link string
	if lead == contact.LeadAgency {
		link = cfg[settings.KeyAgencyLink]
	} else {
		link = cfg[settings.KeyCandidateLink]
	}
	if link == "" {
		link = cfg[settings.KeySiteURL]
	}
	return link
}

// humanizePreSend shows typing presence for one randomized 1-3s pause
// before the reply goes out.
func (s *PipelineService) humanizePreSend(ctx context.Context, chatID string) {
	if s.humanizer == nil || !s.humanizer.Enabled {
		return
	}
	_ = s.adapter.SendPresence(ctx, chatID, channel.PresenceComposing)
	s.humanizer.Wait(ctx, s.humanizer.PreSendDelay())
	_ = s.adapter.SendPresence(ctx, chatID, channel.PresencePaused)
}

// notifyAdmin sends the new-contact notification. Failures are logged
// and never escalated.
func (s *PipelineService) notifyAdmin(ctx context.Context, cfg map[string]string, chatID, firstText string) {
	adminPhone := cfg[settings.KeyAdminPhone]
	if adminPhone == "" {
		return
	}
	sender := chatID
	if i := strings.Index(sender, "@"); i >= 0 {
		sender = sender[:i]
	}
	note := fmt.Sprintf("🆕 Новый пользователь!\n\n📱 Номер: +%s\n📝 Первое сообщение: \"%s\"", sender, firstText)
	if err := s.adapter.SendMessage(ctx, adminPhone+"@c.us", note); err != nil {
		logrus.WithError(err).Warn("[PIPELINE] Admin notification failed")
	}
}

// scheduleFollowup inserts the delayed follow-up send for a new contact.
// Failures are logged and never escalated.
func (s *PipelineService) scheduleFollowup(ctx context.Context, cfg map[string]string, contactID string) {
	if cfg[settings.KeyFollowupEnabled] != "true" {
		return
	}
	msgText := cfg[settings.KeyFollowupMessage]
	if msgText == "" {
		return
	}
	delayHours := defaultFollowupDelayHours
	if v := cfg[settings.KeyFollowupDelayHours]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			delayHours = n
		}
	}
	at := time.Now().UTC().Add(time.Duration(delayHours) * time.Hour)
	err := s.schedules.Insert(ctx, &schedule.ScheduledMessage{
		ContactID:   contactID,
		MessageText: msgText,
		ScheduledAt: at,
		Status:      schedule.StatusPending,
	})
	if err != nil {
		logrus.WithError(err).Warn("[PIPELINE] Follow-up scheduling failed")
		return
	}
	logrus.Infof("[PIPELINE] Follow-up scheduled for contact %s at %s", contactID, at.Format(time.RFC3339))
}
