package botengine

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/recruiterhub/wabot/domains/contact"
	"github.com/recruiterhub/wabot/pkg/textutil"
)

// buildPrompt assembles the single prompt string sent to a model. The
// layout is fixed: JSON-only instructions, system prompt, stage, memory
// summary, last RecentExchangeMax exchanges oldest-first, user message.
func buildPrompt(req GenerateRequest) string {
	recent := req.Memory.Recent
	if len(recent) > RecentExchangeMax {
		recent = recent[len(recent)-RecentExchangeMax:]
	}
	var lines []string
	for _, e := range recent {
		if e.Inbound {
			lines = append(lines, "USER: "+e.Text)
		} else {
			lines = append(lines, "BOT: "+e.Text)
		}
	}
	recentBlock := strings.Join(lines, "\n")
	if recentBlock == "" {
		recentBlock = "(диалог пуст)"
	}
	summary := req.Memory.Summary
	if summary == "" {
		summary = "(нет информации)"
	}

	return strings.Join([]string{
		"Ты отвечаешь ТОЛЬКО валидным JSON.",
		"ВАЖНО: Ответ должен быть ТОЛЬКО JSON объектом, без markdown блоков (без ```json ... ```).",
		`Структура JSON: { "reply": "текст ответа", "next_stage": "название этапа", "lead_type": "unknown/candidate/agency", "need_link": false, "stop": false, "memory_update": "новая инфо" }`,
		"Не повторяй вопросы, на которые уже есть ответы в MEMORY_SUMMARY.",
		"Если что-то непонятно - переспроси, но в поле reply.",
		"",
		"SYSTEM_PROMPT:",
		req.SystemPrompt,
		"",
		"CURRENT_STAGE:",
		req.Stage,
		"",
		"MEMORY_SUMMARY (информация о пользователе):",
		summary,
		"",
		"RECENT_DIALOG (последние сообщения):",
		recentBlock,
		"",
		"USER_MESSAGE:",
		req.UserText,
	}, "\n")
}

// extractJSON slices the substring between the first '{' and the last
// '}', tolerating markdown fences and stray prose around the object.
func extractJSON(s string) string {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first >= 0 && last > first {
		return s[first : last+1]
	}
	return s
}

// parseResult validates raw model output against the constrained schema.
// Unknown fields are ignored; booleans must be literal JSON booleans.
func parseResult(raw string) (GenerateResult, error) {
	var parsed struct {
		Reply        json.RawMessage `json:"reply"`
		NextStage    json.RawMessage `json:"next_stage"`
		LeadType     json.RawMessage `json:"lead_type"`
		NeedLink     json.RawMessage `json:"need_link"`
		Stop         json.RawMessage `json:"stop"`
		MemoryUpdate json.RawMessage `json:"memory_update"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &parsed); err != nil {
		return GenerateResult{}, fmt.Errorf("invalid JSON: %w", err)
	}

	reply, ok := asString(parsed.Reply)
	if !ok || strings.TrimSpace(reply) == "" {
		return GenerateResult{}, fmt.Errorf("missing or blank reply field")
	}

	res := GenerateResult{
		Reply:    textutil.Truncate(reply, ReplyMaxLen),
		LeadType: contact.LeadUnknown,
	}
	if v, ok := asString(parsed.NextStage); ok {
		res.NextStage = v
	}
	if v, ok := asString(parsed.LeadType); ok {
		res.LeadType = contact.Coerce(v)
	}
	if v, ok := asBool(parsed.NeedLink); ok {
		res.NeedLink = v
	}
	if v, ok := asBool(parsed.Stop); ok {
		res.Stop = v
	}
	if v, ok := asString(parsed.MemoryUpdate); ok {
		res.MemoryUpdate = textutil.Truncate(v, MemoryUpdateMaxLen)
	}
	return res, nil
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func asBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}
