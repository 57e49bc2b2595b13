package botengine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruiterhub/wabot/domains/contact"
)

func TestBuildPromptLayout(t *testing.T) {
	prompt := buildPrompt(GenerateRequest{
		SystemPrompt: "Ты рекрутер.",
		UserText:     "Германия, склад",
		Stage:        "start",
		Memory: Memory{
			Summary: "ищет работу на складе",
			Recent: []Exchange{
				{Inbound: true, Text: "привет"},
				{Inbound: false, Text: "здравствуйте"},
			},
		},
	})

	assert.Contains(t, prompt, "Ты отвечаешь ТОЛЬКО валидным JSON.")
	assert.Contains(t, prompt, "SYSTEM_PROMPT:\nТы рекрутер.")
	assert.Contains(t, prompt, "CURRENT_STAGE:\nstart")
	assert.Contains(t, prompt, "MEMORY_SUMMARY (информация о пользователе):\nищет работу на складе")
	assert.Contains(t, prompt, "USER: привет\nBOT: здравствуйте")
	assert.Contains(t, prompt, "USER_MESSAGE:\nГермания, склад")
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := buildPrompt(GenerateRequest{UserText: "привет", Stage: "start"})

	assert.Contains(t, prompt, "(нет информации)")
	assert.Contains(t, prompt, "(диалог пуст)")
}

func TestBuildPromptCapsRecentDialog(t *testing.T) {
	var recent []Exchange
	for i := 0; i < 30; i++ {
		recent = append(recent, Exchange{Inbound: true, Text: "msg"})
	}
	prompt := buildPrompt(GenerateRequest{
		UserText: "q",
		Memory:   Memory{Recent: recent},
	})

	assert.Equal(t, RecentExchangeMax, strings.Count(prompt, "USER: msg"))
}

func TestParseResultValid(t *testing.T) {
	res, err := parseResult(`{"reply":"Привет!","next_stage":"ask_city","lead_type":"candidate","need_link":true,"stop":false,"memory_update":"из Киева"}`)
	require.NoError(t, err)

	assert.Equal(t, "Привет!", res.Reply)
	assert.Equal(t, "ask_city", res.NextStage)
	assert.Equal(t, contact.LeadCandidate, res.LeadType)
	assert.True(t, res.NeedLink)
	assert.False(t, res.Stop)
	assert.Equal(t, "из Киева", res.MemoryUpdate)
}

func TestParseResultStripsMarkdownFence(t *testing.T) {
	res, err := parseResult("```json\n{\"reply\":\"ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Reply)
}

func TestParseResultBlankReply(t *testing.T) {
	_, err := parseResult(`{"reply":"  "}`)
	assert.Error(t, err)

	_, err = parseResult(`{"next_stage":"x"}`)
	assert.Error(t, err)
}

func TestParseResultNotJSON(t *testing.T) {
	_, err := parseResult("sorry, I can't answer in JSON")
	assert.Error(t, err)
}

func TestParseResultTruncation(t *testing.T) {
	longReply := strings.Repeat("a", ReplyMaxLen+100)
	longMemory := strings.Repeat("b", MemoryUpdateMaxLen+100)
	res, err := parseResult(`{"reply":"` + longReply + `","memory_update":"` + longMemory + `"}`)
	require.NoError(t, err)

	assert.Len(t, res.Reply, ReplyMaxLen)
	assert.Len(t, res.MemoryUpdate, MemoryUpdateMaxLen)
}

func TestParseResultCoercesLeadType(t *testing.T) {
	res, err := parseResult(`{"reply":"ok","lead_type":"martian"}`)
	require.NoError(t, err)
	assert.Equal(t, contact.LeadUnknown, res.LeadType)
}

func TestParseResultNonLiteralBooleansIgnored(t *testing.T) {
	// Booleans must be literal JSON booleans, string forms are absent.
	res, err := parseResult(`{"reply":"ok","need_link":"true","stop":1}`)
	require.NoError(t, err)
	assert.False(t, res.NeedLink)
	assert.False(t, res.Stop)
}
