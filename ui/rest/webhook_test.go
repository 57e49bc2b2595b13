package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruiterhub/wabot/botengine"
	"github.com/recruiterhub/wabot/repository"
	"github.com/recruiterhub/wabot/usecase"
)

type stubAdapter struct {
	sent []string
}

func (s *stubAdapter) SendMessage(_ context.Context, _ string, text string) error {
	s.sent = append(s.sent, text)
	return nil
}

func (s *stubAdapter) SendPresence(_ context.Context, _, _ string) error { return nil }

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, _ botengine.GenerateRequest) botengine.GenerateResult {
	return botengine.GenerateResult{Reply: "ок"}
}

func newWebhookApp(secret string) (*fiber.App, *stubAdapter) {
	adapter := &stubAdapter{}
	pipeline := usecase.NewPipelineService(
		repository.NewMemoryContactRepository(),
		repository.NewMemoryMessageRepository(),
		repository.NewMemorySettingsRepository(),
		repository.NewMemoryScheduleRepository(),
		stubGenerator{},
		adapter,
		botengine.NewHumanizer(false),
	)

	app := fiber.New()
	InitRestWebhook(app, pipeline, secret)
	return app, adapter
}

func postWebhook(t *testing.T, app *fiber.App, body string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/wa/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	return resp, payload
}

func TestWebhookHandlesIncomingMessage(t *testing.T) {
	app, adapter := newWebhookApp("")

	resp, payload := postWebhook(t, app, `{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "m1",
		"senderData": {"chatId": "chat@c.us", "sender": "chat@c.us"},
		"messageData": {"textMessageData": {"textMessage": "привет"}}
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["ok"])
	assert.Len(t, adapter.sent, 1)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	app, adapter := newWebhookApp("")

	resp, payload := postWebhook(t, app, `{"typeWebhook": "stateInstanceChanged"}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["ok"])
	assert.Equal(t, true, payload["ignored"])
	assert.Empty(t, adapter.sent)
}

func TestWebhookMalformedBody(t *testing.T) {
	app, _ := newWebhookApp("")

	resp, payload := postWebhook(t, app, `{"chatId": `)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, payload["ok"])
}

func TestWebhookDuplicateDelivery(t *testing.T) {
	app, adapter := newWebhookApp("")
	body := `{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "dup",
		"senderData": {"chatId": "chat@c.us"},
		"messageData": {"textMessageData": {"textMessage": "привет"}}
	}`

	postWebhook(t, app, body)
	resp, payload := postWebhook(t, app, body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["dedup"])
	assert.Len(t, adapter.sent, 1)
}

func TestWebhookOptOut(t *testing.T) {
	app, adapter := newWebhookApp("")

	resp, payload := postWebhook(t, app, `{
		"typeWebhook": "incomingMessageReceived",
		"idMessage": "m1",
		"senderData": {"chatId": "chat@c.us"},
		"messageData": {"textMessageData": {"textMessage": "хватит"}}
	}`)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, payload["opted_out"])
	assert.Empty(t, adapter.sent)
}

func TestWebhookSecretRequired(t *testing.T) {
	app, _ := newWebhookApp("s3cret")

	resp, _ := postWebhook(t, app, `{"typeWebhook": "incomingMessageReceived"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/wa/webhook", bytes.NewReader([]byte(`{"typeWebhook":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Secret", "s3cret")
	okResp, err := app.Test(req, -1)
	require.NoError(t, err)
	okResp.Body.Close()
	assert.Equal(t, http.StatusOK, okResp.StatusCode)
}
