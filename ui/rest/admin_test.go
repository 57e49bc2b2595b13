package rest

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recruiterhub/wabot/domains/message"
	"github.com/recruiterhub/wabot/repository"
	"github.com/recruiterhub/wabot/ui/rest/middleware"
	"github.com/recruiterhub/wabot/usecase"
)

const (
	testAdminUser = "admin@example.com"
	testAdminPass = "test-password"
)

func newAdminApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())

	settingsService := usecase.NewSettingsService(repository.NewMemorySettingsRepository())
	auth := middleware.AdminAuth(testAdminUser, testAdminPass)

	InitRestAuth(app, testAdminUser, testAdminPass)
	InitRestAdmin(app, auth, settingsService, repository.NewMemoryMessageRepository())
	return app
}

func sessionCookie(user, pass string) *http.Cookie {
	return &http.Cookie{
		Name:  middleware.SessionCookieName,
		Value: base64.StdEncoding.EncodeToString([]byte(user + ":" + pass)),
	}
}

func TestLoginSuccessSetsCookie(t *testing.T) {
	app := newAdminApp()

	body := []byte(`{"username":"` + testAdminUser + `","password":"` + testAdminPass + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookieName {
			found = true
			decoded, err := base64.StdEncoding.DecodeString(c.Value)
			require.NoError(t, err)
			assert.Equal(t, testAdminUser+":"+testAdminPass, string(decoded))
		}
	}
	assert.True(t, found, "session cookie not set")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newAdminApp()

	body := []byte(`{"username":"` + testAdminUser + `","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginRejectedWhenUnconfigured(t *testing.T) {
	app := fiber.New()
	InitRestAuth(app, "", "")

	body := []byte(`{"username":"","password":""}`)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	app := newAdminApp()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "AUTH_ERROR", body["code"])

	req = httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.AddCookie(sessionCookie(testAdminUser, "wrong"))
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

type failingMessageRepo struct{}

func (failingMessageRepo) ExistsByProviderID(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}
func (failingMessageRepo) Append(context.Context, *message.Message) error {
	return errors.New("store down")
}
func (failingMessageRepo) Recent(context.Context, string, int) ([]message.Message, error) {
	return nil, errors.New("store down")
}
func (failingMessageRepo) History(context.Context, int) ([]message.HistoryEntry, error) {
	return nil, errors.New("store down")
}

func TestHistoryStoreFailure(t *testing.T) {
	app := fiber.New()
	app.Use(middleware.Recovery())

	settingsService := usecase.NewSettingsService(repository.NewMemorySettingsRepository())
	auth := middleware.AdminAuth(testAdminUser, testAdminPass)
	InitRestAdmin(app, auth, settingsService, failingMessageRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/history", nil)
	req.AddCookie(sessionCookie(testAdminUser, testAdminPass))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", body["code"])
}

func TestUnknownAPIRoute(t *testing.T) {
	app := newAdminApp()
	InitRestCatchAll(app)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND_ERROR", body["code"])
}

func TestSettingsRoundTrip(t *testing.T) {
	app := newAdminApp()
	cookie := sessionCookie(testAdminUser, testAdminPass)

	payload := map[string]any{
		"system_prompt":        "Ты рекрутер.",
		"tone":                 "дружелюбный",
		"site_url":             "https://example.com",
		"candidate_link":       "https://example.com/candidate",
		"followup_enabled":     true,
		"followup_message":     "Ну что, надумали?",
		"followup_delay_hours": 48,
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(cookie)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/settings", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	assert.Equal(t, "Ты рекрутер.", dto["system_prompt"])
	assert.Equal(t, true, dto["followup_enabled"])
	assert.Equal(t, float64(48), dto["followup_delay_hours"])
}

func TestSettingsValidationRejectsBadValues(t *testing.T) {
	app := newAdminApp()
	cookie := sessionCookie(testAdminUser, testAdminPass)

	cases := []map[string]any{
		{"site_url": "not a url", "followup_delay_hours": 24},
		{"admin_phone": "not-digits", "followup_delay_hours": 24},
		{"followup_delay_hours": 100000},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/settings", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(cookie)

		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}
}
