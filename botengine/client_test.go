package botengine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider scripts per-model responses and records call order.
type fakeProvider struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
}

func (f *fakeProvider) Generate(_ context.Context, model, _ string) (string, error) {
	f.calls = append(f.calls, model)
	if err, ok := f.errs[model]; ok {
		return "", err
	}
	if raw, ok := f.responses[model]; ok {
		return raw, nil
	}
	return "", fmt.Errorf("model %s unavailable", model)
}

func TestGenerateFirstModelWins(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			DefaultModels[0]: `{"reply":"привет"}`,
		},
	}
	client := NewClient(provider, "")

	res := client.Generate(context.Background(), GenerateRequest{UserText: "hi"})

	assert.Equal(t, "привет", res.Reply)
	assert.Equal(t, []string{DefaultModels[0]}, provider.calls)
}

func TestGenerateFallsThroughOnFailure(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			DefaultModels[2]: `{"reply":"ответ","next_stage":"ask_city"}`,
		},
	}
	client := NewClient(provider, "")

	res := client.Generate(context.Background(), GenerateRequest{UserText: "hi"})

	assert.Equal(t, "ответ", res.Reply)
	assert.Equal(t, DefaultModels[:3], provider.calls)
}

func TestGenerateInvalidOutputAdvances(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			DefaultModels[0]: "not json at all",
			DefaultModels[1]: `{"reply":"ок"}`,
		},
	}
	client := NewClient(provider, "")

	res := client.Generate(context.Background(), GenerateRequest{UserText: "hi"})
	assert.Equal(t, "ок", res.Reply)
}

func TestGenerateNeverFails(t *testing.T) {
	client := NewClient(&fakeProvider{}, "")

	res := client.Generate(context.Background(), GenerateRequest{UserText: "hi"})

	assert.Equal(t, FallbackReply, res.Reply)
	assert.Equal(t, RecoveryStage, res.NextStage)
}

func TestGenerateCachesWorkingModel(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			DefaultModels[1]: `{"reply":"ок"}`,
		},
	}
	client := NewClient(provider, "")

	client.Generate(context.Background(), GenerateRequest{UserText: "1"})
	provider.calls = nil
	client.Generate(context.Background(), GenerateRequest{UserText: "2"})

	// Second call starts from the cached model.
	require.NotEmpty(t, provider.calls)
	assert.Equal(t, DefaultModels[1], provider.calls[0])
	assert.Len(t, provider.calls, 1)
}

func TestGenerateResetsCacheOnExhaustion(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			DefaultModels[3]: `{"reply":"ок"}`,
		},
	}
	client := NewClient(provider, "")

	client.Generate(context.Background(), GenerateRequest{UserText: "1"})

	provider.responses = map[string]string{}
	client.Generate(context.Background(), GenerateRequest{UserText: "2"})

	provider.responses = map[string]string{DefaultModels[0]: `{"reply":"снова"}`}
	provider.calls = nil
	res := client.Generate(context.Background(), GenerateRequest{UserText: "3"})

	assert.Equal(t, "снова", res.Reply)
	// After exhaustion the cache is cleared, so the default order applies.
	assert.Equal(t, DefaultModels[0], provider.calls[0])
}

func TestGenerateOverrideTriedFirst(t *testing.T) {
	provider := &fakeProvider{
		responses: map[string]string{
			"gemini-2.0-flash": `{"reply":"ок"}`,
		},
	}
	client := NewClient(provider, "gemini-2.0-flash")

	res := client.Generate(context.Background(), GenerateRequest{UserText: "hi"})

	assert.Equal(t, "ок", res.Reply)
	assert.Equal(t, []string{"gemini-2.0-flash"}, provider.calls)
}

func TestCandidateModelsDeduplicatesOverride(t *testing.T) {
	client := NewClient(&fakeProvider{}, DefaultModels[1])

	models := client.candidateModels()

	assert.Equal(t, DefaultModels[1], models[0])
	assert.Len(t, models, len(DefaultModels))
}
