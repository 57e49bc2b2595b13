package botengine

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Provider generates raw model text for a prompt against a named model.
// Implementations wrap one vendor API and do no response validation.
type Provider interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Client owns the ordered model fallback list and response validation.
// It is safe for concurrent use.
type Client struct {
	provider Provider
	models   []string
	override string

	mu          sync.Mutex
	lastWorking string
}

// NewClient builds a Client over the given provider. When override is
// non-empty it is tried before the default model list on every call.
func NewClient(provider Provider, override string) *Client {
	return &Client{
		provider: provider,
		models:   DefaultModels,
		override: override,
	}
}

// candidateModels returns the ordered list for one call: the env
// override first when set, otherwise the last model that worked, then
// the remaining defaults.
func (c *Client) candidateModels() []string {
	c.mu.Lock()
	last := c.lastWorking
	c.mu.Unlock()

	var head []string
	if c.override != "" {
		head = []string{c.override}
	} else if last != "" {
		head = []string{last}
	}

	out := make([]string, 0, len(head)+len(c.models))
	out = append(out, head...)
	for _, m := range c.models {
		if len(head) > 0 && m == head[0] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Generate runs the request through the model fallback chain. It never
// returns an error: when every candidate fails it yields the fixed
// fallback result with the recovery stage set.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) GenerateResult {
	prompt := buildPrompt(req)

	for _, model := range c.candidateModels() {
		raw, err := c.provider.Generate(ctx, model, prompt)
		if err != nil {
			logrus.WithError(err).Warnf("[AI] Model %s failed", model)
			continue
		}
		res, err := parseResult(raw)
		if err != nil {
			logrus.WithError(err).Warnf("[AI] Model %s returned invalid output, skipping", model)
			continue
		}

		c.mu.Lock()
		if c.lastWorking != model {
			c.lastWorking = model
			logrus.Infof("[AI] Cached working model: %s", model)
		}
		c.mu.Unlock()
		return res
	}

	logrus.Error("[AI] All models failed, using fallback reply")
	c.mu.Lock()
	c.lastWorking = ""
	c.mu.Unlock()
	return fallbackResult()
}
