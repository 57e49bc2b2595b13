// Package greenapi implements the cloud gateway transport: outbound
// sends through the Green-API REST surface and parsing of its inbound
// webhook notifications.
package greenapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// Client sends messages through a Green-API instance.
type Client struct {
	httpClient *resty.Client
	instanceID string
	apiToken   string
}

// NewClient creates a gateway client bound to one instance.
func NewClient(baseURL, instanceID, apiToken string) (*Client, error) {
	if baseURL == "" || instanceID == "" || apiToken == "" {
		return nil, fmt.Errorf("gateway client requires base URL, instance id and token")
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second)

	return &Client{
		httpClient: httpClient,
		instanceID: instanceID,
		apiToken:   apiToken,
	}, nil
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// SendMessage posts a text message to the chat through the gateway.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	url := fmt.Sprintf("/waInstance%s/sendMessage/%s", c.instanceID, c.apiToken)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{ChatID: chatID, Message: text}).
		Post(url)
	if err != nil {
		return fmt.Errorf("gateway sendMessage request failed: %w", err)
	}
	if resp.IsError() {
		logrus.WithFields(logrus.Fields{
			"chat_id": chatID,
			"status":  resp.StatusCode(),
		}).Error("[GATEWAY] sendMessage rejected")
		return fmt.Errorf("gateway sendMessage error: status %s", resp.Status())
	}
	return nil
}

// SendPresence is a no-op: the gateway surface offers no typing state.
func (c *Client) SendPresence(ctx context.Context, chatID, state string) error {
	return nil
}
