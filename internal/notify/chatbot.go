package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// ChatBotSettings provides chat-bot endpoint configured by user.
type ChatBotSettings interface {
	ChatBotURL() string
}

// ChatBot sends messages to chat-bot endpoint (e.g. Telegram Bot API sendMessage URL
// with chat_id) as text query parameter.
type ChatBot struct {
	client   *http.Client
	settings ChatBotSettings
	pageURL  string
}

// NewChatBot returns new ChatBot. Endpoint is read from settings on every send.
func NewChatBot(client *http.Client, settings ChatBotSettings, pageURL string) *ChatBot {
	return &ChatBot{
		client:   client,
		settings: settings,
		pageURL:  pageURL,
	}
}

// Notify sends message with GET request. It is never retried.
func (c *ChatBot) Notify(ctx context.Context, message string) error {
	endpoint := strings.TrimSpace(c.settings.ChatBotURL())
	if endpoint == "" {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("can't parse chat-bot endpoint: %w", err)
	}

	query := u.Query()
	query.Set("text", withLink(message, c.pageURL))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("can't build chat-bot request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("can't send chat-bot message: %w", err)
	}

	return checkResponse(resp)
}

// Name returns channel name.
func (c *ChatBot) Name() string {
	return "chatbot"
}
