// Package whatsapp integrates with the WhatsApp Cloud API: an outbound
// message client and the inbound webhook handler.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"cartola-trader/pkg/utils"
)

const defaultAPIBase = "https://graph.facebook.com/v19.0"

// Client sends text messages through the WhatsApp Cloud API.
type Client struct {
	httpClient *http.Client
	apiBase    string
	token      string
	phoneID    string
	logger     zerolog.Logger
}

// ClientConfig holds the Cloud API credentials.
type ClientConfig struct {
	Token   string
	PhoneID string
	// APIBase overrides the Graph API base URL, used in tests.
	APIBase string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewClient creates a WhatsApp Cloud API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiBase:    apiBase,
		token:      cfg.Token,
		phoneID:    cfg.PhoneID,
		logger:     cfg.Logger.With().Str("component", "whatsapp").Logger(),
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.token != "" && c.phoneID != ""
}

type outboundMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             outboundText `json:"text"`
}

type outboundText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

// SendText delivers a text message to phone, retrying transient failures
// with backoff.
func (c *Client) SendText(ctx context.Context, phone, text string) error {
	if !c.Configured() {
		return fmt.Errorf("whatsapp credentials not configured")
	}

	payload, err := json.Marshal(outboundMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             outboundText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/messages", c.apiBase, c.phoneID)
	return utils.Retry(ctx, utils.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return fmt.Errorf("whatsapp API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil
	})
}
