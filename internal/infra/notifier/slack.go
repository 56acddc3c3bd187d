package notifier

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"news-digest/internal/usecase/digest"
)

// SlackNotifier sends the digest to Slack via Incoming Webhook.
type SlackNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
}

// NewSlackNotifier creates a new SlackNotifier with the specified configuration.
func NewSlackNotifier(config WebhookConfig) *SlackNotifier {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &SlackNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// SlackWebhookPayload represents the JSON payload sent to Slack webhook using Block Kit.
type SlackWebhookPayload struct {
	Text   string       `json:"text"`   // Fallback text (required)
	Blocks []SlackBlock `json:"blocks"` // Rich formatting blocks
}

// SlackBlock represents a Slack Block Kit block.
type SlackBlock struct {
	Type     string            `json:"type"`               // "header", "section", "context", "divider"
	Text     *SlackTextObject  `json:"text,omitempty"`     // Text content (for header and section)
	Elements []SlackTextObject `json:"elements,omitempty"` // Elements (for context)
}

// SlackTextObject represents a text object in Slack Block Kit.
type SlackTextObject struct {
	Type string `json:"type"` // "mrkdwn" or "plain_text"
	Text string `json:"text"` // Actual text content
}

const (
	// Slack Block Kit limits
	maxSlackBlocks       = 50
	maxHeaderTextLength  = 150
	maxSectionTextLength = 3000
	maxContextTextLength = 2000

	slackTruncationSuffix = "..."
)

// buildBlockKitPayload creates the payload: a header block, one section per item,
// a divider and a context footer. Items beyond the block limit are dropped.
func buildBlockKitPayload(d digest.Digest) SlackWebhookPayload {
	header := headerText(d.Title, d.Date)
	blocks := []SlackBlock{{
		Type: "header",
		Text: &SlackTextObject{Type: "plain_text", Text: truncate(header, maxHeaderTextLength, slackTruncationSuffix)},
	}}

	// header + divider + context
	room := maxSlackBlocks - 3
	for i, it := range d.Items {
		if i >= room {
			break
		}
		section := fmt.Sprintf("*<%s|%s>*\n> %s\n来源: %s", it.Link, it.Title, it.Summary, it.Source)
		blocks = append(blocks, SlackBlock{
			Type: "section",
			Text: &SlackTextObject{Type: "mrkdwn", Text: truncate(section, maxSectionTextLength, slackTruncationSuffix)},
		})
	}

	blocks = append(blocks, SlackBlock{Type: "divider"})
	if d.Footer != "" {
		blocks = append(blocks, SlackBlock{
			Type:     "context",
			Elements: []SlackTextObject{{Type: "mrkdwn", Text: truncate(d.Footer, maxContextTextLength, slackTruncationSuffix)}},
		})
	}

	return SlackWebhookPayload{Text: header, Blocks: blocks}
}

// Send posts the digest. Any 2xx status counts as delivered.
func (s *SlackNotifier) Send(ctx context.Context, d digest.Digest) error {
	if d.Body == "" {
		return nil
	}

	requestID := newRequestID()
	start := time.Now()

	status, body, err := postJSON(ctx, s.httpClient, s.config.WebhookURL, buildBlockKitPayload(d))
	if err == nil && (status < 200 || status >= 300) {
		err = &digest.DeliveryError{Channel: ChannelSlack, StatusCode: status, Body: errorBody(body)}
	}

	record(ctx, ChannelSlack, requestID, err, time.Since(start))
	return err
}
