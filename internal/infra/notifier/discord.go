package notifier

import (
	"context"
	"net/http"
	"time"

	"news-digest/internal/domain/entity"
	"news-digest/internal/usecase/digest"
)

// DiscordNotifier sends the digest to Discord via webhook, one embed per item.
type DiscordNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier with the specified configuration.
func NewDiscordNotifier(config WebhookConfig) *DiscordNotifier {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &DiscordNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// DiscordWebhookPayload represents the JSON payload sent to Discord webhook.
type DiscordWebhookPayload struct {
	Content string         `json:"content"`
	Embeds  []DiscordEmbed `json:"embeds"`
}

// DiscordEmbed represents a Discord embed message.
type DiscordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	URL         string              `json:"url"`
	Color       int                 `json:"color"`
	Footer      *DiscordEmbedFooter `json:"footer,omitempty"`
}

// DiscordEmbedFooter represents the footer of a Discord embed.
type DiscordEmbedFooter struct {
	Text string `json:"text"`
}

const (
	// Discord limits
	maxEmbeds            = 10
	maxTitleLength       = 256
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	// Discord blue color (#5865F2)
	discordBlueColor = 5793266
)

func buildEmbed(it entity.DigestItem) DiscordEmbed {
	return DiscordEmbed{
		Title:       truncate(it.Title, maxTitleLength, truncationSuffix),
		Description: truncate(it.Summary, maxDescriptionLength, truncationSuffix),
		URL:         it.Link,
		Color:       discordBlueColor,
		Footer:      &DiscordEmbedFooter{Text: it.Source},
	}
}

// buildEmbedPayloads splits the digest into messages of at most ten embeds.
// The first message carries the header line, the last one the footer.
func buildEmbedPayloads(d digest.Digest) []DiscordWebhookPayload {
	var payloads []DiscordWebhookPayload
	for start := 0; start < len(d.Items); start += maxEmbeds {
		end := min(start+maxEmbeds, len(d.Items))
		p := DiscordWebhookPayload{Embeds: make([]DiscordEmbed, 0, end-start)}
		for _, it := range d.Items[start:end] {
			p.Embeds = append(p.Embeds, buildEmbed(it))
		}
		payloads = append(payloads, p)
	}
	if len(payloads) == 0 {
		return nil
	}

	payloads[0].Content = "**" + headerText(d.Title, d.Date) + "**"
	if d.Footer != "" {
		last := &payloads[len(payloads)-1]
		if last.Content != "" {
			last.Content += "\n"
		}
		last.Content += "-# " + d.Footer
	}
	return payloads
}

// Send posts the digest. Every message must answer 2xx; the first failure stops delivery.
func (n *DiscordNotifier) Send(ctx context.Context, d digest.Digest) error {
	if d.Body == "" {
		return nil
	}

	requestID := newRequestID()
	start := time.Now()

	var err error
	for _, p := range buildEmbedPayloads(d) {
		var status int
		var body []byte
		status, body, err = postJSON(ctx, n.httpClient, n.config.WebhookURL, p)
		if err == nil && (status < 200 || status >= 300) {
			err = &digest.DeliveryError{Channel: ChannelDiscord, StatusCode: status, Body: errorBody(body)}
		}
		if err != nil {
			break
		}
	}

	record(ctx, ChannelDiscord, requestID, err, time.Since(start))
	return err
}
