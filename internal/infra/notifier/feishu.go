package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"news-digest/internal/usecase/digest"
)

// FeishuNotifier posts the digest as an interactive card to a Feishu custom bot webhook.
type FeishuNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
}

// NewFeishuNotifier creates a new FeishuNotifier with the specified configuration.
func NewFeishuNotifier(config WebhookConfig) *FeishuNotifier {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &FeishuNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// FeishuMessage is the webhook payload of an interactive card message.
type FeishuMessage struct {
	MsgType string     `json:"msg_type"`
	Card    FeishuCard `json:"card"`
}

// FeishuCard is a message card with a header and a list of elements.
type FeishuCard struct {
	Header   FeishuHeader    `json:"header"`
	Elements []FeishuElement `json:"elements"`
}

// FeishuHeader is the colored title bar of a card.
type FeishuHeader struct {
	Title    FeishuText `json:"title"`
	Template string     `json:"template"`
}

// FeishuText is a plain_text or lark_md text object.
type FeishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

// FeishuElement is one card element: div, hr or note.
type FeishuElement struct {
	Tag      string       `json:"tag"`
	Text     *FeishuText  `json:"text,omitempty"`
	Elements []FeishuText `json:"elements,omitempty"`
}

// buildCard creates the card: blue header with the dated title, one lark_md div
// holding the body, a rule and a note footer.
func buildCard(d digest.Digest) FeishuMessage {
	elements := []FeishuElement{
		{Tag: "div", Text: &FeishuText{Tag: "lark_md", Content: d.Body}},
		{Tag: "hr"},
	}
	if d.Footer != "" {
		elements = append(elements, FeishuElement{
			Tag:      "note",
			Elements: []FeishuText{{Tag: "plain_text", Content: d.Footer}},
		})
	}

	return FeishuMessage{
		MsgType: "interactive",
		Card: FeishuCard{
			Header: FeishuHeader{
				Title:    FeishuText{Tag: "plain_text", Content: headerText(d.Title, d.Date)},
				Template: "blue",
			},
			Elements: elements,
		},
	}
}

// accepted reports whether a webhook response body signals success.
// Older endpoints answer {"StatusCode":0}, newer ones {"code":0}.
func accepted(body []byte) bool {
	res := gjson.ParseBytes(body)
	if sc := res.Get("StatusCode"); sc.Exists() {
		return sc.Int() == 0
	}
	if code := res.Get("code"); code.Exists() {
		return code.Int() == 0
	}
	return false
}

// Send posts the digest card. It succeeds only on HTTP 200 with a zero status
// code in the body; any other answer is a *digest.DeliveryError.
func (f *FeishuNotifier) Send(ctx context.Context, d digest.Digest) error {
	if d.Body == "" {
		return nil
	}

	requestID := newRequestID()
	start := time.Now()

	status, body, err := postJSON(ctx, f.httpClient, f.config.WebhookURL, buildCard(d))
	if err == nil && (status != http.StatusOK || !accepted(body)) {
		err = &digest.DeliveryError{Channel: ChannelFeishu, StatusCode: status, Body: errorBody(body)}
	}

	record(ctx, ChannelFeishu, requestID, err, time.Since(start))
	return err
}
