package digest

import (
	"errors"
	"fmt"
)

// ErrNoArticles indicates that no feed yielded a qualifying article.
// It is informational: nothing was extracted, summarized or delivered.
var ErrNoArticles = errors.New("no new articles")

// DeliveryError is returned by a Notifier when the channel answered but did not
// accept the message.
type DeliveryError struct {
	Channel    string
	StatusCode int
	Body       string
}

// Error returns a formatted error message for the delivery error.
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s delivery rejected: status %d: %s", e.Channel, e.StatusCode, e.Body)
}
