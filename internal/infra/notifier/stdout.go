package notifier

import (
	"context"
	"fmt"
	"io"
	"os"

	"news-digest/internal/usecase/digest"
)

// StdoutNotifier writes the composed digest to a writer instead of a webhook.
// It backs -dry-run.
type StdoutNotifier struct {
	w io.Writer
}

// NewStdoutNotifier creates a StdoutNotifier. A nil writer means os.Stdout.
func NewStdoutNotifier(w io.Writer) *StdoutNotifier {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutNotifier{w: w}
}

// Send prints the header, body and footer.
func (s *StdoutNotifier) Send(ctx context.Context, d digest.Digest) error {
	if d.Body == "" {
		return nil
	}

	_, err := fmt.Fprintf(s.w, "%s\n\n%s\n\n%s\n", headerText(d.Title, d.Date), d.Body, d.Footer)
	if err != nil {
		err = fmt.Errorf("write digest: %w", err)
	}
	record(ctx, ChannelStdout, newRequestID(), err, 0)
	return err
}
