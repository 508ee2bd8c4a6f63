package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Notifier is the fire-and-forget notification sink. Delivery runs in the
// background; failures are logged and never reach the caller.
type Notifier struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewNotifier wraps sender. timeout bounds each delivery attempt.
func NewNotifier(sender Sender, log *slog.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Notifier{sender: sender, log: log, timeout: timeout}
}

// Notify queues one message to a single recipient.
func (n *Notifier) Notify(to, body string) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		// Detached from the request: the response must not wait for SMTP.
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()

		if err := n.sender.Send(ctx, to, Subject, body); err != nil {
			n.log.Warn("notification failed", "to", to, "err", err)
			return
		}
		n.log.Debug("notification sent", "to", to)
	}()
}

// Wait blocks until every queued message has been attempted.
func (n *Notifier) Wait() { n.wg.Wait() }
