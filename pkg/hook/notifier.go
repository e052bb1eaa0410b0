package hook

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/hookworks/git-slack-hook/pkg/config"
	"github.com/hookworks/git-slack-hook/pkg/slack"
)

// ErrDeliveryFailed is returned by Run when at least one event could not be
// delivered.
var ErrDeliveryFailed = errors.New("one or more notifications failed")

// Outcome is the result of processing a single event.
type Outcome int8

const (
	// OutcomeSent means a notification was delivered.
	OutcomeSent Outcome = iota
	// OutcomeSuppressed means the event kind is intentionally not notified.
	OutcomeSuppressed
	// OutcomeFailed means building or delivering the notification failed.
	OutcomeFailed
)

// Sender delivers a payload to the webhook endpoint.
type Sender interface {
	Send(ctx context.Context, p slack.Payload) error
}

// Notifier turns post-receive events into webhook notifications.
type Notifier struct {
	cfg     *config.Config
	id      Identity
	query   Query
	sender  Sender
	builder Builder
}

// New returns a notifier for the given configuration and identity.
func New(cfg *config.Config, id Identity, q Query, s Sender) *Notifier {
	return &Notifier{
		cfg:    cfg,
		id:     id,
		query:  q,
		sender: s,
		builder: Builder{
			Prefix:     cfg.Prefix,
			URLPattern: cfg.ChangesetURLPattern,
			ReposRoot:  cfg.ReposRoot,
			WorkDir:    id.WorkDir,
		},
	}
}

// Run consumes events one per line from r until EOF, processing each one to
// completion before reading the next. Malformed lines and suppressed events
// are logged and skipped. Run returns ErrDeliveryFailed if any event failed
// to process; it never stops early for a per-event error.
func (n *Notifier) Run(ctx context.Context, r io.Reader) error {
	logger := log.FromContext(ctx)
	failed := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		event, err := ParseEvent(line)
		if err != nil {
			logger.Error("invalid post-receive input", "line", line)
			continue
		}

		outcome, err := n.Process(ctx, event)
		switch outcome {
		case OutcomeSuppressed:
			logger.Warn("not notifying", "ref", event.RefName, "reason", err)
		case OutcomeFailed:
			logger.Error("notification failed", "ref", event.RefName, "err", err)
			failed = true
		default:
			logger.Debug("notification sent", "ref", event.RefName)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read events: %w", err)
	}

	if failed {
		return ErrDeliveryFailed
	}

	return nil
}

// Process handles a single event: classify, build the message and payload,
// send. The error accompanies OutcomeSuppressed and OutcomeFailed as the
// diagnostic reason.
func (n *Notifier) Process(ctx context.Context, e Event) (Outcome, error) {
	change := e.ChangeType()
	kind, typ := Classify(ctx, n.query, e)

	switch kind {
	case KindTrackingBranch:
		return OutcomeSuppressed, errors.New("tracking branch update")
	case KindUnknown:
		return OutcomeSuppressed, fmt.Errorf("unrecognized ref %s pointing at a %s object", e.RefName, typ)
	}

	var text string
	if change == ChangeUpdate {
		commits, err := n.query.LogRange(ctx, e.OldID, e.NewID)
		if err != nil {
			return OutcomeFailed, fmt.Errorf("log %s..%s: %w", e.OldID, e.NewID, err)
		}
		text = n.builder.LogLines(e.ShortRef(), commits)
	} else {
		text = n.builder.RefMessage(n.id.User, change, kind, e.ShortRef())
	}

	channel := n.cfg.Channel
	if kind == KindAnnotatedTag && n.cfg.TagChannel != "" {
		channel = n.cfg.TagChannel
	}

	payload := slack.NewPayload(EscapeNewlines(text), channel, n.cfg.Username, n.cfg.IconURL, n.cfg.IconEmoji)
	if err := n.sender.Send(ctx, payload); err != nil {
		return OutcomeFailed, err
	}

	return OutcomeSent, nil
}
