package notification

import (
	"context"
	"log/slog"

	"github.com/loandesk/loandesk/internal/logging"
)

const (
	// KindOTPIssued carries a freshly issued one-time code.
	KindOTPIssued = "otp_issued"
	// KindApplicationDecision announces the automated decision on an application.
	KindApplicationDecision = "application_decision"
)

// Message describes a notification payload. Destination is a phone number.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier stands in for an SMS gateway and writes notifications to the logger.
// Bodies only appear at debug level since they may contain codes.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(ctx context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.InfoContext(ctx, "notification",
		slog.String("kind", message.Kind),
		slog.String("destination", logging.MaskPhone(message.Destination)),
	)
	n.logger.DebugContext(ctx, "notification body",
		slog.String("kind", message.Kind),
		slog.String("body", message.Body),
	)
	return nil
}
