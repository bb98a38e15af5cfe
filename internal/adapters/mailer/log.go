package mailer

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogNotifier writes mail to the log instead of sending it. Used when no
// SendGrid key is configured.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to, subject, htmlBody string) error {
	log.Info().Str("to", to).Str("subject", subject).Str("body", htmlBody).Msg("mail not sent: no provider configured")
	return nil
}
