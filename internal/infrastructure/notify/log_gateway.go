// Package notify holds the out-of-band delivery gateways used by the
// dispatcher.
package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

// LogGateway "delivers" messages by writing them to the structured log. It
// stands in for an email or SMS provider.
type LogGateway struct {
	log zerolog.Logger
}

var _ ports.DeliveryGateway = (*LogGateway)(nil)

func NewLogGateway(log zerolog.Logger) *LogGateway {
	return &LogGateway{log: log}
}

func (g *LogGateway) Send(ctx context.Context, msg ports.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.log.Info().
		Str("recipient", msg.Recipient).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("notification delivered")
	return nil
}
