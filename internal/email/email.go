package email

import (
	"context"
	"fmt"

	"github.com/bookabite/reservations/internal/domain"
	"go.uber.org/zap"
)

// Sender turns reservation events into customer notifications. Delivery is a
// structured log line until a mail provider is configured.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event domain.ReservationEvent) error {
	if event.CustomerEmail == "" {
		s.log.Debug("no recipient for event", zap.String("reservation_id", event.ReservationID), zap.String("type", string(event.Type)))
		return nil
	}
	s.log.Info("send email",
		zap.String("to", event.CustomerEmail),
		zap.String("subject", Subject(event)),
		zap.String("reservation_id", event.ReservationID),
	)
	return nil
}

func Subject(event domain.ReservationEvent) string {
	switch event.Type {
	case domain.EventReservationCreated:
		return fmt.Sprintf("Your table for %d on %s at %s is confirmed (%s)", event.Guests, event.Date, event.Time, event.ConfirmationCode)
	case domain.EventReservationCancelled:
		return fmt.Sprintf("Reservation %s has been cancelled", event.ConfirmationCode)
	case domain.EventReservationCompleted:
		return fmt.Sprintf("Thanks for dining with us (%s)", event.ConfirmationCode)
	default:
		return fmt.Sprintf("Update on reservation %s", event.ConfirmationCode)
	}
}
