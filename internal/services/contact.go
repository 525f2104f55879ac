package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"salesbot-backend/internal/models"
	"salesbot-backend/internal/profile"
)

const ticketPrefix = "TICKET_"

type contactNotifier interface {
	SendContactNotification(ctx context.Context, sub models.ContactSubmission, ticketID string) error
}

// ContactIntake acknowledges contact form submissions. Nothing is stored: the
// submission lives on in the log and the operator notification only.
type ContactIntake struct {
	notifier contactNotifier
	profile  *profile.Profile
	logger   *zap.Logger
	now      func() time.Time
}

func NewContactIntake(notifier contactNotifier, p *profile.Profile, logger *zap.Logger) *ContactIntake {
	return &ContactIntake{
		notifier: notifier,
		profile:  p,
		logger:   logger,
		now:      time.Now,
	}
}

func (c *ContactIntake) Intake(ctx context.Context, sub models.ContactSubmission) (*models.ContactResponse, error) {
	if err := Validate(sub); err != nil {
		return nil, err
	}

	ticketID := newTicketID(c.now())

	c.logger.Info("📨 NEW CONTACT FORM SUBMISSION",
		zap.String("ticket_id", ticketID),
		zap.String("name", sub.Name),
		zap.String("email", sub.Email),
		zap.String("company", orNA(sub.Company)),
		zap.String("budget", orNA(sub.Budget)),
		zap.String("message", sub.Message),
	)

	if c.notifier != nil {
		if err := c.notifier.SendContactNotification(ctx, sub, ticketID); err != nil {
			c.logger.Warn("contact notification failed", zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}

	return &models.ContactResponse{
		Success:  true,
		Message:  c.profile.Messages.ContactAck,
		TicketID: ticketID,
	}, nil
}

// newTicketID is unique only per second; two submissions in the same second
// share an ID.
func newTicketID(now time.Time) string {
	return ticketPrefix + now.Format("20060102150405")
}
