package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicreserve/reservation-system/internal/core/domain"
	"github.com/clinicreserve/reservation-system/internal/core/ports"
)

const notificationSubject = "Clinic reservation notice"

// NotificationService appends to the notification log and hands every
// stored message to the courier for out-of-band delivery.
type NotificationService struct {
	repo    ports.NotificationRepository
	courier ports.Courier
	log     zerolog.Logger
	now     func() time.Time
}

var _ ports.NotificationService = (*NotificationService)(nil)

func NewNotificationService(repo ports.NotificationRepository, courier ports.Courier, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		repo:    repo,
		courier: courier,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationService) Send(ctx context.Context, username, message string) (*domain.Notification, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("send notification: %w", domain.ErrInvalidInput)
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Append(ctx, n); err != nil {
		return nil, fmt.Errorf("send notification to %s: %w", username, err)
	}

	s.courier.Deliver(ports.Message{Recipient: username, Subject: notificationSubject, Body: message})
	return n, nil
}

// SendBulk sends to every recipient independently and reports who failed.
func (s *NotificationService) SendBulk(ctx context.Context, usernames []string, message string) ports.BulkResult {
	res := ports.BulkResult{Failed: make(map[string]error)}
	seen := make(map[string]struct{}, len(usernames))
	for _, u := range usernames {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}

		if _, err := s.Send(ctx, u, message); err != nil {
			s.log.Warn().Err(err).Str("username", u).Msg("bulk notification failed for recipient")
			res.Failed[u] = err
			continue
		}
		res.Sent = append(res.Sent, u)
	}
	s.log.Info().Int("sent", len(res.Sent)).Int("failed", len(res.Failed)).Msg("bulk notification finished")
	return res
}

func (s *NotificationService) List(ctx context.Context, username string) ([]*domain.Notification, error) {
	return s.repo.ListByUsername(ctx, username)
}
