package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/taskmesh/taskmesh/internal/shared"
)

const defaultInboxLimit = 50

// Service reads and mutates the notification inbox.
type Service struct {
	repo Repository
}

// NewService wires the notification service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Inbox lists the newest notifications plus the unread count.
func (s *Service) Inbox(ctx context.Context, accountID uuid.UUID, unreadOnly bool) ([]Notification, int, error) {
	items, err := s.repo.ListForAccount(ctx, accountID, unreadOnly, defaultInboxLimit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.UnreadCount(ctx, accountID)
	if err != nil {
		return nil, 0, err
	}
	return items, unread, nil
}

// MarkRead flags one notification as read. Ownership is enforced: an account
// can only mark its own notifications.
func (s *Service) MarkRead(ctx context.Context, accountID, id uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, accountID, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("notifications: %w", shared.ErrNotFound)
	}
	return nil
}
