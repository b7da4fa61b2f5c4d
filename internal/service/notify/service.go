// Package notify serves the user-facing notification feed.
package notify

import (
	"context"
	"time"

	"delivery-tracking/internal/apperr"
	"delivery-tracking/internal/domain"
	"delivery-tracking/internal/logx"
)

// notificationStore is the slice of the notification repository the
// service uses.
type notificationStore interface {
	ListForUser(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
}

// Service reads and acknowledges notifications.
type Service struct {
	repo             notificationStore
	logger           logx.Logger
	operationTimeout time.Duration
}

// NewService creates a notification Service.
func NewService(repo notificationStore, logger logx.Logger, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Service{repo: repo, logger: logger, operationTimeout: timeout}
}

// List returns the actor's notifications, newest first.
func (s *Service) List(ctx context.Context, actor domain.Actor) ([]domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()
	return s.repo.ListForUser(ctx, actor.UserID)
}

// MarkRead acknowledges one notification. The user filter in the update
// makes marking someone else's notification indistinguishable from a
// missing one.
func (s *Service) MarkRead(ctx context.Context, actor domain.Actor, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	ok, err := s.repo.MarkRead(ctx, id, actor.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrNotFound
	}
	return nil
}
