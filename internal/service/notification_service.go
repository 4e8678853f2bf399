package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// NotificationService клиент уведомлений пользователя.
type NotificationService struct {
	api API
}

// NewNotificationService создаёт клиент уведомлений.
func NewNotificationService(api API) *NotificationService {
	return &NotificationService{api: api}
}

// ListForUser возвращает уведомления, при unreadOnly только непрочитанные.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64, unreadOnly bool) ([]models.Notification, error) {
	path := "/api/notifications/user/" + id(userID)
	if unreadOnly {
		path += "/unread"
	}
	notifications := []models.Notification{}
	if err := s.api.Get(ctx, path, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count models.UnreadCount
	if err := s.api.Get(ctx, "/api/notifications/user/"+id(userID)+"/unread/count", nil, &count); err != nil {
		return 0, err
	}
	return count.Count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID int64) (*models.Notification, error) {
	var notification models.Notification
	if err := s.api.Put(ctx, "/api/notifications/"+id(notificationID)+"/read", nil, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

// MarkAllRead отмечает всё прочитанным. Ответ API текстовый, он игнорируется.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.api.Put(ctx, "/api/notifications/user/"+id(userID)+"/read-all", nil, nil)
}
