package view

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// Notifications уведомления пользователя и счётчик непрочитанных.
type Notifications struct {
	deps   Deps
	loader *Loader[NotificationsData]
}

type NotificationsData struct {
	Items  []models.Notification `json:"items"`
	Unread int64                 `json:"unread"`
}

func NewNotifications(deps Deps) *Notifications {
	return &Notifications{deps: deps, loader: NewLoader[NotificationsData]("notifications")}
}

func (v *Notifications) Name() string { return v.loader.Name() }
func (v *Notifications) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *Notifications) Close() { v.loader.Close() }
func (v *Notifications) Render() any { return v.State() }

func (v *Notifications) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) (NotificationsData, error) {
		var data NotificationsData
		err := Gather(ctx,
			func(ctx context.Context) error {
				items, err := v.deps.Notifications.ListForUser(ctx, user.ID, false)
				data.Items = items
				return err
			},
			func(ctx context.Context) error {
				unread, err := v.deps.Notifications.UnreadCount(ctx, user.ID)
				data.Unread = unread
				return err
			},
		)
		return data, err
	})
}

func (v *Notifications) State() Snapshot[NotificationsData] {
	return v.loader.Snapshot()
}

// MarkRead отмечает уведомление прочитанным на месте.
func (v *Notifications) MarkRead(ctx context.Context, notificationID int64) error {
	if _, err := v.deps.Notifications.MarkRead(ctx, notificationID); err != nil {
		return &Alert{Message: "Не удалось отметить уведомление", Err: err}
	}
	v.loader.Patch(func(data NotificationsData) NotificationsData {
		items := make([]models.Notification, len(data.Items))
		copy(items, data.Items)
		for i := range items {
			if items[i].ID == notificationID && !items[i].Read {
				items[i].Read = true
				if data.Unread > 0 {
					data.Unread--
				}
			}
		}
		data.Items = items
		return data
	})
	return nil
}

func (v *Notifications) MarkAllRead(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	if err := v.deps.Notifications.MarkAllRead(ctx, user.ID); err != nil {
		return &Alert{Message: "Не удалось отметить уведомления", Err: err}
	}
	v.loader.Patch(func(data NotificationsData) NotificationsData {
		items := make([]models.Notification, len(data.Items))
		copy(items, data.Items)
		for i := range items {
			items[i].Read = true
		}
		data.Items = items
		data.Unread = 0
		return data
	})
	return nil
}
