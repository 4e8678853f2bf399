package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/view"
)

func (a *App) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notif"},
		Short:   "Уведомления",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewNotifications(a.deps())
			return a.mounted(cmd.Context(), "/notifications", v, func() string { return renderNotifications(v.State()) })
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Отметить уведомление прочитанным",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id уведомления", args[0])
			if err != nil {
				return err
			}
			v := view.NewNotifications(a.deps())
			return a.mounted(cmd.Context(), "/notifications", v,
				func() string { return renderNotifications(v.State()) },
				loadStep(v),
				func(ctx context.Context) error { return v.MarkRead(ctx, id) },
			)
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Отметить все уведомления прочитанными",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewNotifications(a.deps())
			return a.mounted(cmd.Context(), "/notifications", v,
				func() string { return renderNotifications(v.State()) },
				loadStep(v),
				v.MarkAllRead,
			)
		},
	}

	cmd.AddCommand(read, readAll)
	return cmd
}

func renderNotifications(s view.Snapshot[view.NotificationsData]) string {
	rows := make([][]string, 0, len(s.Data.Items))
	for _, n := range s.Data.Items {
		mark := "•"
		if n.Read {
			mark = ""
		}
		date := ""
		if !n.CreatedAt.IsZero() {
			date = n.CreatedAt.Format("02.01 15:04")
		}
		rows = append(rows, []string{mark, itoa(n.ID), date, n.Title, n.Message})
	}
	return join(
		titleStyle.Render(fmt.Sprintf("Уведомления · непрочитанных %d", s.Data.Unread)),
		failure(s.Status, s.Error),
		renderTable([]string{"", "ID", "Когда", "Заголовок", "Текст"}, rows),
	)
}
