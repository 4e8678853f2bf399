package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

func (a *App) paymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"payment"},
		Short:   "Оплата принятых предложений и история платежей",
	}
	cmd.AddCommand(a.paymentsPayCmd(), a.paymentsHistoryCmd())
	return cmd
}

func (a *App) paymentsPayCmd() *cobra.Command {
	var upi string
	cmd := &cobra.Command{
		Use:   "pay <proposalId>",
		Short: "Оплатить предложение через UPI",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proposalID, err := parseID("id предложения", args[0])
			if err != nil {
				return err
			}
			v := view.NewPaymentForm(a.deps(), proposalID)
			return a.mounted(cmd.Context(), "/payment/:proposalId", v,
				func() string { return renderPayment(v.State()) },
				v.Load,
				func(ctx context.Context) error { return v.Pay(ctx, upi) },
			)
		},
	}
	cmd.Flags().StringVar(&upi, "upi", "", "UPI ID плательщика, например name@bank")
	_ = cmd.MarkFlagRequired("upi")
	return cmd
}

func renderPayment(s view.PaymentFormState) string {
	if s.Payment == nil {
		if s.Form.Error != "" {
			return errorStyle.Render("Платёж не проведён: " + s.Form.Error)
		}
		return failure(s.Status, s.Error)
	}
	p := s.Payment
	lines := []string{
		titleStyle.Render("Платёж #"+itoa(p.ID)) + " " + badge(p.Status),
		fmt.Sprintf("%s · %s", money(p.Amount), p.Description),
	}
	if p.TransactionID != "" {
		lines = append(lines, mutedStyle.Render("Транзакция "+p.TransactionID))
	}
	return join(lines...)
}

func (a *App) paymentsHistoryCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "История платежей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewPaymentHistory(a.deps())
			v.SetFilter(status)
			return a.mounted(cmd.Context(), "/payment-history", v, func() string { return renderPaymentHistory(v.State()) })
		},
	}
	cmd.Flags().StringVar(&status, "status", models.FilterAll, "фильтр по статусу")
	return cmd
}

func renderPaymentHistory(s view.PaymentHistoryState) string {
	rows := make([][]string, 0, len(s.Visible))
	for _, p := range s.Visible {
		date := ""
		if !p.CreatedAt.IsZero() {
			date = p.CreatedAt.Format("02.01.2006")
		}
		rows = append(rows, []string{itoa(p.ID), date, money(p.Amount), badge(p.Status), p.Description})
	}
	return join(
		titleStyle.Render("История платежей"),
		failure(s.Status, s.Error),
		renderTable([]string{"ID", "Дата", "Сумма", "Статус", "Описание"}, rows),
		fmt.Sprintf("Сумма: %s · Успешных: %.0f%%", money(s.TotalAmount), s.SuccessRate),
		counts(s.Counts, models.PaymentStatusPending, models.PaymentStatusCompleted, models.PaymentStatusFailed, models.PaymentStatusRefunded),
	)
}
