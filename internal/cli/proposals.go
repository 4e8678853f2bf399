package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/view"
)

var proposalOrder = []string{
	models.ProposalStatusPending, models.ProposalStatusAccepted,
	models.ProposalStatusRejected, models.ProposalStatusWithdrawn,
}

func (a *App) proposalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "proposals",
		Aliases: []string{"proposal"},
		Short:   "Предложения фрилансеров",
	}
	cmd.AddCommand(
		a.proposalsMineCmd(), a.proposalsSubmitCmd(), a.proposalsWithdrawCmd(),
		a.proposalsListCmd(), a.proposalsDecideCmd("accept"), a.proposalsDecideCmd("reject"),
	)
	return cmd
}

func (a *App) proposalsMineCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Мои предложения (фрилансер)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := view.NewMyProposals(a.deps())
			v.SetFilter(status)
			return a.mounted(cmd.Context(), "/freelancer/proposals", v, func() string { return renderMyProposals(v.State()) })
		},
	}
	cmd.Flags().StringVar(&status, "status", models.FilterAll, "фильтр по статусу")
	return cmd
}

func renderMyProposals(s view.MyProposalsState) string {
	return join(
		titleStyle.Render("Мои предложения"),
		failure(s.Status, s.Error),
		renderTable(proposalHeaders, proposalRows(s.Visible)),
		counts(s.Counts, proposalOrder...),
	)
}

func (a *App) proposalsWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <id>",
		Short: "Отозвать своё предложение",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("id предложения", args[0])
			if err != nil {
				return err
			}
			v := view.NewMyProposals(a.deps())
			return a.mounted(cmd.Context(), "/freelancer/proposals", v,
				func() string { return renderMyProposals(v.State()) },
				v.Load,
				func(ctx context.Context) error { return v.Withdraw(ctx, id) },
			)
		},
	}
}

func (a *App) proposalsSubmitCmd() *cobra.Command {
	var in models.ProposalInput
	var attach []string

	cmd := &cobra.Command{
		Use:   "submit <projectId>",
		Short: "Откликнуться на проект",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			v := view.NewSubmitProposal(a.deps(), projectID)

			steps := []step{v.Load}
			for _, path := range attach {
				path := path
				steps = append(steps, func(ctx context.Context) error {
					_, err := v.Attach(ctx, path)
					return err
				})
			}
			steps = append(steps, func(ctx context.Context) error { return v.Submit(ctx, in) })

			return a.mounted(cmd.Context(), "/freelancer/submit-proposal/:projectId", v,
				func() string { return renderSubmitProposal(v.State()) },
				steps...,
			)
		},
	}
	flags := cmd.Flags()
	flags.Float64Var(&in.BidAmount, "bid", 0, "ставка")
	flags.IntVar(&in.Duration, "duration", 0, "срок в днях")
	flags.StringVar(&in.CoverLetter, "cover-letter", "", "сопроводительное письмо")
	flags.StringSliceVar(&attach, "attach", nil, "файлы вложений (можно несколько)")
	return cmd
}

func renderSubmitProposal(s view.SubmitProposalState) string {
	title := "проект"
	if s.Data != nil {
		title = s.Data.Title
	}
	if s.Form.Error != "" {
		return errorStyle.Render("Предложение не отправлено: " + s.Form.Error)
	}
	return "Предложение по «" + title + "» отправлено " + badge(models.ProposalStatusPending)
}

func (a *App) proposalsListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list <projectId>",
		Short: "Предложения по моему проекту (клиент)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			v := view.NewViewProposals(a.deps(), projectID)
			v.SetFilter(status)
			return a.mounted(cmd.Context(), "/client/proposals/:projectId", v, func() string { return renderViewProposals(v.State()) })
		},
	}
	cmd.Flags().StringVar(&status, "status", models.FilterAll, "фильтр по статусу")
	return cmd
}

// proposalsDecideCmd accept и reject отличаются только действием.
func (a *App) proposalsDecideCmd(action string) *cobra.Command {
	short := "Принять предложение; остальные будут отклонены"
	if action == "reject" {
		short = "Отклонить предложение"
	}
	return &cobra.Command{
		Use:   action + " <projectId> <proposalId>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			proposalID, err := parseID("id предложения", args[1])
			if err != nil {
				return err
			}
			v := view.NewViewProposals(a.deps(), projectID)
			decide := v.Accept
			if action == "reject" {
				decide = v.Reject
			}
			return a.mounted(cmd.Context(), "/client/proposals/:projectId", v,
				func() string { return renderViewProposals(v.State()) },
				v.Load,
				func(ctx context.Context) error { return decide(ctx, proposalID) },
			)
		},
	}
}

func renderViewProposals(s view.ViewProposalsState) string {
	header := "Предложения"
	if s.Data.Project != nil {
		header += " · " + s.Data.Project.Title + " " + badge(s.Data.Project.Status)
	}
	return join(
		titleStyle.Render(header),
		failure(s.Status, s.Error),
		renderTable(proposalHeaders, proposalRows(s.Visible)),
		counts(s.Counts, proposalOrder...),
	)
}

func (a *App) rankingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranking <projectId>",
		Short: "AI ранжирование предложений по проекту",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID("id проекта", args[0])
			if err != nil {
				return err
			}
			v := view.NewAIRanking(a.deps(), projectID)
			return a.mounted(cmd.Context(), "/client/ai-ranking/:projectId", v, func() string { return renderRanking(v.State()) })
		},
	}
}

func renderRanking(s view.Snapshot[view.RankingData]) string {
	if s.Status == view.Failed {
		return failure(s.Status, s.Error)
	}
	d := s.Data

	rows := make([][]string, 0, len(d.Rankings))
	for i, r := range d.Rankings {
		rank := r.Rank
		if rank == 0 {
			rank = i + 1
		}
		who := r.FreelancerName
		if who == "" {
			who = "#" + itoa(r.FreelancerID)
		}
		rows = append(rows, []string{
			strconv.Itoa(rank), itoa(r.ProposalID), who,
			strconv.FormatFloat(r.Score, 'f', 1, 64), money(r.BidAmount),
			strings.Join(r.MatchingSkills, ", "),
		})
	}

	lines := []string{}
	if d.Project != nil {
		lines = append(lines, titleStyle.Render("AI рейтинг · "+d.Project.Title))
	}
	lines = append(lines, renderTable([]string{"#", "Предложение", "Фрилансер", "Оценка", "Ставка", "Совпадения"}, rows))

	switch {
	case d.Prediction != nil:
		lines = append(lines, fmt.Sprintf("Вероятность успеха: %.0f%%", d.Prediction.Probability*100))
		if len(d.Prediction.RiskFactors) > 0 {
			lines = append(lines, mutedStyle.Render("Риски: "+strings.Join(d.Prediction.RiskFactors, "; ")))
		}
	case d.PredictionError != "":
		lines = append(lines, mutedStyle.Render(d.PredictionError))
	}

	if len(d.Matches) > 0 {
		names := make([]string, 0, len(d.Matches))
		for _, m := range d.Matches {
			name := m.FreelancerName
			if name == "" {
				name = "#" + itoa(m.FreelancerID)
			}
			names = append(names, fmt.Sprintf("%s (%.0f)", name, m.MatchScore))
		}
		lines = append(lines, "Подходящие фрилансеры: "+strings.Join(names, ", "))
	} else if d.MatchesError != "" {
		lines = append(lines, mutedStyle.Render(d.MatchesError))
	}
	return join(lines...)
}
