package view

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-nexus/internal/logger"
	"github.com/ignatzorin/freelance-nexus/internal/models"
	"github.com/ignatzorin/freelance-nexus/internal/pkg/apperror"
	"github.com/ignatzorin/freelance-nexus/internal/validation"
)

// PaymentForm оплата принятого предложения через UPI.
type PaymentForm struct {
	deps       Deps
	proposalID int64
	loader     *Loader[*models.Proposal]
	form       form

	mu      sync.Mutex
	payment *models.Payment
}

// PaymentFormState сумма и описание берутся из предложения.
type PaymentFormState struct {
	Snapshot[*models.Proposal]
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Form        FormState       `json:"form"`
	Payment     *models.Payment `json:"payment,omitempty"`
}

func NewPaymentForm(deps Deps, proposalID int64) *PaymentForm {
	return &PaymentForm{deps: deps, proposalID: proposalID, loader: NewLoader[*models.Proposal]("payment")}
}

func (v *PaymentForm) Name() string { return v.loader.Name() }

func (v *PaymentForm) OnChange(fn func()) {
	v.loader.OnChange(fn)
	v.form.onChange(fn)
}

func (v *PaymentForm) Close() {
	v.loader.Close()
	v.form.close()
}

func (v *PaymentForm) Render() any { return v.State() }

func (v *PaymentForm) Load(ctx context.Context) error {
	return v.loader.Load(ctx, func(ctx context.Context) (*models.Proposal, error) {
		return v.deps.Proposals.Get(ctx, v.proposalID)
	})
}

func (v *PaymentForm) State() PaymentFormState {
	snap := v.loader.Snapshot()
	state := PaymentFormState{Snapshot: snap, Form: v.form.state()}
	if snap.Data != nil {
		state.Amount = snap.Data.BidAmount
		state.Description = paymentDescription(snap.Data)
	}
	v.mu.Lock()
	state.Payment = v.payment
	v.mu.Unlock()
	return state
}

// Pay создаёт платёж на сумму предложения и проводит его через UPI.
func (v *PaymentForm) Pay(ctx context.Context, upiID string) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	proposal := v.loader.Data()
	if proposal == nil {
		return apperror.New(apperror.ErrCodeValidation, "предложение ещё не загружено")
	}
	if !v.form.begin() {
		return errSubmitting
	}

	upi := models.UPIRequest{UPIID: strings.TrimSpace(upiID), Amount: proposal.BidAmount}
	if err := validation.Struct(upi); err != nil {
		return v.form.finish(err)
	}

	payment, err := v.deps.Payments.Initiate(ctx, models.PaymentInput{
		ProposalID:    proposal.ID,
		ClientID:      user.ID,
		FreelancerID:  proposal.FreelancerID,
		Amount:        proposal.BidAmount,
		PaymentMethod: models.PaymentMethodUPI,
		Description:   paymentDescription(proposal),
	})
	if err != nil {
		return v.form.finish(err)
	}
	processed, err := v.deps.Payments.ProcessUPI(ctx, payment.ID, upi)
	if err != nil {
		logger.WithComponent("view").WithError(err).WithField("payment_id", payment.ID).Warn("платёж создан, но не проведён")
		return v.form.finish(err)
	}

	v.mu.Lock()
	v.payment = processed
	v.mu.Unlock()
	v.form.finish(nil)

	logger.WithComponent("view").WithFields(logrus.Fields{
		"payment_id":  processed.ID,
		"proposal_id": proposal.ID,
		"status":      processed.Status,
	}).Info("платёж проведён")

	v.deps.navigate("/payment-history", "Платёж выполнен")
	return nil
}

func paymentDescription(p *models.Proposal) string {
	title := p.ProjectTitle
	if title == "" {
		title = "#" + strconv.FormatInt(p.ProjectID, 10)
	}
	return "Оплата проекта: " + title
}

// PaymentHistory платежи текущего пользователя.
type PaymentHistory struct {
	deps   Deps
	loader *Loader[[]models.Payment]

	mu     sync.Mutex
	filter string
}

// PaymentHistoryState TotalAmount считается по всем платежам, SuccessRate в целых процентах.
type PaymentHistoryState struct {
	Snapshot[[]models.Payment]
	Filter      string           `json:"filter"`
	Visible     []models.Payment `json:"visible"`
	Counts      map[string]int   `json:"counts"`
	TotalAmount float64          `json:"totalAmount"`
	SuccessRate float64          `json:"successRate"`
}

func NewPaymentHistory(deps Deps) *PaymentHistory {
	return &PaymentHistory{deps: deps, loader: NewLoader[[]models.Payment]("payment-history"), filter: models.FilterAll}
}

func (v *PaymentHistory) Name() string { return v.loader.Name() }
func (v *PaymentHistory) OnChange(fn func()) { v.loader.OnChange(fn) }
func (v *PaymentHistory) Close() { v.loader.Close() }
func (v *PaymentHistory) Render() any { return v.State() }

func (v *PaymentHistory) Load(ctx context.Context) error {
	user, err := v.deps.user()
	if err != nil {
		return err
	}
	return v.loader.Load(ctx, func(ctx context.Context) ([]models.Payment, error) {
		return v.deps.Payments.ListByUser(ctx, user.ID)
	})
}

func (v *PaymentHistory) SetFilter(status string) {
	v.mu.Lock()
	v.filter = normalizeFilter(status)
	v.mu.Unlock()
	v.loader.notify()
}

func (v *PaymentHistory) State() PaymentHistoryState {
	snap := v.loader.Snapshot()
	v.mu.Lock()
	filter := v.filter
	v.mu.Unlock()

	state := PaymentHistoryState{
		Snapshot: snap,
		Filter:   filter,
		Visible:  filterByStatus(snap.Data, filter, paymentStatus),
		Counts:   countByStatus(snap.Data, paymentStatus),
	}
	for _, p := range snap.Data {
		state.TotalAmount += p.Amount
	}
	if n := len(snap.Data); n > 0 {
		state.SuccessRate = math.Round(float64(state.Counts[models.PaymentStatusCompleted]) * 100 / float64(n))
	}
	return state
}
