package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// PaymentService клиент ресурса платежей.
type PaymentService struct {
	api API
}

// NewPaymentService создаёт клиент платежей.
func NewPaymentService(api API) *PaymentService {
	return &PaymentService{api: api}
}

// Initiate создаёт платёж в статусе PENDING.
func (s *PaymentService) Initiate(ctx context.Context, in models.PaymentInput) (*models.Payment, error) {
	var payment models.Payment
	if err := s.api.Post(ctx, "/api/payments", in, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ProcessUPI внешний шаг оплаты по UPI. Результат непрозрачен: успех или ошибка.
func (s *PaymentService) ProcessUPI(ctx context.Context, paymentID int64, upi models.UPIRequest) (*models.Payment, error) {
	var payment models.Payment
	if err := s.api.Post(ctx, "/api/payments/"+id(paymentID)+"/upi", upi, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) Get(ctx context.Context, paymentID int64) (*models.Payment, error) {
	var payment models.Payment
	if err := s.api.Get(ctx, "/api/payments/"+id(paymentID), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) ListByUser(ctx context.Context, userID int64) ([]models.Payment, error) {
	var payments []models.Payment
	if err := s.api.Get(ctx, "/api/payments/user/"+id(userID), nil, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *PaymentService) GetByProposal(ctx context.Context, proposalID int64) (*models.Payment, error) {
	var payment models.Payment
	if err := s.api.Get(ctx, "/api/payments/proposal/"+id(proposalID), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) Verify(ctx context.Context, paymentID int64, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	body := models.VerifyRequest{TransactionID: transactionID}
	if err := s.api.Post(ctx, "/api/payments/"+id(paymentID)+"/verify", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *PaymentService) Refund(ctx context.Context, paymentID int64, reason string) (*models.Payment, error) {
	var payment models.Payment
	body := models.RefundRequest{Reason: reason}
	if err := s.api.Post(ctx, "/api/payments/"+id(paymentID)+"/refund", body, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}
