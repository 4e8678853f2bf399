package models

// Payment описывает платёж клиента фрилансеру по принятому предложению.
type Payment struct {
	ID            int64     `json:"id"`
	ProposalID    int64     `json:"proposalId"`
	ClientID      int64     `json:"clientId"`
	FreelancerID  int64     `json:"freelancerId"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	TransactionID string    `json:"transactionId,omitempty"`
	CreatedAt     Timestamp `json:"createdAt"`
}

// PaymentInput тело создания платежа.
type PaymentInput struct {
	ProposalID    int64   `json:"proposalId" validate:"required,gt=0"`
	ClientID      int64   `json:"clientId" validate:"required,gt=0"`
	FreelancerID  int64   `json:"freelancerId" validate:"required,gt=0"`
	Amount        float64 `json:"amount" validate:"gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required"`
	Description   string  `json:"description"`
}

// UPIRequest данные внешнего шага оплаты.
type UPIRequest struct {
	UPIID  string  `json:"upiId" validate:"required,upi"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// VerifyRequest тело подтверждения платежа.
type VerifyRequest struct {
	TransactionID string `json:"transactionId" validate:"required"`
}

// RefundRequest тело запроса возврата.
type RefundRequest struct {
	Reason string `json:"reason" validate:"required"`
}
