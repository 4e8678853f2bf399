package models

// Role роль пользователя платформы.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
)

// ProjectStatus константы статусов проектов
const (
	ProjectStatusOpen       = "OPEN"
	ProjectStatusInProgress = "IN_PROGRESS"
	ProjectStatusCompleted  = "COMPLETED"
	ProjectStatusCancelled  = "CANCELLED"
)

// ProposalStatus константы статусов предложений
const (
	ProposalStatusPending   = "PENDING"
	ProposalStatusAccepted  = "ACCEPTED"
	ProposalStatusRejected  = "REJECTED"
	ProposalStatusWithdrawn = "WITHDRAWN"
)

// PaymentStatus константы статусов платежей
const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
	PaymentStatusRefunded  = "REFUNDED"
)

// PaymentMethodUPI единственный метод оплаты, который поддерживает клиент.
const PaymentMethodUPI = "UPI"

// FilterAll значение фильтра "все" в списочных представлениях.
const FilterAll = "ALL"

// ValidProjectStatuses список валидных статусов проектов
var ValidProjectStatuses = map[string]struct{}{
	ProjectStatusOpen:       {},
	ProjectStatusInProgress: {},
	ProjectStatusCompleted:  {},
	ProjectStatusCancelled:  {},
}

// ValidProposalStatuses список валидных статусов предложений
var ValidProposalStatuses = map[string]struct{}{
	ProposalStatusPending:   {},
	ProposalStatusAccepted:  {},
	ProposalStatusRejected:  {},
	ProposalStatusWithdrawn: {},
}

// ValidPaymentStatuses список валидных статусов платежей
var ValidPaymentStatuses = map[string]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusCompleted: {},
	PaymentStatusFailed:    {},
	PaymentStatusRefunded:  {},
}
