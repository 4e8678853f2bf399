package models

// Proposal описывает предложение фрилансера по проекту.
type Proposal struct {
	ID                 int64        `json:"id"`
	ProjectID          int64        `json:"projectId"`
	FreelancerID       int64        `json:"freelancerId"`
	BidAmount          float64      `json:"bidAmount"`
	Duration           int          `json:"duration"`
	CoverLetter        string       `json:"coverLetter"`
	Status             string       `json:"status"`
	SubmittedAt        Timestamp    `json:"submittedAt"`
	ProjectTitle       string       `json:"projectTitle,omitempty"`
	ProjectDescription string       `json:"projectDescription,omitempty"`
	FreelancerName     string       `json:"freelancerName,omitempty"`
	FreelancerSkills   []string     `json:"freelancerSkills,omitempty"`
	Attachments        []Attachment `json:"attachments,omitempty"`
}

// Pending предложение ещё ждёт решения клиента.
func (p Proposal) Pending() bool {
	return p.Status == ProposalStatusPending
}

// ProposalInput тело отправки предложения.
type ProposalInput struct {
	ProjectID    int64        `json:"projectId" validate:"required,gt=0"`
	FreelancerID int64        `json:"freelancerId" validate:"required,gt=0"`
	BidAmount    float64      `json:"bidAmount" validate:"gt=0"`
	Duration     int          `json:"duration" validate:"gte=1"`
	CoverLetter  string       `json:"coverLetter" validate:"required,max=2000"`
	Status       string       `json:"status" validate:"required"`
	Attachments  []Attachment `json:"attachments,omitempty"`
}
