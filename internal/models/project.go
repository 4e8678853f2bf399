package models

// Project описывает проект, опубликованный клиентом.
type Project struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	MinBudget      float64   `json:"minBudget"`
	MaxBudget      float64   `json:"maxBudget"`
	Duration       int       `json:"duration"`
	RequiredSkills []string  `json:"requiredSkills"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	ClientID       int64     `json:"clientId"`
	ProposalCount  int       `json:"proposalCount"`
	CreatedAt      Timestamp `json:"createdAt"`
}

// Deletable удаление разрешено только для открытых проектов.
func (p Project) Deletable() bool {
	return p.Status == ProjectStatusOpen
}

// ProjectInput тело создания и обновления проекта.
type ProjectInput struct {
	Title          string   `json:"title" validate:"required,min=3,max=200"`
	Description    string   `json:"description" validate:"required,min=10"`
	MinBudget      float64  `json:"minBudget" validate:"gt=0"`
	MaxBudget      float64  `json:"maxBudget" validate:"gt=0,gtefield=MinBudget"`
	Duration       int      `json:"duration" validate:"gt=0"`
	RequiredSkills []string `json:"requiredSkills" validate:"dive,required,max=50"`
	Category       string   `json:"category" validate:"required"`
	ClientID       int64    `json:"clientId"`
	Status         string   `json:"status,omitempty"`
}

// ProjectFilter параметры списка проектов.
type ProjectFilter struct {
	Status    string
	Category  string
	MinBudget float64
	MaxBudget float64
}
