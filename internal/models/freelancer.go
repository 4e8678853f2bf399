package models

// FreelancerProfile профиль фрилансера.
type FreelancerProfile struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Bio        string          `json:"bio"`
	HourlyRate float64         `json:"hourlyRate"`
	Skills     []string        `json:"skills"`
	Portfolio  []PortfolioItem `json:"portfolio"`
}

// HasSkill проверяет навык без учёта регистра.
func (p *FreelancerProfile) HasSkill(skill string) bool {
	for _, s := range p.Skills {
		if equalFold(s, skill) {
			return true
		}
	}
	return false
}

// PortfolioItem работа в портфолио.
type PortfolioItem struct {
	ID          int64       `json:"id,omitempty"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"required,max=2000"`
	URL         string      `json:"url,omitempty" validate:"omitempty,url"`
	Image       *Attachment `json:"image,omitempty"`
}

// FreelancerStats статистика для панели фрилансера.
type FreelancerStats struct {
	TotalProposals    int     `json:"totalProposals"`
	AcceptedProposals int     `json:"acceptedProposals"`
	ActiveProjects    int     `json:"activeProjects"`
	CompletedProjects int     `json:"completedProjects"`
	TotalEarnings     float64 `json:"totalEarnings"`
	AverageRating     float64 `json:"averageRating"`
	ProfileCompletion int     `json:"profileCompletion"`
}
