package models

// Recommendation проект, подобранный AI для фрилансера.
type Recommendation struct {
	Project        Project  `json:"project"`
	MatchScore     float64  `json:"matchScore"`
	Reasoning      string   `json:"reasoning,omitempty"`
	MatchingSkills []string `json:"matchingSkills,omitempty"`
}

// ProposalRanking оценка предложения AI сервисом.
type ProposalRanking struct {
	ProposalID      int64    `json:"proposalId"`
	FreelancerID    int64    `json:"freelancerId"`
	FreelancerName  string   `json:"freelancerName,omitempty"`
	BidAmount       float64  `json:"bidAmount,omitempty"`
	Duration        int      `json:"duration,omitempty"`
	Score           float64  `json:"score"`
	Rank            int      `json:"rank,omitempty"`
	MatchingSkills  []string `json:"matchingSkills,omitempty"`
	ExperienceScore float64  `json:"experienceScore,omitempty"`
	SuccessRate     float64  `json:"successRate,omitempty"`
	Reasoning       string   `json:"reasoning,omitempty"`
	Strengths       []string `json:"strengths,omitempty"`
	Concerns        []string `json:"concerns,omitempty"`
}

// ProjectSummary краткое изложение проекта.
type ProjectSummary struct {
	ProjectID       int64    `json:"projectId"`
	Summary         string   `json:"summary"`
	KeyRequirements []string `json:"keyRequirements,omitempty"`
	EstimatedEffort string   `json:"estimatedEffort,omitempty"`
	ComplexityLevel string   `json:"complexityLevel,omitempty"`
}

// ProfileAnalysis разбор профиля фрилансера.
type ProfileAnalysis struct {
	FreelancerID int64    `json:"freelancerId"`
	Score        float64  `json:"score"`
	Strengths    []string `json:"strengths,omitempty"`
	Improvements []string `json:"improvements,omitempty"`
	Summary      string   `json:"summary,omitempty"`
}

// FreelancerMatch фрилансер, подходящий под проект.
type FreelancerMatch struct {
	FreelancerID   int64    `json:"freelancerId"`
	FreelancerName string   `json:"freelancerName,omitempty"`
	MatchScore     float64  `json:"matchScore"`
	MatchingSkills []string `json:"matchingSkills,omitempty"`
	Reasoning      string   `json:"reasoning,omitempty"`
}

// SuccessPrediction прогноз успешности проекта.
type SuccessPrediction struct {
	ProjectID   int64    `json:"projectId"`
	Probability float64  `json:"probability"`
	RiskFactors []string `json:"riskFactors,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}
