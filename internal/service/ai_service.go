package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// AIService чтение результатов AI сервиса. Ничего не кэшируется.
type AIService struct {
	api API
}

// NewAIService создаёт клиент AI сервиса.
func NewAIService(api API) *AIService {
	return &AIService{api: api}
}

func (s *AIService) Recommendations(ctx context.Context, freelancerID int64) ([]models.Recommendation, error) {
	recs := []models.Recommendation{}
	if err := s.api.Get(ctx, "/api/ai/recommendations/freelancer/"+id(freelancerID), nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *AIService) RankProposals(ctx context.Context, projectID int64) ([]models.ProposalRanking, error) {
	rankings := []models.ProposalRanking{}
	if err := s.api.Get(ctx, "/api/ai/rank-proposals/"+id(projectID), nil, &rankings); err != nil {
		return nil, err
	}
	return rankings, nil
}

func (s *AIService) SummarizeProject(ctx context.Context, projectID int64) (*models.ProjectSummary, error) {
	var summary models.ProjectSummary
	if err := s.api.Get(ctx, "/api/ai/summarize-project/"+id(projectID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *AIService) AnalyzeProfile(ctx context.Context, freelancerID int64) (*models.ProfileAnalysis, error) {
	var analysis models.ProfileAnalysis
	if err := s.api.Get(ctx, "/api/ai/analyze-profile/"+id(freelancerID), nil, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (s *AIService) MatchFreelancers(ctx context.Context, projectID int64) ([]models.FreelancerMatch, error) {
	matches := []models.FreelancerMatch{}
	if err := s.api.Get(ctx, "/api/ai/match-freelancers/"+id(projectID), nil, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *AIService) PredictSuccess(ctx context.Context, projectID int64) (*models.SuccessPrediction, error) {
	var prediction models.SuccessPrediction
	if err := s.api.Get(ctx, "/api/ai/predict-success/"+id(projectID), nil, &prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}
