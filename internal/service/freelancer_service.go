package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// FreelancerService клиент профилей, навыков и портфолио фрилансеров.
type FreelancerService struct {
	api API
}

// NewFreelancerService создаёт клиент фрилансеров.
func NewFreelancerService(api API) *FreelancerService {
	return &FreelancerService{api: api}
}

func (s *FreelancerService) GetProfile(ctx context.Context, freelancerID int64) (*models.FreelancerProfile, error) {
	var profile models.FreelancerProfile
	if err := s.api.Get(ctx, "/api/freelancers/"+id(freelancerID), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *FreelancerService) UpdateProfile(ctx context.Context, freelancerID int64, profile models.FreelancerProfile) (*models.FreelancerProfile, error) {
	var updated models.FreelancerProfile
	if err := s.api.Put(ctx, "/api/freelancers/"+id(freelancerID), profile, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *FreelancerService) GetSkills(ctx context.Context, freelancerID int64) ([]string, error) {
	var skills []string
	if err := s.api.Get(ctx, "/api/freelancers/"+id(freelancerID)+"/skills", nil, &skills); err != nil {
		return nil, err
	}
	return skills, nil
}

// UpdateSkills заменяет список навыков целиком.
func (s *FreelancerService) UpdateSkills(ctx context.Context, freelancerID int64, skills []string) ([]string, error) {
	if skills == nil {
		skills = []string{}
	}
	var updated []string
	if err := s.api.Put(ctx, "/api/freelancers/"+id(freelancerID)+"/skills", skills, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *FreelancerService) GetPortfolio(ctx context.Context, freelancerID int64) ([]models.PortfolioItem, error) {
	var items []models.PortfolioItem
	if err := s.api.Get(ctx, "/api/freelancers/"+id(freelancerID)+"/portfolio", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *FreelancerService) AddPortfolioItem(ctx context.Context, freelancerID int64, item models.PortfolioItem) (*models.PortfolioItem, error) {
	var created models.PortfolioItem
	if err := s.api.Post(ctx, "/api/freelancers/"+id(freelancerID)+"/portfolio", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *FreelancerService) DeletePortfolioItem(ctx context.Context, freelancerID, itemID int64) error {
	return s.api.Delete(ctx, "/api/freelancers/"+id(freelancerID)+"/portfolio/"+id(itemID), nil)
}

func (s *FreelancerService) GetStats(ctx context.Context, freelancerID int64) (*models.FreelancerStats, error) {
	var stats models.FreelancerStats
	if err := s.api.Get(ctx, "/api/freelancers/"+id(freelancerID)+"/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
