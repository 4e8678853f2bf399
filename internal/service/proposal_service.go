package service

import (
	"context"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// ProposalService клиент ресурса предложений.
type ProposalService struct {
	api API
}

// NewProposalService создаёт клиент предложений.
func NewProposalService(api API) *ProposalService {
	return &ProposalService{api: api}
}

func (s *ProposalService) Submit(ctx context.Context, in models.ProposalInput) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.api.Post(ctx, "/api/proposals", in, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (s *ProposalService) Get(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.api.Get(ctx, "/api/proposals/"+id(proposalID), nil, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (s *ProposalService) ListByProject(ctx context.Context, projectID int64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	if err := s.api.Get(ctx, "/api/proposals/project/"+id(projectID), nil, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *ProposalService) ListByFreelancer(ctx context.Context, freelancerID int64) ([]models.Proposal, error) {
	var proposals []models.Proposal
	if err := s.api.Get(ctx, "/api/proposals/freelancer/"+id(freelancerID), nil, &proposals); err != nil {
		return nil, err
	}
	return proposals, nil
}

func (s *ProposalService) Update(ctx context.Context, proposalID int64, in models.ProposalInput) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.api.Put(ctx, "/api/proposals/"+id(proposalID), in, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (s *ProposalService) Delete(ctx context.Context, proposalID int64) error {
	return s.api.Delete(ctx, "/api/proposals/"+id(proposalID), nil)
}

// Accept принимает предложение. API может отклонить остальные предложения проекта,
// поэтому вызывающая сторона перечитывает весь список.
func (s *ProposalService) Accept(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	return s.transition(ctx, proposalID, "accept")
}

func (s *ProposalService) Reject(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	return s.transition(ctx, proposalID, "reject")
}

func (s *ProposalService) Withdraw(ctx context.Context, proposalID int64) (*models.Proposal, error) {
	return s.transition(ctx, proposalID, "withdraw")
}

// transition POST без тела на /api/proposals/{id}/{action}. Пустой ответ допустим.
func (s *ProposalService) transition(ctx context.Context, proposalID int64, action string) (*models.Proposal, error) {
	var proposal models.Proposal
	if err := s.api.Post(ctx, "/api/proposals/"+id(proposalID)+"/"+action, nil, &proposal); err != nil {
		return nil, err
	}
	return &proposal, nil
}
