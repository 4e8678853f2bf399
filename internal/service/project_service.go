package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// ProjectService клиент ресурса проектов.
type ProjectService struct {
	api API
}

// NewProjectService создаёт клиент проектов.
func NewProjectService(api API) *ProjectService {
	return &ProjectService{api: api}
}

// List возвращает проекты, отфильтрованные на стороне API.
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.Category != "" {
		query.Set("category", filter.Category)
	}
	if filter.MinBudget > 0 {
		query.Set("minBudget", strconv.FormatFloat(filter.MinBudget, 'f', -1, 64))
	}
	if filter.MaxBudget > 0 {
		query.Set("maxBudget", strconv.FormatFloat(filter.MaxBudget, 'f', -1, 64))
	}

	var projects []models.Project
	if err := s.api.Get(ctx, "/api/projects", query, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) Get(ctx context.Context, projectID int64) (*models.Project, error) {
	var project models.Project
	if err := s.api.Get(ctx, "/api/projects/"+id(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Create(ctx context.Context, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := s.api.Post(ctx, "/api/projects", in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Update(ctx context.Context, projectID int64, in models.ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := s.api.Put(ctx, "/api/projects/"+id(projectID), in, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete удаляет проект. Проверка статуса OPEN выполняется вызывающей стороной.
func (s *ProjectService) Delete(ctx context.Context, projectID int64) error {
	return s.api.Delete(ctx, "/api/projects/"+id(projectID), nil)
}

func (s *ProjectService) ListByClient(ctx context.Context, clientID int64) ([]models.Project, error) {
	var projects []models.Project
	if err := s.api.Get(ctx, "/api/projects/client/"+id(clientID), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *ProjectService) ListByStatus(ctx context.Context, status string) ([]models.Project, error) {
	var projects []models.Project
	if err := s.api.Get(ctx, "/api/projects/status/"+url.PathEscape(status), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Search полнотекстовый поиск по проектам. Пустой результат не является ошибкой.
func (s *ProjectService) Search(ctx context.Context, term string) ([]models.Project, error) {
	projects := []models.Project{}
	if err := s.api.Get(ctx, "/api/projects/search", url.Values{"q": {term}}, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}
