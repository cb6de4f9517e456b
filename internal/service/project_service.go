package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/gorm"
)

// DTOs
type CreateProjectRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpdateProjectRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	Description string     `json:"description" binding:"max=2000"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type ProjectResponse struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// ProjectService provides company-scoped project CRUD
type ProjectService interface {
	List(ctx context.Context, companyID uint, offset, limit int) ([]ProjectResponse, int64, error)
	Get(ctx context.Context, companyID uint, id uint) (*ProjectResponse, error)
	Create(ctx context.Context, companyID uint, req CreateProjectRequest) (*ProjectResponse, error)
	Update(ctx context.Context, companyID uint, id uint, req UpdateProjectRequest) (*ProjectResponse, error)
	Delete(ctx context.Context, companyID uint, id uint) error
}

type projectService struct {
	repo repository.ProjectRepository
}

// NewProjectService returns a new instance of ProjectService
func NewProjectService(repo repository.ProjectRepository) ProjectService {
	return &projectService{repo: repo}
}

func (s *projectService) List(ctx context.Context, companyID uint, offset, limit int) ([]ProjectResponse, int64, error) {
	projects, total, err := s.repo.List(ctx, companyID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		res = append(res, toProjectResponse(&projects[i]))
	}
	return res, total, nil
}

func (s *projectService) Get(ctx context.Context, companyID uint, id uint) (*ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	res := toProjectResponse(project)
	return &res, nil
}

func (s *projectService) Create(ctx context.Context, companyID uint, req CreateProjectRequest) (*ProjectResponse, error) {
	project := model.Project{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CompanyID:   companyID,
	}

	if err := s.repo.Create(ctx, &project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	res := toProjectResponse(&project)
	return &res, nil
}

func (s *projectService) Update(ctx context.Context, companyID uint, id uint, req UpdateProjectRequest) (*ProjectResponse, error) {
	project, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	project.Name = strings.TrimSpace(req.Name)
	project.Description = req.Description
	project.StartDate = req.StartDate
	project.EndDate = req.EndDate

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	res := toProjectResponse(project)
	return &res, nil
}

func (s *projectService) Delete(ctx context.Context, companyID uint, id uint) error {
	if _, err := s.repo.FindByID(ctx, companyID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.repo.Delete(ctx, companyID, id)
}

func toProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:   p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
