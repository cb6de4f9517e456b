package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID         string `json:"id"`
	ActorID    string `json:"actor_id,omitempty"`
	Action     string `json:"action"`
	EntityID   string `json:"entity_id"`
	EntityName string `json:"entity_name,omitempty"`
	Details    string `json:"details"`
	CreatedAt  string `json:"created_at"`
}

// AuditService exposes the company-scoped audit trail
type AuditService interface {
	List(ctx context.Context, companyID uint, offset, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) List(ctx context.Context, companyID uint, offset, limit int) ([]AuditLogResponse, int64, error) {
	if companyID == 0 {
		return nil, 0, model.ErrNoTenant
	}

	entries, total, err := s.repo.ListByCompany(ctx, companyID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		item := AuditLogResponse{
			ID:         e.ID.String(),
			Action:     e.Action,
			EntityID:   e.EntityID,
			EntityName: e.EntityName,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.ActorID != nil {
			item.ActorID = e.ActorID.String()
		}
		res = append(res, item)
	}
	return res, total, nil
}
