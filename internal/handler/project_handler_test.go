package handler

import (
	"context"
	"net/http"
	"testing"

	"backend/internal/model"
	"backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// stubProjectService serves a single in-memory project for company 1
type stubProjectService struct {
	service.ProjectService

	created *service.CreateProjectRequest
}

func (s *stubProjectService) Get(ctx context.Context, companyID uint, id uint) (*service.ProjectResponse, error) {
	if companyID != 1 || id != 10 {
		return nil, model.ErrNotFound
	}
	return &service.ProjectResponse{ID: 10, Name: "Warehouse revamp"}, nil
}

func (s *stubProjectService) List(ctx context.Context, companyID uint, offset, limit int) ([]service.ProjectResponse, int64, error) {
	if companyID != 1 {
		return nil, 0, nil
	}
	return []service.ProjectResponse{{ID: 10, Name: "Warehouse revamp"}}, 1, nil
}

func (s *stubProjectService) Create(ctx context.Context, companyID uint, req service.CreateProjectRequest) (*service.ProjectResponse, error) {
	s.created = &req
	return &service.ProjectResponse{ID: 11, Name: req.Name}, nil
}

func (s *stubProjectService) Delete(ctx context.Context, companyID uint, id uint) error {
	if companyID != 1 || id != 10 {
		return model.ErrNotFound
	}
	return nil
}

func projectRouter(svc service.ProjectService) *gin.Engine {
	r := gin.New()
	NewProjectHandler(svc, testIssuer).RegisterRoutes(r.Group(""))
	return r
}

func TestGetProjectOK(t *testing.T) {
	r := projectRouter(&stubProjectService{})

	w := doJSON(r, http.MethodGet, "/projects/10", bearerFor(t, 1, model.RoleUser), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Warehouse revamp")
}

func TestGetProjectOtherTenantIs404(t *testing.T) {
	r := projectRouter(&stubProjectService{})

	// caller from company 2; the record exists only under company 1
	w := doJSON(r, http.MethodGet, "/projects/10", bearerFor(t, 2, model.RoleUser), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProjectBadID(t *testing.T) {
	r := projectRouter(&stubProjectService{})

	w := doJSON(r, http.MethodGet, "/projects/abc", bearerFor(t, 1, model.RoleUser), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProjectRequiresAdmin(t *testing.T) {
	svc := &stubProjectService{}
	r := projectRouter(svc)

	w := doJSON(r, http.MethodPost, "/projects", bearerFor(t, 1, model.RoleUser), `{"name":"New site"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, svc.created)

	w = doJSON(r, http.MethodPost, "/projects", bearerFor(t, 1, model.RoleAdmin), `{"name":"New site"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "New site", svc.created.Name)
}

func TestDeleteProjectNoContent(t *testing.T) {
	r := projectRouter(&stubProjectService{})

	w := doJSON(r, http.MethodDelete, "/projects/10", bearerFor(t, 1, model.RoleAdmin), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestListProjectsOK(t *testing.T) {
	r := projectRouter(&stubProjectService{})

	w := doJSON(r, http.MethodGet, "/projects", bearerFor(t, 1, model.RoleUser), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}
