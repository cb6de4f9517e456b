package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend/internal/auth"
	"backend/internal/credential"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DTOs for Request validation
type RegisterCompanyRequest struct {
	Name          string `json:"name" binding:"required,max=200"`
	AdminEmail    string `json:"adminEmail" binding:"required,email"`
	AdminPassword string `json:"adminPassword" binding:"required,min=6"`
}

type RegisterCompanyResponse struct {
	CompanyID   uint   `json:"companyId"`
	CompanyName string `json:"companyName"`
	AdminUserID string `json:"adminUserId"`
	AdminEmail  string `json:"adminEmail"`
	Token       string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type CreateUserRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password"` // optional: empty creates a provisioned user awaiting invite
	Roles    []string `json:"roles"`
}

type UserResponse struct {
	ID             string   `json:"id"`
	Email          string   `json:"email"`
	CompanyID      uint     `json:"companyId"`
	EmailConfirmed bool     `json:"emailConfirmed"`
	Roles          []string `json:"roles"`
	Permissions    []string `json:"permissions"`
}

type MeResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	CompanyID   uint     `json:"companyId"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

type CompanyResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type InviteResponse struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	ActivationURL string `json:"activationUrl,omitempty"`
	EmailToken    string `json:"emailToken"`
	ResetToken    string `json:"resetToken"`
}

type ActivateRequest struct {
	UserID     string `json:"userId" binding:"required"`
	EmailToken string `json:"emailToken" binding:"required"`
	ResetToken string `json:"resetToken" binding:"required"`
	Password   string `json:"password" binding:"required,min=6"`
}

// AccountService covers company registration, authentication and the
// admin-side user lifecycle (create, permissions, invite, activate).
type AccountService interface {
	RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*RegisterCompanyResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Me(ctx context.Context, userID string) (*MeResponse, error)
	MyCompany(ctx context.Context, companyID uint) (*CompanyResponse, error)
	CreateUser(ctx context.Context, actorID string, actorCompanyID uint, req CreateUserRequest) (*UserResponse, error)
	ListUsers(ctx context.Context, companyID uint, offset, limit int) ([]UserResponse, int64, error)
	GetUser(ctx context.Context, actorCompanyID uint, targetID string) (*UserResponse, error)
	SetPermissions(ctx context.Context, actorID string, actorCompanyID uint, targetID string, permissions []string) error
	Invite(ctx context.Context, actorID string, actorCompanyID uint, targetID string) (*InviteResponse, error)
	Activate(ctx context.Context, req ActivateRequest) (*TokenResponse, error)
}

type accountService struct {
	users       repository.UserRepository
	companies   repository.CompanyRepository
	roles       repository.RoleRepository
	audit       repository.AuditRepository
	credentials credential.Provider
	issuer      *auth.TokenIssuer
	txManager   repository.TransactionManager
	appBaseURL  string
}

// NewAccountService returns a new instance of AccountService
func NewAccountService(
	users repository.UserRepository,
	companies repository.CompanyRepository,
	roles repository.RoleRepository,
	audit repository.AuditRepository,
	credentials credential.Provider,
	issuer *auth.TokenIssuer,
	txManager repository.TransactionManager,
	appBaseURL string,
) AccountService {
	return &accountService{
		users:       users,
		companies:   companies,
		roles:       roles,
		audit:       audit,
		credentials: credentials,
		issuer:      issuer,
		txManager:   txManager,
		appBaseURL:  appBaseURL,
	}
}

// RegisterCompany bootstraps a tenant: the company row plus its first Admin
// user, confirmed immediately so the admin can log in right away.
func (s *accountService) RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*RegisterCompanyResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.AdminEmail))

	exists, err := s.companies.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check company name: %w", err)
	}
	if exists {
		return nil, model.ErrCompanyNameExists
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailExists
	}

	company := model.Company{Name: name}
	admin := model.User{Email: email, EmailConfirmed: true}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.companies.Create(txCtx, &company); err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}

		admin.CompanyID = company.ID
		if err := s.credentials.CreateAccount(txCtx, &admin, req.AdminPassword); err != nil {
			return fmt.Errorf("failed to create admin account: %w", err)
		}

		adminRole, err := s.roles.FindByName(txCtx, model.RoleAdmin)
		if err != nil {
			return fmt.Errorf("failed to resolve Admin role: %w", err)
		}
		if err := s.users.AddRole(txCtx, &admin, adminRole); err != nil {
			return fmt.Errorf("failed to assign Admin role: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"company_name": name, "admin_email": email})
		entry := &model.AuditLog{
			CompanyID:  company.ID,
			Action:     model.ActionRegisterCompany,
			EntityID:   fmt.Sprintf("%d", company.ID),
			EntityName: name,
			Details:    string(details),
		}
		return s.audit.Log(txCtx, entry)
	})
	if err != nil {
		return nil, err
	}

	token, err := s.issuer.IssueAccessToken(&admin, []string{model.RoleAdmin}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &RegisterCompanyResponse{
		CompanyID:   company.ID,
		CompanyName: company.Name,
		AdminUserID: admin.ID.String(),
		AdminEmail:  admin.Email,
		Token:       token,
	}, nil
}

func (s *accountService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if !s.credentials.VerifyPassword(user, req.Password) {
		return nil, model.ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		return nil, model.ErrEmailNotConfirmed
	}

	return s.issueTokens(user)
}

func (s *accountService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.issuer.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := auth.SubjectFromClaims(claims)
	if err != nil {
		return nil, model.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, model.ErrTokenExpired
	}

	// Roles and permissions are re-read here, so the new access token picks up
	// any changes made since the previous issuance.
	return s.issueTokens(user)
}

func (s *accountService) Me(ctx context.Context, userID string) (*MeResponse, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, model.ErrNotFound
	}

	return &MeResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		CompanyID:   user.CompanyID,
		Roles:       roleNames(user),
		Permissions: claimValues(user),
	}, nil
}

func (s *accountService) MyCompany(ctx context.Context, companyID uint) (*CompanyResponse, error) {
	if companyID == 0 {
		return nil, model.ErrNoTenant
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	return &CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		CreatedAt: company.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// CreateUser provisions a user inside the acting admin's company. With an
// empty password the user stays unactivated until the invite flow completes.
func (s *accountService) CreateUser(ctx context.Context, actorID string, actorCompanyID uint, req CreateUserRequest) (*UserResponse, error) {
	if actorCompanyID == 0 {
		return nil, model.ErrNoTenant
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, model.ErrEmailExists
	}

	requested := req.Roles
	if len(requested) == 0 {
		requested = []string{model.RoleUser}
	}
	seen := make(map[string]bool, len(requested))
	names := make([]string, 0, len(requested))
	for _, name := range requested {
		if name != model.RoleAdmin && name != model.RoleUser {
			return nil, fmt.Errorf("%w: '%s'", model.ErrInvalidRole, name)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	user := model.User{
		Email:     email,
		CompanyID: actorCompanyID,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.credentials.CreateAccount(txCtx, &user, req.Password); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}

		for _, name := range names {
			role, err := s.roles.FindByName(txCtx, name)
			if err != nil {
				return fmt.Errorf("failed to resolve role '%s': %w", name, err)
			}
			if err := s.users.AddRole(txCtx, &user, role); err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}
		}

		return s.logAction(txCtx, actorID, actorCompanyID, model.ActionCreateUser, user.ID.String(), email,
			map[string]interface{}{"email": email, "roles": names})
	})
	if err != nil {
		return nil, err
	}

	return &UserResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		CompanyID:      user.CompanyID,
		EmailConfirmed: user.EmailConfirmed,
		Roles:          names,
		Permissions:    []string{},
	}, nil
}

func (s *accountService) ListUsers(ctx context.Context, companyID uint, offset, limit int) ([]UserResponse, int64, error) {
	if companyID == 0 {
		return nil, 0, model.ErrNoTenant
	}

	users, total, err := s.users.ListByCompany(ctx, companyID, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, toUserResponse(&users[i]))
	}
	return res, total, nil
}

func (s *accountService) GetUser(ctx context.Context, actorCompanyID uint, targetID string) (*UserResponse, error) {
	user, err := s.findSameCompanyUser(ctx, actorCompanyID, targetID)
	if err != nil {
		return nil, err
	}

	res := toUserResponse(user)
	return &res, nil
}

// SetPermissions replaces the target's entire permission-claim set with the
// validated request set. The whole operation is atomic: any unknown name
// fails it without a partial write. Already-issued tokens keep their old
// permission claims until they expire.
func (s *accountService) SetPermissions(ctx context.Context, actorID string, actorCompanyID uint, targetID string, permissions []string) error {
	target, err := s.findSameCompanyUser(ctx, actorCompanyID, targetID)
	if err != nil {
		return err
	}

	valid, invalid := auth.NormalizeSet(permissions)
	if len(invalid) > 0 {
		return fmt.Errorf("%w: %s", model.ErrInvalidPermission, strings.Join(invalid, ", "))
	}

	values := auth.Strings(valid)

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.ReplacePermissionClaims(txCtx, target.ID, values); err != nil {
			return fmt.Errorf("failed to replace permission claims: %w", err)
		}
		return s.logAction(txCtx, actorID, actorCompanyID, model.ActionReplacePermissions, target.ID.String(), target.Email,
			map[string]interface{}{"permissions": values})
	})
}

// Invite issues a fresh pair of one-time artifacts for the target.
// Artifacts from earlier invites are not revoked and stay valid until expiry.
func (s *accountService) Invite(ctx context.Context, actorID string, actorCompanyID uint, targetID string) (*InviteResponse, error) {
	target, err := s.findSameCompanyUser(ctx, actorCompanyID, targetID)
	if err != nil {
		return nil, err
	}

	emailToken, err := s.credentials.IssueOneTimeArtifact(ctx, target.ID, model.TokenKindEmailConfirm)
	if err != nil {
		return nil, fmt.Errorf("failed to issue email token: %w", err)
	}

	resetToken, err := s.credentials.IssueOneTimeArtifact(ctx, target.ID, model.TokenKindPasswordReset)
	if err != nil {
		return nil, fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.logAction(ctx, actorID, actorCompanyID, model.ActionInviteUser, target.ID.String(), target.Email, nil); err != nil {
		return nil, err
	}

	res := &InviteResponse{
		UserID:     target.ID.String(),
		Email:      target.Email,
		EmailToken: emailToken,
		ResetToken: resetToken,
	}
	if s.appBaseURL != "" {
		res.ActivationURL = fmt.Sprintf("%s/activate?userId=%s&emailToken=%s&resetToken=%s",
			s.appBaseURL, target.ID.String(), emailToken, resetToken)
	}
	return res, nil
}

// Activate consumes both one-time artifacts, sets the password and confirms
// the email, transitioning the user to Active. An already-confirmed email
// skips re-confirmation. The confirmation is persisted as soon as the email
// artifact is consumed, so a failed reset-token attempt does not strand the
// user: the retry with a correct reset token skips straight past the already
// burned email artifact.
func (s *accountService) Activate(ctx context.Context, req ActivateRequest) (*TokenResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	if !user.EmailConfirmed {
		if err := s.credentials.ConsumeOneTimeArtifact(ctx, user.ID, model.TokenKindEmailConfirm, req.EmailToken); err != nil {
			return nil, err
		}
		user.EmailConfirmed = true
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to confirm email: %w", err)
		}
	}

	if err := s.credentials.ConsumeOneTimeArtifact(ctx, user.ID, model.TokenKindPasswordReset, req.ResetToken); err != nil {
		return nil, err
	}

	if err := s.credentials.SetPassword(ctx, user, req.Password); err != nil {
		return nil, fmt.Errorf("failed to set password: %w", err)
	}

	if err := s.logAction(ctx, "", user.CompanyID, model.ActionActivateUser, user.ID.String(), user.Email, nil); err != nil {
		return nil, err
	}

	return s.issueTokens(user)
}

// --- Helpers ---

// findSameCompanyUser resolves the target and enforces the tenant boundary:
// unknown id -> ErrNotFound, known but in another company -> ErrCrossTenantAccess.
func (s *accountService) findSameCompanyUser(ctx context.Context, actorCompanyID uint, targetID string) (*model.User, error) {
	if actorCompanyID == 0 {
		return nil, model.ErrNoTenant
	}

	id, err := uuid.Parse(targetID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.CompanyID != actorCompanyID {
		return nil, model.ErrCrossTenantAccess
	}
	return user, nil
}

func (s *accountService) issueTokens(user *model.User) (*TokenResponse, error) {
	perms := make([]auth.Permission, 0, len(user.PermissionClaims))
	for _, claim := range user.PermissionClaims {
		perms = append(perms, auth.Permission(claim.Value))
	}

	access, err := s.issuer.IssueAccessToken(user, roleNames(user), perms)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	return &TokenResponse{Token: access, RefreshToken: refresh}, nil
}

func (s *accountService) logAction(ctx context.Context, actorID string, companyID uint, action, entityID, entityName string, payload map[string]interface{}) error {
	var actor *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		actor = &parsed
	}

	details := "{}"
	if payload != nil {
		raw, _ := json.Marshal(payload)
		details = string(raw)
	}

	entry := &model.AuditLog{
		CompanyID:  companyID,
		ActorID:    actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    details,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func roleNames(user *model.User) []string {
	names := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		names = append(names, r.Name)
	}
	return names
}

func claimValues(user *model.User) []string {
	values := make([]string, 0, len(user.PermissionClaims))
	for _, c := range user.PermissionClaims {
		values = append(values, c.Value)
	}
	return values
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID.String(),
		Email:          user.Email,
		CompanyID:      user.CompanyID,
		EmailConfirmed: user.EmailConfirmed,
		Roles:          roleNames(user),
		Permissions:    claimValues(user),
	}
}
