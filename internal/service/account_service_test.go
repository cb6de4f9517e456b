package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/auth"
	"backend/internal/credential"
	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, user := range r.users {
		if user.CompanyID == companyID {
			out = append(out, *user)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) AddRole(ctx context.Context, user *model.User, role *model.Role) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Roles = append(stored.Roles, *role)
	user.Roles = append(user.Roles, *role)
	return nil
}

func (r *fakeUserRepo) ReplacePermissionClaims(ctx context.Context, userID uuid.UUID, values []string) error {
	stored, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	claims := make([]model.PermissionClaim, 0, len(values))
	for _, v := range values {
		claims = append(claims, model.PermissionClaim{ID: uuid.New(), UserID: userID, Value: v})
	}
	stored.PermissionClaims = claims
	return nil
}

func (r *fakeUserRepo) GetPermissionClaims(ctx context.Context, userID uuid.UUID) ([]string, error) {
	stored, ok := r.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	values := make([]string, 0, len(stored.PermissionClaims))
	for _, c := range stored.PermissionClaims {
		values = append(values, c.Value)
	}
	return values, nil
}

type fakeCompanyRepo struct {
	companies map[uint]*model.Company
	nextID    uint
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: make(map[uint]*model.Company), nextID: 1}
}

func (r *fakeCompanyRepo) Create(ctx context.Context, company *model.Company) error {
	company.ID = r.nextID
	r.nextID++
	copied := *company
	r.companies[company.ID] = &copied
	return nil
}

func (r *fakeCompanyRepo) GetByID(ctx context.Context, id uint) (*model.Company, error) {
	company, ok := r.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *company
	return &copied, nil
}

func (r *fakeCompanyRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, company := range r.companies {
		if company.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeRoleRepo struct {
	roles map[string]*model.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: map[string]*model.Role{
		model.RoleAdmin: {ID: uuid.New(), Name: model.RoleAdmin},
		model.RoleUser:  {ID: uuid.New(), Name: model.RoleUser},
	}}
}

func (r *fakeRoleRepo) FindByName(ctx context.Context, name string) (*model.Role, error) {
	role, ok := r.roles[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (r *fakeRoleRepo) EnsureDefaultRoles(ctx context.Context) error { return nil }

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (r *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) ListByCompany(ctx context.Context, companyID uint, offset, limit int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for _, e := range r.entries {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

type fakeTokenRepo struct {
	tokens map[uuid.UUID]*model.ActivationToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[uuid.UUID]*model.ActivationToken)}
}

func (r *fakeTokenRepo) Create(ctx context.Context, token *model.ActivationToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeTokenRepo) FindUsable(ctx context.Context, userID uuid.UUID, kind, tokenHash string) (*model.ActivationToken, error) {
	for _, token := range r.tokens {
		if token.UserID == userID && token.Kind == kind && token.TokenHash == tokenHash && token.ConsumedAt == nil {
			copied := *token
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	token, ok := r.tokens[id]
	if !ok || token.ConsumedAt != nil {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	token.ConsumedAt = &now
	return nil
}

type fakeLoginRepo struct {
	logins []model.ExternalLogin
}

func (r *fakeLoginRepo) Create(ctx context.Context, login *model.ExternalLogin) error {
	if login.ID == uuid.Nil {
		login.ID = uuid.New()
	}
	r.logins = append(r.logins, *login)
	return nil
}

func (r *fakeLoginRepo) FindByProviderKey(ctx context.Context, provider, providerKey string) (*model.ExternalLogin, error) {
	for i := range r.logins {
		if r.logins[i].Provider == provider && r.logins[i].ProviderKey == providerKey {
			copied := r.logins[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Fixture ---

type accountFixture struct {
	svc    AccountService
	users  *fakeUserRepo
	audit  *fakeAuditRepo
	issuer *auth.TokenIssuer
}

func newAccountFixture() *accountFixture {
	users := newFakeUserRepo()
	companies := newFakeCompanyRepo()
	roles := newFakeRoleRepo()
	audit := &fakeAuditRepo{}
	tokens := newFakeTokenRepo()
	logins := &fakeLoginRepo{}

	issuer := auth.NewTokenIssuer([]byte("test-secret"), "erp-api", "erp-clients")
	credentials := credential.NewProvider(credential.DefaultConfig(), users, tokens, logins)

	svc := NewAccountService(users, companies, roles, audit, credentials, issuer, fakeTxManager{}, "http://app.test")
	return &accountFixture{svc: svc, users: users, audit: audit, issuer: issuer}
}

func (f *accountFixture) registerCompany(t *testing.T, name, email string) *RegisterCompanyResponse {
	t.Helper()
	res, err := f.svc.RegisterCompany(context.Background(), RegisterCompanyRequest{
		Name: name, AdminEmail: email, AdminPassword: "secret1",
	})
	require.NoError(t, err)
	return res
}

// --- Tests ---

func TestRegisterCompanyAndLogin(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	res := f.registerCompany(t, "Acme", "admin@acme.test")
	assert.NotZero(t, res.CompanyID)
	assert.Equal(t, "Acme", res.CompanyName)
	assert.NotEmpty(t, res.Token)

	// admin is confirmed up front and can log in immediately
	tokens, err := f.svc.Login(ctx, LoginRequest{Email: "Admin@Acme.test", Password: "secret1"})
	require.NoError(t, err)

	claims, err := f.issuer.ParseAccessToken(tokens.Token)
	require.NoError(t, err)
	assert.Equal(t, res.CompanyID, auth.CompanyIDFromClaims(claims))
	assert.Contains(t, auth.RolesFromClaims(claims), model.RoleAdmin)

	// registration is audited
	entries, _, err := f.audit.ListByCompany(ctx, res.CompanyID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionRegisterCompany, entries[0].Action)
}

func TestRegisterCompanyConflicts(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.registerCompany(t, "Acme", "admin@acme.test")

	_, err := f.svc.RegisterCompany(ctx, RegisterCompanyRequest{
		Name: "Acme", AdminEmail: "other@acme.test", AdminPassword: "secret1",
	})
	assert.ErrorIs(t, err, model.ErrCompanyNameExists)

	_, err = f.svc.RegisterCompany(ctx, RegisterCompanyRequest{
		Name: "Globex", AdminEmail: "admin@acme.test", AdminPassword: "secret1",
	})
	assert.ErrorIs(t, err, model.ErrEmailExists)
}

func TestLoginFailures(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	_, err := f.svc.Login(ctx, LoginRequest{Email: "admin@acme.test", Password: "wrong"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "nobody@acme.test", Password: "secret1"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	// provisioned but never activated user cannot log in even with a password
	created, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{
		Email: "member@acme.test", Password: "secret1",
	})
	require.NoError(t, err)
	assert.False(t, created.EmailConfirmed)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "member@acme.test", Password: "secret1"})
	assert.ErrorIs(t, err, model.ErrEmailNotConfirmed)
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	f := newAccountFixture()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	_, err := f.svc.CreateUser(context.Background(), res.AdminUserID, res.CompanyID, CreateUserRequest{
		Email: "member@acme.test", Roles: []string{"Superuser"},
	})
	assert.ErrorIs(t, err, model.ErrInvalidRole)

	// an unknown role fails the whole request even when mixed with valid ones
	_, err = f.svc.CreateUser(context.Background(), res.AdminUserID, res.CompanyID, CreateUserRequest{
		Email: "member@acme.test", Roles: []string{model.RoleUser, "Bogus"},
	})
	assert.ErrorIs(t, err, model.ErrInvalidRole)

	// nothing was created by the failed attempts
	_, _, err = f.svc.ListUsers(context.Background(), res.CompanyID, 0, 10)
	assert.NoError(t, err)
	_, err = f.svc.Login(context.Background(), LoginRequest{Email: "member@acme.test", Password: "x"})
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)
}

func TestCreateUserAssignsEveryRequestedRole(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	created, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{
		Email: "ops@acme.test", Roles: []string{model.RoleAdmin, model.RoleUser, model.RoleAdmin},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{model.RoleAdmin, model.RoleUser}, created.Roles)

	got, err := f.svc.GetUser(ctx, res.CompanyID, created.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.RoleAdmin, model.RoleUser}, got.Roles)
}

func TestSetPermissionsNormalizesAndReplaces(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)

	err = f.svc.SetPermissions(ctx, res.AdminUserID, res.CompanyID, member.ID,
		[]string{"View_Inventory", "view_inventory", "edit_projects"})
	require.NoError(t, err)

	got, err := f.svc.GetUser(ctx, res.CompanyID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_inventory", "edit_projects"}, got.Permissions)

	// an empty set clears everything
	require.NoError(t, f.svc.SetPermissions(ctx, res.AdminUserID, res.CompanyID, member.ID, nil))
	got, err = f.svc.GetUser(ctx, res.CompanyID, member.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)
}

func TestSetPermissionsRejectsUnknownWithoutPartialWrite(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)
	require.NoError(t, f.svc.SetPermissions(ctx, res.AdminUserID, res.CompanyID, member.ID, []string{"view_inventory"}))

	err = f.svc.SetPermissions(ctx, res.AdminUserID, res.CompanyID, member.ID,
		[]string{"edit_inventory", "launch_missiles"})
	assert.ErrorIs(t, err, model.ErrInvalidPermission)
	assert.Contains(t, err.Error(), "launch_missiles")

	got, err := f.svc.GetUser(ctx, res.CompanyID, member.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_inventory"}, got.Permissions)
}

func TestSetPermissionsTenantBoundary(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	acme := f.registerCompany(t, "Acme", "admin@acme.test")
	globex := f.registerCompany(t, "Globex", "admin@globex.test")

	// target exists but belongs to another company
	err := f.svc.SetPermissions(ctx, acme.AdminUserID, acme.CompanyID, globex.AdminUserID, []string{"view_inventory"})
	assert.ErrorIs(t, err, model.ErrCrossTenantAccess)

	// target does not exist at all
	err = f.svc.SetPermissions(ctx, acme.AdminUserID, acme.CompanyID, uuid.NewString(), []string{"view_inventory"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestInviteActivateFlow(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)

	invite, err := f.svc.Invite(ctx, res.AdminUserID, res.CompanyID, member.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, invite.EmailToken)
	assert.NotEmpty(t, invite.ResetToken)
	assert.Contains(t, invite.ActivationURL, "http://app.test/activate?userId="+member.ID)

	tokens, err := f.svc.Activate(ctx, ActivateRequest{
		UserID:     member.ID,
		EmailToken: invite.EmailToken,
		ResetToken: invite.ResetToken,
		Password:   "newsecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.Token)

	// activation sticks: login with the chosen password now works
	_, err = f.svc.Login(ctx, LoginRequest{Email: "member@acme.test", Password: "newsecret"})
	assert.NoError(t, err)

	// artifacts are single use
	_, err = f.svc.Activate(ctx, ActivateRequest{
		UserID:     member.ID,
		EmailToken: invite.EmailToken,
		ResetToken: invite.ResetToken,
		Password:   "another",
	})
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func TestActivateWrongResetTokenDoesNotStrandUser(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)
	invite, err := f.svc.Invite(ctx, res.AdminUserID, res.CompanyID, member.ID)
	require.NoError(t, err)

	// correct email token, wrong reset token: the attempt fails but the email
	// confirmation sticks
	_, err = f.svc.Activate(ctx, ActivateRequest{
		UserID: member.ID, EmailToken: invite.EmailToken, ResetToken: "wrong", Password: "newsecret",
	})
	assert.ErrorIs(t, err, model.ErrTokenExpired)

	// the same invite pair still completes the flow on retry
	_, err = f.svc.Activate(ctx, ActivateRequest{
		UserID: member.ID, EmailToken: invite.EmailToken, ResetToken: invite.ResetToken, Password: "newsecret",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, LoginRequest{Email: "member@acme.test", Password: "newsecret"})
	assert.NoError(t, err)
}

func TestReinviteKeepsOlderArtifactsValid(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)

	first, err := f.svc.Invite(ctx, res.AdminUserID, res.CompanyID, member.ID)
	require.NoError(t, err)
	_, err = f.svc.Invite(ctx, res.AdminUserID, res.CompanyID, member.ID)
	require.NoError(t, err)

	// the superseded pair still activates
	_, err = f.svc.Activate(ctx, ActivateRequest{
		UserID:     member.ID,
		EmailToken: first.EmailToken,
		ResetToken: first.ResetToken,
		Password:   "newsecret",
	})
	assert.NoError(t, err)
}

func TestRefreshPicksUpPermissionChanges(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	res := f.registerCompany(t, "Acme", "admin@acme.test")

	member, err := f.svc.CreateUser(ctx, res.AdminUserID, res.CompanyID, CreateUserRequest{Email: "member@acme.test"})
	require.NoError(t, err)
	invite, err := f.svc.Invite(ctx, res.AdminUserID, res.CompanyID, member.ID)
	require.NoError(t, err)
	tokens, err := f.svc.Activate(ctx, ActivateRequest{
		UserID: member.ID, EmailToken: invite.EmailToken, ResetToken: invite.ResetToken, Password: "newsecret",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.SetPermissions(ctx, res.AdminUserID, res.CompanyID, member.ID, []string{"view_projects"}))

	refreshed, err := f.svc.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)

	claims, err := f.issuer.ParseAccessToken(refreshed.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{"view_projects"}, auth.PermissionsFromClaims(claims))
}

func TestRefreshRejectsAccessTokenInput(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	f.registerCompany(t, "Acme", "admin@acme.test")

	tokens, err := f.svc.Login(ctx, LoginRequest{Email: "admin@acme.test", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, tokens.Token)
	assert.ErrorIs(t, err, model.ErrWrongTokenType)
}
