package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"backend/internal/auth"
	"backend/internal/credential"
	"backend/internal/model"
	"backend/internal/repository"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const googleProvider = "google"

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
}

// GoogleAuthService handles the federated sign-in glue: exchanging the OAuth
// code, then finding or creating a local user linked to the Google identity.
// Users created this way start with no tenant until an admin attaches them.
type GoogleAuthService interface {
	Enabled() bool
	LoginURL(state string) string
	HandleCallback(ctx context.Context, code string) (*TokenResponse, error)
}

type googleAuthService struct {
	oauth       *oauth2.Config
	users       repository.UserRepository
	logins      repository.ExternalLoginRepository
	credentials credential.Provider
	issuer      *auth.TokenIssuer
}

// NewGoogleAuthService returns a disabled service when clientID is empty
func NewGoogleAuthService(
	clientID, clientSecret, redirectURL string,
	users repository.UserRepository,
	logins repository.ExternalLoginRepository,
	credentials credential.Provider,
	issuer *auth.TokenIssuer,
) GoogleAuthService {
	var conf *oauth2.Config
	if clientID != "" && clientSecret != "" {
		conf = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email"},
			Endpoint:     google.Endpoint,
		}
	}

	return &googleAuthService{
		oauth:       conf,
		users:       users,
		logins:      logins,
		credentials: credentials,
		issuer:      issuer,
	}
}

func (s *googleAuthService) Enabled() bool {
	return s.oauth != nil
}

func (s *googleAuthService) LoginURL(state string) string {
	if s.oauth == nil {
		return ""
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (s *googleAuthService) HandleCallback(ctx context.Context, code string) (*TokenResponse, error) {
	if s.oauth == nil {
		return nil, errors.New("google sign-in is not configured")
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if info.Email == "" {
		return nil, errors.New("google account has no email")
	}

	// Existing link: straight to token issuance
	if login, err := s.logins.FindByProviderKey(ctx, googleProvider, info.ID); err == nil {
		user, err := s.users.GetByID(ctx, login.UserID)
		if err != nil {
			return nil, fmt.Errorf("linked user missing: %w", err)
		}
		return s.tokensFor(user)
	}

	// New link: reuse a local account with the same email, or create one
	user, err := s.users.GetByEmail(ctx, info.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("database error: %w", err)
		}
		user = &model.User{
			Email:          info.Email,
			EmailConfirmed: info.VerifiedEmail,
		}
		if err := s.credentials.CreateAccount(ctx, user, ""); err != nil {
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	if err := s.credentials.LinkExternalIdentity(ctx, user.ID, googleProvider, info.ID); err != nil {
		return nil, fmt.Errorf("failed to link google identity: %w", err)
	}

	return s.tokensFor(user)
}

func (s *googleAuthService) tokensFor(user *model.User) (*TokenResponse, error) {
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

func (s *googleAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := s.oauth.Client(ctx, token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google profile request returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode google profile: %w", err)
	}
	return &info, nil
}
