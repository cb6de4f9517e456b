package credential

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Provider is the credential-management collaborator: password hashing and
// verification, one-time artifacts for the invite flow, and federated
// identity links. Hashing is delegated to bcrypt; raw artifact values are
// never stored, only their SHA-256 digests.
type Provider interface {
	CreateAccount(ctx context.Context, user *model.User, password string) error
	VerifyPassword(user *model.User, password string) bool
	SetPassword(ctx context.Context, user *model.User, password string) error
	IssueOneTimeArtifact(ctx context.Context, userID uuid.UUID, kind string) (string, error)
	ConsumeOneTimeArtifact(ctx context.Context, userID uuid.UUID, kind, value string) error
	LinkExternalIdentity(ctx context.Context, userID uuid.UUID, provider, providerKey string) error
}

// Config holds artifact lifetimes per kind
type Config struct {
	EmailConfirmTTL  time.Duration
	PasswordResetTTL time.Duration
}

// DefaultConfig mirrors the identity framework defaults: 48h to confirm an
// email, 24h to use a password reset.
func DefaultConfig() Config {
	return Config{
		EmailConfirmTTL:  48 * time.Hour,
		PasswordResetTTL: 24 * time.Hour,
	}
}

type provider struct {
	config Config
	users  repository.UserRepository
	tokens repository.ActivationTokenRepository
	logins repository.ExternalLoginRepository
}

// NewProvider returns a new credential Provider backed by the given repositories
func NewProvider(
	config Config,
	users repository.UserRepository,
	tokens repository.ActivationTokenRepository,
	logins repository.ExternalLoginRepository,
) Provider {
	return &provider{config: config, users: users, tokens: tokens, logins: logins}
}

func (p *provider) CreateAccount(ctx context.Context, user *model.User, password string) error {
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
	}
	return p.users.Create(ctx, user)
}

func (p *provider) VerifyPassword(user *model.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

func (p *provider) SetPassword(ctx context.Context, user *model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return p.users.Update(ctx, user)
}

// IssueOneTimeArtifact mints a fresh artifact and returns the raw value.
// Earlier artifacts of the same kind are NOT revoked; they stay valid until
// their own expiry.
func (p *provider) IssueOneTimeArtifact(ctx context.Context, userID uuid.UUID, kind string) (string, error) {
	raw, err := generateToken(32)
	if err != nil {
		return "", err
	}

	token := &model.ActivationToken{
		UserID:    userID,
		TokenHash: hashToken(raw),
		Kind:      kind,
		ExpiresAt: time.Now().Add(p.ttlFor(kind)),
	}
	if err := p.tokens.Create(ctx, token); err != nil {
		return "", err
	}

	return raw, nil
}

// ConsumeOneTimeArtifact validates value against an unconsumed, unexpired
// artifact and marks it used. A second consume of the same value fails.
func (p *provider) ConsumeOneTimeArtifact(ctx context.Context, userID uuid.UUID, kind, value string) error {
	token, err := p.tokens.FindUsable(ctx, userID, kind, hashToken(value))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrTokenExpired
		}
		return err
	}

	if err := p.tokens.MarkConsumed(ctx, token.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ErrTokenExpired
		}
		return err
	}
	return nil
}

func (p *provider) LinkExternalIdentity(ctx context.Context, userID uuid.UUID, providerName, providerKey string) error {
	login := &model.ExternalLogin{
		UserID:      userID,
		Provider:    providerName,
		ProviderKey: providerKey,
	}
	return p.logins.Create(ctx, login)
}

func (p *provider) ttlFor(kind string) time.Duration {
	if kind == model.TokenKindPasswordReset {
		return p.config.PasswordResetTTL
	}
	return p.config.EmailConfirmTTL
}

func generateToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
