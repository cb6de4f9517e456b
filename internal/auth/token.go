package auth

import (
	"errors"
	"time"

	"backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AccessTokenTTL  = 2 * time.Hour
	RefreshTokenTTL = 14 * 24 * time.Hour
)

// TokenIssuer mints and verifies the two bearer token variants.
// Tokens are never persisted: a token stays valid until natural expiry, so
// role/permission changes only take effect on the next issuance.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenIssuer binds the symmetric signing key and the issuer/audience pair
// every verification is checked against.
func NewTokenIssuer(secret []byte, issuer, audience string) *TokenIssuer {
	return &TokenIssuer{secret: secret, issuer: issuer, audience: audience}
}

// IssueAccessToken embeds identity, tenant, roles and granted permissions.
// Valid for 2 hours.
func (t *TokenIssuer) IssueAccessToken(user *model.User, roles []string, perms []Permission) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"companyId": user.CompanyID,
		"tenantId":  user.CompanyID,
		"jti":       uuid.NewString(),
		"iss":       t.issuer,
		"aud":       t.audience,
		"iat":       now.Unix(),
		"exp":       now.Add(AccessTokenTTL).Unix(),
		"roles":     roles,
		"perms":     Strings(perms),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// IssueRefreshToken carries only the subject, a fresh jti and the "refresh"
// type marker. Valid for 14 days.
func (t *TokenIssuer) IssueRefreshToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"jti": uuid.NewString(),
		"typ": "refresh",
		"iss": t.issuer,
		"aud": t.audience,
		"iat": now.Unix(),
		"exp": now.Add(RefreshTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// ParseAccessToken verifies signature, issuer, audience and lifetime.
// Refresh tokens are rejected: their 14-day lifetime must not authenticate
// requests.
func (t *TokenIssuer) ParseAccessToken(tokenString string) (jwt.MapClaims, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ == "refresh" {
		return nil, model.ErrWrongTokenType
	}
	return claims, nil
}

// ParseRefreshToken verifies like ParseAccessToken and additionally requires
// the "refresh" type marker; access tokens are rejected with ErrWrongTokenType.
func (t *TokenIssuer) ParseRefreshToken(tokenString string) (jwt.MapClaims, error) {
	claims, err := t.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if typ, _ := claims["typ"].(string); typ != "refresh" {
		return nil, model.ErrWrongTokenType
	}
	return claims, nil
}

func (t *TokenIssuer) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return t.secret, nil
		},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(t.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// SubjectFromClaims returns the user id from the sub claim
func SubjectFromClaims(claims jwt.MapClaims) (uuid.UUID, error) {
	sub, _ := claims["sub"].(string)
	return uuid.Parse(sub)
}

// RolesFromClaims returns the role names embedded at issuance time
func RolesFromClaims(claims jwt.MapClaims) []string {
	return stringSlice(claims["roles"])
}

// PermissionsFromClaims returns the permission values embedded at issuance time
func PermissionsFromClaims(claims jwt.MapClaims) []string {
	return stringSlice(claims["perms"])
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
