package repository

import (
	"context"
	"time"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivationTokenRepository persists one-time artifacts for the invite flow
type ActivationTokenRepository interface {
	Create(ctx context.Context, token *model.ActivationToken) error
	FindUsable(ctx context.Context, userID uuid.UUID, kind, tokenHash string) (*model.ActivationToken, error)
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}

type activationTokenRepository struct {
	db *gorm.DB
}

// NewActivationTokenRepository returns a new instance of ActivationTokenRepository
func NewActivationTokenRepository(db *gorm.DB) ActivationTokenRepository {
	return &activationTokenRepository{db: db}
}

func (r *activationTokenRepository) Create(ctx context.Context, token *model.ActivationToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

// FindUsable returns a matching artifact that is unconsumed and unexpired
func (r *activationTokenRepository) FindUsable(ctx context.Context, userID uuid.UUID, kind, tokenHash string) (*model.ActivationToken, error) {
	var token model.ActivationToken
	err := GetDB(ctx, r.db).
		Where("user_id = ? AND kind = ? AND token_hash = ? AND consumed_at IS NULL AND expires_at > ?",
			userID, kind, tokenHash, time.Now()).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkConsumed flags the artifact as used; the consumed_at IS NULL guard makes
// a replay lose the race against the first consumer.
func (r *activationTokenRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).Model(&model.ActivationToken{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", time.Now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
