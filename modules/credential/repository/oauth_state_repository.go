package repository

import (
	"context"
	"database/sql"
	"time"

	"lawlink-api/core/database"
	"lawlink-api/core/logger"
	"lawlink-api/modules/credential/entity"

	"github.com/google/uuid"
)

type OAuthStateRepositoryInterface interface {
	SaveState(ctx context.Context, state string, userID uuid.UUID, expiresAt time.Time) error
	GetState(ctx context.Context, state string) (*entity.OAuthState, error)
	DeleteState(ctx context.Context, state string) error
	CleanupExpiredStates(ctx context.Context) error
}

type OAuthStateRepository struct {
	db database.Database
}

func NewOAuthStateRepository(db database.Database) *OAuthStateRepository {
	return &OAuthStateRepository{db: db}
}

func (r *OAuthStateRepository) SaveState(ctx context.Context, state string, userID uuid.UUID, expiresAt time.Time) error {
	query := `
		INSERT INTO oauth_states (state, user_id, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (state)
		DO UPDATE SET user_id = $2, expires_at = $3, updated_at = NOW()
	`
	if err := r.db.ExecContext(ctx, query, state, userID, expiresAt); err != nil {
		logger.Error("OAuthStateRepository:SaveState:Error", "error", err, "state", state)
		return err
	}
	return nil
}

// GetState returns nil when the state is unknown or expired.
func (r *OAuthStateRepository) GetState(ctx context.Context, state string) (*entity.OAuthState, error) {
	var oauthState entity.OAuthState
	query := `
		SELECT * FROM oauth_states
		WHERE state = $1 AND expires_at > NOW()
	`
	err := r.db.GetContext(ctx, &oauthState, query, state)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("OAuthStateRepository:GetState:Error", "error", err, "state", state)
		return nil, err
	}
	return &oauthState, nil
}

func (r *OAuthStateRepository) DeleteState(ctx context.Context, state string) error {
	query := `DELETE FROM oauth_states WHERE state = $1`
	if err := r.db.ExecContext(ctx, query, state); err != nil {
		logger.Error("OAuthStateRepository:DeleteState:Error", "error", err, "state", state)
		return err
	}
	return nil
}

func (r *OAuthStateRepository) CleanupExpiredStates(ctx context.Context) error {
	query := `DELETE FROM oauth_states WHERE expires_at < NOW()`
	if err := r.db.ExecContext(ctx, query); err != nil {
		logger.Error("OAuthStateRepository:CleanupExpiredStates:Error", "error", err)
		return err
	}
	return nil
}
