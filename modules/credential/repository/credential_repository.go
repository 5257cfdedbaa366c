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

type CredentialRepositoryInterface interface {
	Upsert(ctx context.Context, cred *entity.Credential) error
	GetByOwnerAndProvider(ctx context.Context, ownerID uuid.UUID, provider string) (*entity.Credential, error)
	UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error
	ListExpiring(ctx context.Context, horizon time.Duration) ([]entity.Credential, error)
	Delete(ctx context.Context, ownerID uuid.UUID, provider string) error
}

type CredentialRepository struct {
	db database.Database
}

func NewCredentialRepository(db database.Database) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) Upsert(ctx context.Context, cred *entity.Credential) error {
	query := `
		INSERT INTO credentials (owner_id, provider_name, access_token, refresh_token, expires_at, calendar_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (owner_id, provider_name)
		DO UPDATE SET access_token = $3, refresh_token = $4, expires_at = $5, calendar_email = $6, updated_at = NOW()
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query, cred.OwnerID, cred.ProviderName, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt, cred.CalendarEmail)
	if err := row.Scan(&cred.ID); err != nil {
		logger.Error("CredentialRepository:Upsert:Error", "error", err, "ownerID", cred.OwnerID)
		return err
	}
	return nil
}

func (r *CredentialRepository) GetByOwnerAndProvider(ctx context.Context, ownerID uuid.UUID, provider string) (*entity.Credential, error) {
	var cred entity.Credential
	query := `SELECT * FROM credentials WHERE owner_id = $1 AND provider_name = $2`
	err := r.db.GetContext(ctx, &cred, query, ownerID, provider)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("CredentialRepository:GetByOwnerAndProvider:Error", "error", err, "ownerID", ownerID)
		return nil, err
	}
	return &cred, nil
}

func (r *CredentialRepository) UpdateTokens(ctx context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error {
	query := `
		UPDATE credentials
		SET access_token = $2, refresh_token = COALESCE($3, refresh_token), expires_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	if err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt); err != nil {
		logger.Error("CredentialRepository:UpdateTokens:Error", "error", err, "id", id)
		return err
	}
	return nil
}

func (r *CredentialRepository) ListExpiring(ctx context.Context, horizon time.Duration) ([]entity.Credential, error) {
	var creds []entity.Credential
	query := `SELECT * FROM credentials WHERE expires_at < $1 AND refresh_token IS NOT NULL`
	if err := r.db.SelectContext(ctx, &creds, query, time.Now().Add(horizon)); err != nil {
		logger.Error("CredentialRepository:ListExpiring:Error", "error", err)
		return nil, err
	}
	return creds, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, ownerID uuid.UUID, provider string) error {
	query := `DELETE FROM credentials WHERE owner_id = $1 AND provider_name = $2`
	if err := r.db.ExecContext(ctx, query, ownerID, provider); err != nil {
		logger.Error("CredentialRepository:Delete:Error", "error", err, "ownerID", ownerID)
		return err
	}
	return nil
}
