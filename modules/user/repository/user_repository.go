package repository

import (
	"context"

	"lawlink-api/core/database"
	"lawlink-api/core/logger"
	"lawlink-api/modules/user/entity"

	"github.com/google/uuid"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateNotificationSettings(ctx context.Context, id uuid.UUID, pushEnabled, smsEnabled bool) error
}

type UserRepository struct {
	db database.Database
}

func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	query := `SELECT * FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		logger.Error("UserRepository:GetByID:Error:", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	query := `SELECT * FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		logger.Error("UserRepository:GetByEmail:Error:", err)
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) UpdateNotificationSettings(ctx context.Context, id uuid.UUID, pushEnabled, smsEnabled bool) error {
	query := `UPDATE users SET push_enabled = $2, sms_enabled = $3, updated_at = NOW() WHERE id = $1`
	if err := r.db.ExecContext(ctx, query, id, pushEnabled, smsEnabled); err != nil {
		logger.Error("UserRepository:UpdateNotificationSettings:Error:", err)
		return err
	}
	return nil
}
