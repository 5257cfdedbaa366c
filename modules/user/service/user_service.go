package service

import (
	"context"

	"lawlink-api/core/errors"
	"lawlink-api/modules/user/dto"
	"lawlink-api/modules/user/entity"
	"lawlink-api/modules/user/repository"

	notifService "lawlink-api/modules/notification/service"

	"github.com/google/uuid"
)

type UserService struct {
	repo repository.UserRepositoryInterface
}

func NewUserService(repo repository.UserRepositoryInterface) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy người dùng", nil)
	}
	return user, nil
}

// UpdateNotificationSettings merges the provided flags into the stored
// preferences. Absent fields keep their current value.
func (s *UserService) UpdateNotificationSettings(ctx context.Context, userID uuid.UUID, req *dto.UpdateNotificationSettingsRequest) (*entity.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	pushEnabled := user.PushEnabled
	if req.PushEnabled != nil {
		pushEnabled = *req.PushEnabled
	}
	smsEnabled := user.SMSEnabled
	if req.SMSEnabled != nil {
		smsEnabled = *req.SMSEnabled
	}

	if err := s.repo.UpdateNotificationSettings(ctx, userID, pushEnabled, smsEnabled); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể cập nhật cài đặt thông báo", nil)
	}

	user.PushEnabled = pushEnabled
	user.SMSEnabled = smsEnabled
	return user, nil
}

// Recipient resolves a user into a notification dispatch target.
func (s *UserService) Recipient(ctx context.Context, userID uuid.UUID) (notifService.Recipient, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return notifService.Recipient{}, err
	}

	recipient := notifService.Recipient{
		UserID:      user.ID,
		PushEnabled: user.PushEnabled,
		SMSEnabled:  user.SMSEnabled,
	}
	if user.Phone != nil {
		recipient.Phone = *user.Phone
	}
	if user.DeviceToken != nil {
		recipient.DeviceToken = *user.DeviceToken
	}
	return recipient, nil
}
