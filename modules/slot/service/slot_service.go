package service

import (
	"context"
	"time"

	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/modules/slot/dto"
	"lawlink-api/modules/slot/entity"
	"lawlink-api/modules/slot/repository"

	"github.com/google/uuid"
)

type SlotService struct {
	repo repository.SlotRepositoryInterface
}

func NewSlotService(repo repository.SlotRepositoryInterface) *SlotService {
	return &SlotService{repo: repo}
}

func (s *SlotService) Create(ctx context.Context, providerID uuid.UUID, req *dto.CreateSlotRequest) (*entity.Slot, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, errors.NewAppError(errors.ErrInvalidInterval, "Thời gian bắt đầu phải trước thời gian kết thúc", nil)
	}
	if req.Price <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Giá tư vấn phải lớn hơn 0", nil)
	}

	slot := &entity.Slot{
		ProviderID: providerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Price:      req.Price,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, err
	}

	logger.Info("SlotService:Create:Created", "slotID", slot.ID, "providerID", providerID)
	return slot, nil
}

func (s *SlotService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Slot, error) {
	slot, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy khung giờ", nil)
	}
	return slot, nil
}

func (s *SlotService) ListByProvider(ctx context.Context, providerID uuid.UUID, from, to *time.Time, onlyFree bool) ([]entity.Slot, error) {
	return s.repo.ListByProvider(ctx, providerID, from, to, onlyFree)
}

// Delete removes an unreferenced slot. Slots with booking history are kept so
// past bookings always point at a real interval.
func (s *SlotService) Delete(ctx context.Context, providerID, slotID uuid.UUID) error {
	slot, err := s.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.ProviderID != providerID {
		return errors.NewAppError(errors.ErrForbidden, "Khung giờ không thuộc về bạn", nil)
	}

	refs, err := s.repo.CountBookingReferences(ctx, slotID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return errors.NewAppError(errors.ErrAlreadyExists, "Không thể xoá khung giờ đã có lịch hẹn", nil)
	}

	return s.repo.Delete(ctx, slotID)
}
