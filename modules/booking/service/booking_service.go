package service

import (
	"context"
	"fmt"

	"lawlink-api/core/constants"
	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/modules/booking/dto"
	"lawlink-api/modules/booking/entity"
	"lawlink-api/modules/booking/repository"
	credDto "lawlink-api/modules/credential/dto"
	notifEntity "lawlink-api/modules/notification/entity"
	notifService "lawlink-api/modules/notification/service"
	slotRepository "lawlink-api/modules/slot/repository"

	"github.com/google/uuid"
)

// RecipientResolver turns a user id into a dispatch target.
type RecipientResolver interface {
	Recipient(ctx context.Context, userID uuid.UUID) (notifService.Recipient, error)
}

// CalendarSyncer mirrors bookings onto the provider's external calendar.
type CalendarSyncer interface {
	CreateBookingEvent(ctx context.Context, ownerID uuid.UUID, req *credDto.CalendarEventRequest) (string, error)
	DeleteBookingEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error
}

// Notifier fans a message out across delivery channels.
type Notifier interface {
	Dispatch(ctx context.Context, recipient notifService.Recipient, msg notifService.Message) notifService.DispatchResult
}

type BookingService struct {
	repo       repository.BookingRepositoryInterface
	slots      slotRepository.SlotRepositoryInterface
	recipients RecipientResolver
	calendar   CalendarSyncer
	notifier   Notifier
}

func NewBookingService(
	repo repository.BookingRepositoryInterface,
	slots slotRepository.SlotRepositoryInterface,
	recipients RecipientResolver,
	calendar CalendarSyncer,
	notifier Notifier,
) *BookingService {
	return &BookingService{
		repo:       repo,
		slots:      slots,
		recipients: recipients,
		calendar:   calendar,
		notifier:   notifier,
	}
}

// Create reserves the slot and opens a pending booking in one transaction.
func (s *BookingService) Create(ctx context.Context, requesterID, slotID uuid.UUID) (*entity.Booking, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy khung giờ", nil)
	}
	if slot.ProviderID == requesterID {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Không thể tự đặt lịch của chính mình", nil)
	}

	booking := &entity.Booking{
		ProviderID:  slot.ProviderID,
		RequesterID: requesterID,
		SlotID:      slotID,
	}
	if err := s.repo.CreateWithSlot(ctx, booking); err != nil {
		return nil, err
	}

	logger.Info("BookingService:Create:Created", "bookingID", booking.ID, "slotID", slotID, "requesterID", requesterID)

	s.notify(ctx, slot.ProviderID, notifService.Message{
		Title: "Yêu cầu đặt lịch mới",
		Body:  fmt.Sprintf("Bạn có yêu cầu tư vấn mới lúc %s", slot.StartTime.Format("15:04 02/01/2006")),
		Type:  notifEntity.TypeBookingCreated,
		Data:  map[string]interface{}{"booking_id": booking.ID.String()},
	})

	return booking, nil
}

// Confirm moves a pending booking to confirmed. Calling it on an already
// confirmed booking returns the stored booking with no side effects, so the
// payment reconciler can retry safely.
func (s *BookingService) Confirm(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy lịch hẹn", nil)
	}

	if booking.Status == entity.StatusConfirmed {
		return booking, nil
	}
	if booking.Status != entity.StatusPending {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			fmt.Sprintf("Không thể xác nhận lịch hẹn ở trạng thái %s", booking.Status), nil)
	}

	moved, err := s.repo.UpdateStatus(ctx, bookingID, []string{entity.StatusPending}, entity.StatusConfirmed)
	if err != nil {
		return nil, err
	}
	if !moved {
		// Lost the race; report whatever state won.
		current, err := s.repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if current.Status == entity.StatusConfirmed {
			return current, nil
		}
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			fmt.Sprintf("Không thể xác nhận lịch hẹn ở trạng thái %s", current.Status), nil)
	}
	booking.Status = entity.StatusConfirmed

	if err := s.syncCalendar(ctx, booking); err != nil {
		booking.CalendarSyncWarning = err.Error()
	}

	s.notifyBoth(ctx, booking, notifEntity.TypeBookingConfirmed,
		"Lịch hẹn đã được xác nhận",
		"Thanh toán thành công, lịch tư vấn của bạn đã được xác nhận")

	logger.Info("BookingService:Confirm:Confirmed", "bookingID", bookingID)
	return booking, nil
}

// Cancel releases the slot and marks the booking cancelled. Returns false
// without error when the booking was already terminal.
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return false, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy lịch hẹn", nil)
	}

	cancelled, err := s.repo.CancelWithSlot(ctx, bookingID, reason)
	if err != nil {
		return false, err
	}
	if !cancelled {
		return false, nil
	}

	if booking.CalendarEventID != nil && *booking.CalendarEventID != "" {
		if err := s.calendar.DeleteBookingEvent(ctx, booking.ProviderID, *booking.CalendarEventID); err != nil {
			logger.Warn("BookingService:Cancel:CalendarCleanup", "bookingID", bookingID, "error", err)
		}
	}

	booking.Status = entity.StatusCancelled
	s.notifyBoth(ctx, booking, notifEntity.TypeBookingCancelled,
		"Lịch hẹn đã bị huỷ",
		fmt.Sprintf("Lịch tư vấn đã bị huỷ: %s", reason))

	logger.Info("BookingService:Cancel:Cancelled", "bookingID", bookingID, "reason", reason)
	return true, nil
}

// Complete closes out a confirmed consultation. The slot stays booked so the
// interval remains part of the provider's history.
func (s *BookingService) Complete(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := s.repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy lịch hẹn", nil)
	}

	moved, err := s.repo.UpdateStatus(ctx, bookingID, []string{entity.StatusConfirmed}, entity.StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, errors.NewAppError(errors.ErrInvalidTransition,
			fmt.Sprintf("Không thể hoàn tất lịch hẹn ở trạng thái %s", booking.Status), nil)
	}
	booking.Status = entity.StatusCompleted

	// The CAS above ran exactly once, so both parties get exactly one
	// completion notice.
	s.notifyBoth(ctx, booking, notifEntity.TypeBookingCompleted,
		"Buổi tư vấn đã hoàn tất",
		"Cảm ơn bạn đã sử dụng dịch vụ")

	logger.Info("BookingService:Complete:Completed", "bookingID", bookingID)
	return booking, nil
}

func (s *BookingService) GetDetail(ctx context.Context, bookingID uuid.UUID) (*entity.BookingDetail, error) {
	detail, err := s.repo.GetDetail(ctx, bookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy lịch hẹn", nil)
	}
	return detail, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BookingDetail, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RepairLedger reconciles slots against live bookings after a crash.
func (s *BookingService) RepairLedger(ctx context.Context) (*dto.RepairSummary, error) {
	released, rebooked, err := s.repo.RepairLedger(ctx)
	if err != nil {
		return nil, err
	}
	if released > 0 || rebooked > 0 {
		logger.Warn("BookingService:RepairLedger:Repaired", "released", released, "rebooked", rebooked)
	}
	return &dto.RepairSummary{ReleasedSlots: released, RebookedSlots: rebooked}, nil
}

// ExpirePending cancels pending bookings whose payment never arrived.
func (s *BookingService) ExpirePending(ctx context.Context) (int, error) {
	expired, err := s.repo.ExpirePending(ctx, constants.PendingBookingTTL)
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		logger.Info("BookingService:ExpirePending:Expired", "count", expired)
	}
	return expired, nil
}

// syncCalendar pushes the confirmed booking onto the provider's calendar.
// Failures are soft: the booking stays confirmed either way, and the
// returned error is a warning for the confirm response, not a failure.
func (s *BookingService) syncCalendar(ctx context.Context, booking *entity.Booking) error {
	detail, err := s.repo.GetDetail(ctx, booking.ID)
	if err != nil {
		logger.Warn("BookingService:syncCalendar:Detail", "bookingID", booking.ID, "error", err)
		return err
	}

	eventID, err := s.calendar.CreateBookingEvent(ctx, booking.ProviderID, &credDto.CalendarEventRequest{
		Title:     "Tư vấn pháp lý",
		StartTime: detail.StartTime,
		EndTime:   detail.EndTime,
	})
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae.Code == errors.ErrNotConnected {
			return nil
		}
		logger.Warn("BookingService:syncCalendar:Failed", "bookingID", booking.ID, "error", err)
		return err
	}

	if err := s.repo.SetCalendarEventID(ctx, booking.ID, eventID); err != nil {
		logger.Warn("BookingService:syncCalendar:Store", "bookingID", booking.ID, "error", err)
		return err
	}
	booking.CalendarEventID = &eventID
	return nil
}

func (s *BookingService) notifyBoth(ctx context.Context, booking *entity.Booking, msgType, title, body string) {
	msg := notifService.Message{
		Title: title,
		Body:  body,
		Type:  msgType,
		Data:  map[string]interface{}{"booking_id": booking.ID.String()},
	}
	s.notify(ctx, booking.ProviderID, msg)
	s.notify(ctx, booking.RequesterID, msg)
}

func (s *BookingService) notify(ctx context.Context, userID uuid.UUID, msg notifService.Message) {
	recipient, err := s.recipients.Recipient(ctx, userID)
	if err != nil {
		logger.Warn("BookingService:notify:Recipient", "userID", userID, "error", err)
		return
	}
	s.notifier.Dispatch(ctx, recipient, msg)
}
