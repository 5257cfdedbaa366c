package service

import (
	"context"

	"lawlink-api/core/config"
	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/core/utils"
	bookingEntity "lawlink-api/modules/booking/entity"
	notifService "lawlink-api/modules/notification/service"
	"lawlink-api/modules/payment/dto"
	"lawlink-api/modules/payment/entity"
	"lawlink-api/modules/payment/repository"

	"github.com/google/uuid"
)

// BookingPort is the slice of the booking module the payment flow needs.
type BookingPort interface {
	GetDetail(ctx context.Context, bookingID uuid.UUID) (*bookingEntity.BookingDetail, error)
	Confirm(ctx context.Context, bookingID uuid.UUID) (*bookingEntity.Booking, error)
	Cancel(ctx context.Context, bookingID uuid.UUID, reason string) (bool, error)
}

// ContactResolver provides the payer's contact handed to the gateway's
// payment page.
type ContactResolver interface {
	Recipient(ctx context.Context, userID uuid.UUID) (notifService.Recipient, error)
}

type PaymentService struct {
	repo        repository.PaymentRepositoryInterface
	gateway     PaymentGateway
	bookings    BookingPort
	contacts    ContactResolver
	callbackURL string
}

func NewPaymentService(repo repository.PaymentRepositoryInterface, gateway PaymentGateway, bookings BookingPort, contacts ContactResolver) *PaymentService {
	return &PaymentService{
		repo:        repo,
		gateway:     gateway,
		bookings:    bookings,
		contacts:    contacts,
		callbackURL: config.Get().Server.BaseURL + "/api/v1/public/payments/callback",
	}
}

// Initiate opens a pending payment for the booking and hands back the gateway
// redirect link. A gateway failure marks the row failed immediately so no
// pending payment is left waiting for a callback that will never come.
func (s *PaymentService) Initiate(ctx context.Context, requesterID uuid.UUID, req *dto.InitiatePaymentRequest) (*dto.InitiatePaymentResponse, error) {
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Mã lịch hẹn không hợp lệ", nil)
	}

	detail, err := s.bookings.GetDetail(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if detail.RequesterID != requesterID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Bạn không có quyền thanh toán lịch hẹn này", nil)
	}
	if detail.Status != bookingEntity.StatusPending {
		return nil, errors.NewAppError(errors.ErrInvalidTransition, "Lịch hẹn không ở trạng thái chờ thanh toán", nil)
	}

	existing, err := s.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil && (existing.Status == entity.StatusPending || existing.Status == entity.StatusCompleted) {
		return nil, errors.NewAppError(errors.ErrAlreadyExists, "Lịch hẹn đã có giao dịch thanh toán", nil)
	}

	payment := &entity.Payment{
		BookingID: &bookingID,
		Amount:    detail.Price,
		Status:    entity.StatusPending,
		OrderRef:  "LWL-" + utils.GenerateID(),
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	contact := ""
	if recipient, err := s.contacts.Recipient(ctx, requesterID); err == nil {
		contact = recipient.Phone
	} else {
		logger.Warn("PaymentService:Initiate:Contact", "requesterID", requesterID, "error", err)
	}

	created, err := s.gateway.CreatePayment(ctx, payment.OrderRef, payment.Amount, s.callbackURL, contact)
	if err != nil {
		logger.Error("PaymentService:Initiate:Gateway:Error:", err)
		if markErr := s.repo.MarkFailed(ctx, payment.ID); markErr != nil {
			logger.Error("PaymentService:Initiate:MarkFailed:Error:", markErr)
		}
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể khởi tạo giao dịch với cổng thanh toán", nil)
	}

	if err := s.repo.SetProviderTxn(ctx, payment.ID, created.TxnID); err != nil {
		return nil, err
	}

	logger.Info("PaymentService:Initiate:Created", "paymentID", payment.ID, "orderRef", payment.OrderRef, "amount", payment.Amount)
	return &dto.InitiatePaymentResponse{
		PaymentID:    payment.ID.String(),
		OrderRef:     payment.OrderRef,
		Amount:       payment.Amount,
		RedirectLink: created.RedirectLink,
	}, nil
}

// Reconcile settles a payment from a gateway callback. The callback payload
// is never trusted: the status is re-read from the gateway before any row
// changes. A payment already terminal short-circuits as a duplicate, which
// the controller reports back to the gateway as success.
func (s *PaymentService) Reconcile(ctx context.Context, providerTxnID string) error {
	payment, err := s.repo.GetByProviderTxnID(ctx, providerTxnID)
	if err != nil {
		return err
	}
	if payment == nil {
		return errors.NewAppError(errors.ErrNotFound, "Không tìm thấy giao dịch", nil)
	}
	if payment.IsTerminal() {
		logger.Info("PaymentService:Reconcile:Duplicate", "txnID", providerTxnID, "status", payment.Status)
		// A completed payment whose confirm step crashed leaves the booking
		// pending. Confirm is idempotent, so redeliveries re-drive it until
		// the booking lands in confirmed.
		if payment.Status == entity.StatusCompleted && payment.BookingID != nil {
			if _, err := s.bookings.Confirm(ctx, *payment.BookingID); err != nil {
				logger.Warn("PaymentService:Reconcile:RetryConfirm", "txnID", providerTxnID, "error", err)
			}
		}
		return errors.NewAppError(errors.ErrDuplicateCallback, "Giao dịch đã được xử lý", nil)
	}

	verified, err := s.gateway.VerifyPayment(ctx, providerTxnID)
	if err != nil {
		logger.Error("PaymentService:Reconcile:Verify:Error:", err)
		return errors.NewAppError(errors.ErrPaymentVerificationFailed, "Không thể xác minh giao dịch với cổng thanh toán", nil)
	}
	if verified.OrderRef != payment.OrderRef {
		logger.Warn("PaymentService:Reconcile:OrderMismatch", "txnID", providerTxnID, "expected", payment.OrderRef, "got", verified.OrderRef)
		return errors.NewAppError(errors.ErrPaymentVerificationFailed, "Giao dịch không khớp với đơn hàng", nil)
	}

	payload := entity.JSONB{"status_code": verified.StatusCode, "order_id": verified.OrderRef}

	if !verified.Success() {
		settled, err := s.repo.SettleByTxn(ctx, providerTxnID, entity.StatusFailed, payload)
		if err != nil {
			return err
		}
		if !settled {
			return errors.NewAppError(errors.ErrDuplicateCallback, "Giao dịch đã được xử lý", nil)
		}
		// The booking stays pending; the expiry sweep frees the slot.
		logger.Info("PaymentService:Reconcile:Failed", "txnID", providerTxnID, "statusCode", verified.StatusCode)
		return nil
	}

	settled, err := s.repo.SettleByTxn(ctx, providerTxnID, entity.StatusCompleted, payload)
	if err != nil {
		return err
	}
	if !settled {
		return errors.NewAppError(errors.ErrDuplicateCallback, "Giao dịch đã được xử lý", nil)
	}

	// The settle above ran exactly once, so exactly one caller reaches the
	// confirm. Confirm itself tolerates a retried callback.
	if payment.BookingID != nil {
		if _, err := s.bookings.Confirm(ctx, *payment.BookingID); err != nil {
			logger.Error("PaymentService:Reconcile:Confirm:Error:", err)
			return err
		}
	}

	logger.Info("PaymentService:Reconcile:Completed", "txnID", providerTxnID, "paymentID", payment.ID)
	return nil
}

// RepairSettled re-drives the confirm step for settled payments whose booking
// is still pending, closing the window where a crash lands between a
// successful settle and the booking update. Returns how many bookings were
// confirmed.
func (s *PaymentService) RepairSettled(ctx context.Context) (int, error) {
	stranded, err := s.repo.ListCompletedWithPendingBooking(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, payment := range stranded {
		if payment.BookingID == nil {
			continue
		}
		if _, err := s.bookings.Confirm(ctx, *payment.BookingID); err != nil {
			logger.Warn("PaymentService:RepairSettled:Confirm", "paymentID", payment.ID, "bookingID", *payment.BookingID, "error", err)
			continue
		}
		repaired++
	}

	if repaired > 0 {
		logger.Warn("PaymentService:RepairSettled:Repaired", "count", repaired)
	}
	return repaired, nil
}

// Refund flips a completed payment to refunded and cancels its booking,
// which releases the slot.
func (s *PaymentService) Refund(ctx context.Context, userID, paymentID uuid.UUID, reason string) (*entity.Payment, error) {
	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy giao dịch", nil)
	}

	if payment.BookingID != nil {
		detail, err := s.bookings.GetDetail(ctx, *payment.BookingID)
		if err != nil {
			return nil, err
		}
		if detail.RequesterID != userID && detail.ProviderID != userID {
			return nil, errors.NewAppError(errors.ErrForbidden, "Bạn không có quyền hoàn tiền giao dịch này", nil)
		}
	}

	refunded, err := s.repo.RefundCAS(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !refunded {
		return nil, errors.NewAppError(errors.ErrInvalidTransition, "Chỉ giao dịch đã hoàn tất mới được hoàn tiền", nil)
	}
	payment.Status = entity.StatusRefunded

	if payment.BookingID != nil {
		if _, err := s.bookings.Cancel(ctx, *payment.BookingID, reason); err != nil {
			logger.Warn("PaymentService:Refund:CancelBooking", "paymentID", paymentID, "error", err)
		}
	}

	logger.Info("PaymentService:Refund:Refunded", "paymentID", paymentID, "amount", payment.Amount)
	return payment, nil
}

// GetByOrderRef lets the return page look a payment up after redirect.
func (s *PaymentService) GetByOrderRef(ctx context.Context, orderRef string) (*entity.Payment, error) {
	payment, err := s.repo.GetByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Không tìm thấy giao dịch", nil)
	}
	return payment, nil
}
