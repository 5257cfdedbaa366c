package controller

import (
	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/utils"
	"lawlink-api/modules/booking/dto"
	"lawlink-api/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service *service.BookingService
	controller.BaseController
}

func NewBookingController(service *service.BookingService) *BookingController {
	return &BookingController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// CreateBooking reserves a slot and opens a pending booking
// @Summary Đặt lịch tư vấn
// @Description Giữ khung giờ và tạo lịch hẹn chờ thanh toán
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Khung giờ muốn đặt"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/bookings [post]
func (c *BookingController) CreateBooking(ctx echo.Context) error {
	requesterID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.CreateBookingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	slotID, err := uuid.Parse(req.SlotID)
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "slot_id không hợp lệ", nil)
	}

	booking, err := c.service.Create(ctx.Request().Context(), requesterID, slotID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, booking, "Booking created successfully")
}

// GetMyBookings lists the caller's bookings on both sides
// @Summary Danh sách lịch hẹn của tôi
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.AppError
// @Router /private/bookings [get]
func (c *BookingController) GetMyBookings(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	bookings, err := c.service.ListByUser(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, bookings, "Bookings retrieved successfully")
}

// GetBooking returns one booking with its slot interval
// @Summary Chi tiết lịch hẹn
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID lịch hẹn"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.AppError
// @Router /private/bookings/{id} [get]
func (c *BookingController) GetBooking(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "id không hợp lệ", nil)
	}

	detail, err := c.service.GetDetail(ctx.Request().Context(), bookingID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	if detail.ProviderID != userID && detail.RequesterID != userID {
		return c.Forbidden(errors.ErrForbidden, "Lịch hẹn không thuộc về bạn", nil)
	}

	return c.SuccessResponse(ctx, detail, "Booking retrieved successfully")
}

// CancelBooking cancels a pending or confirmed booking
// @Summary Huỷ lịch hẹn
// @Description Huỷ lịch hẹn và trả lại khung giờ
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID lịch hẹn"
// @Param request body dto.CancelBookingRequest true "Lý do huỷ"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.AppError
// @Router /private/bookings/{id}/cancel [put]
func (c *BookingController) CancelBooking(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "id không hợp lệ", nil)
	}

	req := new(dto.CancelBookingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	detail, err := c.service.GetDetail(ctx.Request().Context(), bookingID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	if detail.ProviderID != userID && detail.RequesterID != userID {
		return c.Forbidden(errors.ErrForbidden, "Lịch hẹn không thuộc về bạn", nil)
	}

	cancelled, err := c.service.Cancel(ctx.Request().Context(), bookingID, req.Reason)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, map[string]bool{"cancelled": cancelled}, "Cancel processed")
}

// CompleteBooking marks a confirmed consultation as done
// @Summary Hoàn tất buổi tư vấn
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID lịch hẹn"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.AppError
// @Router /private/bookings/{id}/complete [put]
func (c *BookingController) CompleteBooking(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	bookingID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "id không hợp lệ", nil)
	}

	detail, err := c.service.GetDetail(ctx.Request().Context(), bookingID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	if detail.ProviderID != userID {
		return c.Forbidden(errors.ErrForbidden, "Chỉ luật sư phụ trách mới được hoàn tất buổi tư vấn", nil)
	}

	booking, err := c.service.Complete(ctx.Request().Context(), bookingID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, booking, "Booking completed")
}

func getUserIDFromContext(ctx echo.Context) (uuid.UUID, error) {
	tokenData := ctx.Get(constants.ContextTokenData)
	if tokenData == nil {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "User not authenticated", nil)
	}

	claims, ok := tokenData.(*utils.TokenClaims)
	if !ok {
		return uuid.Nil, errors.NewAppError(errors.ErrUnauthorized, "Invalid token data", nil)
	}

	return claims.UserID, nil
}
