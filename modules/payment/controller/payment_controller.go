package controller

import (
	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/utils"
	"lawlink-api/modules/payment/dto"
	"lawlink-api/modules/payment/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type PaymentController struct {
	service *service.PaymentService
	controller.BaseController
}

func NewPaymentController(service *service.PaymentService) *PaymentController {
	return &PaymentController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// InitiatePayment opens a payment for a pending booking
// @Summary Khởi tạo thanh toán
// @Description Tạo giao dịch với cổng thanh toán và trả về link chuyển hướng
// @Tags Payment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.InitiatePaymentRequest true "Lịch hẹn cần thanh toán"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/payments/initiate [post]
func (c *PaymentController) InitiatePayment(ctx echo.Context) error {
	requesterID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.InitiatePaymentRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	resp, err := c.service.Initiate(ctx.Request().Context(), requesterID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, resp, "Payment initiated")
}

// HandleCallback reconciles a gateway callback
// @Summary Callback từ cổng thanh toán
// @Description Xác minh lại trạng thái với cổng thanh toán rồi chốt giao dịch
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.GatewayCallbackRequest true "Dữ liệu callback"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} errors.AppError
// @Router /public/payments/callback [post]
func (c *PaymentController) HandleCallback(ctx echo.Context) error {
	req := new(dto.GatewayCallbackRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	err := c.service.Reconcile(ctx.Request().Context(), req.TxnID)
	if err != nil {
		// A replayed callback is acknowledged as success so the gateway
		// stops re-delivering it.
		if ae, ok := err.(*errors.AppError); ok && ae.Code == errors.ErrDuplicateCallback {
			return c.SuccessResponse(ctx, nil, "Callback already processed")
		}
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, nil, "Callback processed")
}

// GetPaymentByOrderRef lets the redirect page poll the settled status
// @Summary Tra cứu giao dịch theo mã đơn
// @Tags Payment
// @Security BearerAuth
// @Produce json
// @Param orderRef path string true "Mã đơn hàng"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} errors.AppError
// @Router /private/payments/order/{orderRef} [get]
func (c *PaymentController) GetPaymentByOrderRef(ctx echo.Context) error {
	if _, err := getUserIDFromContext(ctx); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	payment, err := c.service.GetByOrderRef(ctx.Request().Context(), ctx.Param("orderRef"))
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, payment, "Payment retrieved successfully")
}

// RefundPayment flips a completed payment to refunded and frees the slot
// @Summary Hoàn tiền giao dịch
// @Tags Payment
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "ID giao dịch"
// @Param request body dto.RefundRequest true "Lý do hoàn tiền"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} errors.AppError
// @Router /private/payments/{id}/refund [post]
func (c *PaymentController) RefundPayment(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	paymentID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "id không hợp lệ", nil)
	}

	req := new(dto.RefundRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	payment, err := c.service.Refund(ctx.Request().Context(), userID, paymentID, req.Reason)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, payment, "Payment refunded")
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
