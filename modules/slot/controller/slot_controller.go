package controller

import (
	"time"

	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/utils"
	"lawlink-api/modules/slot/dto"
	"lawlink-api/modules/slot/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type SlotController struct {
	service *service.SlotService
	controller.BaseController
}

func NewSlotController(service *service.SlotService) *SlotController {
	return &SlotController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// CreateSlot publishes a new consultation window
// @Summary Tạo khung giờ tư vấn
// @Description Luật sư tạo khung giờ trống cho khách đặt lịch
// @Tags Slot
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateSlotRequest true "Thông tin khung giờ"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/slots [post]
func (c *SlotController) CreateSlot(ctx echo.Context) error {
	providerID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.CreateSlotRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}
	if err := ctx.Validate(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request data", err.Error())
	}

	slot, err := c.service.Create(ctx.Request().Context(), providerID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, slot, "Slot created successfully")
}

// ListSlots lists a provider's slots
// @Summary Danh sách khung giờ
// @Description Tra cứu khung giờ của một luật sư, lọc theo khoảng thời gian
// @Tags Slot
// @Produce json
// @Param provider_id query string true "ID luật sư"
// @Param from query string false "Từ thời điểm (RFC3339)"
// @Param to query string false "Đến thời điểm (RFC3339)"
// @Param only_free query bool false "Chỉ khung giờ còn trống"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.AppError
// @Router /public/slots [get]
func (c *SlotController) ListSlots(ctx echo.Context) error {
	providerID, err := uuid.Parse(ctx.QueryParam("provider_id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "provider_id không hợp lệ", nil)
	}

	var from, to *time.Time
	if raw := ctx.QueryParam("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "from không hợp lệ", nil)
		}
		from = &t
	}
	if raw := ctx.QueryParam("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.BadRequest(errors.ErrInvalidInput, "to không hợp lệ", nil)
		}
		to = &t
	}
	onlyFree := ctx.QueryParam("only_free") == "true"

	slots, err := c.service.ListByProvider(ctx.Request().Context(), providerID, from, to, onlyFree)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, slots, "Slots retrieved successfully")
}

// DeleteSlot removes an unbooked slot
// @Summary Xoá khung giờ
// @Description Xoá khung giờ chưa từng có lịch hẹn
// @Tags Slot
// @Security BearerAuth
// @Produce json
// @Param id path string true "ID khung giờ"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/slots/{id} [delete]
func (c *SlotController) DeleteSlot(ctx echo.Context) error {
	providerID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "id không hợp lệ", nil)
	}

	if err := c.service.Delete(ctx.Request().Context(), providerID, slotID); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, nil, "Slot deleted successfully")
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
