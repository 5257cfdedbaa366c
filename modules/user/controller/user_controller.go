package controller

import (
	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/utils"
	"lawlink-api/modules/user/dto"
	"lawlink-api/modules/user/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type UserController struct {
	service *service.UserService
	controller.BaseController
}

func NewUserController(service *service.UserService) *UserController {
	return &UserController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMe returns the authenticated user's profile
// @Summary Thông tin cá nhân
// @Description Trả về hồ sơ của người dùng hiện tại
// @Tags User
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} errors.AppError
// @Router /private/me [get]
func (c *UserController) GetMe(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	user, err := c.service.GetByID(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, user, "User retrieved successfully")
}

// UpdateNotificationSettings updates channel preferences
// @Summary Cập nhật cài đặt thông báo
// @Description Bật/tắt kênh thông báo push và SMS
// @Tags User
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateNotificationSettingsRequest true "Cài đặt thông báo"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} errors.AppError
// @Failure 401 {object} errors.AppError
// @Router /private/me/notification-settings [put]
func (c *UserController) UpdateNotificationSettings(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	req := new(dto.UpdateNotificationSettingsRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	user, err := c.service.UpdateNotificationSettings(ctx.Request().Context(), userID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, user, "Notification settings updated")
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
