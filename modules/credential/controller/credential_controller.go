package controller

import (
	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/utils"
	"lawlink-api/modules/credential/dto"
	"lawlink-api/modules/credential/entity"
	"lawlink-api/modules/credential/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type CredentialController struct {
	service *service.CredentialService
	controller.BaseController
}

func NewCredentialController(service *service.CredentialService) *CredentialController {
	return &CredentialController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Connect starts the Google Calendar OAuth flow
// @Summary Kết nối Google Calendar
// @Description Trả về URL xác thực Google để kết nối lịch
// @Tags Credential
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ConnectResponse
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/connect [get]
func (c *CredentialController) Connect(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	authURL, err := c.service.AuthURL(ctx.Request().Context(), userID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, dto.ConnectResponse{AuthURL: authURL}, "Auth URL generated")
}

// Callback completes the Google Calendar OAuth flow
// @Summary Callback OAuth Google
// @Description Nhận mã xác thực từ Google và hoàn tất kết nối
// @Tags Credential
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State nonce"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.AppError
// @Router /public/calendar/callback [get]
func (c *CredentialController) Callback(ctx echo.Context) error {
	code := ctx.QueryParam("code")
	state := ctx.QueryParam("state")
	if code == "" || state == "" {
		return c.BadRequest(errors.ErrInvalidInput, "Thiếu code hoặc state", nil)
	}

	if _, err := c.service.Exchange(ctx.Request().Context(), code, state); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, nil, "Calendar connected successfully")
}

// Status reports the calendar connection state
// @Summary Trạng thái kết nối lịch
// @Tags Credential
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.ConnectionStatusResponse
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/status [get]
func (c *CredentialController) Status(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	status, err := c.service.Status(ctx.Request().Context(), userID, entity.ProviderGoogle)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, status, "Connection status retrieved")
}

// Disconnect removes the calendar connection
// @Summary Ngắt kết nối lịch
// @Tags Credential
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.AppError
// @Router /private/calendar/connection [delete]
func (c *CredentialController) Disconnect(ctx echo.Context) error {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	if err := c.service.Disconnect(ctx.Request().Context(), userID, entity.ProviderGoogle); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, nil, "Calendar disconnected")
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
