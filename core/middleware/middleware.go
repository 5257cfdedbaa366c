package middleware

import (
	"lawlink-api/core/cache"
	"lawlink-api/core/constants"
	"lawlink-api/core/controller"
	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/core/utils"

	"github.com/labstack/echo/v4"
)

type Middleware struct {
	cache cache.Cache
	base  controller.BaseController
}

func NewMiddleware(cache cache.Cache) *Middleware {
	return &Middleware{
		cache: cache,
		base:  controller.NewBaseController(),
	}
}

// AuthMiddleware validates the bearer token and stores its claims in the
// request context under constants.ContextTokenData.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := utils.GetTokenFromHeader(c)
			if err != nil {
				return m.base.ErrorResponse(c, err)
			}

			blacklisted, err := m.cache.IsTokenBlacklisted(c.Request().Context(), token)
			if err != nil {
				logger.Error("Middleware:AuthMiddleware:BlacklistCheck", "error", err)
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrInternalServer, "Không thể kiểm tra token", nil))
			}
			if blacklisted {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "Token đã bị thu hồi", nil))
			}

			claims, err := utils.ValidateAndParseToken(token)
			if err != nil {
				return m.base.ErrorResponse(c, err)
			}
			if claims.Scope != constants.ScopeTokenAccess {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "Token không dùng được cho thao tác này", nil))
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequireRole gates a route group to a single role. It assumes AuthMiddleware
// already ran on the group.
func (m *Middleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenData := c.Get(constants.ContextTokenData)
			claims, ok := tokenData.(*utils.TokenClaims)
			if !ok || claims == nil {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "Chưa xác thực", nil))
			}
			if claims.Role != role {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrForbidden, "Không có quyền truy cập", nil))
			}
			return next(c)
		}
	}
}
