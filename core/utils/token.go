package utils

import (
	"strings"
	"time"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Role   string    `json:"role,omitempty"`
	Scope  string    `json:"scope"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uuid.UUID, email, role, scope string) (string, error) {
	cfg := config.Get()

	ttl := cfg.JWT.AccessTokenTTL
	if scope == constants.ScopeTokenRefresh {
		ttl = cfg.JWT.RefreshTokenTTL
	}

	claims := &TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		Scope:  scope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWT.Secret))
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Không thể tạo token", err.Error())
	}
	return signed, nil
}

func ValidateAndParseToken(tokenString string) (*TokenClaims, error) {
	cfg := config.Get()

	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Phương thức ký token không hợp lệ", nil)
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "Token đã hết hạn", nil)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Token không hợp lệ", err.Error())
	}
	if !token.Valid {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "Token không hợp lệ", nil)
	}
	return claims, nil
}

func GetTokenFromHeader(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Thiếu Authorization header", nil)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.NewAppError(errors.ErrInvalidTokenFormat, "Authorization header không đúng định dạng Bearer", nil)
	}
	return parts[1], nil
}
