package service

import (
	"context"
	"time"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/errors"
	"lawlink-api/core/logger"
	"lawlink-api/core/secrets"
	"lawlink-api/core/utils"
	"lawlink-api/modules/credential/dto"
	"lawlink-api/modules/credential/entity"
	"lawlink-api/modules/credential/repository"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// refreshFunc exchanges a refresh token for a fresh token set. Swapped by
// tests to avoid hitting Google's token endpoint.
type refreshFunc func(ctx context.Context, refreshToken string) (*oauth2.Token, error)

// exchangeFunc trades an authorization code for a token set.
type exchangeFunc func(ctx context.Context, code string) (*oauth2.Token, error)

type CredentialService struct {
	repo     repository.CredentialRepositoryInterface
	states   repository.OAuthStateRepositoryInterface
	cipher   *secrets.Cipher
	calendar *CalendarClient
	oauthCfg *oauth2.Config
	refresh  refreshFunc
	exchange exchangeFunc
}

func NewCredentialService(
	repo repository.CredentialRepositoryInterface,
	states repository.OAuthStateRepositoryInterface,
	cipher *secrets.Cipher,
	calendar *CalendarClient,
) *CredentialService {
	cfg := config.Get()
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleAPI.ClientID,
		ClientSecret: cfg.GoogleAPI.ClientSecret,
		RedirectURL:  cfg.GoogleAPI.RedirectURI,
		Scopes: []string{
			"https://www.googleapis.com/auth/calendar.events",
			"https://www.googleapis.com/auth/userinfo.email",
		},
		Endpoint: google.Endpoint,
	}

	s := &CredentialService{
		repo:     repo,
		states:   states,
		cipher:   cipher,
		calendar: calendar,
		oauthCfg: oauthCfg,
	}
	s.refresh = func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		src := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
		return src.Token()
	}
	s.exchange = func(ctx context.Context, code string) (*oauth2.Token, error) {
		return oauthCfg.Exchange(ctx, code)
	}
	return s
}

// AuthURL starts the connect flow: persists a one-time state nonce and
// returns the provider consent URL bound to it.
func (s *CredentialService) AuthURL(ctx context.Context, userID uuid.UUID) (string, error) {
	state := utils.GenerateRandomString(32)
	expiresAt := time.Now().Add(constants.OAuthStateTTL)

	if err := s.states.SaveState(ctx, state, userID, expiresAt); err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Không thể khởi tạo kết nối", nil)
	}

	url := s.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	return url, nil
}

// Exchange completes the connect flow. The state row is validated and
// consumed before the code is exchanged, so a replayed callback fails.
func (s *CredentialService) Exchange(ctx context.Context, code, state string) (*entity.Credential, error) {
	stored, err := s.states.GetState(ctx, state)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể kiểm tra state", nil)
	}
	if stored == nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "State không hợp lệ hoặc đã hết hạn", nil)
	}
	if err := s.states.DeleteState(ctx, state); err != nil {
		logger.Warn("CredentialService:Exchange:DeleteState", "error", err)
	}

	token, err := s.exchange(ctx, code)
	if err != nil {
		logger.Error("CredentialService:Exchange:CodeExchange", "error", err, "userID", stored.UserID)
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Không thể đổi mã xác thực", nil)
	}

	cred, err := s.buildCredential(stored.UserID, token)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, cred); err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể lưu kết nối", nil)
	}

	logger.Info("CredentialService:Exchange:Connected", "userID", stored.UserID, "provider", cred.ProviderName)
	return cred, nil
}

// GetValid returns a usable access token, refreshing transparently when the
// stored one is within the expiry skew.
func (s *CredentialService) GetValid(ctx context.Context, ownerID uuid.UUID, provider string) (string, error) {
	cred, err := s.repo.GetByOwnerAndProvider(ctx, ownerID, provider)
	if err != nil {
		return "", errors.NewAppError(errors.ErrInternalServer, "Không thể tải kết nối", nil)
	}
	if cred == nil {
		return "", errors.NewAppError(errors.ErrNotConnected, "Chưa kết nối lịch", nil)
	}

	if time.Now().Before(cred.ExpiresAt.Add(-constants.TokenExpirySkew)) {
		return s.cipher.Decrypt(cred.AccessToken)
	}

	return s.Refresh(ctx, cred)
}

// Refresh exchanges the stored refresh token for a new access token. On any
// failure the stored row is left untouched so a later retry still has the
// refresh token to work with.
func (s *CredentialService) Refresh(ctx context.Context, cred *entity.Credential) (string, error) {
	if cred.RefreshToken == nil || *cred.RefreshToken == "" {
		return "", errors.NewAppError(errors.ErrRefreshFailed, "Không có refresh token", nil)
	}

	refreshToken, err := s.cipher.Decrypt(*cred.RefreshToken)
	if err != nil {
		return "", errors.NewAppError(errors.ErrRefreshFailed, "Không thể giải mã refresh token", nil)
	}

	token, err := s.refresh(ctx, refreshToken)
	if err != nil {
		logger.Error("CredentialService:Refresh:Failed", "error", err, "ownerID", cred.OwnerID)
		return "", errors.NewAppError(errors.ErrRefreshFailed, "Không thể làm mới token", nil)
	}

	encAccess, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return "", errors.NewAppError(errors.ErrRefreshFailed, "Không thể mã hoá token", nil)
	}

	var encRefresh *string
	if token.RefreshToken != "" {
		enc, err := s.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return "", errors.NewAppError(errors.ErrRefreshFailed, "Không thể mã hoá token", nil)
		}
		encRefresh = &enc
	}

	if err := s.repo.UpdateTokens(ctx, cred.ID, encAccess, encRefresh, token.Expiry); err != nil {
		return "", errors.NewAppError(errors.ErrRefreshFailed, "Không thể lưu token mới", nil)
	}

	cred.AccessToken = encAccess
	cred.ExpiresAt = token.Expiry
	logger.Info("CredentialService:Refresh:Success", "ownerID", cred.OwnerID)
	return token.AccessToken, nil
}

// RefreshExpiring proactively refreshes credentials expiring within horizon.
// Failures are logged and skipped; the sweep keeps going.
func (s *CredentialService) RefreshExpiring(ctx context.Context, horizon time.Duration) (refreshed, failed int, err error) {
	creds, err := s.repo.ListExpiring(ctx, horizon)
	if err != nil {
		return 0, 0, err
	}

	for i := range creds {
		if _, err := s.Refresh(ctx, &creds[i]); err != nil {
			logger.Warn("CredentialService:RefreshExpiring:Skipped", "ownerID", creds[i].OwnerID, "error", err)
			failed++
			continue
		}
		refreshed++
	}

	if len(creds) > 0 {
		logger.Info("CredentialService:RefreshExpiring:Done", "refreshed", refreshed, "failed", failed)
	}
	return refreshed, failed, nil
}

// Status reports whether the user has a live provider connection.
func (s *CredentialService) Status(ctx context.Context, ownerID uuid.UUID, provider string) (*dto.ConnectionStatusResponse, error) {
	cred, err := s.repo.GetByOwnerAndProvider(ctx, ownerID, provider)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể tải kết nối", nil)
	}
	if cred == nil {
		return &dto.ConnectionStatusResponse{Connected: false}, nil
	}
	return &dto.ConnectionStatusResponse{
		Connected:     true,
		Provider:      cred.ProviderName,
		CalendarEmail: cred.CalendarEmail,
		ExpiresAt:     cred.ExpiresAt,
	}, nil
}

func (s *CredentialService) Disconnect(ctx context.Context, ownerID uuid.UUID, provider string) error {
	return s.repo.Delete(ctx, ownerID, provider)
}

// CreateBookingEvent pushes a consultation onto the owner's calendar.
// All failures surface as ErrCalendarSync so callers can treat them as soft.
func (s *CredentialService) CreateBookingEvent(ctx context.Context, ownerID uuid.UUID, req *dto.CalendarEventRequest) (string, error) {
	accessToken, err := s.GetValid(ctx, ownerID, entity.ProviderGoogle)
	if err != nil {
		if ae, ok := err.(*errors.AppError); ok && ae.Code == errors.ErrNotConnected {
			return "", err
		}
		return "", errors.NewAppError(errors.ErrCalendarSync, "Không thể đồng bộ lịch", nil)
	}

	eventID, err := s.calendar.CreateEvent(ctx, accessToken, req)
	if err != nil {
		logger.Error("CredentialService:CreateBookingEvent:Failed", "error", err, "ownerID", ownerID)
		return "", errors.NewAppError(errors.ErrCalendarSync, "Không thể tạo sự kiện lịch", nil)
	}
	return eventID, nil
}

// DeleteBookingEvent removes a previously created event, best effort.
func (s *CredentialService) DeleteBookingEvent(ctx context.Context, ownerID uuid.UUID, eventID string) error {
	accessToken, err := s.GetValid(ctx, ownerID, entity.ProviderGoogle)
	if err != nil {
		return err
	}
	if err := s.calendar.DeleteEvent(ctx, accessToken, eventID); err != nil {
		logger.Error("CredentialService:DeleteBookingEvent:Failed", "error", err, "ownerID", ownerID)
		return errors.NewAppError(errors.ErrCalendarSync, "Không thể xoá sự kiện lịch", nil)
	}
	return nil
}

func (s *CredentialService) buildCredential(userID uuid.UUID, token *oauth2.Token) (*entity.Credential, error) {
	encAccess, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể mã hoá token", nil)
	}

	cred := &entity.Credential{
		OwnerID:      userID,
		ProviderName: entity.ProviderGoogle,
		AccessToken:  encAccess,
		ExpiresAt:    token.Expiry,
	}
	if token.RefreshToken != "" {
		encRefresh, err := s.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, errors.NewAppError(errors.ErrInternalServer, "Không thể mã hoá token", nil)
		}
		cred.RefreshToken = &encRefresh
	}
	if email, ok := token.Extra("id_token_email").(string); ok {
		cred.CalendarEmail = email
	}
	return cred, nil
}
