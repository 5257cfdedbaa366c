package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lawlink-api/core/config"
	coreEntity "lawlink-api/core/entity"
	coreErrors "lawlink-api/core/errors"
	"lawlink-api/core/secrets"
	"lawlink-api/modules/credential/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeCredentialRepo struct {
	creds   map[uuid.UUID]*entity.Credential // keyed by owner
	updates int
}

func newFakeCredentialRepo() *fakeCredentialRepo {
	return &fakeCredentialRepo{creds: map[uuid.UUID]*entity.Credential{}}
}

func (f *fakeCredentialRepo) Upsert(_ context.Context, cred *entity.Credential) error {
	cred.ID = uuid.New()
	f.creds[cred.OwnerID] = cred
	return nil
}

func (f *fakeCredentialRepo) GetByOwnerAndProvider(_ context.Context, ownerID uuid.UUID, _ string) (*entity.Credential, error) {
	c, ok := f.creds[ownerID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCredentialRepo) UpdateTokens(_ context.Context, id uuid.UUID, accessToken string, refreshToken *string, expiresAt time.Time) error {
	for _, c := range f.creds {
		if c.ID == id {
			c.AccessToken = accessToken
			if refreshToken != nil {
				c.RefreshToken = refreshToken
			}
			c.ExpiresAt = expiresAt
			f.updates++
			return nil
		}
	}
	return errors.New("credential not found")
}

func (f *fakeCredentialRepo) ListExpiring(_ context.Context, horizon time.Duration) ([]entity.Credential, error) {
	var out []entity.Credential
	cutoff := time.Now().Add(horizon)
	for _, c := range f.creds {
		if c.ExpiresAt.Before(cutoff) && c.RefreshToken != nil {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCredentialRepo) Delete(_ context.Context, ownerID uuid.UUID, _ string) error {
	delete(f.creds, ownerID)
	return nil
}

type fakeStateRepo struct {
	states map[string]*entity.OAuthState
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: map[string]*entity.OAuthState{}}
}

func (f *fakeStateRepo) SaveState(_ context.Context, state string, userID uuid.UUID, expiresAt time.Time) error {
	f.states[state] = &entity.OAuthState{State: state, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeStateRepo) GetState(_ context.Context, state string) (*entity.OAuthState, error) {
	s, ok := f.states[state]
	if !ok || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	return s, nil
}

func (f *fakeStateRepo) DeleteState(_ context.Context, state string) error {
	delete(f.states, state)
	return nil
}

func (f *fakeStateRepo) CleanupExpiredStates(context.Context) error { return nil }

func newTestService(t *testing.T) (*CredentialService, *fakeCredentialRepo, *fakeStateRepo) {
	t.Helper()
	config.SetForTesting(&config.Config{
		GoogleAPI: config.GoogleAPIConfig{ClientID: "cid", ClientSecret: "secret", RedirectURI: "http://localhost/cb"},
	})

	cipher, err := secrets.NewCipher("test-secret")
	require.NoError(t, err)

	repo := newFakeCredentialRepo()
	states := newFakeStateRepo()
	svc := NewCredentialService(repo, states, cipher, NewCalendarClient())
	return svc, repo, states
}

func seedCredential(t *testing.T, svc *CredentialService, repo *fakeCredentialRepo, ownerID uuid.UUID, expiresAt time.Time) *entity.Credential {
	t.Helper()
	encAccess, err := svc.cipher.Encrypt("access-token")
	require.NoError(t, err)
	encRefresh, err := svc.cipher.Encrypt("refresh-token")
	require.NoError(t, err)

	cred := &entity.Credential{
		OwnerID:      ownerID,
		ProviderName: entity.ProviderGoogle,
		AccessToken:  encAccess,
		RefreshToken: &encRefresh,
		ExpiresAt:    expiresAt,
		BaseEntity:   coreEntity.BaseEntity{ID: uuid.New()},
	}
	repo.creds[ownerID] = cred
	return cred
}

func TestAuthURLStoresState(t *testing.T) {
	svc, _, states := newTestService(t)
	userID := uuid.New()

	url, err := svc.AuthURL(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, states.states, 1)

	for state, stored := range states.states {
		assert.Contains(t, url, "state="+state[:8])
		assert.Equal(t, userID, stored.UserID)
		assert.True(t, stored.ExpiresAt.After(time.Now()))
	}
	assert.True(t, strings.Contains(url, "access_type=offline"))
}

func TestExchangeRejectsUnknownState(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Exchange(context.Background(), "code", "bogus-state")
	require.Error(t, err)

	ae, ok := err.(*coreErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, coreErrors.ErrUnauthorized, ae.Code)
}

func TestExchangeConsumesState(t *testing.T) {
	svc, repo, states := newTestService(t)
	userID := uuid.New()

	require.NoError(t, states.SaveState(context.Background(), "st", userID, time.Now().Add(time.Minute)))
	svc.exchange = func(context.Context, string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "at", RefreshToken: "rt", Expiry: time.Now().Add(time.Hour)}, nil
	}

	cred, err := svc.Exchange(context.Background(), "code", "st")
	require.NoError(t, err)

	// Tokens land encrypted.
	assert.True(t, secrets.IsEncrypted(cred.AccessToken))
	require.NotNil(t, cred.RefreshToken)
	assert.True(t, secrets.IsEncrypted(*cred.RefreshToken))
	assert.Equal(t, userID, cred.OwnerID)
	assert.Contains(t, repo.creds, userID)

	// Second use of the same state must fail.
	_, err = svc.Exchange(context.Background(), "code", "st")
	assert.Error(t, err)
}

func TestGetValidReturnsFreshToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()
	seedCredential(t, svc, repo, ownerID, time.Now().Add(time.Hour))

	token, err := svc.GetValid(context.Background(), ownerID, entity.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "access-token", token)
	assert.Zero(t, repo.updates)
}

func TestGetValidNotConnected(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetValid(context.Background(), uuid.New(), entity.ProviderGoogle)
	require.Error(t, err)

	ae, ok := err.(*coreErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, coreErrors.ErrNotConnected, ae.Code)
}

func TestGetValidRefreshesExpiredToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()
	seedCredential(t, svc, repo, ownerID, time.Now().Add(time.Minute)) // inside the skew

	svc.refresh = func(_ context.Context, refreshToken string) (*oauth2.Token, error) {
		assert.Equal(t, "refresh-token", refreshToken)
		return &oauth2.Token{AccessToken: "new-access", Expiry: time.Now().Add(time.Hour)}, nil
	}

	token, err := svc.GetValid(context.Background(), ownerID, entity.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, repo.updates)
}

func TestRefreshFailureLeavesRowUntouched(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()
	cred := seedCredential(t, svc, repo, ownerID, time.Now().Add(time.Minute))
	originalAccess := cred.AccessToken

	svc.refresh = func(context.Context, string) (*oauth2.Token, error) {
		return nil, errors.New("invalid_grant")
	}

	_, err := svc.GetValid(context.Background(), ownerID, entity.ProviderGoogle)
	require.Error(t, err)

	ae, ok := err.(*coreErrors.AppError)
	require.True(t, ok)
	assert.Equal(t, coreErrors.ErrRefreshFailed, ae.Code)

	stored := repo.creds[ownerID]
	assert.Equal(t, originalAccess, stored.AccessToken)
	assert.Zero(t, repo.updates)
}

func TestRefreshExpiringSweep(t *testing.T) {
	svc, repo, _ := newTestService(t)

	okOwner := uuid.New()
	failOwner := uuid.New()
	seedCredential(t, svc, repo, okOwner, time.Now().Add(5*time.Minute))
	// This credential has no refresh token, so the sweep cannot renew it.
	failCred := seedCredential(t, svc, repo, failOwner, time.Now().Add(5*time.Minute))
	brokenRefresh, err := svc.cipher.Encrypt("revoked-refresh")
	require.NoError(t, err)
	failCred.RefreshToken = &brokenRefresh

	svc.refresh = func(_ context.Context, rt string) (*oauth2.Token, error) {
		if rt == "revoked-refresh" {
			return nil, errors.New("invalid_grant")
		}
		return &oauth2.Token{AccessToken: "rotated", Expiry: time.Now().Add(time.Hour)}, nil
	}

	refreshed, failed, err := svc.RefreshExpiring(context.Background(), 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed)
	assert.Equal(t, 1, failed)
}

func TestDecryptLegacyPlaintextCredential(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()

	// Row written before encryption existed: raw token, no marker.
	rt := "legacy-refresh"
	repo.creds[ownerID] = &entity.Credential{
		OwnerID:      ownerID,
		ProviderName: entity.ProviderGoogle,
		AccessToken:  "legacy-access",
		RefreshToken: &rt,
		ExpiresAt:    time.Now().Add(time.Hour),
		BaseEntity:   coreEntity.BaseEntity{ID: uuid.New()},
	}

	token, err := svc.GetValid(context.Background(), ownerID, entity.ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "legacy-access", token)
}
