package service

import (
	"context"
	"errors"
	"testing"

	coreEntity "lawlink-api/core/entity"
	"lawlink-api/modules/user/dto"
	"lawlink-api/modules/user/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users   map[uuid.UUID]*entity.User
	updated map[uuid.UUID][2]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*entity.User{}, updated: map[uuid.UUID][2]bool{}}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, errors.New("sql: no rows in result set")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, errors.New("sql: no rows in result set")
}

func (f *fakeUserRepo) UpdateNotificationSettings(_ context.Context, id uuid.UUID, push, sms bool) error {
	f.updated[id] = [2]bool{push, sms}
	f.users[id].PushEnabled = push
	f.users[id].SMSEnabled = sms
	return nil
}

func seedUser(repo *fakeUserRepo) *entity.User {
	phone := "+84901234567"
	u := &entity.User{
		Email:       "client@example.com",
		Phone:       &phone,
		FullName:    "Nguyễn Văn A",
		Role:        "requester",
		PushEnabled: true,
		SMSEnabled:  true,
		BaseEntity:  coreEntity.BaseEntity{ID: uuid.New()},
	}
	repo.users[u.ID] = u
	return u
}

func boolPtr(b bool) *bool { return &b }

func TestUpdateNotificationSettingsPartial(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(repo)
	svc := NewUserService(repo)

	// Only SMS is toggled; push keeps its stored value.
	out, err := svc.UpdateNotificationSettings(context.Background(), u.ID, &dto.UpdateNotificationSettingsRequest{
		SMSEnabled: boolPtr(false),
	})
	require.NoError(t, err)

	assert.True(t, out.PushEnabled)
	assert.False(t, out.SMSEnabled)
	assert.Equal(t, [2]bool{true, false}, repo.updated[u.ID])
}

func TestUpdateNotificationSettingsUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserRepo())

	_, err := svc.UpdateNotificationSettings(context.Background(), uuid.New(), &dto.UpdateNotificationSettingsRequest{
		PushEnabled: boolPtr(false),
	})
	assert.Error(t, err)
}

func TestRecipientMapping(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(repo)
	svc := NewUserService(repo)

	recipient, err := svc.Recipient(context.Background(), u.ID)
	require.NoError(t, err)

	assert.Equal(t, u.ID, recipient.UserID)
	assert.Equal(t, "+84901234567", recipient.Phone)
	assert.True(t, recipient.PushEnabled)
	assert.True(t, recipient.SMSEnabled)
	assert.Empty(t, recipient.DeviceToken)
}
