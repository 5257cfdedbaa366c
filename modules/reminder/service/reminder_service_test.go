package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"lawlink-api/core/config"
	bookingRepository "lawlink-api/modules/booking/repository"
	notifService "lawlink-api/modules/notification/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderStore struct {
	rows             []bookingRepository.ReminderRow
	claimed          map[uuid.UUID]bool
	claimErr         error
	listIgnoresClaim bool
	listFrom         time.Time
	listTo           time.Time
	listCalls        int
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{claimed: map[uuid.UUID]bool{}}
}

func (f *fakeReminderStore) addDue(startIn time.Duration) bookingRepository.ReminderRow {
	row := bookingRepository.ReminderRow{
		BookingID:   uuid.New(),
		ProviderID:  uuid.New(),
		RequesterID: uuid.New(),
		StartTime:   time.Now().Add(startIn),
	}
	f.rows = append(f.rows, row)
	return row
}

func (f *fakeReminderStore) ListDueReminders(_ context.Context, from, to time.Time) ([]bookingRepository.ReminderRow, error) {
	f.listCalls++
	f.listFrom, f.listTo = from, to
	var due []bookingRepository.ReminderRow
	for _, row := range f.rows {
		if f.claimed[row.BookingID] && !f.listIgnoresClaim {
			continue
		}
		if !row.StartTime.Before(from) && !row.StartTime.After(to) {
			due = append(due, row)
		}
	}
	return due, nil
}

func (f *fakeReminderStore) MarkReminderSent(_ context.Context, id uuid.UUID) (bool, error) {
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.claimed[id] {
		return false, nil
	}
	f.claimed[id] = true
	return true, nil
}

type fakeRecipients struct {
	failFor map[uuid.UUID]bool
}

func (f *fakeRecipients) Recipient(_ context.Context, userID uuid.UUID) (notifService.Recipient, error) {
	if f.failFor[userID] {
		return notifService.Recipient{}, fmt.Errorf("user not found")
	}
	return notifService.Recipient{
		UserID:      userID,
		Phone:       "+84901234567",
		DeviceToken: "device-" + userID.String()[:8],
		PushEnabled: true,
		SMSEnabled:  true,
	}, nil
}

type fakeReminderNotifier struct {
	dispatches []notifService.Message
	smsDown    bool
}

func (f *fakeReminderNotifier) Dispatch(_ context.Context, _ notifService.Recipient, msg notifService.Message) notifService.DispatchResult {
	f.dispatches = append(f.dispatches, msg)
	smsResult := notifService.ChannelResult{Channel: notifService.ChannelSMS, Attempted: true, Sent: true}
	if f.smsDown {
		smsResult.Sent = false
		smsResult.Err = fmt.Errorf("sms gateway down")
	}
	return notifService.DispatchResult{Results: []notifService.ChannelResult{
		{Channel: notifService.ChannelInApp, Attempted: true, Sent: true},
		{Channel: notifService.ChannelPush, Attempted: true, Sent: true},
		smsResult,
	}}
}

func newTestReminderService(t *testing.T, window time.Duration) (*ReminderService, *fakeReminderStore, *fakeReminderNotifier) {
	t.Helper()
	config.SetForTesting(&config.Config{
		Reminder: config.ReminderConfig{Window: window},
	})
	store := newFakeReminderStore()
	notifier := &fakeReminderNotifier{}
	svc := NewReminderService(store, &fakeRecipients{}, notifier)
	return svc, store, notifier
}

func TestDispatchDueRemindsBothParties(t *testing.T) {
	svc, store, notifier := newTestReminderService(t, 0)
	store.addDue(30 * time.Minute)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.Len(t, notifier.dispatches, 2)
	assert.Equal(t, 2, summary.Sent[notifService.ChannelInApp])
	assert.Equal(t, 2, summary.Sent[notifService.ChannelSMS])
}

func TestDispatchDueSelectsOnlyWindow(t *testing.T) {
	svc, store, _ := newTestReminderService(t, 0)
	inside := store.addDue(30 * time.Minute)
	store.addDue(3 * time.Hour)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.True(t, store.claimed[inside.BookingID])
	assert.Len(t, store.claimed, 1)
}

func TestDispatchDueSecondSweepProcessesNothing(t *testing.T) {
	svc, store, notifier := newTestReminderService(t, 0)
	store.addDue(30 * time.Minute)

	_, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Processed)
	assert.Len(t, notifier.dispatches, 2)
}

func TestDispatchDueSkipsAlreadyClaimedRow(t *testing.T) {
	svc, store, notifier := newTestReminderService(t, 0)
	store.listIgnoresClaim = true
	row := store.addDue(30 * time.Minute)

	// A concurrent sweep claims the booking between list and mark, so the
	// compare-and-set returns zero rows.
	_, err := store.MarkReminderSent(context.Background(), row.BookingID)
	require.NoError(t, err)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, notifier.dispatches)
}

func TestDispatchDueUsesConfiguredWindow(t *testing.T) {
	svc, store, _ := newTestReminderService(t, 2*time.Hour)
	store.addDue(90 * time.Minute)

	summary, err := svc.DispatchDue(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Processed)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), store.listTo, 5*time.Second)
}

func TestDispatchDueFallsBackToDefaultWindow(t *testing.T) {
	svc, store, _ := newTestReminderService(t, 0)
	store.addDue(30 * time.Minute)
	store.addDue(90 * time.Minute)

	summary, err := svc.DispatchDue(context.Background(), 0)
	require.NoError(t, err)

	// Default window is one hour, so only the nearer booking is due.
	assert.Equal(t, 1, summary.Processed)
	assert.WithinDuration(t, time.Now().Add(time.Hour), store.listTo, 5*time.Second)
}

func TestDispatchDueCountsChannelFailures(t *testing.T) {
	svc, store, notifier := newTestReminderService(t, 0)
	notifier.smsDown = true
	row := store.addDue(30 * time.Minute)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	// A failing channel still counts the booking as processed.
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Sent[notifService.ChannelInApp])
	assert.Equal(t, 2, summary.Failed[notifService.ChannelSMS])

	// Both undelivered reminders leave a traceable entry.
	require.Len(t, summary.Errors, 2)
	for _, e := range summary.Errors {
		assert.Contains(t, e, row.BookingID.String())
		assert.Contains(t, e, "sms gateway down")
	}
}

func TestDispatchDueRecordsClaimFailure(t *testing.T) {
	svc, store, notifier := newTestReminderService(t, 0)
	row := store.addDue(30 * time.Minute)
	store.claimErr = fmt.Errorf("connection reset")

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, notifier.dispatches)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], row.BookingID.String())
	assert.Contains(t, summary.Errors[0], "claim")
}

func TestDispatchDueMissingRecipientDoesNotAbortSweep(t *testing.T) {
	config.SetForTesting(&config.Config{})
	store := newFakeReminderStore()
	notifier := &fakeReminderNotifier{}
	first := store.addDue(20 * time.Minute)
	store.addDue(40 * time.Minute)
	recipients := &fakeRecipients{failFor: map[uuid.UUID]bool{first.ProviderID: true}}
	svc := NewReminderService(store, recipients, notifier)

	summary, err := svc.DispatchDue(context.Background(), time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed)
	// Provider of the first booking is unreachable; the other three parties
	// still get their reminder.
	assert.Len(t, notifier.dispatches, 3)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], first.BookingID.String())
	assert.Contains(t, summary.Errors[0], "recipient")
}
