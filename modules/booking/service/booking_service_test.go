package service

import (
	"context"
	"testing"
	"time"

	coreEntity "lawlink-api/core/entity"
	"lawlink-api/core/errors"
	"lawlink-api/modules/booking/entity"
	"lawlink-api/modules/booking/repository"
	credDto "lawlink-api/modules/credential/dto"
	notifService "lawlink-api/modules/notification/service"
	slotEntity "lawlink-api/modules/slot/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlotStore backs both the slot and booking repository fakes.
type fakeSlotStore struct {
	slots map[uuid.UUID]*slotEntity.Slot
}

func (f *fakeSlotStore) Create(_ context.Context, slot *slotEntity.Slot) error {
	slot.ID = uuid.New()
	f.slots[slot.ID] = slot
	return nil
}

func (f *fakeSlotStore) GetByID(_ context.Context, id uuid.UUID) (*slotEntity.Slot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "not found", nil)
	}
	return s, nil
}

func (f *fakeSlotStore) ListByProvider(_ context.Context, _ uuid.UUID, _, _ *time.Time, _ bool) ([]slotEntity.Slot, error) {
	return nil, nil
}

func (f *fakeSlotStore) ReserveTx(_ context.Context, _ *sqlx.Tx, slotID uuid.UUID) error {
	s, ok := f.slots[slotID]
	if !ok || s.IsBooked {
		return errors.NewAppError(errors.ErrSlotUnavailable, "unavailable", nil)
	}
	s.IsBooked = true
	return nil
}

func (f *fakeSlotStore) ReleaseTx(_ context.Context, _ *sqlx.Tx, slotID uuid.UUID) error {
	if s, ok := f.slots[slotID]; ok {
		s.IsBooked = false
	}
	return nil
}

func (f *fakeSlotStore) Release(_ context.Context, slotID uuid.UUID) error {
	return f.ReleaseTx(context.Background(), nil, slotID)
}

func (f *fakeSlotStore) CountBookingReferences(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

func (f *fakeSlotStore) Delete(_ context.Context, slotID uuid.UUID) error {
	delete(f.slots, slotID)
	return nil
}

type fakeBookingRepo struct {
	slots    *fakeSlotStore
	bookings map[uuid.UUID]*entity.Booking
}

func (f *fakeBookingRepo) CreateWithSlot(ctx context.Context, booking *entity.Booking) error {
	if err := f.slots.ReserveTx(ctx, nil, booking.SlotID); err != nil {
		return err
	}
	booking.ID = uuid.New()
	booking.Status = entity.StatusPending
	f.bookings[booking.ID] = booking
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, errors.NewAppError(errors.ErrNotFound, "not found", nil)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) GetDetail(ctx context.Context, id uuid.UUID) (*entity.BookingDetail, error) {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s := f.slots.slots[b.SlotID]
	return &entity.BookingDetail{Booking: *b, StartTime: s.StartTime, EndTime: s.EndTime, Price: s.Price}, nil
}

func (f *fakeBookingRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.BookingDetail, error) {
	var out []entity.BookingDetail
	for id := range f.bookings {
		d, _ := f.GetDetail(context.Background(), id)
		if d.ProviderID == userID || d.RequesterID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	b, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if b.Status == s {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBookingRepo) CancelWithSlot(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	b, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	if b.Status != entity.StatusPending && b.Status != entity.StatusConfirmed {
		return false, nil
	}
	b.Status = entity.StatusCancelled
	b.CancelReason = &reason
	f.slots.slots[b.SlotID].IsBooked = false
	return true, nil
}

func (f *fakeBookingRepo) SetCalendarEventID(_ context.Context, id uuid.UUID, eventID string) error {
	f.bookings[id].CalendarEventID = &eventID
	return nil
}

func (f *fakeBookingRepo) MarkReminderSent(_ context.Context, id uuid.UUID) (bool, error) {
	b, ok := f.bookings[id]
	if !ok || b.ReminderSent {
		return false, nil
	}
	b.ReminderSent = true
	return true, nil
}

func (f *fakeBookingRepo) ListDueReminders(context.Context, time.Time, time.Time) ([]repository.ReminderRow, error) {
	return nil, nil
}

func (f *fakeBookingRepo) RepairLedger(context.Context) (int, int, error) { return 0, 0, nil }

func (f *fakeBookingRepo) ExpirePending(context.Context, time.Duration) (int, error) { return 0, nil }

type fakeRecipients struct{}

func (fakeRecipients) Recipient(_ context.Context, userID uuid.UUID) (notifService.Recipient, error) {
	return notifService.Recipient{UserID: userID}, nil
}

type fakeCalendar struct {
	created      int
	deleted      []string
	failCreate   bool
	notConnected bool
}

func (f *fakeCalendar) CreateBookingEvent(_ context.Context, _ uuid.UUID, _ *credDto.CalendarEventRequest) (string, error) {
	if f.notConnected {
		return "", errors.NewAppError(errors.ErrNotConnected, "not connected", nil)
	}
	if f.failCreate {
		return "", errors.NewAppError(errors.ErrCalendarSync, "sync failed", nil)
	}
	f.created++
	return "evt-1", nil
}

func (f *fakeCalendar) DeleteBookingEvent(_ context.Context, _ uuid.UUID, eventID string) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeNotifier struct {
	dispatched []notifService.Message
}

func (f *fakeNotifier) Dispatch(_ context.Context, _ notifService.Recipient, msg notifService.Message) notifService.DispatchResult {
	f.dispatched = append(f.dispatched, msg)
	return notifService.DispatchResult{}
}

func (f *fakeNotifier) countType(msgType string) int {
	n := 0
	for _, m := range f.dispatched {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

type harness struct {
	svc      *BookingService
	repo     *fakeBookingRepo
	slots    *fakeSlotStore
	calendar *fakeCalendar
	notifier *fakeNotifier
}

func newHarness() *harness {
	slots := &fakeSlotStore{slots: map[uuid.UUID]*slotEntity.Slot{}}
	repo := &fakeBookingRepo{slots: slots, bookings: map[uuid.UUID]*entity.Booking{}}
	calendar := &fakeCalendar{}
	notifier := &fakeNotifier{}
	svc := NewBookingService(repo, slots, fakeRecipients{}, calendar, notifier)
	return &harness{svc: svc, repo: repo, slots: slots, calendar: calendar, notifier: notifier}
}

func (h *harness) seedSlot(providerID uuid.UUID) *slotEntity.Slot {
	start := time.Now().Add(24 * time.Hour)
	slot := &slotEntity.Slot{
		ProviderID: providerID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Price:      500000,
		BaseEntity: coreEntity.BaseEntity{ID: uuid.New()},
	}
	h.slots.slots[slot.ID] = slot
	return slot
}

func TestCreateBooking(t *testing.T) {
	h := newHarness()
	providerID := uuid.New()
	slot := h.seedSlot(providerID)

	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusPending, booking.Status)
	assert.True(t, h.slots.slots[slot.ID].IsBooked)
	assert.Equal(t, 1, h.notifier.countType("booking_created"))
}

func TestCreateBookingSlotTaken(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	slot.IsBooked = true

	_, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.Error(t, err)

	ae, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrSlotUnavailable, ae.Code)
}

func TestCreateBookingOwnSlotRejected(t *testing.T) {
	h := newHarness()
	providerID := uuid.New()
	slot := h.seedSlot(providerID)

	_, err := h.svc.Create(context.Background(), providerID, slot.ID)
	require.Error(t, err)
	assert.False(t, h.slots.slots[slot.ID].IsBooked)
}

func TestConfirmBooking(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	confirmed, err := h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusConfirmed, confirmed.Status)
	assert.Equal(t, 1, h.calendar.created)
	// Both parties are told exactly once.
	assert.Equal(t, 2, h.notifier.countType("booking_confirmed"))
}

func TestConfirmIdempotent(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)

	again, err := h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusConfirmed, again.Status)
	// No second calendar event and no repeated notifications.
	assert.Equal(t, 1, h.calendar.created)
	assert.Equal(t, 2, h.notifier.countType("booking_confirmed"))
}

func TestConfirmFromTerminalStateFails(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), booking.ID, "đổi ý")
	require.NoError(t, err)

	_, err = h.svc.Confirm(context.Background(), booking.ID)
	require.Error(t, err)

	ae, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidTransition, ae.Code)
}

func TestConfirmSurvivesCalendarFailure(t *testing.T) {
	h := newHarness()
	h.calendar.failCreate = true
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	confirmed, err := h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, confirmed.Status)
	assert.Nil(t, confirmed.CalendarEventID)
	assert.NotEmpty(t, confirmed.CalendarSyncWarning)
}

func TestConfirmWithoutCalendarConnection(t *testing.T) {
	h := newHarness()
	h.calendar.notConnected = true
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	confirmed, err := h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusConfirmed, confirmed.Status)
	assert.Empty(t, confirmed.CalendarSyncWarning)
}

func TestCancelReleasesSlot(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	cancelled, err := h.svc.Cancel(context.Background(), booking.ID, "bận đột xuất")
	require.NoError(t, err)

	assert.True(t, cancelled)
	assert.False(t, h.slots.slots[slot.ID].IsBooked)
	assert.Equal(t, 2, h.notifier.countType("booking_cancelled"))
}

func TestCancelTerminalIsNoOp(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	cancelled, err := h.svc.Cancel(context.Background(), booking.ID, "lần một")
	require.NoError(t, err)
	require.True(t, cancelled)

	cancelled, err = h.svc.Cancel(context.Background(), booking.ID, "lần hai")
	require.NoError(t, err)
	assert.False(t, cancelled)
	// No duplicate notifications from the no-op.
	assert.Equal(t, 2, h.notifier.countType("booking_cancelled"))
}

func TestCancelConfirmedDeletesCalendarEvent(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)

	cancelled, err := h.svc.Cancel(context.Background(), booking.ID, "khách huỷ")
	require.NoError(t, err)

	assert.True(t, cancelled)
	assert.Equal(t, []string{"evt-1"}, h.calendar.deleted)
	assert.False(t, h.slots.slots[slot.ID].IsBooked)
}

func TestCompleteBooking(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)

	completed, err := h.svc.Complete(context.Background(), booking.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.StatusCompleted, completed.Status)
	// The slot keeps its booked flag: the interval is history now.
	assert.True(t, h.slots.slots[slot.ID].IsBooked)
	assert.Equal(t, 2, h.notifier.countType("booking_completed"))
}

func TestCompletePendingFails(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Complete(context.Background(), booking.ID)
	require.Error(t, err)

	ae, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrInvalidTransition, ae.Code)
	assert.Zero(t, h.notifier.countType("booking_completed"))
}

func TestCompleteTwiceFails(t *testing.T) {
	h := newHarness()
	slot := h.seedSlot(uuid.New())
	booking, err := h.svc.Create(context.Background(), uuid.New(), slot.ID)
	require.NoError(t, err)

	_, err = h.svc.Confirm(context.Background(), booking.ID)
	require.NoError(t, err)
	_, err = h.svc.Complete(context.Background(), booking.ID)
	require.NoError(t, err)

	_, err = h.svc.Complete(context.Background(), booking.ID)
	require.Error(t, err)
	// Exactly one completion notice per party.
	assert.Equal(t, 2, h.notifier.countType("booking_completed"))
}
