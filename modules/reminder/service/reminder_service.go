package service

import (
	"context"
	"fmt"
	"time"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/logger"
	bookingRepository "lawlink-api/modules/booking/repository"
	notifEntity "lawlink-api/modules/notification/entity"
	notifService "lawlink-api/modules/notification/service"

	"github.com/google/uuid"
)

// ReminderStore is the slice of the booking store the sweep needs.
type ReminderStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]bookingRepository.ReminderRow, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID) (bool, error)
}

type RecipientResolver interface {
	Recipient(ctx context.Context, userID uuid.UUID) (notifService.Recipient, error)
}

type Notifier interface {
	Dispatch(ctx context.Context, recipient notifService.Recipient, msg notifService.Message) notifService.DispatchResult
}

// Summary reports one sweep's outcome per delivery channel. Errors collects
// the failures behind the counters, one entry per claim, lookup, or delivery
// failure, keyed by booking so a failed reminder can be traced.
type Summary struct {
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Sent      map[string]int `json:"sent"`
	Failed    map[string]int `json:"failed"`
	Errors    []string       `json:"errors,omitempty"`
}

func (s *Summary) recordError(bookingID uuid.UUID, cause string) {
	s.Errors = append(s.Errors, fmt.Sprintf("booking %s: %s", bookingID, cause))
}

type ReminderService struct {
	store      ReminderStore
	recipients RecipientResolver
	notifier   Notifier
}

func NewReminderService(store ReminderStore, recipients RecipientResolver, notifier Notifier) *ReminderService {
	return &ReminderService{store: store, recipients: recipients, notifier: notifier}
}

// DispatchDue sends a reminder for every confirmed booking starting within
// the window. Each booking is claimed with a compare-and-set before any
// delivery, so overlapping sweeps never remind twice. Pass zero to use the
// configured window.
func (s *ReminderService) DispatchDue(ctx context.Context, window time.Duration) (*Summary, error) {
	if window <= 0 {
		window = resolveWindow()
	}

	now := time.Now()
	rows, err := s.store.ListDueReminders(ctx, now, now.Add(window))
	if err != nil {
		return nil, err
	}

	summary := &Summary{Sent: map[string]int{}, Failed: map[string]int{}}

	for _, row := range rows {
		claimed, err := s.store.MarkReminderSent(ctx, row.BookingID)
		if err != nil {
			logger.Error("ReminderService:DispatchDue:Claim:Error:", err)
			summary.recordError(row.BookingID, fmt.Sprintf("claim: %v", err))
			continue
		}
		if !claimed {
			summary.Skipped++
			continue
		}

		msg := notifService.Message{
			Title: "Nhắc lịch tư vấn",
			Body:  fmt.Sprintf("Bạn có buổi tư vấn lúc %s", row.StartTime.Format("15:04 02/01/2006")),
			Type:  notifEntity.TypeBookingReminder,
			Data:  map[string]interface{}{"booking_id": row.BookingID.String()},
		}
		s.remind(ctx, row.BookingID, row.ProviderID, msg, summary)
		s.remind(ctx, row.BookingID, row.RequesterID, msg, summary)
		summary.Processed++
	}

	if summary.Processed > 0 || summary.Skipped > 0 {
		logger.Info("ReminderService:DispatchDue:Done",
			"window", window, "processed", summary.Processed, "skipped", summary.Skipped)
	}
	return summary, nil
}

func (s *ReminderService) remind(ctx context.Context, bookingID, userID uuid.UUID, msg notifService.Message, summary *Summary) {
	recipient, err := s.recipients.Recipient(ctx, userID)
	if err != nil {
		logger.Warn("ReminderService:remind:Recipient", "userID", userID, "error", err)
		summary.recordError(bookingID, fmt.Sprintf("recipient %s: %v", userID, err))
		return
	}

	result := s.notifier.Dispatch(ctx, recipient, msg)
	for _, cr := range result.Results {
		if !cr.Attempted {
			continue
		}
		if cr.Sent {
			summary.Sent[cr.Channel]++
		} else {
			summary.Failed[cr.Channel]++
			if cr.Err != nil {
				summary.recordError(bookingID, fmt.Sprintf("%s: %v", cr.Channel, cr.Err))
			}
		}
	}
}

func resolveWindow() time.Duration {
	if w := config.Get().Reminder.Window; w > 0 {
		return w
	}
	return constants.DefaultReminderWindow
}
