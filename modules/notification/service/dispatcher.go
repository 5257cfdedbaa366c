package service

import (
	"context"
	"time"

	"lawlink-api/core/constants"
	"lawlink-api/core/logger"
	"lawlink-api/core/worker"
	"lawlink-api/modules/notification/dto"

	"github.com/google/uuid"
)

// Delivery channels.
const (
	ChannelInApp = "in_app"
	ChannelPush  = "push"
	ChannelSMS   = "sms"
)

// Recipient carries the contact surface and channel preferences of one user.
type Recipient struct {
	UserID      uuid.UUID
	Phone       string
	DeviceToken string
	PushEnabled bool
	SMSEnabled  bool
}

// Message is a channel-agnostic notification payload.
type Message struct {
	Title string
	Body  string
	Type  string
	Data  map[string]interface{}
}

// ChannelResult records one channel's outcome. A channel skipped by
// preference or missing contact info is Attempted=false with no error.
type ChannelResult struct {
	Channel   string
	Attempted bool
	Sent      bool
	Err       error
}

type DispatchResult struct {
	Results []ChannelResult
}

// Sent reports whether the given channel delivered.
func (r DispatchResult) Sent(channel string) bool {
	for _, cr := range r.Results {
		if cr.Channel == channel {
			return cr.Sent
		}
	}
	return false
}

// Attempted reports whether the given channel was tried at all.
func (r DispatchResult) Attempted(channel string) bool {
	for _, cr := range r.Results {
		if cr.Channel == channel {
			return cr.Attempted
		}
	}
	return false
}

// Dispatcher fans one message out to every eligible channel. Channels fail
// independently: an SMS gateway outage never blocks the in-app notification.
type Dispatcher struct {
	notifications *NotificationService
	sms           SMSSender
	push          PushSender
	smsRetry      worker.RetryPolicy
}

func NewDispatcher(notifications *NotificationService, sms SMSSender, push PushSender) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		sms:           sms,
		push:          push,
		smsRetry: worker.RetryPolicy{
			MaxRetries:    constants.SMSMaxRetries,
			InitialDelay:  constants.SMSInitialDelay,
			MaxDelay:      constants.SMSMaxDelay,
			BackoffFactor: 2,
		},
	}
}

// Dispatch delivers msg to recipient over every channel the recipient has
// enabled. It always returns a result per channel and never returns an error:
// delivery failures are recorded in the result and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, recipient Recipient, msg Message) DispatchResult {
	var result DispatchResult

	result.Results = append(result.Results, d.dispatchInApp(ctx, recipient, msg))
	result.Results = append(result.Results, d.dispatchPush(ctx, recipient, msg))
	result.Results = append(result.Results, d.dispatchSMS(ctx, recipient, msg))

	return result
}

func (d *Dispatcher) dispatchInApp(ctx context.Context, recipient Recipient, msg Message) ChannelResult {
	cr := ChannelResult{Channel: ChannelInApp, Attempted: true}

	err := d.notifications.Create(ctx, &dto.CreateNotificationRequest{
		UserID:  recipient.UserID,
		Title:   msg.Title,
		Message: msg.Body,
		Type:    msg.Type,
		Data:    msg.Data,
	})
	if err != nil {
		logger.Error("Dispatcher:InApp:Failed", "userID", recipient.UserID, "type", msg.Type, "error", err)
		cr.Err = err
		return cr
	}
	cr.Sent = true
	return cr
}

func (d *Dispatcher) dispatchPush(ctx context.Context, recipient Recipient, msg Message) ChannelResult {
	cr := ChannelResult{Channel: ChannelPush}
	if !recipient.PushEnabled || recipient.DeviceToken == "" || d.push == nil {
		return cr
	}

	cr.Attempted = true
	if err := d.push.Send(ctx, recipient.DeviceToken, msg.Title, msg.Body, msg.Data); err != nil {
		logger.Error("Dispatcher:Push:Failed", "userID", recipient.UserID, "type", msg.Type, "error", err)
		cr.Err = err
		return cr
	}
	cr.Sent = true
	return cr
}

func (d *Dispatcher) dispatchSMS(ctx context.Context, recipient Recipient, msg Message) ChannelResult {
	cr := ChannelResult{Channel: ChannelSMS}
	if !recipient.SMSEnabled || recipient.Phone == "" || d.sms == nil {
		return cr
	}

	cr.Attempted = true
	var lastErr error
	for attempt := 1; attempt <= d.smsRetry.MaxRetries; attempt++ {
		lastErr = d.sms.Send(ctx, recipient.Phone, msg.Body)
		if lastErr == nil {
			cr.Sent = true
			return cr
		}
		logger.Warn("Dispatcher:SMS:Attempt", "userID", recipient.UserID, "attempt", attempt, "error", lastErr)

		if attempt == d.smsRetry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			cr.Err = ctx.Err()
			return cr
		case <-time.After(d.smsRetry.NextDelay(attempt)):
		}
	}

	logger.Error("Dispatcher:SMS:Failed", "userID", recipient.UserID, "type", msg.Type, "error", lastErr)
	cr.Err = lastErr
	return cr
}
