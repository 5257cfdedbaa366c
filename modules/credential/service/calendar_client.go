package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lawlink-api/core/constants"
	"lawlink-api/modules/credential/dto"
)

const googleCalendarAPIBase = "https://www.googleapis.com/calendar/v3"

// CalendarClient performs raw calls against the Google Calendar events API.
type CalendarClient struct {
	baseURL string
	client  *http.Client
}

func NewCalendarClient() *CalendarClient {
	return &CalendarClient{
		baseURL: googleCalendarAPIBase,
		client:  &http.Client{Timeout: constants.GatewayTimeout},
	}
}

// NewCalendarClientWith is used by tests to point at a local server.
func NewCalendarClientWith(baseURL string, client *http.Client) *CalendarClient {
	return &CalendarClient{baseURL: baseURL, client: client}
}

func (c *CalendarClient) CreateEvent(ctx context.Context, accessToken string, req *dto.CalendarEventRequest) (string, error) {
	event := map[string]interface{}{
		"summary":     req.Title,
		"description": req.Description,
		"start": map[string]string{
			"dateTime": req.StartTime.Format(time.RFC3339),
			"timeZone": "Asia/Ho_Chi_Minh",
		},
		"end": map[string]string{
			"dateTime": req.EndTime.Format(time.RFC3339),
			"timeZone": "Asia/Ho_Chi_Minh",
		},
	}
	if len(req.Attendees) > 0 {
		attendees := make([]map[string]string, len(req.Attendees))
		for i, email := range req.Attendees {
			attendees[i] = map[string]string{"email": email}
		}
		event["attendees"] = attendees
	}

	eventJSON, _ := json.Marshal(event)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calendars/primary/events", strings.NewReader(string(eventJSON)))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("google calendar API error: %s", string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	eventID, _ := result["id"].(string)
	if eventID == "" {
		return "", fmt.Errorf("google calendar API returned no event id")
	}
	return eventID, nil
}

func (c *CalendarClient) DeleteEvent(ctx context.Context, accessToken, eventID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/calendars/primary/events/"+eventID, nil)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// 404/410 mean the event is already gone, which is fine for a cleanup call.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("google calendar API error: %s", string(body))
}
