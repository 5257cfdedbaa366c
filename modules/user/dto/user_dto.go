package dto

type UpdateNotificationSettingsRequest struct {
	PushEnabled *bool `json:"push_enabled"`
	SMSEnabled  *bool `json:"sms_enabled"`
}

type UserResponse struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	FullName    string  `json:"full_name"`
	Role        string  `json:"role"`
	PushEnabled bool    `json:"push_enabled"`
	SMSEnabled  bool    `json:"sms_enabled"`
}
