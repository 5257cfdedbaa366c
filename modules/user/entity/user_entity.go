package entity

import (
	"lawlink-api/core/entity"
)

type User struct {
	Email       string  `db:"email" json:"email"`
	Phone       *string `db:"phone" json:"phone"`
	FullName    string  `db:"full_name" json:"full_name"`
	Role        string  `db:"role" json:"role"`
	DeviceToken *string `db:"device_token" json:"-"`
	PushEnabled bool    `db:"push_enabled" json:"push_enabled"`
	SMSEnabled  bool    `db:"sms_enabled" json:"sms_enabled"`
	entity.BaseEntity
}
