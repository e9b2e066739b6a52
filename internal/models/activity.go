package models

import "time"

// Activity actions recorded in the audit trail.
const (
	ActionLoginSuccess         = "LOGIN_SUCCESS"
	ActionLoginFailure         = "LOGIN_FAILURE"
	ActionLogout               = "LOGOUT"
	ActionRegistrationRequest  = "REGISTRATION_REQUEST"
	ActionRegistrationApproved = "REGISTRATION_APPROVED"
	ActionRegistrationRejected = "REGISTRATION_REJECTED"
	ActionEmailVerified        = "EMAIL_VERIFIED"
	ActionPasswordChanged      = "PASSWORD_CHANGED"
)

// ActivityLog is an append-only audit record. UserID is zero for anonymous actions.
type ActivityLog struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"index;not null;default:0"`
	Action    string    `json:"action" gorm:"type:varchar(64);index;not null"`
	Details   string    `json:"details" gorm:"type:text"`
	IPAddress string    `json:"ip_address" gorm:"type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for the ActivityLog model.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
