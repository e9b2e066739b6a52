package models

import "time"

// RegistrationRequest is a pending voter application awaiting admin review.
type RegistrationRequest struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	Username             string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Email                string    `json:"email" gorm:"type:varchar(191);uniqueIndex;not null"`
	FullName             string    `json:"full_name" gorm:"type:varchar(191);not null"`
	Phone                string    `json:"phone" gorm:"type:varchar(32);not null"`
	Address              string    `json:"address" gorm:"type:text;not null"`
	DateOfBirth          time.Time `json:"date_of_birth" gorm:"type:date;not null"`
	Gender               string    `json:"gender" gorm:"type:varchar(32);not null"`
	NationalID           string    `json:"national_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	VerificationDocument string    `json:"verification_document" gorm:"type:varchar(255);not null"`
	CreatedAt            time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for the RegistrationRequest model.
func (RegistrationRequest) TableName() string {
	return "registration_requests"
}
