package model

import "time"

const PurposePasswordReset = "password_reset"

// VerificationToken is a one-time token sent to a user by mail. Only the
// sha256 of the token is stored, the raw value only ever exists in the mail
type VerificationToken struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;not null"`
	Token     string `gorm:"uniqueIndex;not null"`
	Purpose   string `gorm:"not null"`
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
	Used      bool `gorm:"not null;default:false"`
}
