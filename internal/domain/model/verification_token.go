package model

import "time"

type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "EMAIL_VERIFICATION"
	PurposePhoneVerification TokenPurpose = "PHONE_VERIFICATION"
	PurposePasswordReset     TokenPurpose = "PASSWORD_RESET"
)

// メール確認・SMSコード・パスワード再設定の一時トークン。
// 平文は保存しない（TokenHashのみ）。
type VerificationToken struct {
	ID        string       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    int64        `json:"user_id" gorm:"not null;index"`
	Purpose   TokenPurpose `json:"purpose" gorm:"type:varchar(30);not null;index"`
	TokenHash string       `json:"-" gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time    `json:"expires_at" gorm:"not null;index"`
	UsedAt    *time.Time   `json:"used_at" gorm:"index"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;autoCreateTime"`
}

func (t *VerificationToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
