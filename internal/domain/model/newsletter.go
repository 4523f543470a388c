package model

import "time"

type SubscriptionStatus string

const (
	Subscribed   SubscriptionStatus = "Subscribed"
	Unsubscribed SubscriptionStatus = "Unsubscribed"
)

type NewsletterSubscriber struct {
	ID           int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string             `gorm:"uniqueIndex;not null" json:"email"`
	Status       SubscriptionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	SubscribedAt time.Time          `gorm:"not null" json:"subscribed_at"`
	UpdatedAt    time.Time          `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
