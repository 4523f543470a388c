package model

import "time"

type NotificationType string

const (
	NotificationTypeOrder       NotificationType = "order"
	NotificationTypeAdmin       NotificationType = "admin"
	NotificationTypePromotional NotificationType = "promotional"
	NotificationTypeSystem      NotificationType = "system"
	NotificationTypeSecurity    NotificationType = "security"
)

type NotificationCategory string

const (
	CategoryOrderUpdate       NotificationCategory = "orderUpdate"
	CategoryNewOrder          NotificationCategory = "newOrder"
	CategoryProductUpdate     NotificationCategory = "productUpdate"
	CategoryAdminActivity     NotificationCategory = "adminActivity"
	CategoryPromotion         NotificationCategory = "promotion"
	CategorySystemAlert       NotificationCategory = "systemAlert"
	CategorySecurityAlert     NotificationCategory = "securityAlert"
	CategoryHolidaySale       NotificationCategory = "holidaySale"
	CategoryOrderCreation     NotificationCategory = "orderCreation"
	CategoryOrderCancellation NotificationCategory = "orderCancellation"
)

type NotificationStatus string

const (
	NotificationUnread NotificationStatus = "unread"
	NotificationRead   NotificationStatus = "read"
)

// 変更できるのは unread -> read だけ
type Notification struct {
	ID        int64                `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64                `gorm:"not null;index" json:"user_id"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Type      NotificationType     `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory `gorm:"type:varchar(30);not null" json:"category"`
	Status    NotificationStatus   `gorm:"type:varchar(10);not null;default:'unread';index" json:"status"`
	CreatedAt time.Time            `gorm:"not null;index" json:"created_at"`
}
