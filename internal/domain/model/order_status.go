package model

import "time"

// ステータス履歴。追記のみ。
type OrderStatusEntry struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID   int64      `gorm:"not null;index" json:"-"`
	Axis      StatusAxis `gorm:"type:varchar(20);not null" json:"-"`
	Status    string     `gorm:"type:varchar(50);not null" json:"status"`
	Timestamp time.Time  `gorm:"not null" json:"timestamp"`
}

func (OrderStatusEntry) TableName() string {
	return "order_status_history"
}
