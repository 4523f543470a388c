package model

import "time"

// 管理者操作の種類
type AuditAction string

const (
	AuditActionCreateProduct     AuditAction = "CREATE_PRODUCT"
	AuditActionUpdateProduct     AuditAction = "UPDATE_PRODUCT"
	AuditActionDeleteProduct     AuditAction = "DELETE_PRODUCT"
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	AuditActionDeleteOrder       AuditAction = "DELETE_ORDER"
	AuditActionUpdateUserRole    AuditAction = "UPDATE_USER_ROLE"
	AuditActionDeleteUser        AuditAction = "DELETE_USER"
	AuditActionForceLogout       AuditAction = "FORCE_LOGOUT"
	AuditActionSendPromotion     AuditAction = "SEND_PROMOTION"
	AuditActionSendNewsletter    AuditAction = "SEND_NEWSLETTER"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct    AuditResourceType = "product"
	AuditResourceOrder      AuditResourceType = "order"
	AuditResourceUser       AuditResourceType = "user"
	AuditResourceNewsletter AuditResourceType = "newsletter"
)

// 監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID           int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID  int64             `gorm:"not null;index" json:"actor_user_id"`
	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//JSON文字列で保存する
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
