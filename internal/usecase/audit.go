package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"
)

// 管理者操作1件。Before/After はJSONにして残す（nilは {}）
type auditEntry struct {
	Actor    int64
	Action   model.AuditAction
	Resource model.AuditResourceType
	ID       int64
	Before   any
	After    any
}

// 監査ログが書けなければ操作自体を失敗扱いにする
func recordAudit(ctx context.Context, r repo.AuditLogRepository, e auditEntry, at time.Time) error {
	err := r.Create(ctx, model.AuditLog{
		ActorUserID:  e.Actor,
		Action:       e.Action,
		ResourceType: e.Resource,
		ResourceID:   e.ID,
		BeforeJSON:   toJSON(e.Before),
		AfterJSON:    toJSON(e.After),
		CreatedAt:    at,
	})
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func toJSON(v any) string {
	if v == nil {
		return "{}"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
