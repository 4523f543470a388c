package usecase

import (
	"context"
	"net/http"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"
)

type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

type AuditLogListOutput struct {
	Items  []model.AuditLog `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// 管理画面の監査ログ一覧
func (u *AuditLogUsecase) List(ctx context.Context, f repo.AuditLogFilter) (AuditLogListOutput, error) {
	if f.Limit < 1 || f.Limit > 200 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if f.Offset < 0 {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return AuditLogListOutput{}, NewHTTPError(http.StatusBadRequest, "from must be <= to")
	}

	logs, total, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return AuditLogListOutput{Items: logs, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}
