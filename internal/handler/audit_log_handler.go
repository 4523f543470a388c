package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/infra/activity"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuditLogService interface {
	List(ctx context.Context, f repository.AuditLogFilter) (usecase.AuditLogListOutput, error)
}

type ActivityReader interface {
	Recent(ctx context.Context, userID *int64, limit int64) ([]activity.Entry, error)
}

// 管理者向けの操作履歴（監査ログ・アクセス記録）
type AuditLogHandler struct {
	uc       AuditLogService
	activity ActivityReader
}

func NewAuditLogHandler(uc AuditLogService, activity ActivityReader) *AuditLogHandler {
	return &AuditLogHandler{uc: uc, activity: activity}
}

func (h *AuditLogHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	admin := api.Group("/admin", adminGuards(cfg, userRepo)...)

	admin.GET("/audit-logs", h.list)
	admin.GET("/activity", h.recentActivity)
}

func (h *AuditLogHandler) list(c echo.Context) error {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return badRequest(c, "invalid offset")
	}

	f := repository.AuditLogFilter{Limit: limit, Offset: offset}

	if f.Actor, ok = queryInt64Ptr(c, "actorUserId"); !ok {
		return badRequest(c, "invalid actorUserId")
	}
	if f.ResourceID, ok = queryInt64Ptr(c, "resourceId"); !ok {
		return badRequest(c, "invalid resourceId")
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("resourceType"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("from"); v != "" {
		if f.From, ok = usecase.ParseDateTimeRFC3339(v); !ok {
			return badRequest(c, "invalid from")
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if f.To, ok = usecase.ParseDateTimeRFC3339(v); !ok {
			return badRequest(c, "invalid to")
		}
	}

	out, err := h.uc.List(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuditLogHandler) recentActivity(c echo.Context) error {
	userID, ok := queryInt64Ptr(c, "userId")
	if !ok {
		return badRequest(c, "invalid userId")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.activity.Recent(c.Request().Context(), userID, int64(limit))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "activity store error"})
	}
	return c.JSON(http.StatusOK, out)
}
