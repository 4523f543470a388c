package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"
)

type NotificationUsecase struct {
	notes     repo.NotificationRepository
	users     repo.UserRepository
	auditRepo repo.AuditLogRepository
	notifier  *Notifier
}

func NewNotificationUsecase(
	notes repo.NotificationRepository,
	users repo.UserRepository,
	auditRepo repo.AuditLogRepository,
	notifier *Notifier,
) *NotificationUsecase {
	return &NotificationUsecase{notes: notes, users: users, auditRepo: auditRepo, notifier: notifier}
}

func (u *NotificationUsecase) List(ctx context.Context, userID int64) ([]model.Notification, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.notes.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

// 他人の通知は存在しない扱い
func (u *NotificationUsecase) MarkRead(ctx context.Context, userID int64, notificationID int64) (model.Notification, error) {
	if notificationID <= 0 {
		return model.Notification{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	n, err := u.notes.MarkRead(ctx, userID, notificationID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Notification{}, NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return model.Notification{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return n, nil
}

func (u *NotificationUsecase) Delete(ctx context.Context, userID int64, notificationID int64) error {
	if notificationID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.notes.Delete(ctx, userID, notificationID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "notification not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type SendPromotionInput struct {
	Title   string
	Message string
}

type BroadcastResult struct {
	Recipients int          `json:"recipients"`
	Report     EffectReport `json:"report"`
}

// 全ユーザーに promotional 通知とメール。個別の失敗は結果に積む
func (u *NotificationUsecase) SendPromotion(ctx context.Context, actorAdminUserID int64, in SendPromotionInput) (BroadcastResult, error) {
	title := strings.TrimSpace(in.Title)
	message := strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return BroadcastResult{}, NewHTTPError(http.StatusBadRequest, "title and message required")
	}

	users, err := u.users.ListAll(ctx)
	if err != nil {
		return BroadcastResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var rep EffectReport
	for _, usr := range users {
		u.notifier.Notify(ctx, &rep, usr.ID, model.NotificationTypePromotional, model.CategoryPromotion,
			fmt.Sprintf("%s: %s", title, message))
		u.notifier.Email(ctx, &rep, usr.Email, title, "promotion", map[string]any{
			"Title":   title,
			"Message": message,
		})
	}

	if err := recordAudit(ctx, u.auditRepo, auditEntry{
		Actor:    actorAdminUserID,
		Action:   model.AuditActionSendPromotion,
		Resource: model.AuditResourceUser,
		After:    map[string]any{"title": title, "recipients": len(users)},
	}, time.Now()); err != nil {
		return BroadcastResult{}, err
	}

	return BroadcastResult{Recipients: len(users), Report: rep}, nil
}
