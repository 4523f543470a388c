package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/mail"
	repo "uptech/internal/repository"
)

type NewsletterUsecase struct {
	subs      repo.NewsletterRepository
	auditRepo repo.AuditLogRepository
	validator AuthValidator
	notifier  *Notifier
	now       func() time.Time
}

func NewNewsletterUsecase(
	subs repo.NewsletterRepository,
	auditRepo repo.AuditLogRepository,
	validator AuthValidator,
	notifier *Notifier,
) *NewsletterUsecase {
	return &NewsletterUsecase{subs: subs, auditRepo: auditRepo, validator: validator, notifier: notifier, now: time.Now}
}

func (u *NewsletterUsecase) Subscribe(ctx context.Context, email string) (EffectReport, error) {
	email = normalizeEmail(email)
	if err := u.validator.ValidateEmail(email); err != nil {
		return EffectReport{}, err
	}

	s, err := u.subs.FindByEmail(ctx, email)
	if err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	switch {
	case s == nil:
		err = u.subs.Create(ctx, &model.NewsletterSubscriber{
			Email:        email,
			Status:       model.Subscribed,
			SubscribedAt: u.now(),
		})
	case s.Status == model.Subscribed:
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "email already subscribed")
	default:
		// 解除済みなら再登録
		s.Status = model.Subscribed
		s.SubscribedAt = u.now()
		err = u.subs.Update(ctx, s)
	}
	if err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var rep EffectReport
	u.notifier.Email(ctx, &rep, email, "Newsletter Subscription", "newsletterSubscription", map[string]any{
		"Email": email,
	})
	return rep, nil
}

func (u *NewsletterUsecase) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return NewHTTPError(http.StatusBadRequest, "email required")
	}

	s, err := u.subs.FindByEmail(ctx, email)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if s == nil || s.Status != model.Subscribed {
		return NewHTTPError(http.StatusNotFound, "subscriber not found")
	}

	s.Status = model.Unsubscribed
	if err := u.subs.Update(ctx, s); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type SendNewsletterInput struct {
	Subject  string
	Message  string
	Template string
}

// 購読者全員に送る。個別の失敗は結果に積む
func (u *NewsletterUsecase) Send(ctx context.Context, actorAdminUserID int64, in SendNewsletterInput) (BroadcastResult, error) {
	subject := strings.TrimSpace(in.Subject)
	message := strings.TrimSpace(in.Message)
	tmpl := strings.TrimSpace(in.Template)
	if tmpl == "" {
		tmpl = "newsletter"
	}
	if subject == "" || message == "" {
		return BroadcastResult{}, NewHTTPError(http.StatusBadRequest, "subject and message required")
	}
	if !mail.Has(tmpl) {
		return BroadcastResult{}, NewHTTPError(http.StatusBadRequest, "unknown template")
	}

	subs, err := u.subs.ListSubscribed(ctx)
	if err != nil {
		return BroadcastResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if len(subs) == 0 {
		return BroadcastResult{}, NewHTTPError(http.StatusBadRequest, "no subscribers found")
	}

	var rep EffectReport
	for _, s := range subs {
		u.notifier.Email(ctx, &rep, s.Email, subject, tmpl, map[string]any{
			"Message": message,
			"Email":   s.Email,
		})
	}

	if err := recordAudit(ctx, u.auditRepo, auditEntry{
		Actor:    actorAdminUserID,
		Action:   model.AuditActionSendNewsletter,
		Resource: model.AuditResourceNewsletter,
		After:    map[string]any{"subject": subject, "template": tmpl, "recipients": len(subs)},
	}, u.now()); err != nil {
		return BroadcastResult{}, err
	}

	return BroadcastResult{Recipients: len(subs), Report: rep}, nil
}
