package usecase

import (
	"context"
	"fmt"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	"uptech/internal/infra/mail"
	repo "uptech/internal/repository"

	"github.com/rs/zerolog"
)

// 副作用の種類
const (
	EffectNotification = "notification"
	EffectEmail        = "email"
	EffectSMS          = "sms"
	EffectEvent        = "event"
)

type EffectFailure struct {
	Effect string `json:"effect"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

// 主処理は成功したが失敗した副作用（通知・メール・イベント）
type EffectReport struct {
	Failures []EffectFailure `json:"failures,omitempty"`
}

func (r *EffectReport) Add(effect, target string, err error) {
	r.Failures = append(r.Failures, EffectFailure{Effect: effect, Target: target, Error: err.Error()})
}

func (r *EffectReport) Merge(other EffectReport) {
	r.Failures = append(r.Failures, other.Failures...)
}

func (r EffectReport) Failed() int {
	return len(r.Failures)
}

// 通知・メール・イベントの送信口。失敗は EffectReport に積んで warn ログ。
type Notifier struct {
	notes  repo.NotificationRepository
	users  repo.UserRepository
	mailer Mailer
	events OrderEventPublisher
	log    zerolog.Logger
}

func NewNotifier(
	notes repo.NotificationRepository,
	users repo.UserRepository,
	mailer Mailer,
	events OrderEventPublisher,
	log zerolog.Logger,
) *Notifier {
	return &Notifier{notes: notes, users: users, mailer: mailer, events: events, log: log}
}

func (n *Notifier) fail(rep *EffectReport, effect, target string, err error) {
	rep.Add(effect, target, err)
	n.log.Warn().Err(err).Str("effect", effect).Str("target", target).Msg("side effect failed")
}

func (n *Notifier) Notify(ctx context.Context, rep *EffectReport, userID int64, typ model.NotificationType, cat model.NotificationCategory, message string) {
	err := n.notes.Create(ctx, &model.Notification{
		UserID:    userID,
		Message:   message,
		Type:      typ,
		Category:  cat,
		Status:    model.NotificationUnread,
		CreatedAt: time.Now(),
	})
	if err != nil {
		n.fail(rep, EffectNotification, fmt.Sprintf("user:%d", userID), err)
	}
}

// 管理者全員に adminActivity
func (n *Notifier) NotifyAdmins(ctx context.Context, rep *EffectReport, message string) {
	admins, err := n.users.ListByRole(ctx, model.RoleAdmin)
	if err != nil {
		n.fail(rep, EffectNotification, "admins", err)
		return
	}
	for _, a := range admins {
		n.Notify(ctx, rep, a.ID, model.NotificationTypeAdmin, model.CategoryAdminActivity, message)
	}
}

func (n *Notifier) Email(ctx context.Context, rep *EffectReport, to, subject, template string, data any) {
	msg, err := mail.NewMessage(to, subject, template, data)
	if err == nil {
		err = n.mailer.Send(ctx, msg)
	}
	if err != nil {
		n.fail(rep, EffectEmail, to, err)
	}
}

// ユーザーIDからメールアドレスを引いて送る
func (n *Notifier) EmailUser(ctx context.Context, rep *EffectReport, userID int64, subject, template string, data func(u *model.User) any) {
	u, err := n.users.FindByID(ctx, userID)
	if err == nil && u == nil {
		err = repo.ErrNotFound
	}
	if err != nil {
		n.fail(rep, EffectEmail, fmt.Sprintf("user:%d", userID), err)
		return
	}
	n.Email(ctx, rep, u.Email, subject, template, data(u))
}

func (n *Notifier) Publish(ctx context.Context, rep *EffectReport, ev event.OrderEvent) {
	if err := n.events.PublishOrderEvent(ctx, ev); err != nil {
		n.fail(rep, EffectEvent, string(ev.Type), err)
	}
}
