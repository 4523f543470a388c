package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	"uptech/internal/infra/mail"
	"uptech/internal/infra/payment"
	repo "uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders   repo.OrderRepository
	carts    repo.CartRepository
	products repo.ProductRepository
	audit    repo.AuditLogRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository      { return r.orders }
func (r *TxReposMock) Carts() repo.CartRepository        { return r.carts }
func (r *TxReposMock) Products() repo.ProductRepository  { return r.products }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository { return r.audit }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByIDForUpdate(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order *model.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepoMock) AppendStatus(ctx context.Context, order model.Order, entry model.OrderStatusEntry) error {
	args := m.Called(ctx, order, entry)
	return args.Error(0)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) FindByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Save(ctx context.Context, cart *model.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	found, _ := args.Get(0).(map[int64]model.Product)
	return found, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, int64, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Get(1).(int64), args.Error(2)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) IncrementTokenVersion(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *UserRepoMock) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) ListAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *UserRepoMock) List(ctx context.Context, f repo.UserListFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, f)
	users, _ := args.Get(0).([]model.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *UserRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type NotificationRepoMock struct{ mock.Mock }

func (m *NotificationRepoMock) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *NotificationRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Notification, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Notification)
	return items, args.Error(1)
}

func (m *NotificationRepoMock) MarkRead(ctx context.Context, userID int64, id int64) (model.Notification, error) {
	args := m.Called(ctx, userID, id)
	n, _ := args.Get(0).(model.Notification)
	return n, args.Error(1)
}

func (m *NotificationRepoMock) Delete(ctx context.Context, userID int64, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// 作成された通知（userID, category）を取り出す
func (m *NotificationRepoMock) created() []model.Notification {
	var out []model.Notification
	for _, c := range m.Calls {
		if c.Method == "Create" {
			out = append(out, *c.Arguments.Get(1).(*model.Notification))
		}
	}
	return out
}

type TokenRepoMock struct{ mock.Mock }

func (m *TokenRepoMock) Create(ctx context.Context, t *model.VerificationToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TokenRepoMock) FindByHash(ctx context.Context, purpose model.TokenPurpose, hash string) (*model.VerificationToken, error) {
	args := m.Called(ctx, purpose, hash)
	t, _ := args.Get(0).(*model.VerificationToken)
	return t, args.Error(1)
}

func (m *TokenRepoMock) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *TokenRepoMock) DeleteByUser(ctx context.Context, userID int64, purpose model.TokenPurpose) error {
	args := m.Called(ctx, userID, purpose)
	return args.Error(0)
}

type NewsletterRepoMock struct{ mock.Mock }

func (m *NewsletterRepoMock) FindByEmail(ctx context.Context, email string) (*model.NewsletterSubscriber, error) {
	args := m.Called(ctx, email)
	s, _ := args.Get(0).(*model.NewsletterSubscriber)
	return s, args.Error(1)
}

func (m *NewsletterRepoMock) Create(ctx context.Context, s *model.NewsletterSubscriber) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *NewsletterRepoMock) Update(ctx context.Context, s *model.NewsletterSubscriber) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *NewsletterRepoMock) ListSubscribed(ctx context.Context) ([]model.NewsletterSubscriber, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]model.NewsletterSubscriber)
	return subs, args.Error(1)
}

type ContactRepoMock struct{ mock.Mock }

func (m *ContactRepoMock) Create(ctx context.Context, msg *model.ContactMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *ContactRepoMock) List(ctx context.Context) ([]model.ContactMessage, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.ContactMessage)
	return items, args.Error(1)
}

func (m *ContactRepoMock) FindByID(ctx context.Context, id int64) (model.ContactMessage, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(model.ContactMessage)
	return msg, args.Error(1)
}

func (m *ContactRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// 外部サービス mocks
// =====================

type MailerMock struct{ mock.Mock }

func (m *MailerMock) Send(ctx context.Context, msg mail.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type SMSMock struct{ mock.Mock }

func (m *SMSMock) Send(ctx context.Context, to string, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) PublishOrderEvent(ctx context.Context, ev event.OrderEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateCheckout(ctx context.Context, items []payment.Item, currency string) (string, error) {
	args := m.Called(ctx, items, currency)
	return args.String(0), args.Error(1)
}

type AuthValidatorMock struct{ mock.Mock }

func (m *AuthValidatorMock) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidatePassword(password string) error {
	args := m.Called(password)
	return args.Error(0)
}

func (m *AuthValidatorMock) ValidateEmail(email string) error {
	args := m.Called(email)
	return args.Error(0)
}

// =====================
// Helpers
// =====================

// 副作用の送り先をまとめたもの
type effectMocks struct {
	notes  *NotificationRepoMock
	users  *UserRepoMock
	mailer *MailerMock
	events *PublisherMock
}

func newEffectMocks() *effectMocks {
	return &effectMocks{
		notes:  new(NotificationRepoMock),
		users:  new(UserRepoMock),
		mailer: new(MailerMock),
		events: new(PublisherMock),
	}
}

func (e *effectMocks) notifier() *usecase.Notifier {
	return usecase.NewNotifier(e.notes, e.users, e.mailer, e.events, zerolog.Nop())
}

// HTTPErrorの実装詳細に依存しない
func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	if assert.True(t, ok, "err=%v is not HTTPError", err) {
		assert.Equal(t, want, he.Status)
	}
}
