package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/infra/event"
	repo "uptech/internal/repository"
)

type OrderUsecase struct {
	tx      repo.TransactionManager
	orders  repo.OrderRepository
	tracker *orderTracker
}

func NewOrderUsecase(tx repo.TransactionManager, orders repo.OrderRepository, notifier *Notifier) *OrderUsecase {
	return &OrderUsecase{
		tx:      tx,
		orders:  orders,
		tracker: &orderTracker{tx: tx, notifier: notifier, now: time.Now},
	}
}

type PlaceOrderItem struct {
	ProductID int64
	Quantity  int64
}

type PlaceOrderInput struct {
	Items          []PlaceOrderItem
	IdempotencyKey string
}

type OrderStatusOutput struct {
	OrderID               int64               `json:"order_id"`
	PaymentStatus         string              `json:"payment_status"`
	DeliveryStatus        string              `json:"delivery_status"`
	PaymentStatusHistory  []StatusEntryOutput `json:"payment_status_history"`
	DeliveryStatusHistory []StatusEntryOutput `json:"delivery_status_history"`
}

var errIdempotencyRace = errors.New("idempotency key race")

// 注文作成。商品価格をスナップショットし、合計はここで1回だけ計算する。
// 同じ冪等キーなら既存注文をそのまま返す（副作用なし）。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, EffectReport, error) {
	if userID <= 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if len(in.Items) == 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "order items required")
	}
	for _, it := range in.Items {
		if it.ProductID <= 0 {
			return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity < 1 {
			return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if len(key) > 255 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	var (
		created  model.Order
		replayed bool
	)

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if key != "" {
			existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if found {
				created, replayed = existing, true
				return nil
			}
		}

		ids := make([]int64, 0, len(in.Items))
		for _, it := range in.Items {
			ids = append(ids, it.ProductID)
		}
		products, err := r.Products().FindByIDs(ctx, ids)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//スナップショット
		items := make([]model.OrderItem, 0, len(in.Items))
		for _, it := range in.Items {
			p, ok := products[it.ProductID]
			if !ok {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			items = append(items, model.OrderItem{
				ProductID:           p.ID,
				ProductNameSnapshot: p.Name,
				UnitPriceSnapshot:   p.Price,
				Quantity:            it.Quantity,
			})
		}

		o, err := model.NewOrder(userID, items, u.tracker.now())
		if err != nil {
			return NewHTTPError(http.StatusBadRequest, "invalid order")
		}
		if key != "" {
			o.IdempotencyKey = &key
		}

		if err := r.Orders().Create(ctx, &o); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return errIdempotencyRace
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		created = o
		return nil
	})

	//同時に同じキーが入った: 先に入った方を返す
	if errors.Is(err, errIdempotencyRace) {
		existing, found, err2 := u.orders.FindByIdempotencyKey(ctx, userID, key)
		if err2 != nil || !found {
			return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusConflict, "idempotency conflict")
		}
		return toOrderOutput(existing), EffectReport{}, nil
	}
	if err != nil {
		return OrderOutput{}, EffectReport{}, err
	}
	if replayed {
		return toOrderOutput(created), EffectReport{}, nil
	}

	return toOrderOutput(created), u.fanOutCreated(ctx, created), nil
}

func (u *OrderUsecase) fanOutCreated(ctx context.Context, o model.Order) EffectReport {
	var rep EffectReport
	n := u.tracker.notifier

	n.EmailUser(ctx, &rep, o.UserID, "Order Confirmation - UpTech", "orderConfirmation", func(usr *model.User) any {
		items := make([]map[string]any, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, map[string]any{
				"Name":      it.ProductNameSnapshot,
				"Quantity":  it.Quantity,
				"UnitPrice": it.UnitPriceSnapshot.StringFixed(2),
			})
		}
		return map[string]any{
			"Name":    usr.FirstName,
			"OrderID": o.ID,
			"Items":   items,
			"Total":   o.TotalAmount.StringFixed(2),
		}
	})

	n.Notify(ctx, &rep, o.UserID, model.NotificationTypeOrder, model.CategoryOrderCreation,
		fmt.Sprintf("Your order with ID %d has been successfully placed.", o.ID))

	n.Publish(ctx, &rep, event.OrderEvent{
		Type:       event.OrderCreated,
		OrderID:    o.ID,
		UserID:     o.UserID,
		Total:      o.TotalAmount.StringFixed(2),
		OccurredAt: o.CreatedAt,
	})
	return rep
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page, limit int) (OrderListOutput, error) {
	if userID <= 0 {
		return OrderListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	orders, total, err := u.orders.ListByUserID(ctx, userID, page, limit)
	if err != nil {
		return OrderListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return OrderListOutput{Items: toOrderOutputs(orders), Total: total, Page: page, Limit: limit}, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	o, err := u.findOwned(ctx, userID, orderID)
	if err != nil {
		return OrderOutput{}, err
	}
	return toOrderOutput(o), nil
}

func (u *OrderUsecase) GetMyOrderStatus(ctx context.Context, userID int64, orderID int64) (OrderStatusOutput, error) {
	o, err := u.findOwned(ctx, userID, orderID)
	if err != nil {
		return OrderStatusOutput{}, err
	}
	return OrderStatusOutput{
		OrderID:               o.ID,
		PaymentStatus:         o.PaymentStatus,
		DeliveryStatus:        o.DeliveryStatus,
		PaymentStatusHistory:  toHistoryOutput(o.History(model.AxisPayment)),
		DeliveryStatusHistory: toHistoryOutput(o.History(model.AxisDelivery)),
	}, nil
}

// 配送軸を Cancelled にする。受理されたときだけ orderCancellation も送る。
func (u *OrderUsecase) CancelMyOrder(ctx context.Context, userID int64, orderID int64) (OrderOutput, EffectReport, error) {
	if userID <= 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, accepted, err := u.tracker.transition(ctx, orderID, userID, 0, []statusChange{
		{Axis: model.AxisDelivery, Status: model.DeliveryStatusCancelled},
	})
	if err != nil {
		return OrderOutput{}, EffectReport{}, err
	}

	rep := u.tracker.fanOutStatus(ctx, o, accepted)
	if len(accepted) > 0 {
		u.tracker.notifier.Notify(ctx, &rep, o.UserID, model.NotificationTypeOrder, model.CategoryOrderCancellation,
			fmt.Sprintf("Your order with ID %d has been successfully cancelled.", o.ID))
	}
	return toOrderOutput(o), rep, nil
}

func (u *OrderUsecase) findOwned(ctx context.Context, userID int64, orderID int64) (model.Order, error) {
	if userID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return model.Order{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	o, err := u.orders.FindByID(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//所有チェック（他人の注文は404）
	if o.UserID != userID {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return o, nil
}
