package usecase

import (
	"context"
	"errors"
	"net/http"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 合計は保存・返却の前に毎回、現在の商品価格から計算し直します。
type CartUsecase struct {
	tx          repo.TransactionManager
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
}

func NewCartUsecase(
	tx repo.TransactionManager,
	cartRepo repo.CartRepository,
	productRepo repo.ProductRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:          tx,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type CartResponse struct {
	ID            int64              `json:"id,omitempty"`
	UserID        int64              `json:"user_id,omitempty"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int64              `json:"total_quantity"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
}

// cookieに保存する明細
func (r CartResponse) Lines() []model.CartLine {
	out := make([]model.CartLine, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, model.CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

type AddCartInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateCartItemInput struct {
	ProductID int64
	Quantity  int64
}

// 保存済みカートが無い。handlerはこのときだけcookieのカートを見る
var ErrCartNotFound = NewHTTPError(http.StatusNotFound, "cart not found")

// GetCart は保存済みカートを返す（無ければ404）。
func (u *CartUsecase) GetCart(ctx context.Context, userID int64) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, ErrCartNotFound
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	products, err := recompute(ctx, u.productRepo, &cart)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(cart, products), nil
}

// cookie上の一時カートを合計付きで返す（保存はしない）
func (u *CartUsecase) PreviewLines(ctx context.Context, lines []model.CartLine) (CartResponse, error) {
	var cart model.Cart
	if err := cart.Merge(lines); err != nil {
		return CartResponse{}, mapCartError(err)
	}

	products, err := recompute(ctx, u.productRepo, &cart)
	if err != nil {
		return CartResponse{}, err
	}
	return toCartResponse(cart, products), nil
}

// 追加（同じ商品なら数量加算）。カートが無ければ作る。
func (u *CartUsecase) AddItem(ctx context.Context, userID int64, in AddCartInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	return u.mutate(ctx, userID, true, func(c *model.Cart) error {
		return c.AddItem(in.ProductID, in.Quantity)
	})
}

// 数量の置き換え。明細が無ければ404。
func (u *CartUsecase) UpdateItem(ctx context.Context, userID int64, in UpdateCartItemInput) (CartResponse, error) {
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	return u.mutate(ctx, userID, false, func(c *model.Cart) error {
		return c.UpdateItem(in.ProductID, in.Quantity)
	})
}

func (u *CartUsecase) RemoveItem(ctx context.Context, userID int64, productID int64) (CartResponse, error) {
	if productID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	return u.mutate(ctx, userID, false, func(c *model.Cart) error {
		return c.RemoveItem(productID)
	})
}

// 一時カートを保存済みカートへマージ（無ければそのまま保存カートになる）。
func (u *CartUsecase) Sync(ctx context.Context, userID int64, lines []model.CartLine) (CartResponse, error) {
	return u.mutate(ctx, userID, true, func(c *model.Cart) error {
		return c.Merge(lines)
	})
}

// 行ロック → 変更 → 再計算 → 保存 を1トランザクションで
func (u *CartUsecase) mutate(ctx context.Context, userID int64, createIfMissing bool, fn func(c *model.Cart) error) (CartResponse, error) {
	if userID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var out CartResponse

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserIDForUpdate(ctx, userID)
		if errors.Is(err, repo.ErrNotFound) {
			if !createIfMissing {
				return ErrCartNotFound
			}
			cart = model.Cart{UserID: userID}
		} else if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := fn(&cart); err != nil {
			return mapCartError(err)
		}

		products, err := recompute(ctx, r.Products(), &cart)
		if err != nil {
			return err
		}

		if err := r.Carts().Save(ctx, &cart); err != nil {
			// 同時に初回作成された
			if errors.Is(err, repo.ErrDuplicate) {
				return NewHTTPError(http.StatusConflict, "cart was modified, retry")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toCartResponse(cart, products)
		return nil
	})

	if err != nil {
		return CartResponse{}, err
	}
	return out, nil
}

// 現在価格で合計を計算し直す。価格が引けない商品があれば全体を404で中止。
func recompute(ctx context.Context, products repo.ProductRepository, cart *model.Cart) (map[int64]model.Product, error) {
	found, err := products.FindByIDs(ctx, cart.ProductIDs())
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	prices := make(map[int64]decimal.Decimal, len(found))
	for id, p := range found {
		prices[id] = p.Price
	}

	if err := cart.Recompute(prices); err != nil {
		return nil, mapCartError(err)
	}
	return found, nil
}

func mapCartError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidQuantity):
		return NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, model.ErrQuantityOverflow):
		return NewHTTPError(http.StatusBadRequest, "quantity too large")
	case errors.Is(err, model.ErrLineItemNotFound):
		return NewHTTPError(http.StatusNotFound, "product not found in cart")
	case errors.Is(err, model.ErrProductPriceMissing):
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	return NewHTTPError(http.StatusInternalServerError, "internal error")
}

func toCartResponse(c model.Cart, products map[int64]model.Product) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		p := products[it.ProductID]
		items = append(items, CartItemResponse{
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
			Subtotal:  p.Price.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}
	return CartResponse{
		ID:            c.ID,
		UserID:        c.UserID,
		Items:         items,
		TotalQuantity: c.TotalQuantity,
		TotalAmount:   c.TotalAmount,
	}
}
