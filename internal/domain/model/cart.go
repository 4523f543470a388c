package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// 1ユーザーにつきカートは1つ。
// TotalQuantity / TotalAmount は派生値で、保存・返却の前に必ず Recompute する。
type Cart struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64           `gorm:"not null;uniqueIndex" json:"user_id"`
	TotalQuantity int64           `gorm:"not null;default:0" json:"total_quantity"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_amount"`
	Items         []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 同一商品なら数量を加算、なければ末尾に追加
func (c *Cart) AddItem(productID int64, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if i := c.indexOf(productID); i >= 0 {
		sum, ok := addQuantity(c.Items[i].Quantity, qty)
		if !ok {
			return ErrQuantityOverflow
		}
		c.Items[i].Quantity = sum
		return nil
	}
	c.Items = append(c.Items, CartItem{CartID: c.ID, ProductID: productID, Quantity: qty})
	return nil
}

// 数量を置き換える
func (c *Cart) UpdateItem(productID int64, qty int64) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineItemNotFound
	}
	c.Items[i].Quantity = qty
	return nil
}

func (c *Cart) RemoveItem(productID int64) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineItemNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return nil
}

// 一時カートを取り込む。既存行は加算、新規行は追加。
// 1行でも数量不正があれば何も変更しない。
func (c *Cart) Merge(lines []CartLine) error {
	for _, l := range lines {
		if l.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}

	// 複製に適用し、全行成功したときだけ差し替える
	merged := Cart{ID: c.ID, Items: append([]CartItem(nil), c.Items...)}
	for _, l := range lines {
		if err := merged.AddItem(l.ProductID, l.Quantity); err != nil {
			return err
		}
	}
	c.Items = merged.Items
	return nil
}

// 現在価格で合計を計算し直す。
// 価格が見つからない商品が1つでもあれば、カートは変更せずエラー。
func (c *Cart) Recompute(prices map[int64]decimal.Decimal) error {
	var qty int64
	amount := decimal.Zero
	for _, it := range c.Items {
		price, ok := prices[it.ProductID]
		if !ok {
			return fmt.Errorf("%w: product %d", ErrProductPriceMissing, it.ProductID)
		}
		if qty, ok = addQuantity(qty, it.Quantity); !ok {
			return ErrQuantityOverflow
		}
		amount = amount.Add(price.Mul(decimal.NewFromInt(it.Quantity)))
	}
	c.TotalQuantity = qty
	c.TotalAmount = amount
	return nil
}

func (c *Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

// cookie用
func (c *Cart) Lines() []CartLine {
	lines := make([]CartLine, 0, len(c.Items))
	for _, it := range c.Items {
		lines = append(lines, CartLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return lines
}

func (c *Cart) indexOf(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// どちらも正の前提
func addQuantity(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
