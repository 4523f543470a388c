package model

import "errors"

var (
	// 数量が1未満
	ErrInvalidQuantity = errors.New("invalid quantity")

	// 加算すると int64 を超える
	ErrQuantityOverflow = errors.New("quantity overflow")

	// カートに該当商品の明細がない
	ErrLineItemNotFound = errors.New("line item not found")

	// 再計算時に価格が引けない商品がある
	ErrProductPriceMissing = errors.New("product price missing")

	// ステータス軸が payment / delivery 以外
	ErrInvalidStatusAxis = errors.New("invalid status axis")

	// ステータス文字列が空・長すぎる
	ErrInvalidStatus = errors.New("invalid status")

	// 注文明細が空
	ErrEmptyOrder = errors.New("order has no items")
)
