package handler

import (
	"context"
	"net/http"
	"strconv"

	"uptech/internal/domain/model"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductReader interface {
	ListPublicProducts(ctx context.Context, in usecase.ListProductsInput) (usecase.ProductListOutput, error)
	GetProductDetail(ctx context.Context, productID int64) (model.Product, error)
}

// /api/products の公開API
type ProductHandler struct {
	uc ProductReader
}

// DI
func NewProductHandler(uc ProductReader) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 公開商品のルートを登録
func (h *ProductHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/products", h.list)
	api.GET("/products/search", h.list)
	api.GET("/products/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	in, msg := bindProductQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	p, err := h.uc.GetProductDetail(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

// 一覧・検索のクエリ。不正な値は項目名入りのメッセージを返す
func bindProductQuery(c echo.Context) (usecase.ListProductsInput, string) {
	in := usecase.ListProductsInput{
		Category: c.QueryParam("category"),
		Sort:     c.QueryParam("sort"),
	}

	// page（default 1）
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return in, "invalid page"
	}
	in.Page = page

	// limit（default 20）
	limit, ok := queryInt(c, "limit", 20)
	if !ok {
		return in, "invalid limit"
	}
	in.Limit = limit

	// name は旧クエリ名
	in.Q = c.QueryParam("q")
	if in.Q == "" {
		in.Q = c.QueryParam("name")
	}

	for _, p := range []struct {
		key string
		dst **decimal.Decimal
	}{
		{"minPrice", &in.MinPrice},
		{"maxPrice", &in.MaxPrice},
	} {
		v := c.QueryParam(p.key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return in, "invalid " + p.key
		}
		*p.dst = &d
	}

	if v := c.QueryParam("isFeatured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return in, "invalid isFeatured"
		}
		in.IsFeatured = &b
	}
	return in, ""
}
