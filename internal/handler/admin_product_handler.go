package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminProductService interface {
	AdminSearchProducts(ctx context.Context, in usecase.ListProductsInput) (usecase.ProductListOutput, error)
	AdminCreateProduct(ctx context.Context, adminUserID int64, in usecase.AdminProductInput) (model.Product, error)
	AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in usecase.AdminProductInput) (model.Product, error)
	AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error
}

type ProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Stock       int64           `json:"stock"`
	IsFeatured  bool            `json:"isFeatured"`
	ImageURL    string          `json:"image"`
	IsActive    *bool           `json:"isActive"`
}

func (r ProductRequest) input() usecase.AdminProductInput {
	// 未指定なら公開
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return usecase.AdminProductInput{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Stock:       r.Stock,
		IsFeatured:  r.IsFeatured,
		ImageURL:    r.ImageURL,
		IsActive:    active,
	}
}

// /api/admin/products
type AdminProductHandler struct {
	uc AdminProductService
}

// DI
func NewAdminProductHandler(uc AdminProductService) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

func (h *AdminProductHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	admin := api.Group("/admin/products", adminGuards(cfg, userRepo)...)

	admin.GET("/search", h.search)
	admin.POST("", h.createProduct)
	admin.PUT("/:id", h.updateProduct)
	admin.DELETE("/:id", h.deleteProduct)
}

func (h *AdminProductHandler) search(c echo.Context) error {
	in, msg := bindProductQuery(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	out, err := h.uc.AdminSearchProducts(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, id, req.input())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}
