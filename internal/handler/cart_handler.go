package handler

import (
	"context"
	"errors"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CartService interface {
	GetCart(ctx context.Context, userID int64) (usecase.CartResponse, error)
	PreviewLines(ctx context.Context, lines []model.CartLine) (usecase.CartResponse, error)
	AddItem(ctx context.Context, userID int64, in usecase.AddCartInput) (usecase.CartResponse, error)
	UpdateItem(ctx context.Context, userID int64, in usecase.UpdateCartItemInput) (usecase.CartResponse, error)
	RemoveItem(ctx context.Context, userID int64, productID int64) (usecase.CartResponse, error)
	Sync(ctx context.Context, userID int64, lines []model.CartLine) (usecase.CartResponse, error)
}

// /api/cart のHTTP
type CartHandler struct {
	uc     CartService
	cookie config.CookieConfig
}

// DI
func NewCartHandler(uc CartService, cookie config.CookieConfig) *CartHandler {
	return &CartHandler{uc: uc, cookie: cookie}
}

type CartItemRequest struct {
	ProductID int64 `json:"productId" query:"productId"`
	Quantity  int64 `json:"quantity"`
}

type CartSyncRequest struct {
	Items []model.CartLine `json:"items"`
}

type cartSyncResponse struct {
	Message string                `json:"message"`
	Cart    *usecase.CartResponse `json:"cart,omitempty"`
}

func (h *CartHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	g := api.Group("/cart", userGuards(cfg, userRepo)...)

	g.GET("", h.getCart)
	g.POST("/add", h.addToCart)
	g.PUT("/update", h.updateItem)
	g.DELETE("/remove", h.removeItem)
	g.POST("/sync", h.sync)
}

// 保存済みカート → cookieの一時カート → 404 の順
func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err == nil {
		return c.JSON(http.StatusOK, out)
	}
	if !errors.Is(err, usecase.ErrCartNotFound) {
		return writeError(c, err)
	}

	var lines []model.CartLine
	if !readJSONCookie(c, cartCookieName, &lines) || len(lines) == 0 {
		return writeError(c, err)
	}

	out, err = h.uc.PreviewLines(c.Request().Context(), lines)
	if err != nil {
		return writeError(c, err)
	}
	out.UserID = userID
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return h.respondWithCookie(c, out)
}

func (h *CartHandler) updateItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), userID, usecase.UpdateCartItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}

	return h.respondWithCookie(c, out)
}

func (h *CartHandler) removeItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	// DELETEは ?productId= でも受ける
	var req CartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.ProductID <= 0 {
		return badRequest(c, "invalid product_id")
	}

	out, err := h.uc.RemoveItem(c.Request().Context(), userID, req.ProductID)
	if err != nil {
		return writeError(c, err)
	}

	return h.respondWithCookie(c, out)
}

// 一時カート（bodyのitems、無ければcookie）を保存済みカートへ統合してcookieを消す
func (h *CartHandler) sync(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CartSyncRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	lines := req.Items
	if len(lines) == 0 {
		readJSONCookie(c, cartCookieName, &lines)
	}
	if len(lines) == 0 {
		return c.JSON(http.StatusOK, cartSyncResponse{Message: "No cart data found in cookies"})
	}

	// cookieの数量は保存済みカートに加算される(置き換えではない)
	out, err := h.uc.Sync(c.Request().Context(), userID, lines)
	if err != nil {
		return writeError(c, err)
	}

	clearCookie(c, h.cookie, cartCookieName)
	return c.JSON(http.StatusOK, cartSyncResponse{Message: "Cart synchronized successfully", Cart: &out})
}

func (h *CartHandler) respondWithCookie(c echo.Context, out usecase.CartResponse) error {
	if err := setJSONCookie(c, h.cookie, cartCookieName, out.Lines()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
