package handler

import (
	"context"
	"net/http"

	"uptech/internal/config"
	"uptech/internal/repository"
	"uptech/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserService interface {
	List(ctx context.Context, search string, role string, page, limit int) (usecase.UserListOutput, error)
	Get(ctx context.Context, userID int64) (usecase.UserDTO, error)
	UpdateRole(ctx context.Context, actorAdminUserID int64, userID int64, role string) (usecase.UserDTO, error)
	Delete(ctx context.Context, actorAdminUserID int64, userID int64) error
	ForceLogout(ctx context.Context, actorAdminUserID int64, targetUserID int64) (usecase.ForceLogoutResponse, error)
}

type AdminUserHandler struct {
	uc AdminUserService
}

func NewAdminUserHandler(uc AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h *AdminUserHandler) RegisterRoutes(api *echo.Group, cfg config.Config, userRepo repository.UserRepository) {
	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := api.Group("/admin/users", adminGuards(cfg, userRepo)...)

	admin.GET("", h.list)
	admin.GET("/:id", h.get)
	admin.PUT("/update-role/:id", h.updateRole)
	admin.DELETE("/:id", h.delete)
	admin.POST("/:id/force-logout", h.forceLogout)
}

func (h *AdminUserHandler) list(c echo.Context) error {
	page, ok := queryInt(c, "page", 1)
	if !ok {
		return badRequest(c, "invalid page")
	}
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return badRequest(c, "invalid limit")
	}

	out, err := h.uc.List(c.Request().Context(), c.QueryParam("search"), c.QueryParam("role"), page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) get(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	out, err := h.uc.Get(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) updateRole(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	out, err := h.uc.UpdateRole(c.Request().Context(), adminID, userID, req.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminUserHandler) delete(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.uc.Delete(c.Request().Context(), adminID, userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminUserHandler) forceLogout(c echo.Context) error {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return badRequest(c, "invalid user_id")
	}

	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), adminID, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
