package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	"uptech/internal/repository"
)

type AdminUserUsecase struct {
	users     repository.UserRepository
	auditRepo repository.AuditLogRepository
}

func NewAdminUserUsecase(users repository.UserRepository, auditRepo repository.AuditLogRepository) *AdminUserUsecase {
	return &AdminUserUsecase{users: users, auditRepo: auditRepo}
}

type UserListOutput struct {
	Items []UserDTO `json:"items"`
	Total int64     `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type ForceLogoutResponse struct {
	UserID          int64 `json:"user_id"`
	NewTokenVersion int   `json:"new_token_version"`
}

func (u *AdminUserUsecase) List(ctx context.Context, search string, role string, page, limit int) (UserListOutput, error) {
	if page < 1 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repository.UserListFilter{Search: strings.TrimSpace(search), Page: page, Limit: limit}
	if role != "" {
		r := model.Role(strings.ToUpper(strings.TrimSpace(role)))
		if !r.Valid() {
			return UserListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid role")
		}
		f.Role = &r
	}

	users, total, err := u.users.List(ctx, f)
	if err != nil {
		return UserListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]UserDTO, 0, len(users))
	for i := range users {
		items = append(items, toUserDTO(&users[i]))
	}
	return UserListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *AdminUserUsecase) Get(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.find(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

// ロール変更。token_versionも上げて古いJWTのロールを無効にする
func (u *AdminUserUsecase) UpdateRole(ctx context.Context, actorAdminUserID int64, userID int64, role string) (UserDTO, error) {
	newRole := model.Role(strings.ToUpper(strings.TrimSpace(role)))
	if !newRole.Valid() {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	user, err := u.find(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	if user.Role == newRole {
		return toUserDTO(user), nil
	}

	before := map[string]string{"role": string(user.Role)}
	user.Role = newRole
	if err := u.users.Update(ctx, user); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	user.TokenVersion++

	if err := u.audit(ctx, actorAdminUserID, model.AuditActionUpdateUserRole, user.ID, before, map[string]string{"role": string(newRole)}); err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (u *AdminUserUsecase) Delete(ctx context.Context, actorAdminUserID int64, userID int64) error {
	if actorAdminUserID == userID {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	user, err := u.find(ctx, userID)
	if err != nil {
		return err
	}

	if err := u.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.audit(ctx, actorAdminUserID, model.AuditActionDeleteUser, user.ID, map[string]string{"email": user.Email}, nil)
}

// 強制ログアウト（token_version +1）
func (u *AdminUserUsecase) ForceLogout(ctx context.Context, actorAdminUserID int64, targetUserID int64) (ForceLogoutResponse, error) {
	if targetUserID <= 0 {
		return ForceLogoutResponse{}, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	if err := u.users.IncrementTokenVersion(ctx, targetUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ForceLogoutResponse{}, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return ForceLogoutResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//更新後を取得してnew_token_versionを返す
	user, err := u.find(ctx, targetUserID)
	if err != nil {
		return ForceLogoutResponse{}, err
	}

	if err := u.audit(ctx, actorAdminUserID, model.AuditActionForceLogout, user.ID, nil, nil); err != nil {
		return ForceLogoutResponse{}, err
	}

	return ForceLogoutResponse{
		UserID:          user.ID,
		NewTokenVersion: user.TokenVersion,
	}, nil
}

func (u *AdminUserUsecase) find(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return nil, NewHTTPError(http.StatusNotFound, "user not found")
	}
	return user, nil
}

func (u *AdminUserUsecase) audit(ctx context.Context, actor int64, action model.AuditAction, userID int64, before, after any) error {
	return recordAudit(ctx, u.auditRepo, auditEntry{
		Actor: actor, Action: action, Resource: model.AuditResourceUser, ID: userID, Before: before, After: after,
	}, time.Now())
}
