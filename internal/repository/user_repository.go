package repository

import (
	"context"

	"uptech/internal/domain/model"
)

type UserListFilter struct {
	Search string
	Role   *model.Role
	Page   int
	Limit  int
}

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。無ければ (nil, nil)
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを一件取得する。無ければ (nil, nil)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新
	Update(ctx context.Context, user *model.User) error
	//トークンのバージョンを＋１
	IncrementTokenVersion(ctx context.Context, userID int64) error

	// 通知の一斉送信先（管理者一覧など）
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	ListAll(ctx context.Context) ([]model.User, error)

	List(ctx context.Context, f UserListFilter) ([]model.User, int64, error)
	Delete(ctx context.Context, userID int64) error
}
