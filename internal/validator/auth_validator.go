package validator

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	"uptech/internal/repository"
	"uptech/internal/usecase"
)

// パスワード最低文字数
const minPasswordLen = 8

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// 国番号付き（+81...）も可
	phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

type authValidator struct {
	users repository.UserRepository
}

// Usecaseは interface を依存注入
func NewAuthValidator(users repository.UserRepository) usecase.AuthValidator {
	return &authValidator{users: users}
}

func invalid(msg string) error {
	return usecase.NewHTTPError(http.StatusBadRequest, msg)
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	// 必須チェック
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return invalid("first name and last name required")
	}
	if err := v.ValidateEmail(in.Email); err != nil {
		return err
	}
	if err := v.ValidatePassword(in.Password); err != nil {
		return err
	}
	if in.PhoneNumber != "" && !phoneRe.MatchString(in.PhoneNumber) {
		return invalid("invalid phone number")
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return usecase.NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if u != nil {
		return usecase.NewHTTPError(http.StatusConflict, "user already exists")
	}
	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, email string, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return invalid("email and password required")
	}
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return invalid("invalid email")
	}
	return nil
}

func (v *authValidator) ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return invalid("password must be at least 8 characters")
	}
	return nil
}

func (v *authValidator) ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("email required")
	}
	if !emailRe.MatchString(email) {
		return invalid("invalid email")
	}
	return nil
}
