package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"uptech/internal/domain/model"
	"uptech/internal/repository"
)

// /users/profile と /users/change-password
type UserUsecase struct {
	users     repository.UserRepository
	validator AuthValidator
	notifier  *Notifier
}

func NewUserUsecase(users repository.UserRepository, validator AuthValidator, notifier *Notifier) *UserUsecase {
	return &UserUsecase{users: users, validator: validator, notifier: notifier}
}

// 空の項目は変更しない
type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

func (u *UserUsecase) findUser(ctx context.Context, userID int64) (*model.User, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
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

func (u *UserUsecase) GetProfile(ctx context.Context, userID int64) (UserDTO, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}
	return toUserDTO(user), nil
}

func (u *UserUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (UserDTO, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return UserDTO{}, err
	}

	if s := strings.TrimSpace(in.FirstName); s != "" {
		user.FirstName = s
	}
	if s := strings.TrimSpace(in.LastName); s != "" {
		user.LastName = s
	}
	if s := strings.TrimSpace(in.PhoneNumber); s != "" && s != user.PhoneNumber {
		user.PhoneNumber = s
		user.PhoneVerified = false
	}
	if s := normalizeEmail(in.Email); s != "" && s != user.Email {
		if err := u.validator.ValidateEmail(s); err != nil {
			return UserDTO{}, err
		}
		other, err := u.users.FindByEmail(ctx, s)
		if err != nil {
			return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if other != nil {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		user.Email = s
		user.EmailVerified = false
	}

	if err := u.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, NewHTTPError(http.StatusConflict, "email already used")
		}
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toUserDTO(user), nil
}

// 変更後は token_version が上がるので再ログインが必要
func (u *UserUsecase) ChangePassword(ctx context.Context, userID int64, current, next string) (EffectReport, error) {
	user, err := u.findUser(ctx, userID)
	if err != nil {
		return EffectReport{}, err
	}
	if !checkPassword(user.PasswordHash, current) {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "current password is incorrect")
	}
	if err := u.validator.ValidatePassword(next); err != nil {
		return EffectReport{}, err
	}

	if err := setPassword(ctx, u.users, user, next); err != nil {
		return EffectReport{}, err
	}

	var rep EffectReport
	u.notifier.Notify(ctx, &rep, user.ID, model.NotificationTypeSecurity, model.CategorySecurityAlert,
		"Your password has been changed.")
	return rep, nil
}
