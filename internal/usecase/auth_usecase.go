package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"uptech/internal/config"
	"uptech/internal/domain/model"
	"uptech/internal/repository"

	"github.com/google/uuid"
)

// メール確認・SMSコード・パスワード再設定の有効期限
const verificationTTL = time.Hour

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, email string, password string) error
	ValidatePassword(password string) error
	ValidateEmail(email string) error
}

type UserDTO struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phone_number"`
	Role          string    `json:"role"`
	TokenVersion  int       `json:"token_version"`
	IsActive      bool      `json:"is_active"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

type JwtAccessTokenDTO struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenVersion int    `json:"token_version"`
}

type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
}

type LoginResult struct {
	User  UserDTO           `json:"user"`
	Token JwtAccessTokenDTO `json:"token"`
}

type AuthUsecase struct {
	cfg       config.Config
	users     repository.UserRepository
	tokens    repository.VerificationTokenRepository
	validator AuthValidator
	notifier  *Notifier
	sms       SMSSender
	now       func() time.Time
}

func NewAuthUsecase(
	cfg config.Config,
	users repository.UserRepository,
	tokens repository.VerificationTokenRepository,
	validator AuthValidator,
	notifier *Notifier,
	sms SMSSender,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:       cfg,
		users:     users,
		tokens:    tokens,
		validator: validator,
		notifier:  notifier,
		sms:       sms,
		now:       time.Now,
	}
}

// 会員登録。確認メールとSMSコードを送り、管理者に通知する（どれも失敗しても登録は成功）。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, EffectReport, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return UserDTO{}, EffectReport{}, err
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := hashPassword(in.Password)
	if err != nil {
		return UserDTO{}, EffectReport{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	user := &model.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PhoneNumber:  in.PhoneNumber,
		PasswordHash: pwHash,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return UserDTO{}, EffectReport{}, NewHTTPError(http.StatusConflict, "user already exists")
		}
		return UserDTO{}, EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var rep EffectReport

	// メール確認リンク
	emailToken, err := u.createToken(ctx, user.ID, model.PurposeEmailVerification, "")
	if err != nil {
		return UserDTO{}, EffectReport{}, err
	}
	link := fmt.Sprintf("%s/api/auth/verify-email?token=%s&id=%d",
		strings.TrimRight(u.cfg.APIDomain, "/"), url.QueryEscape(emailToken), user.ID)
	u.notifier.Email(ctx, &rep, user.Email, "Verify Your Email - UpTech", "verifyEmail", map[string]any{
		"Name": user.FirstName,
		"Link": link,
	})

	// SMSコード
	if user.PhoneNumber != "" {
		code, err := newNumericCode()
		if err != nil {
			return UserDTO{}, EffectReport{}, NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		if _, err := u.createToken(ctx, user.ID, model.PurposePhoneVerification, code); err != nil {
			return UserDTO{}, EffectReport{}, err
		}
		if err := u.sms.Send(ctx, user.PhoneNumber, fmt.Sprintf("Your UpTech verification code is %s", code)); err != nil {
			u.notifier.fail(&rep, EffectSMS, user.PhoneNumber, err)
		}
	}

	u.notifier.NotifyAdmins(ctx, &rep, fmt.Sprintf("New user registered: %s", user.Email))

	return toUserDTO(user), rep, nil
}

// code が空ならランダムトークンを作って平文を返す
func (u *AuthUsecase) createToken(ctx context.Context, userID int64, purpose model.TokenPurpose, code string) (string, error) {
	// 古いものは捨てる
	if err := u.tokens.DeleteByUser(ctx, userID, purpose); err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}

	plain, hash := code, ""
	if code == "" {
		var err error
		plain, hash, err = newRandomTokenAndHash()
		if err != nil {
			return "", NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	} else {
		hash = hashPhoneCode(userID, code)
	}

	if err := u.tokens.Create(ctx, &model.VerificationToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hash,
		ExpiresAt: u.now().Add(verificationTTL),
	}); err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return plain, nil
}

// 未使用・期限内・本人のトークンを消費する
func (u *AuthUsecase) consumeToken(ctx context.Context, purpose model.TokenPurpose, hash string, userID int64) (*model.VerificationToken, error) {
	t, err := u.tokens.FindByHash(ctx, purpose, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if (userID > 0 && t.UserID != userID) || !t.Usable(u.now()) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	if err := u.tokens.MarkUsed(ctx, t.ID, u.now()); err != nil {
		// 同時に使われた
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return t, nil
}

func (u *AuthUsecase) VerifyEmail(ctx context.Context, userID int64, token string) (EffectReport, error) {
	if userID <= 0 || strings.TrimSpace(token) == "" {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid link or expired")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid link or expired")
	}

	if _, err := u.consumeToken(ctx, model.PurposeEmailVerification, hashToken(token), userID); err != nil {
		return EffectReport{}, err
	}

	user.EmailVerified = true
	if err := u.users.Update(ctx, user); err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var rep EffectReport
	u.notifier.Email(ctx, &rep, user.Email, "Welcome to UpTech!", "welcomeEmail", map[string]any{
		"Name": user.FirstName,
	})
	u.notifier.Notify(ctx, &rep, user.ID, model.NotificationTypeSystem, model.CategorySystemAlert,
		"Welcome to UpTech! Your email has been verified.")
	return rep, nil
}

func (u *AuthUsecase) VerifyPhone(ctx context.Context, email string, code string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return NewHTTPError(http.StatusBadRequest, "email and code required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return NewHTTPError(http.StatusBadRequest, "user not found")
	}
	if user.PhoneVerified {
		return NewHTTPError(http.StatusBadRequest, "phone already verified")
	}

	if _, err := u.consumeToken(ctx, model.PurposePhoneVerification, hashPhoneCode(user.ID, code), user.ID); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid verification code")
	}

	user.PhoneVerified = true
	if err := u.users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	email = normalizeEmail(email)

	// 1) 入力検証
	if err := u.validator.ValidateLogin(ctx, email, password); err != nil {
		return LoginResult{}, err
	}

	//ユーザー取得
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil || !checkPassword(user.PasswordHash, password) {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginResult{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if !user.EmailVerified {
		return LoginResult{}, NewHTTPError(http.StatusBadRequest, "please verify your email first")
	}

	//last_login更新
	now := u.now()
	user.LastLoginAt = &now
	_ = u.users.Update(ctx, user)

	accessToken, expiresIn, err := issueAccessToken(u.cfg.JWTSecret, u.cfg.AccessTokenTTL, user, now)
	if err != nil {
		return LoginResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginResult{
		User: toUserDTO(user),
		Token: JwtAccessTokenDTO{
			AccessToken:  accessToken,
			ExpiresIn:    expiresIn,
			TokenVersion: user.TokenVersion,
		},
	}, nil
}

// 未登録メールでも同じ応答を返す（存在確認に使わせない）
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) (EffectReport, error) {
	email = normalizeEmail(email)
	if err := u.validator.ValidateEmail(email); err != nil {
		return EffectReport{}, err
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return EffectReport{}, nil
	}

	plain, err := u.createToken(ctx, user.ID, model.PurposePasswordReset, "")
	if err != nil {
		return EffectReport{}, err
	}

	var rep EffectReport
	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(u.cfg.FEURL, "/"), plain)
	u.notifier.Email(ctx, &rep, user.Email, "Password Reset Request - UpTech", "passwordReset", map[string]any{
		"Name": user.FirstName,
		"Link": link,
	})
	return rep, nil
}

// 再設定後は token_version を上げて既存のJWTを無効にする
func (u *AuthUsecase) ResetPassword(ctx context.Context, token string, newPassword string) (EffectReport, error) {
	if strings.TrimSpace(token) == "" {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	if err := u.validator.ValidatePassword(newPassword); err != nil {
		return EffectReport{}, err
	}

	t, err := u.consumeToken(ctx, model.PurposePasswordReset, hashToken(token), 0)
	if err != nil {
		return EffectReport{}, err
	}

	user, err := u.users.FindByID(ctx, t.UserID)
	if err != nil {
		return EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if user == nil {
		return EffectReport{}, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}

	if err := setPassword(ctx, u.users, user, newPassword); err != nil {
		return EffectReport{}, err
	}

	var rep EffectReport
	u.notifier.Notify(ctx, &rep, user.ID, model.NotificationTypeSecurity, model.CategorySecurityAlert,
		"Your password has been reset.")
	return rep, nil
}

// パスワード保存 + token_version +1
func setPassword(ctx context.Context, users repository.UserRepository, user *model.User, newPassword string) error {
	pwHash, err := hashPassword(newPassword)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	user.PasswordHash = pwHash
	if err := users.Update(ctx, user); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := users.IncrementTokenVersion(ctx, user.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	user.TokenVersion++
	return nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:            u.ID,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		Role:          string(u.Role),
		TokenVersion:  u.TokenVersion,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		PhoneVerified: u.PhoneVerified,
		CreatedAt:     u.CreatedAt,
	}
}
