package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"uptech/internal/domain/model"
	repo "uptech/internal/repository"
)

type ContactUsecase struct {
	messages   repo.ContactRepository
	validator  AuthValidator
	notifier   *Notifier
	adminEmail string
}

func NewContactUsecase(messages repo.ContactRepository, validator AuthValidator, notifier *Notifier, adminEmail string) *ContactUsecase {
	return &ContactUsecase{messages: messages, validator: validator, notifier: notifier, adminEmail: adminEmail}
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func (u *ContactUsecase) Submit(ctx context.Context, in ContactInput) (model.ContactMessage, EffectReport, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	message := strings.TrimSpace(in.Message)
	if name == "" || email == "" || message == "" {
		return model.ContactMessage{}, EffectReport{}, NewHTTPError(http.StatusBadRequest, "all fields are required")
	}
	if err := u.validator.ValidateEmail(email); err != nil {
		return model.ContactMessage{}, EffectReport{}, err
	}

	m := model.ContactMessage{Name: name, Email: email, Message: message, CreatedAt: time.Now()}
	if err := u.messages.Create(ctx, &m); err != nil {
		return model.ContactMessage{}, EffectReport{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var rep EffectReport
	if u.adminEmail != "" {
		u.notifier.Email(ctx, &rep, u.adminEmail, "New Contact Form Submission", "contactForm", map[string]any{
			"Name":    name,
			"Email":   email,
			"Message": message,
		})
	}
	return m, rep, nil
}

func (u *ContactUsecase) List(ctx context.Context) ([]model.ContactMessage, error) {
	items, err := u.messages.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ContactUsecase) Get(ctx context.Context, id int64) (model.ContactMessage, error) {
	if id <= 0 {
		return model.ContactMessage{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := u.messages.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.ContactMessage{}, NewHTTPError(http.StatusNotFound, "message not found")
	}
	if err != nil {
		return model.ContactMessage{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return m, nil
}

func (u *ContactUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	err := u.messages.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "message not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
