package server

import (
	"uptech/internal/config"
	"uptech/internal/handler"
	"uptech/internal/repository"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	AdminUser    *handler.AdminUserHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AuditLog     *handler.AuditLogHandler
	Notification *handler.NotificationHandler
	Newsletter   *handler.NewsletterHandler
	Contact      *handler.ContactHandler
	Payment      *handler.PaymentHandler
	Preferences  *handler.PreferencesHandler
}

// 全APIは /api 配下
func (s *Server) RegisterRoutes(cfg config.Config, userRepo repository.UserRepository, throttle handler.Throttle, h Handlers) {
	api := s.e.Group("/api")

	h.Auth.RegisterRoutes(api, throttle)
	h.User.RegisterRoutes(api, cfg, userRepo)
	h.AdminUser.RegisterRoutes(api, cfg, userRepo)

	h.Product.RegisterRoutes(api)
	h.AdminProduct.RegisterRoutes(api, cfg, userRepo)
	h.Cart.RegisterRoutes(api, cfg, userRepo)
	h.Order.RegisterRoutes(api, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(api, cfg, userRepo)
	h.AuditLog.RegisterRoutes(api, cfg, userRepo)

	h.Notification.RegisterRoutes(api, cfg, userRepo)
	h.Newsletter.RegisterRoutes(api, cfg, userRepo, throttle)
	h.Contact.RegisterRoutes(api, cfg, userRepo, throttle)
	h.Payment.RegisterRoutes(api)
	h.Preferences.RegisterRoutes(api, cfg, userRepo)
}
