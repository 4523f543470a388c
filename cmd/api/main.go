package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"uptech/internal/config"
	"uptech/internal/handler"
	"uptech/internal/infra/activity"
	"uptech/internal/infra/db"
	"uptech/internal/infra/event"
	"uptech/internal/infra/mail"
	"uptech/internal/infra/payment"
	"uptech/internal/infra/ratelimit"
	infraRepo "uptech/internal/infra/repository"
	"uptech/internal/infra/sms"
	"uptech/internal/logger"
	"uptech/internal/middleware"
	"uptech/internal/server"
	"uptech/internal/usecase"
	"uptech/internal/validator"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type activityStore interface {
	middleware.ActivityRecorder
	handler.ActivityReader
	Close(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.GoEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	tokenRepo := infraRepo.NewVerificationTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	newsletterRepo := infraRepo.NewNewsletterGormRepository(gormDB)
	contactRepo := infraRepo.NewContactGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービス（未設定ならno-op / ログ出力）
	mailer := newMailer(cfg, log)
	smsSender := newSMSSender(cfg, log)
	publisher := newPublisher(cfg, log)
	defer publisher.Close()
	gateway := newGateway(cfg, log)
	limiter := newLimiter(ctx, cfg, log)
	store := newActivityStore(ctx, cfg, log)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}()

	//Usecase生成
	authValidator := validator.NewAuthValidator(userRepo)
	notifier := usecase.NewNotifier(notificationRepo, userRepo, mailer, publisher, log)

	authUC := usecase.NewAuthUsecase(cfg, userRepo, tokenRepo, authValidator, notifier, smsSender)
	userUC := usecase.NewUserUsecase(userRepo, authValidator, notifier)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	cartUC := usecase.NewCartUsecase(txm, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm, orderRepo, notifier)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, orderRepo, notifier)
	auditUC := usecase.NewAuditLogUsecase(auditRepo)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo, userRepo, auditRepo, notifier)
	newsletterUC := usecase.NewNewsletterUsecase(newsletterRepo, auditRepo, authValidator, notifier)
	contactUC := usecase.NewContactUsecase(contactRepo, authValidator, notifier, cfg.Mail.AdminEmail)
	paymentUC := usecase.NewPaymentUsecase(gateway, cfg.Payment.Currency)

	//Handler生成
	srv := server.New(cfg, log, store)
	throttle := func(scope string) echo.MiddlewareFunc {
		return middleware.RateLimit(limiter, scope, log)
	}
	srv.RegisterRoutes(cfg, userRepo, throttle, server.Handlers{
		Auth:         handler.NewAuthHandler(authUC, cfg.Cookie),
		User:         handler.NewUserHandler(userUC),
		AdminUser:    handler.NewAdminUserHandler(adminUserUC),
		Product:      handler.NewProductHandler(productUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		Cart:         handler.NewCartHandler(cartUC, cfg.Cookie),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AuditLog:     handler.NewAuditLogHandler(auditUC, store),
		Notification: handler.NewNotificationHandler(notificationUC),
		Newsletter:   handler.NewNewsletterHandler(newsletterUC),
		Contact:      handler.NewContactHandler(contactUC),
		Payment:      handler.NewPaymentHandler(paymentUC, cfg.FEURL),
		Preferences:  handler.NewPreferencesHandler(cfg.Cookie),
	})

	//Server起動
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func newMailer(cfg config.Config, log zerolog.Logger) usecase.Mailer {
	if cfg.Mail.SMTPHost == "" {
		log.Warn().Msg("SMTP_HOST not set, mails are only logged")
		return mail.NewLogSender(log)
	}
	return mail.NewSMTPSender(cfg.Mail)
}

func newSMSSender(cfg config.Config, log zerolog.Logger) usecase.SMSSender {
	if cfg.SMS.TwilioAccountSID == "" {
		log.Warn().Msg("TWILIO_ACCOUNT_SID not set, sms are only logged")
		return sms.NewLogSender(log)
	}
	return sms.NewTwilioSender(cfg.SMS)
}

type closablePublisher interface {
	usecase.OrderEventPublisher
	Close() error
}

func newPublisher(cfg config.Config, log zerolog.Logger) closablePublisher {
	if len(cfg.Kafka.KafkaBrokers) == 0 {
		log.Warn().Msg("KAFKA_BROKERS not set, order events disabled")
		return event.NopPublisher{}
	}
	return event.NewKafkaPublisher(cfg.Kafka)
}

func newGateway(cfg config.Config, log zerolog.Logger) usecase.CheckoutGateway {
	if cfg.Payment.StripeSecretKey == "" {
		log.Warn().Msg("STRIPE_SECRET_KEY not set, checkout disabled")
		return payment.DisabledGateway{}
	}
	return payment.NewStripeGateway(cfg.Payment, cfg.APIDomain)
}

func newLimiter(ctx context.Context, cfg config.Config, log zerolog.Logger) middleware.Limiter {
	if cfg.Redis.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, rate limit disabled")
		return ratelimit.NopLimiter{}
	}
	client := ratelimit.NewRedisClient(cfg.Redis)
	if err := client.Ping(ctx).Err(); err != nil {
		// 起動後に復帰すれば効く（それまではfail-open）
		log.Warn().Err(err).Msg("redis ping failed")
	}
	return ratelimit.NewRedisLimiter(client, cfg.Redis.RateLimitMax, cfg.Redis.RateLimitWindow)
}

func newActivityStore(ctx context.Context, cfg config.Config, log zerolog.Logger) activityStore {
	if cfg.Mongo.MongoURI == "" {
		log.Warn().Msg("MONGO_URI not set, activity log disabled")
		return activity.NopStore{}
	}
	mdb, err := activity.ConnectMongo(ctx, cfg.Mongo.MongoURI, cfg.Mongo.MongoDatabase)
	if err != nil {
		log.Warn().Err(err).Msg("mongo unavailable, activity log disabled")
		return activity.NopStore{}
	}
	return activity.NewMongoStore(mdb)
}
