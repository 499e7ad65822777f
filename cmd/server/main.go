package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/toolforgehq/toolforge/internal/account"
	"github.com/toolforgehq/toolforge/internal/auth"
	"github.com/toolforgehq/toolforge/internal/billing"
	"github.com/toolforgehq/toolforge/internal/httpapi"
	"github.com/toolforgehq/toolforge/internal/tier"
	"github.com/toolforgehq/toolforge/internal/tool"
	"github.com/toolforgehq/toolforge/internal/usage"
	"github.com/toolforgehq/toolforge/pkg/config"
	"github.com/toolforgehq/toolforge/pkg/email"
	"github.com/toolforgehq/toolforge/pkg/httpserver"
	"github.com/toolforgehq/toolforge/pkg/logger"
	"github.com/toolforgehq/toolforge/pkg/pg"
	"github.com/toolforgehq/toolforge/pkg/redis"
	"github.com/toolforgehq/toolforge/pkg/session"
)

type appConfig struct {
	Log     logger.Config
	HTTP    httpserver.Config
	PG      pg.Config
	Redis   redis.Config
	Session session.Config
	Email   email.Config
	Paddle  billing.PaddleConfig

	TiersPath string `env:"TIERS_CONFIG" envDefault:"config/tiers.yaml"`
	ToolsPath string `env:"TOOLS_CONFIG" envDefault:"config/tools.yaml"`

	CheckoutSuccessURL string `env:"CHECKOUT_SUCCESS_URL,required"`
	PasswordResetURL   string `env:"PASSWORD_RESET_URL,required"`
	ContactInbox       string `env:"CONTACT_INBOX"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewFromConfig(cfg.Log, logger.WithService("toolforge"))
	logger.SetAsDefault(log)

	// Static catalogs; invalid content fails startup, not requests.
	tiers, err := tier.LoadCatalog(cfg.TiersPath)
	if err != nil {
		return fmt.Errorf("failed to load tier catalog: %w", err)
	}
	tools, err := tool.LoadCatalog(cfg.ToolsPath)
	if err != nil {
		return fmt.Errorf("failed to load tool catalog: %w", err)
	}

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	store := account.NewStore(pool)
	sessions := session.NewManager(session.NewRedisStore(redisClient), cfg.Session)

	mailer, err := buildMailer(cfg.Email, log)
	if err != nil {
		return err
	}

	provider, err := billing.NewPaddleProvider(cfg.Paddle)
	if err != nil {
		return fmt.Errorf("failed to create paddle provider: %w", err)
	}
	billingSvc := billing.NewService(store, provider, tiers,
		billing.WithLogger(log.With(logger.Component("billing"))),
		billing.WithSuccessURL(cfg.CheckoutSuccessURL),
	)

	passwordSvc := auth.NewPasswordService(store, mailer, cfg.PasswordResetURL,
		auth.WithPasswordLogger(log.With(logger.Component("auth"))),
	)

	recorder := usage.NewRecorder(store,
		usage.WithRecorderLogger(log.With(logger.Component("usage"))),
	)
	defer func() { _ = recorder.Close(context.Background()) }()

	opts := []httpapi.Option{
		httpapi.WithLogger(log.With(logger.Component("http"))),
		httpapi.WithHealthcheck("postgres", pg.Healthcheck(pool)),
		httpapi.WithHealthcheck("redis", redis.Healthcheck(redisClient)),
	}
	if cfg.ContactInbox != "" {
		opts = append(opts, httpapi.WithContactNotifier(mailer, cfg.ContactInbox))
	}

	// Google login is optional; without credentials the routes 404.
	var googleCfg auth.GoogleConfig
	if err := config.Load(&googleCfg); err == nil {
		googleSvc, err := auth.NewGoogleService(googleCfg, store,
			auth.WithGoogleLogger(log.With(logger.Component("auth"))),
		)
		if err != nil {
			return fmt.Errorf("failed to create google auth: %w", err)
		}
		opts = append(opts, httpapi.WithGoogleAuth(googleSvc))
	} else {
		log.InfoContext(ctx, "google login disabled", logger.Error(err))
	}

	handler := httpapi.NewHandler(store, billingSvc, passwordSvc, recorder, sessions, tiers, tools, opts...)

	return httpserver.New(cfg.HTTP, log).Run(ctx, handler.Routes())
}

// buildMailer picks Postmark when configured, otherwise a sender that logs
// outbound mail for development.
func buildMailer(cfg email.Config, log *slog.Logger) (email.EmailSender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Info("postmark not configured, using dev email sender")
		return email.NewDevSender(log.With(logger.Component("email"))), nil
	}
	mailer, err := email.NewPostmarkClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postmark client: %w", err)
	}
	return mailer, nil
}
