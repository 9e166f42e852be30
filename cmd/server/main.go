package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thefrankalbert/attabl/migrations"
	"github.com/thefrankalbert/attabl/modules/billing"
	"github.com/thefrankalbert/attabl/modules/menu"
	"github.com/thefrankalbert/attabl/modules/onboarding"
	"github.com/thefrankalbert/attabl/pkg/broadcast"
	"github.com/thefrankalbert/attabl/pkg/config"
	"github.com/thefrankalbert/attabl/pkg/email"
	"github.com/thefrankalbert/attabl/pkg/httpserver"
	"github.com/thefrankalbert/attabl/pkg/logger"
	"github.com/thefrankalbert/attabl/pkg/pg"
	"github.com/thefrankalbert/attabl/pkg/plan"
	"github.com/thefrankalbert/attabl/pkg/redis"
	"github.com/thefrankalbert/attabl/pkg/session"
	"github.com/thefrankalbert/attabl/pkg/tenant"
)

type appConfig struct {
	Env        string `env:"APP_ENV" envDefault:"development"`
	Domain     string `env:"APP_DOMAIN" envDefault:"localhost"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	PlansFile  string `env:"PLANS_FILE"`
	DevMailDir string `env:"DEV_MAIL_DIR" envDefault:"./tmp/mail"`

	HTTP     httpserver.Config
	Postgres pg.Config
	Redis    redis.Config
	Session  session.Config
	Email    email.Config
	Paddle   billing.PaddleConfig
}

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithLevel(parseLevel(cfg.LogLevel)),
		logger.WithService("attabl"),
		logger.WithContextExtractors(tenant.LoggerExtractor()),
	)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, migrations.FS, cfg.Postgres, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	catalog, err := loadCatalog(cfg.PlansFile)
	if err != nil {
		return err
	}

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	paddle, err := billing.NewPaddle(cfg.Paddle)
	if err != nil {
		return err
	}

	// Stores.
	tenantStore := onboarding.NewPgStore(pool)
	subStore := billing.NewPgStore(pool)
	menuStore := menu.NewPgStore(pool)

	// Tenant routing: shared Redis cache in front of the Postgres
	// provider, session refresh on every request.
	sessions := session.NewManager(session.NewMemoryStore(), cfg.Session)
	tenantCache := tenant.NewRedisCache(redisClient)
	defer tenantCache.Close()

	router := tenant.NewRouter(sessions,
		tenant.WithProvider(tenantStore),
		tenant.WithCache(tenantCache, 0),
		tenant.WithLogger(log),
	)

	// Services.
	events := broadcast.New[billing.Event](16)
	defer events.Close()

	billingSvc := billing.NewService(subStore, priceTiers(), events, log)
	menuSvc := menu.NewService(menuStore, catalog, cfg.Domain, log)
	onboardingSvc := onboarding.NewService(tenantStore, subStore, catalog, sender, cfg.Domain, log)

	// Subscription changes must be visible on the next request, so the
	// cached tenant record is evicted when billing applies an event.
	go invalidateOnBillingEvents(ctx, events, tenantStore, tenantCache, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(router.Middleware)

	r.Get("/healthz", healthz(pg.Healthcheck(pool), redis.Healthcheck(redisClient)))
	r.Mount("/billing", billingSvc.Router(paddle))
	// Signup and invite acceptance serve anonymous visitors on the
	// platform domain; keep them outside the protected prefixes.
	onboardingSvc.PublicRoutes(r)
	r.Route(tenant.SitesPrefix+"/{slug}", func(r chi.Router) {
		onboardingSvc.TenantRoutes(r)
		r.Mount("/menu", menuSvc.Router())
	})

	srv := httpserver.New(cfg.HTTP, log)
	return srv.Run(ctx, r)
}

func loadCatalog(path string) (*plan.Catalog, error) {
	if path == "" {
		return plan.DefaultCatalog(), nil
	}
	return plan.LoadCatalogFile(path)
}

func newSender(cfg appConfig) (email.Sender, error) {
	if cfg.Env == "development" {
		return email.NewDevSender(cfg.DevMailDir), nil
	}
	return email.NewPostmarkSender(cfg.Email)
}

// priceTiers maps Paddle price ids to plan tiers. Price ids are stable
// per environment and live in the environment, not the catalog.
func priceTiers() map[string]plan.Tier {
	tiers := make(map[string]plan.Tier)
	for envVar, tier := range map[string]plan.Tier{
		"PADDLE_PRICE_ENTRY":      plan.TierEntry,
		"PADDLE_PRICE_PREMIUM":    plan.TierPremium,
		"PADDLE_PRICE_ENTERPRISE": plan.TierEnterprise,
	} {
		if id := os.Getenv(envVar); id != "" {
			tiers[id] = tier
		}
	}
	return tiers
}

func invalidateOnBillingEvents(ctx context.Context, events *broadcast.Broadcaster[billing.Event], store onboarding.Store, cache tenant.Cache, log *slog.Logger) {
	for ev := range events.Subscribe(ctx) {
		tnt, err := store.GetByID(ctx, ev.TenantID)
		if err != nil {
			log.WarnContext(ctx, "cannot resolve tenant for cache invalidation",
				"tenant_id", ev.TenantID, "error", err)
			continue
		}
		cache.Delete(ctx, tnt.Slug)
		log.InfoContext(ctx, "tenant cache invalidated",
			"slug", tnt.Slug, "status", ev.ToStatus)
	}
}

func healthz(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
