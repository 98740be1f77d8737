package app

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	// swagger 문서 등록
	_ "github.com/damoang/tourlog-backend/docs"
	"github.com/damoang/tourlog-backend/internal/config"
	"github.com/damoang/tourlog-backend/internal/event"
	"github.com/damoang/tourlog-backend/internal/handler"
	"github.com/damoang/tourlog-backend/internal/middleware"
	"github.com/damoang/tourlog-backend/internal/repository"
	"github.com/damoang/tourlog-backend/internal/routes"
	"github.com/damoang/tourlog-backend/internal/scheduler"
	"github.com/damoang/tourlog-backend/internal/service"
	"github.com/damoang/tourlog-backend/pkg/jwt"
	pkgredis "github.com/damoang/tourlog-backend/pkg/redis"
)

// Deps 외부에서 주입되는 자원
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	// Redis nil이면 분산 락과 변경 알림 없이 동작
	Redis  *goredis.Client
	Logger zerolog.Logger
	Now    func() time.Time
}

// App wires the lifecycle engine: repositories, the item-update bus and its
// subscribers, the interval scheduler and the services behind the HTTP API.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Bus       *event.Bus
	Scheduler *scheduler.Scheduler
	Sweeps    *service.PublishScheduler
	Content   service.ContentService
	Ledger    *service.VersionLedger
	Counter   *service.TaxonomyCounter
	Preview   *service.PreviewService
	Terms     service.TermService
	JWT       *jwt.Manager
}

// New builds the App. Bus subscriptions and scheduled tasks are registered
// here; nothing is started.
func New(d Deps) *App {
	cfg := d.Config
	now := d.Now
	if now == nil {
		now = time.Now
	}
	log := d.Logger

	items := repository.NewItemRepository(d.DB)
	versions := repository.NewVersionRepository(d.DB)
	terms := repository.NewTermRepository(d.DB)

	bus := event.NewBus(log.With().Str("component", "event-bus").Logger())

	a := &App{
		Config: cfg,
		DB:     d.DB,
		Bus:    bus,
		JWT:    jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresIn)*time.Second),
	}

	a.Ledger = service.NewVersionLedger(versions, items, bus, cfg.Versions.Max, now, log.With().Str("component", "version-ledger").Logger())
	a.Counter = service.NewTaxonomyCounter(terms, now, log.With().Str("component", "taxonomy-counter").Logger())
	a.Sweeps = service.NewPublishScheduler(items, bus, cfg.Scheduler.TrashRetention, now, log.With().Str("component", "publish-scheduler").Logger())
	a.Content = service.NewContentService(items, terms, bus, now, log.With().Str("component", "content").Logger())
	a.Terms = service.NewTermService(terms, now)

	issuer := jwt.NewPreviewIssuer(cfg.Preview.Secret, cfg.Preview.TTL, now)
	a.Preview = service.NewPreviewService(issuer, items, cfg.Preview.BaseURL, log.With().Str("component", "preview").Logger())

	bus.Subscribe(repository.ConsumerVersionLedger, a.Ledger.OnItemUpdated)
	bus.Subscribe(repository.ConsumerTaxonomyCounter, a.Counter.OnItemUpdated)

	opts := []scheduler.Option{scheduler.WithTickInterval(cfg.Scheduler.TickInterval)}
	if d.Redis != nil {
		notifier := service.NewChangeNotifier(pkgredis.NewPublisher(d.Redis))
		bus.Subscribe("change-notifier", notifier.OnItemUpdated)
		opts = append(opts, scheduler.WithLocker(pkgredis.NewLocker(d.Redis, "tourlog:lease:")))
	}

	a.Scheduler = scheduler.NewScheduler(log.With().Str("component", "scheduler").Logger(), opts...)
	a.Scheduler.Register(service.IntervalPublishDue, cfg.Scheduler.PublishInterval, func(ctx context.Context) error {
		return a.Sweeps.OnInterval(ctx, service.IntervalPublishDue)
	})
	a.Scheduler.Register(service.IntervalTrashEvict, cfg.Scheduler.TrashInterval, func(ctx context.Context) error {
		return a.Sweeps.OnInterval(ctx, service.IntervalTrashEvict)
	})

	return a
}

// Router builds the gin engine with middleware and all routes.
func (a *App) Router() (*gin.Engine, error) {
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(a.Config.CORS.AllowOrigins)))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, routes.Handlers{
		Content:   handler.NewContentHandler(a.Content, a.Preview),
		Version:   handler.NewVersionHandler(a.Ledger),
		Preview:   handler.NewPreviewHandler(a.Preview),
		Scheduler: handler.NewSchedulerHandler(a.Scheduler, a.Sweeps),
		Term:      handler.NewTermHandler(a.Terms),
		Health:    handler.NewHealthHandler(a.DB),
	}, a.JWT)

	return router, nil
}

func corsConfig(allowOrigins string) cors.Config {
	if allowOrigins == "" {
		allowOrigins = "http://localhost:3000"
	}
	return cors.Config{
		AllowOrigins:     splitAndTrim(allowOrigins, ","),
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           24 * time.Hour,
	}
}

func splitAndTrim(s, sep string) []string {
	parts := []string{}
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
