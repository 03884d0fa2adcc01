package app

import (
	"context"
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/lguillozl/ecommerce-api/configs"
	"github.com/lguillozl/ecommerce-api/internal/adapter/cache"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http"
	"github.com/lguillozl/ecommerce-api/internal/adapter/http/middleware"
	"github.com/lguillozl/ecommerce-api/internal/adapter/kafka"
	"github.com/lguillozl/ecommerce-api/internal/adapter/queue"
	"github.com/lguillozl/ecommerce-api/internal/adapter/repo"
	"github.com/lguillozl/ecommerce-api/internal/logging"
	"github.com/lguillozl/ecommerce-api/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	logger := logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)

	// init database
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		return nil, nil, err
	}
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, nil, err
	}

	logger.Info("starting up", "http_addr", cfg.App.HTTPAddr)

	// init redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq: one connection, separate channels for publishing
	// (confirm mode) and consuming.
	conn, err := amqp.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	pubCh, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}
	subCh, err := conn.Channel()
	if err != nil {
		return nil, nil, err
	}

	// repos + caches
	productRepo := repo.NewMySQLProductRepo(db)
	cartRepo := repo.NewMySQLCartRepo(db)
	orderRepo := repo.NewMySQLOrderRepo(db)
	userRepo := repo.NewMySQLUserRepo(db)
	outboxRepo := repo.NewMySQLOutboxRepo(db)
	checkoutStore := repo.NewMySQLCheckoutStore(db)
	idem := cache.NewRedisIdempotencyStore(rdb, cfg.Idempotency.TTL)
	orderCache := cache.NewRedisOrderCache(rdb, cfg.Cache.OrderTTL)

	producer, err := queue.NewRabbitProducer(pubCh, cfg.Rabbit.Exchange)
	if err != nil {
		return nil, nil, err
	}

	// background workers share one context so cleanup stops them all
	bg, stopBg := context.WithCancel(context.Background())

	relay := queue.NewOutboxRelay(outboxRepo, producer, cfg.Outbox.Interval, cfg.Outbox.BatchSize)
	go relay.Run(bg)

	if err := setupQueue(subCh, orderCache); err != nil {
		stopBg()
		return nil, nil, err
	}
	if err := setupKafkaListener(bg, cfg, productRepo); err != nil {
		stopBg()
		return nil, nil, err
	}

	// usecases + handlers + router
	cartUC := usecase.NewCartService(productRepo, cartRepo)
	checkoutUC := usecase.NewCheckout(cartRepo, checkoutStore, idem)

	ch := http.NewCartHandler(cartUC, checkoutUC)
	ph := http.NewProductHandler(productRepo, productRepo)
	uh := http.NewUserHandler(cfg, userRepo, orderRepo, orderCache)
	authz := middleware.NewAuthz(cfg)
	router := http.NewRouter(ch, ph, uh, authz)

	cleanup := func() {
		stopBg()
		_ = pubCh.Close()
		_ = subCh.Close()
		_ = conn.Close()
		_ = rdb.Close()
		_ = db.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupQueue(ch *amqp.Channel, orderCache usecase.OrderCache) error {
	router := queue.NewRouter(ch, queue.WithPrefetch(50))
	router.Register(queue.PurchasedQueue, queue.NewCartPurchasedHandler(orderCache))
	return router.Start()
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, products usecase.ProductRepo) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewStockAdjustedHandler(products)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.TopicStock}, h.Handle)

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka-consumer").Error("consumer stopped", "error", err)
		}
		_ = grp.Close()
	}()
	return nil
}
