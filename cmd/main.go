package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloud-wave-best-zizon/order-service/internal/events"
	"github.com/cloud-wave-best-zizon/order-service/internal/handler"
	"github.com/cloud-wave-best-zizon/order-service/internal/repository"
	"github.com/cloud-wave-best-zizon/order-service/internal/repository/memory"
	"github.com/cloud-wave-best-zizon/order-service/internal/service"
	"github.com/cloud-wave-best-zizon/order-service/pkg/config"
	pkglogger "github.com/cloud-wave-best-zizon/order-service/pkg/logger"
	"github.com/cloud-wave-best-zizon/order-service/pkg/middleware"
	pkgtls "github.com/cloud-wave-best-zizon/order-service/pkg/tls"
)

type repositories struct {
	products    service.ProductRepository
	wholesalers service.WholesalerRepository
	orders      service.OrderRepository
	sequence    service.OrderNumberSequence
	mode        string
}

func main() {
	// Config 로드
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Logger 초기화
	logger, err := pkglogger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := newRepositories(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create repositories", zap.Error(err))
	}
	logger.Info("Storage initialized", zap.String("mode", repos.mode))

	// Service 초기화
	productService := service.NewProductService(repos.products, logger)
	wholesalerService := service.NewWholesalerService(repos.wholesalers, logger)

	opts := []service.OrderServiceOption{service.WithLowStockThreshold(cfg.LowStockThreshold)}
	var producer *events.KafkaProducer
	if cfg.KafkaEnabled {
		producer = events.NewKafkaProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, logger)
		opts = append(opts, service.WithEventPublisher(producer))
	}
	orderService := service.NewOrderService(repos.products, repos.orders, wholesalerService, repos.sequence, logger, opts...)

	var consumer *events.KafkaConsumer
	if cfg.KafkaEnabled {
		consumer = events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.OrderStatusTopic, orderService, logger)
		consumer.Start()
	}

	if err := handler.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	// Gin Router 설정
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	handler.RegisterRoutes(router, handler.Handlers{
		Products:    handler.NewProductHandler(productService, logger),
		Wholesalers: handler.NewWholesalerHandler(wholesalerService, logger),
		Orders:      handler.NewOrderHandler(orderService, logger),
		Mode:        repos.mode,
	})

	// Server 시작
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tlsProvider, err := pkgtls.NewProvider(ctx, cfg.TLSConfig, logger)
	if err != nil {
		logger.Fatal("Failed to load TLS config", zap.Error(err))
	}
	if tlsProvider != nil {
		srv.TLSConfig, err = tlsProvider.ServerConfig()
		if err != nil {
			logger.Fatal("Failed to build TLS config", zap.Error(err))
		}
		go tlsProvider.Watch(ctx)
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Port), zap.Bool("tls", srv.TLSConfig != nil))
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	<-ctx.Done()

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if consumer != nil {
		consumer.Stop()
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("Failed to close Kafka producer", zap.Error(err))
		}
	}
	if err := tlsProvider.Close(); err != nil {
		logger.Error("Failed to close X509 source", zap.Error(err))
	}
	logger.Info("Server exited")
}

func newRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	// AWS 없이 로컬 실행 모드
	if cfg.LocalMode {
		store := memory.NewStore()
		return repositories{products: store, wholesalers: store, orders: store, sequence: store, mode: "local"}, nil
	}

	// DynamoDB 클라이언트 초기화
	client, err := repository.NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		products:    repository.NewProductRepository(client, cfg.ProductTableName),
		wholesalers: repository.NewWholesalerRepository(client, cfg.WholesalerTableName),
		orders:      repository.NewOrderRepository(client, cfg.OrderTableName, cfg.ProductTableName),
		sequence:    repository.NewCounterRepository(client, cfg.CounterTableName),
		mode:        "dynamodb",
	}, nil
}
