package main

import (
	"os"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cart"
	"app/internal/infra/db"
	"app/internal/infra/notify"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	// .envはローカル開発用。本番は環境変数を直接渡す
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gormDB.AutoMigrate(
		&model.Seller{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.Payment{},
		&model.OrderStatusLog{},
		&model.InventoryAdjustment{},
	); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}

	//Redis（カート置き場）
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	cartStore := cart.NewRedisStore(redisClient)

	//Kafka（決済キャプチャ通知）
	notifier := notify.NewKafkaCaptureNotifier(cfg.KafkaBrokers, cfg.CaptureTopic)
	defer notifier.Close()

	//Repository（GORM実装）生成
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	sellerRepo := infraRepo.NewSellerGormRepository(gormDB)
	variantRepo := infraRepo.NewVariantGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)

	//Usecase生成
	checkoutUC := usecase.NewCheckoutUsecase(
		txManager, sellerRepo, cartStore, notifier, logger,
		cfg.PlatformFeeRate, cfg.ShippingFee,
	)
	stockValidator := usecase.NewStockValidator(variantRepo)
	cartUC := usecase.NewCartUsecase(cartStore, variantRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	sellerOrderUC := usecase.NewSellerOrderUsecase(txManager)
	sellerInventoryUC := usecase.NewSellerInventoryUsecase(inventoryRepo, productRepo)
	productUC := usecase.NewProductUsecase(productRepo)

	//Handler生成
	handlers := server.Handlers{
		Product:     handler.NewProductHandler(productUC),
		Cart:        handler.NewCartHandler(cartUC),
		Checkout:    handler.NewCheckoutHandler(checkoutUC, stockValidator, cartStore),
		Order:       handler.NewOrderHandler(orderUC),
		SellerOrder: handler.NewSellerOrderHandler(sellerOrderUC, sellerInventoryUC),
	}

	//Server起動
	logger.Info().Str("port", cfg.Port).Msg("starting server")
	if err := server.Start(cfg, logger, handlers); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	if cfg.GoEnv == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
