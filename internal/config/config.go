package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // disable/require

	RedisAddr string // カート置き場（localhost:6379）

	KafkaBrokers []string // 決済キャプチャ通知
	CaptureTopic string

	JWTSecret string // JWT署名シークレット

	// 手数料ポリシー。通貨は整数なので送料も整数
	PlatformFeeRate decimal.Decimal // 例: 0.02
	ShippingFee     int64           // 出店者ごとの固定送料

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	feeRate, err := decimal.NewFromString(getenv("PLATFORM_FEE_RATE", "0.02"))
	if err != nil {
		return Config{}, fmt.Errorf("PLATFORM_FEE_RATE must be a decimal: %w", err)
	}
	if feeRate.IsNegative() || feeRate.GreaterThan(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("PLATFORM_FEE_RATE must be in [0,1]")
	}

	shippingFee, err := strconv.ParseInt(getenv("SHIPPING_FEE", "30000"), 10, 64)
	if err != nil || shippingFee < 0 {
		return Config{}, fmt.Errorf("SHIPPING_FEE must be a non-negative number")
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),

		KafkaBrokers: strings.Split(getenv("KAFKA_BROKERS", "localhost:9092"), ","),
		CaptureTopic: getenv("KAFKA_CAPTURE_TOPIC", "payment.capture.requested"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		PlatformFeeRate: feeRate,
		ShippingFee:     shippingFee,

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
