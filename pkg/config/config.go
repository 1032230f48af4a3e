package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	StorageBucket   string

	PaymentAPIBase   string
	PaymentSecretKey string
	OpenAIKey        string

	WebSocketURL string

	Limits TransactionLimits
}

// TransactionLimits are int64 minor units (cents).
type TransactionLimits struct {
	MinDeposit         int64
	MaxDeposit         int64
	MinWithdrawal      int64
	MaxWithdrawal      int64
	DailyLimit         int64
	WithdrawFeePercent int64 // flat percentage, e.g. 1
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		FirebaseProject:  getEnv("FIREBASE_PROJECT_ID", ""),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		PaymentAPIBase:   getEnv("PAYMENT_API_BASE", "http://localhost:8098"),
		PaymentSecretKey: getEnv("PAYMENT_SECRET_KEY", ""),
		OpenAIKey:        getEnv("OPENAI_API_KEY", ""),
		WebSocketURL:     getEnv("WEBSOCKET_URL", "ws://localhost:8080/ws"),
		Limits: TransactionLimits{
			MinDeposit:         getEnvAsInt64("MIN_DEPOSIT", 100_00),
			MaxDeposit:         getEnvAsInt64("MAX_DEPOSIT", 999_999_00),
			MinWithdrawal:      getEnvAsInt64("MIN_WITHDRAWAL", 500_00),
			MaxWithdrawal:      getEnvAsInt64("MAX_WITHDRAWAL", 500_000_00),
			DailyLimit:         getEnvAsInt64("DAILY_LIMIT", 999_999_00),
			WithdrawFeePercent: getEnvAsInt64("WITHDRAW_FEE_PERCENT", 1),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
