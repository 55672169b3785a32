package config

import (
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"open-wallet.backend/internal/usecases"
)

// Config holds all configuration values
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Ledger         LedgerConfig
	Agent          AgentConfig
	Blockchain     BlockchainConfig
	Reconciliation ReconciliationConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

// LedgerConfig holds the balance invariants
type LedgerConfig struct {
	DefaultCurrency   string
	MinBalance        decimal.Decimal
	MaxBalance        decimal.Decimal
	CurrencyPrecision int32
}

// AgentConfig holds agent policy defaults
type AgentConfig struct {
	DefaultPerTransactionLimit decimal.Decimal
}

// BlockchainConfig holds blockchain RPC configuration. An empty RPC URL
// selects the offline client.
type BlockchainConfig struct {
	RPCURL  string
	Network string
}

// ReconciliationConfig holds the pending-transaction reconciliation
// job settings
type ReconciliationConfig struct {
	Interval time.Duration
	MaxAge   time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "openwallet"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-this-in-production"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 15*time.Minute),
		},
		Ledger: LedgerConfig{
			DefaultCurrency:   getEnv("LEDGER_DEFAULT_CURRENCY", usecases.DefaultCurrency),
			MinBalance:        getEnvAsDecimal("LEDGER_MIN_BALANCE", usecases.DefaultMinBalance),
			MaxBalance:        getEnvAsDecimal("LEDGER_MAX_BALANCE", usecases.DefaultMaxBalance),
			CurrencyPrecision: int32(getEnvAsInt("LEDGER_CURRENCY_PRECISION", usecases.DefaultCurrencyPrecision)),
		},
		Agent: AgentConfig{
			DefaultPerTransactionLimit: getEnvAsDecimal("AGENT_DEFAULT_PER_TX_LIMIT", usecases.DefaultPerTransactionLimit),
		},
		Blockchain: BlockchainConfig{
			RPCURL:  getEnv("CHAIN_RPC_URL", ""),
			Network: getEnv("CHAIN_NETWORK", "base-sepolia"),
		},
		Reconciliation: ReconciliationConfig{
			Interval: getEnvAsDuration("RECONCILIATION_INTERVAL", time.Minute),
			MaxAge:   getEnvAsDuration("RECONCILIATION_MAX_AGE", 5*time.Minute),
		},
	}
}

// ToLedger converts the config section into the usecase form.
func (c LedgerConfig) ToLedger() usecases.LedgerConfig {
	return usecases.LedgerConfig{
		DefaultCurrency: c.DefaultCurrency,
		MinBalance:      c.MinBalance,
		MaxBalance:      c.MaxBalance,
		Precision:       c.CurrencyPrecision,
	}
}

// ToAgent converts the config section into the usecase form.
func (c AgentConfig) ToAgent() usecases.AgentConfig {
	return usecases.AgentConfig{
		DefaultPerTransactionLimit: c.DefaultPerTransactionLimit,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if dec, err := decimal.NewFromString(value); err == nil {
			return dec
		}
	}
	return defaultValue
}
