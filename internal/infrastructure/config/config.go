package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment string                 `mapstructure:"environment"`
	LogLevel    string                 `mapstructure:"log_level"`
	Server      ServerConfig           `mapstructure:"server"`
	Database    DatabaseConfig         `mapstructure:"database"`
	Redis       RedisConfig            `mapstructure:"redis"`
	JWT         JWTConfig              `mapstructure:"jwt"`
	Chains      map[string]ChainConfig `mapstructure:"chains"`
	PriceFeed   PriceFeedConfig        `mapstructure:"pricefeed"`
	Fees        FeesConfig             `mapstructure:"fees"`
	Bridges     []BridgeSeed           `mapstructure:"bridges"`
	Oracle      OracleConfig           `mapstructure:"oracle"`
	Messenger   MessengerConfig        `mapstructure:"messenger"`
	Workers     WorkerConfig           `mapstructure:"workers"`
	Tracing     TracingConfig          `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port            int      `mapstructure:"port"`
	Host            string   `mapstructure:"host"`
	ReadTimeout     int      `mapstructure:"read_timeout"`
	WriteTimeout    int      `mapstructure:"write_timeout"`
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	RateLimitPerMin int      `mapstructure:"rate_limit_per_min"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"url"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	QueryTimeout    int    `mapstructure:"query_timeout"`
	MaxRetries      int    `mapstructure:"max_retries"`
	MigrationsPath  string `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	MaxRetries int    `mapstructure:"max_retries"`
	PoolSize   int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret    string `mapstructure:"secret"`
	AccessTTL int    `mapstructure:"access_token_ttl"`
	Issuer    string `mapstructure:"issuer"`
}

// ChainConfig is the static per-network reference data. The map key is the
// chain id ("ethereum", "solana", ...).
type ChainConfig struct {
	Name           string `mapstructure:"name"`
	NetworkID      int    `mapstructure:"network_id"`
	EVM            bool   `mapstructure:"evm"`
	RiskMultiplier string `mapstructure:"risk_multiplier"`
	GasConstant    string `mapstructure:"gas_constant"`
	PriceSource    string `mapstructure:"price_source"`
	RelayEndpoint  string `mapstructure:"relay_endpoint"`
}

type PriceFeedConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
	RefreshSeconds  int    `mapstructure:"refresh_seconds"`
	Symbol          string `mapstructure:"symbol"`
}

type FeesConfig struct {
	ServiceFeeRate string `mapstructure:"service_fee_rate"`
	BridgeBaseFee  string `mapstructure:"bridge_base_fee"`
	BridgeFeeRate  string `mapstructure:"bridge_fee_rate"`
	MaxPriceImpact string `mapstructure:"max_price_impact"`
}

// BridgeSeed registers a bridge at startup so a fresh process can quote
// without waiting for admin calls
type BridgeSeed struct {
	Name           string   `mapstructure:"name"`
	Protocol       string   `mapstructure:"protocol"`
	Kind           string   `mapstructure:"kind"`
	AdapterAddress string   `mapstructure:"adapter_address"`
	Priority       int      `mapstructure:"priority"`
	FeeMultiplier  string   `mapstructure:"fee_multiplier"`
	SourceChains   []string `mapstructure:"source_chains"`
	DestChains     []string `mapstructure:"dest_chains"`
}

type OracleConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Environment string `mapstructure:"environment"` // sandbox or mainnet
	Timeout     int    `mapstructure:"timeout"`
}

type MessengerConfig struct {
	SourceChain string `mapstructure:"source_chain"`
}

// WorkerConfig contains background worker configuration
type WorkerConfig struct {
	PriceRefreshSeconds int `mapstructure:"price_refresh_seconds"`
	DeliveryPollSeconds int `mapstructure:"delivery_poll_seconds"`
	DeliveryBatchSize   int `mapstructure:"delivery_batch_size"`
}

type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	CollectorURL string  `mapstructure:"collector_url"`
	SampleRate   float64 `mapstructure:"sample_rate"`
	Insecure     bool    `mapstructure:"insecure"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors if file doesn't exist)
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Read from config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Override with environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Override specific environment variables
	overrideFromEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Build database URL if not provided
	if config.Database.URL == "" {
		config.Database.URL = fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?sslmode=%s",
			config.Database.User,
			config.Database.Password,
			config.Database.Host,
			config.Database.Port,
			config.Database.Name,
			config.Database.SSLMode,
		)
	}

	// Validate required fields
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.rate_limit_per_min", 100)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "stableroute_service")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.max_idle_conns", 25)
	viper.SetDefault("database.conn_max_lifetime", 3600)
	viper.SetDefault("database.query_timeout", 30)
	viper.SetDefault("database.max_retries", 3)
	viper.SetDefault("database.migrations_path", "migrations")

	// Redis defaults
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)

	// JWT defaults
	viper.SetDefault("jwt.access_token_ttl", 86400) // 1 day
	viper.SetDefault("jwt.issuer", "stableroute_service")

	// Supported chains
	viper.SetDefault("chains", map[string]interface{}{
		"ethereum": map[string]interface{}{
			"name": "Ethereum", "network_id": 1, "evm": true,
			"risk_multiplier": "1.0", "gas_constant": "5.0", "price_source": "chainlink",
			"relay_endpoint": "https://relay.stableroute.io/ethereum",
		},
		"polygon": map[string]interface{}{
			"name": "Polygon", "network_id": 137, "evm": true,
			"risk_multiplier": "1.1", "gas_constant": "0.1", "price_source": "chainlink",
			"relay_endpoint": "https://relay.stableroute.io/polygon",
		},
		"arbitrum": map[string]interface{}{
			"name": "Arbitrum One", "network_id": 42161, "evm": true,
			"risk_multiplier": "1.05", "gas_constant": "0.3", "price_source": "chainlink",
			"relay_endpoint": "https://relay.stableroute.io/arbitrum",
		},
		"optimism": map[string]interface{}{
			"name": "Optimism", "network_id": 10, "evm": true,
			"risk_multiplier": "1.05", "gas_constant": "0.3", "price_source": "chainlink",
			"relay_endpoint": "https://relay.stableroute.io/optimism",
		},
		"base": map[string]interface{}{
			"name": "Base", "network_id": 8453, "evm": true,
			"risk_multiplier": "1.05", "gas_constant": "0.2", "price_source": "chainlink",
			"relay_endpoint": "https://relay.stableroute.io/base",
		},
		"solana": map[string]interface{}{
			"name": "Solana", "network_id": 101, "evm": false,
			"risk_multiplier": "1.2", "gas_constant": "0.01", "price_source": "pyth",
			"relay_endpoint": "https://relay.stableroute.io/solana",
		},
	})

	// Price feed defaults
	viper.SetDefault("pricefeed.cache_ttl_seconds", 15)
	viper.SetDefault("pricefeed.refresh_seconds", 10)
	viper.SetDefault("pricefeed.symbol", "USDC")

	// Fee defaults
	viper.SetDefault("fees.service_fee_rate", "0.0001")
	viper.SetDefault("fees.bridge_base_fee", "2.0")
	viper.SetDefault("fees.bridge_fee_rate", "0.0005")
	viper.SetDefault("fees.max_price_impact", "0.05")

	// Oracle defaults
	viper.SetDefault("oracle.environment", "sandbox")
	viper.SetDefault("oracle.timeout", 30)

	// Messenger defaults
	viper.SetDefault("messenger.source_chain", "ethereum")

	// Worker defaults
	viper.SetDefault("workers.price_refresh_seconds", 10)
	viper.SetDefault("workers.delivery_poll_seconds", 5)
	viper.SetDefault("workers.delivery_batch_size", 50)

	// Tracing defaults
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sample_rate", 0.1)
	viper.SetDefault("tracing.insecure", true)
}

func overrideFromEnv() {
	// Server
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			viper.Set("server.port", p)
		}
	}

	// Database
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		viper.Set("database.url", dbURL)
	}

	// Redis
	if redisHost := os.Getenv("REDIS_HOST"); redisHost != "" {
		viper.Set("redis.host", redisHost)
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		viper.Set("redis.password", redisPassword)
	}

	// JWT
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		viper.Set("jwt.secret", jwtSecret)
	}

	// Oracle API
	if oracleBaseURL := os.Getenv("ORACLE_BASE_URL"); oracleBaseURL != "" {
		viper.Set("oracle.base_url", oracleBaseURL)
	}
	if oracleEnv := os.Getenv("ORACLE_ENVIRONMENT"); oracleEnv != "" {
		viper.Set("oracle.environment", oracleEnv)
	}
	if oracleTimeout := os.Getenv("ORACLE_TIMEOUT"); oracleTimeout != "" {
		if timeout, err := strconv.Atoi(oracleTimeout); err == nil {
			viper.Set("oracle.timeout", timeout)
		}
	}

	// Messenger
	if sourceChain := os.Getenv("MESSENGER_SOURCE_CHAIN"); sourceChain != "" {
		viper.Set("messenger.source_chain", strings.ToLower(strings.TrimSpace(sourceChain)))
	}

	// Tracing
	if collectorURL := os.Getenv("OTEL_COLLECTOR_URL"); collectorURL != "" {
		viper.Set("tracing.collector_url", collectorURL)
		viper.Set("tracing.enabled", true)
	}
}

func validate(config *Config) error {
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Database.URL == "" && (config.Database.Host == "" || config.Database.Name == "") {
		return fmt.Errorf("database configuration is incomplete")
	}

	if len(config.Chains) == 0 {
		return fmt.Errorf("at least one supported chain is required")
	}

	if _, ok := config.Chains[config.Messenger.SourceChain]; !ok {
		return fmt.Errorf("messenger source chain %q is not in the supported chain set", config.Messenger.SourceChain)
	}

	for _, seed := range config.Bridges {
		if seed.Name == "" || seed.AdapterAddress == "" {
			return fmt.Errorf("bridge seeds need a name and adapter_address")
		}
	}

	return nil
}
