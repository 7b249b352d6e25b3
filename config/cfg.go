package config

import (
	"fmt"
	"os"
	"strings"

	httpapi "github.com/myshop/myshop-manager/internal/api/http"
	"github.com/myshop/myshop-manager/internal/apisrv/auth"
	"github.com/myshop/myshop-manager/internal/cache"
	"github.com/myshop/myshop-manager/internal/mail"
	"github.com/myshop/myshop-manager/internal/ratelimit"
	"github.com/myshop/myshop-manager/internal/stats"
	"github.com/myshop/myshop-manager/internal/store"
	"github.com/myshop/myshop-manager/internal/store/bunt"
	"github.com/myshop/myshop-manager/log"
	"github.com/spf13/viper"
)

const (
	StorageBunt  = "bunt"
	StorageMySQL = "mysql"
)

// StorageConfig selects the record store backend.
type StorageConfig struct {
	Type string `mapstructure:"type"`
}

// ShopConfig holds the shop identity used in reports and emails.
type ShopConfig struct {
	Name string `mapstructure:"name"`
	// Language is the BCP 47 tag used to format report numbers.
	Language string `mapstructure:"language"`
}

// Config represents the global configuration for the service.
type Config struct {
	Storage   StorageConfig    `mapstructure:"storage"`
	DB        store.Config     `mapstructure:"mysql"`
	Bunt      bunt.Config      `mapstructure:"bunt"`
	Logger    log.Config       `mapstructure:"logger"`
	HTTP      httpapi.Config   `mapstructure:"http"`
	Auth      auth.Config      `mapstructure:"auth"`
	Mailer    mail.Config      `mapstructure:"mailer"`
	Cache     cache.Config     `mapstructure:"cache"`
	Stats     stats.Config     `mapstructure:"stats"`
	Shop      ShopConfig       `mapstructure:"shop"`
	RateLimit ratelimit.Limits `mapstructure:"ratelimit"`
}

// LoadConfig loads the configuration from a file and/or environment variables.
// Environment variables take precedence over config file values.
// Nested config keys use double underscore, e.g., MYSQL__DSN for mysql.dsn
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefaults(v)

	v.AutomaticEnv()
	// e.g., mysql.dsn -> MYSQL__DSN, auth.jwtSecret -> AUTH__JWTSECRET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))
	bindEnvVars(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %v", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/config/myshop-manager")
		v.AddConfigPath("/etc/myshop-manager")
		_ = v.ReadInConfig()
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config into struct: %v", err)
	}

	// Build the MySQL DSN from individual env vars if it is not set
	if config.DB.DSN == "" {
		if host := os.Getenv("MYSQL_HOST"); host != "" {
			port := os.Getenv("MYSQL_PORT")
			if port == "" {
				port = "3306"
			}
			user, password, database := os.Getenv("MYSQL_USER"), os.Getenv("MYSQL_PASSWORD"), os.Getenv("MYSQL_DATABASE")
			if user != "" && password != "" && database != "" {
				config.DB.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true",
					user, password, host, port, database)
			}
		}
	}

	switch config.Storage.Type {
	case StorageBunt, StorageMySQL:
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.Storage.Type)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.type", StorageBunt)
	v.SetDefault("bunt.path", "data.db")
	v.SetDefault("mysql.automigrate", true)
	v.SetDefault("http.port", "8081")
	v.SetDefault("auth.adminName", "Admin")
	v.SetDefault("auth.jwtttl", "24h")
	v.SetDefault("mailer.worker_interval", "1m")
	v.SetDefault("cache.type", cache.TypeMemory)
	v.SetDefault("stats.timezone", "Africa/Douala")
	v.SetDefault("stats.cache_ttl", "10m")
	v.SetDefault("shop.name", "MyShop")
	v.SetDefault("shop.language", "fr-CM")
}

// bindEnvVars binds flat environment variable names to config keys
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("bunt.path", "BUNT_PATH")

	// MySQL
	v.BindEnv("mysql.dsn", "MYSQL_DSN")
	v.BindEnv("mysql.automigrate", "MYSQL_AUTOMIGRATE")
	v.BindEnv("mysql.max_open_connections", "MYSQL_MAX_OPEN_CONNECTIONS")
	v.BindEnv("mysql.max_idle_connections", "MYSQL_MAX_IDLE_CONNECTIONS")
	v.BindEnv("mysql.tls_ca_path", "MYSQL_TLS_CA_PATH")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.add_source", "LOG_ADD_SOURCE")

	// HTTP
	v.BindEnv("http.port", "HTTP_PORT")
	v.BindEnv("http.address", "HTTP_ADDRESS")
	v.BindEnv("http.allowed_origins", "HTTP_ALLOWED_ORIGINS")
	v.BindEnv("http.trust_proxy", "HTTP_TRUST_PROXY")
	v.BindEnv("http.requests_per_minute", "HTTP_REQUESTS_PER_MINUTE")

	// Auth
	v.BindEnv("auth.jwtSecret", "AUTH_JWT_SECRET", "JWT_SECRET")
	v.BindEnv("auth.adminEmail", "AUTH_ADMIN_EMAIL", "ADMIN_EMAIL")
	v.BindEnv("auth.adminName", "AUTH_ADMIN_NAME")
	v.BindEnv("auth.masterPassword", "AUTH_MASTER_PASSWORD", "ADMIN_PASSWORD")
	v.BindEnv("auth.masterPasswordHash", "AUTH_MASTER_PASSWORD_HASH")
	v.BindEnv("auth.bcryptCost", "AUTH_BCRYPT_COST")
	v.BindEnv("auth.jwtttl", "AUTH_JWT_TTL")

	// Mailer
	v.BindEnv("mailer.sendgrid_api_key", "MAILER_SENDGRID_API_KEY")
	v.BindEnv("mailer.from_email", "MAILER_FROM_EMAIL")
	v.BindEnv("mailer.from_email_name", "MAILER_FROM_EMAIL_NAME")
	v.BindEnv("mailer.reply_to", "MAILER_REPLY_TO")
	v.BindEnv("mailer.worker_interval", "MAILER_WORKER_INTERVAL")

	// Cache
	v.BindEnv("cache.type", "CACHE_TYPE")
	v.BindEnv("cache.redis_addr", "REDIS_ADDR")
	v.BindEnv("cache.redis_db", "REDIS_DB")
	v.BindEnv("cache.prefix", "CACHE_PREFIX")

	// Stats
	v.BindEnv("stats.timezone", "STATS_TIMEZONE")
	v.BindEnv("stats.cache_ttl", "STATS_CACHE_TTL")
	v.BindEnv("stats.cache_resolution", "STATS_CACHE_RESOLUTION")

	// Shop
	v.BindEnv("shop.name", "SHOP_NAME")
	v.BindEnv("shop.language", "SHOP_LANGUAGE")

	// Rate limits
	v.BindEnv("ratelimit.login_per_ip", "RATELIMIT_LOGIN_PER_IP")
	v.BindEnv("ratelimit.orders_per_ip", "RATELIMIT_ORDERS_PER_IP")
	v.BindEnv("ratelimit.orders_per_email", "RATELIMIT_ORDERS_PER_EMAIL")
}
