package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	RateLimit  RateLimitConfig
	Pricing    PricingConfig
	Coupon     CouponConfig
	Cart       CartConfig
	Checkout   CheckoutConfig
	OrderAPI   OrderAPIConfig
	Newsletter NewsletterConfig
	Sendgrid   SendgridConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GROCERRYPOINT_APP_ENV" required:"true"`
	Port         string `envconfig:"GROCERRYPOINT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GROCERRYPOINT_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"GROCERRYPOINT_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"GROCERRYPOINT_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"GROCERRYPOINT_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GROCERRYPOINT_DB_DSN"`
	Driver string `envconfig:"GROCERRYPOINT_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GROCERRYPOINT_DB_HOST"`
	Port     int    `envconfig:"GROCERRYPOINT_DB_PORT" default:"5432"`
	User     string `envconfig:"GROCERRYPOINT_DB_USER"`
	Password string `envconfig:"GROCERRYPOINT_DB_PASSWORD"`
	Name     string `envconfig:"GROCERRYPOINT_DB_NAME"`
	SSLMode  string `envconfig:"GROCERRYPOINT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROCERRYPOINT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROCERRYPOINT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROCERRYPOINT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROCERRYPOINT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the journal runs on the embedded SQLite driver.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"GROCERRYPOINT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GROCERRYPOINT_REDIS_ADDR"`
	Password     string        `envconfig:"GROCERRYPOINT_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROCERRYPOINT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROCERRYPOINT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROCERRYPOINT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROCERRYPOINT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROCERRYPOINT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROCERRYPOINT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes the tokens minted by the external auth service.
type JWTConfig struct {
	Secret            string `envconfig:"GROCERRYPOINT_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GROCERRYPOINT_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"GROCERRYPOINT_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"GROCERRYPOINT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type RateLimitConfig struct {
	CouponWindow         time.Duration `envconfig:"GROCERRYPOINT_RATE_LIMIT_COUPON_WINDOW" default:"1m"`
	CouponIPLimit        int           `envconfig:"GROCERRYPOINT_RATE_LIMIT_COUPON_IP_LIMIT" default:"20"`
	NewsletterWindow     time.Duration `envconfig:"GROCERRYPOINT_RATE_LIMIT_NEWSLETTER_WINDOW" default:"10m"`
	NewsletterIPLimit    int           `envconfig:"GROCERRYPOINT_RATE_LIMIT_NEWSLETTER_IP_LIMIT" default:"20"`
	NewsletterEmailLimit int           `envconfig:"GROCERRYPOINT_RATE_LIMIT_NEWSLETTER_EMAIL_LIMIT" default:"3"`
}

// PricingConfig holds the delivery fee constants used by the calculator.
type PricingConfig struct {
	FreeDeliveryThreshold float64 `envconfig:"GROCERRYPOINT_PRICING_FREE_DELIVERY_THRESHOLD" default:"499"`
	MaxShippingFee        float64 `envconfig:"GROCERRYPOINT_PRICING_MAX_SHIPPING_FEE" default:"50"`
	ShippingGapDivisor    float64 `envconfig:"GROCERRYPOINT_PRICING_SHIPPING_GAP_DIVISOR" default:"10"`
}

func (p PricingConfig) validate() error {
	if p.FreeDeliveryThreshold < 0 {
		return fmt.Errorf("%s must not be negative", EnvPricingThreshold)
	}
	if p.MaxShippingFee < 0 {
		return fmt.Errorf("%s must not be negative", EnvPricingMaxFee)
	}
	if p.ShippingGapDivisor <= 0 {
		return fmt.Errorf("%s must be positive", EnvPricingGapDivisor)
	}
	return nil
}

type CouponConfig struct {
	AcceptedCode string `envconfig:"GROCERRYPOINT_COUPON_ACCEPTED_CODE" default:"SAVE10"`
}

type CartConfig struct {
	Store      string        `envconfig:"GROCERRYPOINT_CART_STORE" default:"memory"`
	SessionTTL time.Duration `envconfig:"GROCERRYPOINT_CART_SESSION_TTL" default:"24h"`
}

func (c CartConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case CartStoreMemory, CartStoreRedis:
		return nil
	}
	return fmt.Errorf("%s must be %q or %q", EnvCartStore, CartStoreMemory, CartStoreRedis)
}

// UsesRedis reports whether carts are kept in Redis instead of process memory.
func (c CartConfig) UsesRedis() bool {
	return strings.EqualFold(strings.TrimSpace(c.Store), CartStoreRedis)
}

type CheckoutConfig struct {
	SubmitTimeout time.Duration `envconfig:"GROCERRYPOINT_CHECKOUT_SUBMIT_TIMEOUT" default:"20s"`
}

type OrderAPIConfig struct {
	BaseURL string        `envconfig:"GROCERRYPOINT_ORDER_API_BASE_URL" required:"true"`
	Timeout time.Duration `envconfig:"GROCERRYPOINT_ORDER_API_TIMEOUT" default:"30s"`
}

type NewsletterConfig struct {
	OptimisticSuccess bool     `envconfig:"GROCERRYPOINT_NEWSLETTER_OPTIMISTIC_SUCCESS" default:"true"`
	ListIDs           []string `envconfig:"GROCERRYPOINT_NEWSLETTER_LIST_IDS"`
}

type SendgridConfig struct {
	APIKey string `envconfig:"GROCERRYPOINT_SENDGRID_API_KEY"`
	Host   string `envconfig:"GROCERRYPOINT_SENDGRID_HOST" default:"https://api.sendgrid.com"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
