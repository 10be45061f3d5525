package config

const EnvPrefix = "GROCERRYPOINT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
)

const (
	EnvAppEnv            = "GROCERRYPOINT_APP_ENV"
	EnvPort              = "GROCERRYPOINT_APP_PORT"
	EnvDBDSN             = "GROCERRYPOINT_DB_DSN"
	EnvDBDriver          = "GROCERRYPOINT_DB_DRIVER"
	EnvDBHost            = "GROCERRYPOINT_DB_HOST"
	EnvDBUser            = "GROCERRYPOINT_DB_USER"
	EnvDBName            = "GROCERRYPOINT_DB_NAME"
	EnvDBPassword        = "GROCERRYPOINT_DB_PASSWORD"
	EnvRedisURL          = "GROCERRYPOINT_REDIS_URL"
	EnvJWTSecret         = "GROCERRYPOINT_JWT_SECRET"
	EnvJWTIssuer         = "GROCERRYPOINT_JWT_ISSUER"
	EnvOrderAPIBaseURL   = "GROCERRYPOINT_ORDER_API_BASE_URL"
	EnvCartStore         = "GROCERRYPOINT_CART_STORE"
	EnvCouponCode        = "GROCERRYPOINT_COUPON_ACCEPTED_CODE"
	EnvPricingThreshold  = "GROCERRYPOINT_PRICING_FREE_DELIVERY_THRESHOLD"
	EnvPricingMaxFee     = "GROCERRYPOINT_PRICING_MAX_SHIPPING_FEE"
	EnvPricingGapDivisor = "GROCERRYPOINT_PRICING_SHIPPING_GAP_DIVISOR"
	EnvSubmitTimeout     = "GROCERRYPOINT_CHECKOUT_SUBMIT_TIMEOUT"
)

var discreteDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
