package config

import (
	"bufio"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppPort         = "3000"
	defaultAppEnv          = "local"
	defaultMongoURI        = "mongodb://localhost:27017"
	defaultMongoDatabase   = "LocalChefBazaar"
	defaultRedisAddr       = "localhost:6379"
	defaultJWTSecret       = "change-me-in-production"
	defaultStripeAPIBase   = "https://api.stripe.com"
	defaultSuccessURL      = "http://localhost:5173/payment-success?session_id={CHECKOUT_SESSION_ID}"
	defaultCancelURL       = "http://localhost:5173/payment-cancelled"
	defaultReconcileEvery  = time.Minute
	defaultMealCacheExpiry = 30 * time.Second
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":             defaultAppPort,
		"APP_ENV":              defaultAppEnv,
		"MONGODB_URI":          defaultMongoURI,
		"MONGO_DB":             defaultMongoDatabase,
		"REDIS_ADDR":           defaultRedisAddr,
		"REDIS_PASSWORD":       "",
		"JWT_SECRET":           defaultJWTSecret,
		"STRIPE_SECRET_KEY":    "",
		"STRIPE_API_BASE":      defaultStripeAPIBase,
		"CHECKOUT_SUCCESS_URL": defaultSuccessURL,
		"CHECKOUT_CANCEL_URL":  defaultCancelURL,
		"LOG_TO_MONGO":         "",
	}
}

// Load reads .env (if present) on first call. Process environment variables
// always win over file values so deployments can override without a file.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFile(".env")
	})
	return loadErr
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

func MongoURI() string      { _ = Load(); return get("MONGODB_URI", defaultMongoURI) }
func MongoDatabase() string { _ = Load(); return get("MONGO_DB", defaultMongoDatabase) }

func RedisAddr() string     { _ = Load(); return get("REDIS_ADDR", defaultRedisAddr) }
func RedisPassword() string { _ = Load(); return get("REDIS_PASSWORD", "") }

func JWTSecret() string { _ = Load(); return get("JWT_SECRET", defaultJWTSecret) }

func StripeSecret() string  { _ = Load(); return get("STRIPE_SECRET_KEY", "") }
func StripeAPIBase() string { _ = Load(); return get("STRIPE_API_BASE", defaultStripeAPIBase) }

func CheckoutSuccessURL() string {
	_ = Load()
	return get("CHECKOUT_SUCCESS_URL", defaultSuccessURL)
}

func CheckoutCancelURL() string {
	_ = Load()
	return get("CHECKOUT_CANCEL_URL", defaultCancelURL)
}

// LogToMongo reports whether application logs should also be shipped to the
// logs collection in MongoDB.
func LogToMongo() bool {
	_ = Load()
	v := strings.ToLower(get("LOG_TO_MONGO", ""))
	return v == "1" || v == "true" || v == "yes"
}

// ReconcileInterval is how often the payment reconciliation sweep runs.
func ReconcileInterval() time.Duration {
	_ = Load()
	if d, err := time.ParseDuration(get("RECONCILE_INTERVAL", "")); err == nil && d > 0 {
		return d
	}
	return defaultReconcileEvery
}

// MealCacheTTL is how long the cached meal listing stays fresh.
func MealCacheTTL() time.Duration {
	_ = Load()
	if d, err := time.ParseDuration(get("MEAL_CACHE_TTL", "")); err == nil && d > 0 {
		return d
	}
	return defaultMealCacheExpiry
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

func loadFromFile(envPath string) error {
	loaded := defaultValues()

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	return scanner.Err()
}

func get(key, fallback string) string {
	if env := strings.TrimSpace(os.Getenv(key)); env != "" {
		return env
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}
