package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv        string
	LogLevel      string
	Port          string
	PublicBaseURL string

	// Stockage du panier : "redis" (par défaut) ou "file"
	CartStore string
	CartDir   string
	CartTTL   time.Duration

	SessionSecret string
	JWTSecret     string

	RedisHost     string
	RedisPassword string

	ScyllaHosts    []string
	ScyllaKeyspace string
	ScyllaUsername string
	ScyllaPassword string

	ElasticURL      string
	ElasticUser     string
	ElasticPassword string
	ElasticIndex    string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	// Fuseau des journées de statistiques
	StatsTimezone string

	RateLimitPerMinute int
	CORSOrigins        []string
}

// Load charge le fichier .env (s'il existe) puis lit les variables d'environnement.
// Le booléen indique si un fichier .env a été trouvé.
func Load() (Config, bool) {
	envLoaded := godotenv.Load(".env") == nil

	return Config{
		AppEnv:        getEnv("APP_ENV", "dev"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Port:          getEnv("PORT", "8080"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),

		CartStore: strings.ToLower(getEnv("CART_STORE", "redis")),
		CartDir:   getEnv("CART_DIR", "./data/carts"),
		CartTTL:   getEnvDuration("CART_TTL", 30*24*time.Hour),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ScyllaHosts:    splitList(getEnv("SCYLLA_HOSTS", "127.0.0.1")),
		ScyllaKeyspace: getEnv("SCYLLA_KEYSPACE", "kissariya"),
		ScyllaUsername: os.Getenv("SCYLLA_USERNAME"),
		ScyllaPassword: os.Getenv("SCYLLA_PASSWORD"),

		ElasticURL:      os.Getenv("ELASTIC_URL"),
		ElasticUser:     os.Getenv("ELASTIC_USER"),
		ElasticPassword: os.Getenv("ELASTIC_PASSWORD"),
		ElasticIndex:    getEnv("ELASTIC_INDEX", "products"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    getEnv("MINIO_BUCKET", "kissariya-images"),
		MinIOUseSSL:    strings.ToLower(os.Getenv("MINIO_USE_SSL")) == "true",
		MinIOPublicURL: strings.TrimRight(os.Getenv("MINIO_PUBLIC_URL"), "/"),

		StatsTimezone: getEnv("STATS_TIMEZONE", "Africa/Casablanca"),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}, envLoaded
}

func (c Config) IsProduction() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
