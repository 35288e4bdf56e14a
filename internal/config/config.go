package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     string `yaml:"port"`
	MongoURI string `yaml:"mongo_uri"`
	MongoDB  string `yaml:"mongo_db"`

	// Session tokens: HS256 with JWTSecret, or RS256 when JWTKeyPath is set.
	JWTSecret     string `yaml:"jwt_secret"`
	JWTTTLMinutes int    `yaml:"jwt_ttl_minutes"`
	JWTKeyPath    string `yaml:"jwt_rsa_key_path"`
	JWTKid        string `yaml:"jwt_rsa_kid"`
	JWTNextPath   string `yaml:"jwt_rsa_next_key_path"`
	JWTNextKid    string `yaml:"jwt_rsa_next_kid"`
	BcryptCost    int    `yaml:"bcrypt_cost"`

	// External identity provider (bearer tokens on write endpoints).
	IDPJWKSURL       string `yaml:"idp_jwks_url"`
	IDPIssuer        string `yaml:"idp_issuer"`
	IDPAudience      string `yaml:"idp_audience"`
	JWKSCacheSeconds int    `yaml:"jwks_cache_seconds"`

	RedisAddr           string `yaml:"redis_addr"`
	StationCacheSeconds int    `yaml:"station_cache_seconds"`

	RabbitURL      string `yaml:"rabbit_url"`
	RabbitExchange string `yaml:"rabbit_exchange"`
	RabbitQueue    string `yaml:"rabbit_queue"`
	RabbitBindKey  string `yaml:"rabbit_bind_key"`
	Concurrency    int    `yaml:"rabbit_concurrency"`

	ServiceName   string `yaml:"service_name"`
	LogProduction bool   `yaml:"log_production"`
	DDEnabled     bool   `yaml:"dd_enabled"`
	GinMode       string `yaml:"gin_mode"`
}

func defaults() Config {
	return Config{
		Port:                "5000",
		MongoDB:             "radioStations",
		JWTTTLMinutes:       60,
		JWTKid:              "k1",
		BcryptCost:          10,
		JWKSCacheSeconds:    3600,
		StationCacheSeconds: 30,
		RabbitExchange:      "radio.events",
		RabbitQueue:         "radio.audit",
		RabbitBindKey:       "#",
		Concurrency:         2,
		ServiceName:         "radiostation-service",
		GinMode:             "release",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables. Later sources win.
func Load() (Config, error) {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(b))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(c *Config) {
	c.Port = getenv("APP_PORT", getenv("PORT", c.Port))
	c.MongoURI = getenv("MONGO_URI", c.MongoURI)
	c.MongoDB = getenv("MONGO_DB", c.MongoDB)
	c.JWTSecret = getenv("JWT_SECRET", c.JWTSecret)
	c.JWTTTLMinutes = geti("JWT_TTL_MINUTES", c.JWTTTLMinutes)
	c.JWTKeyPath = getenv("JWT_RSA_KEY_PATH", c.JWTKeyPath)
	c.JWTKid = getenv("JWT_RSA_KID", c.JWTKid)
	c.JWTNextPath = getenv("JWT_RSA_NEXT_KEY_PATH", c.JWTNextPath)
	c.JWTNextKid = getenv("JWT_RSA_NEXT_KID", c.JWTNextKid)
	c.BcryptCost = geti("BCRYPT_COST", c.BcryptCost)
	c.IDPJWKSURL = getenv("IDP_JWKS_URL", c.IDPJWKSURL)
	c.IDPIssuer = getenv("IDP_ISSUER", c.IDPIssuer)
	c.IDPAudience = getenv("IDP_AUDIENCE", c.IDPAudience)
	c.JWKSCacheSeconds = geti("JWKS_CACHE_SECONDS", c.JWKSCacheSeconds)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.StationCacheSeconds = geti("STATION_CACHE_SECONDS", c.StationCacheSeconds)
	c.RabbitURL = getenv("RABBIT_URL", c.RabbitURL)
	c.RabbitExchange = getenv("RABBIT_EXCHANGE", c.RabbitExchange)
	c.RabbitQueue = getenv("RABBIT_QUEUE", c.RabbitQueue)
	c.RabbitBindKey = getenv("RABBIT_BIND_KEY", c.RabbitBindKey)
	c.Concurrency = geti("RABBIT_CONCURRENCY", c.Concurrency)
	c.ServiceName = getenv("SERVICE_NAME", c.ServiceName)
	c.LogProduction = getb("LOG_PRODUCTION", c.LogProduction)
	c.DDEnabled = getb("DD_ENABLED", c.DDEnabled)
	c.GinMode = getenv("GIN_MODE", c.GinMode)
}

// Validate reports every missing required value at once.
func (c Config) Validate() error {
	var missing []string
	if c.MongoURI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.MongoDB == "" {
		missing = append(missing, "MONGO_DB")
	}
	if c.JWTSecret == "" && c.JWTKeyPath == "" {
		missing = append(missing, "JWT_SECRET or JWT_RSA_KEY_PATH")
	}
	if c.IDPJWKSURL == "" {
		missing = append(missing, "IDP_JWKS_URL")
	}
	if c.IDPAudience == "" {
		missing = append(missing, "IDP_AUDIENCE")
	}
	if c.Port == "" {
		missing = append(missing, "APP_PORT")
	}
	if len(missing) > 0 {
		return errors.New("missing required config: " + strings.Join(missing, ", "))
	}
	return nil
}

// ValidateNotifier checks what the audit consumer needs; it never touches Mongo.
func (c Config) ValidateNotifier() error {
	if c.RabbitURL == "" {
		return errors.New("missing required config: RABBIT_URL")
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func geti(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getb(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
