package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Requests  RequestsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "memory"
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	Issuer      string
	ExpiryHours int
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         int
}

type RequestsConfig struct {
	TTLHours          int
	SweepInterval     time.Duration
	ExpiredRetention  time.Duration
	SearchLimit       int
	BulkSearchLimit   int
	ListLimit         int
	RelevantListLimit int
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second per client
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

func setDefaults() {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	viper.SetDefault("JWT_ISSUER", "bloodlink")
	viper.SetDefault("JWT_EXPIRY_HOURS", 7*24)

	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5*time.Second)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3*time.Second)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3*time.Second)

	viper.SetDefault("MQTT_CLIENT_ID", "bloodlink-api")
	viper.SetDefault("MQTT_TOPIC_PREFIX", "bloodlink")
	viper.SetDefault("MQTT_QOS", 1)

	viper.SetDefault("REQUEST_TTL_HOURS", 7*24)
	viper.SetDefault("REQUEST_SWEEP_INTERVAL", time.Minute)
	viper.SetDefault("REQUEST_EXPIRED_RETENTION", time.Duration(0))
	viper.SetDefault("DONOR_SEARCH_LIMIT", 50)
	viper.SetDefault("DONOR_BULK_SEARCH_LIMIT", 100)
	viper.SetDefault("REQUEST_LIST_LIMIT", 50)
	viper.SetDefault("REQUEST_RELEVANT_LIMIT", 20)

	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 40)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	viper.SetDefault("CORS_MAX_AGE", 12*time.Hour)
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Driver:   viper.GetString("DB_DRIVER"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			Issuer:      viper.GetString("JWT_ISSUER"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Redis: RedisConfig{
			URL:          viper.GetString("REDIS_URL"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			DialTimeout:  viper.GetDuration("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetDuration("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("REDIS_WRITE_TIMEOUT"),
		},
		MQTT: MQTTConfig{
			Broker:      viper.GetString("MQTT_BROKER"),
			ClientID:    viper.GetString("MQTT_CLIENT_ID"),
			Username:    viper.GetString("MQTT_USERNAME"),
			Password:    viper.GetString("MQTT_PASSWORD"),
			TopicPrefix: viper.GetString("MQTT_TOPIC_PREFIX"),
			QoS:         viper.GetInt("MQTT_QOS"),
		},
		Requests: RequestsConfig{
			TTLHours:          viper.GetInt("REQUEST_TTL_HOURS"),
			SweepInterval:     viper.GetDuration("REQUEST_SWEEP_INTERVAL"),
			ExpiredRetention:  viper.GetDuration("REQUEST_EXPIRED_RETENTION"),
			SearchLimit:       viper.GetInt("DONOR_SEARCH_LIMIT"),
			BulkSearchLimit:   viper.GetInt("DONOR_BULK_SEARCH_LIMIT"),
			ListLimit:         viper.GetInt("REQUEST_LIST_LIMIT"),
			RelevantListLimit: viper.GetInt("REQUEST_RELEVANT_LIMIT"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetDuration("CORS_MAX_AGE"),
		},
	}

	return config, nil
}

// Validate reports configuration that makes the service unable to start.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT secret is missing: set JWT_SECRET")
	}
	if c.Database.Driver == "postgres" && (c.Database.Host == "" || c.Database.DBName == "") {
		return errors.New("database configuration is missing: set DB_HOST and DB_NAME")
	}
	if c.JWT.ExpiryHours <= 0 {
		return errors.New("JWT_EXPIRY_HOURS must be positive")
	}
	if c.Requests.TTLHours <= 0 {
		return errors.New("REQUEST_TTL_HOURS must be positive")
	}
	return nil
}

func (c *JWTConfig) TTL() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

func (c *RequestsConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
