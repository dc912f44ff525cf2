/**
 * @description
 * This package handles the configuration management for the assistant-service.
 * It uses the Viper library to read configuration from environment variables,
 * providing a centralized and straightforward way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the assistant-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisSessionPrefix       string `mapstructure:"REDIS_SESSION_PREFIX"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	GroqAPIBaseURL           string `mapstructure:"GROQ_API_BASE_URL"`
	GroqAPIKey               string `mapstructure:"GROQ_API_KEY"`
	GroqModel                string `mapstructure:"GROQ_MODEL"`
	MonoAPIBaseURL           string `mapstructure:"MONO_API_BASE_URL"`
	MonoAPIKey               string `mapstructure:"MONO_API_KEY"`
	PaystackBaseURL          string `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackSecretKey        string `mapstructure:"PAYSTACK_SECRET_KEY"`
	InternalAPIKey           string `mapstructure:"INTERNAL_API_KEY"`
	ConfirmationWindowMin    int    `mapstructure:"CONFIRMATION_WINDOW_MINUTES"`
	SessionTTLMinutes        int    `mapstructure:"SESSION_TTL_MINUTES"`
	HistoryMaxMessages       int    `mapstructure:"HISTORY_MAX_MESSAGES"`
	TurnRateLimitPerMinute   int    `mapstructure:"TURN_RATE_LIMIT_PER_MINUTE"`
	BankCacheTTLHours        int    `mapstructure:"BANK_CACHE_TTL_HOURS"`
	MandateCorrectiveAddress string `mapstructure:"MANDATE_CORRECTIVE_ADDRESS"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_SESSION_PREFIX", "eureka:session")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "eureka:rate_limit")
	viper.SetDefault("GROQ_API_BASE_URL", "https://api.groq.com")
	viper.SetDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
	viper.SetDefault("MONO_API_BASE_URL", "https://api.withmono.com")
	viper.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	viper.SetDefault("CONFIRMATION_WINDOW_MINUTES", 5)
	viper.SetDefault("SESSION_TTL_MINUTES", 1440)
	viper.SetDefault("HISTORY_MAX_MESSAGES", 20)
	viper.SetDefault("TURN_RATE_LIMIT_PER_MINUTE", 20)
	viper.SetDefault("BANK_CACHE_TTL_HOURS", 24)
	viper.SetDefault("MANDATE_CORRECTIVE_ADDRESS", "Lagos, Nigeria")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "ASSISTANT_REDIS_URL")
	_ = viper.BindEnv("REDIS_SESSION_PREFIX")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("GROQ_API_BASE_URL")
	_ = viper.BindEnv("GROQ_API_KEY")
	_ = viper.BindEnv("GROQ_MODEL")
	_ = viper.BindEnv("MONO_API_BASE_URL")
	_ = viper.BindEnv("MONO_API_KEY")
	_ = viper.BindEnv("PAYSTACK_BASE_URL")
	_ = viper.BindEnv("PAYSTACK_SECRET_KEY")
	_ = viper.BindEnv("INTERNAL_API_KEY", "INTERNAL_API_KEY", "ASSISTANT_SERVICE_INTERNAL_API_KEY")
	_ = viper.BindEnv("CONFIRMATION_WINDOW_MINUTES")
	_ = viper.BindEnv("SESSION_TTL_MINUTES")
	_ = viper.BindEnv("HISTORY_MAX_MESSAGES")
	_ = viper.BindEnv("TURN_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("BANK_CACHE_TTL_HOURS")
	_ = viper.BindEnv("MANDATE_CORRECTIVE_ADDRESS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		// If the config file is not found, we can ignore the error.
		// For other errors, we should return them.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}
	if strings.TrimSpace(config.InternalAPIKey) == "" {
		config.InternalAPIKey = strings.TrimSpace(os.Getenv("ASSISTANT_SERVICE_INTERNAL_API_KEY"))
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisSessionPrefix = strings.TrimSpace(config.RedisSessionPrefix)
	if config.RedisSessionPrefix == "" {
		config.RedisSessionPrefix = "eureka:session"
	}
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "eureka:rate_limit"
	}

	if config.ConfirmationWindowMin <= 0 {
		config.ConfirmationWindowMin = 5
	}
	if config.SessionTTLMinutes <= 0 {
		config.SessionTTLMinutes = 1440
	}
	if config.HistoryMaxMessages <= 0 {
		config.HistoryMaxMessages = 20
	}
	if config.TurnRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative turn rate limit configured; disabling\" limit=%d", config.TurnRateLimitPerMinute)
		config.TurnRateLimitPerMinute = 0
	}
	if config.BankCacheTTLHours <= 0 {
		config.BankCacheTTLHours = 24
	}
	if strings.TrimSpace(config.MandateCorrectiveAddress) == "" {
		config.MandateCorrectiveAddress = "Lagos, Nigeria"
	}

	return
}
