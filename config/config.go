package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Webhook protection.
	WebhookToken      string `mapstructure:"WEBHOOK_TOKEN"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Decision service (the "John" model).
	DecisionBackend string  `mapstructure:"DECISION_BACKEND"` // "openai" or "gemini"
	OpenAIAPIKey    string  `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel     string  `mapstructure:"OPENAI_MODEL"`
	GeminiAPIKey    string  `mapstructure:"GEMINI_API_KEY"`
	GeminiModel     string  `mapstructure:"GEMINI_MODEL"`
	Temperature     float64 `mapstructure:"DECISION_TEMPERATURE"`

	// HighLevel CRM.
	HighLevelAPIKey     string `mapstructure:"HIGHLEVEL_API_KEY"`
	HighLevelLocationID string `mapstructure:"HIGHLEVEL_LOCATION_ID"`
	HighLevelCalendarID string `mapstructure:"HIGHLEVEL_CALENDAR_ID"`

	// Conversation behaviour.
	Timezone         string `mapstructure:"BOT_TIMEZONE"`
	HistoryLimit     int    `mapstructure:"HISTORY_LIMIT"`      // turns kept per session
	DecisionHistory  int    `mapstructure:"DECISION_HISTORY"`   // turns sent to the model
	FollowupDelayMin int    `mapstructure:"FOLLOWUP_DELAY_MIN"` // minutes of silence before a nudge

	// External call timeouts (seconds).
	DecisionTimeoutSec int `mapstructure:"DECISION_TIMEOUT_SEC"`
	CalendarTimeoutSec int `mapstructure:"CALENDAR_TIMEOUT_SEC"`
	MessageTimeoutSec  int `mapstructure:"MESSAGE_TIMEOUT_SEC"`

	// Redis configuration (session store + follow-up queue).
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB  int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB    int    `mapstructure:"REDIS_QUEUE_DB"`
	UseRedisStore   bool   `mapstructure:"USE_REDIS_STORE"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is convenient in development; ignore if absent.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	viper.SetDefault("DECISION_BACKEND", "openai")
	viper.SetDefault("OPENAI_MODEL", "gpt-5.1")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("DECISION_TEMPERATURE", 0.4)
	viper.SetDefault("HIGHLEVEL_CALENDAR_ID", "GJ6IHyj6TLnGTW1iwOsL")
	viper.SetDefault("BOT_TIMEZONE", "Europe/London")
	viper.SetDefault("HISTORY_LIMIT", 12)
	viper.SetDefault("DECISION_HISTORY", 6)
	viper.SetDefault("FOLLOWUP_DELAY_MIN", 60)
	viper.SetDefault("DECISION_TIMEOUT_SEC", 30)
	viper.SetDefault("CALENDAR_TIMEOUT_SEC", 20)
	viper.SetDefault("MESSAGE_TIMEOUT_SEC", 15)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("USE_REDIS_STORE", false)
	viper.SetDefault("SESSION_TTL_HOURS", 72)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// DecisionTimeout bounds calls to the decision service.
func DecisionTimeout() time.Duration {
	return time.Duration(AppConfig.DecisionTimeoutSec) * time.Second
}

// CalendarTimeout bounds slot lookups and appointment creation.
func CalendarTimeout() time.Duration {
	return time.Duration(AppConfig.CalendarTimeoutSec) * time.Second
}

// MessageTimeout bounds outbound message delivery.
func MessageTimeout() time.Duration {
	return time.Duration(AppConfig.MessageTimeoutSec) * time.Second
}

// FollowupDelay is how long the customer must stay silent before a nudge fires.
func FollowupDelay() time.Duration {
	return time.Duration(AppConfig.FollowupDelayMin) * time.Minute
}
