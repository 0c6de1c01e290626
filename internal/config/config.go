package config

import (
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Session persistence
	SessionStore         string
	SessionTTL           time.Duration
	SessionIdleTimeout   time.Duration
	DynamoDBSessionTable string
	RedisAddr            string
	RedisPassword        string
	RedisTLS             bool

	// Email delivery
	EmailProvider    string
	EmailAPIURL      string
	EmailAPIKey      string
	SendGridAPIKey   string
	EmailFrom        string
	EmailFromName    string
	SalonNotifyEmail string

	// AWS (SES + DynamoDB)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	SESConfigurationSet string

	// Twilio SMS reminders
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	// Booking wizard
	SkipProfessionalStep  bool
	DefaultProfessionalID int
	MaxCustomQuantity     int
	SlotLoadDelay         time.Duration
	SalonTimezone         string
	SalonLocation         string

	// HTTP edge
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Reminders
	ReminderLeadTime     time.Duration
	ReminderPollSchedule string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SessionStore:         strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "memory"))),
		SessionTTL:           getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		SessionIdleTimeout:   getEnvAsDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		DynamoDBSessionTable: getEnv("DYNAMODB_SESSION_TABLE", "pitaya_sessions"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "http"))),
		EmailAPIURL:      getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
		EmailAPIKey:      getEnv("EMAIL_API_KEY", ""),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:        getEnv("EMAIL_FROM", "citas@pitayanails.mx"),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Pitaya Nails"),
		SalonNotifyEmail: getEnv("SALON_NOTIFY_EMAIL", "pitayanails@gmail.com"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		SESConfigurationSet: getEnv("SES_CONFIGURATION_SET", ""),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),

		SkipProfessionalStep:  getEnvAsBool("SKIP_PROFESSIONAL_STEP", false),
		DefaultProfessionalID: getEnvAsInt("DEFAULT_PROFESSIONAL_ID", 1),
		MaxCustomQuantity:     getEnvAsInt("MAX_CUSTOM_QUANTITY", 0),
		SlotLoadDelay:         getEnvAsDuration("SLOT_LOAD_DELAY", 300*time.Millisecond),
		SalonTimezone:         getEnv("SALON_TIMEZONE", "America/Cancun"),
		SalonLocation:         getEnv("SALON_LOCATION", "Pitaya Nails, Cancún, Quintana Roo"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 20),

		ReminderLeadTime:     getEnvAsDuration("REMINDER_LEAD_TIME", 24*time.Hour),
		ReminderPollSchedule: getEnv("REMINDER_POLL_SCHEDULE", "@every 1m"),
	}
}

// Location resolves SalonTimezone, falling back to UTC when the zone is unknown.
func (c *Config) Location() *time.Location {
	if c == nil || strings.TrimSpace(c.SalonTimezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.SalonTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
