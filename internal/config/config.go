package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Availability fail policies control what the slot resolver does when the
// appointment store cannot be queried.
const (
	FailClosed = "fail_closed" // surface the error to the caller
	FailOpen   = "fail_open"   // treat the store as having no reservations
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	ProfessionalsTable string
	AppointmentsTable  string
	SlotIndexName      string
	DocumentIndexName  string
	PhoneIndexName     string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	DirectoryCacheTTL time.Duration

	AdminJWTSecret     string
	CORSAllowedOrigins []string

	// AvailabilityFailPolicy is FailClosed or FailOpen. The pre-booking guard is
	// always fail-closed regardless of this setting.
	AvailabilityFailPolicy string

	// AtomicReservations switches the booking writer from check-then-act to a
	// conditional slot-claim write.
	AtomicReservations bool

	WhatsAppCountryCode string
	WhatsAppBaseURL     string
	DefaultContactMsg   string
	BookingSignature    string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ProfessionalsTable: getEnv("PROFESSIONALS_TABLE", "professionals"),
		AppointmentsTable:  getEnv("APPOINTMENTS_TABLE", "appointments"),
		SlotIndexName:      getEnv("APPOINTMENTS_SLOT_INDEX", "slot-index"),
		DocumentIndexName:  getEnv("APPOINTMENTS_DOCUMENT_INDEX", "document-index"),
		PhoneIndexName:     getEnv("APPOINTMENTS_PHONE_INDEX", "phone-index"),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DirectoryCacheTTL: getEnvAsDuration("DIRECTORY_CACHE_TTL", 0),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),

		AvailabilityFailPolicy: normalizeFailPolicy(getEnv("AVAILABILITY_FAIL_POLICY", FailClosed)),
		AtomicReservations:     getEnvAsBool("BOOKING_ATOMIC_RESERVATIONS", false),

		WhatsAppCountryCode: getEnv("WHATSAPP_COUNTRY_CODE", "54"),
		WhatsAppBaseURL:     getEnv("WHATSAPP_BASE_URL", "https://wa.me"),
		DefaultContactMsg:   getEnv("WHATSAPP_DEFAULT_CONTACT_MESSAGE", "Hola! Te escribo para solicitar un turno en MOVEMENT. ¿Me pasas día y horario disponible?"),
		BookingSignature:    getEnv("BOOKING_SIGNATURE", "Movement - Sistema de Reservas"),
	}
}

func normalizeFailPolicy(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case FailOpen:
		return FailOpen
	default:
		return FailClosed
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
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

// getEnvAsList splits a comma-separated environment variable, dropping empties.
func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
