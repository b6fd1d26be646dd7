package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Settings collects everything the server and CLI read from the environment.
type Settings struct {
	Port   string
	AppURL string // public portal origin used in booking links

	// Identity: "supabase" (default) or "local".
	AuthProvider       string
	SupabaseURL        string
	SupabaseAnonKey    string
	SupabaseServiceKey string
	JWTSecret          string
	JWTIssuer          string
	JWTAudience        string
	JWTTTL             time.Duration

	GCSBucket string

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFrom        string
	SMTPImplicitTLS bool
	SMTPPerSecond   float64

	Organization string
	Program      string
	SenderName   string

	EmailWorkers        int
	EmailMaxAttempts    int
	ApplicationsPerHour int
	AllowedOrigin       string
}

func LoadSettings() (*Settings, error) {
	s := &Settings{
		Port:   env("PORT", "8080"),
		AppURL: strings.TrimRight(env("APP_URL", "http://localhost:3000"), "/"),

		AuthProvider:       strings.ToLower(env("AUTH_PROVIDER", "supabase")),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
		JWTSecret:          os.Getenv("SUPABASE_JWT_SECRET"),
		JWTIssuer:          os.Getenv("SUPABASE_JWT_ISSUER"),
		JWTAudience:        os.Getenv("SUPABASE_JWT_AUDIENCE"),
		JWTTTL:             envDuration("JWT_TTL", time.Hour),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		SMTPHost:        os.Getenv("SMTP_HOST"),
		SMTPPort:        envInt("SMTP_PORT", 587),
		SMTPUsername:    os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:        os.Getenv("SMTP_FROM"),
		SMTPImplicitTLS: os.Getenv("SMTP_IMPLICIT_TLS") == "true",
		SMTPPerSecond:   envFloat("SMTP_PER_SECOND", 2),

		Organization: env("ORG_NAME", "Convergent Business Technologies"),
		Program:      env("PROGRAM_NAME", "CGAP"),
		SenderName:   env("MAIL_SENDER_NAME", "CBT Recruitment"),

		EmailWorkers:        envInt("EMAIL_WORKERS", 3),
		EmailMaxAttempts:    envInt("EMAIL_MAX_ATTEMPTS", 8),
		ApplicationsPerHour: envInt("APPLICATIONS_PER_HOUR", 5),
		AllowedOrigin:       os.Getenv("ALLOWED_ORIGIN"),
	}
	if s.SMTPFrom == "" {
		s.SMTPFrom = s.SMTPUsername
	}

	if s.JWTSecret == "" {
		return nil, errors.New("SUPABASE_JWT_SECRET environment variable is not set")
	}
	switch s.AuthProvider {
	case "local":
	case "supabase":
		if s.SupabaseURL == "" || s.SupabaseAnonKey == "" {
			return nil, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY must be set when AUTH_PROVIDER=supabase")
		}
	default:
		return nil, errors.New("AUTH_PROVIDER must be supabase or local")
	}
	return s, nil
}

// MailEnabled reports whether SMTP delivery is configured.
func (s *Settings) MailEnabled() bool { return s.SMTPHost != "" && s.SMTPFrom != "" }

// SMTPRateLimit is the dispatcher send rate. A zero or negative
// SMTP_PER_SECOND disables throttling instead of blocking every send.
func (s *Settings) SMTPRateLimit() rate.Limit {
	if s.SMTPPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(s.SMTPPerSecond)
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
