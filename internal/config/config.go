package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string

	// Generation backend. An empty APIKey means the primary backend is
	// unavailable and every request is served by the fallback generator.
	GeminiAPIKey  string
	GeminiModel   string
	GeminiTimeout time.Duration

	// Row-store. An empty driver disables the external store: quiz records
	// go to the in-memory store and quota enforcement is inert.
	DBDriver string
	DBDSN    string

	AllowedOrigins []string

	DevMode   bool
	DevUserID string

	// Local token issuer for offline deployments.
	EnableLocalAuth bool
	AuthHMACSecret  string
	AdminPassHash   string // bcrypt
}

func FromEnv() Config {
	return Config{
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiTimeout: time.Duration(envInt("GEMINI_TIMEOUT_SEC", 20)) * time.Second,
		DBDriver:      os.Getenv("DB_DRIVER"),
		DBDSN:         os.Getenv("DB_DSN"),
		AllowedOrigins: csvOr("ALLOWED_ORIGINS",
			"http://localhost:4200,https://auto-qcm.netlify.app"),
		DevMode:         envBool("DEV_MODE", false),
		DevUserID:       envOr("DEV_USER_ID", "00000000-0000-0000-0000-000000000001"),
		EnableLocalAuth: envBool("ENABLE_LOCAL_AUTH", false),
		AuthHMACSecret:  envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		AdminPassHash:   os.Getenv("ADMIN_PASS_HASH"),
	}
}

// StoreConfigured reports whether an external row-store is set up. Without
// one the API runs degraded: in-memory records, no quota enforcement.
func (c Config) StoreConfigured() bool {
	return c.DBDriver != ""
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
