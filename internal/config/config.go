// Package config loads runtime settings from the environment.
//
// Every key maps to an ACADEMYHUB_* variable. A ".env.<env>" file in the
// working directory is read first when present; real environment variables
// always win over it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// DevAPIURL is the marketplace API a developer runs locally.
const DevAPIURL = "http://localhost:5000/api"

// Config is the resolved runtime configuration.
type Config struct {
	Env            string
	Addr           string
	APIURL         string
	APITimeout     time.Duration
	PageTimeout    time.Duration // bounds the upstream chain behind one page
	DBPath         string
	CSRFKey        string
	SessionKey     string
	SessionTTL     time.Duration
	AllowedOrigins []string
	LogLevel       string
	RollbarToken   string
	ResendKey      string
	SendGridKey    string
	EmailFrom      string
	ContactTo      string
	RateLimit      int // login/signup/contact attempts per IP per minute
	SlowRequestMs  int
	SlowQueryMs    int
	SlowUpstreamMs int
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// envKeys binds each viper key to its environment variable.
var envKeys = map[string]string{
	"env":            "ACADEMYHUB_ENV",
	"addr":           "ACADEMYHUB_ADDR",
	"apiURL":         "ACADEMYHUB_API_URL",
	"apiTimeout":     "ACADEMYHUB_API_TIMEOUT",
	"pageTimeout":    "ACADEMYHUB_PAGE_TIMEOUT",
	"dbPath":         "ACADEMYHUB_DB_PATH",
	"csrfKey":        "ACADEMYHUB_CSRF_KEY",
	"sessionKey":     "ACADEMYHUB_SESSION_KEY",
	"sessionTTL":     "ACADEMYHUB_SESSION_TTL",
	"allowedOrigins": "ACADEMYHUB_ALLOWED_ORIGINS",
	"logLevel":       "ACADEMYHUB_LOG_LEVEL",
	"rollbarToken":   "ACADEMYHUB_ROLLBAR_TOKEN",
	"resendKey":      "ACADEMYHUB_RESEND_KEY",
	"sendgridKey":    "ACADEMYHUB_SENDGRID_KEY",
	"emailFrom":      "ACADEMYHUB_EMAIL_FROM",
	"contactTo":      "ACADEMYHUB_CONTACT_TO",
	"rateLimit":      "ACADEMYHUB_RATE_LIMIT",
	"slowRequestMs":  "ACADEMYHUB_SLOW_REQUEST_MS",
	"slowQueryMs":    "ACADEMYHUB_SLOW_QUERY_MS",
	"slowUpstreamMs": "ACADEMYHUB_SLOW_UPSTREAM_MS",
}

// Load resolves configuration. dir is where ".env.<env>" files are looked up.
// PRE: none
// POST: in production, APIURL, CSRFKey and SessionKey are non-empty
func Load(dir string) (Config, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("ACADEMYHUB_ENV")))
	if env == "" {
		env = EnvDevelopment
	}

	dotEnvPath := filepath.Join(dir, ".env."+env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", dotEnvPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: stat %s: %w", dotEnvPath, err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("env", env)
	v.SetDefault("addr", ":8080")
	v.SetDefault("apiURL", "")
	v.SetDefault("apiTimeout", 10*time.Second)
	v.SetDefault("pageTimeout", 25*time.Second)
	v.SetDefault("dbPath", "academyhub.db")
	v.SetDefault("csrfKey", "")
	v.SetDefault("sessionKey", "")
	v.SetDefault("sessionTTL", 24*time.Hour)
	v.SetDefault("allowedOrigins", "")
	v.SetDefault("logLevel", "info")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("resendKey", "")
	v.SetDefault("sendgridKey", "")
	v.SetDefault("emailFrom", "AcademyHub <noreply@academyhub.io>")
	v.SetDefault("contactTo", "hello@academyhub.io")
	v.SetDefault("rateLimit", 10)
	v.SetDefault("slowRequestMs", 500)
	v.SetDefault("slowQueryMs", 50)
	v.SetDefault("slowUpstreamMs", 800)
	for key, name := range envKeys {
		if err := v.BindEnv(key, name); err != nil {
			return Config{}, fmt.Errorf("config: bind %s: %w", key, err)
		}
	}

	cfg := Config{
		Env:            v.GetString("env"),
		Addr:           v.GetString("addr"),
		APIURL:         v.GetString("apiURL"),
		APITimeout:     v.GetDuration("apiTimeout"),
		PageTimeout:    v.GetDuration("pageTimeout"),
		DBPath:         v.GetString("dbPath"),
		CSRFKey:        v.GetString("csrfKey"),
		SessionKey:     v.GetString("sessionKey"),
		SessionTTL:     v.GetDuration("sessionTTL"),
		AllowedOrigins: splitList(v.GetString("allowedOrigins")),
		LogLevel:       v.GetString("logLevel"),
		RollbarToken:   v.GetString("rollbarToken"),
		ResendKey:      v.GetString("resendKey"),
		SendGridKey:    v.GetString("sendgridKey"),
		EmailFrom:      v.GetString("emailFrom"),
		ContactTo:      v.GetString("contactTo"),
		RateLimit:      v.GetInt("rateLimit"),
		SlowRequestMs:  v.GetInt("slowRequestMs"),
		SlowQueryMs:    v.GetInt("slowQueryMs"),
		SlowUpstreamMs: v.GetInt("slowUpstreamMs"),
	}
	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// finish fills development fallbacks and enforces production requirements.
func (c *Config) finish() error {
	if c.IsProduction() {
		var missing []string
		if c.APIURL == "" {
			missing = append(missing, "ACADEMYHUB_API_URL")
		}
		if c.CSRFKey == "" {
			missing = append(missing, "ACADEMYHUB_CSRF_KEY")
		}
		if c.SessionKey == "" {
			missing = append(missing, "ACADEMYHUB_SESSION_KEY")
		}
		if len(missing) > 0 {
			return fmt.Errorf("config: production requires %s", strings.Join(missing, ", "))
		}
	} else {
		if c.APIURL == "" {
			c.APIURL = DevAPIURL
		}
		if c.CSRFKey == "" {
			c.CSRFKey = "academyhub-dev-csrf-key-not-secret"
		}
		if c.SessionKey == "" {
			c.SessionKey = "academyhub-dev-session-key-not-secret"
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: session TTL must be positive, got %s", c.SessionTTL)
	}
	if c.PageTimeout <= 0 {
		return fmt.Errorf("config: page timeout must be positive, got %s", c.PageTimeout)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("config: rate limit must be positive, got %d", c.RateLimit)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
