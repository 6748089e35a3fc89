// Load envs from .env
// Load YAML config
// Override credentials and lists from the environment
// Provide default values, validate

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every configuration problem found at startup.
var ErrInvalid = errors.New("invalid config")

const DefaultPath = "configs/config.yaml"

type Config struct {
	//Search criteria
	Keywords  []string `yaml:"keywords"`
	Locations []string `yaml:"locations"`
	Sources   []string `yaml:"sources"`

	//Acceptance policy
	AllowedPublishers []string `yaml:"allowed_publishers"`
	DeniedPublishers  []string `yaml:"denied_publishers"`
	AllowedLocations  []string `yaml:"allowed_locations"`
	LocationMatch     string   `yaml:"location_match"` // job, query, either
	ExperiencePhrases []string `yaml:"experience_phrases"`
	ExcludeKeywords   []string `yaml:"exclude_keywords"`
	MaxAgeDays        int      `yaml:"max_age_days"`

	DedupFallback string `yaml:"dedup_fallback"` // title_company, title_company_source

	//Fetching
	MaxResultsPerQuery  int `yaml:"max_results_per_query"`  // 0 keeps every result
	PerRequestTimeoutMs int `yaml:"per_request_timeout_ms"` // 0 means the default
	PerRequestDelayMs   int `yaml:"per_request_delay_ms"`   // 0 disables pacing

	//Cron spec; empty means run once and exit
	Schedule string `yaml:"schedule"`

	Output   OutputConfig   `yaml:"output"`
	JSearch  JSearchConfig  `yaml:"jsearch"`
	Adzuna   AdzunaConfig   `yaml:"adzuna"`
	Browser  BrowserConfig  `yaml:"browser"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	Log      LogConfig      `yaml:"log"`
}

type OutputConfig struct {
	AcceptedPath string `yaml:"accepted_path"`
	RejectedPath string `yaml:"rejected_path"` // empty disables the rejected CSV
	DebugDir     string `yaml:"debug_dir"`     // raw payload archive; empty disables
	MetricsPath  string `yaml:"metrics_path"`  // prometheus textfile; empty disables
}

type JSearchConfig struct {
	APIKey     string `yaml:"api_key"`
	Country    string `yaml:"country"`
	DatePosted string `yaml:"date_posted"`
}

type AdzunaConfig struct {
	AppID   string `yaml:"app_id"`
	AppKey  string `yaml:"app_key"`
	Country string `yaml:"country"`
}

type BrowserConfig struct {
	Headless    *bool  `yaml:"headless"`
	CookiesPath string `yaml:"cookies_path"`
	UserAgent   string `yaml:"user_agent"`
}

type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type LogConfig struct {
	Env   string `yaml:"env"`   // prod, local, dev
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads .env, the YAML file at path (a missing file is fine, every
// option has a default), then the environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := seeded()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(expandEnvVars(data), cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	//RAPIDAPI_KEY first, JSEARCH_API_KEY as fallback
	if v := firstEnv("RAPIDAPI_KEY", "JSEARCH_API_KEY"); v != "" {
		c.JSearch.APIKey = v
	}
	setString(&c.Adzuna.AppID, "ADZUNA_APP_ID")
	setString(&c.Adzuna.AppKey, "ADZUNA_APP_KEY")

	setString(&c.Email.Host, "SMTP_HOST")
	setString(&c.Email.Username, "SMTP_USERNAME")
	setString(&c.Email.Password, "SMTP_PASSWORD")
	setString(&c.Email.From, "EMAIL_FROM")
	if v := os.Getenv("EMAIL_TO"); v != "" {
		c.Email.To = splitList(v)
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: SMTP_PORT %q: %v", ErrInvalid, v, err)
		}
		c.Email.Port = port
	}

	setString(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: TELEGRAM_CHAT_ID %q: %v", ErrInvalid, v, err)
		}
		c.Telegram.ChatID = id
	}

	if v := os.Getenv("JOB_KEYWORDS"); v != "" {
		c.Keywords = splitList(v)
	}
	if v := os.Getenv("JOB_LOCATIONS"); v != "" {
		c.Locations = splitList(v)
	}
	setString(&c.Log.Env, "APP_ENV")
	setString(&c.Log.Level, "LOG_LEVEL")
	return nil
}

// Default returns a Config with every option at its default.
func Default() *Config {
	c := seeded()
	c.ApplyDefaults()
	return c
}

// seeded presets the options where 0 is a valid setting, so decoding the
// file over it keeps an explicit 0.
func seeded() *Config {
	return &Config{MaxResultsPerQuery: 10, PerRequestDelayMs: 600}
}

// ApplyDefaults fills every unset option whose zero value has no meaning
// of its own.
func (c *Config) ApplyDefaults() {
	if len(c.Keywords) == 0 {
		c.Keywords = []string{"Software Engineer", "Frontend Developer", "UI UX Designer", "Software Developer"}
	}
	if len(c.Locations) == 0 {
		c.Locations = []string{"chennai", "bengaluru", "coimbatore"}
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{"jsearch"}
	}
	if len(c.AllowedPublishers) == 0 {
		c.AllowedPublishers = []string{"linkedin", "indeed", "internshala", "naukri"}
	}
	if len(c.AllowedLocations) == 0 {
		c.AllowedLocations = append([]string(nil), c.Locations...)
	}
	if len(c.ExperiencePhrases) == 0 {
		c.ExperiencePhrases = []string{"fresher", "0 years", "0 year", "entry level", "graduate trainee", "freshers"}
	}
	if c.LocationMatch == "" {
		c.LocationMatch = "job"
	}
	if c.DedupFallback == "" {
		c.DedupFallback = "title_company_source"
	}
	if c.PerRequestTimeoutMs == 0 {
		c.PerRequestTimeoutMs = 30000
	}
	if c.Output.AcceptedPath == "" {
		c.Output.AcceptedPath = "accepted_jobs.csv"
	}
	if c.JSearch.Country == "" {
		c.JSearch.Country = "in"
	}
	if c.JSearch.DatePosted == "" {
		c.JSearch.DatePosted = "all"
	}
	if c.Adzuna.Country == "" {
		c.Adzuna.Country = "in"
	}
	if c.Browser.Headless == nil {
		headless := true
		c.Browser.Headless = &headless
	}
	if c.Browser.CookiesPath == "" {
		c.Browser.CookiesPath = ".cookies"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Log.Env == "" {
		c.Log.Env = "local"
	}
}

// Validate reports enum and range problems. Missing credentials are not
// errors: the collaborators that need them are skipped instead.
func (c *Config) Validate() error {
	var problems []string
	switch c.LocationMatch {
	case "job", "query", "either":
	default:
		problems = append(problems, fmt.Sprintf("location_match %q (want job, query or either)", c.LocationMatch))
	}
	switch c.DedupFallback {
	case "title_company", "title_company_source":
	default:
		problems = append(problems, fmt.Sprintf("dedup_fallback %q (want title_company or title_company_source)", c.DedupFallback))
	}
	if c.MaxResultsPerQuery < 0 {
		problems = append(problems, "max_results_per_query must be >= 0")
	}
	if c.PerRequestTimeoutMs < 0 {
		problems = append(problems, "per_request_timeout_ms must be >= 0")
	}
	if c.PerRequestDelayMs < 0 {
		problems = append(problems, "per_request_delay_ms must be >= 0")
	}
	if c.MaxAgeDays < 0 {
		problems = append(problems, "max_age_days must be >= 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// HasEmail reports whether SMTP delivery is possible.
func (c *Config) HasEmail() bool {
	return c.Email.Host != "" && c.Email.From != "" && len(c.Email.To) > 0
}

// HasTelegram reports whether the Telegram notifier is configured.
func (c *Config) HasTelegram() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = "***"
		}
	}
	mask(&c.JSearch.APIKey)
	mask(&c.Adzuna.AppKey)
	mask(&c.Email.Password)
	mask(&c.Telegram.Token)
	return c
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars substitutes ${VAR} references inside the YAML text.
func expandEnvVars(data []byte) []byte {
	return envVarPattern.ReplaceAllFunc(data, func(m []byte) []byte {
		name := envVarPattern.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
