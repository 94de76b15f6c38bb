package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"suumo-scraper/models"
)

// DefaultBaseURL is the Suumo rental index for the Shinagawa area, with the
// region and station parameters already fixed.
const DefaultBaseURL = "https://suumo.jp/jj/chintai/ichiran/FR301FC001/?ar=030&bs=040&ra=013" +
	"&cb=0.0&ct=9999999&et=9999999&cn=9999999&mb=0&mt=9999999" +
	"&shkr1=03&shkr2=03&shkr3=03&shkr4=03&fw2=" +
	"&ek=009014660&ek=009025630&ek=009025440&ek=009053940&ek=009005480&rn=0090"

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetch modes.
const (
	FetchHTTP    = "http"
	FetchBrowser = "browser"
)

// Sentinel policies.
const (
	SentinelZero    = "zero"
	SentinelExclude = "exclude"
)

// Config holds all application configuration loaded from the environment,
// an optional .env file and an optional YAML filter file.
type Config struct {
	BaseURL   string
	UserAgent string
	FetchMode string
	ChromeBin string

	RateLimitMs    int
	MaxRetries     int
	MaxPages       int
	HTTPTimeoutSec int

	SentinelPolicy string
	Debug          bool

	CSVOutputPath string

	// DBDriver is "postgres", "sqlite" or "" to skip the relational sink.
	DBDriver         string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	FilterFile string
	Filter     models.FilterOptions
}

// Load reads the .env file and returns a populated Config. The filter is
// taken from FILTER_FILE first; individual FILTER_* variables override it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	cfg := &Config{
		BaseURL:   getEnv("SUUMO_BASE_URL", DefaultBaseURL),
		UserAgent: getEnv("USER_AGENT", DefaultUserAgent),
		FetchMode: strings.ToLower(getEnv("FETCH_MODE", FetchHTTP)),
		ChromeBin: getEnv("CHROME_BIN", ""),

		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 1000),
		MaxRetries:     getEnvInt("MAX_RETRIES", 1),
		MaxPages:       getEnvInt("MAX_PAGES", 0),
		HTTPTimeoutSec: getEnvInt("HTTP_TIMEOUT_SECONDS", 30),

		SentinelPolicy: strings.ToLower(getEnv("SENTINEL_POLICY", SentinelZero)),
		Debug:          getEnv("DEBUG", "") == "1" || strings.EqualFold(getEnv("DEBUG", ""), "true"),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", "./output/suumo_filtered_properties.csv"),

		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "")),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/suumo.db"),

		FilterFile: getEnv("FILTER_FILE", ""),
		Filter:     DefaultFilter(),
	}

	if cfg.FilterFile != "" {
		opts, err := LoadFilterFile(cfg.FilterFile)
		if err != nil {
			return nil, err
		}
		cfg.Filter = opts
	}
	if err := applyFilterEnv(&cfg.Filter); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultFilter reproduces the conditions the scraper was first written
// for: studios and 1K units of at most 25m².
func DefaultFilter() models.FilterOptions {
	return models.FilterOptions{
		FloorPlans: []models.FloorPlan{models.Plan1R, models.Plan1K},
		SizeMax:    models.Float(25),
	}
}

// LoadFilterFile decodes a YAML filter definition.
func LoadFilterFile(path string) (models.FilterOptions, error) {
	var opts models.FilterOptions
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("config: read filter file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("config: parse filter file %q: %w", path, err)
	}
	return opts, nil
}

// Validate reports configuration that makes the pipeline impossible to run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return models.ErrEmptyBaseURL
	}
	switch c.FetchMode {
	case FetchHTTP, FetchBrowser:
	default:
		return fmt.Errorf("config: unknown FETCH_MODE %q", c.FetchMode)
	}
	switch c.SentinelPolicy {
	case SentinelZero, SentinelExclude:
	default:
		return fmt.Errorf("config: unknown SENTINEL_POLICY %q", c.SentinelPolicy)
	}
	switch c.DBDriver {
	case "", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// FilterSpec freezes the configured filter.
func (c *Config) FilterSpec() models.FilterSpec {
	return models.NewFilterSpec(c.Filter)
}

// DSN returns the connection string for the configured DB driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func applyFilterEnv(opts *models.FilterOptions) error {
	floats := []struct {
		key string
		dst **float64
	}{
		{"FILTER_RENT_MIN", &opts.RentMin},
		{"FILTER_RENT_MAX", &opts.RentMax},
		{"FILTER_SIZE_MIN", &opts.SizeMin},
		{"FILTER_SIZE_MAX", &opts.SizeMax},
		{"FILTER_AGE_MIN", &opts.BuildingAgeMin},
		{"FILTER_AGE_MAX", &opts.BuildingAgeMax},
	}
	for _, f := range floats {
		val := os.Getenv(f.key)
		if val == "" {
			continue
		}
		n, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.key, err)
		}
		*f.dst = &n
	}

	if val := os.Getenv("FILTER_FLOOR_PLANS"); val != "" {
		opts.FloorPlans = nil
		for _, p := range splitList(val) {
			opts.FloorPlans = append(opts.FloorPlans, models.FloorPlan(p))
		}
	}
	if val := os.Getenv("FILTER_STATIONS"); val != "" {
		opts.TargetStations = splitList(val)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
