package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kanabus/internal/domain"
)

const sampleFileName = "sample_bus_timetable.json"

const defaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 14_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0 Mobile/15E148 Safari/604.1"

// Route is a scrape target: a route key and the base page URL.
type Route struct {
	Key string `yaml:"key"`
	URL string `yaml:"url"`
}

// DefaultRoutes are the two directions served from the Misumicho stop.
var DefaultRoutes = []Route{
	{Key: "chigasaki", URL: "https://www.kanachu.co.jp/sp/diagram/timetable01?cs=0000802161-6&nid=00127236"},
	{Key: "tsujido", URL: "https://www.kanachu.co.jp/sp/diagram/timetable01?cs=0000801834-12&nid=00127236"},
}

type Config struct {
	LogLevel  slog.Level
	LogFormat string

	Routes          []Route
	DayTypes        []domain.DayType
	OutputDir       string
	SampleFile      string
	LookaheadMonths int
	HolidayCSVURL   string

	TLSVerify     bool
	ParseStrategy string
	UserAgent     string
	FetchTimeout  time.Duration
	FetchAttempts int
	FetchBackoff  time.Duration

	HTTPAddr        string
	StaticDir       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	WatchInterval   time.Duration

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	sampleFileSet bool
}

func Load() (*Config, error) {
	routes := DefaultRoutes
	if path := getEnv("ROUTES_FILE", ""); path != "" {
		loaded, err := LoadRoutes(path)
		if err != nil {
			return nil, err
		}
		routes = loaded
	}

	outputDir := getEnv("OUTPUT_DIR", filepath.Join("frontend", "data"))

	cfg := &Config{
		LogLevel:  getLogLevelEnv("LOG_LEVEL", slog.LevelInfo),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "json")),

		Routes:          routes,
		DayTypes:        append([]domain.DayType(nil), domain.DayTypes...),
		OutputDir:       outputDir,
		SampleFile:      getEnv("SAMPLE_FILE", filepath.Join(outputDir, sampleFileName)),
		LookaheadMonths: getIntEnv("HOLIDAY_LOOKAHEAD_MONTHS", 6),
		HolidayCSVURL:   getEnv("HOLIDAY_CSV_URL", ""),

		TLSVerify:     getBoolEnv("TLS_VERIFY", true),
		ParseStrategy: strings.ToLower(getEnv("PARSE_STRATEGY", "table")),
		UserAgent:     getEnv("USER_AGENT", defaultUserAgent),
		FetchTimeout:  getDurationEnv("FETCH_TIMEOUT", 20*time.Second),
		FetchAttempts: getIntEnv("FETCH_ATTEMPTS", 2),
		FetchBackoff:  getDurationEnv("FETCH_BACKOFF", time.Second),

		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		StaticDir:       getEnv("STATIC_DIR", "frontend"),
		ReadTimeout:     getDurationEnv("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		WatchInterval:   getDurationEnv("WATCH_INTERVAL", 5*time.Second),

		RedisEnabled:  getBoolEnv("REDIS_ENABLED", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		CacheTTL:      getDurationEnv("CACHE_TTL", 24*time.Hour),

		sampleFileSet: os.Getenv("SAMPLE_FILE") != "",
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the scraper cannot run with.
func (c *Config) Validate() error {
	if len(c.Routes) == 0 {
		return fmt.Errorf("at least one route is required")
	}
	seen := make(map[string]struct{}, len(c.Routes))
	for _, r := range c.Routes {
		if r.Key == "" || r.URL == "" {
			return fmt.Errorf("route key and url must not be empty")
		}
		if _, dup := seen[r.Key]; dup {
			return fmt.Errorf("duplicate route key %q", r.Key)
		}
		seen[r.Key] = struct{}{}
	}
	if c.LookaheadMonths < 1 {
		return fmt.Errorf("HOLIDAY_LOOKAHEAD_MONTHS must be at least 1, got %d", c.LookaheadMonths)
	}
	if c.FetchAttempts < 1 {
		return fmt.Errorf("FETCH_ATTEMPTS must be at least 1, got %d", c.FetchAttempts)
	}
	switch c.ParseStrategy {
	case "table", "tab":
	default:
		return fmt.Errorf("PARSE_STRATEGY must be table or tab, got %q", c.ParseStrategy)
	}
	return nil
}

// SetOutputDir moves the artifacts to dir. The sample file follows unless
// SAMPLE_FILE named it explicitly.
func (c *Config) SetOutputDir(dir string) {
	c.OutputDir = dir
	if !c.sampleFileSet {
		c.SampleFile = filepath.Join(dir, sampleFileName)
	}
}

// TimetablePath is where the bundle is written.
func (c *Config) TimetablePath() string {
	return filepath.Join(c.OutputDir, "bus_timetable.json")
}

// HolidaysPath is where the holiday map is written.
func (c *Config) HolidaysPath() string {
	return filepath.Join(c.OutputDir, "holidays.json")
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getLogLevelEnv(key string, defaultVal slog.Level) slog.Level {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}

	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return defaultVal
	}
}
