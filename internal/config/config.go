package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

// ErrConfiguration marks every startup configuration failure.
var ErrConfiguration = errors.New("configuration error")

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the collector.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      string

	DBURL                   string
	DBDisablePreparedBinary bool
	DBPoolSize              int
	DBMaxOverflow           int
	DBPoolRecycle           time.Duration
	DBConnectTimeout        time.Duration

	Collector CollectorConfig
	DrawFeed  DrawFeedConfig
	Schedule  ScheduleConfig

	CacheTTL time.Duration

	UptraceEnabled         bool
	UptraceDSN             string
	PyroscopeEnabled       bool
	PyroscopeServerAddress string
	PyroscopeAppName       string
	PyroscopeAuthToken     string
	PyroscopeUploadRate    time.Duration
	PprofEnabled           bool
	PprofAddr              string
}

// CollectorConfig describes the encrypted expert-prediction upstream.
type CollectorConfig struct {
	PrimaryDomain   string
	SecondaryDomain string
	EndpointPath    string
	Token           string
	AESKey          []byte
	AESIV           []byte
	UserAgent       string
	LotteryID       int64

	Timeout     time.Duration
	Retries     int
	RetryDelay  time.Duration
	RetryJitter float64

	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

type DrawFeedConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

type ScheduleConfig struct {
	ExpertCron  string
	DrawCron    string
	RunTimeout  time.Duration
	LotteryName string
	LottoType   string
}

// DBMaxOpenConns mirrors a pool of DBPoolSize with DBMaxOverflow burst slots.
func (c Config) DBMaxOpenConns() int {
	return c.DBPoolSize + c.DBMaxOverflow
}

func Load() (Config, error) {
	cfg, err := load()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

// LoadDatabase reads only the logging and database settings, for tools that
// never reach the upstream APIs.
func LoadDatabase() (Config, error) {
	cfg, err := loadBase()
	if err == nil {
		err = loadDatabase(&cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return cfg, nil
}

func loadBase() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "lotto-collector"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logging.ParseLevel(getEnv("APP_LOG_LEVEL", getEnv("LOTTO_LOG_LEVEL", "info"))),
		LogFormat:      strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_FORMAT", logging.FormatJSON))),
	}
	if cfg.LogFormat != logging.FormatJSON && cfg.LogFormat != logging.FormatConsole {
		return Config{}, fmt.Errorf("invalid APP_LOG_FORMAT %q: valid values are %s, %s", cfg.LogFormat, logging.FormatJSON, logging.FormatConsole)
	}
	return cfg, nil
}

func load() (Config, error) {
	cfg, err := loadBase()
	if err != nil {
		return Config{}, err
	}

	if err := loadDatabase(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.Collector, err = loadCollector(); err != nil {
		return Config{}, err
	}
	if cfg.DrawFeed, err = loadDrawFeed(); err != nil {
		return Config{}, err
	}
	if cfg.Schedule, err = loadSchedule(); err != nil {
		return Config{}, err
	}

	if cfg.CacheTTL, err = positiveDuration("CACHE_TTL", "5m"); err != nil {
		return Config{}, err
	}

	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDatabase(cfg *Config) error {
	var err error
	if cfg.DBURL, err = requireEnv("DB_URL", "LOTTO_DB_URL"); err != nil {
		return err
	}
	if cfg.DBDisablePreparedBinary, err = getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", false); err != nil {
		return err
	}
	if cfg.DBPoolSize, err = getEnvAsInt("DB_POOL_SIZE", 5, "LOTTO_DB_POOL_SIZE"); err != nil {
		return err
	}
	if cfg.DBPoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be >= 1")
	}
	if cfg.DBMaxOverflow, err = getEnvAsInt("DB_MAX_OVERFLOW", 10, "LOTTO_DB_MAX_OVERFLOW"); err != nil {
		return err
	}
	if cfg.DBMaxOverflow < 0 {
		return fmt.Errorf("DB_MAX_OVERFLOW must be >= 0")
	}

	recycleSeconds, err := getEnvAsInt("DB_POOL_RECYCLE", 1800, "LOTTO_DB_POOL_RECYCLE")
	if err != nil {
		return err
	}
	if recycleSeconds <= 0 {
		return fmt.Errorf("DB_POOL_RECYCLE must be > 0")
	}
	cfg.DBPoolRecycle = time.Duration(recycleSeconds) * time.Second

	connectSeconds, err := getEnvAsInt("DB_CONNECT_TIMEOUT", 10, "LOTTO_DB_CONNECT_TIMEOUT")
	if err != nil {
		return err
	}
	if connectSeconds <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be > 0")
	}
	cfg.DBConnectTimeout = time.Duration(connectSeconds) * time.Second
	return nil
}

func loadCollector() (CollectorConfig, error) {
	var (
		out CollectorConfig
		err error
	)

	required := []struct {
		key string
		dst *string
	}{
		{"COLLECTOR_PRIMARY_DOMAIN", &out.PrimaryDomain},
		{"COLLECTOR_SECONDARY_DOMAIN", &out.SecondaryDomain},
		{"COLLECTOR_ENDPOINT_PATH", &out.EndpointPath},
		{"COLLECTOR_TOKEN", &out.Token},
	}
	for _, item := range required {
		if *item.dst, err = requireEnv(item.key); err != nil {
			return CollectorConfig{}, err
		}
	}
	if !strings.HasPrefix(out.EndpointPath, "/") {
		out.EndpointPath = "/" + out.EndpointPath
	}

	keyHex, err := requireEnv("COLLECTOR_AES_KEY_HEX")
	if err != nil {
		return CollectorConfig{}, err
	}
	if out.AESKey, err = parseAESKey(keyHex); err != nil {
		return CollectorConfig{}, err
	}

	iv, err := requireEnv("COLLECTOR_AES_IV")
	if err != nil {
		return CollectorConfig{}, err
	}
	if len(iv) != 16 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_AES_IV must be exactly 16 bytes, got %d", len(iv))
	}
	out.AESIV = []byte(iv)

	out.UserAgent = strings.TrimSpace(getEnv("COLLECTOR_USER_AGENT", "okhttp/4.12.0"))

	lotteryID, err := getEnvAsInt("COLLECTOR_LOTTERY_ID", 6)
	if err != nil {
		return CollectorConfig{}, err
	}
	if lotteryID <= 0 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_LOTTERY_ID must be > 0")
	}
	out.LotteryID = int64(lotteryID)

	if out.Timeout, err = positiveDuration("COLLECTOR_TIMEOUT", "15s"); err != nil {
		return CollectorConfig{}, err
	}
	if out.Retries, err = getEnvAsInt("COLLECTOR_RETRIES", 3); err != nil {
		return CollectorConfig{}, err
	}
	if out.Retries < 1 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_RETRIES must be >= 1")
	}
	if out.RetryDelay, err = positiveDuration("COLLECTOR_RETRY_DELAY", "1500ms"); err != nil {
		return CollectorConfig{}, err
	}
	if out.RetryJitter, err = getEnvAsFloat("COLLECTOR_RETRY_JITTER", 0.2); err != nil {
		return CollectorConfig{}, err
	}
	if out.RetryJitter < 0 || out.RetryJitter > 1 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_RETRY_JITTER must be within [0, 1]")
	}

	if out.CircuitEnabled, err = getEnvAsBool("COLLECTOR_CIRCUIT_ENABLED", true); err != nil {
		return CollectorConfig{}, err
	}
	if out.CircuitFailureCount, err = getEnvAsInt("COLLECTOR_CIRCUIT_FAILURE_COUNT", 5); err != nil {
		return CollectorConfig{}, err
	}
	if out.CircuitFailureCount < 1 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	if out.CircuitOpenTimeout, err = positiveDuration("COLLECTOR_CIRCUIT_OPEN_TIMEOUT", "30s"); err != nil {
		return CollectorConfig{}, err
	}
	if out.CircuitHalfOpenMaxReq, err = getEnvAsInt("COLLECTOR_CIRCUIT_HALF_OPEN_MAX_REQ", 1); err != nil {
		return CollectorConfig{}, err
	}
	if out.CircuitHalfOpenMaxReq < 1 {
		return CollectorConfig{}, fmt.Errorf("COLLECTOR_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	return out, nil
}

func loadDrawFeed() (DrawFeedConfig, error) {
	timeout, err := positiveDuration("DRAW_FEED_TIMEOUT", "10s")
	if err != nil {
		return DrawFeedConfig{}, err
	}
	return DrawFeedConfig{
		BaseURL:   strings.TrimSpace(getEnv("DRAW_FEED_BASE_URL", "https://mix.lottery.sina.com.cn/gateway/index/entry")),
		Timeout:   timeout,
		UserAgent: strings.TrimSpace(getEnv("DRAW_FEED_USER_AGENT", "Mozilla/5.0 (Linux; Android 12) AppleWebKit/537.36")),
	}, nil
}

func loadSchedule() (ScheduleConfig, error) {
	runTimeout, err := positiveDuration("SCHEDULE_RUN_TIMEOUT", "30m")
	if err != nil {
		return ScheduleConfig{}, err
	}
	return ScheduleConfig{
		ExpertCron:  strings.TrimSpace(getEnv("SCHEDULE_EXPERT_CRON", "0 */2 * * *")),
		DrawCron:    strings.TrimSpace(getEnv("SCHEDULE_DRAW_CRON", "*/30 21-23 * * *")),
		RunTimeout:  runTimeout,
		LotteryName: strings.TrimSpace(getEnv("SCHEDULE_LOTTERY_NAME", "福彩3D")),
		LottoType:   strings.TrimSpace(getEnv("SCHEDULE_LOTTO_TYPE", "102")),
	}, nil
}

func loadObservability(cfg *Config) error {
	var err error
	if cfg.UptraceEnabled, err = getEnvAsBool("UPTRACE_ENABLED", false); err != nil {
		return err
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	if cfg.PyroscopeEnabled, err = getEnvAsBool("PYROSCOPE_ENABLED", false); err != nil {
		return err
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	if cfg.PyroscopeUploadRate, err = positiveDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}

	if cfg.PprofEnabled, err = getEnvAsBool("PPROF_ENABLED", false); err != nil {
		return err
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", "127.0.0.1:6060"))
	return nil
}

func parseAESKey(raw string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse COLLECTOR_AES_KEY_HEX: %w", err)
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, fmt.Errorf("COLLECTOR_AES_KEY_HEX must decode to 16, 24 or 32 bytes, got %d", len(key))
	}
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

// lookupEnv returns the first non-blank value among keys.
func lookupEnv(keys ...string) (string, bool) {
	for _, key := range keys {
		if value := os.Getenv(key); strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}

func getEnv(key, fallback string) string {
	if value, ok := lookupEnv(key); ok {
		return value
	}
	return fallback
}

// requireEnv reads key (or one of its aliases) and fails naming key when unset.
func requireEnv(key string, aliases ...string) (string, error) {
	value, ok := lookupEnv(append([]string{key}, aliases...)...)
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	return strings.TrimSpace(value), nil
}

func getEnvAsInt(key string, fallback int, aliases ...string) (int, error) {
	value, ok := lookupEnv(append([]string{key}, aliases...)...)
	if !ok {
		return fallback, nil
	}
	out, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	value, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	out, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func positiveDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}
