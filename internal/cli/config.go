package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MarkoPoloResearchLab/storefront/internal/apiclient"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	flagAPIURL           = "api-url"
	flagTokenDB          = "token-db"
	flagTokenStoreDriver = "token-store-driver"
	flagRequestTimeout   = "request-timeout"
	flagRateLimit        = "rate-limit"
	flagLogLevel         = "log-level"
	flagOutput           = "output"
	flagMetricsDump      = "metrics-dump"
	envPrefix            = "URMART"

	defaultLogLevel  = "warn"
	defaultTokenDir  = ".urmart"
	defaultTokenFile = "session.db"
	driverGorm       = "gorm"
	driverPgx        = "pgx"
	outputTable      = "table"
	outputJSON       = "json"
	localEnvFile     = ".env"
	sqliteScheme     = "sqlite://"
)

// Config is the resolved CLI configuration.
type Config struct {
	APIURL           string
	TokenDB          string
	TokenStoreDriver string
	RequestTimeout   time.Duration
	RateLimit        float64
	LogLevel         string
	Output           string
	MetricsDump      bool
}

// Validate applies defaults and rejects unusable values.
func (cfg *Config) Validate() error {
	cfg.APIURL = defaultIfEmpty(cfg.APIURL, apiclient.DefaultBaseURL)
	cfg.TokenDB = defaultIfEmpty(cfg.TokenDB, defaultTokenDB())
	cfg.TokenStoreDriver = strings.ToLower(defaultIfEmpty(cfg.TokenStoreDriver, driverGorm))
	cfg.LogLevel = strings.ToLower(defaultIfEmpty(cfg.LogLevel, defaultLogLevel))
	cfg.Output = strings.ToLower(defaultIfEmpty(cfg.Output, outputTable))

	if cfg.RequestTimeout < 0 {
		return fmt.Errorf("%s must not be negative", flagRequestTimeout)
	}
	if cfg.RateLimit < 0 {
		return fmt.Errorf("%s must not be negative", flagRateLimit)
	}
	if cfg.TokenStoreDriver != driverGorm && cfg.TokenStoreDriver != driverPgx {
		return fmt.Errorf("%s must be %q or %q", flagTokenStoreDriver, driverGorm, driverPgx)
	}
	if cfg.Output != outputTable && cfg.Output != outputJSON {
		return fmt.Errorf("%s must be %q or %q", flagOutput, outputTable, outputJSON)
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%s: %w", flagLogLevel, err)
	}
	return nil
}

func defaultIfEmpty(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func defaultTokenDB() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return sqliteScheme + filepath.Join(defaultTokenDir, defaultTokenFile)
	}
	return sqliteScheme + filepath.Join(home, defaultTokenDir, defaultTokenFile)
}

func registerPersistentFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String(flagAPIURL, apiclient.DefaultBaseURL, "storefront API base URL")
	flags.String(flagTokenDB, "", "token store DSN: sqlite://path, postgres://..., memory:// (default sqlite://$HOME/.urmart/session.db)")
	flags.String(flagTokenStoreDriver, driverGorm, "driver for postgres token stores: gorm or pgx")
	flags.Duration(flagRequestTimeout, 0, "per-request timeout (0 disables)")
	flags.Float64(flagRateLimit, 0, "maximum requests per second (0 disables)")
	flags.String(flagLogLevel, defaultLogLevel, "log level: debug, info, warn, error")
	flags.StringP(flagOutput, "o", outputTable, "output format: table or json")
	flags.Bool(flagMetricsDump, false, "print request metrics to stderr on exit")
}

func loadConfig(cmd *cobra.Command) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, flagName := range []string{flagAPIURL, flagTokenDB, flagTokenStoreDriver, flagRequestTimeout, flagRateLimit, flagLogLevel, flagOutput, flagMetricsDump} {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		APIURL:           v.GetString(flagAPIURL),
		TokenDB:          v.GetString(flagTokenDB),
		TokenStoreDriver: v.GetString(flagTokenStoreDriver),
		RequestTimeout:   v.GetDuration(flagRequestTimeout),
		RateLimit:        v.GetFloat64(flagRateLimit),
		LogLevel:         v.GetString(flagLogLevel),
		Output:           v.GetString(flagOutput),
		MetricsDump:      v.GetBool(flagMetricsDump),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadLocalEnv reads .env into the process environment when present.
func loadLocalEnv() {
	if _, err := os.Stat(localEnvFile); err != nil {
		return
	}
	_ = godotenv.Load(localEnvFile)
}
