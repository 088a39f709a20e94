package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultInputKind      = InputStdin
	defaultInputFormat    = FormatLines
	defaultKafkaGroupID   = "calcstats-default-group"
	defaultKafkaIdle      = 5 * time.Second
	defaultPreciseDigits  = 100
	defaultTimed          = true
	defaultMetricsJob     = "calcstats"
	defaultOutputPath     = "-"
	defaultOutputPretty   = true
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "calcstats.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "CALCSTATS"
)

// Input kinds.
const (
	InputFile  = "file"
	InputStdin = "stdin"
	InputKafka = "kafka"
)

// Input formats for file and stdin sources.
const (
	FormatLines = "lines"
	FormatJSON  = "json"
)

type Config struct {
	Input      InputConfig   `mapstructure:"input"`
	Kafka      KafkaConfig   `mapstructure:"kafka"`
	Stats      StatsConfig   `mapstructure:"stats"`
	Thresholds Thresholds    `mapstructure:"thresholds"`
	Metrics    MetricsConfig `mapstructure:"metrics"`
	Output     OutputConfig  `mapstructure:"output"`
	Log        LogConfig     `mapstructure:"log"`
}

type InputConfig struct {
	Kind      string `mapstructure:"kind"`      // file, stdin, kafka
	Path      string `mapstructure:"path"`      // used by kind=file
	Format    string `mapstructure:"format"`    // lines, json
	Separator string `mapstructure:"separator"` // splits each line into a batch
	Field     string `mapstructure:"field"`     // projects this key out of JSON objects
}

type KafkaConfig struct {
	Brokers     []string      `mapstructure:"brokers"`
	Topic       string        `mapstructure:"topic"`
	GroupID     string        `mapstructure:"groupID"`
	IdleTimeout time.Duration `mapstructure:"idleTimeout"` // end of stream after this long without messages
	MaxMessages int           `mapstructure:"maxMessages"` // 0 = unlimited
}

type StatsConfig struct {
	List                    []string      `mapstructure:"list"` // empty = all
	Precise                 bool          `mapstructure:"precise"`
	PreciseMaxDecimalDigits int           `mapstructure:"preciseMaxDecimalDigits"`
	NoData                  []interface{} `mapstructure:"noData"`
	Chunked                 bool          `mapstructure:"chunked"`
	Timed                   bool          `mapstructure:"timed"`
	Filter                  FilterConfig  `mapstructure:"filter"`
}

// FilterConfig describes a value filter. Bounds are exclusive.
type FilterConfig struct {
	MinValue *float64 `mapstructure:"minValue"`
	MaxValue *float64 `mapstructure:"maxValue"`
	MaxIndex int64    `mapstructure:"maxIndex"` // keep items with index < maxIndex; 0 = off
}

// Enabled reports whether any filter rule is set.
func (f FilterConfig) Enabled() bool {
	return f.MinValue != nil || f.MaxValue != nil || f.MaxIndex > 0
}

type Thresholds struct {
	InvalidRate *float64 `mapstructure:"invalidRate"`
	MeanMin     *float64 `mapstructure:"meanMin"`
	MeanMax     *float64 `mapstructure:"meanMax"`
	StdDevMin   *float64 `mapstructure:"stdDevMin"`
	StdDevMax   *float64 `mapstructure:"stdDevMax"`
}

type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	PushGatewayURL string `mapstructure:"pushGatewayURL"`
	Job            string `mapstructure:"job"`
}

type OutputConfig struct {
	Path   string `mapstructure:"path"` // "-" = stdout
	Pretty bool   `mapstructure:"pretty"`
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
// An empty configPath skips the file and uses defaults plus environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	if configPath != "" {
		if err := readConfigFile(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.kind", defaultInputKind)
	v.SetDefault("input.format", defaultInputFormat)
	v.SetDefault("input.path", "")
	v.SetDefault("input.separator", "")
	v.SetDefault("input.field", "")
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("kafka.idleTimeout", defaultKafkaIdle)
	v.SetDefault("kafka.maxMessages", 0)
	v.SetDefault("stats.precise", false)
	v.SetDefault("stats.preciseMaxDecimalDigits", defaultPreciseDigits)
	v.SetDefault("stats.chunked", false)
	v.SetDefault("stats.timed", defaultTimed)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.job", defaultMetricsJob)
	v.SetDefault("output.path", defaultOutputPath)
	v.SetDefault("output.pretty", defaultOutputPretty)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) || errors.Is(err, fs.ErrNotExist) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Input.Kind {
	case InputFile:
		if cfg.Input.Path == "" {
			return ErrEmptyInputPath
		}
	case InputStdin:
	case InputKafka:
		if len(cfg.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Kafka.Topic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Kafka.IdleTimeout <= 0 && cfg.Kafka.MaxMessages <= 0 {
			return ErrUnboundedKafkaInput
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidInputKind, cfg.Input.Kind)
	}
	if cfg.Input.Kind != InputKafka && cfg.Input.Format != FormatLines && cfg.Input.Format != FormatJSON {
		return fmt.Errorf("%w: %q", ErrInvalidInputFormat, cfg.Input.Format)
	}
	if cfg.Stats.PreciseMaxDecimalDigits <= 0 {
		return ErrInvalidPreciseDigits
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Job == "" {
		return ErrEmptyMetricsJob
	}
	return nil
}

// Validate re-checks a configuration, e.g. after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}
