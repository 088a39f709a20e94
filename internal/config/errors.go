package config

import "errors"

var (
	ErrReadingConfigFile    = errors.New("failed to read config file")
	ErrUnmarshallingConfig  = errors.New("failed to unmarshal config")
	ErrConfigFileMissing    = errors.New("config file not found")
	ErrInvalidInputKind     = errors.New("input kind must be one of file, stdin, kafka")
	ErrInvalidInputFormat   = errors.New("input format must be one of lines, json")
	ErrEmptyInputPath       = errors.New("input path cannot be empty for file input")
	ErrEmptyKafkaBrokers    = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic      = errors.New("kafka topic cannot be empty")
	ErrUnboundedKafkaInput  = errors.New("kafka input needs idleTimeout or maxMessages to end the stream")
	ErrInvalidPreciseDigits = errors.New("stats preciseMaxDecimalDigits must be positive")
	ErrEmptyMetricsJob      = errors.New("metrics job cannot be empty when metrics are enabled")
)
