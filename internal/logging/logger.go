package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sanspareilsmyn/calcstats/internal/config"
)

// NewLogger initializes a zap logger based on the provided configuration,
// supporting both console and rotating file output. Console output goes to
// stderr because stdout carries the computed statistics.
func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg config.LogConfig, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARN: %v, defaulting to INFO level\n", err)
		level = zapcore.InfoLevel
	}

	isConsole := strings.ToLower(cfg.Format) == "console"
	isJSONConsole := strings.ToLower(cfg.Format) == "json"
	isDevelopment := (level == zapcore.DebugLevel) || isConsole

	cores := []zapcore.Core{}

	// Configure Console Output
	if isConsole || isJSONConsole {
		// Both console styles share stderr; stdout is reserved for the result
		consoleCore := zapcore.NewCore(buildEncoder(isConsole), zapcore.Lock(zapcore.AddSync(console)), level)
		cores = append(cores, consoleCore)
	}

	// Configure File Output
	if cfg.FileLoggingEnabled {
		if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory '%s': %w", cfg.Directory, err)
		}

		// Configure lumberjack
		ljack := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Directory, cfg.Filename),
			MaxSize:    cfg.MaxSize,    // megabytes
			MaxBackups: cfg.MaxBackups, // files
			MaxAge:     cfg.MaxAge,     // days
			Compress:   cfg.Compress,   // disabled by default
		}
		fileEncoder := buildEncoder(false)
		fileSyncer := zapcore.AddSync(ljack)

		coreFile := zapcore.NewCore(fileEncoder, fileSyncer, level)
		cores = append(cores, coreFile)
	}

	// Combine cores if multiple outputs are configured
	var combinedCore zapcore.Core
	switch len(cores) {
	case 0:
		return nil, fmt.Errorf("no logging outputs configured (format %q, file logging disabled)", cfg.Format)
	case 1:
		combinedCore = cores[0]
	default:
		combinedCore = zapcore.NewTee(cores...)
	}

	// --- Build Logger Options ---
	loggerOptions := []zap.Option{zap.AddCaller()}
	if isDevelopment {
		loggerOptions = append(loggerOptions, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		loggerOptions = append(loggerOptions, zap.AddStacktrace(zapcore.DPanicLevel))
	}

	logger := zap.New(combinedCore, loggerOptions...)

	logger.Debug("Zap logger constructed",
		zap.String("final_level", level.String()),
		zap.String("console_format", cfg.Format),
		zap.Bool("file_logging_enabled", cfg.FileLoggingEnabled),
		zap.String("file_path", filepath.Join(cfg.Directory, cfg.Filename)),
		zap.Bool("development_mode", isDevelopment),
	)

	return logger, nil
}

func parseLevel(levelStr string) (zapcore.Level, error) {
	var level zapcore.Level
	err := level.UnmarshalText([]byte(strings.ToLower(levelStr)))
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level '%s'", levelStr)
	}
	return level, nil
}

func buildEncoder(useConsoleStyle bool) zapcore.Encoder {
	if useConsoleStyle {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder // Color for console
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	// Production / file output (JSON)
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder // ISO8601 is standard
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}
