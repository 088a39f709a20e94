package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/calcstats/internal/config"
	"github.com/sanspareilsmyn/calcstats/internal/message"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// messageReader is the part of *kafka.Reader the source uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka streams decoded message values from a topic. The stream ends after
// MaxMessages messages or once no message arrives within IdleTimeout.
type Kafka struct {
	reader   messageReader
	cfg      config.KafkaConfig
	logger   *zap.Logger
	consumed int
}

// NewKafka creates and configures a Kafka-backed stream.
func NewKafka(cfg config.KafkaConfig, logger *zap.Logger) (*Kafka, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
			zap.String("group_id", cfg.GroupID),
		)
		return nil, ErrInvalidKafkaConfig
	}

	readerCfg := kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		Logger:      kafkaZapLogger{logger.Named("kafka-reader").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger: kafkaZapErrorLogger{logger.Named("kafka-reader-error").WithOptions(zap.AddCallerSkip(1))},
	}
	r := kafka.NewReader(readerCfg)

	logger.Info("Kafka source created",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
		zap.Duration("idle_timeout", cfg.IdleTimeout),
		zap.Int("max_messages", cfg.MaxMessages),
	)

	return newKafka(r, cfg, logger), nil
}

func newKafka(r messageReader, cfg config.KafkaConfig, logger *zap.Logger) *Kafka {
	return &Kafka{reader: r, cfg: cfg, logger: logger}
}

// Next fetches and decodes the next message. Undecodable payloads yield nil
// so they are counted as invalid rather than aborting the stream.
func (k *Kafka) Next(ctx context.Context) (any, bool, error) {
	if k.cfg.MaxMessages > 0 && k.consumed >= k.cfg.MaxMessages {
		return nil, false, nil
	}

	fetchCtx, cancel := ctx, context.CancelFunc(func() {})
	if k.cfg.IdleTimeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, k.cfg.IdleTimeout)
	}
	defer cancel()

	m, err := k.reader.FetchMessage(fetchCtx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			k.logger.Info("No message within idle timeout, ending stream",
				zap.Duration("idle_timeout", k.cfg.IdleTimeout),
				zap.Int("consumed", k.consumed),
			)
			return nil, false, nil
		}
		k.logger.Error("Error fetching message from Kafka", zap.Error(err))
		return nil, false, fmt.Errorf("%w: %w", ErrKafkaFetchFailed, err)
	}
	k.consumed++

	if k.cfg.GroupID != "" {
		if err := k.reader.CommitMessages(ctx, m); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrKafkaCommitFailed, err)
		}
	}

	v, err := message.Decode(m.Value)
	if err != nil {
		k.logger.Warn("Failed to decode message, counting it as invalid",
			zap.Int64("offset", m.Offset),
			zap.String("value_snippet", message.Snippet(string(m.Value), 50)),
			zap.Error(err),
		)
		return nil, true, nil
	}
	return v, true, nil
}

// Close closes the underlying reader.
func (k *Kafka) Close() error {
	if err := k.reader.Close(); err != nil {
		k.logger.Error("Failed to close Kafka reader cleanly", zap.Error(err))
		return err
	}
	k.logger.Debug("Kafka reader closed", zap.Int("consumed", k.consumed))
	return nil
}
