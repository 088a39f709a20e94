package source

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/calcstats/internal/config"
)

// Open builds the stream described by input. stdin is never closed.
func Open(input config.InputConfig, kafkaCfg config.KafkaConfig, logger *zap.Logger) (Stream, error) {
	switch input.Kind {
	case config.InputKafka:
		return NewKafka(kafkaCfg, logger.Named("kafka"))
	case config.InputStdin:
		return newReaderStream(struct{ io.Reader }{os.Stdin}, input)
	case config.InputFile:
		f, err := os.Open(input.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
		}
		logger.Debug("Opened input file", zap.String("path", input.Path), zap.String("format", input.Format))
		s, err := newReaderStream(f, input)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedInput, input.Kind)
	}
}

func newReaderStream(r io.Reader, input config.InputConfig) (Stream, error) {
	switch input.Format {
	case config.FormatLines, "":
		return NewLineReader(r, input.Separator), nil
	case config.FormatJSON:
		return NewJSONReader(r), nil
	default:
		return nil, fmt.Errorf("%w: format %q", ErrUnsupportedInput, input.Format)
	}
}
