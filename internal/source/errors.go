package source

import "errors"

var (
	ErrNoIterator         = errors.New("unable to determine iterator")
	ErrUnsupportedInput   = errors.New("unsupported input")
	ErrOpenFailed         = errors.New("failed to open input")
	ErrReadFailed         = errors.New("failed to read input")
	ErrInvalidKafkaConfig = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed   = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed  = errors.New("failed to commit Kafka message")
)
