package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sanspareilsmyn/calcstats/internal/message"
)

// Lines reads one value per non-empty line. With a separator every line
// becomes a batch of values.
type Lines struct {
	scanner   *bufio.Scanner
	closer    io.Closer
	separator string
}

// NewLineReader wraps r. If r is an io.Closer, Close closes it.
func NewLineReader(r io.Reader, separator string) *Lines {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	l := &Lines{scanner: scanner, separator: separator}
	if c, ok := r.(io.Closer); ok {
		l.closer = c
	}
	return l
}

func (l *Lines) Next(context.Context) (any, bool, error) {
	for l.scanner.Scan() {
		line := strings.TrimSpace(l.scanner.Text())
		if line == "" {
			continue
		}
		if l.separator == "" {
			return token(line), true, nil
		}
		fields := strings.Split(line, l.separator)
		batch := make([]any, len(fields))
		for i, f := range fields {
			batch[i] = token(strings.TrimSpace(f))
		}
		return batch, true, nil
	}
	if err := l.scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return nil, false, nil
}

func (l *Lines) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// token keeps numeric text as json.Number so precise mode sees the exact
// digits; anything else stays a string and is later counted as invalid.
func token(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	return json.Number(s)
}

// JSON reads concatenated JSON values. Arrays arrive as batches.
type JSON struct {
	stream *message.Stream
	closer io.Closer
}

// NewJSONReader wraps r. If r is an io.Closer, Close closes it.
func NewJSONReader(r io.Reader) *JSON {
	j := &JSON{stream: message.NewStream(r)}
	if c, ok := r.(io.Closer); ok {
		j.closer = c
	}
	return j
}

func (j *JSON) Next(context.Context) (any, bool, error) {
	v, err := j.stream.Next()
	if errors.Is(err, io.EOF) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}
	return v, true, nil
}

func (j *JSON) Close() error {
	if j.closer == nil {
		return nil
	}
	return j.closer.Close()
}
