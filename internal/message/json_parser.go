package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Decode parses any JSON value. Numbers stay json.Number so decimal text is
// preserved, and objects become DynamicMessage.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) if unmarshalling fails.
func Decode(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	// Keep the exact digits for precise mode
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	return normalize(v), nil
}

// Stream decodes a sequence of concatenated JSON values from a reader.
type Stream struct {
	dec *json.Decoder
}

// NewStream wraps r for successive Next calls.
func NewStream(r io.Reader) *Stream {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Stream{dec: dec}
}

// Next returns the next value, or io.EOF once the input is exhausted.
func (s *Stream) Next() (interface{}, error) {
	var v interface{}
	if err := s.dec.Decode(&v); err != nil {
		// A clean end between values is not an error
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	return normalize(v), nil
}

// normalize turns decoded objects into DynamicMessage, recursing into arrays.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return DynamicMessage(t)
	case []interface{}:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}
