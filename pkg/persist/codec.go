// Package persist provides codec-based file persistence for arbitrary state types.
package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"
)

// File extensions for supported codecs.
const (
	jsonExtension = ".json"
	lz4Extension  = ".lz4"
)

// ErrTrailingData is returned when a JSON document is followed by more input.
var ErrTrailingData = errors.New("trailing data after json document")

// Default indentation for pretty-printed JSON.
const defaultIndent = "  "

// Codec defines how state is serialized and deserialized.
type Codec interface {
	// Encode writes the state to the writer.
	Encode(w io.Writer, state any) error
	// Decode reads the state from the reader.
	Decode(r io.Reader, state any) error
	// Extension returns the file extension for this codec (e.g., ".json", ".json.lz4").
	Extension() string
}

// JSONCodec implements Codec using JSON encoding with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.Encode using JSON encoding.
func (c *JSONCodec) Encode(w io.Writer, state any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(state)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.Decode using JSON decoding. The input must hold
// exactly one JSON document.
func (c *JSONCodec) Decode(r io.Reader, state any) error {
	decoder := json.NewDecoder(r)

	err := decoder.Decode(state)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	var extra json.RawMessage

	err = decoder.Decode(&extra)
	if !errors.Is(err, io.EOF) {
		return fmt.Errorf("json decode: %w", ErrTrailingData)
	}

	return nil
}

// Extension implements Codec.Extension for JSON files.
func (c *JSONCodec) Extension() string {
	return jsonExtension
}

// LZ4Codec wraps another codec in an LZ4 frame.
type LZ4Codec struct {
	Inner Codec
}

// NewLZ4Codec creates an LZ4 codec around compact JSON.
func NewLZ4Codec() *LZ4Codec {
	return &LZ4Codec{Inner: &JSONCodec{}}
}

// Encode implements Codec.Encode by compressing the inner codec's output.
func (c *LZ4Codec) Encode(w io.Writer, state any) error {
	zw := lz4.NewWriter(w)

	err := c.Inner.Encode(zw, state)
	if err != nil {
		return err
	}

	closeErr := zw.Close()
	if closeErr != nil {
		return fmt.Errorf("lz4 close: %w", closeErr)
	}

	return nil
}

// Decode implements Codec.Decode by decompressing before the inner codec reads.
func (c *LZ4Codec) Decode(r io.Reader, state any) error {
	return c.Inner.Decode(lz4.NewReader(r), state)
}

// Extension implements Codec.Extension as the inner extension plus ".lz4".
func (c *LZ4Codec) Extension() string {
	return c.Inner.Extension() + lz4Extension
}
