package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// JSONCodec handles JSON connection documents
type JSONCodec struct {
	reg *setting.Registry
}

// NewJSONCodec creates a JSON codec for the default registry
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{reg: setting.Default}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse reads a connection from JSON. Numbers keep their full precision
// until the schema picks their width.
func (c *JSONCodec) Parse(r io.Reader) (wire.Connection, error) {
	var doc map[string]any
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return DecodeDocument(c.reg, doc)
}

// Export writes a connection as indented JSON
func (c *JSONCodec) Export(conn wire.Connection, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(EncodeDocument(conn)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// EncodeJSON encodes a connection as compact JSON for storage
func EncodeJSON(conn wire.Connection) ([]byte, error) {
	data, err := json.Marshal(EncodeDocument(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return data, nil
}

// DecodeJSON decodes stored JSON against reg's schemas
func DecodeJSON(reg *setting.Registry, data []byte) (wire.Connection, error) {
	var doc map[string]any
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return DecodeDocument(reg, doc)
}
