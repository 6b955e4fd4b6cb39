package codec

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// YAMLCodec handles YAML connection documents
type YAMLCodec struct {
	reg *setting.Registry
}

// NewYAMLCodec creates a YAML codec for the default registry
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{reg: setting.Default}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse reads a connection from YAML. An empty document is an empty
// connection.
func (c *YAMLCodec) Parse(r io.Reader) (wire.Connection, error) {
	var doc map[string]any
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return DecodeDocument(c.reg, doc)
}

// Export writes a connection as YAML
func (c *YAMLCodec) Export(conn wire.Connection, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(EncodeDocument(conn)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}
