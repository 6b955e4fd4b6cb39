package codec

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// TOMLCodec handles keyfiles: TOML documents with one table per setting
type TOMLCodec struct {
	reg *setting.Registry
}

// NewTOMLCodec creates a keyfile codec for the default registry
func NewTOMLCodec() *TOMLCodec {
	return &TOMLCodec{reg: setting.Default}
}

// Format returns the codec format identifier
func (c *TOMLCodec) Format() string {
	return "toml"
}

// Parse reads a connection from a keyfile
func (c *TOMLCodec) Parse(r io.Reader) (wire.Connection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyfile: %w", err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return DecodeDocument(c.reg, doc)
}

// Export writes a connection as a keyfile
func (c *TOMLCodec) Export(conn wire.Connection, w io.Writer) error {
	encoder := toml.NewEncoder(w)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(EncodeDocument(conn)); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}
