// Package codec reads and writes connection documents. A document maps
// setting names to tables of property values:
//
//	connection:
//	  id: office
//	  type: 802-3-ethernet
//	802-3-ethernet:
//	  mtu: 9000
//
// Decoding is schema guided: each value is coerced to the wire kind its
// property declares, so a YAML integer becomes a uint32 where the schema
// says uint32 and a base64 string becomes bytes.
package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// ErrUnknownFormat is returned for formats and file extensions no codec
// handles
var ErrUnknownFormat = errors.New("unknown document format")

// Importer parses a connection document
type Importer interface {
	Parse(r io.Reader) (wire.Connection, error)
	Format() string
}

// Exporter writes a connection document
type Exporter interface {
	Export(c wire.Connection, w io.Writer) error
	Format() string
}

// Codec both parses and writes one document format
type Codec interface {
	Importer
	Exporter
}

var extensions = map[string]string{
	".json":         "json",
	".yaml":         "yaml",
	".yml":          "yaml",
	".toml":         "toml",
	".nmconnection": "toml",
}

// ForFormat returns the codec for a format name
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "toml", "keyfile":
		return NewTOMLCodec(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ForPath picks a codec by file extension
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensions[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return ForFormat(format)
}

// Supported reports whether path has an extension a codec handles
func Supported(path string) bool {
	_, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// DecodeDocument converts a generically decoded document into a wire
// connection using reg's schemas. Properties the schema does not know keep an inferred kind;
// the engine logs and skips them.
func DecodeDocument(reg *setting.Registry, doc map[string]any) (wire.Connection, error) {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(wire.Connection, len(doc))
	for _, name := range names {
		sch, err := reg.SchemaByName(name)
		if err != nil {
			return nil, err
		}

		var section map[string]any
		switch x := doc[name].(type) {
		case nil:
		case map[string]any:
			section = x
		default:
			return nil, fmt.Errorf("setting %q: expected a table, got %T", name, x)
		}

		m := make(wire.Map, len(section))
		for key, raw := range section {
			d := sch.Find(key)
			if d == nil {
				if v := wire.Infer(raw); v.IsValid() {
					m[key] = v
				}
				continue
			}
			v, err := decodeValue(d, raw)
			if err != nil {
				return nil, setting.NewPropertyError(sch.Type(), key, setting.ErrPropertyTypeMismatch, "%v", err)
			}
			m[key] = v
		}
		out[name] = m
	}
	return out, nil
}

// decodeValue coerces raw to the descriptor's wire kind. Transformed
// properties also accept their native form, so a keyfile may spell a MAC
// address as text rather than base64.
func decodeValue(d *setting.Descriptor, raw any) (wire.Value, error) {
	v, err := wire.FromAny(d.WireKind, raw)
	if err == nil || d.Native == nil || !d.HasTransform() {
		return v, err
	}
	nv, nerr := wire.FromAny(d.Native.Kind, raw)
	if nerr != nil {
		return wire.Value{}, err
	}
	return d.ToWire(nv), nil
}

// EncodeDocument converts a wire connection into plain Go values. Bytes
// become base64 strings.
func EncodeDocument(c wire.Connection) map[string]any {
	doc := make(map[string]any, len(c))
	for name, m := range c {
		doc[name] = wire.MapToAny(m)
	}
	return doc
}
