// Package schemadoc renders JSON Schema documents describing the wire form
// of registered setting types
package schemadoc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/invopop/jsonschema"

	"connsettings/internal/setting"
	"connsettings/internal/wire"
)

// ForType returns the schema of one setting type's wire map
func ForType(reg *setting.Registry, name string) (*jsonschema.Schema, error) {
	sch, err := reg.SchemaByName(name)
	if err != nil {
		return nil, err
	}

	props := jsonschema.NewProperties()
	for _, d := range sch.Properties() {
		props.Set(d.Name, property(d))
	}
	return &jsonschema.Schema{
		Title:                name,
		Type:                 "object",
		Properties:           props,
		AdditionalProperties: jsonschema.FalseSchema,
	}, nil
}

// ForConnection returns the schema of a whole connection document: one
// optional member per registered type, with the connection setting
// required
func ForConnection(reg *setting.Registry) (*jsonschema.Schema, error) {
	props := jsonschema.NewProperties()
	for _, info := range reg.Types() {
		s, err := ForType(reg, info.Name)
		if err != nil {
			return nil, err
		}
		s.Description = fmt.Sprintf("priority %d", info.Priority)
		props.Set(info.Name, s)
	}
	return &jsonschema.Schema{
		Version:              jsonschema.Version,
		Title:                "connection",
		Type:                 "object",
		Properties:           props,
		Required:             []string{setting.ConnectionSettingName},
		AdditionalProperties: jsonschema.FalseSchema,
	}, nil
}

func property(d *setting.Descriptor) *jsonschema.Schema {
	s := kindSchema(d.WireKind)
	switch {
	case d.Native == nil:
		s.Description = "derived"
	case !d.IsWritable():
		s.ReadOnly = true
	case d.IsSecret():
		s.WriteOnly = true
		s.Description = "secret"
	case d.SecretOf() != "":
		s.Description = "secret flags of " + d.SecretOf()
	}
	if d.Native != nil && d.IsWritable() && !d.HasTransform() {
		if def := d.Native.DefaultValue(); !wire.Equal(def, wire.Zero(def.Kind())) {
			s.Default = wire.ToAny(def)
		}
	}
	return s
}

func kindSchema(k wire.Kind) *jsonschema.Schema {
	integer := func(min, max int64) *jsonschema.Schema {
		return &jsonschema.Schema{
			Type:    "integer",
			Minimum: json.Number(strconv.FormatInt(min, 10)),
			Maximum: json.Number(strconv.FormatInt(max, 10)),
		}
	}

	switch k {
	case wire.KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case wire.KindByte:
		return integer(0, math.MaxUint8)
	case wire.KindInt32:
		return integer(math.MinInt32, math.MaxInt32)
	case wire.KindUint32:
		return integer(0, math.MaxUint32)
	case wire.KindInt64:
		return &jsonschema.Schema{Type: "integer"}
	case wire.KindUint64:
		return &jsonschema.Schema{Type: "integer", Minimum: "0"}
	case wire.KindDouble:
		return &jsonschema.Schema{Type: "number"}
	case wire.KindString:
		return &jsonschema.Schema{Type: "string"}
	case wire.KindBytes:
		return &jsonschema.Schema{Type: "string", ContentEncoding: "base64"}
	case wire.KindStrings:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
	case wire.KindDict:
		return &jsonschema.Schema{Type: "object"}
	case wire.KindDictList:
		return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "object"}}
	}
	return &jsonschema.Schema{}
}
