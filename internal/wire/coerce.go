package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// FromAny converts a generically decoded value (as produced by JSON, YAML
// or TOML decoders) into a Value of kind k. Numbers are range-checked
// against the target width. Byte sequences accept a base64 string or a
// list of numbers.
func FromAny(k Kind, raw any) (Value, error) {
	if v, ok := raw.(Value); ok {
		if v.kind != k {
			return Value{}, fmt.Errorf("cannot use %s value as %s", v.kind, k)
		}
		return v.Clone(), nil
	}

	switch k {
	case KindBool:
		if b, ok := raw.(bool); ok {
			return Bool(b), nil
		}
	case KindByte:
		if n, ok := toUint64(raw); ok && n <= math.MaxUint8 {
			return Byte(uint8(n)), nil
		}
	case KindInt32:
		if n, ok := toInt64(raw); ok && n >= math.MinInt32 && n <= math.MaxInt32 {
			return Int32(int32(n)), nil
		}
	case KindUint32:
		if n, ok := toUint64(raw); ok && n <= math.MaxUint32 {
			return Uint32(uint32(n)), nil
		}
	case KindInt64:
		if n, ok := toInt64(raw); ok {
			return Int64(n), nil
		}
	case KindUint64:
		if n, ok := toUint64(raw); ok {
			return Uint64(n), nil
		}
	case KindDouble:
		if f, ok := toFloat64(raw); ok {
			return Double(f), nil
		}
	case KindString:
		if s, ok := raw.(string); ok {
			return String(s), nil
		}
		// Unquoted scalars in hand-written YAML or TOML.
		if v := Infer(raw); v.kind == KindBool || v.kind.IsNumeric() {
			return String(v.Text()), nil
		}
	case KindBytes:
		return bytesFromAny(raw)
	case KindStrings:
		return stringsFromAny(raw)
	case KindDict:
		if m, ok := mapFromAny(raw); ok {
			return Value{kind: KindDict, dict: m}, nil
		}
	case KindDictList:
		return dictListFromAny(raw)
	}
	return Value{}, fmt.Errorf("cannot use %T value as %s", raw, k)
}

// Infer converts a generically decoded value into a Value, guessing the
// kind. Integral numbers become int64, lists of strings become strings,
// lists of maps become dict-lists. It returns an invalid Value when no kind
// fits.
func Infer(raw any) Value {
	switch x := raw.(type) {
	case Value:
		return x.Clone()
	case bool:
		return Bool(x)
	case string:
		return String(x)
	case []byte:
		return Bytes(x)
	case []string:
		return Strings(x)
	case float32, float64, json.Number:
		if n, ok := toInt64(x); ok {
			return Int64(n)
		}
		f, _ := toFloat64(x)
		return Double(f)
	case map[string]any:
		m, _ := mapFromAny(x)
		return Value{kind: KindDict, dict: m}
	case []map[string]any:
		v, _ := dictListFromAny(x)
		return v
	case []any:
		if v, err := stringsFromAny(x); err == nil {
			return v
		}
		if v, err := dictListFromAny(x); err == nil {
			return v
		}
		return Value{}
	}
	if n, ok := toInt64(raw); ok {
		return Int64(n)
	}
	if n, ok := toUint64(raw); ok {
		return Uint64(n)
	}
	return Value{}
}

// ToAny converts v into plain Go values suitable for JSON, YAML and TOML
// encoders. Byte sequences become base64 strings.
func ToAny(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindByte, KindUint32:
		return int64(v.u)
	case KindInt32, KindInt64:
		return v.i
	case KindUint64:
		return v.u
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindBytes:
		return base64.StdEncoding.EncodeToString(v.data)
	case KindStrings:
		return append([]string{}, v.strs...)
	case KindDict:
		return MapToAny(v.dict)
	case KindDictList:
		out := make([]map[string]any, len(v.list))
		for i, m := range v.list {
			out[i] = MapToAny(m)
		}
		return out
	}
	return nil
}

// MapToAny converts every value of m with ToAny
func MapToAny(m Map) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = ToAny(v)
	}
	return out
}

// Text renders scalar payloads without quoting. Strings are returned as is.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindByte, KindUint32, KindUint64:
		return strconv.FormatUint(v.u, 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	}
	return v.String()
}

func toInt64(raw any) (int64, bool) {
	switch x := raw.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), true
		}
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), true
		}
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

func toUint64(raw any) (uint64, bool) {
	switch x := raw.(type) {
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case json.Number:
		if n, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return n, true
		}
	case float32, float64:
		f, _ := toFloat64(x)
		if f >= 0 && f == math.Trunc(f) && f < math.MaxUint64 {
			return uint64(f), true
		}
	}
	if n, ok := toInt64(raw); ok && n >= 0 {
		return uint64(n), true
	}
	return 0, false
}

func toFloat64(raw any) (float64, bool) {
	switch x := raw.(type) {
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f, true
		}
		return 0, false
	}
	if n, ok := toInt64(raw); ok {
		return float64(n), true
	}
	if n, ok := toUint64(raw); ok {
		return float64(n), true
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func bytesFromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case []byte:
		return Bytes(x), nil
	case string:
		data, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return Value{}, fmt.Errorf("decoding bytes: %w", err)
		}
		return Value{kind: KindBytes, data: data}, nil
	case []any:
		data := make([]byte, len(x))
		for i, el := range x {
			n, ok := toUint64(el)
			if !ok || n > math.MaxUint8 {
				return Value{}, fmt.Errorf("byte %d out of range", i)
			}
			data[i] = byte(n)
		}
		return Value{kind: KindBytes, data: data}, nil
	}
	return Value{}, fmt.Errorf("cannot use %T value as %s", raw, KindBytes)
}

func stringsFromAny(raw any) (Value, error) {
	switch x := raw.(type) {
	case []string:
		return Strings(x), nil
	case []any:
		strs := make([]string, len(x))
		for i, el := range x {
			s, ok := el.(string)
			if !ok {
				return Value{}, fmt.Errorf("element %d is %T, not string", i, el)
			}
			strs[i] = s
		}
		return Value{kind: KindStrings, strs: strs}, nil
	}
	return Value{}, fmt.Errorf("cannot use %T value as %s", raw, KindStrings)
}

func mapFromAny(raw any) (Map, bool) {
	switch x := raw.(type) {
	case Map:
		return x.Clone(), true
	case map[string]Value:
		return Map(x).Clone(), true
	case map[string]any:
		m := make(Map, len(x))
		for k, el := range x {
			v := Infer(el)
			if !v.IsValid() {
				return nil, false
			}
			m[k] = v
		}
		return m, true
	case map[string]string:
		m := make(Map, len(x))
		for k, s := range x {
			m[k] = String(s)
		}
		return m, true
	}
	return nil, false
}

func dictListFromAny(raw any) (Value, error) {
	var elems []any
	switch x := raw.(type) {
	case []Map:
		return DictList(x), nil
	case []map[string]any:
		elems = make([]any, len(x))
		for i := range x {
			elems[i] = x[i]
		}
	case []any:
		elems = x
	default:
		return Value{}, fmt.Errorf("cannot use %T value as %s", raw, KindDictList)
	}
	list := make([]Map, len(elems))
	for i, el := range elems {
		m, ok := mapFromAny(el)
		if !ok {
			return Value{}, fmt.Errorf("element %d is %T, not a map", i, el)
		}
		list[i] = m
	}
	return Value{kind: KindDictList, list: list}, nil
}
