package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Value is a tagged wire value. The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	data []byte
	strs []string
	dict Map
	list []Map
}

// Map holds the wire properties of one setting keyed by property name
type Map map[string]Value

// Connection holds the wire maps of every setting in a connection keyed by
// setting name
type Connection map[string]Map

func Bool(v bool) Value     { return Value{kind: KindBool, b: v} }
func Byte(v uint8) Value    { return Value{kind: KindByte, u: uint64(v)} }
func Int32(v int32) Value   { return Value{kind: KindInt32, i: int64(v)} }
func Uint32(v uint32) Value { return Value{kind: KindUint32, u: uint64(v)} }
func Int64(v int64) Value   { return Value{kind: KindInt64, i: v} }
func Uint64(v uint64) Value { return Value{kind: KindUint64, u: v} }
func Double(v float64) Value {
	return Value{kind: KindDouble, f: v}
}
func String(v string) Value { return Value{kind: KindString, s: v} }

// Bytes returns a byte-sequence value holding a copy of v
func Bytes(v []byte) Value {
	return Value{kind: KindBytes, data: append([]byte(nil), v...)}
}

// Strings returns a string-sequence value holding a copy of v
func Strings(v []string) Value {
	return Value{kind: KindStrings, strs: append([]string(nil), v...)}
}

// Dict returns a nested map value holding a deep copy of m
func Dict(m Map) Value {
	return Value{kind: KindDict, dict: m.Clone()}
}

// DictList returns a list-of-maps value holding a deep copy of l
func DictList(l []Map) Value {
	out := make([]Map, len(l))
	for i, m := range l {
		out[i] = m.Clone()
	}
	return Value{kind: KindDictList, list: out}
}

// Zero returns the zero payload of kind k
func Zero(k Kind) Value {
	switch k {
	case KindBool:
		return Bool(false)
	case KindByte:
		return Byte(0)
	case KindInt32:
		return Int32(0)
	case KindUint32:
		return Uint32(0)
	case KindInt64:
		return Int64(0)
	case KindUint64:
		return Uint64(0)
	case KindDouble:
		return Double(0)
	case KindString:
		return String("")
	case KindBytes:
		return Value{kind: KindBytes}
	case KindStrings:
		return Value{kind: KindStrings}
	case KindDict:
		return Value{kind: KindDict}
	case KindDictList:
		return Value{kind: KindDictList}
	}
	return Value{}
}

// Kind returns the value's kind
func (v Value) Kind() Kind { return v.kind }

// IsValid reports whether v holds a payload
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) AsBool() bool       { return v.b }
func (v Value) AsByte() uint8      { return uint8(v.u) }
func (v Value) AsInt32() int32     { return int32(v.i) }
func (v Value) AsUint32() uint32   { return uint32(v.u) }
func (v Value) AsInt64() int64     { return v.i }
func (v Value) AsUint64() uint64   { return v.u }
func (v Value) AsDouble() float64  { return v.f }
func (v Value) AsString() string   { return v.s }
func (v Value) AsBytes() []byte    { return append([]byte(nil), v.data...) }
func (v Value) AsStrings() []string { return append([]string(nil), v.strs...) }

// AsDict returns a deep copy of the nested map
func (v Value) AsDict() Map { return v.dict.Clone() }

// AsDictList returns a deep copy of the list of maps
func (v Value) AsDictList() []Map {
	if v.list == nil {
		return nil
	}
	out := make([]Map, len(v.list))
	for i, m := range v.list {
		out[i] = m.Clone()
	}
	return out
}

// Len returns the element count of sequence and map kinds, 0 otherwise
func (v Value) Len() int {
	switch v.kind {
	case KindBytes:
		return len(v.data)
	case KindStrings:
		return len(v.strs)
	case KindDict:
		return len(v.dict)
	case KindDictList:
		return len(v.list)
	}
	return 0
}

// Clone returns a deep copy of v
func (v Value) Clone() Value {
	switch v.kind {
	case KindBytes:
		if v.data != nil {
			v.data = append([]byte(nil), v.data...)
		}
	case KindStrings:
		if v.strs != nil {
			v.strs = append([]string(nil), v.strs...)
		}
	case KindDict:
		v.dict = v.dict.Clone()
	case KindDictList:
		v.list = v.AsDictList()
	}
	return v
}

// Equal reports whether a and b hold the same kind and payload
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// Compare orders values first by kind, then by payload. Empty and nil
// sequences compare equal. Maps compare by size, then by sorted keys, then
// by the values under those keys.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmpInt(int64(a.kind), int64(b.kind))
	}
	switch a.kind {
	case KindInvalid:
		return 0
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		}
		return 1
	case KindInt32, KindInt64:
		return cmpInt(a.i, b.i)
	case KindByte, KindUint32, KindUint64:
		switch {
		case a.u < b.u:
			return -1
		case a.u > b.u:
			return 1
		}
		return 0
	case KindDouble:
		switch {
		case a.f < b.f:
			return -1
		case a.f > b.f:
			return 1
		}
		return 0
	case KindString:
		return strings.Compare(a.s, b.s)
	case KindBytes:
		return bytes.Compare(a.data, b.data)
	case KindStrings:
		if c := cmpInt(int64(len(a.strs)), int64(len(b.strs))); c != 0 {
			return c
		}
		for i := range a.strs {
			if c := strings.Compare(a.strs[i], b.strs[i]); c != 0 {
				return c
			}
		}
		return 0
	case KindDict:
		return compareMaps(a.dict, b.dict)
	case KindDictList:
		if c := cmpInt(int64(len(a.list)), int64(len(b.list))); c != 0 {
			return c
		}
		for i := range a.list {
			if c := compareMaps(a.list[i], b.list[i]); c != 0 {
				return c
			}
		}
		return 0
	}
	return 0
}

func compareMaps(a, b Map) int {
	if c := cmpInt(int64(len(a)), int64(len(b))); c != 0 {
		return c
	}
	ak, bk := a.Keys(), b.Keys()
	for i := range ak {
		if c := strings.Compare(ak[i], bk[i]); c != 0 {
			return c
		}
	}
	for _, k := range ak {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// String renders v for logs and debug dumps
func (v Value) String() string {
	switch v.kind {
	case KindInvalid:
		return "<invalid>"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindByte, KindUint32, KindUint64:
		return strconv.FormatUint(v.u, 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindBytes:
		return "0x" + hex.EncodeToString(v.data)
	case KindStrings:
		quoted := make([]string, len(v.strs))
		for i, s := range v.strs {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case KindDict:
		return v.dict.String()
	case KindDictList:
		parts := make([]string, len(v.list))
		for i, m := range v.list {
			parts[i] = m.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprintf("<kind %d>", v.kind)
}

// Keys returns the map's keys in sorted order
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of m. A nil map stays nil.
func (m Map) Clone() Map {
	if m == nil {
		return nil
	}
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v.Clone()
	}
	return out
}

// String renders the map with sorted keys
func (m Map) String() string {
	parts := make([]string, 0, len(m))
	for _, k := range m.Keys() {
		parts = append(parts, k+": "+m[k].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Names returns the connection's setting names in sorted order
func (c Connection) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of c
func (c Connection) Clone() Connection {
	if c == nil {
		return nil
	}
	out := make(Connection, len(c))
	for name, m := range c {
		out[name] = m.Clone()
	}
	return out
}
