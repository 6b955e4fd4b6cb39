package wire

// Kind identifies the payload held by a Value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindByte
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindDouble
	KindString
	KindBytes
	KindStrings
	KindDict
	KindDictList
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindBool:     "bool",
	KindByte:     "byte",
	KindInt32:    "int32",
	KindUint32:   "uint32",
	KindInt64:    "int64",
	KindUint64:   "uint64",
	KindDouble:   "double",
	KindString:   "string",
	KindBytes:    "bytes",
	KindStrings:  "strings",
	KindDict:     "dict",
	KindDictList: "dict-list",
}

var kindSignatures = [...]string{
	KindInvalid:  "",
	KindBool:     "b",
	KindByte:     "y",
	KindInt32:    "i",
	KindUint32:   "u",
	KindInt64:    "x",
	KindUint64:   "t",
	KindDouble:   "d",
	KindString:   "s",
	KindBytes:    "ay",
	KindStrings:  "as",
	KindDict:     "a{sv}",
	KindDictList: "aa{sv}",
}

// String returns the kind's name
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Signature returns the compact type signature used in debug dumps
func (k Kind) Signature() string {
	if int(k) < len(kindSignatures) {
		return kindSignatures[k]
	}
	return "?"
}

// ParseKind returns the kind with the given name
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name && Kind(k) != KindInvalid {
			return Kind(k), true
		}
	}
	return KindInvalid, false
}

// IsNumeric reports whether k holds an integer or double payload
func (k Kind) IsNumeric() bool {
	switch k {
	case KindByte, KindInt32, KindUint32, KindInt64, KindUint64, KindDouble:
		return true
	}
	return false
}

func (k Kind) isSigned() bool {
	return k == KindInt32 || k == KindInt64
}

func (k Kind) isUnsigned() bool {
	return k == KindByte || k == KindUint32 || k == KindUint64
}
