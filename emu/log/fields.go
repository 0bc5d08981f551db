package log

import (
	"fmt"
	"strconv"
	"time"
)

type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeDuration
	FieldTypeStringer
)

// ZField is a typed log field. Formatting is deferred until the entry is
// emitted.
type ZField struct {
	Type FieldType
	Key  string

	// Only one of these is set, depending on Type.
	String    string
	Integer   uint64
	Duration  time.Duration
	Error     error
	Interface fmt.Stringer
	Boolean   bool
}

// Value formats the field value. Hexadecimal values are upper case, the way
// CHIP-8 addresses and opcodes are usually written.
func (f *ZField) Value() string {
	switch f.Type {
	case FieldTypeBool:
		return strconv.FormatBool(f.Boolean)
	case FieldTypeString:
		return f.String
	case FieldTypeUint:
		return strconv.FormatUint(f.Integer, 10)
	case FieldTypeInt:
		return strconv.FormatInt(int64(f.Integer), 10)
	case FieldTypeHex8:
		return fmt.Sprintf("%02X", uint8(f.Integer))
	case FieldTypeHex16:
		return fmt.Sprintf("%04X", uint16(f.Integer))
	case FieldTypeError:
		if f.Error == nil {
			return "<nil>"
		}
		return f.Error.Error()
	case FieldTypeDuration:
		return f.Duration.String()
	case FieldTypeStringer:
		return f.Interface.String()
	}
	return ""
}
