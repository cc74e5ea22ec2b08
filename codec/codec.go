// Package codec converts loosely typed ledger values into typed fields and back.
//
// Decoders are total: a value of the wrong shape yields the zero value and a
// warning in the log, never an error. Callers must treat a zero value as
// "unknown", not as ledger truth.
package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"
)

func logFailure(kind string, raw any, reason string) {
	zap.L().Warn("ledger value decode failed",
		zap.String("kind", kind),
		zap.String("type", fmt.Sprintf("%T", raw)),
		zap.String("reason", reason),
	)
}

// DecodeText turns a 0x-prefixed hex string or a byte sequence into UTF-8 text.
func DecodeText(raw any) string {
	switch v := raw.(type) {
	case string:
		b, err := hexutil.Decode(v)
		if err != nil {
			logFailure("text", raw, err.Error())
			return ""
		}
		return utf8String(b)
	case hexutil.Bytes:
		return utf8String(v)
	case []byte:
		return utf8String(v)
	case []any:
		b, ok := byteSequence(v)
		if !ok {
			logFailure("text", raw, "element is not a byte")
			return ""
		}
		return utf8String(b)
	default:
		logFailure("text", raw, "unsupported shape")
		return ""
	}
}

// EncodeText encodes s for an outgoing vector<u8> argument. The result
// marshals to JSON as 0x-prefixed hex.
func EncodeText(s string) hexutil.Bytes {
	return hexutil.Bytes(s)
}

// EncodeNumeric renders a u64 argument the way the ledger's JSON API expects it.
func EncodeNumeric(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// DecodeNumeric turns a numeric string or number into a non-negative integer.
func DecodeNumeric(raw any) uint64 {
	switch v := raw.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			logFailure("numeric", raw, err.Error())
			return 0
		}
		return n
	case json.Number:
		return DecodeNumeric(v.String())
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= math.MaxUint64 {
			logFailure("numeric", raw, "not a non-negative integer")
			return 0
		}
		return uint64(v)
	case int:
		if v < 0 {
			logFailure("numeric", raw, "negative")
			return 0
		}
		return uint64(v)
	case int64:
		if v < 0 {
			logFailure("numeric", raw, "negative")
			return 0
		}
		return uint64(v)
	case uint64:
		return v
	case uint32:
		return uint64(v)
	default:
		logFailure("numeric", raw, "unsupported shape")
		return 0
	}
}

func DecodeBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			logFailure("bool", raw, err.Error())
			return false
		}
		return b
	case json.Number, float64, int, int64, uint64:
		return DecodeNumeric(v) != 0
	default:
		logFailure("bool", raw, "unsupported shape")
		return false
	}
}

func DecodeAddress(raw any) string {
	s, ok := raw.(string)
	if !ok {
		logFailure("address", raw, "unsupported shape")
		return ""
	}
	return strings.TrimSpace(s)
}

func utf8String(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

func byteSequence(items []any) ([]byte, bool) {
	out := make([]byte, 0, len(items))
	for _, item := range items {
		var n uint64
		switch v := item.(type) {
		case json.Number:
			parsed, err := strconv.ParseUint(v.String(), 10, 8)
			if err != nil {
				return nil, false
			}
			n = parsed
		case float64:
			if v < 0 || v > 255 || v != math.Trunc(v) {
				return nil, false
			}
			n = uint64(v)
		case int:
			if v < 0 || v > 255 {
				return nil, false
			}
			n = uint64(v)
		default:
			return nil, false
		}
		out = append(out, byte(n))
	}
	return out, true
}
