package params

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// SerializeParams encodes a coerced parameter [Set] into the canonical,
// order-preserving little-endian byte buffer the determinism accumulator
// hashes. The fast and slow paths do not send this buffer; they pass the
// coerced [Set] itself. Each value is preceded by its [Type] tag so the
// buffer round-trips through [DeserializeParams].
func SerializeParams(types []Type, set Set) ([]byte, error) {
	if len(types) != len(set) {
		return nil, fmt.Errorf("params: type vector length %d does not match set length %d", len(types), len(set))
	}

	var buf bytes.Buffer

	for i, t := range types {
		buf.WriteByte(byte(t))

		if err := writeValue(&buf, t, set[i]); err != nil {
			return nil, fmt.Errorf("params: parameter %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, t Type, v any) error {
	switch t {
	case TypeTinyInt:
		return binary.Write(buf, binary.LittleEndian, v.(int8))
	case TypeSmallInt:
		return binary.Write(buf, binary.LittleEndian, v.(int16))
	case TypeInteger:
		return binary.Write(buf, binary.LittleEndian, v.(int32))
	case TypeBigInt, TypeTimestamp:
		return binary.Write(buf, binary.LittleEndian, v.(int64))
	case TypeFloat:
		return binary.Write(buf, binary.LittleEndian, math.Float64bits(v.(float64)))
	case TypeString:
		if v == any(NullMarker) {
			return binary.Write(buf, binary.LittleEndian, int32(-1))
		}

		s := v.(string)
		if err := binary.Write(buf, binary.LittleEndian, int32(len(s))); err != nil {
			return err
		}

		_, err := buf.WriteString(s)

		return err
	case TypeVarbinary:
		if v == any(NullMarker) {
			return binary.Write(buf, binary.LittleEndian, int32(-1))
		}

		b := v.([]byte)
		if err := binary.Write(buf, binary.LittleEndian, int32(len(b))); err != nil {
			return err
		}

		_, err := buf.Write(b)

		return err
	case TypeDecimal:
		if v == any(NullMarker) {
			return binary.Write(buf, binary.LittleEndian, int32(-1))
		}

		s := v.(Decimal).String()
		if err := binary.Write(buf, binary.LittleEndian, int32(len(s))); err != nil {
			return err
		}

		_, err := buf.WriteString(s)

		return err
	default:
		return fmt.Errorf("unsupported parameter type %s", t)
	}
}

// DeserializeParams decodes a buffer produced by [SerializeParams] back
// into a coerced [Set], verifying the encoded type tags match types.
func DeserializeParams(types []Type, data []byte) (Set, error) {
	r := bytes.NewReader(data)
	out := make(Set, len(types))

	for i, t := range types {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("params: parameter %d: %w", i, err)
		}

		if Type(tag) != t {
			return nil, fmt.Errorf("params: parameter %d: type tag mismatch: wire %s, expected %s", i, Type(tag), t)
		}

		v, err := readValue(r, t)
		if err != nil {
			return nil, fmt.Errorf("params: parameter %d: %w", i, err)
		}

		out[i] = v
	}

	return out, nil
}

func readValue(r *bytes.Reader, t Type) (any, error) {
	switch t {
	case TypeTinyInt:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)

		return v, err
	case TypeSmallInt:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)

		return v, err
	case TypeInteger:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)

		return v, err
	case TypeBigInt, TypeTimestamp:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)

		return v, err
	case TypeFloat:
		var bits uint64
		if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
			return nil, err
		}

		return math.Float64frombits(bits), nil
	case TypeString:
		n, s, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}

		if n < 0 {
			return NullMarker, nil
		}

		return string(s), nil
	case TypeVarbinary:
		n, b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}

		if n < 0 {
			return NullMarker, nil
		}

		return b, nil
	case TypeDecimal:
		n, s, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}

		if n < 0 {
			return NullMarker, nil
		}

		return coerceDecimal(string(s))
	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}
}

func readLengthPrefixed(r *bytes.Reader) (int32, []byte, error) {
	var n int32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, nil, err
	}

	if n < 0 {
		return n, nil, nil
	}

	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return 0, nil, err
	}

	return n, b, nil
}
