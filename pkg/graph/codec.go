package graph

import (
	"encoding/binary"
	"fmt"
)

// Value type tags
const (
	tagString byte = 's'
	tagInt    byte = 'i'
	tagBool   byte = 'b'
	tagRef    byte = 'r'
	tagList   byte = 'l'
)

// EncodeValue serializes a value: one tag byte followed by the payload.
// Lists carry a uvarint count and length-prefixed items.
func EncodeValue(v Value) []byte {
	switch x := v.(type) {
	case String:
		return append([]byte{tagString}, x...)
	case Ref:
		return append([]byte{tagRef}, x...)
	case Int:
		out := make([]byte, 9)
		out[0] = tagInt
		binary.BigEndian.PutUint64(out[1:], uint64(x))
		return out
	case Bool:
		if x {
			return []byte{tagBool, 1}
		}
		return []byte{tagBool, 0}
	case List:
		out := binary.AppendUvarint([]byte{tagList}, uint64(len(x)))
		for _, item := range x {
			enc := EncodeValue(item)
			out = binary.AppendUvarint(out, uint64(len(enc)))
			out = append(out, enc...)
		}
		return out
	}
	panic(fmt.Sprintf("graph: cannot encode %T", v))
}

// DecodeValue reverses EncodeValue
func DecodeValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("graph: empty value")
	}
	payload := data[1:]
	switch data[0] {
	case tagString:
		return String(payload), nil
	case tagRef:
		return Ref(payload), nil
	case tagInt:
		if len(payload) != 8 {
			return nil, fmt.Errorf("graph: bad int length %d", len(payload))
		}
		return Int(int64(binary.BigEndian.Uint64(payload))), nil
	case tagBool:
		if len(payload) != 1 {
			return nil, fmt.Errorf("graph: bad bool length %d", len(payload))
		}
		return Bool(payload[0] == 1), nil
	case tagList:
		count, n := binary.Uvarint(payload)
		if n <= 0 {
			return nil, fmt.Errorf("graph: bad list header")
		}
		payload = payload[n:]
		list := make(List, 0, count)
		for i := uint64(0); i < count; i++ {
			size, n := binary.Uvarint(payload)
			if n <= 0 || uint64(len(payload)-n) < size {
				return nil, fmt.Errorf("graph: truncated list item %d", i)
			}
			item, err := DecodeValue(payload[n : n+int(size)])
			if err != nil {
				return nil, err
			}
			list = append(list, item)
			payload = payload[n+int(size):]
		}
		return list, nil
	}
	return nil, fmt.Errorf("graph: unknown value tag %q", data[0])
}
